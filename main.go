package main

import "github.com/reunia/face-service/cmd"

func main() {
	cmd.Execute()
}
