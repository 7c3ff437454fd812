package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "face-service",
	Short: "Face detection, embedding and matching microservice",
	Long: `Face Service is the internal ReunIA microservice for face recognition.
It delegates detection and ArcFace embedding generation to a model inference
backend and ranks query embeddings against candidate embeddings in-process
using cosine similarity with confidence tiers.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
