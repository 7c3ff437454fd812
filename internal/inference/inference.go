// Package inference defines the capability boundary to the external face
// model backend. The matching engine never depends on it; the web layer
// injects implementations.
package inference

import "context"

// BoundingBox locates a face within an image, in pixels.
type BoundingBox struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// DetectedFace is one face found in an image.
type DetectedFace struct {
	FaceIndex   int         `json:"face_index"`
	BoundingBox BoundingBox `json:"bounding_box"`
	Confidence  float64     `json:"confidence"`
	FaceAreaPx  int         `json:"face_area_px"`
}

// Detection is the full result of detecting faces in one image.
type Detection struct {
	Faces       []DetectedFace
	ImageWidth  int
	ImageHeight int
}

// Embedding is a generated face embedding plus its quality signals.
type Embedding struct {
	Vector         []float32
	FaceConfidence *float64
	FaceQuality    *float64
}

// Detector finds faces in a base64-encoded image.
type Detector interface {
	Detect(ctx context.Context, imageBase64 string) (*Detection, error)
}

// Embedder generates a fixed-length face embedding from a base64-encoded
// image, optionally guided by a known bounding box.
type Embedder interface {
	Embed(ctx context.Context, imageBase64 string, bbox *BoundingBox) (*Embedding, error)
}
