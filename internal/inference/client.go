package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultInferenceURL = "http://localhost:8000"

// Client talks to the face model inference backend over HTTP. The backend
// owns image decoding and model execution; this client only moves JSON.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates an inference client. An empty baseURL falls back to the
// local development default; a timeout of 0 disables the client timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultInferenceURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type detectRequest struct {
	ImageBase64 string `json:"image_base64"`
}

type detectResponse struct {
	Faces       []DetectedFace `json:"faces"`
	ImageWidth  int            `json:"image_width"`
	ImageHeight int            `json:"image_height"`
}

type embedRequest struct {
	ImageBase64 string       `json:"image_base64"`
	FaceBBox    *BoundingBox `json:"face_bbox,omitempty"`
}

type embedResponse struct {
	Embedding      []float32 `json:"embedding"`
	FaceConfidence *float64  `json:"face_confidence"`
	FaceQuality    *float64  `json:"face_quality"`
}

// postJSON sends a JSON payload to the given endpoint and returns the raw
// response body, treating any non-200 status as an error.
func (c *Client) postJSON(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference backend request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference backend returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return raw, nil
}

// Detect implements Detector against the inference backend.
func (c *Client) Detect(ctx context.Context, imageBase64 string) (*Detection, error) {
	raw, err := c.postJSON(ctx, "/detect", detectRequest{ImageBase64: imageBase64})
	if err != nil {
		return nil, err
	}

	var dr detectResponse
	if err := json.Unmarshal(raw, &dr); err != nil {
		return nil, fmt.Errorf("failed to decode detect response: %w", err)
	}
	return &Detection{
		Faces:       dr.Faces,
		ImageWidth:  dr.ImageWidth,
		ImageHeight: dr.ImageHeight,
	}, nil
}

// Embed implements Embedder against the inference backend.
func (c *Client) Embed(ctx context.Context, imageBase64 string, bbox *BoundingBox) (*Embedding, error) {
	raw, err := c.postJSON(ctx, "/embed", embedRequest{ImageBase64: imageBase64, FaceBBox: bbox})
	if err != nil {
		return nil, err
	}

	var er embedResponse
	if err := json.Unmarshal(raw, &er); err != nil {
		return nil, fmt.Errorf("failed to decode embed response: %w", err)
	}
	if len(er.Embedding) == 0 {
		return nil, fmt.Errorf("inference backend returned empty embedding")
	}
	return &Embedding{
		Vector:         er.Embedding,
		FaceConfidence: er.FaceConfidence,
		FaceQuality:    er.FaceQuality,
	}, nil
}
