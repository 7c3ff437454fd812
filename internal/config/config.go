package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/reunia/face-service/internal/match"
)

//go:embed thresholds.yaml
var thresholdsYAML []byte

type Config struct {
	Service   ServiceConfig
	Web       WebConfig
	Matching  MatchingConfig
	Inference InferenceConfig
}

type ServiceConfig struct {
	Name     string
	LogLevel string // debug, info, warn, error
}

type WebConfig struct {
	Host   string
	Port   int
	APIKey string // bearer key for internal service auth
}

type MatchingConfig struct {
	Thresholds       match.Thresholds
	DefaultThreshold float64 // request-level threshold when the caller omits one
	DefaultResults   int     // max_results when the caller omits one
	MaxResults       int     // hard cap on max_results
	EmbeddingDim     int
	MaxBatchSize     int // images per /batch-embed request
	// BatchCutover is the candidate count at which /match switches from the
	// scalar ranking path to the batch path.
	BatchCutover int
}

type InferenceConfig struct {
	URL            string // base URL of the face model inference backend
	TimeoutSeconds int
}

// thresholdsFile mirrors the embedded thresholds.yaml layout.
type thresholdsFile struct {
	Thresholds struct {
		High   float64 `yaml:"high"`
		Medium float64 `yaml:"medium"`
		Low    float64 `yaml:"low"`
		Reject float64 `yaml:"reject"`
	} `yaml:"thresholds"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return defaultVal
}

// envString reads an environment variable, falling back to a default.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	var tf thresholdsFile
	if err := yaml.Unmarshal(thresholdsYAML, &tf); err != nil {
		// Embedded file, so this only fires on a broken build.
		panic("failed to unmarshal embedded thresholds.yaml: " + err.Error())
	}

	return &Config{
		Service: ServiceConfig{
			Name:     envString("SERVICE_NAME", "reunia-face-service"),
			LogLevel: envString("LOG_LEVEL", "info"),
		},
		Web: WebConfig{
			Host:   envString("WEB_HOST", "0.0.0.0"),
			Port:   envInt("WEB_PORT", 8080),
			APIKey: os.Getenv("FACE_API_KEY"),
		},
		Matching: MatchingConfig{
			Thresholds: match.Thresholds{
				High:   envFloat("THRESHOLD_HIGH", tf.Thresholds.High),
				Medium: envFloat("THRESHOLD_MEDIUM", tf.Thresholds.Medium),
				Low:    envFloat("THRESHOLD_LOW", tf.Thresholds.Low),
				Reject: envFloat("THRESHOLD_REJECT", tf.Thresholds.Reject),
			},
			DefaultThreshold: envFloat("DEFAULT_MATCH_THRESHOLD", 0.55),
			DefaultResults:   envInt("DEFAULT_MAX_RESULTS", 20),
			MaxResults:       envInt("MAX_RESULTS_LIMIT", 100),
			EmbeddingDim:     envInt("EMBEDDING_DIM", match.DefaultDim),
			MaxBatchSize:     envInt("MAX_BATCH_SIZE", 50),
			BatchCutover:     envInt("MATCH_BATCH_CUTOVER", 64),
		},
		Inference: InferenceConfig{
			URL:            os.Getenv("INFERENCE_URL"),
			TimeoutSeconds: envInt("INFERENCE_TIMEOUT_SECONDS", 30),
		},
	}
}

// Validate rejects configuration the engine cannot run with. Threshold
// problems are caught here, once per process, rather than per call.
func (c *Config) Validate() error {
	if err := c.Matching.Thresholds.Validate(); err != nil {
		return fmt.Errorf("invalid threshold config: %w", err)
	}
	if c.Matching.DefaultThreshold < 0 || c.Matching.DefaultThreshold > 1 {
		return fmt.Errorf("default match threshold must be in [0, 1], got %g", c.Matching.DefaultThreshold)
	}
	if c.Matching.DefaultResults > c.Matching.MaxResults {
		return fmt.Errorf("default max results %d exceeds cap %d", c.Matching.DefaultResults, c.Matching.MaxResults)
	}
	if c.Matching.EmbeddingDim <= 0 {
		return fmt.Errorf("embedding dim must be positive, got %d", c.Matching.EmbeddingDim)
	}
	return nil
}
