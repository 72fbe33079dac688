package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig
	Auth        AuthConfig
	Embedding   EmbeddingConfig
	Recognition RecognitionConfig
	Detector    DetectorConfig
	Storage     StorageConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type AuthConfig struct {
	URL     string        // base URL of the authentication service (e.g. http://localhost:8082)
	Timeout time.Duration // per-request timeout for resolver calls
}

type EmbeddingConfig struct {
	URL     string // base URL of the embedding server
	Timeout time.Duration
	Dim     int // embedding dimensionality, fixed by the embedder
}

type RecognitionConfig struct {
	Tolerance float64 // maximum Euclidean distance accepted as a match
}

type DetectorConfig struct {
	CascadePath      string // path to the binary pigo cascade file
	MinSize          int
	MaxSize          int
	ShiftFactor      float64
	ScaleFactor      float64
	QualityThreshold float32
}

type StorageConfig struct {
	EncodingsPath string // JSON file holding the serialized registry
	FacesDir      string // root of the faces/<name>/<timestamp>.jpg archive
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

// envFloat reads an environment variable and parses it as a non-negative float.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
		return f
	}
	return defaultVal
}

// envDuration reads an environment variable and parses it as a time.Duration.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

// envStr reads an environment variable, falling back to a default when unset.
func envStr(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host: envStr("FACEAUTH_HOST", "0.0.0.0"),
			Port: envInt("FACEAUTH_PORT", 5000),
		},
		Auth: AuthConfig{
			URL:     envStr("AUTH_API_URL", "http://localhost:8082"),
			Timeout: envDuration("AUTH_API_TIMEOUT", 5*time.Second),
		},
		Embedding: EmbeddingConfig{
			URL:     envStr("EMBEDDING_URL", "http://localhost:8000"),
			Timeout: envDuration("EMBEDDING_TIMEOUT", 10*time.Second),
			Dim:     envInt("EMBEDDING_DIM", 128),
		},
		Recognition: RecognitionConfig{
			Tolerance: envFloat("FACE_TOLERANCE", 0.6),
		},
		Detector: DetectorConfig{
			CascadePath:      envStr("CASCADE_PATH", "models/facefinder"),
			MinSize:          60,
			MaxSize:          1000,
			ShiftFactor:      0.1,
			ScaleFactor:      1.1,
			QualityThreshold: 5.0,
		},
		Storage: StorageConfig{
			EncodingsPath: envStr("ENCODINGS_PATH", "encodings/encodings.json"),
			FacesDir:      envStr("FACES_DIR", "faces"),
		},
	}

	if path := os.Getenv("FACEAUTH_CONFIG"); path != "" {
		if err := cfg.applyTuningFile(path); err != nil {
			// Tuning file was explicitly requested, so a broken one is a
			// configuration error the operator must see.
			panic(fmt.Sprintf("failed to load tuning file %s: %v", path, err))
		}
	}

	return cfg
}

// tuningFile mirrors the optional YAML tuning file. All fields are pointers
// so only the keys actually present override the environment defaults.
type tuningFile struct {
	Detector struct {
		MinSize          *int     `yaml:"min_size"`
		MaxSize          *int     `yaml:"max_size"`
		ShiftFactor      *float64 `yaml:"shift_factor"`
		ScaleFactor      *float64 `yaml:"scale_factor"`
		QualityThreshold *float32 `yaml:"quality_threshold"`
	} `yaml:"detector"`
	FaceRecog struct {
		Tolerance *float64 `yaml:"tolerance"`
	} `yaml:"face_recog"`
}

func (c *Config) applyTuningFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return err
	}

	var t tuningFile
	if err := yaml.Unmarshal(data, &t); err != nil {
		return fmt.Errorf("parsing yaml: %w", err)
	}

	if t.Detector.MinSize != nil {
		c.Detector.MinSize = *t.Detector.MinSize
	}
	if t.Detector.MaxSize != nil {
		c.Detector.MaxSize = *t.Detector.MaxSize
	}
	if t.Detector.ShiftFactor != nil {
		c.Detector.ShiftFactor = *t.Detector.ShiftFactor
	}
	if t.Detector.ScaleFactor != nil {
		c.Detector.ScaleFactor = *t.Detector.ScaleFactor
	}
	if t.Detector.QualityThreshold != nil {
		c.Detector.QualityThreshold = *t.Detector.QualityThreshold
	}
	if t.FaceRecog.Tolerance != nil {
		c.Recognition.Tolerance = *t.FaceRecog.Tolerance
	}
	return nil
}
