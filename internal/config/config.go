// Package config provides environment-driven configuration for the agent.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultDBName           = "ats"
	DefaultCollectionName   = "applications"
	DefaultQdrantCollection = "resumes"
	DefaultBatchSize        = 10
	DefaultEmbeddingModel   = "text-embedding-004"
	DefaultEmbeddingDim     = 768
	DefaultAgentMode        = "index"
	DefaultPort             = 10000
	DefaultPollDelay        = time.Second
)

// Config holds everything the agent needs to reach its collaborators.
// Collaborator credentials are allowed to be missing at load time; the
// pipelines refuse to run until the affected collaborator is configured.
type Config struct {
	// Document store
	MongoURI        string
	DBName          string
	ApplicationColl string

	// Object store
	AWSAccessKey string
	AWSSecretKey string
	AWSRegion    string
	S3Bucket     string

	// Vector index
	QdrantURL        string
	QdrantAPIKey     string
	QdrantCollection string

	// Embedding model
	GeminiAPIKey   string
	EmbeddingModel string
	EmbeddingDim   int `validate:"min=1"`

	// Pipeline knobs
	BatchSize int           `validate:"min=1"`
	PollDelay time.Duration `validate:"min=0"`
	Agent     string        `validate:"oneof=index matching both"`

	// Trigger server
	Port int `validate:"min=1,max=65535"`
}

// Load reads configuration from the environment. Values may be wrapped in
// quotes (common when .env files are copy-pasted); those are stripped.
func Load() (*Config, error) {
	cfg := &Config{
		MongoURI:         getenv("MONGODB_URI", ""),
		DBName:           getenv("DB_NAME", DefaultDBName),
		ApplicationColl:  getenv("COLLECTION_NAME", DefaultCollectionName),
		AWSAccessKey:     getenv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:     getenv("AWS_SECRET_ACCESS_KEY", ""),
		AWSRegion:        getenv("AWS_REGION", ""),
		S3Bucket:         getenv("AWS_S3_BUCKET", ""),
		QdrantURL:        getenv("QDRANT_URL", ""),
		QdrantAPIKey:     getenv("QDRANT_API_KEY", ""),
		QdrantCollection: getenv("QDRANT_COLLECTION", DefaultQdrantCollection),
		GeminiAPIKey:     getenv("GEMINI_API_KEY", ""),
		EmbeddingModel:   getenv("MODEL_NAME", DefaultEmbeddingModel),
		Agent:            getenv("AGENT", DefaultAgentMode),
	}

	var err error
	if cfg.EmbeddingDim, err = getenvInt("EMBEDDING_DIM", DefaultEmbeddingDim); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = getenvInt("BATCH_SIZE", DefaultBatchSize); err != nil {
		return nil, err
	}
	if cfg.Port, err = getenvInt("PORT", DefaultPort); err != nil {
		return nil, err
	}
	if cfg.PollDelay, err = getenvDuration("POLL_DELAY", DefaultPollDelay); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations, not presence: collaborator
// credentials may legitimately be absent (see Missing).
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Missing returns the names of collaborator variables that are unset. The
// caller logs these as a warning; the process still starts so the health
// endpoint stays reachable.
func (c *Config) Missing() []string {
	required := []struct {
		name  string
		value string
	}{
		{"MONGODB_URI", c.MongoURI},
		{"AWS_ACCESS_KEY_ID", c.AWSAccessKey},
		{"AWS_SECRET_ACCESS_KEY", c.AWSSecretKey},
		{"AWS_REGION", c.AWSRegion},
		{"AWS_S3_BUCKET", c.S3Bucket},
		{"QDRANT_URL", c.QdrantURL},
		{"QDRANT_API_KEY", c.QdrantAPIKey},
		{"GEMINI_API_KEY", c.GeminiAPIKey},
	}

	var missing []string
	for _, v := range required {
		if v.value == "" {
			missing = append(missing, v.name)
		}
	}
	return missing
}

// getenv reads a trimmed environment variable, stripping one layer of
// surrounding single or double quotes.
func getenv(name, fallback string) string {
	v, ok := os.LookupEnv(name)
	if !ok {
		return fallback
	}
	v = strings.TrimSpace(v)
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			v = strings.TrimSpace(v[1 : len(v)-1])
		}
	}
	if v == "" {
		return fallback
	}
	return v
}

func getenvInt(name string, fallback int) (int, error) {
	raw := getenv(name, "")
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q is not an integer", name, raw)
	}
	return n, nil
}

func getenvDuration(name string, fallback time.Duration) (time.Duration, error) {
	raw := getenv(name, "")
	if raw == "" {
		return fallback, nil
	}
	// Accept bare seconds for parity with the older agent configuration.
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q is not a duration", name, raw)
	}
	return d, nil
}
