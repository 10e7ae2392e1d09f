package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	OpenAIAPIKey        string `envconfig:"OPENAI_API_KEY"`
	EmbeddingModel      string `envconfig:"EMBEDDING_MODEL"`
	EmbeddingDimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"1536"`

	OllamaBaseURL string `envconfig:"OLLAMA_BASE_URL" default:"http://localhost:11434"`
	GroqAPIKey    string `envconfig:"GROQ_API_KEY"`

	DefaultProvider string `envconfig:"DEFAULT_PROVIDER" default:"ollama"`

	// Chunking and ingestion
	ChunkMaxWords    int `envconfig:"CHUNK_MAX_WORDS" default:"200"`
	ChunkOverlap     int `envconfig:"CHUNK_OVERLAP" default:"40"`
	EmbedConcurrency int `envconfig:"EMBED_CONCURRENCY" default:"4"`

	// Retrieval defaults
	OrgTopK    int `envconfig:"ORG_TOP_K" default:"3"`
	DomainTopK int `envconfig:"DOMAIN_TOP_K" default:"3"`
	MaxContext int `envconfig:"MAX_CONTEXT" default:"4"`

	// Per-stage deadlines. The watchdog waits WatchdogMargin past each
	// stage's own timeout to catch stages that ignore cancellation.
	EmbedTimeout      time.Duration `envconfig:"EMBED_TIMEOUT" default:"15s"`
	SearchTimeout     time.Duration `envconfig:"SEARCH_TIMEOUT" default:"10s"`
	GenerationTimeout time.Duration `envconfig:"GENERATION_TIMEOUT" default:"120s"`
	WatchdogMargin    time.Duration `envconfig:"WATCHDOG_MARGIN" default:"2s"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("ASKD", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasGroq() bool {
	return c.GroqAPIKey != ""
}
