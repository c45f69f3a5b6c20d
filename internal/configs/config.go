package configs

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	HTTPPort int `env:"ASSISTANT_PORT" envDefault:"8080"`

	RedisURL string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	// External embedding service; empty URL disables the external path and
	// every embedding comes from the local fallback.
	EmbeddingServiceURL     string        `env:"EMBEDDING_SERVICE_URL"`
	EmbeddingAPIKey         string        `env:"EMBEDDING_API_KEY"`
	EmbeddingTimeout        time.Duration `env:"EMBEDDING_TIMEOUT" envDefault:"10s"`
	EmbeddingCacheType      string        `env:"EMBEDDING_CACHE_TYPE" envDefault:"memory"`
	EmbeddingCacheTTL       time.Duration `env:"EMBEDDING_CACHE_TTL" envDefault:"1h"`
	EmbeddingCacheMaxSize   int           `env:"EMBEDDING_CACHE_MAX_SIZE" envDefault:"10000"`
	EmbeddingCacheKeyPrefix string        `env:"EMBEDDING_CACHE_KEY_PREFIX" envDefault:"emb:"`

	// Chat completions API; empty key means the chat path answers with
	// canned replies only.
	LLMBaseURL string        `env:"LLM_BASE_URL" envDefault:"https://api.groq.com/openai"`
	LLMAPIKey  string        `env:"LLM_API_KEY"`
	LLMModel   string        `env:"LLM_MODEL" envDefault:"llama-3.1-8b-instant"`
	LLMTimeout time.Duration `env:"LLM_TIMEOUT" envDefault:"30s"`

	// Retrieval tuning.
	RelevanceThreshold float64 `env:"RELEVANCE_THRESHOLD" envDefault:"0.1"`
	MemoryTopK         int     `env:"MEMORY_TOP_K" envDefault:"3"`
	HistoryLimit       int     `env:"HISTORY_LIMIT" envDefault:"10"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	IdleTimeout    time.Duration `env:"IDLE_TIMEOUT" envDefault:"120s"`

	APIKey string `env:"ASSISTANT_API_KEY"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	return cfg, nil
}
