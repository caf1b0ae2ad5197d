package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIPort  string `yaml:"api_port"`
	LogLevel string `yaml:"log_level"`

	StoragePath    string `yaml:"storage_path"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`

	NATSURL     string `yaml:"nats_url"`
	NATSSubject string `yaml:"nats_subject"`

	OpenAIBaseURL        string `yaml:"openai_base_url"`
	OpenAIAPIKey         string `yaml:"openai_api_key"`
	OpenAIModel          string `yaml:"openai_model"`
	OpenAIMaxTokens      int    `yaml:"openai_max_tokens"`
	OpenAITimeoutSeconds int    `yaml:"openai_timeout_seconds"`

	AnalysisCacheTTLSeconds int `yaml:"analysis_cache_ttl_seconds"`
	AnalysisSampleRows      int `yaml:"analysis_sample_rows"`

	APIRateLimitRPS   float64 `yaml:"api_rate_limit_rps"`
	APIRateLimitBurst int     `yaml:"api_rate_limit_burst"`
	APIMaxConcurrent  int     `yaml:"api_max_concurrent"`

	UploadRetentionHours int    `yaml:"upload_retention_hours"`
	WorkerSweepMinutes   int    `yaml:"worker_sweep_minutes"`
	WorkerMetricsPort    string `yaml:"worker_metrics_port"`
}

// Load reads an optional YAML overlay named by CONFIG_FILE, then applies
// environment variables on top. Environment always wins.
func Load() (Config, error) {
	cfg := Config{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.APIPort = env("API_PORT", cfg.APIPort, "8080")
	cfg.LogLevel = env("LOG_LEVEL", cfg.LogLevel, "info")

	cfg.StoragePath = env("STORAGE_PATH", cfg.StoragePath, "./data/uploads")
	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes, 64<<20)

	cfg.NATSURL = env("NATS_URL", cfg.NATSURL, "nats://localhost:4222")
	cfg.NATSSubject = env("NATS_SUBJECT", cfg.NATSSubject, "uploads.stored")

	cfg.OpenAIBaseURL = env("OPENAI_BASE_URL", cfg.OpenAIBaseURL, "https://api.openai.com/v1")
	cfg.OpenAIAPIKey = env("OPENAI_API_KEY", cfg.OpenAIAPIKey, "")
	cfg.OpenAIModel = env("OPENAI_MODEL", cfg.OpenAIModel, "gpt-4o-mini")
	cfg.OpenAIMaxTokens = envInt("OPENAI_MAX_TOKENS", cfg.OpenAIMaxTokens, 8192)
	cfg.OpenAITimeoutSeconds = envInt("OPENAI_TIMEOUT_SECONDS", cfg.OpenAITimeoutSeconds, 120)

	cfg.AnalysisCacheTTLSeconds = envInt("ANALYSIS_CACHE_TTL_SECONDS", cfg.AnalysisCacheTTLSeconds, 3600)
	cfg.AnalysisSampleRows = envInt("ANALYSIS_SAMPLE_ROWS", cfg.AnalysisSampleRows, 50)

	cfg.APIRateLimitRPS = envFloat("API_RATE_LIMIT_RPS", cfg.APIRateLimitRPS, 0)
	cfg.APIRateLimitBurst = envInt("API_RATE_LIMIT_BURST", cfg.APIRateLimitBurst, 0)
	cfg.APIMaxConcurrent = envInt("API_MAX_CONCURRENT", cfg.APIMaxConcurrent, 0)

	cfg.UploadRetentionHours = envInt("UPLOAD_RETENTION_HOURS", cfg.UploadRetentionHours, 24)
	cfg.WorkerSweepMinutes = envInt("WORKER_SWEEP_MINUTES", cfg.WorkerSweepMinutes, 15)
	cfg.WorkerMetricsPort = env("WORKER_METRICS_PORT", cfg.WorkerMetricsPort, "9090")

	return cfg, nil
}

func env(key, current, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if current != "" {
		return current
	}
	return fallback
}

func envInt(key string, current, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	if current != 0 {
		return current
	}
	return fallback
}

func envInt64(key string, current, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	if current != 0 {
		return current
	}
	return fallback
}

func envFloat(key string, current, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	if current != 0 {
		return current
	}
	return fallback
}
