package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("API_PORT", "")
	t.Setenv("ANALYSIS_CACHE_TTL_SECONDS", "")
	t.Setenv("NATS_SUBJECT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIPort != "8080" {
		t.Fatalf("expected default api port 8080, got %q", cfg.APIPort)
	}
	if cfg.AnalysisCacheTTLSeconds != 3600 {
		t.Fatalf("expected default cache ttl 3600, got %d", cfg.AnalysisCacheTTLSeconds)
	}
	if cfg.NATSSubject != "uploads.stored" {
		t.Fatalf("expected default nats subject, got %q", cfg.NATSSubject)
	}
	if cfg.MaxUploadBytes != 64<<20 {
		t.Fatalf("expected default upload limit, got %d", cfg.MaxUploadBytes)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ANALYSIS_CACHE_TTL_SECONDS", "120")
	t.Setenv("ANALYSIS_SAMPLE_ROWS", "10")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")
	t.Setenv("OPENAI_MODEL", "gpt-4o")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AnalysisCacheTTLSeconds != 120 {
		t.Fatalf("expected cache ttl override, got %d", cfg.AnalysisCacheTTLSeconds)
	}
	if cfg.AnalysisSampleRows != 10 {
		t.Fatalf("expected sample rows override, got %d", cfg.AnalysisSampleRows)
	}
	if cfg.APIRateLimitRPS != 2.5 {
		t.Fatalf("expected rate limit override, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.OpenAIModel != "gpt-4o" {
		t.Fatalf("expected model override, got %q", cfg.OpenAIModel)
	}
}

func TestLoadYAMLOverlayEnvWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	overlay := "api_port: \"9999\"\nopenai_model: file-model\nanalysis_sample_rows: 7\n"
	if err := os.WriteFile(path, []byte(overlay), 0o600); err != nil {
		t.Fatalf("write overlay: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("OPENAI_MODEL", "env-model")
	t.Setenv("API_PORT", "")
	t.Setenv("ANALYSIS_SAMPLE_ROWS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIPort != "9999" {
		t.Fatalf("expected file value for api port, got %q", cfg.APIPort)
	}
	if cfg.AnalysisSampleRows != 7 {
		t.Fatalf("expected file value for sample rows, got %d", cfg.AnalysisSampleRows)
	}
	if cfg.OpenAIModel != "env-model" {
		t.Fatalf("expected env to win over file, got %q", cfg.OpenAIModel)
	}
}

func TestLoadRejectsMalformedOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{{not yaml"), 0o600); err != nil {
		t.Fatalf("write overlay: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for malformed overlay")
	}
}
