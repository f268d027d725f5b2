package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("default addr = %s", cfg.HTTP.Addr)
	}
	if cfg.Lifecycle.MaxRetries != 3 || cfg.Lifecycle.RetentionDays != 30 {
		t.Errorf("unexpected lifecycle defaults: %+v", cfg.Lifecycle)
	}
	if cfg.Summarizer.PrimaryModel == "" || cfg.Summarizer.FallbackModel == "" {
		t.Errorf("model tiers not configured: %+v", cfg.Summarizer)
	}
	if len(cfg.Sites) == 0 {
		t.Error("default site list is empty")
	}
}

func TestLoadFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
http:
  addr: ":9090"
lifecycle:
  maxRetries: 5
sites:
  - name: custom
    url: https://custom.example.com/news
    strategy: feed
    feedUrl: https://custom.example.com/rss
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()

	if cfg.HTTP.Addr != ":9090" {
		t.Errorf("file addr not applied: %s", cfg.HTTP.Addr)
	}
	if cfg.Lifecycle.MaxRetries != 5 {
		t.Errorf("file maxRetries not applied: %d", cfg.Lifecycle.MaxRetries)
	}
	if cfg.Lifecycle.RetentionDays != 30 {
		t.Errorf("unset file value must keep default: %d", cfg.Lifecycle.RetentionDays)
	}
	if len(cfg.Sites) != 1 || cfg.Sites[0].Strategy != "feed" {
		t.Errorf("file sites not applied: %+v", cfg.Sites)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(databaseDSNEnv, "postgres://env/dsn")
	t.Setenv(httpAddrEnv, ":7070")
	t.Setenv(ollamaHostEnv, "http://ollama:11434")

	cfg := Load()

	if cfg.Database.DSN != "postgres://env/dsn" {
		t.Errorf("dsn override not applied: %s", cfg.Database.DSN)
	}
	if cfg.HTTP.Addr != ":7070" {
		t.Errorf("addr override not applied: %s", cfg.HTTP.Addr)
	}
	if cfg.Summarizer.Host != "http://ollama:11434" {
		t.Errorf("ollama host override not applied: %s", cfg.Summarizer.Host)
	}
}

func TestLoadBrokenFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{{not yaml"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("broken file must fall back to defaults: %s", cfg.HTTP.Addr)
	}
}
