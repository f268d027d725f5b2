package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv  = "NEWS_HARVESTER_CONFIG"
	databaseDSNEnv = "DATABASE_DSN"
	httpAddrEnv    = "HTTP_ADDR"
	ollamaHostEnv  = "OLLAMA_HOST"
	logLevelEnv    = "LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	HTTP       HTTPConfig       `yaml:"http"`
	Logging    LoggingConfig    `yaml:"logging"`
	Fetcher    FetcherConfig    `yaml:"fetcher"`
	Discovery  DiscoveryConfig  `yaml:"discovery"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Language   LanguageConfig   `yaml:"language"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Lifecycle  LifecycleConfig  `yaml:"lifecycle"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Sites      []SiteConfig     `yaml:"sites"`
}

// DatabaseConfig describes Postgres connection details. An empty DSN
// selects the in-memory store.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// HTTPConfig describes the query/API listener.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig selects log verbosity and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// FetcherConfig bounds page retrieval.
type FetcherConfig struct {
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
	UserAgent      string `yaml:"userAgent"`
}

// Timeout resolves the fetch timeout as a duration.
func (f FetcherConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// DiscoveryConfig caps per-site candidate extraction.
type DiscoveryConfig struct {
	MaxLinksPerSite int `yaml:"maxLinksPerSite"`
}

// ExtractionConfig sets the minimum body size a strategy must produce.
type ExtractionConfig struct {
	MinWords int `yaml:"minWords"`
}

// LanguageConfig sets the minimum text length for classification; shorter
// texts are reported unknown instead of guessed.
type LanguageConfig struct {
	MinChars int `yaml:"minChars"`
}

// SummarizerConfig describes the two model tiers and the input budget.
type SummarizerConfig struct {
	Host           string `yaml:"host"`
	PrimaryModel   string `yaml:"primaryModel"`
	FallbackModel  string `yaml:"fallbackModel"`
	MaxInputWords  int    `yaml:"maxInputWords"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
	NativeLanguage string `yaml:"nativeLanguage"`
}

// Timeout resolves the per-request inference timeout.
func (s SummarizerConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// LifecycleConfig tunes retry and cleanup policy.
type LifecycleConfig struct {
	MaxRetries    int `yaml:"maxRetries"`
	RetryBatch    int `yaml:"retryBatch"`
	RetentionDays int `yaml:"retentionDays"`
}

// Retention resolves the cleanup age threshold.
func (l LifecycleConfig) Retention() time.Duration {
	return time.Duration(l.RetentionDays) * 24 * time.Hour
}

// SchedulerConfig defines how often each pass runs.
type SchedulerConfig struct {
	DiscoveryIntervalMinutes int `yaml:"discoveryIntervalMinutes"`
	RetryIntervalMinutes     int `yaml:"retryIntervalMinutes"`
	CleanupIntervalHours     int `yaml:"cleanupIntervalHours"`
}

// SiteConfig describes a single source site and its discovery strategy.
type SiteConfig struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Strategy string `yaml:"strategy"`
	FeedURL  string `yaml:"feedUrl"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides on top of the defaults.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Sites) == 0 {
		cfg.Sites = defaultConfig().Sites
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(httpAddrEnv); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv(ollamaHostEnv); v != "" {
		c.Summarizer.Host = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Database.DSN != "" {
		base.Database = override.Database
	}
	if override.HTTP.Addr != "" {
		base.HTTP = override.HTTP
	}
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Fetcher.TimeoutSeconds > 0 {
		base.Fetcher.TimeoutSeconds = override.Fetcher.TimeoutSeconds
	}
	if override.Fetcher.UserAgent != "" {
		base.Fetcher.UserAgent = override.Fetcher.UserAgent
	}

	if override.Discovery.MaxLinksPerSite > 0 {
		base.Discovery = override.Discovery
	}
	if override.Extraction.MinWords > 0 {
		base.Extraction = override.Extraction
	}
	if override.Language.MinChars > 0 {
		base.Language = override.Language
	}

	if override.Summarizer.Host != "" {
		base.Summarizer.Host = override.Summarizer.Host
	}
	if override.Summarizer.PrimaryModel != "" {
		base.Summarizer.PrimaryModel = override.Summarizer.PrimaryModel
	}
	if override.Summarizer.FallbackModel != "" {
		base.Summarizer.FallbackModel = override.Summarizer.FallbackModel
	}
	if override.Summarizer.MaxInputWords > 0 {
		base.Summarizer.MaxInputWords = override.Summarizer.MaxInputWords
	}
	if override.Summarizer.TimeoutSeconds > 0 {
		base.Summarizer.TimeoutSeconds = override.Summarizer.TimeoutSeconds
	}
	if override.Summarizer.NativeLanguage != "" {
		base.Summarizer.NativeLanguage = override.Summarizer.NativeLanguage
	}

	if override.Lifecycle.MaxRetries > 0 {
		base.Lifecycle.MaxRetries = override.Lifecycle.MaxRetries
	}
	if override.Lifecycle.RetryBatch > 0 {
		base.Lifecycle.RetryBatch = override.Lifecycle.RetryBatch
	}
	if override.Lifecycle.RetentionDays > 0 {
		base.Lifecycle.RetentionDays = override.Lifecycle.RetentionDays
	}

	if override.Scheduler.DiscoveryIntervalMinutes > 0 {
		base.Scheduler.DiscoveryIntervalMinutes = override.Scheduler.DiscoveryIntervalMinutes
	}
	if override.Scheduler.RetryIntervalMinutes > 0 {
		base.Scheduler.RetryIntervalMinutes = override.Scheduler.RetryIntervalMinutes
	}
	if override.Scheduler.CleanupIntervalHours > 0 {
		base.Scheduler.CleanupIntervalHours = override.Scheduler.CleanupIntervalHours
	}

	if len(override.Sites) > 0 {
		base.Sites = override.Sites
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Database: DatabaseConfig{DSN: ""},
		HTTP:     HTTPConfig{Addr: ":8080"},
		Logging:  LoggingConfig{Level: "info", Format: "text"},
		Fetcher: FetcherConfig{
			TimeoutSeconds: 15,
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
		},
		Discovery:  DiscoveryConfig{MaxLinksPerSite: 20},
		Extraction: ExtractionConfig{MinWords: 100},
		Language:   LanguageConfig{MinChars: 40},
		Summarizer: SummarizerConfig{
			Host:           "http://127.0.0.1:11434",
			PrimaryModel:   "llama3.1:8b",
			FallbackModel:  "gemma2:2b",
			MaxInputWords:  1024,
			TimeoutSeconds: 120,
			NativeLanguage: "en",
		},
		Lifecycle: LifecycleConfig{MaxRetries: 3, RetryBatch: 10, RetentionDays: 30},
		Scheduler: SchedulerConfig{
			DiscoveryIntervalMinutes: 60,
			RetryIntervalMinutes:     30,
			CleanupIntervalHours:     24,
		},
		Sites: []SiteConfig{
			{Name: "agriculture-com", URL: "https://www.agriculture.com/news", Strategy: "listing"},
			{Name: "agweb", URL: "https://www.agweb.com/news", Strategy: "listing"},
			{Name: "farm-online", URL: "https://www.farm-online.com.au/news", Strategy: "listing"},
			{Name: "agdaily", URL: "https://www.agdaily.com/news", Strategy: "listing"},
			{Name: "farminguk", URL: "https://www.farminguk.com/news", Strategy: "listing"},
			{Name: "producer", URL: "https://www.producer.com/news", Strategy: "listing"},
			{Name: "grainnet", URL: "https://www.grainnet.com/news", Strategy: "listing"},
			{Name: "agfax", URL: "https://agfax.com/category/news", Strategy: "listing"},
		},
	}
}
