package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "NEWSPULSE_CONFIG"
	addrEnv       = "NEWSPULSE_ADDR"
	llmBaseURLEnv = "NEWSPULSE_LLM_URL"
	llmModelEnv   = "NEWSPULSE_LLM_MODEL"
	llmAPIKeyEnv  = "NEWSPULSE_LLM_API_KEY"
)

// Config holds high-level settings required across the application.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	LLM       LLMConfig       `yaml:"llm"`
	Logging   LoggingConfig   `yaml:"logging"`
	Sites     []SiteConfig    `yaml:"sites"`
}

// ServerConfig describes the HTTP listen address.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// SchedulerConfig defines the steady-state and error-backoff intervals.
type SchedulerConfig struct {
	Interval      string `yaml:"interval"`
	RetryInterval string `yaml:"retryInterval"`
}

// IntervalDuration parses the steady-state interval, defaulting to one hour.
func (s SchedulerConfig) IntervalDuration() time.Duration {
	d, err := time.ParseDuration(s.Interval)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// RetryDuration parses the error-backoff interval, defaulting to five minutes.
func (s SchedulerConfig) RetryDuration() time.Duration {
	d, err := time.ParseDuration(s.RetryInterval)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

// LLMConfig defines how to contact the OpenAI-compatible enrichment service.
type LLMConfig struct {
	BaseURL string `yaml:"baseUrl"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"apiKey"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SiteConfig describes a single upstream site with its scanner strategy.
type SiteConfig struct {
	Name      string         `yaml:"name"`
	Scanner   string         `yaml:"scanner"`
	URL       string         `yaml:"url"`
	Limit     int            `yaml:"limit"`
	Selectors SelectorConfig `yaml:"selectors"`
}

// SelectorConfig holds the CSS selectors used by the HTML scanner.
type SelectorConfig struct {
	Item    string `yaml:"item"`
	Title   string `yaml:"title"`
	Link    string `yaml:"link"`
	Content string `yaml:"content"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
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
	if v := os.Getenv(addrEnv); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(llmBaseURLEnv); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv(llmModelEnv); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv(llmAPIKeyEnv); v != "" {
		c.LLM.APIKey = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Server.Addr != "" {
		base.Server = override.Server
	}

	if override.Scheduler.Interval != "" {
		base.Scheduler.Interval = override.Scheduler.Interval
	}
	if override.Scheduler.RetryInterval != "" {
		base.Scheduler.RetryInterval = override.Scheduler.RetryInterval
	}

	if override.LLM.BaseURL != "" {
		base.LLM.BaseURL = override.LLM.BaseURL
	}
	if override.LLM.Model != "" {
		base.LLM.Model = override.LLM.Model
	}
	if override.LLM.APIKey != "" {
		base.LLM.APIKey = override.LLM.APIKey
	}

	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if len(override.Sites) > 0 {
		base.Sites = override.Sites
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Server:    ServerConfig{Addr: ":8000"},
		Scheduler: SchedulerConfig{Interval: "1h", RetryInterval: "5m"},
		LLM: LLMConfig{
			BaseURL: "http://localhost:1234",
			Model:   "local-model",
		},
		Logging: LoggingConfig{Level: "info"},
		Sites: []SiteConfig{
			{
				Name:    "hacker-news",
				Scanner: "rss",
				URL:     "https://hnrss.org/frontpage",
				Limit:   10,
			},
			{
				Name:    "techcrunch",
				Scanner: "rss",
				URL:     "https://techcrunch.com/feed/",
				Limit:   10,
			},
		},
	}
}
