package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"PostingsCleaner/internal/deadline"
	"PostingsCleaner/internal/domain"
	"PostingsCleaner/internal/source"
)

const (
	configPathEnv = "POSTINGS_CONFIG"
	logLevelEnv   = "POSTINGS_LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging     LoggingConfig    `yaml:"logging"`
	Window      WindowConfig     `yaml:"window"`
	Exclusions  PathConfig       `yaml:"exclusions"`
	Credentials PathConfig       `yaml:"credentials"`
	Enrichment  EnrichmentConfig `yaml:"enrichment"`
	Sources     SourcesConfig    `yaml:"sources"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// WindowConfig is the hiring cycle's plausible deadline range as YYYY-MM-DD strings.
type WindowConfig struct {
	Lower        string `yaml:"lower"`
	Upper        string `yaml:"upper"`
	FallbackYear int    `yaml:"fallbackYear"`
}

// Bounds parses the window into the inferencer's form.
func (w WindowConfig) Bounds() (deadline.Window, error) {
	lower, err := time.ParseInLocation(domain.DateLayout, w.Lower, time.UTC)
	if err != nil {
		return deadline.Window{}, fmt.Errorf("window lower bound: %w", err)
	}
	upper, err := time.ParseInLocation(domain.DateLayout, w.Upper, time.UTC)
	if err != nil {
		return deadline.Window{}, fmt.Errorf("window upper bound: %w", err)
	}
	if !lower.Before(upper) {
		return deadline.Window{}, fmt.Errorf("window: lower bound %s is not before upper bound %s", w.Lower, w.Upper)
	}
	return deadline.Window{Lower: lower, Upper: upper, FallbackYear: w.FallbackYear}, nil
}

// PathConfig points at an auxiliary document.
type PathConfig struct {
	Path string `yaml:"path"`
}

// EnrichmentConfig tunes the optional page fetch.
type EnrichmentConfig struct {
	DelayMin  time.Duration `yaml:"delayMin"`
	DelayMax  time.Duration `yaml:"delayMax"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"userAgent"`
}

// SourcesConfig holds per-source endpoints.
type SourcesConfig struct {
	AEA AEAConfig `yaml:"aea"`
	EJM EJMConfig `yaml:"ejm"`
}

// AEAConfig describes the JOE listing page.
type AEAConfig struct {
	// ListingURL is a format string receiving the posting id.
	ListingURL string `yaml:"listingURL"`
}

// EJMConfig describes the EconJobMarket login endpoint.
type EJMConfig struct {
	LoginURL string `yaml:"loginURL"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
// path wins over the POSTINGS_CONFIG variable.
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
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
	cfg.bindDelays()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) bindDelays() {
	if c.Enrichment.DelayMin < 0 {
		c.Enrichment.DelayMin = 0
	}
	if c.Enrichment.DelayMax < c.Enrichment.DelayMin {
		log.Printf("config: delayMax %s is below delayMin %s, using delayMin", c.Enrichment.DelayMax, c.Enrichment.DelayMin)
		c.Enrichment.DelayMax = c.Enrichment.DelayMin
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Window.Lower != "" {
		base.Window.Lower = override.Window.Lower
	}
	if override.Window.Upper != "" {
		base.Window.Upper = override.Window.Upper
	}
	if override.Window.FallbackYear != 0 {
		base.Window.FallbackYear = override.Window.FallbackYear
	}

	if override.Exclusions.Path != "" {
		base.Exclusions = override.Exclusions
	}
	if override.Credentials.Path != "" {
		base.Credentials = override.Credentials
	}

	if override.Enrichment.DelayMin != 0 {
		base.Enrichment.DelayMin = override.Enrichment.DelayMin
	}
	if override.Enrichment.DelayMax != 0 {
		base.Enrichment.DelayMax = override.Enrichment.DelayMax
	}
	if override.Enrichment.Timeout != 0 {
		base.Enrichment.Timeout = override.Enrichment.Timeout
	}
	if override.Enrichment.UserAgent != "" {
		base.Enrichment.UserAgent = override.Enrichment.UserAgent
	}

	if override.Sources.AEA.ListingURL != "" {
		base.Sources.AEA.ListingURL = override.Sources.AEA.ListingURL
	}
	if override.Sources.EJM.LoginURL != "" {
		base.Sources.EJM.LoginURL = override.Sources.EJM.LoginURL
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Window: WindowConfig{
			Lower: "2024-10-01",
			Upper: "2024-12-01",
		},
		Exclusions:  PathConfig{Path: "configs/exclude.toml"},
		Credentials: PathConfig{Path: "configs/ejm_login.toml"},
		Enrichment: EnrichmentConfig{
			DelayMin:  2 * time.Second,
			DelayMax:  4 * time.Second,
			Timeout:   30 * time.Second,
			UserAgent: "Mozilla/5.0 (compatible; PostingsCleaner/1.0)",
		},
		Sources: SourcesConfig{
			AEA: AEAConfig{ListingURL: source.DefaultAEAListingURL},
			EJM: EJMConfig{LoginURL: "https://econjobmarket.org/login"},
		},
	}
}
