package config

import (
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"PhrasebankScanner/internal/domain"
	"PhrasebankScanner/internal/phrase"
)

const (
	defaultTimezone = "UTC"
	defaultBaseURL  = "https://www.phrasebank.manchester.ac.uk"
	configPathEnv   = "PHRASEBANK_CONFIG"
	databaseDrvEnv  = "DATABASE_DRIVER"
	databaseDSNEnv  = "DATABASE_DSN"
	outputPathEnv   = "PHRASEBANK_OUTPUT"
	serverAddrEnv   = "PHRASEBANK_ADDR"
	logLevelEnv     = "LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Source    SourceConfig    `yaml:"source"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Output    OutputConfig    `yaml:"output"`
	Database  DatabaseConfig  `yaml:"database"`
	Server    ServerConfig    `yaml:"server"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Logging   LoggingConfig   `yaml:"logging"`
	Rules     RulesConfig     `yaml:"rules"`
}

// SourceConfig names the site being scraped and the section pages to visit.
type SourceConfig struct {
	Name     string          `yaml:"name"`
	BaseURL  string          `yaml:"baseUrl"`
	Layout   string          `yaml:"layout"`
	Sections []SectionConfig `yaml:"sections"`
}

// SectionConfig maps a section name to its page. Relative URLs are resolved
// against SourceConfig.BaseURL.
type SectionConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// FetchConfig tunes page retrieval. A negative Retries disables retrying.
type FetchConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	Retries   int           `yaml:"retries"`
	Delay     time.Duration `yaml:"delay"`
	UserAgent string        `yaml:"userAgent"`
}

// OutputConfig describes the JSON export. An empty path disables it.
type OutputConfig struct {
	JSONPath string `yaml:"jsonPath"`
}

// DatabaseConfig describes the SQL store. Driver is "sqlite" or "postgres".
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// ServerConfig holds the lookup API listen address.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// SchedulerConfig defines when the dataset should be rebuilt.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// LoggingConfig selects level and output format ("text" or "json").
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// RulesConfig overrides the phrase word lists; empty lists keep the defaults.
type RulesConfig struct {
	Boilerplate     []string `yaml:"boilerplate"`
	FunctionalWords []string `yaml:"functionalWords"`
	AcademicWords   []string `yaml:"academicWords"`
	Connectives     []string `yaml:"connectives"`
}

// PhraseRules merges the configured lists over the built-in ones.
func (r RulesConfig) PhraseRules() phrase.Rules {
	return phrase.DefaultRules().Merge(phrase.Rules{
		Boilerplate:     r.Boilerplate,
		FunctionalWords: r.FunctionalWords,
		AcademicWords:   r.AcademicWords,
		Connectives:     r.Connectives,
	})
}

// SectionPages returns the configured sections with absolute URLs, in order.
func (c Config) SectionPages() []domain.SectionPage {
	base := strings.TrimRight(c.Source.BaseURL, "/")
	pages := make([]domain.SectionPage, 0, len(c.Source.Sections))
	for _, s := range c.Source.Sections {
		url := s.URL
		if strings.HasPrefix(url, "/") {
			url = base + url
		}
		pages = append(pages, domain.SectionPage{Name: s.Name, URL: url})
	}
	return pages
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	return LoadFile(os.Getenv(configPathEnv))
}

// LoadFile is Load with an explicit path; an empty path means defaults only.
func LoadFile(path string) Config {
	cfg := defaultConfig()

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
	cfg.bindTimezone()

	if len(cfg.Source.Sections) == 0 {
		cfg.Source.Sections = defaultConfig().Source.Sections
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDrvEnv); v != "" {
		c.Database.Driver = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(outputPathEnv); v != "" {
		c.Output.JSONPath = v
	}

	if v := os.Getenv(serverAddrEnv); v != "" {
		c.Server.Addr = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Source.Name != "" {
		base.Source.Name = override.Source.Name
	}
	if override.Source.BaseURL != "" {
		base.Source.BaseURL = override.Source.BaseURL
	}
	if override.Source.Layout != "" {
		base.Source.Layout = override.Source.Layout
	}
	if len(override.Source.Sections) > 0 {
		base.Source.Sections = override.Source.Sections
	}

	if override.Fetch.Timeout > 0 {
		base.Fetch.Timeout = override.Fetch.Timeout
	}
	if override.Fetch.Retries != 0 {
		base.Fetch.Retries = override.Fetch.Retries
	}
	if override.Fetch.Delay > 0 {
		base.Fetch.Delay = override.Fetch.Delay
	}
	if override.Fetch.UserAgent != "" {
		base.Fetch.UserAgent = override.Fetch.UserAgent
	}

	if override.Output.JSONPath != "" {
		base.Output = override.Output
	}

	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}
	if override.Database.Driver != "" {
		base.Database.Driver = override.Database.Driver
	}

	if override.Server.Addr != "" {
		base.Server = override.Server
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if len(override.Rules.Boilerplate) > 0 {
		base.Rules.Boilerplate = override.Rules.Boilerplate
	}
	if len(override.Rules.FunctionalWords) > 0 {
		base.Rules.FunctionalWords = override.Rules.FunctionalWords
	}
	if len(override.Rules.AcademicWords) > 0 {
		base.Rules.AcademicWords = override.Rules.AcademicWords
	}
	if len(override.Rules.Connectives) > 0 {
		base.Rules.Connectives = override.Rules.Connectives
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Source: SourceConfig{
			Name:    "Manchester Academic Phrasebank",
			BaseURL: defaultBaseURL,
			Sections: []SectionConfig{
				{Name: "introduction", URL: "/introducing-work/"},
				{Name: "methods", URL: "/describing-methods/"},
				{Name: "results", URL: "/reporting-results/"},
				{Name: "discussion", URL: "/discussing-findings/"},
				{Name: "conclusion", URL: "/writing-conclusions/"},
			},
		},
		Fetch: FetchConfig{
			Timeout:   15 * time.Second,
			Retries:   2,
			Delay:     time.Second,
			UserAgent: "Mozilla/5.0 (compatible; PhrasebankScanner/1.0)",
		},
		Output:    OutputConfig{JSONPath: "data/phrasebank.json"},
		Database:  DatabaseConfig{Driver: "sqlite", DSN: "file:data/phrasebank.db"},
		Server:    ServerConfig{Addr: ":8080"},
		Scheduler: SchedulerConfig{CronExpression: "", Timezone: defaultTimezone, location: tz},
		Logging:   LoggingConfig{Level: "info", Format: "text"},
	}
}
