package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // zone names must resolve on hosts without a zoneinfo database

	"gopkg.in/yaml.v3"

	"github.com/umputun/tradescope/pkg/ratelimit"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
		BaseURL string        `yaml:"base_url" json:"base_url" jsonschema:"default=http://localhost:8080,description=Base URL for RSS export links"`
	} `yaml:"server" json:"server" jsonschema:"description=Server configuration"`

	Database struct {
		DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:tradescope.db?cache=shared&mode=rwc&_txlock=immediate&_pragma=busy_timeout(5000),description=Database connection string"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=4,description=Maximum number of open connections"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=2,description=Maximum number of idle connections"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
	} `yaml:"database" json:"database" jsonschema:"description=Database configuration"`

	Time TimeConfig `yaml:"time" json:"time" jsonschema:"description=Time zone handling"`

	ScrapedFeed ScrapedFeedConfig `yaml:"scraped_feed" json:"scraped_feed" jsonschema:"description=Scraped public channel feed"`
	QuotaAPI    QuotaAPIConfig    `yaml:"quota_api" json:"quota_api" jsonschema:"description=Quota-limited REST API"`

	RateLimits map[string]RateLimitConfig `yaml:"rate_limits" json:"rate_limits" jsonschema:"description=Call quotas per category (user_lookup, timeline, scrape)"`
}

// TimeConfig defines source and reference time zones
type TimeConfig struct {
	SourceZone    string        `yaml:"source_zone" json:"source_zone" jsonschema:"default=UTC,description=Zone of datetime values without an offset"`
	ReferenceZone string        `yaml:"reference_zone" json:"reference_zone" jsonschema:"default=Local,description=Zone all message timestamps are normalized to"`
	GraceMargin   time.Duration `yaml:"grace_margin" json:"grace_margin" jsonschema:"default=10m,description=How far in the future a bare HH:MM time may be before it is treated as yesterday"`
}

// ScrapedFeedConfig configures the html listing scraper
type ScrapedFeedConfig struct {
	Enabled            bool          `yaml:"enabled" json:"enabled" jsonschema:"default=true,description=Enable scraped feed polling"`
	PollInterval       time.Duration `yaml:"poll_interval" json:"poll_interval" jsonschema:"default=10m,description=Poll interval"`
	URLTemplate        string        `yaml:"url_template" json:"url_template" jsonschema:"default=https://t.me/s/{handle},description=Listing URL, {handle} is replaced with the source handle"`
	Timeout            time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP request timeout"`
	UserAgent          string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=Mozilla/5.0 (compatible; Tradescope/1.0),description=User agent for HTTP requests"`
	MinRequestInterval time.Duration `yaml:"min_request_interval" json:"min_request_interval" jsonschema:"default=2s,description=Minimum delay between requests to the same host"`
	Selectors          Selectors     `yaml:"selectors" json:"selectors" jsonschema:"description=CSS selectors of the listing page"`
}

// Selectors describe the structure of the scraped listing
type Selectors struct {
	Container string `yaml:"container" json:"container" jsonschema:"default=.tgme_widget_message,description=Message block"`
	PostAttr  string `yaml:"post_attr" json:"post_attr" jsonschema:"default=data-post,description=Attribute of the block holding the post reference"`
	Text      string `yaml:"text" json:"text" jsonschema:"default=.tgme_widget_message_text,description=Message text block"`
	Time      string `yaml:"time" json:"time" jsonschema:"default=time,description=Time element with optional datetime attribute"`
	DateText  string `yaml:"date_text" json:"date_text" jsonschema:"default=.tgme_widget_message_date,description=Element with visible time text"`
	Author    string `yaml:"author" json:"author" jsonschema:"default=.tgme_widget_message_owner_name,description=Author or channel name"`
	Views     string `yaml:"views" json:"views" jsonschema:"default=.tgme_widget_message_views,description=View counter"`
	Media     string `yaml:"media" json:"media" jsonschema:"default=.tgme_widget_message_photo_wrap,description=Media element with background-image style"`
}

// QuotaAPIConfig configures the quota-limited api client
type QuotaAPIConfig struct {
	Enabled      bool          `yaml:"enabled" json:"enabled" jsonschema:"default=false,description=Enable quota api polling"`
	PollInterval time.Duration `yaml:"poll_interval" json:"poll_interval" jsonschema:"default=15m,description=Poll interval"`
	BaseURL      string        `yaml:"base_url" json:"base_url" jsonschema:"default=https://api.twitter.com,description=API base URL"`
	BearerToken  string        `yaml:"bearer_token" json:"bearer_token" jsonschema:"description=Bearer credential (can use environment variable)"`
	Timeout      time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP request timeout"`
	MaxResults   int           `yaml:"max_results" json:"max_results" jsonschema:"default=10,minimum=5,maximum=100,description=Timeline records per call"`
	Languages    []string      `yaml:"languages" json:"languages" jsonschema:"description=Allowed language tags, empty allows all"`
}

// RateLimitConfig defines one quota category
type RateLimitConfig struct {
	Window time.Duration `yaml:"window" json:"window" jsonschema:"description=Fixed window size"`
	Limit  int           `yaml:"limit" json:"limit" jsonschema:"minimum=0,description=Calls allowed per window"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	// scraped feed is on unless explicitly disabled
	cfg := Config{}
	cfg.ScrapedFeed.Enabled = true
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	setDefaults(&cfg)

	// validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return &cfg, nil
}

func setDefaults(cfg *Config) {
	// server
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 30 * time.Second
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = "http://localhost:8080"
	}

	// database
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "file:tradescope.db?cache=shared&mode=rwc&_txlock=immediate&_pragma=busy_timeout(5000)"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 4
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 2
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 3600
	}

	// time
	if cfg.Time.SourceZone == "" {
		cfg.Time.SourceZone = "UTC"
	}
	if cfg.Time.ReferenceZone == "" {
		cfg.Time.ReferenceZone = "Local"
	}
	if cfg.Time.GraceMargin == 0 {
		cfg.Time.GraceMargin = 10 * time.Minute
	}

	// scraped feed
	sf := &cfg.ScrapedFeed
	if sf.PollInterval == 0 {
		sf.PollInterval = 10 * time.Minute
	}
	if sf.URLTemplate == "" {
		sf.URLTemplate = "https://t.me/s/{handle}"
	}
	if sf.Timeout == 0 {
		sf.Timeout = 30 * time.Second
	}
	if sf.UserAgent == "" {
		sf.UserAgent = "Mozilla/5.0 (compatible; Tradescope/1.0)"
	}
	if sf.MinRequestInterval == 0 {
		sf.MinRequestInterval = 2 * time.Second
	}
	sf.Selectors = sf.Selectors.withDefaults()

	// quota api
	qa := &cfg.QuotaAPI
	if qa.PollInterval == 0 {
		qa.PollInterval = 15 * time.Minute
	}
	if qa.BaseURL == "" {
		qa.BaseURL = "https://api.twitter.com"
	}
	qa.BaseURL = strings.TrimRight(qa.BaseURL, "/")
	if qa.Timeout == 0 {
		qa.Timeout = 30 * time.Second
	}
	if qa.MaxResults == 0 {
		qa.MaxResults = 10
	}

	// rate limits, configured categories override defaults one by one
	if cfg.RateLimits == nil {
		cfg.RateLimits = map[string]RateLimitConfig{}
	}
	for name, rule := range ratelimit.DefaultRules() {
		if _, ok := cfg.RateLimits[name]; !ok {
			cfg.RateLimits[name] = RateLimitConfig{Window: rule.Window, Limit: rule.Limit}
		}
	}
}

// withDefaults fills empty selectors with the public channel preview layout
func (s Selectors) withDefaults() Selectors {
	set := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	set(&s.Container, ".tgme_widget_message")
	set(&s.PostAttr, "data-post")
	set(&s.Text, ".tgme_widget_message_text")
	set(&s.Time, "time")
	set(&s.DateText, ".tgme_widget_message_date")
	set(&s.Author, ".tgme_widget_message_owner_name")
	set(&s.Views, ".tgme_widget_message_views")
	set(&s.Media, ".tgme_widget_message_photo_wrap")
	return s
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}

	if _, err := time.LoadLocation(cfg.Time.SourceZone); err != nil {
		return fmt.Errorf("time.source_zone: %w", err)
	}
	if _, err := time.LoadLocation(cfg.Time.ReferenceZone); err != nil {
		return fmt.Errorf("time.reference_zone: %w", err)
	}
	if cfg.Time.GraceMargin < 0 {
		return fmt.Errorf("time.grace_margin must be non-negative")
	}

	if cfg.ScrapedFeed.PollInterval < time.Minute {
		return fmt.Errorf("scraped_feed.poll_interval must be at least 1 minute")
	}
	if !strings.Contains(cfg.ScrapedFeed.URLTemplate, "{handle}") {
		return fmt.Errorf("scraped_feed.url_template must contain {handle}")
	}

	if cfg.QuotaAPI.PollInterval < time.Minute {
		return fmt.Errorf("quota_api.poll_interval must be at least 1 minute")
	}
	if cfg.QuotaAPI.MaxResults < 5 || cfg.QuotaAPI.MaxResults > 100 {
		return fmt.Errorf("quota_api.max_results must be between 5 and 100")
	}

	for name, rl := range cfg.RateLimits {
		if rl.Window <= 0 {
			return fmt.Errorf("rate_limits.%s.window must be positive", name)
		}
		if rl.Limit < 0 {
			return fmt.Errorf("rate_limits.%s.limit must be non-negative", name)
		}
	}

	return nil
}

// Locations returns the source and reference zones
func (c *Config) Locations() (source, reference *time.Location, err error) {
	if source, err = time.LoadLocation(c.Time.SourceZone); err != nil {
		return nil, nil, fmt.Errorf("load source zone: %w", err)
	}
	if reference, err = time.LoadLocation(c.Time.ReferenceZone); err != nil {
		return nil, nil, fmt.Errorf("load reference zone: %w", err)
	}
	return source, reference, nil
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetBaseURL returns the public base url used in exported links
func (c *Config) GetBaseURL() string {
	return c.Server.BaseURL
}
