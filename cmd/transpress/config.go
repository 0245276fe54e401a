package main

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/transpress"
	"github.com/fwojciec/transpress/goquery"
	"github.com/fwojciec/transpress/pipeline"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is read when neither --config nor TRANSPRESS_CONFIG is set.
const DefaultConfigPath = "transpress.yaml"

// Environment variables.
const (
	EnvConfig         = "TRANSPRESS_CONFIG"
	EnvPath           = "ENV_PATH"
	EnvWPUser         = "WP_USER"
	EnvWPAppPassword  = "WP_APP_PASSWORD"
	EnvGeminiAPIKey   = "GEMINI_API_KEY"
	EnvGoogleAPIKey   = "GOOGLE_TRANSLATE_API_KEY"
	defaultDotEnvPath = ".env"
)

// Source types and translation backends.
const (
	SourceWordPress = "wordpress"
	SourceRSS       = "rss"

	BackendGemini = "gemini"
	BackendGoogle = "google"
)

// Configuration validation errors.
var (
	ErrMissingSourceURL      = errors.New("source.url is required")
	ErrInvalidSourceType     = errors.New("source.type must be 'wordpress' or 'rss'")
	ErrInvalidPerPage        = errors.New("source.per_page must be between 1 and 100")
	ErrMissingDestinationURL = errors.New("destination.url is required")
	ErrInvalidTimezone       = errors.New("invalid timezone")
	ErrInvalidBackend        = errors.New("translation.backend must be 'gemini' or 'google'")
	ErrMissingLanguage       = errors.New("translation languages are required")
	ErrInvalidChunkLimit     = errors.New("translation.chunk_limit must be at least 1")
	ErrInvalidDailyCap       = errors.New("run.daily_cap must be at least 1")
	ErrInvalidMaxPages       = errors.New("run.max_pages must be at least 1")
	ErrInvalidMaxAttempts    = errors.New("run.max_attempts must be non-negative")
	ErrInvalidTimeout        = errors.New("run.request_timeout must be positive")
	ErrInvalidPersist        = errors.New("run.persist must be 'each' or 'end'")
	ErrMissingState          = errors.New("run.state is required")
	ErrInvalidPattern        = errors.New("invalid regular expression")
	ErrMissingWPCredentials  = errors.New(EnvWPUser + " and " + EnvWPAppPassword + " must be set")
	ErrMissingGeminiKey      = errors.New(EnvGeminiAPIKey + " must be set")
	ErrMissingGoogleKey      = errors.New(EnvGoogleAPIKey + " must be set")
)

// Config is the complete transpress configuration.
type Config struct {
	Source      SourceConfig          `yaml:"source"`
	Destination DestinationConfig     `yaml:"destination"`
	Translation TranslationConfig     `yaml:"translation"`
	Run         RunConfig             `yaml:"run"`
	Sanitize    SanitizeConfig        `yaml:"sanitize"`
	Links       LinksConfig           `yaml:"links"`
	Images      ImagesConfig          `yaml:"images"`
	Labels      transpress.BodyLabels `yaml:"labels"`
	Metrics     MetricsConfig         `yaml:"metrics"`

	// Secrets are read from the environment only.
	WPUser       string `yaml:"-"`
	WPPassword   string `yaml:"-"`
	GeminiAPIKey string `yaml:"-"`
	GoogleAPIKey string `yaml:"-"`
}

// SourceConfig describes where articles are read from.
type SourceConfig struct {
	Type     string `yaml:"type"`
	URL      string `yaml:"url"`
	PerPage  int    `yaml:"per_page"`
	Timezone string `yaml:"timezone"`
}

// DestinationConfig describes the WordPress site posts are published to.
type DestinationConfig struct {
	URL      string `yaml:"url"`
	Timezone string `yaml:"timezone"`
	Status   string `yaml:"status"`
}

// TranslationConfig selects and tunes the translation backend.
// Languages are names for Gemini prompts; codes are for Google Translate.
type TranslationConfig struct {
	Backend        string  `yaml:"backend"`
	Model          string  `yaml:"model"`
	SourceLanguage string  `yaml:"source_language"`
	TargetLanguage string  `yaml:"target_language"`
	SourceCode     string  `yaml:"source_code"`
	TargetCode     string  `yaml:"target_code"`
	ChunkLimit     int     `yaml:"chunk_limit"`
	Rate           float64 `yaml:"rate"`
}

// RunConfig bounds a single run.
type RunConfig struct {
	DailyCap       int           `yaml:"daily_cap"`
	MaxPages       int           `yaml:"max_pages"`
	MaxAttempts    int           `yaml:"max_attempts"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	Persist        string        `yaml:"persist"`
	State          string        `yaml:"state"`
	PageRate       float64       `yaml:"page_rate"`
}

// SanitizeConfig overrides the boilerplate markers and metadata patterns.
// Empty lists keep the defaults.
type SanitizeConfig struct {
	BoilerplateMarkers []string `yaml:"boilerplate_markers"`
	MetadataPatterns   []string `yaml:"metadata_patterns"`
}

// LinksConfig lists the domains rewritten to the canonical source domain.
type LinksConfig struct {
	CanonicalDomain string   `yaml:"canonical_domain"`
	DomainAliases   []string `yaml:"domain_aliases"`
}

// ImagesConfig tunes image relocation.
type ImagesConfig struct {
	Concurrency int     `yaml:"concurrency"`
	MaxBytes    int64   `yaml:"max_bytes"`
	Rate        float64 `yaml:"rate"`
}

// MetricsConfig configures the optional Pushgateway export.
type MetricsConfig struct {
	Pushgateway string `yaml:"pushgateway"`
}

// DefaultConfig returns the configuration used for options the file omits.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Type:     SourceWordPress,
			URL:      "https://jp.pronews.com",
			PerPage:  100,
			Timezone: "+09:00",
		},
		Destination: DestinationConfig{
			URL:      "https://prodg.kr",
			Timezone: "Asia/Seoul",
			Status:   "publish",
		},
		Translation: TranslationConfig{
			Backend:        BackendGemini,
			SourceLanguage: "Japanese",
			TargetLanguage: "Korean",
			SourceCode:     "ja",
			TargetCode:     "ko",
			ChunkLimit:     pipeline.DefaultChunkLimit,
			Rate:           1,
		},
		Run: RunConfig{
			DailyCap:       10,
			MaxPages:       pipeline.DefaultMaxPages,
			RequestTimeout: 20 * time.Second,
			Persist:        pipeline.PersistEach,
			State:          "posted_articles.db",
			PageRate:       1,
		},
		Links: LinksConfig{
			CanonicalDomain: "jp.pronews.com",
			DomainAliases:   []string{"pronews.jp", "www.pronews.jp", "ko.pronews.com"},
		},
		Images: ImagesConfig{
			Concurrency: pipeline.DefaultImageConcurrency,
			MaxBytes:    20 << 20,
			Rate:        2,
		},
		Labels: transpress.DefaultBodyLabels,
	}
}

// LoadConfig reads the YAML file at path over the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads variables from the .env file at path into the process
// environment. Variables already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = defaultDotEnvPath
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv reads secrets from getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	c.WPUser = strings.TrimSpace(getenv(EnvWPUser))
	c.WPPassword = strings.TrimSpace(getenv(EnvWPAppPassword))
	c.GeminiAPIKey = strings.TrimSpace(getenv(EnvGeminiAPIKey))
	c.GoogleAPIKey = strings.TrimSpace(getenv(EnvGoogleAPIKey))
}

// Validate checks every option that does not depend on secrets.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Source.URL) == "" {
		return ErrMissingSourceURL
	}
	if c.Source.Type != SourceWordPress && c.Source.Type != SourceRSS {
		return ErrInvalidSourceType
	}
	if c.Source.Type == SourceWordPress && (c.Source.PerPage < 1 || c.Source.PerPage > 100) {
		return ErrInvalidPerPage
	}
	if _, err := ParseLocation(c.Source.Timezone); err != nil {
		return fmt.Errorf("source.timezone: %w", err)
	}

	if strings.TrimSpace(c.Destination.URL) == "" {
		return ErrMissingDestinationURL
	}
	if _, err := ParseLocation(c.Destination.Timezone); err != nil {
		return fmt.Errorf("destination.timezone: %w", err)
	}

	switch c.Translation.Backend {
	case BackendGemini:
		if c.Translation.SourceLanguage == "" || c.Translation.TargetLanguage == "" {
			return ErrMissingLanguage
		}
	case BackendGoogle:
		if c.Translation.SourceCode == "" || c.Translation.TargetCode == "" {
			return ErrMissingLanguage
		}
	default:
		return ErrInvalidBackend
	}
	if c.Translation.ChunkLimit < 1 {
		return ErrInvalidChunkLimit
	}

	if c.Run.DailyCap < 1 {
		return ErrInvalidDailyCap
	}
	if c.Run.MaxPages < 1 {
		return ErrInvalidMaxPages
	}
	if c.Run.MaxAttempts < 0 {
		return ErrInvalidMaxAttempts
	}
	if c.Run.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Run.Persist != pipeline.PersistEach && c.Run.Persist != pipeline.PersistEnd {
		return ErrInvalidPersist
	}
	if strings.TrimSpace(c.Run.State) == "" {
		return ErrMissingState
	}

	if _, err := c.MetadataPatterns(); err != nil {
		return err
	}
	return nil
}

// RequireCredentials checks the secrets needed to translate and to
// publish.
func (c *Config) RequireCredentials(translate, publish bool) error {
	if translate {
		switch c.Translation.Backend {
		case BackendGemini:
			if c.GeminiAPIKey == "" {
				return ErrMissingGeminiKey
			}
		case BackendGoogle:
			if c.GoogleAPIKey == "" {
				return ErrMissingGoogleKey
			}
		}
	}
	if publish && (c.WPUser == "" || c.WPPassword == "") {
		return ErrMissingWPCredentials
	}
	return nil
}

// MetadataPatterns compiles the configured metadata patterns, falling back
// to the defaults.
func (c *Config) MetadataPatterns() ([]*regexp.Regexp, error) {
	if len(c.Sanitize.MetadataPatterns) == 0 {
		return goquery.DefaultMetadataPatterns, nil
	}
	out := make([]*regexp.Regexp, 0, len(c.Sanitize.MetadataPatterns))
	for i, p := range c.Sanitize.MetadataPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: sanitize.metadata_patterns[%d]: %v", ErrInvalidPattern, i, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// BoilerplateMarkers returns the configured markers or the defaults.
func (c *Config) BoilerplateMarkers() []string {
	if len(c.Sanitize.BoilerplateMarkers) == 0 {
		return goquery.DefaultMarkers
	}
	return c.Sanitize.BoilerplateMarkers
}

// Aliases returns the domain alias table. The canonical domain defaults to
// the source host.
func (c *Config) Aliases() *transpress.DomainAliases {
	canonical := c.Links.CanonicalDomain
	if canonical == "" {
		canonical = hostOf(c.Source.URL)
	}
	return transpress.NewDomainAliases(canonical, c.Links.DomainAliases)
}

// ParseLocation accepts an IANA zone name ("Asia/Seoul") or a fixed offset
// ("+09:00", "-0530"). An empty string is UTC.
func ParseLocation(s string) (*time.Location, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "UTC") {
		return time.UTC, nil
	}
	if s[0] == '+' || s[0] == '-' {
		digits := strings.ReplaceAll(s[1:], ":", "")
		if len(digits) != 4 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, s)
		}
		h, errH := strconv.Atoi(digits[:2])
		m, errM := strconv.Atoi(digits[2:])
		if errH != nil || errM != nil || h > 14 || m > 59 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, s)
		}
		offset := h*3600 + m*60
		if s[0] == '-' {
			offset = -offset
		}
		return time.FixedZone(s, offset), nil
	}
	loc, err := time.LoadLocation(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, s)
	}
	return loc, nil
}

func hostOf(rawURL string) string {
	host := rawURL
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	return strings.ToLower(host)
}
