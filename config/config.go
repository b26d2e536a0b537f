package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	apperr "arodriguez/craigwatch/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	// Search criteria
	Locations  []string
	Categories []string
	Blacklist  []string

	// Optional search filters; nil means "not set" and the filter is
	// omitted from generated queries entirely.
	HasPhoto    *bool
	MinPrice    *int
	MaxPrice    *int
	MinYear     *int
	MaxYear     *int
	MinMiles    *int
	MaxMiles    *int
	TitleStatus *int

	// SearchURLTemplate renders one search page address per location.
	// The {location} placeholder is replaced with the location code.
	SearchURLTemplate string

	// Digest delivery
	RecipientEmail string
	SenderEmail    string
	SenderPassword string
	SMTPHost       string
	SMTPPort       int
	SendTime       string // HH:MM, local time

	// Seen-listing store
	SeenFile string
	SeenMax  int

	// Retry policy
	FetchMaxAttempts  int
	FetchRetryDelay   time.Duration
	NotifyMaxAttempts int
	NotifyRetryDelay  time.Duration

	// Memcache configuration (optional; empty disables rate-limit blocking)
	MemcacheAddr   string
	RateLimitBlock time.Duration

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults.
// Malformed values are reported as config errors.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Locations:         getEnvList("SEARCH_LOCATIONS"),
		Categories:        getEnvList("SEARCH_CATEGORIES"),
		Blacklist:         getEnvList("TITLE_BLACKLIST"),
		SearchURLTemplate: getEnv("SEARCH_URL_TEMPLATE", "https://{location}.craigslist.org/search/cta"),
		RecipientEmail:    os.Getenv("RECIPIENT_EMAIL"),
		SenderEmail:       os.Getenv("SENDER_EMAIL"),
		SenderPassword:    os.Getenv("SENDER_PASSWORD"),
		SMTPHost:          getEnv("SMTP_HOST", "smtp.gmail.com"),
		SendTime:          getEnv("SEND_TIME", "19:00"),
		SeenFile:          getEnv("SEEN_FILE", "seen_listings.txt"),
		MemcacheAddr:      os.Getenv("MEMCACHE_ADDR"),
		Environment:       getEnv("CRAIGWATCH_ENVIRONMENT", "development"),
	}

	var err error
	if cfg.SMTPPort, err = getEnvInt("SMTP_PORT", 587); err != nil {
		return nil, err
	}
	if cfg.SeenMax, err = getEnvInt("SEEN_MAX", 75); err != nil {
		return nil, err
	}
	if cfg.FetchMaxAttempts, err = getEnvInt("FETCH_MAX_ATTEMPTS", 10); err != nil {
		return nil, err
	}
	if cfg.NotifyMaxAttempts, err = getEnvInt("NOTIFY_MAX_ATTEMPTS", 3); err != nil {
		return nil, err
	}

	fetchDelay, err := getEnvInt("FETCH_RETRY_DELAY_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	cfg.FetchRetryDelay = time.Duration(fetchDelay) * time.Second

	notifyDelay, err := getEnvInt("NOTIFY_RETRY_DELAY_SECONDS", 5)
	if err != nil {
		return nil, err
	}
	cfg.NotifyRetryDelay = time.Duration(notifyDelay) * time.Second

	blockSeconds, err := getEnvInt("RATE_LIMIT_BLOCK_SECONDS", 500)
	if err != nil {
		return nil, err
	}
	cfg.RateLimitBlock = time.Duration(blockSeconds) * time.Second

	if cfg.HasPhoto, err = getEnvOptionalBool("FILTER_HAS_PHOTO"); err != nil {
		return nil, err
	}

	optionals := []struct {
		key  string
		dest **int
	}{
		{"FILTER_MIN_PRICE", &cfg.MinPrice},
		{"FILTER_MAX_PRICE", &cfg.MaxPrice},
		{"FILTER_MIN_YEAR", &cfg.MinYear},
		{"FILTER_MAX_YEAR", &cfg.MaxYear},
		{"FILTER_MIN_MILES", &cfg.MinMiles},
		{"FILTER_MAX_MILES", &cfg.MaxMiles},
		{"FILTER_TITLE_STATUS", &cfg.TitleStatus},
	}
	for _, opt := range optionals {
		if *opt.dest, err = getEnvOptionalInt(opt.key); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks that all required fields are present and well formed.
// A failure here is fatal at startup.
func (c *Config) Validate() error {
	if len(c.Locations) == 0 {
		return apperr.NewConfig("SEARCH_LOCATIONS must list at least one location code", nil)
	}
	if len(c.Categories) == 0 {
		return apperr.NewConfig("SEARCH_CATEGORIES must list at least one category", nil)
	}
	if c.RecipientEmail == "" {
		return apperr.NewConfig("RECIPIENT_EMAIL is required", nil)
	}
	if c.SenderEmail == "" {
		return apperr.NewConfig("SENDER_EMAIL is required", nil)
	}
	if c.SenderPassword == "" {
		return apperr.NewConfig("SENDER_PASSWORD is required", nil)
	}
	if !strings.Contains(c.SearchURLTemplate, "{location}") {
		return apperr.NewConfig("SEARCH_URL_TEMPLATE must contain a {location} placeholder", nil)
	}
	if c.TitleStatus != nil && (*c.TitleStatus < 1 || *c.TitleStatus > 6) {
		return apperr.NewConfig(fmt.Sprintf("FILTER_TITLE_STATUS must be 1..6, got %d", *c.TitleStatus), nil)
	}
	if c.SeenMax < 1 {
		return apperr.NewConfig("SEEN_MAX must be positive", nil)
	}
	if c.FetchMaxAttempts < 1 || c.NotifyMaxAttempts < 1 {
		return apperr.NewConfig("retry attempt counts must be positive", nil)
	}
	if _, _, err := ParseSendTime(c.SendTime); err != nil {
		return err
	}
	return nil
}

// ParseSendTime parses an HH:MM clock time into hour and minute.
func ParseSendTime(s string) (hour, minute int, err error) {
	t, parseErr := time.Parse("15:04", s)
	if parseErr != nil {
		return 0, 0, apperr.NewConfig(fmt.Sprintf("SEND_TIME must be HH:MM, got %q", s), parseErr)
	}
	return t.Hour(), t.Minute(), nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvList retrieves a comma-separated environment variable as a slice,
// trimming whitespace and dropping empty entries.
func getEnvList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.NewConfig(fmt.Sprintf("%s must be an integer, got %q", key, raw), err)
	}
	return v, nil
}

func getEnvOptionalInt(key string) (*int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperr.NewConfig(fmt.Sprintf("%s must be an integer, got %q", key, raw), err)
	}
	return &v, nil
}

func getEnvOptionalBool(key string) (*bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.NewConfig(fmt.Sprintf("%s must be a boolean, got %q", key, raw), err)
	}
	return &v, nil
}
