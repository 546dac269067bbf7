package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables consulted by [Config.ApplyEnv] when the file leaves a secret blank.
const (
	EnvCreditsAPIKey = "HITLIST_CREDITS_API_KEY"
	EnvYouTubeAPIKey = "HITLIST_YOUTUBE_API_KEY"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Chart   ChartConfig   `toml:"chart"`
	Credits CreditsConfig `toml:"credits"`
	YouTube YouTubeConfig `toml:"youtube"`
	Storage StorageConfig `toml:"storage"`
	Site    SiteConfig    `toml:"site"`
	Log     LogConfig     `toml:"log"`
}

// ChartConfig describes where the chart table lives and how to read its rows.
type ChartConfig struct {
	URL            string `toml:"url"`
	Limit          int    `toml:"limit"`
	RowSelector    string `toml:"row_selector"`
	RankSelector   string `toml:"rank_selector"`
	TitleSelector  string `toml:"title_selector"`
	ArtistSelector string `toml:"artist_selector"`
	UserAgent      string `toml:"user_agent"`
}

// CreditsConfig contains the remote agent task API settings.
type CreditsConfig struct {
	BaseURL         string `toml:"base_url"`
	APIKey          string `toml:"api_key"`
	TaskType        string `toml:"task_type"`
	PollIntervalMS  int    `toml:"poll_interval_ms"`
	MaxAttempts     int    `toml:"max_attempts"`
	RequestTimeoutS int    `toml:"request_timeout_s"`
}

// YouTubeConfig contains YouTube Data API search settings.
type YouTubeConfig struct {
	BaseURL             string `toml:"base_url"`
	APIKey              string `toml:"api_key"`
	MaxResults          int    `toml:"max_results"`
	CategoryID          string `toml:"category_id"`
	InterRequestDelayMS int    `toml:"inter_request_delay_ms"`
}

// StorageConfig contains snapshot storage settings.
type StorageConfig struct {
	DataDir string `toml:"data_dir"`
}

// SiteConfig contains static page output settings.
type SiteConfig struct {
	OutputDir string `toml:"output_dir"`
	Title     string `toml:"title"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// PollInterval returns the configured task poll interval.
func (c CreditsConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// RequestTimeout returns the HTTP timeout for a single task API call.
func (c CreditsConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutS) * time.Second
}

// InterRequestDelay returns the delay enforced between consecutive searches.
func (c YouTubeConfig) InterRequestDelay() time.Duration {
	return time.Duration(c.InterRequestDelayMS) * time.Millisecond
}

// LoadConfig reads a TOML configuration file from the specified path and overlays it onto [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv fills blank API keys from the environment using lookup (normally [os.Getenv]).
func (c *Config) ApplyEnv(lookup func(string) string) {
	if lookup == nil {
		lookup = os.Getenv
	}
	if c.Credits.APIKey == "" {
		c.Credits.APIKey = lookup(EnvCreditsAPIKey)
	}
	if c.YouTube.APIKey == "" {
		c.YouTube.APIKey = lookup(EnvYouTubeAPIKey)
	}
}

// ValidateChart checks the settings needed by the chart stage.
func (c *Config) ValidateChart() error {
	if c.Chart.URL == "" {
		return fmt.Errorf("%w: chart.url is required", ErrInvalidConfig)
	}
	if c.Chart.Limit <= 0 {
		return fmt.Errorf("%w: chart.limit must be positive", ErrInvalidConfig)
	}
	return nil
}

// ValidateCredits checks the settings needed by the credits stage.
func (c *Config) ValidateCredits() error {
	if c.Credits.APIKey == "" {
		return fmt.Errorf("%w: credits.api_key (or %s) is not set", ErrMissingCredentials, EnvCreditsAPIKey)
	}
	if c.Credits.BaseURL == "" {
		return fmt.Errorf("%w: credits.base_url is required", ErrInvalidConfig)
	}
	if c.Credits.PollIntervalMS <= 0 || c.Credits.MaxAttempts <= 0 {
		return fmt.Errorf("%w: credits.poll_interval_ms and credits.max_attempts must be positive", ErrInvalidConfig)
	}
	return nil
}

// ValidateYouTube checks the settings needed by the videos stage.
func (c *Config) ValidateYouTube() error {
	if c.YouTube.APIKey == "" {
		return fmt.Errorf("%w: youtube.api_key (or %s) is not set", ErrMissingCredentials, EnvYouTubeAPIKey)
	}
	if c.YouTube.InterRequestDelayMS < 0 {
		return fmt.Errorf("%w: youtube.inter_request_delay_ms must not be negative", ErrInvalidConfig)
	}
	return nil
}
