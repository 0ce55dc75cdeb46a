package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the crawler
type Config struct {
	// Weibo API settings
	Weibo WeiboConfig `yaml:"weibo" json:"weibo"`

	// Crawl behavior
	Crawl CrawlConfig `yaml:"crawl" json:"crawl"`

	// Media download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// WeiboConfig holds API client configuration
type WeiboConfig struct {
	BaseURL        string        `yaml:"base_url" json:"base_url"`
	UserAgent      string        `yaml:"user_agent" json:"user_agent"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" json:"connect_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// CrawlConfig holds timeline-walk configuration
type CrawlConfig struct {
	// IncludeForwarded keeps forwarded posts in the result collection.
	// When false only original posts are selected.
	IncludeForwarded bool `yaml:"include_forwarded" json:"include_forwarded"`

	// PageSize is the number of posts the API returns per timeline page.
	PageSize int `yaml:"page_size" json:"page_size"`
}

// DownloadConfig holds media-download configuration
type DownloadConfig struct {
	ConcurrentDownloads int           `yaml:"concurrent_downloads" json:"concurrent_downloads"`
	RetryAttempts       int           `yaml:"retry_attempts" json:"retry_attempts"`
	ConnectTimeout      time.Duration `yaml:"connect_timeout" json:"connect_timeout"`
	ReadTimeout         time.Duration `yaml:"read_timeout" json:"read_timeout"`
	RequestsPerMinute   int           `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// OutputConfig holds results-directory configuration
type OutputConfig struct {
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Weibo: WeiboConfig{
			BaseURL:        "https://m.weibo.cn",
			UserAgent:      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			ConnectTimeout: 5 * time.Second,
			RequestTimeout: 10 * time.Second,
		},
		Crawl: CrawlConfig{
			IncludeForwarded: false,
			PageSize:         10,
		},
		Download: DownloadConfig{
			ConcurrentDownloads: 3,
			RetryAttempts:       5,
			ConnectTimeout:      5 * time.Second,
			ReadTimeout:         10 * time.Second,
			RequestsPerMinute:   60,
		},
		Output: OutputConfig{
			BaseDirectory: "./results",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  fmt.Sprintf("output_%s.log", time.Now().Format("20060102")),
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if baseURL := os.Getenv("WEIBOSCRAPER_BASE_URL"); baseURL != "" {
		c.Weibo.BaseURL = baseURL
	}
	if userAgent := os.Getenv("WEIBOSCRAPER_USER_AGENT"); userAgent != "" {
		c.Weibo.UserAgent = userAgent
	}

	if forwarded := os.Getenv("WEIBOSCRAPER_INCLUDE_FORWARDED"); forwarded != "" {
		c.Crawl.IncludeForwarded = strings.ToLower(forwarded) == "true"
	}

	if concurrent := os.Getenv("WEIBOSCRAPER_CONCURRENT_DOWNLOADS"); concurrent != "" {
		var val int
		fmt.Sscanf(concurrent, "%d", &val)
		if val > 0 {
			c.Download.ConcurrentDownloads = val
		}
	}
	if rpm := os.Getenv("WEIBOSCRAPER_REQUESTS_PER_MINUTE"); rpm != "" {
		var val int
		fmt.Sscanf(rpm, "%d", &val)
		if val > 0 {
			c.Download.RequestsPerMinute = val
		}
	}

	if outputDir := os.Getenv("WEIBOSCRAPER_OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}

	if logLevel := os.Getenv("WEIBOSCRAPER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".weiboscraper.yaml",
		".weiboscraper.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "weiboscraper", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "weiboscraper", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".weiboscraper.yaml"),
		filepath.Join(os.Getenv("HOME"), ".weiboscraper.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Weibo.BaseURL == "" {
		errs = append(errs, errors.New("weibo base URL is required"))
	}
	if c.Weibo.ConnectTimeout <= 0 {
		errs = append(errs, errors.New("connect timeout must be positive"))
	}
	if c.Weibo.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	if c.Crawl.PageSize <= 0 {
		errs = append(errs, errors.New("page size must be positive"))
	}

	if c.Download.ConcurrentDownloads <= 0 {
		errs = append(errs, errors.New("concurrent downloads must be positive"))
	}
	if c.Download.ConcurrentDownloads > 10 {
		errs = append(errs, errors.New("concurrent downloads should not exceed 10"))
	}
	if c.Download.RetryAttempts < 0 {
		errs = append(errs, errors.New("retry attempts cannot be negative"))
	}
	if c.Download.ReadTimeout <= 0 {
		errs = append(errs, errors.New("read timeout must be positive"))
	}
	if c.Download.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if concurrent, ok := flags["concurrent"].(int); ok && concurrent > 0 {
		c.Download.ConcurrentDownloads = concurrent
	}
	if retries, ok := flags["retries"].(int); ok && retries >= 0 {
		c.Download.RetryAttempts = retries
	}
	if forwarded, ok := flags["include-forwarded"].(bool); ok {
		c.Crawl.IncludeForwarded = forwarded
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile, ok := flags["log-file"].(string); ok && logFile != "" {
		c.Logging.File = logFile
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".weiboscraper.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
