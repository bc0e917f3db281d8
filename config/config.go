package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds scraper configuration.
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	UserAgent      string
	TopN           int
	OutputDir      string
	FilenamePrefix string
}

// DefaultConfig returns the fixed settings used by the command.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        "https://top.baidu.com/board?platform=pc",
		Timeout:        10 * time.Second,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		TopN:           10,
		OutputDir:      ".",
		FilenamePrefix: "baidu_hot_searches",
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.TopN <= 0 {
		return fmt.Errorf("top n must be positive")
	}
	if c.FilenamePrefix == "" {
		return fmt.Errorf("filename prefix cannot be empty")
	}

	return nil
}
