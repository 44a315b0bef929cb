package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds scraper configuration.
type Config struct {
	BaseURL     string
	SecretToken string // X-Secret-Token for the testimonial fragment API
	PageSize    int    // GraphQL page size (the `first` variable)
	MaxPages    int    // safety cap per source against a site that never ends
	Delay       time.Duration
	Timeout     time.Duration
	UserAgent   string
	OutputFile  string
	MetricsAddr string
	Concurrent  bool
	Verbose     bool
}

// DefaultConfig returns conservative defaults for the demo target.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:     "https://web-scraping.dev",
		SecretToken: "secret123",
		PageSize:    50,
		MaxPages:    200,
		Delay:       200 * time.Millisecond,
		Timeout:     30 * time.Second,
		UserAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64)",
		OutputFile:  "data/scraped_data.json",
		MetricsAddr: "",
		Concurrent:  false,
		Verbose:     false,
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

	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive")
	}
	if c.MaxPages <= 0 {
		return fmt.Errorf("max pages must be positive")
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay cannot be negative")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}

	return nil
}

func (c *Config) base() string {
	return strings.TrimSuffix(c.BaseURL, "/")
}

// ProductsURL is the paginated catalog listing endpoint.
func (c *Config) ProductsURL() string {
	return c.base() + "/products"
}

// TestimonialsURL is the testimonial page, sent as the Referer header.
func (c *Config) TestimonialsURL() string {
	return c.base() + "/testimonials"
}

// TestimonialsAPIURL is the token-authenticated fragment endpoint.
func (c *Config) TestimonialsAPIURL() string {
	return c.base() + "/api/testimonials"
}

// ReviewsURL is the review page recorded in the dataset metadata.
func (c *Config) ReviewsURL() string {
	return c.base() + "/reviews"
}

// GraphQLURL is the review connection endpoint.
func (c *Config) GraphQLURL() string {
	return c.base() + "/api/graphql"
}
