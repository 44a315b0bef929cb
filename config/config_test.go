package config

import (
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "empty base url",
			mutate: func(cfg *Config) {
				cfg.BaseURL = ""
			},
			wantErr: "base URL",
		},
		{
			name: "invalid url format",
			mutate: func(cfg *Config) {
				cfg.BaseURL = "http://"
			},
			wantErr: "base URL",
		},
		{
			name: "zero page size",
			mutate: func(cfg *Config) {
				cfg.PageSize = 0
			},
			wantErr: "page size",
		},
		{
			name: "zero max pages",
			mutate: func(cfg *Config) {
				cfg.MaxPages = 0
			},
			wantErr: "max pages",
		},
		{
			name: "negative delay",
			mutate: func(cfg *Config) {
				cfg.Delay = -1 * time.Millisecond
			},
			wantErr: "delay",
		},
		{
			name: "negative timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = -1 * time.Second
			},
			wantErr: "timeout",
		},
		{
			name: "empty output file",
			mutate: func(cfg *Config) {
				cfg.OutputFile = ""
			},
			wantErr: "output file",
		},
		{
			name: "empty user agent",
			mutate: func(cfg *Config) {
				cfg.UserAgent = ""
			},
			wantErr: "user agent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestEndpointURLs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseURL = "http://example.test/"

	if got := cfg.ProductsURL(); got != "http://example.test/products" {
		t.Fatalf("products url = %q", got)
	}
	if got := cfg.TestimonialsAPIURL(); got != "http://example.test/api/testimonials" {
		t.Fatalf("testimonials api url = %q", got)
	}
	if got := cfg.GraphQLURL(); got != "http://example.test/api/graphql" {
		t.Fatalf("graphql url = %q", got)
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("SCRAPE_TEST_STR", "hello")
	if value, ok := EnvString("SCRAPE_TEST_STR"); !ok || value != "hello" {
		t.Fatalf("EnvString = %q, %v", value, ok)
	}
	if _, ok := EnvString("SCRAPE_TEST_MISSING"); ok {
		t.Fatalf("unset variable should report not ok")
	}

	t.Setenv("SCRAPE_TEST_INT", "42")
	value, ok, err := EnvInt("SCRAPE_TEST_INT")
	if err != nil || !ok || value != 42 {
		t.Fatalf("EnvInt = %d, %v, %v", value, ok, err)
	}

	t.Setenv("SCRAPE_TEST_INT", "nope")
	if _, _, err := EnvInt("SCRAPE_TEST_INT"); err == nil {
		t.Fatalf("expected error for non-integer value")
	}

	t.Setenv("SCRAPE_TEST_BOOL", "true")
	flag, ok, err := EnvBool("SCRAPE_TEST_BOOL")
	if err != nil || !ok || !flag {
		t.Fatalf("EnvBool = %v, %v, %v", flag, ok, err)
	}
}
