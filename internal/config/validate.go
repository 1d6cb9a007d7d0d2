package config

import (
	"fmt"
	"net/url"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Crawl.MaxProducts < 1 {
		return fmt.Errorf("crawl.max_products must be >= 1, got %d", cfg.Crawl.MaxProducts)
	}
	if cfg.Crawl.Delay < 0 {
		return fmt.Errorf("crawl.delay must be >= 0")
	}
	if cfg.Crawl.SelectorEngine != "css" && cfg.Crawl.SelectorEngine != "xpath" {
		return fmt.Errorf("crawl.selector_engine must be 'css' or 'xpath', got %q", cfg.Crawl.SelectorEngine)
	}
	for i, cat := range cfg.Crawl.Categories {
		if cat.URL == "" {
			return fmt.Errorf("crawl.categories[%d] is missing a url", i)
		}
		if err := ValidateURL(cat.URL); err != nil {
			return fmt.Errorf("crawl.categories[%d]: %w", i, err)
		}
		if cat.CategoryID == "" {
			return fmt.Errorf("crawl.categories[%d] (%s) is missing a category_id", i, cat.URL)
		}
	}
	for i, raw := range cfg.Crawl.StartURLs {
		if err := ValidateURL(raw); err != nil {
			return fmt.Errorf("crawl.start_urls[%d]: %w", i, err)
		}
	}

	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}
	if cfg.Fetcher.Timeout <= 0 {
		return fmt.Errorf("fetcher.timeout must be > 0")
	}

	if cfg.SQL.Table == "" {
		return fmt.Errorf("sql.table must not be empty")
	}

	if cfg.Images.Delay < 0 {
		return fmt.Errorf("images.delay must be >= 0")
	}
	if cfg.Images.OutputDir == "" {
		return fmt.Errorf("images.output_dir must not be empty")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	return nil
}

// ValidateURL checks if a URL string is valid for crawling.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
