package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file, environment, and defaults.
// Priority (highest to lowest): CLI flags (applied by the caller) > env
// vars > config file > defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("PRODCRAWL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		// Crawl configs are commonly written as JSON; let the extension decide.
		if strings.HasSuffix(configPath, ".json") {
			v.SetConfigType("json")
		}
	} else {
		v.SetConfigName("prodcrawl")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".prodcrawl"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if not explicitly specified.
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("crawl.base_url", cfg.Crawl.BaseURL)
	v.SetDefault("crawl.output_dir", cfg.Crawl.OutputDir)
	v.SetDefault("crawl.images_only", cfg.Crawl.ImagesOnly)
	v.SetDefault("crawl.selectors.card_link", cfg.Crawl.Selectors.CardLink)
	v.SetDefault("crawl.selectors.card_image", cfg.Crawl.Selectors.CardImage)
	v.SetDefault("crawl.selectors.title", cfg.Crawl.Selectors.Title)
	v.SetDefault("crawl.selectors.price", cfg.Crawl.Selectors.Price)
	v.SetDefault("crawl.selectors.price_fallback", cfg.Crawl.Selectors.PriceFallback)
	v.SetDefault("crawl.selectors.description", cfg.Crawl.Selectors.Description)
	v.SetDefault("crawl.selectors.image", cfg.Crawl.Selectors.Image)
	v.SetDefault("crawl.selector_engine", cfg.Crawl.SelectorEngine)
	v.SetDefault("crawl.image_markers", cfg.Crawl.ImageMarkers)
	v.SetDefault("crawl.strip_thumbnail_segments", cfg.Crawl.StripThumbnailSegments)
	v.SetDefault("crawl.max_products", cfg.Crawl.MaxProducts)
	v.SetDefault("crawl.delay", cfg.Crawl.Delay)

	v.SetDefault("fetcher.user_agent", cfg.Fetcher.UserAgent)
	v.SetDefault("fetcher.accept", cfg.Fetcher.Accept)
	v.SetDefault("fetcher.accept_language", cfg.Fetcher.AcceptLanguage)
	v.SetDefault("fetcher.referer", cfg.Fetcher.Referer)
	v.SetDefault("fetcher.follow_redirects", cfg.Fetcher.FollowRedirects)
	v.SetDefault("fetcher.max_redirects", cfg.Fetcher.MaxRedirects)
	v.SetDefault("fetcher.max_body_size", cfg.Fetcher.MaxBodySize)
	v.SetDefault("fetcher.timeout", cfg.Fetcher.Timeout)

	v.SetDefault("sql.table", cfg.SQL.Table)

	v.SetDefault("images.output_dir", cfg.Images.OutputDir)
	v.SetDefault("images.base_url", cfg.Images.BaseURL)
	v.SetDefault("images.accept", cfg.Images.Accept)
	v.SetDefault("images.delay", cfg.Images.Delay)

	v.SetDefault("storage.mongo_uri", cfg.Storage.MongoURI)
	v.SetDefault("storage.mongo_database", cfg.Storage.MongoDatabase)
	v.SetDefault("storage.mongo_collection", cfg.Storage.MongoCollection)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
}
