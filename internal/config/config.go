package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for prodcrawl.
type Config struct {
	Crawl   CrawlConfig   `mapstructure:"crawl"   yaml:"crawl"`
	Fetcher FetcherConfig `mapstructure:"fetcher" yaml:"fetcher"`
	SQL     SQLConfig     `mapstructure:"sql"     yaml:"sql"`
	Images  ImagesConfig  `mapstructure:"images"  yaml:"images"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// Category pairs a listing page URL with the database category ids its
// products belong to. Ids are supplied here, never scraped.
type Category struct {
	URL           string  `mapstructure:"url"            yaml:"url"            json:"url"`
	CategoryID    string  `mapstructure:"category_id"    yaml:"category_id"    json:"category_id"`
	SubcategoryID *string `mapstructure:"subcategory_id" yaml:"subcategory_id" json:"subcategory_id,omitempty"`
}

// Selectors holds the markup-selector strings for every page region the
// crawler extracts from. They are opaque to everything except the selector
// engine; switching engine (css/xpath) changes how they are interpreted.
type Selectors struct {
	CardLink      string `mapstructure:"card_link"      yaml:"card_link"`
	CardImage     string `mapstructure:"card_image"     yaml:"card_image"`
	Title         string `mapstructure:"title"          yaml:"title"`
	Price         string `mapstructure:"price"          yaml:"price"`
	PriceFallback string `mapstructure:"price_fallback" yaml:"price_fallback"`
	Description   string `mapstructure:"description"    yaml:"description"`
	Image         string `mapstructure:"image"          yaml:"image"`
}

// CrawlConfig controls one crawl run. It never mutates after load.
type CrawlConfig struct {
	BaseURL    string     `mapstructure:"base_url"    yaml:"base_url"`
	Categories []Category `mapstructure:"categories"  yaml:"categories"`
	StartURLs  []string   `mapstructure:"start_urls"  yaml:"start_urls"`
	OutputDir  string     `mapstructure:"output_dir"  yaml:"output_dir"`
	ImagesOnly bool       `mapstructure:"images_only" yaml:"images_only"`

	Selectors      Selectors `mapstructure:"selectors"       yaml:"selectors"`
	SelectorEngine string    `mapstructure:"selector_engine" yaml:"selector_engine"`

	// ImageMarkers are substrings that mark a candidate image URL as the
	// full-size main product image. Site-specific; tune per origin CDN.
	ImageMarkers []string `mapstructure:"image_markers" yaml:"image_markers"`

	// StripThumbnailSegments rewrites /thumbnails/<W>/<H>/ paths to the
	// full-size variant. Site-specific; tune per origin CDN.
	StripThumbnailSegments bool `mapstructure:"strip_thumbnail_segments" yaml:"strip_thumbnail_segments"`

	MaxProducts int           `mapstructure:"max_products" yaml:"max_products"`
	Delay       time.Duration `mapstructure:"delay"        yaml:"delay"`
}

// FetcherConfig controls the HTTP client used for pages and assets.
type FetcherConfig struct {
	UserAgent       string        `mapstructure:"user_agent"       yaml:"user_agent"`
	Accept          string        `mapstructure:"accept"           yaml:"accept"`
	AcceptLanguage  string        `mapstructure:"accept_language"  yaml:"accept_language"`
	Referer         string        `mapstructure:"referer"          yaml:"referer"`
	FollowRedirects bool          `mapstructure:"follow_redirects" yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"    yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"    yaml:"max_body_size"`
	Timeout         time.Duration `mapstructure:"timeout"          yaml:"timeout"`
}

// SQLConfig controls the SQL generator.
type SQLConfig struct {
	Table string `mapstructure:"table" yaml:"table"`
}

// ImagesConfig controls the image downloader.
type ImagesConfig struct {
	OutputDir string        `mapstructure:"output_dir" yaml:"output_dir"`
	BaseURL   string        `mapstructure:"base_url"   yaml:"base_url"`
	Accept    string        `mapstructure:"accept"     yaml:"accept"`
	Delay     time.Duration `mapstructure:"delay"      yaml:"delay"`
}

// StorageConfig controls the optional MongoDB product sink.
type StorageConfig struct {
	MongoURI        string `mapstructure:"mongo_uri"        yaml:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"   yaml:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection" yaml:"mongo_collection"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// SkipSlugs are navigational path segments that must never be treated as
// product slugs.
var SkipSlugs = map[string]struct{}{
	"diy":      {},
	"register": {},
	"myorders": {},
	"login":    {},
	"cart":     {},
	"checkout": {},
	"account":  {},
	"search":   {},
	"":         {},
}

// CategoryUnknown is the category id assigned to start URLs that carry no
// category configuration. Such entries are only crawled in images-only mode.
const CategoryUnknown = "unknown"

// DefaultConfig returns a Config with sensible defaults. The selectors
// target a CS-Cart storefront; override them per site.
func DefaultConfig() *Config {
	return &Config{
		Crawl: CrawlConfig{
			BaseURL:   "https://www.cig.co.il",
			OutputDir: "output",
			Selectors: Selectors{
				CardLink:      `a[href*=".html"]`,
				CardImage:     `img[src*="thumbnails"], img[src*="/detailed/"]`,
				Title:         `h1, .ty-product-block-title`,
				Price:         `.ty-price-num, .ty-price .ty-list-price, .ty-price, [class*="ty-price"]`,
				PriceFallback: `[id^="price_update"], .ty-product-block-price`,
				Description:   `meta[name="description"]`,
				Image:         `.ty-product-img img[src*="thumbnails"], .ty-product-img img[src*="detailed"], img.cm-image[src*="600"], img[src*="/600/"], .ty-pict.cm-image[src*="detailed"], img[src*="thumbnails"]`,
			},
			SelectorEngine:         "css",
			ImageMarkers:           []string{"/600/", "600/450"},
			StripThumbnailSegments: true,
			MaxProducts:            2000,
			Delay:                  600 * time.Millisecond,
		},
		Fetcher: FetcherConfig{
			UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			Accept:          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			AcceptLanguage:  "en-US,en;q=0.9,he;q=0.8",
			Referer:         "https://www.cig.co.il/",
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			Timeout:         30 * time.Second,
		},
		SQL: SQLConfig{
			Table: "public.products",
		},
		Images: ImagesConfig{
			OutputDir: "public/product-images",
			BaseURL:   "/product-images/",
			Accept:    "image/avif,image/webp,image/apng,image/svg+xml,image/*,*/*;q=0.8",
			Delay:     400 * time.Millisecond,
		},
		Storage: StorageConfig{
			MongoDatabase:   "storefront",
			MongoCollection: "products",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
