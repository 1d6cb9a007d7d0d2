package types

import "time"

// StockInStock is the stock status assigned to every crawled product.
const StockInStock = "in_stock"

// ProductCard is a product reference extracted from a category listing page.
// Cards are ephemeral: they exist only between listing extraction and the
// detail fetch (or image-entry emission) within a single crawl run.
type ProductCard struct {
	// Slug is the last URL path segment with any .html suffix stripped.
	Slug string

	// ProductURL is the absolute product detail page URL.
	ProductURL string

	// ImageURL is the absolute, normalized thumbnail URL.
	ImageURL string
}

// ProductRecord is the persisted unit of work, serialized verbatim into
// crawled-products.json. Field names are the artifact contract.
type ProductRecord struct {
	Slug          string  `json:"slug" bson:"slug"`
	NameEN        string  `json:"name_en" bson:"name_en"`
	NameHE        string  `json:"name_he" bson:"name_he"`
	DescriptionEN *string `json:"description_en" bson:"description_en"`
	DescriptionHE *string `json:"description_he" bson:"description_he"`
	Price         float64 `json:"price" bson:"price"`
	ImageURL      string  `json:"image_url" bson:"image_url"`
	StockStatus   string  `json:"stock_status" bson:"stock_status"`
	Specs         any     `json:"specs" bson:"specs"`
	CategoryID    string  `json:"category_id" bson:"category_id"`
	SubcategoryID *string `json:"subcategory_id" bson:"subcategory_id"`
}

// ImageEntry pairs a product id with its image source URL. It is both the
// crawler's image-list output and the downloader's input.
type ImageEntry struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// DownloadResult records the outcome of a single image download.
// LocalPath is nil when the download failed.
type DownloadResult struct {
	ID        string  `json:"id"`
	URL       string  `json:"url"`
	LocalPath *string `json:"localPath"`
	Filename  string  `json:"filename,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// Manifest aggregates all download outcomes of one downloader run.
type Manifest struct {
	Generated time.Time        `json:"generated"`
	BaseURL   string           `json:"baseUrl"`
	Images    []DownloadResult `json:"images"`
}
