package crawler

import (
	"strings"

	"github.com/storefront-tools/prodcrawl/internal/config"
	"github.com/storefront-tools/prodcrawl/internal/selector"
	"github.com/storefront-tools/prodcrawl/internal/types"
)

const (
	maxNameLen        = 500
	maxDescriptionLen = 2000
	minSlugLen        = 4
	maxPriceValue     = 100000
)

// imageSrc reads the image source from a node, preferring src over
// lazy-loading attributes.
func imageSrc(node selector.Node) string {
	for _, attr := range []string{"src", "data-src", "data-large_image"} {
		if v := node.Attr(attr); v != "" {
			return v
		}
	}
	return ""
}

// extractCards pulls product cards out of a parsed listing page. Cards with
// missing or navigational slugs are dropped; duplicate slugs within the page
// keep the first occurrence.
func extractCards(doc selector.Document, pageURL string, cfg *config.CrawlConfig) []types.ProductCard {
	var cards []types.ProductCard
	seen := make(map[string]struct{})

	for _, link := range doc.SelectAll(cfg.Selectors.CardLink) {
		href := link.Attr("href")
		if href == "" {
			continue
		}
		img, ok := link.SelectFirst(cfg.Selectors.CardImage)
		if !ok {
			continue
		}
		imgURL := ResolveImageURL(imageSrc(img), pageURL)
		if RejectedImage(imgURL) {
			continue
		}
		productURL, err := ResolveURL(href, pageURL)
		if err != nil {
			continue
		}
		slug := SlugFromURL(productURL)
		if _, skip := config.SkipSlugs[slug]; skip || len(slug) < minSlugLen {
			continue
		}
		if _, dup := seen[slug]; dup {
			continue
		}
		seen[slug] = struct{}{}

		cards = append(cards, types.ProductCard{
			Slug:       slug,
			ProductURL: productURL,
			ImageURL:   normalizeImage(imgURL, cfg),
		})
	}
	return cards
}

// extractDetails builds a ProductRecord from a parsed product detail page.
// listingImageURL is the thumbnail already known from the listing card,
// used when the page itself yields no usable image.
func extractDetails(doc selector.Document, productURL, listingImageURL string, cfg *config.CrawlConfig) types.ProductRecord {
	slug := SlugFromURL(productURL)

	name := ""
	if title, ok := doc.SelectFirst(cfg.Selectors.Title); ok {
		name = Truncate(StripHTML(title.HTML()), maxNameLen)
	}
	if name == "" && slug != "" {
		name = strings.ReplaceAll(slug, "-", " ")
	}

	var description *string
	if meta, ok := doc.SelectFirst(cfg.Selectors.Description); ok {
		if content := strings.TrimSpace(meta.Attr("content")); content != "" {
			d := Truncate(content, maxDescriptionLen)
			description = &d
		}
	}

	price := extractPrice(doc, cfg)

	imageURL := extractImage(doc, productURL, cfg)
	if imageURL == "" {
		imageURL = listingImageURL
	}
	imageURL = normalizeImage(imageURL, cfg)

	return types.ProductRecord{
		Slug:          slug,
		NameEN:        name,
		NameHE:        name,
		DescriptionEN: description,
		DescriptionHE: nil,
		Price:         price,
		ImageURL:      imageURL,
		StockStatus:   types.StockInStock,
		Specs:         nil,
	}
}

// extractPrice scans price-selector matches in document order and accepts
// the first plausible value; falls back to the fixed secondary selector.
// Unparseable prices default to 0.
func extractPrice(doc selector.Document, cfg *config.CrawlConfig) float64 {
	for _, node := range doc.SelectAll(cfg.Selectors.Price) {
		if p, ok := ParsePrice(node.Text()); ok && p > 0 && p < maxPriceValue {
			return p
		}
	}
	if fallback, ok := doc.SelectFirst(cfg.Selectors.PriceFallback); ok {
		if p, parsed := ParsePrice(fallback.Text()); parsed {
			return p
		}
	}
	return 0
}

// extractImage scans image-selector matches in document order, preferring a
// URL carrying one of the configured full-size markers and otherwise keeping
// the first non-rejected candidate.
func extractImage(doc selector.Document, productURL string, cfg *config.CrawlConfig) string {
	fallback := ""
	for _, node := range doc.SelectAll(cfg.Selectors.Image) {
		resolved := ResolveImageURL(imageSrc(node), productURL)
		if RejectedImage(resolved) {
			continue
		}
		for _, marker := range cfg.ImageMarkers {
			if strings.Contains(resolved, marker) {
				return resolved
			}
		}
		if fallback == "" {
			fallback = resolved
		}
	}
	return fallback
}

// normalizeImage applies the configured CDN heuristics: thumbnail segment
// stripping and duplicate-extension collapse.
func normalizeImage(rawURL string, cfg *config.CrawlConfig) string {
	if rawURL == "" {
		return rawURL
	}
	if cfg.StripThumbnailSegments {
		rawURL = StripThumbnailSegment(rawURL)
	}
	return CollapseDuplicateExt(rawURL)
}
