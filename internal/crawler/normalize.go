package crawler

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	// Duplicate extension left behind by the origin CDN, e.g. foo.jpg.webp.
	// Such paths 404 on the full-size host, so the trailing .webp goes.
	dupExtRe = regexp.MustCompile(`(?i)\.(webp|jpg|jpeg|png|gif)\.webp$`)

	// /thumbnails/<W>/<H>/ path segment in thumbnail URLs.
	thumbRe = regexp.MustCompile(`/thumbnails/\d+/\d+`)

	htmlSuffixRe = regexp.MustCompile(`(?i)\.html$`)
	tagRe        = regexp.MustCompile(`<[^>]+>`)
	spaceRe      = regexp.MustCompile(`\s+`)
	priceRe      = regexp.MustCompile(`\d+(\.\d+)?`)
	nonPriceRe   = regexp.MustCompile(`[^\d.,]`)
)

// CollapseDuplicateExt collapses a trailing ".<ext>.webp" to ".<ext>".
func CollapseDuplicateExt(rawURL string) string {
	return dupExtRe.ReplaceAllString(rawURL, ".$1")
}

// StripThumbnailSegment removes a /thumbnails/<W>/<H> path segment,
// attempting to recover the full-size image path.
func StripThumbnailSegment(rawURL string) string {
	if !strings.Contains(rawURL, "/thumbnails/") {
		return rawURL
	}
	out := thumbRe.ReplaceAllString(rawURL, "")
	if out == "" {
		return rawURL
	}
	return out
}

// SlugFromURL derives a product slug from the last path segment of a URL,
// with any .html suffix stripped. Returns "" if the URL does not parse.
func SlugFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	segment := ""
	for _, part := range strings.Split(u.Path, "/") {
		if part != "" {
			segment = part
		}
	}
	return htmlSuffixRe.ReplaceAllString(segment, "")
}

// ResolveURL resolves href against base and returns the absolute URL.
func ResolveURL(href, base string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(ref).String(), nil
}

// ResolveImageURL resolves an image src against the page URL. data: URIs
// and unparseable sources resolve to "".
func ResolveImageURL(src, pageURL string) string {
	if src == "" || strings.HasPrefix(src, "data:") {
		return ""
	}
	resolved, err := ResolveURL(src, pageURL)
	if err != nil {
		return ""
	}
	return resolved
}

// RejectedImage reports whether a resolved image URL should be discarded
// (site logos and placeholder graphics).
func RejectedImage(resolved string) bool {
	return resolved == "" ||
		strings.Contains(resolved, "logo") ||
		strings.Contains(resolved, "placeholder")
}

// ParsePrice extracts a price from free-form text such as "₪ 45.00" or
// "45,00". The first decimal comma is normalized to a period. Returns
// false when no number can be parsed.
func ParsePrice(text string) (float64, bool) {
	cleaned := nonPriceRe.ReplaceAllString(text, "")
	cleaned = strings.Replace(cleaned, ",", ".", 1)
	match := priceRe.FindString(cleaned)
	if match == "" {
		return 0, false
	}
	price, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return price, true
}

// StripHTML removes markup tags and collapses whitespace.
func StripHTML(html string) string {
	text := tagRe.ReplaceAllString(html, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}

// Truncate caps s at n runes.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
