package crawler

import (
	"log/slog"
	"os"
	"testing"

	"github.com/storefront-tools/prodcrawl/internal/config"
	"github.com/storefront-tools/prodcrawl/internal/selector"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const listingHTML = `<!DOCTYPE html>
<html>
<body>
<div class="ty-grid-list">
    <a href="/garden/ceramic-planter-large.html"><img src="/images/thumbnails/92/92/detailed/450/planter.jpg"></a>
    <a href="/garden/steel-watering-can.html"><img src="/images/thumbnails/92/92/detailed/450/can.jpg.webp"></a>
    <a href="/garden/bamboo-wind-chime.html"><img src="/images/thumbnails/92/92/detailed/450/chime.jpg"></a>
    <a href="/login.html"><img src="/images/thumbnails/92/92/detailed/450/nav.jpg"></a>
    <a href="/a.html"><img src="/images/thumbnails/92/92/detailed/450/a.jpg"></a>
    <a href="/garden/ceramic-planter-large.html"><img src="/images/thumbnails/92/92/detailed/450/planter-alt.jpg"></a>
    <a href="/garden/plastic-bucket.html"><img src="/images/thumbnails/92/92/logo.png"></a>
    <a href="/garden/no-image-here.html">text only</a>
</div>
</body>
</html>`

const detailHTML = `<!DOCTYPE html>
<html>
<head>
    <meta name="description" content="  Hand thrown ceramic planter for patio and balcony.  ">
</head>
<body>
<h1>Ceramic <span>Planter</span> Large</h1>
<span class="ty-price-num">₪ 0.00</span>
<span class="ty-price-num">₪ 145.00</span>
<div class="ty-product-img">
    <img src="/images/thumbnails/300/200/detailed/450/planter-side.jpg">
    <img src="/images/detailed/600/450/planter.jpg">
</div>
</body>
</html>`

func parseDoc(t *testing.T, html string) selector.Document {
	t.Helper()
	engine := selector.NewCSSEngine(testLogger)
	doc, err := engine.Parse([]byte(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func TestExtractCards(t *testing.T) {
	cfg := config.DefaultConfig()
	doc := parseDoc(t, listingHTML)

	cards := extractCards(doc, "https://shop.test/garden/", &cfg.Crawl)

	if len(cards) != 3 {
		t.Fatalf("expected 3 cards, got %d: %+v", len(cards), cards)
	}

	want := []struct {
		slug  string
		image string
	}{
		{"ceramic-planter-large", "https://shop.test/images/detailed/450/planter.jpg"},
		{"steel-watering-can", "https://shop.test/images/detailed/450/can.jpg"},
		{"bamboo-wind-chime", "https://shop.test/images/detailed/450/chime.jpg"},
	}
	for i, w := range want {
		if cards[i].Slug != w.slug {
			t.Errorf("card %d slug = %q, want %q", i, cards[i].Slug, w.slug)
		}
		if cards[i].ImageURL != w.image {
			t.Errorf("card %d image = %q, want %q", i, cards[i].ImageURL, w.image)
		}
	}

	if cards[0].ProductURL != "https://shop.test/garden/ceramic-planter-large.html" {
		t.Errorf("card 0 product URL = %q", cards[0].ProductURL)
	}

	seen := make(map[string]bool)
	for _, c := range cards {
		if seen[c.Slug] {
			t.Errorf("duplicate slug %q", c.Slug)
		}
		seen[c.Slug] = true
	}
}

func TestExtractDetails(t *testing.T) {
	cfg := config.DefaultConfig()
	doc := parseDoc(t, detailHTML)

	record := extractDetails(doc,
		"https://shop.test/garden/ceramic-planter-large.html",
		"https://shop.test/images/detailed/450/planter.jpg",
		&cfg.Crawl)

	if record.Slug != "ceramic-planter-large" {
		t.Errorf("slug = %q", record.Slug)
	}
	if record.NameEN != "Ceramic Planter Large" {
		t.Errorf("name_en = %q", record.NameEN)
	}
	if record.NameHE != record.NameEN {
		t.Errorf("name_he = %q, want same as name_en", record.NameHE)
	}
	if record.DescriptionEN == nil || *record.DescriptionEN != "Hand thrown ceramic planter for patio and balcony." {
		t.Errorf("description_en = %v", record.DescriptionEN)
	}
	if record.DescriptionHE != nil {
		t.Errorf("description_he should be nil, got %v", record.DescriptionHE)
	}
	if record.Price != 145.00 {
		t.Errorf("price = %v, want 145 (zero-price match must be skipped)", record.Price)
	}
	// The /600/ marker wins over the earlier thumbnail candidate.
	if record.ImageURL != "https://shop.test/images/detailed/600/450/planter.jpg" {
		t.Errorf("image_url = %q", record.ImageURL)
	}
	if record.StockStatus != "in_stock" {
		t.Errorf("stock_status = %q", record.StockStatus)
	}
	if record.Specs != nil {
		t.Errorf("specs should be nil, got %v", record.Specs)
	}
}

func TestExtractDetailsFallbacks(t *testing.T) {
	cfg := config.DefaultConfig()
	doc := parseDoc(t, `<html><body><p>nothing useful</p></body></html>`)

	record := extractDetails(doc,
		"https://shop.test/garden/bamboo-wind-chime.html",
		"https://shop.test/images/detailed/450/chime.jpg",
		&cfg.Crawl)

	if record.NameEN != "bamboo wind chime" {
		t.Errorf("name fallback = %q, want slug with spaces", record.NameEN)
	}
	if record.DescriptionEN != nil {
		t.Errorf("description should be nil, got %v", record.DescriptionEN)
	}
	if record.Price != 0 {
		t.Errorf("price should default to 0, got %v", record.Price)
	}
	if record.ImageURL != "https://shop.test/images/detailed/450/chime.jpg" {
		t.Errorf("image should fall back to listing thumbnail, got %q", record.ImageURL)
	}
}

func TestExtractPriceFallbackSelector(t *testing.T) {
	cfg := config.DefaultConfig()
	doc := parseDoc(t, `<html><body>
<span class="ty-price-num">TBD</span>
<div id="price_update_1544">89,90</div>
</body></html>`)

	if got := extractPrice(doc, &cfg.Crawl); got != 89.90 {
		t.Errorf("fallback price = %v, want 89.90", got)
	}
}

func TestExtractDetailsNameTruncated(t *testing.T) {
	cfg := config.DefaultConfig()
	long := make([]byte, 0, 600)
	for i := 0; i < 600; i++ {
		long = append(long, 'x')
	}
	doc := parseDoc(t, "<html><body><h1>"+string(long)+"</h1></body></html>")

	record := extractDetails(doc, "https://shop.test/p/very-long-name.html", "", &cfg.Crawl)
	if len(record.NameEN) != maxNameLen {
		t.Errorf("name length = %d, want %d", len(record.NameEN), maxNameLen)
	}
}
