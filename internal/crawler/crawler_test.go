package crawler

import (
	"context"
	"fmt"
	"testing"

	"github.com/jarcoal/httpmock"

	"github.com/storefront-tools/prodcrawl/internal/config"
	"github.com/storefront-tools/prodcrawl/internal/fetcher"
	"github.com/storefront-tools/prodcrawl/internal/selector"
)

func htmlResponder(body string) httpmock.Responder {
	resp := httpmock.NewStringResponse(200, body)
	resp.Header.Set("Content-Type", "text/html")
	return httpmock.ResponderFromResponse(resp)
}

func detailPage(name string, price string) string {
	return fmt.Sprintf(`<html>
<head><meta name="description" content="All about %s."></head>
<body>
<h1>%s</h1>
<span class="ty-price-num">₪ %s</span>
<div class="ty-product-img"><img src="/images/detailed/600/450/%s.jpg"></div>
</body></html>`, name, name, price, name)
}

func listingPage(slugs []string) string {
	out := "<html><body>"
	for _, slug := range slugs {
		out += fmt.Sprintf(`<a href="/garden/%s.html"><img src="/images/thumbnails/92/92/detailed/450/%s.jpg"></a>`, slug, slug)
	}
	// A navigational link that must never become a product.
	out += `<a href="/cart.html"><img src="/images/thumbnails/92/92/detailed/450/cart.jpg"></a>`
	out += "</body></html>"
	return out
}

func newTestCrawler(t *testing.T, cfg *config.Config, transport *httpmock.MockTransport) *Crawler {
	t.Helper()
	engine, err := selector.ForName(cfg.Crawl.SelectorEngine, testLogger)
	if err != nil {
		t.Fatalf("selector engine: %v", err)
	}
	f, err := fetcher.NewHTTPFetcher(&cfg.Fetcher, testLogger, fetcher.WithTransport(transport))
	if err != nil {
		t.Fatalf("new fetcher: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return New(cfg, engine, f, testLogger)
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Crawl.Delay = 0
	cfg.Crawl.Categories = []config.Category{
		{URL: "https://shop.test/garden/", CategoryID: "garden"},
	}
	return cfg
}

func TestCrawlerFullDetail(t *testing.T) {
	cfg := testConfig()
	slugs := []string{"ceramic-planter-large", "steel-watering-can", "bamboo-wind-chime"}

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "https://shop.test/garden/", htmlResponder(listingPage(slugs)))
	for i, slug := range slugs {
		transport.RegisterResponder("GET", "https://shop.test/garden/"+slug+".html",
			htmlResponder(detailPage(slug, fmt.Sprintf("%d.50", (i+1)*10))))
	}

	c := newTestCrawler(t, cfg, transport)
	result, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(result.Products) != 3 {
		t.Fatalf("products = %d, want 3", len(result.Products))
	}
	if len(result.Images) != 3 {
		t.Fatalf("images = %d, want 3", len(result.Images))
	}

	for i, slug := range slugs {
		p := result.Products[i]
		if p.Slug != slug {
			t.Errorf("product %d slug = %q, want %q (card order must be preserved)", i, p.Slug, slug)
		}
		if p.NameEN == "" {
			t.Errorf("product %d has empty name_en", i)
		}
		if p.Price <= 0 {
			t.Errorf("product %d price = %v, want > 0", i, p.Price)
		}
		if p.CategoryID != "garden" {
			t.Errorf("product %d category = %q", i, p.CategoryID)
		}
		if result.Images[i].ID != slug {
			t.Errorf("image %d id = %q, want %q", i, result.Images[i].ID, slug)
		}
	}

	if result.Products[0].Price != 10.50 {
		t.Errorf("product 0 price = %v, want 10.50", result.Products[0].Price)
	}
}

func TestCrawlerImagesOnly(t *testing.T) {
	cfg := testConfig()
	cfg.Crawl.ImagesOnly = true
	slugs := []string{"ceramic-planter-large", "steel-watering-can"}

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "https://shop.test/garden/", htmlResponder(listingPage(slugs)))

	c := newTestCrawler(t, cfg, transport)
	result, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if !result.ImagesOnly {
		t.Error("result should be images-only")
	}
	if len(result.Products) != 0 {
		t.Errorf("products = %d, want 0", len(result.Products))
	}
	if len(result.Images) != 2 {
		t.Fatalf("images = %d, want 2", len(result.Images))
	}
	if result.Images[0].URL != "https://shop.test/images/detailed/450/ceramic-planter-large.jpg" {
		t.Errorf("image 0 url = %q", result.Images[0].URL)
	}
	// No detail page was registered; images-only must never fetch one.
	info := transport.GetCallCountInfo()
	if calls := info["GET https://shop.test/garden/"]; calls != 1 {
		t.Errorf("listing fetched %d times, want 1", calls)
	}
	if len(info) != 1 {
		t.Errorf("unexpected extra requests: %v", info)
	}
}

func TestCrawlerDedupAcrossCategories(t *testing.T) {
	cfg := testConfig()
	cfg.Crawl.Categories = []config.Category{
		{URL: "https://shop.test/garden/", CategoryID: "garden"},
		{URL: "https://shop.test/patio/", CategoryID: "patio"},
	}

	shared := []string{"ceramic-planter-large"}
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "https://shop.test/garden/", htmlResponder(listingPage(shared)))
	transport.RegisterResponder("GET", "https://shop.test/patio/", htmlResponder(listingPage(shared)))
	transport.RegisterResponder("GET", "https://shop.test/garden/ceramic-planter-large.html",
		htmlResponder(detailPage("ceramic-planter-large", "45.00")))

	c := newTestCrawler(t, cfg, transport)
	result, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(result.Products) != 1 {
		t.Fatalf("products = %d, want 1 (slug must be deduplicated across categories)", len(result.Products))
	}
	if result.Products[0].CategoryID != "garden" {
		t.Errorf("category = %q, want first-seen category \"garden\"", result.Products[0].CategoryID)
	}
}

func TestCrawlerCategoryFailureSkipped(t *testing.T) {
	cfg := testConfig()
	cfg.Crawl.Categories = []config.Category{
		{URL: "https://shop.test/broken/", CategoryID: "broken"},
		{URL: "https://shop.test/garden/", CategoryID: "garden"},
	}

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "https://shop.test/broken/", httpmock.NewStringResponder(500, "boom"))
	transport.RegisterResponder("GET", "https://shop.test/garden/", htmlResponder(listingPage([]string{"steel-watering-can"})))
	transport.RegisterResponder("GET", "https://shop.test/garden/steel-watering-can.html",
		htmlResponder(detailPage("steel-watering-can", "30.00")))

	c := newTestCrawler(t, cfg, transport)
	result, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("a failing category must not fail the run: %v", err)
	}

	if len(result.Products) != 1 {
		t.Fatalf("products = %d, want 1 from the healthy category", len(result.Products))
	}
	if result.Stats.CategoriesSkipped != 1 {
		t.Errorf("categories skipped = %d, want 1", result.Stats.CategoriesSkipped)
	}
}

func TestCrawlerProductFailureSkipped(t *testing.T) {
	cfg := testConfig()
	slugs := []string{"ceramic-planter-large", "steel-watering-can"}

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "https://shop.test/garden/", htmlResponder(listingPage(slugs)))
	transport.RegisterResponder("GET", "https://shop.test/garden/ceramic-planter-large.html",
		httpmock.NewStringResponder(404, "gone"))
	transport.RegisterResponder("GET", "https://shop.test/garden/steel-watering-can.html",
		htmlResponder(detailPage("steel-watering-can", "30.00")))

	c := newTestCrawler(t, cfg, transport)
	result, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("a failing product must not fail the run: %v", err)
	}

	if len(result.Products) != 1 {
		t.Fatalf("products = %d, want 1", len(result.Products))
	}
	if result.Products[0].Slug != "steel-watering-can" {
		t.Errorf("surviving product = %q", result.Products[0].Slug)
	}
	if result.Stats.ProductsSkipped != 1 {
		t.Errorf("products skipped = %d, want 1", result.Stats.ProductsSkipped)
	}
}

func TestCrawlerMaxProducts(t *testing.T) {
	cfg := testConfig()
	cfg.Crawl.MaxProducts = 2
	slugs := []string{"ceramic-planter-large", "steel-watering-can", "bamboo-wind-chime"}

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "https://shop.test/garden/", htmlResponder(listingPage(slugs)))
	for _, slug := range slugs {
		transport.RegisterResponder("GET", "https://shop.test/garden/"+slug+".html",
			htmlResponder(detailPage(slug, "45.00")))
	}

	c := newTestCrawler(t, cfg, transport)
	result, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(result.Products) != 2 {
		t.Fatalf("products = %d, want cap of 2", len(result.Products))
	}
}

func TestCrawlerNoTargets(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Crawl.Delay = 0

	c := newTestCrawler(t, cfg, httpmock.NewMockTransport())
	if _, err := c.Run(context.Background()); err == nil {
		t.Fatal("expected error for empty worklist")
	}
}

func TestCrawlerStartURLsDegradeToImagesOnly(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Crawl.Delay = 0
	cfg.Crawl.StartURLs = []string{"https://shop.test/garden/"}

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "https://shop.test/garden/", htmlResponder(listingPage([]string{"ceramic-planter-large"})))

	c := newTestCrawler(t, cfg, transport)
	result, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if !result.ImagesOnly {
		t.Error("start URLs without categories must degrade to images-only")
	}
	if len(result.Images) != 1 {
		t.Fatalf("images = %d, want 1", len(result.Images))
	}
}
