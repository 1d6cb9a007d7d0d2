package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/storefront-tools/prodcrawl/internal/config"
	"github.com/storefront-tools/prodcrawl/internal/fetcher"
	"github.com/storefront-tools/prodcrawl/internal/selector"
	"github.com/storefront-tools/prodcrawl/internal/types"
)

// target is one listing page to crawl together with its configured ids.
type target struct {
	url           string
	categoryID    string
	subcategoryID *string
}

// Stats counts what happened during one crawl run.
type Stats struct {
	PagesFetched      int
	PagesFailed       int
	CardsSeen         int
	ProductsAccepted  int
	ProductsSkipped   int
	CategoriesSkipped int
}

// Result is everything a crawl run produced. The caller writes artifacts
// once, after Run returns; nothing is persisted mid-run.
type Result struct {
	Products   []types.ProductRecord
	Images     []types.ImageEntry
	ImagesOnly bool
	Stats      Stats
}

// Crawler walks configured listing pages, optionally fetches each product
// detail page, and accumulates product records and image entries. It issues
// one request at a time with the configured politeness delay in between.
type Crawler struct {
	cfg     *config.Config
	engine  selector.Engine
	fetcher fetcher.Fetcher
	logger  *slog.Logger
}

// New creates a Crawler.
func New(cfg *config.Config, engine selector.Engine, f fetcher.Fetcher, logger *slog.Logger) *Crawler {
	return &Crawler{
		cfg:     cfg,
		engine:  engine,
		fetcher: f,
		logger:  logger.With("component", "crawler"),
	}
}

// targets builds the listing worklist from categories, or from start URLs
// with an unknown category id when no categories are configured.
func (c *Crawler) targets() []target {
	crawl := &c.cfg.Crawl
	if len(crawl.Categories) > 0 {
		out := make([]target, 0, len(crawl.Categories))
		for _, cat := range crawl.Categories {
			out = append(out, target{url: cat.URL, categoryID: cat.CategoryID, subcategoryID: cat.SubcategoryID})
		}
		return out
	}
	out := make([]target, 0, len(crawl.StartURLs))
	for _, raw := range crawl.StartURLs {
		out = append(out, target{url: raw, categoryID: config.CategoryUnknown})
	}
	return out
}

// Run executes one crawl. Category- and item-level failures are logged and
// skipped; only an empty worklist or context cancellation abort the run.
func (c *Crawler) Run(ctx context.Context) (*Result, error) {
	crawl := &c.cfg.Crawl
	targets := c.targets()
	if len(targets) == 0 {
		return nil, types.ErrNoCategories
	}

	imagesOnly := crawl.ImagesOnly
	if len(crawl.Categories) == 0 && !imagesOnly {
		c.logger.Warn("no categories configured; degrading to images-only mode")
		imagesOnly = true
	}

	c.logger.Info("crawl starting",
		"targets", len(targets),
		"mode", modeLabel(imagesOnly),
		"engine", c.engine.Name(),
		"max_products", crawl.MaxProducts,
	)

	result := &Result{ImagesOnly: imagesOnly}
	seen := newSlugSet()

	for _, t := range targets {
		if t.url == "" {
			continue
		}
		if !imagesOnly && t.categoryID == config.CategoryUnknown {
			c.logger.Warn("skip category without ids in full-detail mode", "url", t.url)
			result.Stats.CategoriesSkipped++
			continue
		}

		if err := c.crawlCategory(ctx, t, imagesOnly, seen, result); err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			c.logger.Warn("skip category", "url", t.url, "error", err)
			result.Stats.CategoriesSkipped++
		}

		if err := sleep(ctx, crawl.Delay); err != nil {
			return result, err
		}
	}

	c.logger.Info("crawl complete",
		"products", len(result.Products),
		"images", len(result.Images),
		"pages_fetched", result.Stats.PagesFetched,
		"pages_failed", result.Stats.PagesFailed,
		"skipped", result.Stats.ProductsSkipped,
	)

	return result, nil
}

// crawlCategory fetches one listing page and processes its cards.
func (c *Crawler) crawlCategory(ctx context.Context, t target, imagesOnly bool, seen *slugSet, result *Result) error {
	resp, err := c.fetcher.Fetch(ctx, t.url)
	if err != nil {
		result.Stats.PagesFailed++
		return err
	}
	result.Stats.PagesFetched++

	doc, err := c.engine.Parse(resp.Body)
	if err != nil {
		return &types.ParseError{URL: t.url, Err: err}
	}

	cards := extractCards(doc, t.url, &c.cfg.Crawl)
	result.Stats.CardsSeen += len(cards)
	c.logger.Debug("listing parsed", "url", t.url, "cards", len(cards))

	for _, card := range cards {
		if result.Stats.ProductsAccepted >= c.cfg.Crawl.MaxProducts {
			c.logger.Info("max products reached", "max", c.cfg.Crawl.MaxProducts)
			break
		}
		if seen.Seen(card.Slug) {
			continue
		}
		seen.Mark(card.Slug)

		if imagesOnly {
			result.Images = append(result.Images, types.ImageEntry{ID: card.Slug, URL: card.ImageURL})
			result.Stats.ProductsAccepted++
			c.logger.Info(fmt.Sprintf("[%d] %s", len(result.Images), card.Slug))
			continue
		}

		if err := sleep(ctx, c.cfg.Crawl.Delay); err != nil {
			return err
		}

		record, err := c.crawlProduct(ctx, card, t)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			result.Stats.PagesFailed++
			result.Stats.ProductsSkipped++
			c.logger.Warn("skip product", "slug", card.Slug, "error", err)
			continue
		}
		result.Stats.PagesFetched++

		result.Products = append(result.Products, *record)
		result.Stats.ProductsAccepted++
		if record.ImageURL != "" {
			result.Images = append(result.Images, types.ImageEntry{ID: record.Slug, URL: record.ImageURL})
		}
		c.logger.Info(fmt.Sprintf("[%d] %s | %s | %.2f",
			len(result.Products), card.Slug, Truncate(record.NameEN, 40), record.Price))
	}

	return nil
}

// crawlProduct fetches and extracts one product detail page.
func (c *Crawler) crawlProduct(ctx context.Context, card types.ProductCard, t target) (*types.ProductRecord, error) {
	resp, err := c.fetcher.Fetch(ctx, card.ProductURL)
	if err != nil {
		return nil, err
	}
	doc, err := c.engine.Parse(resp.Body)
	if err != nil {
		return nil, &types.ParseError{URL: card.ProductURL, Err: err}
	}

	record := extractDetails(doc, card.ProductURL, card.ImageURL, &c.cfg.Crawl)
	record.CategoryID = t.categoryID
	record.SubcategoryID = t.subcategoryID
	return &record, nil
}

func modeLabel(imagesOnly bool) string {
	if imagesOnly {
		return "images-only"
	}
	return "full-detail"
}

// sleep waits for the politeness delay, returning early if the context is
// canceled.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
