package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/storefront-tools/prodcrawl/internal/artifact"
	"github.com/storefront-tools/prodcrawl/internal/config"
	"github.com/storefront-tools/prodcrawl/internal/crawler"
	"github.com/storefront-tools/prodcrawl/internal/fetcher"
	"github.com/storefront-tools/prodcrawl/internal/selector"
)

var (
	crawlOutputDir   string
	crawlImagesOnly  bool
	crawlMaxProducts int
	crawlDelay       string
	crawlEngine      string
	crawlMongoURI    string
)

// crawlCmd creates the "crawl" subcommand.
func crawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl configured category listings into product artifacts",
		Long: `Fetch every configured category listing page, extract product cards,
and (unless --images-only) fetch each product's detail page for name, price,
description and main image. Writes crawled-products.json and
product-image-urls.json to the output directory.`,
		RunE: runCrawl,
	}

	cmd.Flags().StringVarP(&crawlOutputDir, "output-dir", "o", "", "artifact output directory")
	cmd.Flags().BoolVar(&crawlImagesOnly, "images-only", false, "only extract image URLs from listings (no detail fetch)")
	cmd.Flags().IntVarP(&crawlMaxProducts, "max-products", "m", 0, "maximum accepted products (0 = use config)")
	cmd.Flags().StringVar(&crawlDelay, "delay", "", "politeness delay between requests (e.g. 600ms)")
	cmd.Flags().StringVar(&crawlEngine, "selector-engine", "", "selector engine: css or xpath")
	cmd.Flags().StringVar(&crawlMongoURI, "mongo-uri", "", "also insert product records into this MongoDB")

	return cmd
}

// runCrawl executes the crawl command.
func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyCrawlOverrides(cfg)

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logger := setupLogger(&cfg.Logging)

	if len(cfg.Crawl.Categories) == 0 && len(cfg.Crawl.StartURLs) == 0 {
		return fmt.Errorf(`config must contain "categories": [{"url", "category_id", "subcategory_id"?}, ...] or "start_urls": [...]`)
	}

	engine, err := selector.ForName(cfg.Crawl.SelectorEngine, logger)
	if err != nil {
		return err
	}

	httpFetcher, err := fetcher.NewHTTPFetcher(&cfg.Fetcher, logger)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	defer httpFetcher.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	outDir := cfg.Crawl.OutputDir
	artifact.CleanupPrevious(outDir, logger)

	start := time.Now()
	result, err := crawler.New(cfg, engine, httpFetcher, logger).Run(ctx)
	if err != nil {
		return fmt.Errorf("crawl: %w", err)
	}

	if result.ImagesOnly {
		imagesPath := filepath.Join(outDir, artifact.ImageURLsFile)
		if err := artifact.WriteJSON(imagesPath, result.Images); err != nil {
			return err
		}
		logger.Info("image URL list written", "path", imagesPath, "entries", len(result.Images))
		fmt.Printf("Wrote %d image URLs to %s\n", len(result.Images), imagesPath)
		fmt.Printf("Next: prodcrawl images --input %s\n", imagesPath)
		return nil
	}

	productsPath := filepath.Join(outDir, artifact.ProductsFile)
	if err := artifact.WriteJSON(productsPath, result.Products); err != nil {
		return err
	}
	logger.Info("products written", "path", productsPath, "count", len(result.Products))

	if len(result.Images) > 0 {
		imagesPath := filepath.Join(outDir, artifact.ImageURLsFile)
		if err := artifact.WriteJSON(imagesPath, result.Images); err != nil {
			return err
		}
		logger.Info("image URL list written", "path", imagesPath, "entries", len(result.Images))
	}

	if uri := cfg.Storage.MongoURI; uri != "" {
		sink, err := artifact.NewProductSink(uri, cfg.Storage.MongoDatabase, cfg.Storage.MongoCollection, logger)
		if err != nil {
			return fmt.Errorf("mongo sink: %w", err)
		}
		defer sink.Close()
		if err := sink.Store(result.Products); err != nil {
			return err
		}
	}

	fmt.Printf("Crawled %d products in %s (%d pages failed)\n",
		len(result.Products), time.Since(start).Round(time.Millisecond), result.Stats.PagesFailed)
	fmt.Printf("Next: prodcrawl sql --output-dir %s\n", outDir)
	return nil
}

// applyCrawlOverrides applies command-line flag values to the config.
func applyCrawlOverrides(cfg *config.Config) {
	if crawlOutputDir != "" {
		cfg.Crawl.OutputDir = crawlOutputDir
	}
	if crawlImagesOnly {
		cfg.Crawl.ImagesOnly = true
	}
	if crawlMaxProducts > 0 {
		cfg.Crawl.MaxProducts = crawlMaxProducts
	}
	if crawlDelay != "" {
		if d, err := time.ParseDuration(crawlDelay); err == nil {
			cfg.Crawl.Delay = d
		}
	}
	if crawlEngine != "" {
		cfg.Crawl.SelectorEngine = crawlEngine
	}
	if crawlMongoURI != "" {
		cfg.Storage.MongoURI = crawlMongoURI
	}
}
