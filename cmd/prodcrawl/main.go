package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/storefront-tools/prodcrawl/internal/config"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "prodcrawl",
		Short: "Storefront product crawl/ETL toolchain",
		Long: `prodcrawl crawls a storefront's category listing pages, extracts
structured product records, and turns them into seed artifacts for the shop
database:

  crawl   fetch listings (and detail pages) -> crawled-products.json, product-image-urls.json
  sql     crawled-products.json             -> seed-products.sql
  images  product-image-urls.json           -> local image files + manifest

Each stage reads and writes flat files, so stages run independently and a
failed run never leaves a half-written artifact.`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(crawlCmd())
	rootCmd.AddCommand(sqlCmd())
	rootCmd.AddCommand(imagesCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("prodcrawl %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("Crawl:\n")
			fmt.Printf("  Base URL:         %s\n", cfg.Crawl.BaseURL)
			fmt.Printf("  Categories:       %d configured\n", len(cfg.Crawl.Categories))
			fmt.Printf("  Start URLs:       %d configured\n", len(cfg.Crawl.StartURLs))
			fmt.Printf("  Output Dir:       %s\n", cfg.Crawl.OutputDir)
			fmt.Printf("  Images Only:      %v\n", cfg.Crawl.ImagesOnly)
			fmt.Printf("  Selector Engine:  %s\n", cfg.Crawl.SelectorEngine)
			fmt.Printf("  Max Products:     %d\n", cfg.Crawl.MaxProducts)
			fmt.Printf("  Delay:            %s\n", cfg.Crawl.Delay)
			fmt.Printf("\nFetcher:\n")
			fmt.Printf("  Follow Redirects: %v\n", cfg.Fetcher.FollowRedirects)
			fmt.Printf("  Max Body Size:    %d bytes\n", cfg.Fetcher.MaxBodySize)
			fmt.Printf("  Timeout:          %s\n", cfg.Fetcher.Timeout)
			fmt.Printf("\nSQL:\n")
			fmt.Printf("  Table:            %s\n", cfg.SQL.Table)
			fmt.Printf("\nImages:\n")
			fmt.Printf("  Output Dir:       %s\n", cfg.Images.OutputDir)
			fmt.Printf("  Base URL:         %s\n", cfg.Images.BaseURL)
			fmt.Printf("  Delay:            %s\n", cfg.Images.Delay)
			fmt.Printf("\nStorage:\n")
			fmt.Printf("  Mongo URI set:    %v\n", cfg.Storage.MongoURI != "")
			return nil
		},
	}
}

// setupLogger creates a structured logger.
func setupLogger(cfg *config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	} else if cfg != nil {
		switch cfg.Level {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg != nil && cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
