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
	"github.com/storefront-tools/prodcrawl/internal/fetcher"
	"github.com/storefront-tools/prodcrawl/internal/images"
)

var (
	imagesInput     string
	imagesOutputDir string
	imagesBaseURL   string
	imagesDelay     string
)

// imagesCmd creates the "images" subcommand.
func imagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "images",
		Short: "Download product images and write a manifest",
		Long: `Read a product-image-urls.json artifact and download every image to
the public asset directory. Each entry's outcome (local path or error) is
recorded in product-images-manifest.json; a failed download never aborts
the run.`,
		RunE: runImages,
	}

	cmd.Flags().StringVarP(&imagesInput, "input", "i", "", "path to product-image-urls.json")
	cmd.Flags().StringVarP(&imagesOutputDir, "output-dir", "o", "", "image file output directory")
	cmd.Flags().StringVar(&imagesBaseURL, "base-url", "", "public path prefix recorded in the manifest")
	cmd.Flags().StringVar(&imagesDelay, "delay", "", "delay between downloads (e.g. 400ms)")

	return cmd
}

// runImages executes the images command.
func runImages(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyImagesOverrides(cfg)

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logger := setupLogger(&cfg.Logging)

	input := filepath.Join(cfg.Crawl.OutputDir, artifact.ImageURLsFile)
	if imagesInput != "" {
		input = imagesInput
	}

	entries, err := artifact.ReadImageEntries(input)
	if err != nil {
		return err
	}
	logger.Info("download starting", "input", input, "entries", len(entries), "output_dir", cfg.Images.OutputDir)

	httpFetcher, err := fetcher.NewHTTPFetcher(&cfg.Fetcher, logger, fetcher.WithAccept(cfg.Images.Accept))
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	defer httpFetcher.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	manifest, err := images.NewDownloader(&cfg.Images, httpFetcher, logger).Run(ctx, entries)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}

	manifestPath := filepath.Join(cfg.Crawl.OutputDir, artifact.ManifestFile)
	if err := artifact.WriteJSON(manifestPath, manifest); err != nil {
		return err
	}
	logger.Info("manifest written", "path", manifestPath)

	ok := 0
	for _, img := range manifest.Images {
		if img.LocalPath != nil {
			ok++
		}
	}
	fmt.Printf("Done. %d/%d downloaded.\n", ok, len(entries))
	return nil
}

// applyImagesOverrides applies command-line flag values to the config.
func applyImagesOverrides(cfg *config.Config) {
	if imagesOutputDir != "" {
		cfg.Images.OutputDir = imagesOutputDir
	}
	if imagesBaseURL != "" {
		cfg.Images.BaseURL = imagesBaseURL
	}
	if imagesDelay != "" {
		if d, err := time.ParseDuration(imagesDelay); err == nil {
			cfg.Images.Delay = d
		}
	}
}
