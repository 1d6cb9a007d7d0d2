// Package images downloads product image assets referenced by an
// image-URL list and records a manifest of outcomes.
package images

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/storefront-tools/prodcrawl/internal/config"
	"github.com/storefront-tools/prodcrawl/internal/fetcher"
	"github.com/storefront-tools/prodcrawl/internal/types"
)

var (
	unsafeRe   = regexp.MustCompile(`[^a-zA-Z0-9-_]`)
	multiDash  = regexp.MustCompile(`-+`)
	trimDashes = regexp.MustCompile(`^-|-$`)
)

// allowedExtensions are image extensions accepted straight from a URL path.
var allowedExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true, "avif": true,
}

// mimeExtensions maps response content types to file extensions when the
// URL path does not carry a usable extension.
var mimeExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
	"image/avif": "avif",
}

// SafeFilename sanitizes an entry id into a filesystem-safe name: anything
// outside [A-Za-z0-9_-] becomes a hyphen, runs of hyphens collapse, and
// leading/trailing hyphens are trimmed. Empty results fall back to "image".
func SafeFilename(id string) string {
	safe := unsafeRe.ReplaceAllString(id, "-")
	safe = multiDash.ReplaceAllString(safe, "-")
	safe = trimDashes.ReplaceAllString(safe, "")
	if safe == "" {
		return "image"
	}
	return safe
}

// ExtensionFor picks a file extension, preferring the URL path suffix when
// it is a known image extension and falling back to the content type.
// Defaults to "jpg" when neither resolves.
func ExtensionFor(rawURL, contentType string) string {
	if u, err := url.Parse(rawURL); err == nil {
		ext := strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))
		if allowedExtensions[ext] {
			return ext
		}
	}
	mediaType := strings.TrimSpace(strings.Split(contentType, ";")[0])
	if ext, ok := mimeExtensions[mediaType]; ok {
		return ext
	}
	return "jpg"
}

// Downloader fetches image entries one at a time and persists them under
// the output directory.
type Downloader struct {
	cfg     *config.ImagesConfig
	fetcher fetcher.Fetcher
	logger  *slog.Logger
}

// NewDownloader creates a Downloader.
func NewDownloader(cfg *config.ImagesConfig, f fetcher.Fetcher, logger *slog.Logger) *Downloader {
	return &Downloader{
		cfg:     cfg,
		fetcher: f,
		logger:  logger.With("component", "image_downloader"),
	}
}

// Run downloads every entry sequentially with the configured delay between
// downloads. Per-item failures become error entries in the manifest; only
// context cancellation aborts the run.
func (d *Downloader) Run(ctx context.Context, entries []types.ImageEntry) (*types.Manifest, error) {
	manifest := &types.Manifest{
		Generated: time.Now().UTC(),
		BaseURL:   d.cfg.BaseURL,
		Images:    make([]types.DownloadResult, 0, len(entries)),
	}

	for i, entry := range entries {
		result := d.downloadOne(ctx, entry, i, len(entries))
		manifest.Images = append(manifest.Images, result)

		if ctx.Err() != nil {
			return manifest, ctx.Err()
		}
		if i < len(entries)-1 {
			if err := sleep(ctx, d.cfg.Delay); err != nil {
				return manifest, err
			}
		}
	}

	ok := 0
	for _, img := range manifest.Images {
		if img.LocalPath != nil {
			ok++
		}
	}
	d.logger.Info("downloads complete", "ok", ok, "total", len(entries))

	return manifest, nil
}

// downloadOne fetches a single entry and writes it to disk. Failures are
// captured in the returned result, never propagated.
func (d *Downloader) downloadOne(ctx context.Context, entry types.ImageEntry, index, total int) types.DownloadResult {
	safeID := SafeFilename(entry.ID)

	resp, err := d.fetcher.Fetch(ctx, entry.URL)
	if err != nil {
		d.logger.Warn(fmt.Sprintf("[%d/%d] %s: %v", index+1, total, safeID, err))
		return types.DownloadResult{
			ID:    safeID,
			URL:   entry.URL,
			Error: errorText(err),
		}
	}

	ext := ExtensionFor(entry.URL, resp.ContentType)
	filename := safeID + "." + ext

	if err := os.MkdirAll(d.cfg.OutputDir, 0o755); err != nil {
		return types.DownloadResult{ID: safeID, URL: entry.URL, Error: err.Error()}
	}
	outPath := filepath.Join(d.cfg.OutputDir, filename)
	if err := os.WriteFile(outPath, resp.Body, 0o644); err != nil {
		return types.DownloadResult{ID: safeID, URL: entry.URL, Error: err.Error()}
	}

	relative := path.Join(d.cfg.BaseURL, filename)
	d.logger.Info(fmt.Sprintf("[%d/%d] %s -> %s", index+1, total, safeID, filename))

	return types.DownloadResult{
		ID:        safeID,
		URL:       entry.URL,
		LocalPath: &relative,
		Filename:  filename,
	}
}

// errorText renders a fetch failure for the manifest; HTTP failures keep
// the "HTTP <status>" form.
func errorText(err error) string {
	var fe *types.FetchError
	if errors.As(err, &fe) && fe.StatusCode > 0 {
		return fmt.Sprintf("HTTP %d", fe.StatusCode)
	}
	return err.Error()
}

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
