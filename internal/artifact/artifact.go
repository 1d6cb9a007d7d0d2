// Package artifact reads and writes the flat-file hand-off formats that
// decouple the three pipeline stages.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/storefront-tools/prodcrawl/internal/types"
)

// Artifact file names, fixed across the pipeline.
const (
	ProductsFile  = "crawled-products.json"
	ImageURLsFile = "product-image-urls.json"
	SQLFile       = "seed-products.sql"
	ManifestFile  = "product-images-manifest.json"
)

// WriteJSON writes v as indented JSON to path, creating the parent
// directory if needed.
func WriteJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &types.StorageError{Backend: "json", Err: fmt.Errorf("create output dir: %w", err)}
	}

	f, err := os.Create(path)
	if err != nil {
		return &types.StorageError{Backend: "json", Err: fmt.Errorf("create output file: %w", err)}
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return &types.StorageError{Backend: "json", Err: fmt.Errorf("encode JSON: %w", err)}
	}
	return nil
}

// ReadProducts reads a crawled-products.json artifact.
func ReadProducts(path string) ([]types.ProductRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", types.ErrInputNotFound, path)
		}
		return nil, err
	}
	var products []types.ProductRecord
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return products, nil
}

// ReadImageEntries reads an image-URL list. Three input shapes are
// accepted: an array of {id, url} objects, a bare array of URL strings
// (ids are synthesized as "product-N"), or an object {"entries": [...]}.
func ReadImageEntries(path string) ([]types.ImageEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", types.ErrInputNotFound, path)
		}
		return nil, err
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err == nil {
		return decodeEntryList(raw, path)
	}

	var wrapper struct {
		Entries []json.RawMessage `json:"entries"`
	}
	if err := json.Unmarshal(data, &wrapper); err == nil && wrapper.Entries != nil {
		return decodeEntryList(wrapper.Entries, path)
	}

	return nil, fmt.Errorf(`expected JSON array or {"entries": [...]} in %s`, path)
}

func decodeEntryList(raw []json.RawMessage, path string) ([]types.ImageEntry, error) {
	entries := make([]types.ImageEntry, 0, len(raw))
	for i, item := range raw {
		var asString string
		if err := json.Unmarshal(item, &asString); err == nil {
			entries = append(entries, types.ImageEntry{
				ID:  fmt.Sprintf("product-%d", i+1),
				URL: asString,
			})
			continue
		}

		var asEntry struct {
			ID   string `json:"id"`
			Slug string `json:"slug"`
			URL  string `json:"url"`
		}
		if err := json.Unmarshal(item, &asEntry); err != nil {
			return nil, fmt.Errorf("parse %s entry %d: %w", path, i, err)
		}
		id := asEntry.ID
		if id == "" {
			id = asEntry.Slug
		}
		if id == "" {
			id = fmt.Sprintf("product-%d", i+1)
		}
		entries = append(entries, types.ImageEntry{ID: id, URL: asEntry.URL})
	}
	return entries, nil
}

// CleanupPrevious removes a previous run's crawl artifacts so a partially
// inspected old output is never mistaken for the new run's.
func CleanupPrevious(outDir string, logger *slog.Logger) {
	for _, name := range []string{ProductsFile, ImageURLsFile} {
		path := filepath.Join(outDir, name)
		if _, err := os.Stat(path); err == nil {
			if err := os.Remove(path); err != nil {
				logger.Warn("failed to clean previous output", "path", path, "error", err)
				continue
			}
			logger.Info("cleaned up previous output", "path", path)
		}
	}
}
