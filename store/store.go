// Package store persists the scraped dataset as a single UTF-8 JSON
// document and loads it back through a process-wide cache.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/aluiziolira/go-scrape-shop/models"
	lru "github.com/hashicorp/golang-lru/v2"
)

const cacheSize = 8

var (
	cacheOnce sync.Once
	cache     *lru.Cache[string, *models.Dataset]
)

func datasetCache() *lru.Cache[string, *models.Dataset] {
	cacheOnce.Do(func() {
		// cacheSize is positive, lru.New cannot fail
		cache, _ = lru.New[string, *models.Dataset](cacheSize)
	})
	return cache
}

// Write persists the dataset atomically: the document is encoded to a
// temp file in the target directory, synced, then renamed over path.
// A reader observes either the prior document or the new one, never a
// partial write. Multi-byte characters are written unescaped.
func Write(path string, dataset *models.Dataset) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		// no-op when the rename already happened
		os.Remove(tmp.Name())
	}()

	encoder := json.NewEncoder(tmp)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(dataset); err != nil {
		tmp.Close()
		return fmt.Errorf("encode dataset: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}

	Invalidate(path)
	return nil
}

// Load reads a dataset through a process-wide LRU cache keyed by
// absolute path. There is no invalidation beyond Write to the same
// path and process restart.
func Load(path string) (*models.Dataset, error) {
	key, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	if dataset, ok := datasetCache().Get(key); ok {
		return dataset, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	dataset := &models.Dataset{}
	if err := json.Unmarshal(raw, dataset); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	dataset.Normalize()

	datasetCache().Add(key, dataset)
	return dataset, nil
}

// Invalidate drops the cached entry for path, if any.
func Invalidate(path string) {
	if key, err := filepath.Abs(path); err == nil {
		datasetCache().Remove(key)
	}
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
