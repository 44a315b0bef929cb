package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aluiziolira/go-scrape-shop/models"
)

func sampleDataset() *models.Dataset {
	price := 9.99
	dataset := models.NewDataset()
	dataset.Products = append(dataset.Products, models.Product{
		Name:       "Crème Brûlée Candle ★",
		Price:      &price,
		ProductURL: "http://example.test/product/1",
		PageURL:    "http://example.test/products?page=1",
	})
	dataset.Meta = models.Meta{
		ProductsURL:     "http://example.test/products",
		TestimonialsURL: "http://example.test/testimonials",
		ReviewsURL:      "http://example.test/reviews",
	}
	return dataset
}

func TestWriteEmitsAllCollections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scraped_data.json")

	if err := Write(path, sampleDataset()); err != nil {
		t.Fatalf("write: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"products", "testimonials", "reviews", "meta"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("output missing %q key", key)
		}
	}

	// empty sources serialize as [] rather than null
	if string(decoded["testimonials"]) != "[]" {
		t.Fatalf("testimonials = %s, want []", decoded["testimonials"])
	}
	if string(decoded["reviews"]) != "[]" {
		t.Fatalf("reviews = %s, want []", decoded["reviews"])
	}
}

func TestWriteKeepsMultibyteUnescaped(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scraped_data.json")

	if err := Write(path, sampleDataset()); err != nil {
		t.Fatalf("write: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(raw), "Crème Brûlée Candle ★") {
		t.Fatalf("multi-byte characters must be written unescaped")
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scraped_data.json")

	if err := Write(path, sampleDataset()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := Write(path, models.NewDataset()); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "scraped_data.json" {
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			names = append(names, entry.Name())
		}
		t.Fatalf("directory contents = %v, want only the output file", names)
	}

	// the rewrite fully replaced the document
	dataset, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(dataset.Products) != 0 {
		t.Fatalf("products = %d, want 0 after overwrite", len(dataset.Products))
	}
}

func TestWriteCreatesParentDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data", "nested", "scraped_data.json")

	if err := Write(path, sampleDataset()); err != nil {
		t.Fatalf("write into missing directory: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stat output: %v", err)
	}
}

func TestLoadCachesByPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scraped_data.json")
	if err := Write(path, sampleDataset()); err != nil {
		t.Fatalf("write: %v", err)
	}

	first, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	second, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if first != second {
		t.Fatalf("second load should hit the cache and return the same dataset")
	}

	Invalidate(path)
	third, err := Load(path)
	if err != nil {
		t.Fatalf("load after invalidate: %v", err)
	}
	if third == first {
		t.Fatalf("invalidate should force a fresh read")
	}
	if len(third.Products) != 1 {
		t.Fatalf("products = %d, want 1", len(third.Products))
	}
}

func TestWriteInvalidatesCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scraped_data.json")

	if err := Write(path, sampleDataset()); err != nil {
		t.Fatalf("write: %v", err)
	}
	before, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(before.Products) != 1 {
		t.Fatalf("products = %d, want 1", len(before.Products))
	}

	if err := Write(path, models.NewDataset()); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	after, err := Load(path)
	if err != nil {
		t.Fatalf("load after rewrite: %v", err)
	}
	if len(after.Products) != 0 {
		t.Fatalf("products = %d, stale cache served after rewrite", len(after.Products))
	}
}

func TestLoadNormalizesLegacyDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scraped_data.json")
	legacy := `{"products":null,"reviews":null,"meta":{}}`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatalf("seed legacy file: %v", err)
	}

	dataset, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if dataset.Products == nil || dataset.Testimonials == nil || dataset.Reviews == nil {
		t.Fatalf("collections must be non-nil after normalization")
	}
}
