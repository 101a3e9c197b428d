package app

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"catalog-scraper/internal/config"
	"catalog-scraper/internal/fetcher"
	"catalog-scraper/internal/observability"
	"catalog-scraper/internal/scraper"
	"catalog-scraper/internal/storage/sqlite"
)

func TestNormalizePageCount(t *testing.T) {
	tests := []struct {
		name     string
		raw      any
		expected int
		wantErr  bool
	}{
		{"absent", nil, 1, false},
		{"integer", float64(3), 3, false},
		{"fraction floors", 2.9, 2, false},
		{"numeric string", "4", 4, false},
		{"non-numeric string", "abc", 1, false},
		{"object", map[string]any{}, 1, false},
		{"zero", float64(0), 0, true},
		{"below one", 0.5, 0, true},
		{"negative", float64(-2), 0, true},
		{"empty string", "", 0, true},
		{"json number", json.Number("5"), 5, false},
		{"huge", 1e12, 2147483647, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePageCount(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizePageCount(%v) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidPageCount) {
				t.Errorf("error = %v, want ErrInvalidPageCount", err)
			}
			if got != tt.expected {
				t.Errorf("NormalizePageCount(%v) = %d, want %d", tt.raw, got, tt.expected)
			}
		})
	}
}

func newTestService(t *testing.T, cfg *config.Config, withRepo bool) *Service {
	t.Helper()

	logger := observability.NewNop()
	svc, err := NewService(cfg, fetcher.NewFetcher(cfg, logger), nil, logger)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	if withRepo {
		repo, err := sqlite.NewRepository(filepath.Join(t.TempDir(), "items.db"), config.Default().GetCommandTimeout(), logger)
		if err != nil {
			t.Fatalf("sqlite.NewRepository() error = %v", err)
		}
		t.Cleanup(func() { _ = repo.Close() })
		svc.repo = repo
	}
	return svc
}

func TestCheckURL(t *testing.T) {
	svc := newTestService(t, config.Default(), false)

	if err := svc.CheckURL(scraper.SourceRozetka, "https://rozetka.com.ua/ua/notebooks/c80004/"); err != nil {
		t.Errorf("CheckURL(rozetka) error = %v", err)
	}
	if err := svc.CheckURL(scraper.SourceRozetka, "https://telemart.ua/ua/laptops/"); !errors.Is(err, scraper.ErrInvalidURL) {
		t.Errorf("CheckURL(foreign) error = %v, want ErrInvalidURL", err)
	}
	if err := svc.CheckURL(scraper.SourceTelemart, "http://telemart.ua/ua/laptops/"); !errors.Is(err, scraper.ErrInvalidURL) {
		t.Errorf("CheckURL(http) error = %v, want ErrInvalidURL", err)
	}

	source, err := svc.DetectSource("https://telemart.ua/ua/laptops/?page=2")
	if err != nil || source != scraper.SourceTelemart {
		t.Errorf("DetectSource() = %q, %v", source, err)
	}
}

func TestScrapeStoresItems(t *testing.T) {
	s := newShop(t)
	svc := newTestService(t, s.config(), true)
	ctx := context.Background()

	result, err := svc.Scrape(ctx, scraper.SourceTelemart, s.srv.URL+"/category/?page=1", 2)
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if result.ItemCount() != 3 {
		t.Errorf("ItemCount() = %d, want 3", result.ItemCount())
	}

	items, err := svc.ListItems(ctx)
	if err != nil {
		t.Fatalf("ListItems() error = %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("stored %d items, want 3", len(items))
	}
	if items[0].Title != "Product a" || items[2].Title != "Product c" {
		t.Errorf("stored order = %q .. %q", items[0].Title, items[2].Title)
	}

	types, err := svc.ListTypes(ctx)
	if err != nil || len(types) != 1 || types[0] != "Ноутбуки" {
		t.Errorf("ListTypes() = %v, %v", types, err)
	}
}

func TestScrapeRejectsForeignURL(t *testing.T) {
	s := newShop(t)
	svc := newTestService(t, s.config(), true)

	_, err := svc.Scrape(context.Background(), scraper.SourceRozetka, s.srv.URL+"/category/", 1)
	if !errors.Is(err, scraper.ErrInvalidURL) {
		t.Errorf("Scrape() error = %v, want ErrInvalidURL", err)
	}
	if s.total() != 0 {
		t.Errorf("rejected URL caused %d requests", s.total())
	}
}

func TestScrapeFailureStoresNothing(t *testing.T) {
	s := newShop(t)
	s.broken["c"] = true
	svc := newTestService(t, s.config(), true)
	ctx := context.Background()

	if _, err := svc.Scrape(ctx, scraper.SourceTelemart, s.srv.URL+"/category/?page=1", 2); !errors.Is(err, scraper.ErrLayoutChanged) {
		t.Fatalf("Scrape() error = %v, want ErrLayoutChanged", err)
	}

	items, err := svc.ListItems(ctx)
	if err != nil {
		t.Fatalf("ListItems() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("stored %d items after a failed crawl", len(items))
	}
}

func TestStorageDisabled(t *testing.T) {
	svc := newTestService(t, config.Default(), false)

	if _, err := svc.Save(context.Background(), &scraper.CrawlResult{}); !errors.Is(err, ErrStorageDisabled) {
		t.Errorf("Save() error = %v, want ErrStorageDisabled", err)
	}
	if _, err := svc.ListTypes(context.Background()); !errors.Is(err, ErrStorageDisabled) {
		t.Errorf("ListTypes() error = %v, want ErrStorageDisabled", err)
	}
}
