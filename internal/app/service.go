package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"catalog-scraper/internal/config"
	"catalog-scraper/internal/fetcher"
	"catalog-scraper/internal/observability"
	"catalog-scraper/internal/scraper"
	"catalog-scraper/internal/storage"
)

var (
	ErrInvalidPageCount = errors.New("invalid number of pages")
	ErrStorageDisabled  = errors.New("storage is not configured")
)

// Service validates scrape requests, runs crawls and persists their items.
type Service struct {
	orchestrators map[scraper.Source]*Orchestrator
	sites         []scraper.Site
	repo          storage.Repository
	logger        *observability.Logger
}

// NewService wires one orchestrator per configured site. repo may be nil,
// in which case crawl results are not stored.
func NewService(cfg *config.Config, client fetcher.Client, repo storage.Repository, logger *observability.Logger) (*Service, error) {
	s := &Service{
		orchestrators: make(map[scraper.Source]*Orchestrator),
		repo:          repo,
		logger:        logger,
	}

	sites := []struct {
		source scraper.Source
		cfg    config.SiteConfig
	}{
		{scraper.SourceRozetka, cfg.Sites.Rozetka},
		{scraper.SourceTelemart, cfg.Sites.Telemart},
	}

	for _, sc := range sites {
		sel, err := scraper.LoadSelectors(sc.cfg.SelectorsFile, sc.source)
		if err != nil {
			return nil, fmt.Errorf("%s selectors: %w", sc.source, err)
		}
		site, err := scraper.NewSite(sc.source, sc.cfg.BaseURL, sel)
		if err != nil {
			return nil, err
		}

		s.sites = append(s.sites, site)
		s.orchestrators[sc.source] = NewOrchestrator(logger, scraper.NewScraper(site, client, logger))
	}

	return s, nil
}

func (s *Service) orchestrator(source scraper.Source) (*Orchestrator, error) {
	o, ok := s.orchestrators[source]
	if !ok {
		return nil, fmt.Errorf("unknown source %q", source)
	}
	return o, nil
}

// CheckURL fails with scraper.ErrInvalidURL unless rawURL belongs to source.
func (s *Service) CheckURL(source scraper.Source, rawURL string) error {
	o, err := s.orchestrator(source)
	if err != nil {
		return err
	}
	if !scraper.Owns(o.scraper.Site(), rawURL) {
		return fmt.Errorf("%w: expected %s website URL", scraper.ErrInvalidURL, source)
	}
	return nil
}

// DetectSource picks the site rawURL belongs to.
func (s *Service) DetectSource(rawURL string) (scraper.Source, error) {
	site, err := scraper.DetectSource(rawURL, s.sites...)
	if err != nil {
		return "", err
	}
	return site.Source(), nil
}

// Crawl checks rawURL and crawls it without storing anything.
func (s *Service) Crawl(ctx context.Context, source scraper.Source, rawURL string, pages int, progress ProgressFunc) (*scraper.CrawlResult, error) {
	if err := s.CheckURL(source, rawURL); err != nil {
		return nil, err
	}

	o, err := s.orchestrator(source)
	if err != nil {
		return nil, err
	}
	if progress != nil {
		o = o.WithProgress(progress)
	}
	return o.Crawl(ctx, rawURL, pages)
}

// Scrape crawls rawURL and saves every item in crawl order.
func (s *Service) Scrape(ctx context.Context, source scraper.Source, rawURL string, pages int) (*scraper.CrawlResult, error) {
	result, err := s.Crawl(ctx, source, rawURL, pages, nil)
	if err != nil {
		return nil, err
	}

	if _, err := s.Save(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Save persists the items of result and returns how many were stored.
func (s *Service) Save(ctx context.Context, result *scraper.CrawlResult) (int, error) {
	if s.repo == nil {
		return 0, ErrStorageDisabled
	}

	saved := 0
	for _, page := range result.Pages {
		for _, item := range page.Items {
			record := storage.NewItemRecord(item)
			id, err := s.repo.SaveItem(ctx, record)
			if err != nil {
				s.logger.Error("Failed to save item",
					"url", item.URL,
					"error", err.Error(),
				)
				return saved, fmt.Errorf("save %s: %w", item.URL, err)
			}
			saved++

			s.logger.Debug("Item saved", "id", id, "url", item.URL, "checksum", record.CheckSum)
		}
	}

	s.logger.Info("Items saved", "count", saved)
	return saved, nil
}

func (s *Service) ListTypes(ctx context.Context) ([]string, error) {
	if s.repo == nil {
		return nil, ErrStorageDisabled
	}
	return s.repo.ListTypes(ctx)
}

func (s *Service) ListItems(ctx context.Context) ([]*storage.ItemRecord, error) {
	if s.repo == nil {
		return nil, ErrStorageDisabled
	}
	return s.repo.ListItems(ctx)
}

func (s *Service) ListItemsByType(ctx context.Context, itemType string) ([]*storage.ItemRecord, error) {
	if s.repo == nil {
		return nil, ErrStorageDisabled
	}
	return s.repo.ListItemsByType(ctx, itemType)
}

// NormalizePageCount interprets a loosely typed page count the way a
// numeric coercion would: absent or non-numeric values mean one page,
// numbers are floored, and anything below one is rejected.
func NormalizePageCount(raw any) (int, error) {
	var n float64

	switch v := raw.(type) {
	case nil:
		return 1, nil
	case float64:
		n = v
	case int:
		n = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 1, nil
		}
		n = f
	case bool:
		if v {
			n = 1
		}
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			n = 0
			break
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 1, nil
		}
		n = f
	default:
		return 1, nil
	}

	if math.IsNaN(n) {
		return 1, nil
	}
	n = math.Floor(n)
	if n < 1 || math.IsInf(n, 1) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPageCount, raw)
	}
	if n > math.MaxInt32 {
		return math.MaxInt32, nil
	}
	return int(n), nil
}
