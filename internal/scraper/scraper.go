package scraper

import (
	"bytes"
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"catalog-scraper/internal/fetcher"
	"catalog-scraper/internal/observability"
)

// Scraper binds a Site to a fetch engine. It resolves pagination, extracts
// listings and items, and classifies failures with the package's sentinel
// errors.
type Scraper struct {
	site    Site
	fetcher fetcher.Client
	logger  *observability.Logger
}

func NewScraper(site Site, f fetcher.Client, logger *observability.Logger) *Scraper {
	return &Scraper{
		site:    site,
		fetcher: f,
		logger:  logger.With("source", string(site.Source())),
	}
}

func (s *Scraper) Site() Site {
	return s.site
}

// Load fetches pageURL and parses it. Non-2xx responses fail with a
// *StatusError.
func (s *Scraper) Load(ctx context.Context, pageURL string) (*goquery.Document, error) {
	resp, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, pageURL, err)
	}
	if !resp.OK() {
		return nil, &StatusError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, pageURL, err)
	}
	return doc, nil
}

// ResolvePages returns the closed page interval a crawl of pages pages
// starting at startURL visits. A single page never costs a discovery fetch.
func (s *Scraper) ResolvePages(ctx context.Context, startURL string, pages int) (first, last int, err error) {
	if pages < 1 {
		return 0, 0, fmt.Errorf("page count must be positive, got %d", pages)
	}

	current, ok := s.site.PageIndex(startURL)
	if !ok {
		current = 1
	}
	if pages == 1 {
		return current, current, nil
	}

	doc, err := s.Load(ctx, startURL)
	if err != nil {
		return 0, 0, err
	}

	total, ok := s.site.LastPage(doc)
	if !ok {
		total = current
	}

	last = min(current+pages-1, total)
	s.logger.Debug("Pages resolved",
		"start_url", startURL,
		"current", current,
		"total", total,
		"last", last,
	)
	return current, last, nil
}

func (s *Scraper) PageURL(startURL string, page int) string {
	return s.site.PageURL(startURL, page)
}

// ScrapeListing returns the item URLs of a listing page in document order.
func (s *Scraper) ScrapeListing(ctx context.Context, pageURL string) ([]string, error) {
	doc, err := s.Load(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return s.site.ItemLinks(doc, pageURL)
}

// ScrapeItem extracts one item. It either returns a complete item or fails.
func (s *Scraper) ScrapeItem(ctx context.Context, itemURL string) (*ScrapedItem, error) {
	doc, err := s.Load(ctx, itemURL)
	if err != nil {
		return nil, err
	}

	item, err := s.site.ExtractItem(ctx, s, itemURL, doc)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Item extracted",
		"url", itemURL,
		"title", item.Title,
		"price", item.Price,
		"specifications", len(item.Specifications),
	)
	return item, nil
}
