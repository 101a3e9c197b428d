package app

import (
	"context"
	"fmt"
	"time"

	"catalog-scraper/internal/observability"
	"catalog-scraper/internal/scraper"
)

// Progress describes the crawl position after an item was extracted.
type Progress struct {
	Page      int
	FirstPage int
	LastPage  int
	Item      int
	PageItems int
	URL       string
}

type ProgressFunc func(Progress)

// Orchestrator runs a crawl: resolve the page interval, then visit every
// listing page and every item on it, one request at a time.
type Orchestrator struct {
	logger   *observability.Logger
	scraper  *scraper.Scraper
	progress ProgressFunc
}

func NewOrchestrator(logger *observability.Logger, s *scraper.Scraper) *Orchestrator {
	return &Orchestrator{
		logger:  logger,
		scraper: s,
	}
}

// WithProgress returns a copy of o reporting to fn.
func (o *Orchestrator) WithProgress(fn ProgressFunc) *Orchestrator {
	c := *o
	c.progress = fn
	return &c
}

func (o *Orchestrator) Source() scraper.Source {
	return o.scraper.Site().Source()
}

// Crawl visits up to pages listing pages starting at startURL. Any failure
// aborts the crawl and no partial result is returned.
func (o *Orchestrator) Crawl(ctx context.Context, startURL string, pages int) (*scraper.CrawlResult, error) {
	started := time.Now()

	first, last, err := o.scraper.ResolvePages(ctx, startURL, pages)
	if err != nil {
		o.logger.Error("Failed to resolve pages",
			"url", startURL,
			"kind", scraper.Kind(err),
			"error", err.Error(),
		)
		return nil, err
	}

	o.logger.Info("Starting crawl",
		"url", startURL,
		"requested_pages", pages,
		"first_page", first,
		"last_page", last,
	)

	result := &scraper.CrawlResult{
		FirstPage: first,
		Pages:     make([]*scraper.PageResult, 0, max(last-first+1, 0)),
	}

	for page := first; page <= last; page++ {
		pageURL := o.scraper.PageURL(startURL, page)

		o.logger.Info("Processing page", "page", page, "url", pageURL)

		links, err := o.scraper.ScrapeListing(ctx, pageURL)
		if err != nil {
			o.logger.Error("Listing failed",
				"page", page,
				"url", pageURL,
				"kind", scraper.Kind(err),
				"error", err.Error(),
			)
			return nil, fmt.Errorf("page %d: %w", page, err)
		}

		if len(links) == 0 {
			o.logger.Info("No items found on page", "page", page)
		}

		items := make([]*scraper.ScrapedItem, 0, len(links))
		for i, link := range links {
			item, err := o.scraper.ScrapeItem(ctx, link)
			if err != nil {
				o.logger.Error("Item extraction failed",
					"page", page,
					"url", link,
					"kind", scraper.Kind(err),
					"error", err.Error(),
				)
				return nil, fmt.Errorf("page %d, item %s: %w", page, link, err)
			}
			items = append(items, item)

			if o.progress != nil {
				o.progress(Progress{
					Page:      page,
					FirstPage: first,
					LastPage:  last,
					Item:      i + 1,
					PageItems: len(links),
					URL:       link,
				})
			}
		}

		result.Pages = append(result.Pages, &scraper.PageResult{Items: items})

		o.logger.Info("Page completed", "page", page, "items", len(items))
	}

	o.logger.Info("Crawl completed",
		"url", startURL,
		"pages", len(result.Pages),
		"items", result.ItemCount(),
		"duration", time.Since(started).Round(time.Millisecond).String(),
	)

	return result, nil
}
