package fetcher

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gocolly/colly/v2"

	"catalog-scraper/internal/config"
	"catalog-scraper/internal/observability"
)

// CollyFetcher implements Client using colly. Requests are synchronous and
// the same URL may be visited any number of times.
type CollyFetcher struct {
	collector *colly.Collector
	cfg       *config.Config
	logger    *observability.Logger
}

func NewCollyFetcher(cfg *config.Config, logger *observability.Logger) *CollyFetcher {
	c := colly.NewCollector(
		colly.UserAgent(cfg.HTTP.UserAgent),
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
	)
	c.IgnoreRobotsTxt = !cfg.HTTP.RespectRobots
	c.SetRequestTimeout(cfg.GetTotalTimeout())

	return &CollyFetcher{
		collector: c,
		cfg:       cfg,
		logger:    logger,
	}
}

// Fetch visits urlStr on a clone of the base collector so callbacks never
// leak between calls.
func (cf *CollyFetcher) Fetch(ctx context.Context, urlStr string) (*FetchResponse, error) {
	c := cf.collector.Clone()
	c.Context = ctx

	var (
		resp     *FetchResponse
		fetchErr error
	)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept-Language", cf.cfg.HTTP.AcceptLanguage)
	})

	c.OnResponse(func(r *colly.Response) {
		headers := http.Header{}
		if r.Headers != nil {
			headers = *r.Headers
		}
		resp = &FetchResponse{
			StatusCode: r.StatusCode,
			Body:       r.Body,
			URL:        r.Request.URL.String(),
			Headers:    headers,
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
	})

	if err := c.Visit(urlStr); err != nil {
		return nil, err
	}
	if fetchErr != nil {
		return nil, fetchErr
	}
	if resp == nil {
		return nil, fmt.Errorf("no response received for %s", urlStr)
	}

	cf.logger.Debug("Fetched",
		"engine", config.EngineColly,
		"url", urlStr,
		"status", resp.StatusCode,
		"bytes", len(resp.Body),
	)

	return resp, nil
}
