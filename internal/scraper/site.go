package scraper

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"catalog-scraper/internal/normalize"
)

// Loader fetches and parses a page. Secondary pages an extractor needs
// (e.g. a characteristics tab) are loaded through it.
type Loader interface {
	Load(ctx context.Context, pageURL string) (*goquery.Document, error)
}

// Site is one shop layout: its pagination scheme, listing and item
// extraction.
type Site interface {
	Source() Source
	BaseURL() string

	// PageIndex reports the page number encoded in pageURL, if any.
	PageIndex(pageURL string) (int, bool)
	// PageURL derives the URL of page from the crawl's start URL.
	PageURL(startURL string, page int) string
	// LastPage reads the total page count from a listing's pager.
	LastPage(doc *goquery.Document) (int, bool)

	ItemLinks(doc *goquery.Document, pageURL string) ([]string, error)
	ExtractItem(ctx context.Context, loader Loader, itemURL string, doc *goquery.Document) (*ScrapedItem, error)
}

// NewSite builds the extractor for source.
func NewSite(source Source, baseURL string, sel Selectors) (Site, error) {
	switch source {
	case SourceRozetka:
		return NewRozetka(baseURL, sel), nil
	case SourceTelemart:
		return NewTelemart(baseURL, sel), nil
	}
	return nil, fmt.Errorf("unknown source %q", source)
}

// Owns reports whether rawURL belongs to site.
func Owns(site Site, rawURL string) bool {
	return strings.HasPrefix(rawURL, site.BaseURL())
}

// DetectSource returns the first site owning rawURL.
func DetectSource(rawURL string, sites ...Site) (Site, error) {
	for _, s := range sites {
		if Owns(s, rawURL) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s does not belong to a supported site", ErrInvalidURL, rawURL)
}

// pageMarker is the trailing page token of a listing URL.
type pageMarker struct {
	pattern *regexp.Regexp
	format  string
	// appendAfter is ensured at the end of a URL before a marker is appended.
	appendAfter string
}

func (m pageMarker) index(pageURL string) (int, bool) {
	match := m.pattern.FindStringSubmatch(pageURL)
	if match == nil {
		return 0, false
	}
	n, err := strconv.Atoi(match[1])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func (m pageMarker) pageURL(startURL string, page int) string {
	token := fmt.Sprintf(m.format, page)
	if loc := m.pattern.FindStringIndex(startURL); loc != nil {
		return startURL[:loc[0]] + token
	}
	if m.appendAfter != "" && !strings.HasSuffix(startURL, m.appendAfter) {
		startURL += m.appendAfter
	}
	return startURL + token
}

var (
	leadingDigits = regexp.MustCompile(`^\d+`)
	firstDigits   = regexp.MustCompile(`\d+`)
	nonDigits     = regexp.MustCompile(`\D+`)
)

// pagerNumber reads the page number shown by a pager control.
func pagerNumber(sel *goquery.Selection) (int, bool) {
	digits := leadingDigits.FindString(strings.TrimSpace(sel.Text()))
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// ParsePrice keeps only the digits of a displayed price. Separators of any
// kind are dropped, so "12 999,00 ₴" reads as 1299900.
func ParsePrice(text string) (float64, error) {
	digits := nonDigits.ReplaceAllString(text, "")
	if digits == "" {
		return 0, fmt.Errorf("no digits in price %q", text)
	}
	return strconv.ParseFloat(digits, 64)
}

// collectLinks returns the hrefs of the elements matching selector. No match
// is an empty page; matches without a single usable href mean the markup
// changed.
func collectLinks(doc *goquery.Document, selector, pageURL string) ([]string, error) {
	matches := doc.Find(selector)
	if matches.Length() == 0 {
		return []string{}, nil
	}

	links := make([]string, 0, matches.Length())
	matches.Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		links = append(links, normalize.CanonicalURL(pageURL, href))
	})

	if len(links) == 0 {
		return nil, layoutChanged("item links", pageURL)
	}
	return links, nil
}

func firstPresent(doc *goquery.Document, selectors []string) *goquery.Selection {
	for _, selector := range selectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			return sel
		}
	}
	return nil
}

// priceOf returns 0 when the price element is absent (item out of stock or
// discontinued).
func priceOf(doc *goquery.Document, selector, itemURL string) (float64, error) {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return 0, nil
	}
	price, err := ParsePrice(sel.Text())
	if err != nil {
		return 0, fmt.Errorf("%w: %v on %s", ErrLayoutChanged, err, itemURL)
	}
	return price, nil
}

func imageOf(doc *goquery.Document, selector string) string {
	src, _ := doc.Find(selector).First().Attr("src")
	return strings.TrimSpace(src)
}

// joinLines keeps the trimmed non-empty texts, one per line.
func joinLines(sel *goquery.Selection) string {
	var lines []string
	sel.Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			lines = append(lines, text)
		}
	})
	return strings.Join(lines, "\n")
}
