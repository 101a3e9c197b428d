package scraper

import (
	"fmt"
	"strings"
)

// Source identifies the shop an item was scraped from.
type Source string

const (
	SourceRozetka  Source = "Rozetka"
	SourceTelemart Source = "Telemart"
)

// ParseSource accepts the source name in any letter case.
func ParseSource(name string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "rozetka":
		return SourceRozetka, nil
	case "telemart":
		return SourceTelemart, nil
	}
	return "", fmt.Errorf("unknown source %q", name)
}

// ScrapedItem is one product as extracted from its detail page. Values are
// never mutated after extraction.
type ScrapedItem struct {
	Title          string            `json:"title"`
	Subtitle       string            `json:"subtitle"`
	Description    string            `json:"description"`
	Price          float64           `json:"price"`
	Specifications map[string]string `json:"specifications"`
	Type           string            `json:"type"`
	ProfileImage   string            `json:"profile_image"`
	Source         Source            `json:"source"`
	URL            string            `json:"url"`
}

// PageResult holds the items of one listing page in document order.
type PageResult struct {
	Items []*ScrapedItem `json:"pageItems"`
}

// CrawlResult holds the visited listing pages in ascending page order.
// FirstPage is the page number of Pages[0].
type CrawlResult struct {
	FirstPage int           `json:"-"`
	Pages     []*PageResult `json:"pagesData"`
}

// ItemCount returns the number of items over all pages.
func (r *CrawlResult) ItemCount() int {
	n := 0
	for _, p := range r.Pages {
		n += len(p.Items)
	}
	return n
}

// Selectors is the per-site CSS selector table. Fields a site does not use
// stay empty.
type Selectors struct {
	Pager        string   `yaml:"pager"`
	ItemLinks    string   `yaml:"item_links"`
	Title        string   `yaml:"title"`
	ItemCode     string   `yaml:"item_code"`
	Description  []string `yaml:"description"`
	Price        string   `yaml:"price"`
	Breadcrumbs  string   `yaml:"breadcrumbs"`
	ProfileImage string   `yaml:"profile_image"`

	SpecPath   string `yaml:"spec_path"`
	SpecList   string `yaml:"spec_list"`
	SpecRow    string `yaml:"spec_row"`
	SpecLabel  string `yaml:"spec_label"`
	SpecValue  string `yaml:"spec_value"`
	SpecTable  string `yaml:"spec_table"`
	SpecHeader string `yaml:"spec_header"`
	SpecColumn string `yaml:"spec_column"`
}
