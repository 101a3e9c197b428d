package scraper

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"catalog-scraper/internal/normalize"
)

// Telemart extracts items from telemart.ua. Listing pages are paged with a
// trailing "?page=<n>" query and specifications are read from the detail
// page itself.
type Telemart struct {
	baseURL string
	sel     Selectors
	marker  pageMarker
}

func NewTelemart(baseURL string, sel Selectors) *Telemart {
	return &Telemart{
		baseURL: baseURL,
		sel:     sel,
		marker: pageMarker{
			pattern: regexp.MustCompile(`\?page=(\d+)$`),
			format:  "?page=%d",
		},
	}
}

func (t *Telemart) Source() Source  { return SourceTelemart }
func (t *Telemart) BaseURL() string { return t.baseURL }

func (t *Telemart) PageIndex(pageURL string) (int, bool) {
	return t.marker.index(pageURL)
}

func (t *Telemart) PageURL(startURL string, page int) string {
	return t.marker.pageURL(startURL, page)
}

// LastPage reads the entry before the "next" arrow.
func (t *Telemart) LastPage(doc *goquery.Document) (int, bool) {
	return pagerNumber(doc.Find(t.sel.Pager).Eq(-2).Find("a"))
}

func (t *Telemart) ItemLinks(doc *goquery.Document, pageURL string) ([]string, error) {
	return collectLinks(doc, t.sel.ItemLinks, pageURL)
}

func (t *Telemart) ExtractItem(_ context.Context, _ Loader, itemURL string, doc *goquery.Document) (*ScrapedItem, error) {
	title := strings.TrimSpace(doc.Find(t.sel.Title).Text())
	if title == "" {
		return nil, layoutChanged("title", itemURL)
	}

	itemCode := strings.TrimSpace(doc.Find(t.sel.ItemCode).Eq(1).Text())
	if itemCode == "" {
		return nil, layoutChanged("item code", itemURL)
	}

	container := firstPresent(doc, t.sel.Description)
	if container == nil {
		return nil, layoutChanged("description", itemURL)
	}
	description := normalize.DescriptionLines(container.First())
	if description == "" {
		return nil, layoutChanged("description text", itemURL)
	}

	price, err := priceOf(doc, t.sel.Price, itemURL)
	if err != nil {
		return nil, err
	}

	itemType := strings.TrimSpace(doc.Find(t.sel.Breadcrumbs).Eq(-2).Text())
	if itemType == "" {
		return nil, layoutChanged("category breadcrumb", itemURL)
	}

	image := imageOf(doc, t.sel.ProfileImage)
	if image == "" {
		return nil, layoutChanged("profile image", itemURL)
	}

	return &ScrapedItem{
		Title:          title,
		Subtitle:       itemCode,
		Description:    description,
		Price:          price,
		Specifications: t.specifications(doc),
		Type:           itemType,
		ProfileImage:   image,
		Source:         SourceTelemart,
		URL:            itemURL,
	}, nil
}

// specifications reads the rows between the first and the second-to-last
// header plus every row after the last header. The section that starts at
// the second-to-last header is an advertisement block. With two headers only
// the rows after the last one are read.
func (t *Telemart) specifications(doc *goquery.Document) map[string]string {
	specs := make(map[string]string)

	headers := doc.Find(t.sel.SpecTable).Find(t.sel.SpecHeader)
	if headers.Length() == 0 {
		return specs
	}

	rows := headers.Last().NextAll()
	if headers.Length() > 2 {
		rows = headers.First().
			NextUntilSelection(headers.Eq(-2)).
			Not(t.sel.SpecHeader).
			AddSelection(rows)
	}

	rows.Each(func(_ int, row *goquery.Selection) {
		cols := row.ChildrenFiltered(t.sel.SpecColumn)

		var label strings.Builder
		cols.Eq(0).Contents().FilterFunction(isText).Each(func(_ int, s *goquery.Selection) {
			label.WriteString(strings.TrimSpace(s.Text()))
		})
		if label.Len() == 0 {
			return
		}

		specs[label.String()] = joinLines(cols.Eq(1).Contents())
	})

	return specs
}

func isText(_ int, s *goquery.Selection) bool {
	return s.Length() > 0 && s.Nodes[0].Type == html.TextNode
}
