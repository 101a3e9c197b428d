package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"catalog-scraper/internal/normalize"
)

// breadcrumbSeparators trail Rozetka's category crumbs.
const breadcrumbSeparators = " /›»>|"

// Rozetka extracts items from rozetka.com.ua. Listing pages are paged with a
// trailing "page=<n>/" path segment and specifications live on a separate
// characteristics page.
type Rozetka struct {
	baseURL string
	sel     Selectors
	marker  pageMarker
}

func NewRozetka(baseURL string, sel Selectors) *Rozetka {
	return &Rozetka{
		baseURL: baseURL,
		sel:     sel,
		marker: pageMarker{
			pattern:     regexp.MustCompile(`page=(\d+)/$`),
			format:      "page=%d/",
			appendAfter: "/",
		},
	}
}

func (r *Rozetka) Source() Source  { return SourceRozetka }
func (r *Rozetka) BaseURL() string { return r.baseURL }

func (r *Rozetka) PageIndex(pageURL string) (int, bool) {
	return r.marker.index(pageURL)
}

func (r *Rozetka) PageURL(startURL string, page int) string {
	return r.marker.pageURL(startURL, page)
}

// LastPage reads the last pager entry.
func (r *Rozetka) LastPage(doc *goquery.Document) (int, bool) {
	return pagerNumber(doc.Find(r.sel.Pager).Last().Find("a"))
}

func (r *Rozetka) ItemLinks(doc *goquery.Document, pageURL string) ([]string, error) {
	return collectLinks(doc, r.sel.ItemLinks, pageURL)
}

func (r *Rozetka) ExtractItem(ctx context.Context, loader Loader, itemURL string, doc *goquery.Document) (*ScrapedItem, error) {
	title := strings.TrimSpace(doc.Find(r.sel.Title).Text())
	if title == "" {
		return nil, layoutChanged("title", itemURL)
	}

	// The item code stands in for a subtitle.
	itemCode := firstDigits.FindString(doc.Find(r.sel.ItemCode).First().Text())
	if itemCode == "" {
		return nil, layoutChanged("item code", itemURL)
	}

	container := firstPresent(doc, r.sel.Description)
	if container == nil {
		return nil, layoutChanged("description", itemURL)
	}
	description := normalize.Description(container.First())
	if description == "" {
		return nil, layoutChanged("description text", itemURL)
	}

	price, err := priceOf(doc, r.sel.Price, itemURL)
	if err != nil {
		return nil, err
	}

	crumb := doc.Find(r.sel.Breadcrumbs).Eq(-2)
	itemType := strings.TrimRight(strings.TrimSpace(crumb.Text()), breadcrumbSeparators)
	if itemType == "" {
		return nil, layoutChanged("category breadcrumb", itemURL)
	}

	image := imageOf(doc, r.sel.ProfileImage)
	if image == "" {
		return nil, layoutChanged("profile image", itemURL)
	}

	specs, err := r.specifications(ctx, loader, itemURL)
	if err != nil {
		return nil, err
	}

	return &ScrapedItem{
		Title:          title,
		Subtitle:       itemCode,
		Description:    description,
		Price:          price,
		Specifications: specs,
		Type:           itemType,
		ProfileImage:   image,
		Source:         SourceRozetka,
		URL:            itemURL,
	}, nil
}

// CharacteristicsURL is the item's specification page. The spec path joins
// the URL path, so a query string on the item URL is kept after it.
func (r *Rozetka) CharacteristicsURL(itemURL string) string {
	u, err := url.Parse(itemURL)
	if err != nil {
		if !strings.HasSuffix(itemURL, "/") {
			itemURL += "/"
		}
		return itemURL + r.sel.SpecPath
	}

	u = u.JoinPath(r.sel.SpecPath)
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

func (r *Rozetka) specifications(ctx context.Context, loader Loader, itemURL string) (map[string]string, error) {
	specURL := r.CharacteristicsURL(itemURL)

	doc, err := loader.Load(ctx, specURL)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return nil, fmt.Errorf("%w: characteristics page %s returned %d", ErrLayoutChanged, specURL, statusErr.StatusCode)
		}
		return nil, err
	}

	list := doc.Find(r.sel.SpecList)
	if list.Length() == 0 {
		return nil, layoutChanged("characteristics list", specURL)
	}

	specs := make(map[string]string)
	list.ChildrenFiltered(r.sel.SpecRow).Each(func(_ int, row *goquery.Selection) {
		label := strings.TrimSpace(row.Find(r.sel.SpecLabel).Text())
		if label == "" {
			return
		}
		specs[label] = joinLines(row.Find(r.sel.SpecValue).Contents())
	})

	return specs, nil
}
