package scraper

import (
	"context"
	"net/http"
	"sync"

	"catalog-scraper/internal/fetcher"
	"catalog-scraper/internal/observability"
)

// fakeFetcher serves canned pages and records every requested URL.
type fakeFetcher struct {
	mu     sync.Mutex
	pages  map[string]string
	status map[string]int
	calls  []string
}

func newFakeFetcher(pages map[string]string) *fakeFetcher {
	return &fakeFetcher{pages: pages, status: map[string]int{}}
}

func (f *fakeFetcher) Fetch(_ context.Context, urlStr string) (*fetcher.FetchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, urlStr)
	if code, ok := f.status[urlStr]; ok {
		return &fetcher.FetchResponse{StatusCode: code, URL: urlStr}, nil
	}
	body, ok := f.pages[urlStr]
	if !ok {
		return &fetcher.FetchResponse{StatusCode: http.StatusNotFound, URL: urlStr}, nil
	}
	return &fetcher.FetchResponse{StatusCode: http.StatusOK, Body: []byte(body), URL: urlStr}, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newRozetkaScraper(pages map[string]string) (*Scraper, *fakeFetcher) {
	f := newFakeFetcher(pages)
	site := NewRozetka("https://rozetka.com.ua/", DefaultRozetkaSelectors())
	return NewScraper(site, f, observability.NewNop()), f
}

func newTelemartScraper(pages map[string]string) (*Scraper, *fakeFetcher) {
	f := newFakeFetcher(pages)
	site := NewTelemart("https://telemart.ua/", DefaultTelemartSelectors())
	return NewScraper(site, f, observability.NewNop()), f
}

const rozetkaItemURL = "https://rozetka.com.ua/ua/laptop-x/p123/"

const rozetkaItemPage = `<html><body>
<ul class="breadcrumbs">
  <li class="breadcrumbs__item">Home /</li>
  <li class="breadcrumbs__item">Laptops /</li>
  <li class="breadcrumbs__item">Laptop X</li>
</ul>
<h1 class="h2 bold ng-star-inserted"> Laptop X 15 </h1>
<div class="rating"><span class="ms-auto">Код: 123456</span><span class="ms-auto">Reviews 9</span></div>
<div class="product-about__description-content">
  <p>Fast   laptop</p>
  <img src="https://img.example/1.jpg">
  <p>Light</p>
</div>
<p class="product-price__big">32 999₴</p>
<img class="picture-container__picture" src="https://img.example/main.jpg">
</body></html>`

const rozetkaCharacteristicsPage = `<html><body>
<div class="list ng-star-inserted">
  <div class="item ng-star-inserted">
    <dt> Screen </dt>
    <dd><ul><li><a>15.6"</a></li><li><span>IPS</span><span> 144 Hz </span></li></ul></dd>
  </div>
  <div class="item ng-star-inserted"><dt>Color</dt><dd><ul><li><span>Gray</span></li></ul></dd></div>
  <div class="item ng-star-inserted"><dt>Color</dt><dd><ul><li><span>Black</span></li></ul></dd></div>
  <div class="item ng-star-inserted"><dt> </dt><dd><ul><li><span>orphan</span></li></ul></dd></div>
</div>
</body></html>`

const telemartItemURL = "https://telemart.ua/ua/products/laptop-t/"

const telemartItemPage = `<html><body>
<ol>
  <li class="breadcrumb-item">Home</li>
  <li class="breadcrumb-item">Ноутбуки</li>
  <li class="breadcrumb-item">Laptop T</li>
</ol>
<h1 class="card-block__title">Laptop T</h1>
<div class="card-block__art"><p>Код:</p><p> 778899 </p></div>
<div class="card-block__description-text"><p>Great <b>screen</b></p><style>.x{}</style><img src="/img/d.jpg"></div>
<div class="card-block__price-summ">45 999 ₴</div>
<div class="card-block__price-summ">50 000 ₴</div>
<div class="img4zoom"><img src="https://telemart.ua/img/main.jpg"></div>
<div class="card-block__specific-table">
  <div class="card-block__specific-header">Main</div>
  <div class="card-block__specific-row">
    <div class="card-block__specific-col">CPU <span class="hint">?</span></div>
    <div class="card-block__specific-col"><a>Intel</a> <span>i7</span></div>
  </div>
  <div class="card-block__specific-header">Advertisement</div>
  <div class="card-block__specific-row">
    <div class="card-block__specific-col">Promo</div>
    <div class="card-block__specific-col">Buy now</div>
  </div>
  <div class="card-block__specific-header">Extra</div>
  <div class="card-block__specific-row">
    <div class="card-block__specific-col">Weight</div>
    <div class="card-block__specific-col">1.8 kg</div>
  </div>
</div>
</body></html>`

// telemartSpecTable renders a spec table with one row per section, labelled
// after the section.
func telemartSpecTable(sections ...string) string {
	table := `<html><body><div class="card-block__specific-table">`
	for _, name := range sections {
		table += `<div class="card-block__specific-header">` + name + `</div>
<div class="card-block__specific-row">
  <div class="card-block__specific-col">` + name + `</div>
  <div class="card-block__specific-col">` + name + ` value</div>
</div>`
	}
	return table + `</div></body></html>`
}

func telemartListing(links []string, lastPage string) string {
	page := `<html><body><div class="products">`
	for _, link := range links {
		page += `<div class="product-item__title"><a href="` + link + `">item</a></div>`
	}
	page += `</div>`
	if lastPage != "" {
		page += `<ul class="pagination">
<li class="page-item"><a>1</a></li>
<li class="page-item"><a>` + lastPage + `</a></li>
<li class="page-item"><a>»</a></li>
</ul>`
	}
	return page + `</body></html>`
}
