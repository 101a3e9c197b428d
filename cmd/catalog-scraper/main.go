// Package main provides the catalog-scraper CLI.
//
// Usage:
//
//	catalog-scraper crawl https://telemart.ua/ua/laptops/ --pages 3
//	catalog-scraper serve --addr :8080
//
// See --help for all available options.
package main

func main() {
	Execute()
}
