package scraper

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

func DefaultRozetkaSelectors() Selectors {
	return Selectors{
		Pager:        ".pagination__list .pagination__item",
		ItemLinks:    ".product-link.goods-tile__heading",
		Title:        "h1.h2.bold.ng-star-inserted",
		ItemCode:     ".rating .ms-auto",
		Description:  []string{".product-about__description-content", "#description"},
		Price:        ".product-price__big",
		Breadcrumbs:  ".breadcrumbs__item",
		ProfileImage: ".picture-container__picture",
		SpecPath:     "characteristics/",
		SpecList:     ".list.ng-star-inserted",
		SpecRow:      ".item.ng-star-inserted",
		SpecLabel:    "dt",
		SpecValue:    "dd ul > li > *",
	}
}

func DefaultTelemartSelectors() Selectors {
	return Selectors{
		Pager:        ".page-item",
		ItemLinks:    ".product-item__title a",
		Title:        ".card-block__title",
		ItemCode:     ".card-block__art p",
		Description:  []string{".card-block__description-text"},
		Price:        ".card-block__price-summ",
		Breadcrumbs:  ".breadcrumb-item",
		ProfileImage: ".img4zoom img",
		SpecTable:    ".card-block__specific-table",
		SpecHeader:   ".card-block__specific-header",
		SpecColumn:   ".card-block__specific-col",
	}
}

// DefaultSelectors returns the built-in table for source.
func DefaultSelectors(source Source) (Selectors, error) {
	switch source {
	case SourceRozetka:
		return DefaultRozetkaSelectors(), nil
	case SourceTelemart:
		return DefaultTelemartSelectors(), nil
	}
	return Selectors{}, fmt.Errorf("unknown source %q", source)
}

// LoadSelectors overlays the YAML file at path on the defaults of source.
// An empty path returns the defaults.
func LoadSelectors(path string, source Source) (Selectors, error) {
	sel, err := DefaultSelectors(source)
	if err != nil {
		return Selectors{}, err
	}
	if path == "" {
		return sel, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Selectors{}, fmt.Errorf("failed to open selectors file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&sel); err != nil && !errors.Is(err, io.EOF) {
		return Selectors{}, fmt.Errorf("failed to decode selectors: %w", err)
	}

	if err := sel.Validate(source); err != nil {
		return Selectors{}, fmt.Errorf("invalid selectors in %s: %w", path, err)
	}
	return sel, nil
}

func (s Selectors) Validate(source Source) error {
	required := map[string]string{
		"pager":         s.Pager,
		"item_links":    s.ItemLinks,
		"title":         s.Title,
		"item_code":     s.ItemCode,
		"price":         s.Price,
		"breadcrumbs":   s.Breadcrumbs,
		"profile_image": s.ProfileImage,
	}

	switch source {
	case SourceRozetka:
		required["spec_path"] = s.SpecPath
		required["spec_list"] = s.SpecList
		required["spec_row"] = s.SpecRow
		required["spec_label"] = s.SpecLabel
		required["spec_value"] = s.SpecValue
	case SourceTelemart:
		required["spec_table"] = s.SpecTable
		required["spec_header"] = s.SpecHeader
		required["spec_column"] = s.SpecColumn
	}

	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s selector is required", name)
		}
	}
	if len(s.Description) == 0 {
		return errors.New("at least one description selector is required")
	}
	return nil
}
