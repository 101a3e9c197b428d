package checksum

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"catalog-scraper/internal/scraper"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateItemHash returns the SHA-256 hex digest of an item's content:
// url|title|subtitle|description|price|type|profile_image|specs, where specs
// are "label=value" pairs sorted by label and joined with ";".
func (g *Generator) GenerateItemHash(item *scraper.ScrapedItem) string {
	labels := make([]string, 0, len(item.Specifications))
	for label := range item.Specifications {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	specs := make([]string, 0, len(labels))
	for _, label := range labels {
		specs = append(specs, label+"="+item.Specifications[label])
	}

	content := strings.Join([]string{
		item.URL,
		item.Title,
		item.Subtitle,
		item.Description,
		strconv.FormatFloat(item.Price, 'f', -1, 64),
		item.Type,
		item.ProfileImage,
		strings.Join(specs, ";"),
	}, "|")

	hash := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", hash)
}
