package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"catalog-scraper/internal/checksum"
	"catalog-scraper/internal/normalize"
	"catalog-scraper/internal/scraper"
)

// Column limits of the persisted item.
const (
	MaxTitleLength        = 256
	MaxSubtitleLength     = 256
	MaxDescriptionLength  = 2048
	MaxTypeLength         = 128
	MaxProfileImageLength = 1024
)

// ItemRecord is the persisted form of a scraped item.
type ItemRecord struct {
	ID             int64             `json:"id"`
	Title          string            `json:"title"`
	Subtitle       string            `json:"subtitle"`
	Description    string            `json:"description"`
	Price          float64           `json:"price"`
	Specifications map[string]string `json:"specifications"`
	Type           string            `json:"type"`
	ProfileImage   string            `json:"profile_image"`
	Source         string            `json:"source"`
	URL            string            `json:"url"`
	CheckSum       string            `json:"checksum"`
	CreatedAt      time.Time         `json:"created_at"`
}

var hashes = checksum.NewGenerator()

// NewItemRecord truncates item's strings to their column limits. The
// checksum is computed over the untruncated item.
func NewItemRecord(item *scraper.ScrapedItem) *ItemRecord {
	specs := item.Specifications
	if specs == nil {
		specs = map[string]string{}
	}

	return &ItemRecord{
		Title:          normalize.Truncate(item.Title, MaxTitleLength),
		Subtitle:       normalize.Truncate(item.Subtitle, MaxSubtitleLength),
		Description:    normalize.Truncate(item.Description, MaxDescriptionLength),
		Price:          item.Price,
		Specifications: specs,
		Type:           normalize.Truncate(item.Type, MaxTypeLength),
		ProfileImage:   normalize.Truncate(item.ProfileImage, MaxProfileImageLength),
		Source:         string(item.Source),
		URL:            item.URL,
		CheckSum:       hashes.GenerateItemHash(item),
		CreatedAt:      time.Now().UTC(),
	}
}

// UTF16Bounded returns a copy of r whose limited columns also fit when the
// limit counts UTF-16 code units, as NVARCHAR does. An emoji-rich title that
// fits in runes can still overflow such a column.
func (r *ItemRecord) UTF16Bounded() *ItemRecord {
	bounded := *r
	bounded.Title = normalize.TruncateUTF16(r.Title, MaxTitleLength)
	bounded.Subtitle = normalize.TruncateUTF16(r.Subtitle, MaxSubtitleLength)
	bounded.Description = normalize.TruncateUTF16(r.Description, MaxDescriptionLength)
	bounded.Type = normalize.TruncateUTF16(r.Type, MaxTypeLength)
	bounded.ProfileImage = normalize.TruncateUTF16(r.ProfileImage, MaxProfileImageLength)
	return &bounded
}

// Repository stores scraped items. Every save inserts a new row.
type Repository interface {
	// SaveItem inserts record and returns its generated ID.
	SaveItem(ctx context.Context, record *ItemRecord) (int64, error)

	// ListTypes returns the distinct item types in ascending order.
	ListTypes(ctx context.Context) ([]string, error)

	ListItems(ctx context.Context) ([]*ItemRecord, error)

	ListItemsByType(ctx context.Context, itemType string) ([]*ItemRecord, error)

	Close() error
}

func EncodeSpecifications(specs map[string]string) (string, error) {
	if specs == nil {
		specs = map[string]string{}
	}
	data, err := json.Marshal(specs)
	if err != nil {
		return "", fmt.Errorf("failed to encode specifications: %w", err)
	}
	return string(data), nil
}

func DecodeSpecifications(data string) (map[string]string, error) {
	specs := map[string]string{}
	if data == "" {
		return specs, nil
	}
	if err := json.Unmarshal([]byte(data), &specs); err != nil {
		return nil, fmt.Errorf("failed to decode specifications: %w", err)
	}
	return specs, nil
}

// ScanItems reads rows selected in the column order
// id, title, subtitle, description, price, specifications, type,
// profile_image, source, url, checksum, created_at.
func ScanItems(rows *sql.Rows) ([]*ItemRecord, error) {
	items := []*ItemRecord{}

	for rows.Next() {
		var (
			record ItemRecord
			specs  string
		)
		err := rows.Scan(
			&record.ID,
			&record.Title,
			&record.Subtitle,
			&record.Description,
			&record.Price,
			&specs,
			&record.Type,
			&record.ProfileImage,
			&record.Source,
			&record.URL,
			&record.CheckSum,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}

		record.Specifications, err = DecodeSpecifications(specs)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", record.ID, err)
		}
		items = append(items, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

// ScanStrings reads a single string column.
func ScanStrings(rows *sql.Rows) ([]string, error) {
	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan value: %w", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate values: %w", err)
	}
	return values, nil
}
