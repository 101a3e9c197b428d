package storage

import (
	"strings"
	"testing"
	"unicode/utf16"
	"unicode/utf8"

	"catalog-scraper/internal/scraper"
)

func TestNewItemRecordTruncates(t *testing.T) {
	item := &scraper.ScrapedItem{
		Title:        strings.Repeat("т", 300),
		Subtitle:     "123456",
		Description:  strings.Repeat("d", 5000),
		Price:        1299,
		Type:         strings.Repeat("x", 129),
		ProfileImage: "https://img.example/main.jpg",
		Source:       scraper.SourceTelemart,
		URL:          "https://telemart.ua/ua/products/x/",
	}

	record := NewItemRecord(item)

	if n := utf8.RuneCountInString(record.Title); n != MaxTitleLength {
		t.Errorf("title length = %d, want %d", n, MaxTitleLength)
	}
	if !strings.HasSuffix(record.Title, "...") {
		t.Errorf("truncated title should end with an ellipsis")
	}
	if n := len(record.Description); n != MaxDescriptionLength {
		t.Errorf("description length = %d, want %d", n, MaxDescriptionLength)
	}
	if n := len(record.Type); n != MaxTypeLength {
		t.Errorf("type length = %d, want %d", n, MaxTypeLength)
	}
	if record.Subtitle != "123456" {
		t.Errorf("subtitle = %q, want it untouched", record.Subtitle)
	}
	if record.Source != "Telemart" {
		t.Errorf("source = %q", record.Source)
	}
	if record.Specifications == nil {
		t.Error("nil specifications should become an empty map")
	}
	if len(record.CheckSum) != 64 {
		t.Errorf("checksum length = %d", len(record.CheckSum))
	}

	// Extraction output is never modified by persistence.
	if utf8.RuneCountInString(item.Title) != 300 {
		t.Error("NewItemRecord must not modify the scraped item")
	}
}

func TestSpecificationsEncoding(t *testing.T) {
	specs := map[string]string{"Екран": "15.6\"\nIPS", "Вага": "1.8 кг"}

	encoded, err := EncodeSpecifications(specs)
	if err != nil {
		t.Fatalf("EncodeSpecifications() error = %v", err)
	}

	decoded, err := DecodeSpecifications(encoded)
	if err != nil {
		t.Fatalf("DecodeSpecifications() error = %v", err)
	}
	if len(decoded) != 2 || decoded["Екран"] != "15.6\"\nIPS" {
		t.Errorf("decoded = %v", decoded)
	}

	empty, err := EncodeSpecifications(nil)
	if err != nil || empty != "{}" {
		t.Errorf("EncodeSpecifications(nil) = %q, %v", empty, err)
	}

	if _, err := DecodeSpecifications("not json"); err == nil {
		t.Error("expected error for malformed specifications")
	}
}

func TestUTF16BoundedFitsNVarcharColumns(t *testing.T) {
	record := NewItemRecord(&scraper.ScrapedItem{
		Title:        strings.Repeat("😀", 300),
		Subtitle:     "123456",
		Description:  "Ноутбук 😀",
		Type:         "Ноутбуки",
		ProfileImage: "https://img.example/main.jpg",
		Source:       scraper.SourceRozetka,
		URL:          "https://rozetka.com.ua/ua/laptop/p1/",
	})

	// rune-based truncation leaves the title over the column in UTF-16 units
	if units := len(utf16.Encode([]rune(record.Title))); units <= MaxTitleLength {
		t.Fatalf("fixture title is only %d units", units)
	}

	bounded := record.UTF16Bounded()

	if units := len(utf16.Encode([]rune(bounded.Title))); units > MaxTitleLength {
		t.Errorf("bounded title = %d UTF-16 units, want <= %d", units, MaxTitleLength)
	}
	if !strings.HasSuffix(bounded.Title, "...") {
		t.Error("bounded title should end with an ellipsis")
	}
	if bounded.Description != record.Description || bounded.Type != record.Type {
		t.Error("short values must not change")
	}
	if bounded.CheckSum != record.CheckSum || bounded.URL != record.URL {
		t.Error("checksum and url must be carried over")
	}
	if utf8.RuneCountInString(record.Title) != MaxTitleLength {
		t.Error("UTF16Bounded must not modify the receiver")
	}
}
