package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadItems reads the item catalog from a CSV file with a header row:
//
//	item_id,title,category,author,year,tags,synopsis,image_url
//
// Older catalog files may omit trailing columns; missing fields are treated
// as empty. Numeric cells that fail to parse become 0, and rows without a
// usable item_id are dropped rather than failing the whole load.
func LoadItems(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	// Skip header
	if _, err := r.Read(); err != nil {
		return nil, fmt.Errorf("failed to read catalog header: %w", err)
	}

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog rows: %w", err)
	}

	items := make([]Item, 0, len(records))
	for _, rec := range records {
		id := atoiOrZero(field(rec, 0))
		if id == 0 {
			continue
		}
		items = append(items, Item{
			ID:       id,
			Title:    field(rec, 1),
			Category: field(rec, 2),
			Author:   field(rec, 3),
			Year:     atoiOrZero(field(rec, 4)),
			Tags:     splitTags(field(rec, 5)),
			Synopsis: field(rec, 6),
			ImageURL: field(rec, 7),
		})
	}

	return New(items)
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}
