package recommender

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/felipelopes7/ODS1-AP2-FelipeAlvesLopes/internal/catalog"
)

// Document flattens an item's metadata into one text blob for vectorization.
// The field order is fixed (category, author, year, title, tags, synopsis) so
// rebuilding over the same catalog reproduces the same documents; missing
// fields contribute nothing.
func Document(it catalog.Item) string {
	year := ""
	if it.Year != 0 {
		year = strconv.Itoa(it.Year)
	}
	fields := []string{
		it.Category,
		it.Author,
		year,
		it.Title,
		strings.Join(it.Tags, " "),
		it.Synopsis,
	}
	return strings.TrimSpace(strings.Join(fields, " "))
}

// Tokenize splits text into normalized tokens (lowercase words)
func Tokenize(text string) []string {
	f := func(c rune) bool {
		return !unicode.IsLetter(c) && !unicode.IsNumber(c)
	}
	fields := strings.FieldsFunc(text, f)
	var tokens []string
	for _, field := range fields {
		if len(field) > 2 { // Skip very short words
			tokens = append(tokens, strings.ToLower(field))
		}
	}
	return tokens
}
