package recommender

import "errors"

// Structural failures only. Empty profiles, zero-magnitude vectors and empty
// relevant/recommended sets are defined numeric outcomes, never errors.
var (
	// ErrEmptyCatalog is returned when a vector space is built over zero items.
	ErrEmptyCatalog = errors.New("catalog has no items")

	// ErrEmptyVocabulary is returned when the stoplist and document-frequency
	// cutoff filter out every term.
	ErrEmptyVocabulary = errors.New("no terms survived vocabulary filtering")

	// ErrUnknownItem is returned when a supplied rating references an item id
	// that is not part of the loaded vector space.
	ErrUnknownItem = errors.New("rating references item outside the vector space")

	// ErrInsufficientData is returned when a user has no ratings at all and
	// therefore cannot be split for evaluation.
	ErrInsufficientData = errors.New("user has no ratings to evaluate")
)
