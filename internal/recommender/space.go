package recommender

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/felipelopes7/ODS1-AP2-FelipeAlvesLopes/internal/catalog"
)

// Options configures vector space construction.
type Options struct {
	// Stopwords lists terms excluded from the vocabulary.
	Stopwords []string

	// MinDocFreq drops terms appearing in fewer documents than this.
	MinDocFreq int
}

// VectorSpace is a fitted weighting model plus the item-by-term matrix.
// Row i of the matrix is the vector of the item at catalog position i.
// A VectorSpace is immutable after Build; any number of goroutines may read
// it concurrently. Replacing it on catalog change is the caller's job.
type VectorSpace struct {
	Vectorizer *TFIDFVectorizer
	Matrix     *mat.Dense

	ids   []int       // row -> item id
	index map[int]int // item id -> row
}

// Build fits the weighting model across the whole catalog and vectorizes
// every item. Building the same catalog in the same order reproduces the
// same matrix.
func Build(cat *catalog.Catalog, opts Options) (*VectorSpace, error) {
	if cat == nil || cat.Len() == 0 {
		return nil, ErrEmptyCatalog
	}

	vectorizer := NewTFIDFVectorizer()
	if opts.MinDocFreq > 1 {
		vectorizer.MinDocFreq = opts.MinDocFreq
	}
	for _, w := range opts.Stopwords {
		vectorizer.AddStopword(w)
	}

	docs := make([]string, cat.Len())
	for i, it := range cat.Items() {
		docs[i] = Document(it)
	}
	vectorizer.Fit(docs)

	if len(vectorizer.Vocabulary) == 0 {
		return nil, ErrEmptyVocabulary
	}

	space := &VectorSpace{
		Vectorizer: vectorizer,
		Matrix:     mat.NewDense(cat.Len(), len(vectorizer.Vocabulary), nil),
		ids:        make([]int, cat.Len()),
		index:      make(map[int]int, cat.Len()),
	}
	for i, it := range cat.Items() {
		space.Matrix.SetRow(i, vectorizer.Transform(docs[i]))
		space.ids[i] = it.ID
		space.index[it.ID] = i
	}

	return space, nil
}

// Len returns the number of item rows.
func (s *VectorSpace) Len() int {
	return len(s.ids)
}

// Terms returns the vocabulary size.
func (s *VectorSpace) Terms() int {
	return len(s.Vectorizer.Vocabulary)
}

// Row returns the vector of the item at the given row. The slice aliases the
// underlying matrix and must not be modified.
func (s *VectorSpace) Row(i int) []float64 {
	return s.Matrix.RawRowView(i)
}

// RowByID returns the vector of the item with the given id.
func (s *VectorSpace) RowByID(id int) ([]float64, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.Matrix.RawRowView(i), true
}

// IDAt returns the item id stored at the given row.
func (s *VectorSpace) IDAt(i int) int {
	return s.ids[i]
}

// Contains reports whether an item id has a row in the space.
func (s *VectorSpace) Contains(id int) bool {
	_, ok := s.index[id]
	return ok
}

// CosineSimilarity calculates the cosine similarity between two vectors.
// Mismatched lengths and zero-magnitude vectors score 0 rather than failing.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0
	}
	return floats.Dot(a, b) / (normA * normB)
}
