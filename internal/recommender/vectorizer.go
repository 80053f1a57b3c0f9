package recommender

import (
	"math"
	"strings"
)

// Vectorizer turns text into a vector
type Vectorizer interface {
	Fit(docs []string)
	Transform(text string) []float64
}

// TFIDFVectorizer implements Term Frequency - Inverse Document Frequency.
// Stopwords and MinDocFreq prune the vocabulary during Fit; both are fixed
// before fitting and must not change afterwards.
type TFIDFVectorizer struct {
	Vocabulary map[string]int
	IDF        map[string]float64

	// Stopwords holds terms excluded from the vocabulary, lowercase.
	Stopwords map[string]struct{}

	// MinDocFreq drops terms appearing in fewer documents than this.
	// Values below 1 behave as 1 (keep everything).
	MinDocFreq int
}

func NewTFIDFVectorizer() *TFIDFVectorizer {
	return &TFIDFVectorizer{
		Vocabulary: make(map[string]int),
		IDF:        make(map[string]float64),
		Stopwords:  make(map[string]struct{}),
		MinDocFreq: 1,
	}
}

// AddStopword excludes a term from the vocabulary of future fits.
func (v *TFIDFVectorizer) AddStopword(word string) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word != "" {
		v.Stopwords[word] = struct{}{}
	}
}

// Fit analyzes the corpus to build vocabulary and IDF stats. Vocabulary
// indices are assigned in first-seen order over the ordered document
// sequence, so fitting the same documents twice yields identical indices.
func (v *TFIDFVectorizer) Fit(docs []string) {
	docCount := float64(len(docs))
	wordDocCounts := make(map[string]int)
	tokenized := make([][]string, len(docs))

	// 1. Count document occurrences per term
	for i, doc := range docs {
		tokens := Tokenize(doc)
		tokenized[i] = tokens
		seenInDoc := make(map[string]bool)
		for _, token := range tokens {
			if !seenInDoc[token] {
				wordDocCounts[token]++
				seenInDoc[token] = true
			}
		}
	}

	minDF := v.MinDocFreq
	if minDF < 1 {
		minDF = 1
	}

	// 2. Build the vocabulary, skipping stopwords and rare terms
	for _, tokens := range tokenized {
		for _, token := range tokens {
			if _, exists := v.Vocabulary[token]; exists {
				continue
			}
			if _, stopped := v.Stopwords[token]; stopped {
				continue
			}
			if wordDocCounts[token] < minDF {
				continue
			}
			v.Vocabulary[token] = len(v.Vocabulary)
		}
	}

	// 3. Calculate IDF for surviving terms
	for word := range v.Vocabulary {
		// idf = log(N / (df + 1)) + 1
		v.IDF[word] = math.Log(docCount/(float64(wordDocCounts[word])+1)) + 1
	}
}

// Transform converts text to a vector based on the learned vocabulary
func (v *TFIDFVectorizer) Transform(text string) []float64 {
	vector := make([]float64, len(v.Vocabulary))
	tokens := Tokenize(text)

	// Calculate Term Frequency (TF)
	tf := make(map[string]float64)
	for _, token := range tokens {
		tf[token]++
	}

	// Calculate TF-IDF
	for token, count := range tf {
		if idx, exists := v.Vocabulary[token]; exists {
			idf := v.IDF[token]
			vector[idx] = (count / float64(len(tokens))) * idf
		}
	}

	return vector
}
