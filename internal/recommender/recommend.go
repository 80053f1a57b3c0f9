package recommender

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/felipelopes7/ODS1-AP2-FelipeAlvesLopes/internal/catalog"
)

// RecommendOptions bounds a single recommendation request.
type RecommendOptions struct {
	// PositiveThreshold is the minimum score that marks an item as liked.
	PositiveThreshold int

	// TopK truncates the list when > 0; zero or negative returns every
	// candidate.
	TopK int
}

// Recommendation pairs an item id with its similarity to the user profile.
type Recommendation struct {
	ItemID int
	Score  float64
}

// Recommend ranks all catalog items the user has not rated by cosine
// similarity between the user's preference profile and each item vector.
// The profile is the arithmetic mean of the vectors of items the user rated
// at or above the positive threshold; with no positive history the result is
// an empty list, not an error. Items the user rated, at any score, never
// appear in the output. Equal similarities keep catalog order.
func Recommend(ratings []catalog.Rating, space *VectorSpace, opts RecommendOptions) ([]Recommendation, error) {
	for _, r := range ratings {
		if !space.Contains(r.ItemID) {
			return nil, fmt.Errorf("%w: item %d", ErrUnknownItem, r.ItemID)
		}
	}

	profile := profileVector(ratings, space, opts.PositiveThreshold)
	if profile == nil {
		return nil, nil
	}

	rated := make(map[int]bool, len(ratings))
	for _, r := range ratings {
		rated[r.ItemID] = true
	}

	recs := make([]Recommendation, 0, space.Len()-len(rated))
	for i := 0; i < space.Len(); i++ {
		id := space.IDAt(i)
		if rated[id] {
			continue
		}
		recs = append(recs, Recommendation{
			ItemID: id,
			Score:  CosineSimilarity(profile, space.Row(i)),
		})
	}

	// Candidates were collected in catalog order, so a stable sort keeps the
	// index tie-break deterministic.
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})

	if opts.TopK > 0 && len(recs) > opts.TopK {
		recs = recs[:opts.TopK]
	}
	return recs, nil
}

// profileVector averages the liked item vectors; nil when nothing qualifies.
func profileVector(ratings []catalog.Rating, space *VectorSpace, threshold int) []float64 {
	profile := make([]float64, space.Terms())
	liked := 0
	for _, r := range ratings {
		if r.Score < threshold {
			continue
		}
		row, ok := space.RowByID(r.ItemID)
		if !ok {
			continue
		}
		floats.Add(profile, row)
		liked++
	}
	if liked == 0 {
		return nil
	}
	floats.Scale(1/float64(liked), profile)
	return profile
}
