package recommender

import (
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/felipelopes7/ODS1-AP2-FelipeAlvesLopes/internal/catalog"
)

// SplitOptions controls the train/test partition of one user's ratings.
type SplitOptions struct {
	// Ratio is the fraction of ratings assigned to the train subset.
	Ratio float64

	// Seed drives the shuffle; the same seed reproduces the same split.
	Seed int64

	// Shuffle toggles the seeded permutation. When false the split is purely
	// positional: the first floor(n*Ratio) ratings train, the rest test.
	Shuffle bool
}

// EvaluateOptions configures one evaluation run.
type EvaluateOptions struct {
	Split SplitOptions

	// PositiveThreshold marks which scores count as liked, both for profile
	// construction over the train subset and for the relevant set.
	PositiveThreshold int

	// TopK is the number of recommendations surfaced for scoring. It is held
	// fixed for a run so metrics are comparable across users; zero or
	// negative means unbounded.
	TopK int
}

// EvalResult reports retrieval quality for one user.
type EvalResult struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`

	Hits        int   `json:"hits"`
	Recommended []int `json:"recommended"` // item ids surfaced from the train-only profile
	Relevant    []int `json:"relevant"`    // test items scored at or above the threshold

	TrainSize      int `json:"train_size"`
	TestSize       int `json:"test_size"`
	TrainPositives int `json:"train_positives"`
	TopK           int `json:"top_k"`
}

// EvalSummary aggregates per-user metrics across a whole rating set.
type EvalSummary struct {
	MeanPrecision  float64 `json:"mean_precision"`
	MeanRecall     float64 `json:"mean_recall"`
	MeanF1         float64 `json:"mean_f1"`
	UsersEvaluated int     `json:"users_evaluated"`
	UsersSkipped   int     `json:"users_skipped"`
}

// SplitRatings partitions one user's ratings into disjoint train and test
// subsets. The input slice is never mutated.
func SplitRatings(ratings []catalog.Rating, opts SplitOptions) (train, test []catalog.Rating) {
	n := len(ratings)
	ordered := make([]catalog.Rating, n)
	copy(ordered, ratings)

	if opts.Shuffle {
		rng := rand.New(rand.NewSource(opts.Seed))
		rng.Shuffle(n, func(i, j int) {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		})
	}

	cut := int(float64(n) * opts.Ratio)
	if cut < 0 {
		cut = 0
	}
	if cut > n {
		cut = n
	}
	return ordered[:cut], ordered[cut:]
}

// Evaluate splits one user's ratings, recommends from the train subset only,
// and scores the recommendations against the positively rated test items.
// Empty recommended or relevant sets produce zero metrics, not errors; only
// a user with no ratings at all cannot be evaluated.
func Evaluate(ratings []catalog.Rating, space *VectorSpace, opts EvaluateOptions) (EvalResult, error) {
	if len(ratings) == 0 {
		return EvalResult{}, ErrInsufficientData
	}
	for _, r := range ratings {
		if !space.Contains(r.ItemID) {
			return EvalResult{}, fmt.Errorf("%w: item %d", ErrUnknownItem, r.ItemID)
		}
	}

	train, test := SplitRatings(ratings, opts.Split)

	recs, err := Recommend(train, space, RecommendOptions{
		PositiveThreshold: opts.PositiveThreshold,
		TopK:              opts.TopK,
	})
	if err != nil {
		return EvalResult{}, err
	}

	recommended := make([]int, len(recs))
	for i, rec := range recs {
		recommended[i] = rec.ItemID
	}

	relevant := make([]int, 0, len(test))
	for _, r := range test {
		if r.Score >= opts.PositiveThreshold {
			relevant = append(relevant, r.ItemID)
		}
	}

	trainPositives := 0
	for _, r := range train {
		if r.Score >= opts.PositiveThreshold {
			trainPositives++
		}
	}

	result := EvalResult{
		Hits:           hitCount(recommended, relevant),
		Recommended:    recommended,
		Relevant:       relevant,
		TrainSize:      len(train),
		TestSize:       len(test),
		TrainPositives: trainPositives,
		TopK:           opts.TopK,
	}
	if len(recommended) > 0 {
		result.Precision = float64(result.Hits) / float64(len(recommended))
	}
	if len(relevant) > 0 {
		result.Recall = float64(result.Hits) / float64(len(relevant))
	}
	result.F1 = f1Score(result.Precision, result.Recall)

	return result, nil
}

// EvaluateAll evaluates every user in the rating set independently and
// arithmetic-averages the metrics. A user contributes to the means only when
// the split leaves at least one positive rating on each side: no positive
// train rating means no profile, no positive test rating means no relevant
// set. Such users are counted as skipped, never as zeros.
func EvaluateAll(all []catalog.Rating, space *VectorSpace, opts EvaluateOptions) (EvalSummary, error) {
	byUser := make(map[int][]catalog.Rating)
	for _, r := range all {
		byUser[r.UserID] = append(byUser[r.UserID], r)
	}

	users := make([]int, 0, len(byUser))
	for id := range byUser {
		users = append(users, id)
	}
	sort.Ints(users)

	var precisions, recalls, f1s []float64
	summary := EvalSummary{}

	for _, id := range users {
		res, err := Evaluate(byUser[id], space, opts)
		if err != nil {
			return EvalSummary{}, fmt.Errorf("user %d: %w", id, err)
		}
		if res.TrainPositives == 0 || len(res.Relevant) == 0 {
			summary.UsersSkipped++
			continue
		}
		precisions = append(precisions, res.Precision)
		recalls = append(recalls, res.Recall)
		f1s = append(f1s, res.F1)
	}

	summary.UsersEvaluated = len(precisions)
	if summary.UsersEvaluated > 0 {
		summary.MeanPrecision = stat.Mean(precisions, nil)
		summary.MeanRecall = stat.Mean(recalls, nil)
		summary.MeanF1 = stat.Mean(f1s, nil)
	}
	return summary, nil
}

func hitCount(recommended, relevant []int) int {
	rel := make(map[int]struct{}, len(relevant))
	for _, id := range relevant {
		rel[id] = struct{}{}
	}
	hits := 0
	for _, id := range recommended {
		if _, ok := rel[id]; ok {
			hits++
		}
	}
	return hits
}

// f1Score is the harmonic mean of precision and recall, 0 when both are 0.
func f1Score(precision, recall float64) float64 {
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}
