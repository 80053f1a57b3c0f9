package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/felipelopes7/ODS1-AP2-FelipeAlvesLopes/internal/catalog"
	"github.com/felipelopes7/ODS1-AP2-FelipeAlvesLopes/internal/config"
	"github.com/felipelopes7/ODS1-AP2-FelipeAlvesLopes/internal/recommender"
	"github.com/felipelopes7/ODS1-AP2-FelipeAlvesLopes/internal/storage"
)

// ErrInvalidRating is returned when a submitted score is outside the 1-5 scale.
var ErrInvalidRating = errors.New("rating score must be between 1 and 5")

// catalogPageSize is the number of items per catalog page.
const catalogPageSize = 12

// Engine orchestrates the recommender components. The catalog and its vector
// space are rebuilt together and swapped atomically, so readers always see a
// matching pair. Ratings are re-read from the store on every request, which
// keeps recommendations current without a rebuild.
type Engine struct {
	Config  *config.Config
	Logger  *logrus.Entry
	Ratings storage.RatingStore

	mu      sync.RWMutex
	catalog *catalog.Catalog
	space   *recommender.VectorSpace

	// Stats
	Stats EngineStats
}

type EngineStats struct {
	ItemsIndexed   int
	VocabularySize int
	RebuiltAt      time.Time
}

// ScoredItem is a catalog item with its similarity to a user profile.
type ScoredItem struct {
	catalog.Item
	Score float64 `json:"score"`
}

// CatalogEntry is a catalog item enriched with rating aggregates.
type CatalogEntry struct {
	catalog.Item
	AvgRating    float64 `json:"avg_rating"`
	RatingsCount int     `json:"ratings_count"`
}

// ItemPage is one page of a catalog listing.
type ItemPage struct {
	Items      []CatalogEntry `json:"items"`
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
	TotalItems int            `json:"total_items"`
}

// Status is a snapshot of the engine state for the status endpoint.
type Status struct {
	ItemsIndexed   int       `json:"items_indexed"`
	VocabularySize int       `json:"vocabulary_size"`
	RatingsStored  int       `json:"ratings_stored"`
	Backend        string    `json:"backend"`
	RebuiltAt      time.Time `json:"rebuilt_at"`
}

func NewEngine(cfg *config.Config, logger *logrus.Entry, store storage.RatingStore) (*Engine, error) {
	e := &Engine{
		Config:  cfg,
		Logger:  logger,
		Ratings: store,
	}
	if err := e.Reload(context.Background()); err != nil {
		return nil, err
	}
	return e, nil
}

// Reload re-reads the item catalog from disk, rebuilds the vector space and
// swaps both in atomically.
func (e *Engine) Reload(ctx context.Context) error {
	cat, err := catalog.LoadItems(e.Config.Catalog.ItemsPath)
	if err != nil {
		return err
	}

	space, err := recommender.Build(cat, recommender.Options{
		Stopwords:  e.Config.Recommender.Stopwords,
		MinDocFreq: e.Config.Recommender.MinDocFreq,
	})
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.catalog = cat
	e.space = space
	e.Stats.ItemsIndexed = cat.Len()
	e.Stats.VocabularySize = space.Terms()
	e.Stats.RebuiltAt = time.Now()
	e.mu.Unlock()

	e.Logger.WithFields(logrus.Fields{
		"items": cat.Len(),
		"terms": space.Terms(),
	}).Info("Catalog indexed")
	return nil
}

// snapshot returns the current catalog and vector space as a consistent pair.
func (e *Engine) snapshot() (*catalog.Catalog, *recommender.VectorSpace) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.catalog, e.space
}

// Recommend returns up to topK items for a user, ranked by similarity to the
// user's taste profile. topK <= 0 falls back to the configured default. A
// user with no positive ratings gets an empty list.
func (e *Engine) Recommend(ctx context.Context, userID, topK int) ([]ScoredItem, error) {
	cat, space := e.snapshot()

	userRatings, err := e.userRatings(ctx, userID)
	if err != nil {
		return nil, err
	}

	if topK <= 0 {
		topK = e.Config.Recommender.TopK
	}

	recs, err := recommender.Recommend(userRatings, space, recommender.RecommendOptions{
		PositiveThreshold: e.Config.Recommender.PositiveThreshold,
		TopK:              topK,
	})
	if err != nil {
		return nil, err
	}

	items := make([]ScoredItem, 0, len(recs))
	for _, rec := range recs {
		it, ok := cat.ByID(rec.ItemID)
		if !ok {
			continue
		}
		items = append(items, ScoredItem{Item: it, Score: rec.Score})
	}
	return items, nil
}

// EvaluateUser runs a train/test split evaluation for one user.
func (e *Engine) EvaluateUser(ctx context.Context, userID int) (*recommender.EvalResult, error) {
	_, space := e.snapshot()

	userRatings, err := e.userRatings(ctx, userID)
	if err != nil {
		return nil, err
	}

	res, err := recommender.Evaluate(userRatings, space, e.evalOptions())
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", userID, err)
	}
	return &res, nil
}

// EvaluateAll evaluates every user with stored ratings and averages the
// per-user metrics.
func (e *Engine) EvaluateAll(ctx context.Context) (*recommender.EvalSummary, error) {
	_, space := e.snapshot()

	all, err := e.Ratings.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ratings: %w", err)
	}

	summary, err := recommender.EvaluateAll(all, space, e.evalOptions())
	if err != nil {
		return nil, err
	}

	e.Logger.WithFields(logrus.Fields{
		"evaluated": summary.UsersEvaluated,
		"skipped":   summary.UsersSkipped,
	}).Info("Batch evaluation finished")
	return &summary, nil
}

// AddRating validates and persists a rating. Submitting a second rating for
// the same (user, item) pair overwrites the first.
func (e *Engine) AddRating(ctx context.Context, r catalog.Rating) error {
	if r.Score < 1 || r.Score > 5 {
		return ErrInvalidRating
	}

	cat, _ := e.snapshot()
	if _, ok := cat.ByID(r.ItemID); !ok {
		return fmt.Errorf("%w: item %d", recommender.ErrUnknownItem, r.ItemID)
	}

	if err := e.Ratings.Upsert(ctx, r); err != nil {
		return fmt.Errorf("failed to store rating: %w", err)
	}

	e.Logger.WithFields(logrus.Fields{
		"user_id": r.UserID,
		"item_id": r.ItemID,
		"rating":  r.Score,
	}).Info("Rating stored")
	return nil
}

// ListItems pages through the catalog, optionally filtered by a title query
// and a category. Pages are 1-based.
func (e *Engine) ListItems(ctx context.Context, query, category string, page int) (*ItemPage, error) {
	cat, _ := e.snapshot()

	all, err := e.Ratings.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ratings: %w", err)
	}
	sums := make(map[int]int)
	counts := make(map[int]int)
	for _, r := range all {
		sums[r.ItemID] += r.Score
		counts[r.ItemID]++
	}

	query = strings.ToLower(strings.TrimSpace(query))
	category = strings.TrimSpace(category)

	matched := make([]CatalogEntry, 0, cat.Len())
	for _, it := range cat.Items() {
		if query != "" && !strings.Contains(strings.ToLower(it.Title), query) {
			continue
		}
		if category != "" && !strings.EqualFold(it.Category, category) {
			continue
		}
		entry := CatalogEntry{Item: it, RatingsCount: counts[it.ID]}
		if entry.RatingsCount > 0 {
			entry.AvgRating = float64(sums[it.ID]) / float64(entry.RatingsCount)
		}
		matched = append(matched, entry)
	}

	totalPages := (len(matched) + catalogPageSize - 1) / catalogPageSize
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * catalogPageSize
	end := start + catalogPageSize
	if start > len(matched) {
		start = len(matched)
	}
	if end > len(matched) {
		end = len(matched)
	}

	return &ItemPage{
		Items:      matched[start:end],
		Page:       page,
		TotalPages: totalPages,
		TotalItems: len(matched),
	}, nil
}

// Categories returns the distinct item categories in sorted order.
func (e *Engine) Categories() []string {
	cat, _ := e.snapshot()

	seen := make(map[string]struct{})
	for _, it := range cat.Items() {
		if it.Category != "" {
			seen[it.Category] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// GetStatus reports the current engine state.
func (e *Engine) GetStatus(ctx context.Context) (*Status, error) {
	all, err := e.Ratings.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ratings: %w", err)
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	return &Status{
		ItemsIndexed:   e.Stats.ItemsIndexed,
		VocabularySize: e.Stats.VocabularySize,
		RatingsStored:  len(all),
		Backend:        e.Config.Storage.Backend,
		RebuiltAt:      e.Stats.RebuiltAt,
	}, nil
}

func (e *Engine) evalOptions() recommender.EvaluateOptions {
	return recommender.EvaluateOptions{
		Split: recommender.SplitOptions{
			Ratio:   e.Config.Eval.SplitRatio,
			Seed:    e.Config.Eval.Seed,
			Shuffle: e.Config.Eval.Shuffle,
		},
		PositiveThreshold: e.Config.Recommender.PositiveThreshold,
		TopK:              e.Config.Eval.TopK,
	}
}

// userRatings loads all ratings and keeps the given user's, preserving store
// order.
func (e *Engine) userRatings(ctx context.Context, userID int) ([]catalog.Rating, error) {
	all, err := e.Ratings.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ratings: %w", err)
	}
	mine := make([]catalog.Rating, 0, len(all))
	for _, r := range all {
		if r.UserID == userID {
			mine = append(mine, r)
		}
	}
	return mine, nil
}
