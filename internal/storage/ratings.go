package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"

	"github.com/felipelopes7/ODS1-AP2-FelipeAlvesLopes/internal/catalog"
)

// RatingStore defines the interface for persisting user ratings
type RatingStore interface {
	// LoadAll returns every stored rating in a deterministic order.
	LoadAll(ctx context.Context) ([]catalog.Rating, error)

	// Upsert updates the score for an existing (user, item) pair or appends
	// a new rating.
	Upsert(ctx context.Context, r catalog.Rating) error

	Close() error
}

// CSVStore implements RatingStore on a ratings.csv file with the header
// user_id,item_id,rating. Load order is file order, so appends keep the
// per-user rating sequence stable across reads.
type CSVStore struct {
	path string
	mu   sync.RWMutex
}

var _ RatingStore = (*CSVStore)(nil)

// NewCSVStore creates a file-backed rating store. The file may not exist
// yet; it is created on the first Upsert.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

func (s *CSVStore) LoadAll(ctx context.Context) ([]catalog.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readAll()
}

func (s *CSVStore) Upsert(ctx context.Context, r catalog.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ratings, err := s.readAll()
	if err != nil {
		return err
	}

	replaced := false
	for i := range ratings {
		if ratings[i].UserID == r.UserID && ratings[i].ItemID == r.ItemID {
			ratings[i].Score = r.Score
			replaced = true
			break
		}
	}
	if !replaced {
		ratings = append(ratings, r)
	}

	return s.writeAll(ratings)
}

// Close is a no-op for file storage
func (s *CSVStore) Close() error {
	return nil
}

func (s *CSVStore) readAll() ([]catalog.Rating, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open ratings file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read ratings rows: %w", err)
	}

	ratings := make([]catalog.Rating, 0, len(records))
	for i, rec := range records {
		if i == 0 {
			continue // header
		}
		if len(rec) < 3 {
			continue
		}
		rating := catalog.Rating{
			UserID: atoiOrZero(rec[0]),
			ItemID: atoiOrZero(rec[1]),
			Score:  atoiOrZero(rec[2]),
		}
		if rating.UserID == 0 || rating.ItemID == 0 {
			continue
		}
		ratings = append(ratings, rating)
	}
	return ratings, nil
}

func (s *CSVStore) writeAll(ratings []catalog.Rating) error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to create ratings file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"user_id", "item_id", "rating"}); err != nil {
		return fmt.Errorf("failed to write ratings header: %w", err)
	}
	for _, r := range ratings {
		row := []string{
			strconv.Itoa(r.UserID),
			strconv.Itoa(r.ItemID),
			strconv.Itoa(r.Score),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write rating row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush ratings file: %w", err)
	}
	return nil
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// sortRatings orders ratings by user then item, for stores without a natural
// row order.
func sortRatings(ratings []catalog.Rating) {
	sort.Slice(ratings, func(i, j int) bool {
		if ratings[i].UserID != ratings[j].UserID {
			return ratings[i].UserID < ratings[j].UserID
		}
		return ratings[i].ItemID < ratings[j].ItemID
	})
}
