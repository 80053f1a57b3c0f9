package recommender_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/felipelopes7/ODS1-AP2-FelipeAlvesLopes/internal/catalog"
	"github.com/felipelopes7/ODS1-AP2-FelipeAlvesLopes/internal/recommender"
)

func TestRecommendRanksSharedVocabularyFirst(t *testing.T) {
	space := testSpace(t)

	// Liking item 1 ("Ação Ninja") must rank item 2 (same category and tag
	// vocabulary) above item 3 (no shared terms).
	recs, err := recommender.Recommend(
		[]catalog.Rating{{UserID: 7, ItemID: 1, Score: 5}},
		space,
		recommender.RecommendOptions{PositiveThreshold: 3},
	)

	assert.NoError(t, err)
	assert.Len(t, recs, 3)
	assert.Equal(t, 2, recs[0].ItemID)
	assert.Greater(t, recs[0].Score, recs[1].Score)

	// Items 3 and 4 share nothing with the profile and tie at zero; the tie
	// keeps catalog order.
	assert.Equal(t, 3, recs[1].ItemID)
	assert.Equal(t, 4, recs[2].ItemID)
	assert.InDelta(t, 0.0, recs[1].Score, 0.0001)
	assert.InDelta(t, 0.0, recs[2].Score, 0.0001)
}

func TestRecommendExcludesRatedItems(t *testing.T) {
	space := testSpace(t)

	// Item 4 was rated negatively; any prior exposure excludes it.
	recs, err := recommender.Recommend(
		[]catalog.Rating{
			{UserID: 7, ItemID: 1, Score: 5},
			{UserID: 7, ItemID: 4, Score: 1},
		},
		space,
		recommender.RecommendOptions{PositiveThreshold: 3},
	)

	assert.NoError(t, err)
	assert.Len(t, recs, 2)
	for _, rec := range recs {
		assert.NotEqual(t, 1, rec.ItemID)
		assert.NotEqual(t, 4, rec.ItemID)
	}
}

func TestRecommendNoPositiveRatings(t *testing.T) {
	space := testSpace(t)

	recs, err := recommender.Recommend(
		[]catalog.Rating{{UserID: 7, ItemID: 1, Score: 2}},
		space,
		recommender.RecommendOptions{PositiveThreshold: 3},
	)

	assert.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRecommendEmptyHistory(t *testing.T) {
	space := testSpace(t)

	recs, err := recommender.Recommend(nil, space, recommender.RecommendOptions{PositiveThreshold: 3})

	assert.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRecommendTopK(t *testing.T) {
	space := testSpace(t)
	ratings := []catalog.Rating{{UserID: 7, ItemID: 1, Score: 5}}

	recs, err := recommender.Recommend(ratings, space, recommender.RecommendOptions{PositiveThreshold: 3, TopK: 1})
	assert.NoError(t, err)
	assert.Len(t, recs, 1)
	assert.Equal(t, 2, recs[0].ItemID)

	// Zero means unbounded
	recs, err = recommender.Recommend(ratings, space, recommender.RecommendOptions{PositiveThreshold: 3, TopK: 0})
	assert.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestRecommendUnknownItem(t *testing.T) {
	space := testSpace(t)

	_, err := recommender.Recommend(
		[]catalog.Rating{{UserID: 7, ItemID: 99, Score: 5}},
		space,
		recommender.RecommendOptions{PositiveThreshold: 3},
	)

	assert.ErrorIs(t, err, recommender.ErrUnknownItem)
}

func TestRecommendSinglePositiveProfile(t *testing.T) {
	space := testSpace(t)

	// With exactly one liked item the profile is that item's vector, so the
	// most similar candidate scores the same as item-to-item similarity.
	recs, err := recommender.Recommend(
		[]catalog.Rating{{UserID: 7, ItemID: 1, Score: 4}},
		space,
		recommender.RecommendOptions{PositiveThreshold: 3},
	)
	assert.NoError(t, err)

	rowA, ok := space.RowByID(1)
	assert.True(t, ok)
	rowB, ok := space.RowByID(2)
	assert.True(t, ok)

	assert.InDelta(t, recommender.CosineSimilarity(rowA, rowB), recs[0].Score, 0.0001)
}
