package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/felipelopes7/ODS1-AP2-FelipeAlvesLopes/internal/api"
	"github.com/felipelopes7/ODS1-AP2-FelipeAlvesLopes/internal/catalog"
	"github.com/felipelopes7/ODS1-AP2-FelipeAlvesLopes/internal/config"
	"github.com/felipelopes7/ODS1-AP2-FelipeAlvesLopes/internal/engine"
	"github.com/felipelopes7/ODS1-AP2-FelipeAlvesLopes/internal/recommender"
	"github.com/felipelopes7/ODS1-AP2-FelipeAlvesLopes/internal/storage"
)

const itemsCSV = `item_id,title,category,author,year,tags,synopsis,image_url
1,Lâmina Oculta,Ação Ninja,Kenji Mori,2018,shinobi;batalha,Um shinobi exilado retorna para proteger sua vila.,
2,Punho Sombrio,Ação Ninja,Kenji Mori,2020,shinobi;vingança,Um punho amaldiçoado arrasta um shinobi para a vingança.,
3,Cartas de Primavera,Romance Escolar,Aya Tanaka,2019,colegial;drama,Cartas anônimas agitam o clube de literatura.,
4,Receitas da Vovó,Culinária,Hana Sato,2015,gourmet;família,Receitas tradicionais aproximam uma família distante.,
`

const defaultRatings = `user_id,item_id,rating
1,1,5
1,3,4
2,2,2
`

// Mocks

type MockRatingStore struct {
	mock.Mock
}

func (m *MockRatingStore) LoadAll(ctx context.Context) ([]catalog.Rating, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Rating), args.Error(1)
}

func (m *MockRatingStore) Upsert(ctx context.Context, r catalog.Rating) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRatingStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "api_test")
	assert.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	itemsPath := filepath.Join(tmpDir, "items.csv")
	assert.NoError(t, os.WriteFile(itemsPath, []byte(itemsCSV), 0644))

	return &config.Config{
		Server:  config.ServerConfig{Port: ":8080"},
		Catalog: config.CatalogConfig{ItemsPath: itemsPath},
		Storage: config.StorageConfig{Backend: "csv", CSVPath: filepath.Join(tmpDir, "ratings.csv")},
		Recommender: config.RecommenderConfig{
			PositiveThreshold: 3,
			TopK:              5,
			MinDocFreq:        1,
		},
		Eval: config.EvalConfig{SplitRatio: 0.5, Seed: 42, Shuffle: false, TopK: 10},
	}
}

func setupServer(t *testing.T, ratings string) *api.Server {
	t.Helper()

	cfg := testConfig(t)
	if ratings != "" {
		assert.NoError(t, os.WriteFile(cfg.Storage.CSVPath, []byte(ratings), 0644))
	}

	logger := logrus.New().WithField("test", "api")
	eng, err := engine.NewEngine(cfg, logger, storage.NewCSVStore(cfg.Storage.CSVPath))
	assert.NoError(t, err)

	return api.NewServer(eng, logger)
}

func TestHandleRecommendations(t *testing.T) {
	server := setupServer(t, defaultRatings)

	req, _ := http.NewRequest("GET", "/api/v1/recommendations?user_id=1", nil)
	rr := httptest.NewRecorder()

	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp api.RecommendationsResponse
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, 1, resp.UserID)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, 2, resp.Results[0].ID)
	assert.Equal(t, "Punho Sombrio", resp.Results[0].Title)
}

func TestHandleRecommendationsTopK(t *testing.T) {
	server := setupServer(t, defaultRatings)

	req, _ := http.NewRequest("GET", "/api/v1/recommendations?user_id=1&top_k=1", nil)
	rr := httptest.NewRecorder()

	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp api.RecommendationsResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
}

func TestHandleRecommendationsEmptyHistory(t *testing.T) {
	server := setupServer(t, defaultRatings)

	req, _ := http.NewRequest("GET", "/api/v1/recommendations?user_id=99", nil)
	rr := httptest.NewRecorder()

	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp api.RecommendationsResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Count)
	assert.NotNil(t, resp.Results)
}

func TestHandleRecommendationsValidation(t *testing.T) {
	server := setupServer(t, defaultRatings)

	req, _ := http.NewRequest("GET", "/api/v1/recommendations", nil)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req, _ = http.NewRequest("GET", "/api/v1/recommendations?user_id=abc", nil)
	rr = httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req, _ = http.NewRequest("GET", "/api/v1/recommendations?user_id=1&top_k=abc", nil)
	rr = httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req, _ = http.NewRequest("POST", "/api/v1/recommendations?user_id=1", nil)
	rr = httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHandleRatings(t *testing.T) {
	server := setupServer(t, defaultRatings)

	body := strings.NewReader(`{"user_id": 3, "item_id": 2, "rating": 5}`)
	req, _ := http.NewRequest("POST", "/api/v1/ratings", body)
	rr := httptest.NewRecorder()

	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "rating_stored", resp["status"])
}

func TestHandleRatingsValidation(t *testing.T) {
	server := setupServer(t, defaultRatings)

	cases := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"missing ids", `{"rating": 5}`},
		{"score out of range", `{"user_id": 3, "item_id": 2, "rating": 6}`},
		{"unknown item", `{"user_id": 3, "item_id": 99, "rating": 4}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, _ := http.NewRequest("POST", "/api/v1/ratings", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			server.Router.ServeHTTP(rr, req)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}

	req, _ := http.NewRequest("GET", "/api/v1/ratings", nil)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHandleItems(t *testing.T) {
	server := setupServer(t, defaultRatings)

	req, _ := http.NewRequest("GET", "/api/v1/items", nil)
	rr := httptest.NewRecorder()

	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp engine.ItemPage
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.TotalItems)
	assert.Equal(t, 1, resp.Page)
	assert.Len(t, resp.Items, 4)
}

func TestHandleItemsFiltered(t *testing.T) {
	server := setupServer(t, defaultRatings)

	req, _ := http.NewRequest("GET", "/api/v1/items?q=punho", nil)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp engine.ItemPage
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.TotalItems)
	assert.Equal(t, 2, resp.Items[0].ID)

	req, _ = http.NewRequest("GET", "/api/v1/items?page=abc", nil)
	rr = httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleCategories(t *testing.T) {
	server := setupServer(t, defaultRatings)

	req, _ := http.NewRequest("GET", "/api/v1/categories", nil)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp api.CategoriesResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Ação Ninja", "Culinária", "Romance Escolar"}, resp.Categories)
}

func TestHandleEvaluation(t *testing.T) {
	server := setupServer(t, defaultRatings)

	req, _ := http.NewRequest("GET", "/api/v1/evaluation?user_id=1", nil)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp recommender.EvalResult
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.InDelta(t, 1.0/3.0, resp.Precision, 0.0001)
	assert.InDelta(t, 1.0, resp.Recall, 0.0001)
}

func TestHandleEvaluationUnknownUser(t *testing.T) {
	server := setupServer(t, defaultRatings)

	req, _ := http.NewRequest("GET", "/api/v1/evaluation?user_id=42", nil)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)

	var resp api.ErrorResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
}

func TestHandleEvaluationAll(t *testing.T) {
	server := setupServer(t, defaultRatings)

	req, _ := http.NewRequest("GET", "/api/v1/evaluation/all", nil)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp recommender.EvalSummary
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.UsersEvaluated)
	assert.Equal(t, 1, resp.UsersSkipped)
}

func TestHandleReload(t *testing.T) {
	server := setupServer(t, defaultRatings)

	req, _ := http.NewRequest("POST", "/api/v1/reload", nil)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	req, _ = http.NewRequest("GET", "/api/v1/reload", nil)
	rr = httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHandleStatus(t *testing.T) {
	server := setupServer(t, defaultRatings)

	req, _ := http.NewRequest("GET", "/api/v1/status", nil)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp engine.Status
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.ItemsIndexed)
	assert.Equal(t, 3, resp.RatingsStored)
	assert.Equal(t, "csv", resp.Backend)
}

func TestHandleRecommendationsStoreFailure(t *testing.T) {
	cfg := testConfig(t)
	logger := logrus.New().WithField("test", "api")

	store := new(MockRatingStore)
	store.On("LoadAll", mock.Anything).Return(nil, errors.New("store offline"))

	eng, err := engine.NewEngine(cfg, logger, store)
	assert.NoError(t, err)
	server := api.NewServer(eng, logger)

	req, _ := http.NewRequest("GET", "/api/v1/recommendations?user_id=1", nil)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	store.AssertExpectations(t)
}
