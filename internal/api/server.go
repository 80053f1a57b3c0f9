package api

import (
	"errors"
	"net/http"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/felipelopes7/ODS1-AP2-FelipeAlvesLopes/internal/catalog"
	"github.com/felipelopes7/ODS1-AP2-FelipeAlvesLopes/internal/engine"
	"github.com/felipelopes7/ODS1-AP2-FelipeAlvesLopes/internal/recommender"
)

type Server struct {
	Engine *engine.Engine
	Logger *logrus.Entry
	Router *http.ServeMux
}

func NewServer(eng *engine.Engine, logger *logrus.Entry) *Server {
	s := &Server{
		Engine: eng,
		Logger: logger,
		Router: http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Router.HandleFunc("/api/v1/recommendations", s.handleRecommendations)
	s.Router.HandleFunc("/api/v1/ratings", s.handleRatings)
	s.Router.HandleFunc("/api/v1/items", s.handleItems)
	s.Router.HandleFunc("/api/v1/categories", s.handleCategories)
	s.Router.HandleFunc("/api/v1/evaluation", s.handleEvaluation)
	s.Router.HandleFunc("/api/v1/evaluation/all", s.handleEvaluationAll)
	s.Router.HandleFunc("/api/v1/reload", s.handleReload)
	s.Router.HandleFunc("/api/v1/status", s.handleStatus)
}

func (s *Server) Start(port string) error {
	s.Logger.Infof("Starting API Server on %s", port)
	return http.ListenAndServe(port, s.Router)
}

// Responses
type ErrorResponse struct {
	Error string `json:"error"`
}

type RecommendationsResponse struct {
	UserID  int                 `json:"user_id"`
	Count   int                 `json:"count"`
	Results []engine.ScoredItem `json:"results"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// Handlers

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := s.queryInt(w, r, "user_id")
	if !ok {
		return
	}

	topK := 0
	if raw := r.URL.Query().Get("top_k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Query 'top_k' must be an integer"})
			return
		}
		topK = n
	}

	items, err := s.Engine.Recommend(r.Context(), userID, topK)
	if err != nil {
		s.Logger.WithError(err).Error("Recommendation failed")
		jsonResponse(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	if items == nil {
		items = []engine.ScoredItem{}
	}

	jsonResponse(w, http.StatusOK, RecommendationsResponse{
		UserID:  userID,
		Count:   len(items),
		Results: items,
	})
}

func (s *Server) handleRatings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req catalog.Rating
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}

	if req.UserID <= 0 || req.ItemID <= 0 {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "user_id and item_id are required"})
		return
	}

	if err := s.Engine.AddRating(r.Context(), req); err != nil {
		if errors.Is(err, engine.ErrInvalidRating) || errors.Is(err, recommender.ErrUnknownItem) {
			jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		s.Logger.WithError(err).Error("Failed to store rating")
		jsonResponse(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	jsonResponse(w, http.StatusCreated, map[string]string{"status": "rating_stored"})
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	page := 1
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Query 'page' must be an integer"})
			return
		}
		page = n
	}

	listing, err := s.Engine.ListItems(r.Context(), q.Get("q"), q.Get("category"), page)
	if err != nil {
		s.Logger.WithError(err).Error("Catalog listing failed")
		jsonResponse(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	jsonResponse(w, http.StatusOK, listing)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	jsonResponse(w, http.StatusOK, CategoriesResponse{Categories: s.Engine.Categories()})
}

func (s *Server) handleEvaluation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := s.queryInt(w, r, "user_id")
	if !ok {
		return
	}

	result, err := s.Engine.EvaluateUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, recommender.ErrInsufficientData) {
			jsonResponse(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		s.Logger.WithError(err).Error("Evaluation failed")
		jsonResponse(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	jsonResponse(w, http.StatusOK, result)
}

func (s *Server) handleEvaluationAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summary, err := s.Engine.EvaluateAll(r.Context())
	if err != nil {
		s.Logger.WithError(err).Error("Batch evaluation failed")
		jsonResponse(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	jsonResponse(w, http.StatusOK, summary)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.Engine.Reload(r.Context()); err != nil {
		s.Logger.WithError(err).Error("Catalog reload failed")
		jsonResponse(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"status": "catalog_reloaded"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.Engine.GetStatus(r.Context())
	if err != nil {
		jsonResponse(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	jsonResponse(w, http.StatusOK, status)
}

// queryInt reads a required integer query parameter, writing a 400 response
// when it is missing or malformed.
func (s *Server) queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Query '" + name + "' is required"})
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Query '" + name + "' must be an integer"})
		return 0, false
	}
	return n, true
}

func jsonResponse(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
