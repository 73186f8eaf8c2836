package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mindvault/internal/domain"
	domitem "github.com/kailas-cloud/mindvault/internal/domain/item"
	"github.com/kailas-cloud/mindvault/internal/domain/search/request"
	"github.com/kailas-cloud/mindvault/internal/domain/search/result"
	"github.com/kailas-cloud/mindvault/internal/metrics"
	healthuc "github.com/kailas-cloud/mindvault/internal/usecase/health"
	itemuc "github.com/kailas-cloud/mindvault/internal/usecase/item"
)

const maxBodyBytes = 1 << 20

// Client-facing failure messages for store errors.
const (
	msgSearchFailed = "Failed to search items"
	msgSaveFailed   = "Failed to save item"
	msgListFailed   = "Failed to fetch items"
	msgGetFailed    = "Failed to fetch item"
	msgDeleteFailed = "Failed to delete item"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the mindvault HTTP API.
type Server struct {
	search        Searcher
	items         Items
	health        HealthChecker
	logger        *zap.Logger
	defaultLimit  int
	maxLimit      int
	loc           *time.Location
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, items Items, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		search:       search,
		items:        items,
		health:       health,
		logger:       logger,
		defaultLimit: request.DefaultLimit,
		maxLimit:     request.MaxLimit,
		loc:          time.UTC,
	}
	s.errorHandlers = []errorHandler{
		validationHandler,
		sentinelHandler(domain.ErrUnauthenticated, http.StatusUnauthorized),
		sentinelHandler(domain.ErrItemNotFound, http.StatusNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound),
	}
	return s
}

// WithSearchDefaults sets the search page size and the timezone for date-only parameters.
func (s *Server) WithSearchDefaults(defaultLimit, maxLimit int, loc *time.Location) *Server {
	if defaultLimit > 0 {
		s.defaultLimit = defaultLimit
	}
	if maxLimit > 0 {
		s.maxLimit = maxLimit
	}
	if loc != nil {
		s.loc = loc
	}
	return s
}

// Router builds the chi router with the full middleware chain.
func (s *Server) Router(auth AuthConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(WideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(auth))
	r.Use(metrics.Middleware())

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/api", func(r chi.Router) {
		r.Get("/search", s.SearchItems)
		r.Post("/items", s.CreateItem)
		r.Get("/items", s.ListItems)
		r.Get("/items/{id}", s.GetItem)
		r.Delete("/items/{id}", s.DeleteItem)
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

type itemResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	URL          string    `json:"url,omitempty"`
	FileURL      string    `json:"fileUrl,omitempty"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	Type         string    `json:"type"`
	Reason       string    `json:"reason,omitempty"`
	TopicAuto    string    `json:"topicAuto"`
	TopicUser    []string  `json:"topicUser"`
	Category     string    `json:"category"`
	Keywords     []string  `json:"keywords"`
	Summary      string    `json:"summary,omitempty"`
	Platform     string    `json:"platform"`
	Price        *float64  `json:"price,omitempty"`
	SelectedText string    `json:"selectedText,omitempty"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type resultResponse struct {
	itemResponse
	Similarity float64 `json:"similarity"`
}

type searchResponse struct {
	Success   bool             `json:"success"`
	Query     *string          `json:"query"` // null when no query text was sent
	AIFilters []string         `json:"aiFilters"`
	Filters   request.Echo     `json:"filters"`
	Count     int              `json:"count"`
	Results   []resultResponse `json:"results"`
}

type createItemRequest struct {
	Title        string   `json:"title"`
	URL          string   `json:"url"`
	FileURL      string   `json:"fileUrl"`
	ImageURL     string   `json:"imageUrl"`
	Type         string   `json:"type"`
	Reason       string   `json:"reason"`
	TopicAuto    string   `json:"topicAuto"`
	TopicUser    []string `json:"topicUser"`
	Price        *float64 `json:"price"`
	SelectedText string   `json:"selectedText"`
	Description  string   `json:"description"`
	PageText     string   `json:"pageText"`
}

// SearchItems handles GET /api/search.
func (s *Server) SearchItems(w http.ResponseWriter, r *http.Request) {
	var (
		q, sortBy string
		limit     int
		facets    request.Facets
	)
	params := r.URL.Query()
	binds := []struct {
		name string
		dest any
	}{
		{"q", &q},
		{"limit", &limit},
		{"sortBy", &sortBy},
		{"type", &facets.Type},
		{"reason", &facets.Reason},
		{"topicUser", &facets.TopicUser},
		{"topicAuto", &facets.TopicAuto},
		{"category", &facets.Category},
		{"dateRange", &facets.DateRange},
		{"from", &facets.From},
		{"to", &facets.To},
	}
	for _, b := range binds {
		if err := runtime.BindQueryParameter("form", true, false, b.name, params, b.dest); err != nil {
			writeError(w, http.StatusBadRequest, "invalid parameter "+b.name)
			return
		}
	}

	if limit < 0 {
		writeError(w, http.StatusBadRequest, "limit must be positive")
		return
	}
	if limit == 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	req, err := request.New(OwnerFromContext(r.Context()), q, facets, limit, request.SortBy(sortBy), s.loc)
	if err != nil {
		s.handleDomainError(w, err, msgSearchFailed)
		return
	}

	resp, err := s.search.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, err, msgSearchFailed)
		return
	}
	if ev := eventFrom(r.Context()); ev != nil {
		ev.branch = string(resp.Mode)
	}

	writeJSON(w, http.StatusOK, mapSearchResponse(&resp))
}

// CreateItem handles POST /api/items.
func (s *Server) CreateItem(w http.ResponseWriter, r *http.Request) {
	var body createItemRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	it, err := s.items.Save(r.Context(), OwnerFromContext(r.Context()), itemuc.SaveInput{
		Title:        body.Title,
		URL:          body.URL,
		FileURL:      body.FileURL,
		ImageURL:     body.ImageURL,
		Type:         body.Type,
		Reason:       body.Reason,
		TopicAuto:    body.TopicAuto,
		TopicUser:    body.TopicUser,
		Price:        body.Price,
		SelectedText: body.SelectedText,
		Description:  body.Description,
		PageText:     body.PageText,
	})
	if err != nil {
		s.handleDomainError(w, err, msgSaveFailed)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"item":    mapItem(&it),
	})
}

// ListItems handles GET /api/items.
func (s *Server) ListItems(w http.ResponseWriter, r *http.Request) {
	var limit int
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		writeError(w, http.StatusBadRequest, "invalid parameter limit")
		return
	}

	items, err := s.items.List(r.Context(), OwnerFromContext(r.Context()), limit)
	if err != nil {
		s.handleDomainError(w, err, msgListFailed)
		return
	}

	out := make([]itemResponse, len(items))
	for i := range items {
		out[i] = mapItem(&items[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(out),
		"items":   out,
	})
}

// GetItem handles GET /api/items/{id}.
func (s *Server) GetItem(w http.ResponseWriter, r *http.Request) {
	it, err := s.items.Get(r.Context(), OwnerFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err, msgGetFailed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"item":    mapItem(&it),
	})
}

// DeleteItem handles DELETE /api/items/{id}.
func (s *Server) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := s.items.Delete(r.Context(), OwnerFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err, msgDeleteFailed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func mapSearchResponse(resp *result.Response) searchResponse {
	out := searchResponse{
		Success:   true,
		AIFilters: resp.DetectedFilters,
		Filters:   resp.Filters,
		Count:     resp.Count(),
		Results:   make([]resultResponse, len(resp.Results)),
	}
	if resp.Query != "" {
		q := resp.Query
		out.Query = &q
	}
	for i := range resp.Results {
		it := resp.Results[i].Item()
		out.Results[i] = resultResponse{
			itemResponse: mapItem(&it),
			Similarity:   resp.Results[i].Score(),
		}
	}
	return out
}

func mapItem(it *domitem.Item) itemResponse {
	out := itemResponse{
		ID:           it.ID(),
		Title:        it.Title(),
		URL:          it.URL(),
		FileURL:      it.FileURL(),
		ImageURL:     it.ImageURL(),
		Type:         string(it.Type()),
		Reason:       it.Reason(),
		TopicAuto:    it.TopicAuto(),
		TopicUser:    nonNil(it.TopicUser()),
		Category:     it.Category(),
		Keywords:     nonNil(it.Keywords()),
		Summary:      it.Summary(),
		Platform:     it.Platform(),
		SelectedText: it.SelectedText(),
		Description:  it.Description(),
		CreatedAt:    it.CreatedAt(),
	}
	if p, ok := it.Price(); ok {
		out.Price = &p
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   message,
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, sentinel.Error())
		return true
	}
}

// validationHandler reports the offending field of an invalid input.
func validationHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrInvalidInput) {
		return false
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		writeError(w, http.StatusBadRequest, ve.Error())
		return true
	}
	writeError(w, http.StatusBadRequest, domain.ErrInvalidInput.Error())
	return true
}

// handleDomainError maps err through the sentinel table; anything else is
// a 500 carrying fallback, so store internals never leak to the client.
func (s *Server) handleDomainError(w http.ResponseWriter, err error, fallback string) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			s.logger.Debug("domain error", zap.Error(err))
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, fallback)
}
