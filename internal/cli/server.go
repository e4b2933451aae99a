package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/moduletree/pkg/catalog"
	"github.com/matzehuels/moduletree/pkg/config"
	"github.com/matzehuels/moduletree/pkg/errors"
	"github.com/matzehuels/moduletree/pkg/graph"
	"github.com/matzehuels/moduletree/pkg/observability"
	"github.com/matzehuels/moduletree/pkg/pipeline"
	"github.com/matzehuels/moduletree/pkg/tree"
)

const requestIDHeader = "X-Request-ID"

// userInvalidator is implemented by sources that cache per-user answers.
type userInvalidator interface {
	InvalidateUser(ctx context.Context, userID string, moduleIDs ...string) error
}

// server serves layout data for one catalog source. Every request runs its
// own pipeline, so concurrent users never supersede each other.
type server struct {
	source  catalog.Source
	cfg     *config.Config
	metrics *observability.Metrics
	logger  *log.Logger
	started time.Time
}

func newServer(src catalog.Source, cfg *config.Config, m *observability.Metrics, logger *log.Logger) *server {
	return &server{source: src, cfg: cfg, metrics: m, logger: logger, started: time.Now()}
}

// routes builds the HTTP handler.
func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/tree", s.handleTree)
		r.Route("/modules/{id}", func(r chi.Router) {
			r.Get("/", s.handlePreview)
			r.Post("/visit", s.handleVisit)
			r.Post("/purchase", s.handlePurchase)
		})
	})
	return r
}

// =============================================================================
// Middleware
// =============================================================================

// requestID tags every response with the caller's X-Request-ID or a new
// UUID.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// observe records the route pattern, status and duration of each request.
func (s *server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.ObserveServed(r.Method, route, status, time.Since(start))
		s.logger.Debug("served", "method", r.Method, "route", route, "status", status,
			"request_id", w.Header().Get(requestIDHeader), "duration", time.Since(start))
	})
}

// =============================================================================
// Handlers
// =============================================================================

type treeResponse struct {
	User         string                `json:"user"`
	Layout       graph.Layout          `json:"layout"`
	Subscription *catalog.Subscription `json:"subscription"`
	Stats        treeStatsResponse     `json:"stats"`
}

type treeStatsResponse struct {
	Modules      int   `json:"modules"`
	Levels       int   `json:"levels"`
	AccessErrors int   `json:"access_errors"`
	FetchMS      int64 `json:"fetch_ms"`
	LayoutMS     int64 `json:"layout_ms"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"source": s.cfg.Source.Kind,
		"uptime": time.Since(s.started).Seconds(),
	})
}

func (s *server) handleTree(w http.ResponseWriter, r *http.Request) {
	user := s.user(r)
	res, err := s.load(r.Context(), user)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, treeResponse{
		User:         user,
		Layout:       graph.Export(res.Graph),
		Subscription: res.Subscription,
		Stats: treeStatsResponse{
			Modules:      res.Stats.Modules,
			Levels:       res.Stats.Levels,
			AccessErrors: res.Stats.AccessErrors,
			FetchMS:      res.Stats.FetchTime.Milliseconds(),
			LayoutMS:     res.Stats.LayoutTime.Milliseconds(),
		},
	})
}

func (s *server) handlePreview(w http.ResponseWriter, r *http.Request) {
	tc, err := s.canvas(r.Context(), s.user(r))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	p, err := tc.Preview(chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *server) handleVisit(w http.ResponseWriter, r *http.Request) {
	tc, err := s.canvas(r.Context(), s.user(r))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	slug, err := tc.RequestVisit(chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"slug": slug,
		"path": "/modules/" + slug,
	})
}

// handlePurchase accepts a purchase request for a module the user cannot
// open yet. Cached access answers for the user are dropped so the next tree
// reflects the purchase once it completes.
func (s *server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	user := s.user(r)
	id := chi.URLParam(r, "id")
	tc, err := s.canvas(r.Context(), user)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	p, err := tc.Preview(id)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	if p.Action != tree.ActionPurchase {
		respondError(w, http.StatusConflict, "module "+id+" is already accessible")
		return
	}
	if err := tc.RequestPurchase(id); err != nil {
		s.respondErr(w, err)
		return
	}
	if inv, ok := s.source.(userInvalidator); ok {
		if err := inv.InvalidateUser(r.Context(), user, id); err != nil {
			s.logger.Warn("cache invalidation failed", "user", user, "error", err)
		}
	}
	respondJSON(w, http.StatusAccepted, map[string]any{
		"module_id": id,
		"price":     p.Price,
		"status":    "requested",
	})
}

// =============================================================================
// Helpers
// =============================================================================

// user returns the ?user= query parameter or the configured user.
func (s *server) user(r *http.Request) string {
	if u := r.URL.Query().Get("user"); u != "" {
		return u
	}
	return s.cfg.User.ID
}

func (s *server) load(ctx context.Context, user string) (*pipeline.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Pipeline.Timeout)
	defer cancel()

	opts := pipelineOptions(s.cfg)
	opts.UserID = user
	return newRunner(s.source, s.cfg, s.logger, nil).Execute(ctx, opts)
}

// canvas loads the user's tree into a headless canvas.
func (s *server) canvas(ctx context.Context, user string) (*tree.Canvas, error) {
	res, err := s.load(ctx, user)
	if err != nil {
		return nil, err
	}
	tc := tree.New(tree.WithLogger(s.logger))
	tc.SetGraph(res.Graph)
	return tc, nil
}

func (s *server) respondErr(w http.ResponseWriter, err error) {
	status := httpStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	respondJSON(w, status, map[string]any{
		"error":   http.StatusText(status),
		"code":    errors.GetCode(err),
		"message": errors.UserMessage(err),
	})
}

// httpStatus maps an error code to a response status.
func httpStatus(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidUser, errors.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeModuleNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case errors.ErrCodeDataFetch, errors.ErrCodeNetwork:
		return http.StatusBadGateway
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]any{
		"error":   http.StatusText(status),
		"message": message,
	})
}
