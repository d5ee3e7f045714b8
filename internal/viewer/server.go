// Package viewer serves the catalogue of generated workbooks and their
// cell snapshots over HTTP.
//
// ROUTES:
//
//	GET /healthz                         liveness
//	GET /metrics                         Prometheus metrics
//	GET /api/workbooks                   catalogue of the output directory
//	GET /api/workbooks/{name}/snapshot   cells, merges and panes of a workbook
package viewer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"

	"github.com/ginjaninja78/pnl-workbook/internal/config"
	"github.com/ginjaninja78/pnl-workbook/internal/observability"
	"github.com/ginjaninja78/pnl-workbook/internal/types"
	"github.com/ginjaninja78/pnl-workbook/internal/xlsxparser"
	"github.com/ginjaninja78/pnl-workbook/pkg/utils"
)

// RequestIDHeader carries the request id on every response.
const RequestIDHeader = "X-Request-Id"

const shutdownTimeout = 10 * time.Second

// Server is the viewer API.
type Server struct {
	addr       string
	files      *utils.FileManager
	cache      *Cache
	metrics    *observability.Metrics
	logger     *slog.Logger
	rateLimit  int
	rateWindow time.Duration
}

// NewServer creates the viewer over the configured output directory. A nil
// logger uses slog.Default(); nil metrics record nothing.
func NewServer(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:       cfg.Viewer.Addr,
		files:      utils.NewFileManager(cfg.DataDir, cfg.OutputDir),
		cache:      NewCache(cfg.Viewer.CacheSize),
		metrics:    metrics,
		logger:     logger,
		rateLimit:  cfg.Viewer.RateLimit,
		rateWindow: cfg.Viewer.RateWindow,
	}
}

// Routes returns the HTTP handler of the API.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	limiter := httprate.Limit(s.rateLimit, s.rateWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			problem(w, http.StatusTooManyRequests, "rate limit exceeded")
		}),
	)
	r.Route("/api/workbooks", func(api chi.Router) {
		api.Use(limiter)
		api.Get("/", s.handleList)
		api.Get("/{name}/snapshot", s.handleSnapshot)
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("viewer listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("viewer shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		return nil
	}
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	outputs, err := s.files.ListOutputs()
	if err != nil {
		s.logger.Error("list workbooks", "error", err, "request_id", w.Header().Get(RequestIDHeader))
		problem(w, http.StatusInternalServerError, "cannot list workbooks")
		return
	}
	if outputs == nil {
		outputs = []utils.OutputFile{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"workbooks": outputs})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		problem(w, http.StatusBadRequest, "malformed workbook name")
		return
	}

	entry, err := s.files.StatOutput(name)
	if errors.Is(err, types.ErrInputNotFound) {
		problem(w, http.StatusNotFound, "workbook not found")
		return
	}
	if err != nil {
		problem(w, http.StatusInternalServerError, "cannot read workbook")
		return
	}

	snap, ok := s.cache.Get(entry.Name, entry.ModTime)
	if ok {
		s.metrics.CacheHit()
	} else {
		s.metrics.CacheMiss()
		snap, err = xlsxparser.ReadSnapshot(s.files.OutputPath(entry.Name))
		if err != nil {
			s.logger.Error("read snapshot", "name", entry.Name, "error", err, "request_id", w.Header().Get(RequestIDHeader))
			problem(w, http.StatusUnprocessableEntity, "workbook cannot be read")
			return
		}
		s.cache.Put(entry.Name, entry.ModTime, snap)
	}

	writeJSON(w, http.StatusOK, map[string]any{"workbook": entry, "snapshot": snap})
}

// =============================================================================
// HELPERS
// =============================================================================

// problemDetail is an RFC 7807 error body.
type problemDetail struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func problem(w http.ResponseWriter, status int, title string) {
	writeJSON(w, status, problemDetail{Title: title, Status: status})
}

// requestID echoes the caller's request id or assigns a new one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}
