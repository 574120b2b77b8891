// Package server exposes lookups and stored records over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sells-group/company-profiler/internal/export"
	"github.com/sells-group/company-profiler/internal/model"
	"github.com/sells-group/company-profiler/internal/store"
)

// BatchProcessor runs a batch of lookups.
type BatchProcessor interface {
	ProcessBatch(ctx context.Context, urls []string) ([]model.LookupResult, error)
}

// Options configure the HTTP surface.
type Options struct {
	// AllowedOrigins lists CORS origins. Empty allows any origin.
	AllowedOrigins []string
	// LookupTimeout bounds a POST /api/lookups request.
	LookupTimeout time.Duration
}

// Server holds the HTTP handlers.
type Server struct {
	proc     BatchProcessor
	store    store.Store
	validate *validator.Validate
	opts     Options
}

// New creates a Server. st may be nil, in which case record endpoints
// answer 503.
func New(proc BatchProcessor, st store.Store, opts Options) *Server {
	if opts.LookupTimeout <= 0 {
		opts.LookupTimeout = 5 * time.Minute
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			return strings.ToLower(fld.Name)
		}
		return name
	})
	return &Server{
		proc:     proc,
		store:    st,
		validate: v,
		opts:     opts,
	}
}

// LookupRequest is the body of POST /api/lookups. The URL limit matches
// config.MaxURLs.
type LookupRequest struct {
	URLs []string `json:"urls" validate:"required,min=1,max=5,dive,required,max=2048"`
}

type recordsQuery struct {
	Limit  int `validate:"gte=0,lte=1000"`
	Offset int `validate:"gte=0"`
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/lookups", s.handleLookups)
		r.Get("/records", s.handleRecords)
		r.Get("/records/export.csv", s.handleExportCSV)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLookups(w http.ResponseWriter, r *http.Request) {
	var req LookupRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.LookupTimeout)
	defer cancel()

	results, err := s.proc.ProcessBatch(ctx, req.URLs)
	if err != nil && len(results) == 0 {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		zap.L().Warn("server: lookup batch interrupted", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "store not configured")
		return
	}
	filter, ok := s.parseFilter(w, r)
	if !ok {
		return
	}

	records, err := s.store.ListRecords(r.Context(), filter)
	if err != nil {
		zap.L().Error("server: list records failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list records")
		return
	}
	if records == nil {
		records = []store.StoredRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "store not configured")
		return
	}
	filter, ok := s.parseFilter(w, r)
	if !ok {
		return
	}

	stored, err := s.store.ListRecords(r.Context(), filter)
	if err != nil {
		zap.L().Error("server: export records failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list records")
		return
	}
	records := make([]model.Record, 0, len(stored))
	for _, sr := range stored {
		records = append(records, sr.Record)
	}

	withMarket, _ := strconv.ParseBool(r.URL.Query().Get("with_market"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.DefaultPath+`"`)
	if err := export.WriteCSV(w, records, export.Options{WithMarket: withMarket}); err != nil {
		zap.L().Error("server: write csv failed", zap.Error(err))
	}
}

// parseFilter reads url, limit and offset query parameters. It writes a 400
// and returns false when they are invalid.
func (s *Server) parseFilter(w http.ResponseWriter, r *http.Request) (store.RecordFilter, bool) {
	q := r.URL.Query()
	var rq recordsQuery
	for name, dst := range map[string]*int{"limit": &rq.Limit, "offset": &rq.Offset} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, name+" must be an integer")
			return store.RecordFilter{}, false
		}
		*dst = n
	}
	if err := s.validate.Struct(rq); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return store.RecordFilter{}, false
	}
	return store.RecordFilter{SourceURL: q.Get("url"), Limit: rq.Limit, Offset: rq.Offset}, true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min", "max", "gte", "lte":
		return fe.Field() + " must satisfy " + fe.Tag() + "=" + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// requestLogger logs each request with zap.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("server: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
