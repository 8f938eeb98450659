package http

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	smarttable "github.com/smart-table/smart-table-server"
	"github.com/smart-table/smart-table-server/internal/logging"
	"github.com/smart-table/smart-table-server/pkg/domain"
	"github.com/smart-table/smart-table-server/pkg/ports"
	"github.com/smart-table/smart-table-server/pkg/schema"
)

// maxBodySize caps the size of a table state document.
const maxBodySize = 1 << 20

// Server answers the query protocol over HTTP.
type Server[T any] struct {
	Query  ports.QueryFunc[T]
	Logger *slog.Logger
}

// Option configures the handler.
type Option func(*handlerConfig)

type handlerConfig struct {
	logger *slog.Logger
	mounts map[string]http.Handler
}

// WithLogger sets the logger of the handler.
func WithLogger(logger *slog.Logger) Option {
	return func(c *handlerConfig) {
		c.logger = logger
	}
}

// WithMount serves an extra handler under pattern, e.g. "/metrics".
func WithMount(pattern string, h http.Handler) Option {
	return func(c *handlerConfig) {
		c.mounts[pattern] = h
	}
}

// NewHandler creates the HTTP handler answering queries with query.
func NewHandler[T any](query ports.QueryFunc[T], opts ...Option) http.Handler {
	cfg := &handlerConfig{logger: logging.NewNop(), mounts: map[string]http.Handler{}}
	for _, opt := range opts {
		opt(cfg)
	}
	server := &Server[T]{Query: query, Logger: cfg.logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Post("/query", server.PostQuery)
	for pattern, h := range cfg.mounts {
		r.Handle(pattern, h)
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PostQuery handles the POST /query request.
func (s *Server[T]) PostQuery(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body", nil)
		return
	}

	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", []string{err.Error()})
		s.Logger.Warn("query: invalid request body", "error", err)
		return
	}
	if details := validateBody("TableState", body); len(details) > 0 {
		writeError(w, http.StatusBadRequest, "table state does not match the schema", details)
		return
	}
	doc, _ := body.(map[string]any)

	state, err := schema.Decode(doc)
	if err != nil {
		var details []string
		for _, e := range schema.ValidationErrors(err) {
			details = append(details, e.Error())
		}
		writeError(w, http.StatusBadRequest, "invalid table state", details)
		return
	}

	result, err := s.Query(r.Context(), state)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("query error: %v", err), nil)
		s.Logger.Error("query failed", "error", err)
		return
	}
	if result.Data == nil {
		result.Data = []domain.DisplayItem[T]{}
	}

	s.Logger.Debug("query served", "page", result.Summary.Page, "filtered_count", result.Summary.FilteredCount)
	writeJSON(w, http.StatusOK, result)
}

// GetHealth handles the GET /health request.
func (s *Server[T]) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server[T]) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := GetSpec(); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "smarttable-http",
		"version":     strings.TrimSpace(smarttable.Version),
		"api_version": apiVersion,
	})
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string, details []string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Details: details})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
