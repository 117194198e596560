// Package httpapi exposes the stored phrasebank over a read-only JSON API.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"PhrasebankScanner/internal/domain"
	"PhrasebankScanner/internal/usecase"
)

// Server routes lookup requests to the Lookup use case.
type Server struct {
	router chi.Router
	lookup *usecase.Lookup
	log    *slog.Logger
}

// NewServer creates and configures the HTTP handler.
func NewServer(lookup *usecase.Lookup, log *slog.Logger) *Server {
	s := &Server{lookup: lookup, log: log}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/info", s.handleInfo)
		r.Get("/search", s.handleSearch)
		r.Get("/sections/{section}", s.handleSection)
		r.Get("/sections/{section}/frequent", s.handleFrequent)
		r.Get("/sections/{section}/{subsection}", s.handleSection)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.lookup.Info(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleSection(w http.ResponseWriter, r *http.Request) {
	section := chi.URLParam(r, "section")
	subsection := chi.URLParam(r, "subsection")

	records, err := s.lookup.BySection(r.Context(), section, subsection)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"section":    section,
		"subsection": subsection,
		"count":      len(records),
		"phrases":    records,
	})
}

func (s *Server) handleFrequent(w http.ResponseWriter, r *http.Request) {
	section := chi.URLParam(r, "section")
	limit, err := intParam(r, "limit")
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	records, err := s.lookup.HighFrequency(r.Context(), section, limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"section": section,
		"count":   len(records),
		"phrases": records,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")
	if query == "" {
		jsonError(w, "q query parameter is required", http.StatusBadRequest)
		return
	}

	limit, err := intParam(r, "limit")
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var minScore float64
	if raw := q.Get("minScore"); raw != "" {
		minScore, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			jsonError(w, "minScore must be a number", http.StatusBadRequest)
			return
		}
	}

	records, err := s.lookup.Search(r.Context(), query, domain.SearchOptions{
		Section:  q.Get("section"),
		MinScore: minScore,
		Limit:    limit,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"count":   len(records),
		"phrases": records,
	})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, usecase.ErrEmptyQuery):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrCorpusNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	default:
		if s.log != nil {
			s.log.Error("lookup failed", "path", r.URL.Path, "error", err)
		}
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New(name + " must be a non-negative integer")
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
