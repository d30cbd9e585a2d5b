package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"freelanceradar/internal/scraper"
	"freelanceradar/logger"
	"freelanceradar/services/aggregator"
)

// defaultAllWindow bounds the combined endpoint to recent listings unless the
// caller asks for a different window. Per-source endpoints default to no
// window, matching their unfiltered cache entries.
const defaultAllWindow = 24

// Fetcher is the aggregator surface the API serves from.
type Fetcher interface {
	Fetch(sourceSet string, window time.Duration) (*aggregator.Result, error)
	ForceRefresh(sourceSet string) (*aggregator.Result, error)
}

// Server exposes the aggregated listings over HTTP.
type Server struct {
	agg Fetcher
	log *logger.Logger
}

// NewServer creates the API server over an aggregator
func NewServer(agg Fetcher) *Server {
	return &Server{agg: agg, log: logger.ForAPI()}
}

// Router builds the chi routing tree
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/jobs", s.handleFetch(aggregator.SetWorkana))
		r.Post("/jobs", s.handleRefresh(aggregator.SetWorkana))
		r.Get("/freelancer", s.handleFetch(aggregator.SetFreelancer))
		r.Post("/freelancer", s.handleRefresh(aggregator.SetFreelancer))
		r.Get("/all", s.handleFetch(aggregator.SetAll))
		r.Post("/all", s.handleRefresh(aggregator.SetAll))
	})

	return r
}

type jobsResponse struct {
	Success    bool              `json:"success"`
	Jobs       []scraper.Listing `json:"jobs"`
	Cached     bool              `json:"cached"`
	Forced     bool              `json:"forced,omitempty"`
	Count      int               `json:"count"`
	TotalCount int               `json:"totalCount,omitempty"`
	Hours      int               `json:"hours,omitempty"`
	Sources    []string          `json:"sources,omitempty"`
	Breakdown  map[string]int    `json:"breakdown,omitempty"`
	Timestamp  string            `json:"timestamp"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (s *Server) handleFetch(sourceSet string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hours := parseHours(r, defaultHoursFor(sourceSet))

		res, err := s.agg.Fetch(sourceSet, time.Duration(hours)*time.Hour)
		if err != nil {
			s.fail(w, err)
			return
		}

		s.respond(w, res, hours, false)
	}
}

func (s *Server) handleRefresh(sourceSet string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := s.agg.ForceRefresh(sourceSet)
		if err != nil {
			s.fail(w, err)
			return
		}

		s.respond(w, res, 0, true)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) respond(w http.ResponseWriter, res *aggregator.Result, hours int, forced bool) {
	jobs := res.Listings
	if jobs == nil {
		jobs = []scraper.Listing{}
	}

	writeJSON(w, http.StatusOK, jobsResponse{
		Success:    true,
		Jobs:       jobs,
		Cached:     res.Cached,
		Forced:     forced,
		Count:      res.Count,
		TotalCount: res.TotalCount,
		Hours:      hours,
		Sources:    res.Sources,
		Breakdown:  res.Breakdown,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	s.log.Error().Err(err).Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, errorResponse{Success: false, Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// parseHours reads the ?hours query parameter; absent or malformed values
// fall back to the endpoint default.
func parseHours(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("hours")
	if raw == "" {
		return fallback
	}
	hours, err := strconv.Atoi(raw)
	if err != nil || hours < 0 {
		return fallback
	}
	return hours
}

func defaultHoursFor(sourceSet string) int {
	if sourceSet == aggregator.SetAll {
		return defaultAllWindow
	}
	return 0
}
