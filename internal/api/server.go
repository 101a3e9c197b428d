package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"catalog-scraper/internal/app"
	"catalog-scraper/internal/observability"
	"catalog-scraper/internal/scraper"
	"catalog-scraper/internal/storage"
)

// Scraper runs and stores crawls.
type Scraper interface {
	CheckURL(source scraper.Source, rawURL string) error
	Scrape(ctx context.Context, source scraper.Source, rawURL string, pages int) (*scraper.CrawlResult, error)
}

// Catalog reads stored items.
type Catalog interface {
	ListTypes(ctx context.Context) ([]string, error)
	ListItems(ctx context.Context) ([]*storage.ItemRecord, error)
	ListItemsByType(ctx context.Context, itemType string) ([]*storage.ItemRecord, error)
}

type Server struct {
	scraper Scraper
	catalog Catalog
	logger  *observability.Logger
	mux     *http.ServeMux
}

func NewServer(s Scraper, c Catalog, logger *observability.Logger) *Server {
	srv := &Server{
		scraper: s,
		catalog: c,
		logger:  logger,
		mux:     http.NewServeMux(),
	}

	srv.mux.HandleFunc("POST /api/scrape/{site}", srv.handleScrape)
	srv.mux.HandleFunc("GET /api/{$}", srv.handleTypes)
	srv.mux.HandleFunc("GET /api/all", srv.handleAll)
	srv.mux.HandleFunc("GET /api/items/{type}", srv.handleItemsByType)

	return srv
}

// Handler returns the routes wrapped with CORS and request logging.
func (s *Server) Handler() http.Handler {
	return s.logRequests(cors(s.mux))
}

type scrapeRequest struct {
	URL      string `json:"url"`
	PagesNum any    `json:"pages_num"`
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	source, err := scraper.ParseSource(r.PathValue("site"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Unknown site.")
		return
	}

	var req scrapeRequest
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&req); err != nil {
		s.logger.Warn("Malformed scrape request", "site", source, "error", err.Error())
		writeError(w, http.StatusBadRequest, "Failed to scrape and save data.")
		return
	}

	if err := s.scraper.CheckURL(source, req.URL); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid URL. Expected %s website URL.", source))
		return
	}

	pages, err := app.NormalizePageCount(req.PagesNum)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid number of pages. Expected integer greater than 0.")
		return
	}

	result, err := s.scraper.Scrape(r.Context(), source, req.URL, pages)
	if err != nil {
		s.logger.Error("Scrape failed",
			"site", source,
			"url", req.URL,
			"pages", pages,
			"kind", scraper.Kind(err),
			"error", err.Error(),
		)
		writeError(w, http.StatusBadRequest, "Failed to scrape and save data.")
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.catalog.ListTypes(r.Context())
	if err != nil {
		s.logger.Error("Failed to list types", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "Failed to get items types.")
		return
	}
	writeJSON(w, http.StatusOK, types)
}

func (s *Server) handleAll(w http.ResponseWriter, r *http.Request) {
	items, err := s.catalog.ListItems(r.Context())
	if err != nil {
		s.logger.Error("Failed to list items", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "Failed to get items.")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleItemsByType(w http.ResponseWriter, r *http.Request) {
	itemType := r.PathValue("type")

	items, err := s.catalog.ListItemsByType(r.Context(), itemType)
	if err != nil {
		s.logger.Error("Failed to list items by type", "type", itemType, "error", err.Error())
		writeError(w, http.StatusBadRequest, "Failed to get items of type "+itemType+".")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET,HEAD,PUT,PATCH,POST,DELETE")
		h.Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Info("Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(started).Round(time.Millisecond).String(),
		)
	})
}
