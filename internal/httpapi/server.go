package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"reelhound/internal/app/catalog"
	"reelhound/internal/app/preferences"
	"reelhound/internal/http/middleware"
	"reelhound/internal/logging"
	"reelhound/internal/media"
)

// CatalogService exposes the catalog listings and searches.
type CatalogService interface {
	PopularMovies(ctx context.Context, page int) catalog.Result
	PopularTVShows(ctx context.Context, page int) catalog.Result
	PopularPeople(ctx context.Context, page int) catalog.Result
	Trending(ctx context.Context, mediaType, timeWindow string, page int) catalog.Result
	SearchMovies(ctx context.Context, query string, page int) catalog.Result
	SearchTVShows(ctx context.Context, query string, page int) catalog.Result
	SearchPeople(ctx context.Context, query string, page int) catalog.Result
	SearchMulti(ctx context.Context, query string, page int) catalog.Result
	Overview(ctx context.Context) []catalog.Section
}

// PreferenceService describes favorites and ratings workflows.
type PreferenceService interface {
	AddFavorite(ctx context.Context, item media.Item) preferences.Favorite
	RemoveFavorite(ctx context.Context, id int64)
	IsFavorite(id int64) bool
	Favorites() []preferences.Favorite
	UpdateRating(ctx context.Context, id int64, rating float64) error
	ClearRating(ctx context.Context, id int64)
	Rating(id int64) float64
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	catalog     CatalogService
	preferences PreferenceService
	logger      zerolog.Logger
}

// New configures a Server with the given services.
func New(catalog CatalogService, prefs PreferenceService, logger zerolog.Logger) *Server {
	return &Server{
		catalog:     catalog,
		preferences: prefs,
		logger:      logger.With().Str("component", "httpapi").Logger(),
	}
}

// Routes exposes the HTTP handlers for catalog browsing and preferences.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogging(s.logger), middleware.Recovery(s.logger))

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Catalog routes
	api.HandleFunc("/catalog/trending", s.handleTrending).Methods(http.MethodGet)
	api.HandleFunc("/catalog/popular/{kind}", s.handlePopular).Methods(http.MethodGet)
	api.HandleFunc("/catalog/search/{kind}", s.handleSearch).Methods(http.MethodGet)
	api.HandleFunc("/catalog/overview", s.handleOverview).Methods(http.MethodGet)

	// Favorites routes
	api.HandleFunc("/favorites", s.handleListFavorites).Methods(http.MethodGet)
	api.HandleFunc("/favorites", s.handleAddFavorite).Methods(http.MethodPost)
	api.HandleFunc("/favorites/{id:[0-9]+}", s.handleCheckFavorite).Methods(http.MethodGet)
	api.HandleFunc("/favorites/{id:[0-9]+}", s.handleRemoveFavorite).Methods(http.MethodDelete)

	// Rating routes
	api.HandleFunc("/ratings/{id:[0-9]+}", s.handleGetRating).Methods(http.MethodGet)
	api.HandleFunc("/ratings/{id:[0-9]+}", s.handleUpdateRating).Methods(http.MethodPut)
	api.HandleFunc("/ratings/{id:[0-9]+}", s.handleClearRating).Methods(http.MethodDelete)

	return r
}

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// maxBodyBytes bounds request bodies; a media item is a few KB at most.
const maxBodyBytes = 1 << 20

func readBody(r *http.Request) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
}

func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.New("invalid id parameter")
	}
	return id, nil
}

func (s *Server) requestLogger(r *http.Request) zerolog.Logger {
	return logging.WithContext(r.Context(), s.logger)
}

// writeJSON encodes payload before sending the status so that an encoding
// failure is answered with a 500 instead of a truncated body.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	var body []byte
	if payload != nil {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			log.Error().Err(err).Msg("failed to encode response")
			status = http.StatusInternalServerError
			body = []byte(`{"error":"failed to encode response"}`)
		}
		body = append(body, '\n')
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
