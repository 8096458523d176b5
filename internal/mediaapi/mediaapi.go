package mediaapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"reelhound/internal/media"
)

// DefaultBaseURL is the public TMDB v3 endpoint.
const DefaultBaseURL = "https://api.themoviedb.org/3"

// Trending defaults used when the caller leaves a segment empty.
const (
	TrendingAll  = "all"
	TrendingWeek = "week"
	TrendingDay  = "day"
)

var (
	// ErrEmptyQuery is returned by search calls given a blank term. No
	// request is issued.
	ErrEmptyQuery = errors.New("search query is required")
)

// StatusError reports a non-2xx response from the upstream API.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: upstream returned %d %s", e.Endpoint, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s: upstream returned %d %s - %s", e.Endpoint, e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// Page is the normalized shape of every list, search and trending call.
type Page struct {
	Results     []media.Item `json:"results"`
	TotalPages  int          `json:"totalPages"`
	CurrentPage int          `json:"currentPage"`
}

// EmptyPage is the fallback returned alongside any error.
func EmptyPage() Page {
	return Page{Results: []media.Item{}, TotalPages: 1, CurrentPage: 1}
}

// listResponse mirrors the paginated envelope of the upstream API.
type listResponse struct {
	Page         int          `json:"page"`
	Results      []media.Item `json:"results"`
	TotalPages   int          `json:"total_pages"`
	TotalResults int          `json:"total_results"`
}

// normalize fills absent fields: no results becomes an empty list and
// missing or zero page numbers become 1.
func (r listResponse) normalize() Page {
	page := Page{
		Results:     r.Results,
		TotalPages:  r.TotalPages,
		CurrentPage: r.Page,
	}
	if page.Results == nil {
		page.Results = []media.Item{}
	}
	if page.TotalPages < 1 {
		page.TotalPages = 1
	}
	if page.CurrentPage < 1 {
		page.CurrentPage = 1
	}
	return page
}

// CatalogClient defines the upstream calls the catalog service relies on.
type CatalogClient interface {
	// PopularMovies lists popular movies
	PopularMovies(ctx context.Context, page int) (Page, error)

	// PopularTVShows lists popular TV shows
	PopularTVShows(ctx context.Context, page int) (Page, error)

	// PopularPeople lists popular people
	PopularPeople(ctx context.Context, page int) (Page, error)

	// Trending lists trending items of a media type ("all", "movie", "tv",
	// "person") over a time window ("day", "week")
	Trending(ctx context.Context, mediaType, timeWindow string, page int) (Page, error)

	// SearchMovies searches movies by title
	SearchMovies(ctx context.Context, query string, page int) (Page, error)

	// SearchTVShows searches TV shows by name
	SearchTVShows(ctx context.Context, query string, page int) (Page, error)

	// SearchPeople searches people by name
	SearchPeople(ctx context.Context, query string, page int) (Page, error)

	// SearchMulti searches movies, shows and people at once
	SearchMulti(ctx context.Context, query string, page int) (Page, error)
}

// Config holds configuration for the upstream client.
type Config struct {
	BaseURL string
	APIKey  string

	// Timeout bounds a single request. Zero leaves requests bounded only
	// by the caller's context.
	Timeout time.Duration

	// HTTPClient overrides the transport, mostly for tests.
	HTTPClient *http.Client
}
