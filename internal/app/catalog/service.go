package catalog

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"reelhound/internal/mediaapi"
)

// Result is the outcome of a catalog call. Page always has the normalized
// shape; on failure it is the empty fallback and Err explains why.
type Result struct {
	mediaapi.Page
	Err error `json:"-"`
}

// Failed reports whether the page is a fallback caused by an error rather
// than a genuinely empty listing.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Section is one category of the landing overview.
type Section struct {
	Category Category
	Heading  string
	Result   Result
}

// Service describes the catalog queries used by the HTTP API and the
// terminal browser. Failures are logged and reported through Result, never
// as a Go error.
type Service interface {
	PopularMovies(ctx context.Context, page int) Result
	PopularTVShows(ctx context.Context, page int) Result
	PopularPeople(ctx context.Context, page int) Result
	Trending(ctx context.Context, mediaType, timeWindow string, page int) Result
	SearchMovies(ctx context.Context, query string, page int) Result
	SearchTVShows(ctx context.Context, query string, page int) Result
	SearchPeople(ctx context.Context, query string, page int) Result
	SearchMulti(ctx context.Context, query string, page int) Result

	// Fetch loads a page of a landing category
	Fetch(ctx context.Context, category Category, page int) Result

	// Overview loads the first page of every category concurrently
	Overview(ctx context.Context) []Section
}

type service struct {
	client mediaapi.CatalogClient
	logger zerolog.Logger
}

// New constructs a catalog Service over the given upstream client.
func New(client mediaapi.CatalogClient, logger zerolog.Logger) Service {
	return &service{
		client: client,
		logger: logger.With().Str("component", "catalog").Logger(),
	}
}

func (s *service) PopularMovies(ctx context.Context, page int) Result {
	return s.wrap("popular movies", page)(s.client.PopularMovies(ctx, page))
}

func (s *service) PopularTVShows(ctx context.Context, page int) Result {
	return s.wrap("popular tv shows", page)(s.client.PopularTVShows(ctx, page))
}

func (s *service) PopularPeople(ctx context.Context, page int) Result {
	return s.wrap("popular people", page)(s.client.PopularPeople(ctx, page))
}

func (s *service) Trending(ctx context.Context, mediaType, timeWindow string, page int) Result {
	return s.wrap("trending", page)(s.client.Trending(ctx, mediaType, timeWindow, page))
}

func (s *service) SearchMovies(ctx context.Context, query string, page int) Result {
	return s.wrap("search movies", page)(s.client.SearchMovies(ctx, query, page))
}

func (s *service) SearchTVShows(ctx context.Context, query string, page int) Result {
	return s.wrap("search tv shows", page)(s.client.SearchTVShows(ctx, query, page))
}

func (s *service) SearchPeople(ctx context.Context, query string, page int) Result {
	return s.wrap("search people", page)(s.client.SearchPeople(ctx, query, page))
}

func (s *service) SearchMulti(ctx context.Context, query string, page int) Result {
	return s.wrap("search multi", page)(s.client.SearchMulti(ctx, query, page))
}

func (s *service) Fetch(ctx context.Context, category Category, page int) Result {
	switch category {
	case CategoryMovies:
		return s.PopularMovies(ctx, page)
	case CategoryTV:
		return s.PopularTVShows(ctx, page)
	case CategoryPeople:
		return s.PopularPeople(ctx, page)
	default:
		return s.Trending(ctx, mediaapi.TrendingAll, mediaapi.TrendingWeek, page)
	}
}

func (s *service) Overview(ctx context.Context) []Section {
	sections := make([]Section, len(Categories))

	p := pool.New().WithMaxGoroutines(len(Categories))
	for i, category := range Categories {
		i, category := i, category
		p.Go(func() {
			sections[i] = Section{
				Category: category,
				Heading:  category.Heading(),
				Result:   s.Fetch(ctx, category, 1),
			}
		})
	}
	p.Wait()

	return sections
}

// wrap turns a client response into a Result, logging failures. Context
// cancellation is logged at debug since the caller has already gone away.
func (s *service) wrap(operation string, page int) func(mediaapi.Page, error) Result {
	return func(p mediaapi.Page, err error) Result {
		if err == nil {
			return Result{Page: p}
		}

		evt := s.logger.Warn()
		if errors.Is(err, context.Canceled) {
			evt = s.logger.Debug()
		}
		evt.Err(err).
			Str("operation", operation).
			Int("page", page).
			Msg("catalog request failed")

		return Result{Page: mediaapi.EmptyPage(), Err: err}
	}
}
