// Package browse drives a paginated catalog listing: pick a category or
// run a search, then keep loading more pages. It holds the state a landing
// screen renders and ignores responses to requests that have since been
// superseded.
package browse

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"reelhound/internal/app/catalog"
	"reelhound/internal/media"
)

// Banners shown when a request fails.
const (
	BannerLoad     = "Failed to load content..."
	BannerSearch   = "Failed to search..."
	BannerLoadMore = "Failed to load more content..."
)

// Catalog is the subset of the catalog service a session needs.
type Catalog interface {
	Fetch(ctx context.Context, category catalog.Category, page int) catalog.Result
	SearchMulti(ctx context.Context, query string, page int) catalog.Result
}

// View is a snapshot of the session for rendering.
type View struct {
	Category    catalog.Category
	Query       string
	Searching   bool
	Heading     string
	Items       []media.Item
	CurrentPage int
	TotalPages  int
	HasMore     bool
	Loading     bool
	Banner      string
}

// Session is safe for concurrent use. Requests run without holding the
// lock; a response is applied only if no category change, search or reset
// happened while it was in flight.
type Session struct {
	catalog Catalog
	logger  zerolog.Logger

	mu          sync.Mutex
	category    catalog.Category
	query       string
	searching   bool
	items       []media.Item
	currentPage int
	totalPages  int
	loading     bool
	banner      string
	generation  uint64
}

// NewSession starts on the trending category with nothing loaded.
func NewSession(c Catalog, logger zerolog.Logger) *Session {
	return &Session{
		catalog:     c,
		logger:      logger.With().Str("component", "browse").Logger(),
		category:    catalog.CategoryTrending,
		items:       []media.Item{},
		currentPage: 1,
		totalPages:  1,
	}
}

// Start loads the first page of the active category.
func (s *Session) Start(ctx context.Context) View {
	s.mu.Lock()
	gen := s.begin()
	category := s.category
	s.mu.Unlock()

	s.replace(gen, s.catalog.Fetch(ctx, category, 1), BannerLoad)
	return s.View()
}

// SelectCategory switches to category and loads its first page. Selecting
// the category already shown outside of search mode does nothing.
func (s *Session) SelectCategory(ctx context.Context, category catalog.Category) View {
	s.mu.Lock()
	if category == s.category && !s.searching {
		s.mu.Unlock()
		return s.View()
	}
	s.category = category
	s.searching = false
	s.query = ""
	gen := s.begin()
	s.mu.Unlock()

	s.replace(gen, s.catalog.Fetch(ctx, category, 1), BannerLoad)
	return s.View()
}

// Search replaces the listing with the first page of a multi search. Blank
// queries are ignored, as are searches issued while a request is running.
func (s *Session) Search(ctx context.Context, query string) View {
	query = strings.TrimSpace(query)

	s.mu.Lock()
	if query == "" || s.loading {
		s.mu.Unlock()
		return s.View()
	}
	s.query = query
	s.searching = true
	gen := s.begin()
	s.mu.Unlock()

	s.replace(gen, s.catalog.SearchMulti(ctx, query, 1), BannerSearch)
	return s.View()
}

// LoadMore appends the next page of the current listing. It does nothing
// while a request is running or when the last page is already shown.
func (s *Session) LoadMore(ctx context.Context) View {
	s.mu.Lock()
	if s.loading || s.currentPage >= s.totalPages {
		s.mu.Unlock()
		return s.View()
	}
	s.loading = true
	gen := s.generation
	next := s.currentPage + 1
	searching, query, category := s.searching && s.query != "", s.query, s.category
	s.mu.Unlock()

	var res catalog.Result
	if searching {
		res = s.catalog.SearchMulti(ctx, query, next)
	} else {
		res = s.catalog.Fetch(ctx, category, next)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(gen) {
		return s.view()
	}
	s.loading = false
	if res.Failed() {
		s.banner = BannerLoadMore
		return s.view()
	}
	s.items = append(s.items, res.Results...)
	s.currentPage = res.CurrentPage
	s.totalPages = res.TotalPages
	s.banner = ""
	return s.view()
}

// Reset leaves search mode and reloads the active category.
func (s *Session) Reset(ctx context.Context) View {
	s.mu.Lock()
	s.query = ""
	s.searching = false
	gen := s.begin()
	category := s.category
	s.mu.Unlock()

	s.replace(gen, s.catalog.Fetch(ctx, category, 1), BannerLoad)
	return s.View()
}

// View returns a snapshot of the current state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

func (s *Session) view() View {
	items := make([]media.Item, len(s.items))
	copy(items, s.items)

	return View{
		Category:    s.category,
		Query:       s.query,
		Searching:   s.searching,
		Heading:     s.heading(),
		Items:       items,
		CurrentPage: s.currentPage,
		TotalPages:  s.totalPages,
		HasMore:     s.currentPage < s.totalPages,
		Loading:     s.loading,
		Banner:      s.banner,
	}
}

func (s *Session) heading() string {
	if s.searching && s.query != "" {
		return `Search results for "` + s.query + `"`
	}
	return s.category.Heading()
}

// begin starts a new listing and invalidates in-flight requests. Callers
// hold mu.
func (s *Session) begin() uint64 {
	s.generation++
	s.loading = true
	s.currentPage = 1
	return s.generation
}

func (s *Session) current(gen uint64) bool {
	if gen == s.generation {
		return true
	}
	s.logger.Debug().
		Uint64("generation", gen).
		Uint64("current", s.generation).
		Msg("dropping stale catalog response")
	return false
}

// replace installs res as the first page of the listing. A failed request
// leaves the empty fallback page in place and raises banner.
func (s *Session) replace(gen uint64, res catalog.Result, banner string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.current(gen) {
		return
	}
	s.loading = false
	s.items = append([]media.Item{}, res.Results...)
	s.currentPage = res.CurrentPage
	s.totalPages = res.TotalPages
	s.banner = ""
	if res.Failed() {
		s.banner = banner
	}
}
