package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"reelhound/internal/app/catalog"
	"reelhound/internal/media"
	"reelhound/internal/validation"
)

// itemResponse is a catalog item decorated for display. It encodes as the
// item's members plus the decorations.
type itemResponse struct {
	media.Item
	itemDecorations
}

type itemDecorations struct {
	ImageURL string  `json:"image_url"`
	Favorite bool    `json:"favorite"`
	Rating   float64 `json:"rating,omitempty"`
}

func (r itemResponse) MarshalJSON() ([]byte, error) {
	return media.MarshalWith(r.Item, r.itemDecorations)
}

type catalogResponse struct {
	Results     []itemResponse `json:"results"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
	Failed      bool           `json:"failed,omitempty"`
	Error       string         `json:"error,omitempty"`
}

type sectionResponse struct {
	Category    catalog.Category `json:"category"`
	Heading     string           `json:"heading"`
	Results     []itemResponse   `json:"results"`
	TotalPages  int              `json:"totalPages"`
	CurrentPage int              `json:"currentPage"`
	Failed      bool             `json:"failed,omitempty"`
	Error       string           `json:"error,omitempty"`
}

type trendingQuery struct {
	MediaType  string `json:"media_type" validate:"omitempty,oneof=all movie tv person"`
	TimeWindow string `json:"time_window" validate:"omitempty,oneof=day week"`
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	page, err := pageParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	q := trendingQuery{
		MediaType:  strings.ToLower(strings.TrimSpace(r.URL.Query().Get("media_type"))),
		TimeWindow: strings.ToLower(strings.TrimSpace(r.URL.Query().Get("time_window"))),
	}
	if err := validation.Struct(&q); err != nil {
		writeValidationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.decorate(s.catalog.Trending(r.Context(), q.MediaType, q.TimeWindow, page)))
}

func (s *Server) handlePopular(w http.ResponseWriter, r *http.Request) {
	page, err := pageParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	kind, ok := media.ParseKind(mux.Vars(r)["kind"])
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown media kind"})
		return
	}

	var res catalog.Result
	switch kind {
	case media.KindMovie:
		res = s.catalog.PopularMovies(r.Context(), page)
	case media.KindTV:
		res = s.catalog.PopularTVShows(r.Context(), page)
	case media.KindPerson:
		res = s.catalog.PopularPeople(r.Context(), page)
	}

	writeJSON(w, http.StatusOK, s.decorate(res))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	page, err := pageParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	query := r.URL.Query().Get("query")

	var res catalog.Result
	switch strings.ToLower(mux.Vars(r)["kind"]) {
	case "movie":
		res = s.catalog.SearchMovies(r.Context(), query, page)
	case "tv":
		res = s.catalog.SearchTVShows(r.Context(), query, page)
	case "person":
		res = s.catalog.SearchPeople(r.Context(), query, page)
	case "multi":
		res = s.catalog.SearchMulti(r.Context(), query, page)
	default:
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown search kind"})
		return
	}

	writeJSON(w, http.StatusOK, s.decorate(res))
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	sections := s.catalog.Overview(r.Context())

	out := make([]sectionResponse, len(sections))
	for i, section := range sections {
		page := s.decorate(section.Result)
		out[i] = sectionResponse{
			Category:    section.Category,
			Heading:     section.Heading,
			Results:     page.Results,
			TotalPages:  page.TotalPages,
			CurrentPage: page.CurrentPage,
			Failed:      page.Failed,
			Error:       page.Error,
		}
	}

	writeJSON(w, http.StatusOK, struct {
		Sections []sectionResponse `json:"sections"`
	}{Sections: out})
}

// decorate resolves image URLs and attaches the caller's preferences to
// each item.
func (s *Server) decorate(res catalog.Result) catalogResponse {
	out := catalogResponse{
		Results:     make([]itemResponse, len(res.Results)),
		TotalPages:  res.TotalPages,
		CurrentPage: res.CurrentPage,
	}
	for i, item := range res.Results {
		out.Results[i] = itemResponse{
			Item: item,
			itemDecorations: itemDecorations{
				ImageURL: media.ImageURL(item),
				Favorite: s.preferences.IsFavorite(item.ID),
				Rating:   s.preferences.Rating(item.ID),
			},
		}
	}
	if res.Failed() {
		out.Failed = true
		out.Error = res.Err.Error()
	}
	return out
}

// pageParam reads the optional 1-based page query parameter. Values below
// one are clamped upstream.
func pageParam(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("page"))
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("invalid page parameter")
	}
	return page, nil
}

func writeValidationError(w http.ResponseWriter, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error(), Details: verr.Fields})
		return
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
}
