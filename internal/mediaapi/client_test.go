package mediaapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/", APIKey: "secret"})
}

func assertFallback(t *testing.T, page Page) {
	t.Helper()
	if page.Results == nil || len(page.Results) != 0 {
		t.Fatalf("expected empty non-nil results, got %#v", page.Results)
	}
	if page.TotalPages != 1 || page.CurrentPage != 1 {
		t.Fatalf("expected fallback pages 1/1, got %d/%d", page.CurrentPage, page.TotalPages)
	}
}

func TestPopularMoviesSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/popular" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("api_key"); got != "secret" {
			t.Errorf("expected api key secret, got %q", got)
		}
		if got := r.URL.Query().Get("page"); got != "1" {
			t.Errorf("expected page 1, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":1,"total_pages":5,"results":[
			{"id":1,"title":"Heat","release_date":"1995-12-15"},
			{"id":2,"title":"Ronin","poster_path":"/r.jpg"},
			{"id":3,"title":"Thief","vote_average":7.2}
		]}`))
	})

	page, err := client.PopularMovies(context.Background(), 1)
	if err != nil {
		t.Fatalf("PopularMovies error: %v", err)
	}
	if page.TotalPages != 5 || page.CurrentPage != 1 {
		t.Fatalf("expected pages 1/5, got %d/%d", page.CurrentPage, page.TotalPages)
	}
	if len(page.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(page.Results))
	}
	if page.Results[0].Title != "Heat" || page.Results[0].ReleaseDate != "1995-12-15" {
		t.Fatalf("unexpected first result: %#v", page.Results[0])
	}
	if page.Results[1].PosterPath != "/r.jpg" || page.Results[2].VoteAverage != 7.2 {
		t.Fatalf("results were altered: %#v", page.Results)
	}
}

func TestServerErrorReturnsFallback(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	page, err := client.PopularTVShows(context.Background(), 3)
	assertFallback(t, page)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", statusErr.StatusCode)
	}
}

func TestMalformedBodyReturnsFallback(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": [`))
	})

	page, err := client.PopularPeople(context.Background(), 1)
	if err == nil {
		t.Fatal("expected decode error")
	}
	assertFallback(t, page)
}

func TestTransportFailureReturnsFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	client := NewClient(Config{BaseURL: baseURL, APIKey: "secret"})
	page, err := client.Trending(context.Background(), "", "", 1)
	if err == nil {
		t.Fatal("expected transport error")
	}
	assertFallback(t, page)
}

func TestMissingFieldsAreDefaulted(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	page, err := client.PopularMovies(context.Background(), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertFallback(t, page)
}

func TestSearchMultiEscapesQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/multi" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if !strings.Contains(r.URL.RawQuery, "query=batman%20%26%20robin") {
			t.Errorf("query not percent-escaped: %s", r.URL.RawQuery)
		}
		if got := r.URL.Query().Get("query"); got != "batman & robin" {
			t.Errorf("decoded query = %q", got)
		}
		if got := r.URL.Query().Get("page"); got != "2" {
			t.Errorf("expected page 2, got %q", got)
		}
		_, _ = w.Write([]byte(`{"page":2,"total_pages":9,"results":[{"id":268,"media_type":"movie","title":"Batman"}]}`))
	})

	page, err := client.SearchMulti(context.Background(), "  batman & robin ", 2)
	if err != nil {
		t.Fatalf("SearchMulti error: %v", err)
	}
	if page.CurrentPage != 2 || page.TotalPages != 9 {
		t.Fatalf("unexpected pages %d/%d", page.CurrentPage, page.TotalPages)
	}
	if page.Results[0].MediaType != "movie" {
		t.Fatalf("expected media_type to survive, got %q", page.Results[0].MediaType)
	}
}

func TestSearchRejectsBlankQuery(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	page, err := client.SearchMovies(context.Background(), "   ", 1)
	if !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery, got %v", err)
	}
	assertFallback(t, page)
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatal("blank search should not reach the upstream")
	}
}

func TestEndpointPaths(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"page":1,"total_pages":1,"results":[]}`))
	})
	ctx := context.Background()

	tests := []struct {
		name string
		call func() (Page, error)
		want string
	}{
		{"popular tv", func() (Page, error) { return client.PopularTVShows(ctx, 1) }, "/tv/popular"},
		{"popular people", func() (Page, error) { return client.PopularPeople(ctx, 1) }, "/person/popular"},
		{"trending defaults", func() (Page, error) { return client.Trending(ctx, "", "", 1) }, "/trending/all/week"},
		{"trending tv day", func() (Page, error) { return client.Trending(ctx, "tv", "day", 1) }, "/trending/tv/day"},
		{"search movie", func() (Page, error) { return client.SearchMovies(ctx, "heat", 1) }, "/search/movie"},
		{"search tv", func() (Page, error) { return client.SearchTVShows(ctx, "wire", 1) }, "/search/tv"},
		{"search person", func() (Page, error) { return client.SearchPeople(ctx, "pacino", 1) }, "/search/person"},
	}

	for _, tc := range tests {
		if _, err := tc.call(); err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if gotPath != tc.want {
			t.Fatalf("%s: expected path %s, got %s", tc.name, tc.want, gotPath)
		}
	}
}

func TestPageBelowOneIsClamped(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("page"); got != "1" {
			t.Errorf("expected page 1, got %q", got)
		}
		_, _ = w.Write([]byte(`{"page":1,"total_pages":1,"results":[]}`))
	})

	if _, err := client.PopularMovies(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNormalizeQueryComposesUnicode(t *testing.T) {
	decomposed := "Ame\u0301lie"
	if got := NormalizeQuery(" " + decomposed + " "); got != "Am\u00e9lie" {
		t.Fatalf("NormalizeQuery = %q", got)
	}
}
