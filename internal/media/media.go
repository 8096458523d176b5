package media

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Kind identifies what a catalog entry describes.
type Kind string

const (
	KindMovie   Kind = "movie"
	KindTV      Kind = "tv"
	KindPerson  Kind = "person"
	KindUnknown Kind = "unknown"
)

// Item is a movie, TV show or person record as returned by the upstream
// catalog. Which fields are set depends on the kind; ids are only unique
// within a kind. A decoded item keeps every member it was decoded from and
// encodes them back unchanged, including members it has no field for.
type Item struct {
	ID                 int64    `json:"id"`
	MediaType          Kind     `json:"media_type,omitempty"`
	Title              string   `json:"title,omitempty"`
	Name               string   `json:"name,omitempty"`
	OriginalTitle      string   `json:"original_title,omitempty"`
	OriginalName       string   `json:"original_name,omitempty"`
	OriginalLanguage   string   `json:"original_language,omitempty"`
	Overview           string   `json:"overview,omitempty"`
	ReleaseDate        string   `json:"release_date,omitempty"`
	FirstAirDate       string   `json:"first_air_date,omitempty"`
	PosterPath         string   `json:"poster_path,omitempty"`
	ProfilePath        string   `json:"profile_path,omitempty"`
	BackdropPath       string   `json:"backdrop_path,omitempty"`
	VoteAverage        float64  `json:"vote_average,omitempty"`
	VoteCount          int      `json:"vote_count,omitempty"`
	Popularity         float64  `json:"popularity,omitempty"`
	KnownForDepartment string   `json:"known_for_department,omitempty"`
	KnownFor           []Credit `json:"known_for,omitempty"`
	GenreIDs           []int    `json:"genre_ids,omitempty"`
	Adult              bool     `json:"adult,omitempty"`

	members map[string]json.RawMessage
}

// Credit is a title listed in a person's known_for.
type Credit struct {
	ID           int64   `json:"id"`
	MediaType    Kind    `json:"media_type,omitempty"`
	Title        string  `json:"title,omitempty"`
	Name         string  `json:"name,omitempty"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	FirstAirDate string  `json:"first_air_date,omitempty"`
	PosterPath   string  `json:"poster_path,omitempty"`
	VoteAverage  float64 `json:"vote_average,omitempty"`
}

// InferKind resolves the kind of an item. An explicit media_type wins;
// otherwise the first matching heuristic applies: a title means movie, a
// name with a first air date means tv, a known-for department means person.
func InferKind(item Item) Kind {
	switch {
	case item.MediaType != "":
		return item.MediaType
	case item.Title != "":
		return KindMovie
	case item.Name != "" && item.FirstAirDate != "":
		return KindTV
	case item.KnownForDepartment != "":
		return KindPerson
	default:
		return KindUnknown
	}
}

// ParseKind maps user input onto a Kind. Unrecognised values return false.
func ParseKind(raw string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindMovie:
		return KindMovie, true
	case KindTV:
		return KindTV, true
	case KindPerson:
		return KindPerson, true
	}
	return "", false
}

const (
	// ImageBaseURL is the CDN prefix for poster and profile paths.
	ImageBaseURL = "https://image.tmdb.org/t/p/w500"
	// PlaceholderImageURL is used when an item has no artwork.
	PlaceholderImageURL = "https://via.placeholder.com/300x450/333/fff?text=No+Image"
)

// ImageURL builds the artwork URL for an item. People use their profile
// picture, everything else the poster.
func ImageURL(item Item) string {
	path := item.PosterPath
	if item.MediaType == KindPerson || item.KnownForDepartment != "" {
		path = item.ProfilePath
	}
	if path == "" {
		return PlaceholderImageURL
	}
	return ImageBaseURL + path
}

// DisplayTitle returns the title of a movie or the name of a show or person.
func DisplayTitle(item Item) string {
	if item.Title != "" {
		return item.Title
	}
	if item.Name != "" {
		return item.Name
	}
	return "Unknown Title"
}

// ReleaseYear returns the four digit year of the release or first air date,
// or "N/A" when neither is known.
func ReleaseYear(item Item) string {
	date := item.ReleaseDate
	if date == "" {
		date = item.FirstAirDate
	}
	if date == "" {
		return "N/A"
	}
	year, _, _ := strings.Cut(date, "-")
	return year
}

// Subtitle is the short caption shown under a title.
func Subtitle(item Item) string {
	switch InferKind(item) {
	case KindPerson:
		if item.KnownForDepartment != "" {
			return item.KnownForDepartment
		}
		return "Actor"
	case KindTV:
		return "TV Series • " + ReleaseYear(item)
	default:
		return "Movie • " + ReleaseYear(item)
	}
}

// UpstreamStars converts the upstream 0-10 vote average to a five star
// scale with one decimal. People and unrated items report false.
func UpstreamStars(item Item) (string, bool) {
	if InferKind(item) == KindPerson || item.VoteAverage == 0 {
		return "", false
	}
	return fmt.Sprintf("%.1f", item.VoteAverage/2), true
}
