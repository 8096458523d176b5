package catalog

import "strings"

// Category is one of the browsable listings on the landing screen.
type Category string

const (
	CategoryTrending Category = "trending"
	CategoryMovies   Category = "movies"
	CategoryTV       Category = "tv"
	CategoryPeople   Category = "people"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryTrending, CategoryMovies, CategoryTV, CategoryPeople}

// ParseCategory accepts a category name case-insensitively.
func ParseCategory(raw string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	switch c {
	case CategoryTrending, CategoryMovies, CategoryTV, CategoryPeople:
		return c, true
	}
	return "", false
}

// Heading is the title shown above a category listing.
func (c Category) Heading() string {
	switch c {
	case CategoryMovies:
		return "Popular Movies"
	case CategoryTV:
		return "Popular TV Shows"
	case CategoryPeople:
		return "Popular People"
	default:
		return "Trending This Week"
	}
}
