package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"reelhound/internal/app/catalog"
	"reelhound/internal/app/preferences"
	"reelhound/internal/browse"
	"reelhound/internal/media"
)

const browseHelp = `Commands:
  trending | movies | tv | people   switch category
  search <terms>                    search movies, shows and people
  more                              load the next page
  reset                             leave search and reload the category
  fav <n>                           toggle favorite for item n
  rate <n> <stars>                  rate item n (0.5-5, 0 clears)
  favorites                         list favorites
  help                              show this help
  quit                              exit`

// browser is a line-oriented front end over a browse session.
type browser struct {
	session *browse.Session
	prefs   *preferences.Store
	out     io.Writer
	view    browse.View
}

func runBrowse(ctx context.Context, in io.Reader, out io.Writer, catalogSvc catalog.Service, prefs *preferences.Store, logger zerolog.Logger) error {
	b := &browser{
		session: browse.NewSession(catalogSvc, logger),
		prefs:   prefs,
		out:     out,
	}

	b.view = b.session.Start(ctx)
	b.render()
	fmt.Fprintln(out, `Type "help" for commands.`)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}
		if quit := b.exec(ctx, scanner.Text()); quit {
			return nil
		}
	}
}

// exec runs one command line and reports whether the user asked to quit.
func (b *browser) exec(ctx context.Context, line string) bool {
	command, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(command) {
	case "":
	case "quit", "exit", "q":
		return true
	case "help", "?":
		fmt.Fprintln(b.out, browseHelp)
	case "search", "/":
		if rest == "" {
			fmt.Fprintln(b.out, "usage: search <terms>")
			return false
		}
		b.view = b.session.Search(ctx, rest)
		b.render()
	case "more":
		if !b.view.HasMore {
			fmt.Fprintln(b.out, "No more results.")
			return false
		}
		b.view = b.session.LoadMore(ctx)
		b.render()
	case "reset":
		b.view = b.session.Reset(ctx)
		b.render()
	case "fav":
		b.toggleFavorite(ctx, rest)
	case "rate":
		b.rate(ctx, rest)
	case "favorites":
		b.listFavorites()
	default:
		category, ok := catalog.ParseCategory(command)
		if !ok {
			fmt.Fprintf(b.out, "unknown command %q\n", command)
			return false
		}
		b.view = b.session.SelectCategory(ctx, category)
		b.render()
	}
	return false
}

func (b *browser) item(arg string) (media.Item, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(b.view.Items) {
		fmt.Fprintf(b.out, "no item %q on screen\n", arg)
		return media.Item{}, false
	}
	return b.view.Items[n-1], true
}

func (b *browser) toggleFavorite(ctx context.Context, arg string) {
	item, ok := b.item(arg)
	if !ok {
		return
	}
	if b.prefs.IsFavorite(item.ID) {
		b.prefs.RemoveFavorite(ctx, item.ID)
		fmt.Fprintf(b.out, "Removed %s from favorites.\n", media.DisplayTitle(item))
		return
	}
	b.prefs.AddFavorite(ctx, item)
	fmt.Fprintf(b.out, "Added %s to favorites.\n", media.DisplayTitle(item))
}

func (b *browser) rate(ctx context.Context, args string) {
	index, raw, _ := strings.Cut(args, " ")
	item, ok := b.item(index)
	if !ok {
		return
	}
	stars, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		fmt.Fprintln(b.out, "usage: rate <n> <stars>")
		return
	}
	if stars == 0 {
		b.prefs.ClearRating(ctx, item.ID)
		fmt.Fprintf(b.out, "Cleared rating for %s.\n", media.DisplayTitle(item))
		return
	}
	if err := b.prefs.UpdateRating(ctx, item.ID, stars); err != nil {
		fmt.Fprintln(b.out, err)
		return
	}
	fmt.Fprintf(b.out, "Rated %s %.1f stars.\n", media.DisplayTitle(item), stars)
}

func (b *browser) listFavorites() {
	favorites := b.prefs.Favorites()
	if len(favorites) == 0 {
		fmt.Fprintln(b.out, "No favorites yet.")
		return
	}
	fmt.Fprintln(b.out, "Favorites")
	for i, fav := range favorites {
		line := fmt.Sprintf("%3d. %s [%s]", i+1, media.DisplayTitle(fav.Item), fav.FavoriteType)
		if rating := b.prefs.Rating(fav.ID); rating > 0 {
			line += fmt.Sprintf("  your rating %.1f", rating)
		}
		fmt.Fprintln(b.out, line)
	}
}

func (b *browser) render() {
	v := b.view
	fmt.Fprintln(b.out)
	fmt.Fprintln(b.out, v.Heading)
	if v.Banner != "" {
		fmt.Fprintln(b.out, "!", v.Banner)
	}
	if len(v.Items) == 0 && v.Banner == "" {
		fmt.Fprintln(b.out, "No results.")
	}
	for i, item := range v.Items {
		fmt.Fprintln(b.out, b.formatItem(i+1, item))
	}
	if v.HasMore {
		fmt.Fprintf(b.out, "Page %d of %d, type \"more\" for the next page.\n", v.CurrentPage, v.TotalPages)
	}
}

func (b *browser) formatItem(n int, item media.Item) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%3d. %s (%s)", n, media.DisplayTitle(item), media.Subtitle(item))
	if stars, ok := media.UpstreamStars(item); ok {
		fmt.Fprintf(&sb, "  ★ %s", stars)
	}
	if b.prefs.IsFavorite(item.ID) {
		sb.WriteString("  ♥")
	}
	if rating := b.prefs.Rating(item.ID); rating > 0 {
		fmt.Fprintf(&sb, "  your rating %.1f", rating)
	}
	return sb.String()
}
