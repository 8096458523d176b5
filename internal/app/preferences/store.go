package preferences

import (
	"context"
	"errors"
	"math"
	"strconv"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"reelhound/internal/media"
	"reelhound/internal/metrics"
	"reelhound/internal/store"
)

// Storage keys of the two persisted collections.
const (
	FavoritesKey = "favorites"
	RatingsKey   = "ratings"
)

// Rating bounds in stars.
const (
	MinRating = 0.5
	MaxRating = 5.0
)

// ErrInvalidRating rejects ratings that are not a half-star step in
// [MinRating, MaxRating].
var ErrInvalidRating = errors.New("rating must be a half-star step between 0.5 and 5")

// Favorite is a snapshot of an item at the time it was favorited. Its type
// is resolved once and never recomputed. It encodes as the item's members
// plus favoriteType.
type Favorite struct {
	media.Item
	FavoriteType media.Kind `json:"favoriteType"`
}

type favoriteFields struct {
	FavoriteType media.Kind `json:"favoriteType"`
}

func (f Favorite) MarshalJSON() ([]byte, error) {
	return media.MarshalWith(f.Item, favoriteFields{FavoriteType: f.FavoriteType})
}

func (f *Favorite) UnmarshalJSON(data []byte) error {
	var item media.Item
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}
	var fields favoriteFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	f.Item = item
	f.FavoriteType = fields.FavoriteType
	return nil
}

// Store owns the user's favorites and ratings and writes each collection
// back to the key-value store whenever it changes. Persistence failures are
// logged and do not undo the in-memory change.
type Store struct {
	kv     store.KV
	logger zerolog.Logger

	mu        sync.RWMutex
	favorites []Favorite
	ratings   map[string]float64
}

// New constructs an empty Store backed by kv. Call Load to restore state.
func New(kv store.KV, logger zerolog.Logger) *Store {
	return &Store{
		kv:        kv,
		logger:    logger.With().Str("component", "preferences").Logger(),
		favorites: []Favorite{},
		ratings:   map[string]float64{},
	}
}

// Load replaces the in-memory collections with what is persisted. Missing,
// unreadable or malformed collections start empty.
func (s *Store) Load(ctx context.Context) {
	var favorites []Favorite
	if !s.read(ctx, FavoritesKey, &favorites) || favorites == nil {
		favorites = []Favorite{}
	}

	var ratings map[string]float64
	if !s.read(ctx, RatingsKey, &ratings) || ratings == nil {
		ratings = map[string]float64{}
	}

	s.mu.Lock()
	s.favorites = favorites
	s.ratings = ratings
	s.mu.Unlock()

	s.logger.Debug().
		Int("favorites", len(favorites)).
		Int("ratings", len(ratings)).
		Msg("preferences loaded")
}

// read decodes the value stored under key into dst and reports whether it
// succeeded.
func (s *Store) read(ctx context.Context, key string, dst any) bool {
	data, err := s.kv.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return false
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("could not read preferences, starting empty")
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("discarding malformed preferences")
		return false
	}
	return true
}

// AddFavorite appends a snapshot of item. Adding an id twice stores two
// records.
func (s *Store) AddFavorite(ctx context.Context, item media.Item) Favorite {
	fav := Favorite{Item: item, FavoriteType: media.InferKind(item)}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.favorites = append(s.favorites, fav)
	s.persistFavorites(ctx)
	metrics.PreferenceMutations.WithLabelValues("add_favorite").Inc()
	return fav
}

// RemoveFavorite drops every record with id together with its rating.
func (s *Store) RemoveFavorite(ctx context.Context, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]Favorite, 0, len(s.favorites))
	for _, fav := range s.favorites {
		if fav.ID != id {
			kept = append(kept, fav)
		}
	}
	s.favorites = kept
	delete(s.ratings, ratingKey(id))

	s.persistFavorites(ctx)
	s.persistRatings(ctx)
	metrics.PreferenceMutations.WithLabelValues("remove_favorite").Inc()
}

// IsFavorite reports whether any favorite record carries id.
func (s *Store) IsFavorite(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, fav := range s.favorites {
		if fav.ID == id {
			return true
		}
	}
	return false
}

// Favorites returns the favorite records in insertion order.
func (s *Store) Favorites() []Favorite {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Favorite, len(s.favorites))
	copy(out, s.favorites)
	return out
}

// UpdateRating sets the rating for id. Items need not be favorited first.
func (s *Store) UpdateRating(ctx context.Context, id int64, rating float64) error {
	if !ValidRating(rating) {
		return ErrInvalidRating
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ratings[ratingKey(id)] = rating
	s.persistRatings(ctx)
	metrics.PreferenceMutations.WithLabelValues("update_rating").Inc()
	return nil
}

// ClearRating removes the rating for id, if any.
func (s *Store) ClearRating(ctx context.Context, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ratings[ratingKey(id)]; !ok {
		return
	}
	delete(s.ratings, ratingKey(id))
	s.persistRatings(ctx)
	metrics.PreferenceMutations.WithLabelValues("clear_rating").Inc()
}

// Rating returns the stored rating for id, or 0 when unrated.
func (s *Store) Rating(id int64) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.ratings[ratingKey(id)]
}

// Ratings returns a copy of every stored rating keyed by stringified id.
func (s *Store) Ratings() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]float64, len(s.ratings))
	for k, v := range s.ratings {
		out[k] = v
	}
	return out
}

// ValidRating reports whether rating is a half-star step within bounds.
func ValidRating(rating float64) bool {
	if math.IsNaN(rating) || rating < MinRating || rating > MaxRating {
		return false
	}
	doubled := rating * 2
	return doubled == math.Trunc(doubled)
}

func ratingKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// persistFavorites and persistRatings must be called with mu held so that
// writes reach the store in mutation order. An empty collection is stored
// as an absent key.
func (s *Store) persistFavorites(ctx context.Context) {
	s.persist(ctx, FavoritesKey, len(s.favorites), s.favorites)
}

func (s *Store) persistRatings(ctx context.Context) {
	s.persist(ctx, RatingsKey, len(s.ratings), s.ratings)
}

// persist writes even when ctx is already canceled; a mutation reported as
// done must survive a restart.
func (s *Store) persist(ctx context.Context, key string, size int, v any) {
	ctx = context.WithoutCancel(ctx)

	var err error
	if size == 0 {
		err = s.kv.Delete(ctx, key)
	} else {
		var data []byte
		if data, err = json.Marshal(v); err == nil {
			err = s.kv.Set(ctx, key, data)
		}
	}
	if err != nil {
		metrics.PreferencePersistFailures.WithLabelValues(key).Inc()
		s.logger.Error().Err(err).Str("key", key).Msg("failed to persist preferences, keeping in-memory state")
	}
}
