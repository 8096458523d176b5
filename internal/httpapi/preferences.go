package httpapi

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"reelhound/internal/app/preferences"
	"reelhound/internal/media"
	"reelhound/internal/validation"
)

type favoriteResponse struct {
	preferences.Favorite
	ImageURL string
	Rating   float64
}

func (r favoriteResponse) MarshalJSON() ([]byte, error) {
	return media.MarshalWith(r.Item, struct {
		FavoriteType media.Kind `json:"favoriteType"`
		ImageURL     string     `json:"image_url"`
		Rating       float64    `json:"rating,omitempty"`
	}{r.FavoriteType, r.ImageURL, r.Rating})
}

// addFavoriteRequest holds the fields of a posted item that are checked
// before it is stored; the full body is kept as the snapshot.
type addFavoriteRequest struct {
	ID        int64  `json:"id" validate:"required,min=1"`
	MediaType string `json:"media_type" validate:"omitempty,oneof=movie tv person"`
}

type ratingRequest struct {
	Rating float64 `json:"rating" validate:"halfstar"`
}

type ratingResponse struct {
	ID     int64   `json:"id"`
	Rating float64 `json:"rating"`
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	favorites := s.preferences.Favorites()

	out := make([]favoriteResponse, len(favorites))
	for i, fav := range favorites {
		out[i] = s.favoriteResponse(fav)
	}

	writeJSON(w, http.StatusOK, struct {
		Favorites []favoriteResponse `json:"favorites"`
	}{Favorites: out})
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "could not read request body"})
		return
	}

	var req addFavoriteRequest
	var item media.Item
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := validation.Struct(&req); err != nil {
		writeValidationError(w, err)
		return
	}
	if err := json.Unmarshal(body, &item); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	fav := s.preferences.AddFavorite(r.Context(), item)
	logger := s.requestLogger(r)
	logger.Debug().
		Int64("id", fav.ID).
		Str("favorite_type", string(fav.FavoriteType)).
		Msg("favorite added")

	writeJSON(w, http.StatusCreated, s.favoriteResponse(fav))
}

func (s *Server) handleCheckFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"favorite": s.preferences.IsFavorite(id)})
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	s.preferences.RemoveFavorite(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetRating(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, ratingResponse{ID: id, Rating: s.preferences.Rating(id)})
}

func (s *Server) handleUpdateRating(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	body, err := readBody(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "could not read request body"})
		return
	}
	var req ratingRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := validation.Struct(&req); err != nil {
		writeValidationError(w, err)
		return
	}

	if err := s.preferences.UpdateRating(r.Context(), id, req.Rating); err != nil {
		if errors.Is(err, preferences.ErrInvalidRating) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, ratingResponse{ID: id, Rating: req.Rating})
}

func (s *Server) handleClearRating(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	s.preferences.ClearRating(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) favoriteResponse(fav preferences.Favorite) favoriteResponse {
	return favoriteResponse{
		Favorite: fav,
		ImageURL: media.ImageURL(fav.Item),
		Rating:   s.preferences.Rating(fav.ID),
	}
}
