package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/elimS2/prompt-manager/errs"
	"github.com/elimS2/prompt-manager/models"
	"github.com/elimS2/prompt-manager/services"
)

type favoriteSetHandler struct {
	responder       Responder
	logger          zerolog.Logger
	favoriteService *services.FavoriteSetService
}

func newFavoriteSetHandler(favoriteService *services.FavoriteSetService) favoriteSetHandler {
	logger := log.With().Str("handlerName", "favoriteSetHandler").Logger()

	return favoriteSetHandler{
		responder:       NewResponder(logger),
		logger:          logger,
		favoriteService: favoriteService,
	}
}

type createFavoriteSetRequest struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	PromptIDs   []uuid.UUID `json:"prompt_ids"`
}

type updateFavoriteSetRequest struct {
	Name        *string      `json:"name"`
	Description *string      `json:"description"`
	IsActive    *bool        `json:"is_active"`
	PromptIDs   *[]uuid.UUID `json:"prompt_ids"`
}

// getAllFavoriteSets lists the caller's favorite sets
func (h favoriteSetHandler) getAllFavoriteSets() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		sets, err := h.favoriteService.ListForUser(user.ID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if sets == nil {
			sets = []models.FavoriteSet{}
		}

		h.responder.WriteJSON(w, sets)
	}
}

// getFavoriteSet returns one of the caller's sets with its ordered items
func (h favoriteSetHandler) getFavoriteSet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		favoriteID, err := pathUUID(r, "favoriteID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		set, err := h.favoriteService.Get(user.ID, favoriteID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, set)
	}
}

// createFavoriteSet stores a new named collection for the caller
func (h favoriteSetHandler) createFavoriteSet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		var req createFavoriteSetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.Malformed("favorite set"))
			return
		}

		set, err := h.favoriteService.Create(user.ID, req.Name, req.Description, req.PromptIDs)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, set)
	}
}

// updateFavoriteSet applies a partial update to one of the caller's sets
func (h favoriteSetHandler) updateFavoriteSet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		favoriteID, err := pathUUID(r, "favoriteID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req updateFavoriteSetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.Malformed("favorite set"))
			return
		}

		set, err := h.favoriteService.Update(user.ID, favoriteID, services.UpdateFavoriteSetInput{
			Name:        req.Name,
			Description: req.Description,
			IsActive:    req.IsActive,
			PromptIDs:   req.PromptIDs,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, set)
	}
}

// deleteFavoriteSet removes one of the caller's sets
func (h favoriteSetHandler) deleteFavoriteSet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		favoriteID, err := pathUUID(r, "favoriteID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.favoriteService.Delete(user.ID, favoriteID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, map[string]string{"status": "deleted"})
	}
}
