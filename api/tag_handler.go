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

type tagHandler struct {
	responder  Responder
	logger     zerolog.Logger
	tagService *services.TagService
}

func newTagHandler(tagService *services.TagService) tagHandler {
	logger := log.With().Str("handlerName", "tagHandler").Logger()

	return tagHandler{
		responder:  NewResponder(logger),
		logger:     logger,
		tagService: tagService,
	}
}

type tagRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

// getAllTags lists every tag ordered by name
func (h tagHandler) getAllTags() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags, err := h.tagService.ListTags()
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if tags == nil {
			tags = []models.Tag{}
		}

		h.responder.WriteJSON(w, tags)
	}
}

// getTag returns a single tag by ID
func (h tagHandler) getTag() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tagID, err := pathUUID(r, "tagID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		tag, err := h.tagService.GetTag(tagID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, tag)
	}
}

// createTag stores a new tag with a normalized name
// @Summary Create tag
// @Tags Tags
// @Accept json
// @Produce json
// @Success 201 {object} models.Tag
// @Failure 400 {object} ErrorResponse "Empty name or bad color"
// @Failure 409 {object} ErrorResponse "Name already taken"
// @Router /tags [post]
func (h tagHandler) createTag() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tagRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.Malformed("tag"))
			return
		}
		if req.Name == nil {
			h.responder.WriteValidationError(w, "name", "name is required")
			return
		}

		color := ""
		if req.Color != nil {
			color = *req.Color
		}

		tag, err := h.tagService.CreateTag(*req.Name, color)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, tag)
	}
}

// updateTag renames and/or recolors a tag
func (h tagHandler) updateTag() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tagID, err := pathUUID(r, "tagID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req tagRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.Malformed("tag"))
			return
		}

		tag, err := h.tagService.UpdateTag(tagID, req.Name, req.Color)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, tag)
	}
}

// deleteTag removes a tag; ?reassign_to moves its prompts to another tag
func (h tagHandler) deleteTag() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tagID, err := pathUUID(r, "tagID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var reassignTo *uuid.UUID
		if raw := r.URL.Query().Get("reassign_to"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				h.responder.WriteValidationError(w, "reassign_to", "reassign_to must be a tag id")
				return
			}
			reassignTo = &id
		}

		if err := h.tagService.DeleteTag(tagID, reassignTo); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, map[string]string{"status": "deleted"})
	}
}

// mergeTags folds one tag into another
func (h tagHandler) mergeTags() http.HandlerFunc {
	type mergeTagsRequest struct {
		SourceID uuid.UUID `json:"source_id"`
		TargetID uuid.UUID `json:"target_id"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req mergeTagsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.Malformed("tag merge request"))
			return
		}
		if req.SourceID == uuid.Nil || req.TargetID == uuid.Nil {
			h.responder.WriteValidationError(w, "source_id", "source_id and target_id are required")
			return
		}

		target, err := h.tagService.MergeTags(req.SourceID, req.TargetID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, target)
	}
}

// getPopularTags ranks tags by prompt count
func (h tagHandler) getPopularTags() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := queryInt(r, "limit", 10)
		usages, err := h.tagService.PopularTags(limit)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, usages)
	}
}

// searchTags matches tags by name substring
func (h tagHandler) searchTags() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		if query == "" {
			h.responder.WriteValidationError(w, "q", "search query is required")
			return
		}

		tags, err := h.tagService.SearchTags(query)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if tags == nil {
			tags = []models.Tag{}
		}

		h.responder.WriteJSON(w, tags)
	}
}

// cleanupUnusedTags deletes tags with no prompt associations
func (h tagHandler) cleanupUnusedTags() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		removed, err := h.tagService.CleanupUnusedTags()
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, map[string]int{"removed": removed})
	}
}

// getStatistics summarizes the tag store
func (h tagHandler) getStatistics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := h.tagService.GetStatistics()
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, stats)
	}
}
