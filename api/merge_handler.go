package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/elimS2/prompt-manager/errs"
	"github.com/elimS2/prompt-manager/services"
)

type mergeHandler struct {
	responder    Responder
	logger       zerolog.Logger
	mergeService *services.MergeService
}

func newMergeHandler(mergeService *services.MergeService) mergeHandler {
	logger := log.With().Str("handlerName", "mergeHandler").Logger()

	return mergeHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		mergeService: mergeService,
	}
}

type mergeRequest struct {
	PromptIDs []uuid.UUID           `json:"prompt_ids"`
	Strategy  string                `json:"strategy"`
	Options   services.MergeOptions `json:"options"`
}

// mergePrompts combines prompt contents under the requested strategy. The
// pre-flight validation runs first; its warnings ride along in the success
// response.
// @Summary Merge prompts
// @Tags Merge
// @Accept json
// @Produce json
// @Success 200 {object} services.MergeResult
// @Failure 400 {object} ErrorResponse "Too few ids, duplicates, missing prompts, or unknown strategy"
// @Router /prompts/merge [post]
func (h mergeHandler) mergePrompts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req mergeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.Malformed("merge request"))
			return
		}

		if req.Strategy == "" {
			req.Strategy = services.StrategySimple
		}

		validation, err := h.mergeService.ValidateMerge(req.PromptIDs)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if !validation.Valid {
			h.responder.WriteError(w, errs.BadRequest(strings.Join(validation.Errors, "; ")))
			return
		}

		result, err := h.mergeService.MergePrompts(req.PromptIDs, req.Strategy, req.Options)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		result.Warnings = validation.Warnings

		h.responder.WriteJSON(w, result)
	}
}

// validateMerge runs merge preconditions without composing anything
func (h mergeHandler) validateMerge() http.HandlerFunc {
	type validateRequest struct {
		PromptIDs []uuid.UUID `json:"prompt_ids"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req validateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.Malformed("merge validation request"))
			return
		}

		validation, err := h.mergeService.ValidateMerge(req.PromptIDs)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, validation)
	}
}

// getMergeHistory returns recent merges, newest first
func (h mergeHandler) getMergeHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := queryInt(r, "limit", 20)
		history := h.mergeService.GetMergeHistory(limit)

		h.responder.WriteJSON(w, map[string]any{
			"history": history,
			"total":   len(history),
		})
	}
}
