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

type attachmentHandler struct {
	responder       Responder
	logger          zerolog.Logger
	attachedService *services.AttachedPromptService
}

func newAttachmentHandler(attachedService *services.AttachedPromptService) attachmentHandler {
	logger := log.With().Str("handlerName", "attachmentHandler").Logger()

	return attachmentHandler{
		responder:       NewResponder(logger),
		logger:          logger,
		attachedService: attachedService,
	}
}

type attachRequest struct {
	AttachedPromptID uuid.UUID `json:"attached_prompt_id"`
}

type reorderItem struct {
	AttachedPromptID uuid.UUID `json:"attached_prompt_id"`
	Order            *int      `json:"order"`
}

// getAttached lists a prompt's attachments in display order
// @Summary Get attached prompts
// @Tags Attachments
// @Produce json
// @Param promptID path string true "Main prompt ID" format(uuid)
// @Success 200 {array} models.AttachedPrompt
// @Router /prompts/{promptID}/attached [get]
func (h attachmentHandler) getAttached() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		promptID, err := pathUUID(r, "promptID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		edges, err := h.attachedService.GetAttached(promptID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if edges == nil {
			edges = []models.AttachedPrompt{}
		}

		h.responder.WriteJSON(w, edges)
	}
}

// attach adds a prompt to the end of another prompt's attachment list
// @Summary Attach prompt
// @Tags Attachments
// @Accept json
// @Produce json
// @Param promptID path string true "Main prompt ID" format(uuid)
// @Success 201 {object} models.AttachedPrompt
// @Failure 400 {object} ErrorResponse "Self-attachment, cycle, or degree limit"
// @Failure 409 {object} ErrorResponse "Already attached"
// @Router /prompts/{promptID}/attach [post]
func (h attachmentHandler) attach() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		promptID, err := pathUUID(r, "promptID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req attachRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.Malformed("attach request"))
			return
		}
		if req.AttachedPromptID == uuid.Nil {
			h.responder.WriteValidationError(w, "attached_prompt_id", "attached_prompt_id is required")
			return
		}

		edge, err := h.attachedService.Attach(promptID, req.AttachedPromptID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, edge)
	}
}

// validateAttachment dry-runs the attach rules for pre-flight UI checks
func (h attachmentHandler) validateAttachment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		promptID, err := pathUUID(r, "promptID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req attachRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.Malformed("attach request"))
			return
		}

		validation, err := h.attachedService.ValidateAttachment(promptID, req.AttachedPromptID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, validation)
	}
}

// detach removes an attachment; detaching a missing pair is not an error
func (h attachmentHandler) detach() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		promptID, err := pathUUID(r, "promptID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		attachedID, err := pathUUID(r, "attachedID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		removed, err := h.attachedService.Detach(promptID, attachedID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, map[string]any{"removed": removed})
	}
}

// reorder applies new display positions to a prompt's attachments
func (h attachmentHandler) reorder() http.HandlerFunc {
	type reorderRequest struct {
		OrderData []reorderItem `json:"order_data"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		promptID, err := pathUUID(r, "promptID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req reorderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.Malformed("reorder request"))
			return
		}
		if len(req.OrderData) == 0 {
			h.responder.WriteValidationError(w, "order_data", "order_data must not be empty")
			return
		}

		positions := make(map[uuid.UUID]int, len(req.OrderData))
		for _, item := range req.OrderData {
			if item.AttachedPromptID == uuid.Nil || item.Order == nil {
				h.responder.WriteValidationError(w, "order_data", "each entry must contain attached_prompt_id and order")
				return
			}
			positions[item.AttachedPromptID] = *item.Order
		}

		if err := h.attachedService.Reorder(promptID, positions); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, map[string]string{"status": "reordered"})
	}
}

// incrementUsage bumps the usage counter for an attachment pairing
func (h attachmentHandler) incrementUsage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		promptID, err := pathUUID(r, "promptID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		attachedID, err := pathUUID(r, "attachedID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.attachedService.IncrementUsage(promptID, attachedID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, map[string]string{"status": "recorded"})
	}
}

// getAvailable lists prompts still attachable to the main prompt
func (h attachmentHandler) getAvailable() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		promptID, err := pathUUID(r, "promptID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var excludeIDs []uuid.UUID
		for _, raw := range splitQueryList(r.URL.Query().Get("exclude")) {
			id, err := uuid.Parse(raw)
			if err != nil {
				h.responder.WriteValidationError(w, "exclude", "exclude must be a comma-separated list of ids")
				return
			}
			excludeIDs = append(excludeIDs, id)
		}

		prompts, err := h.attachedService.GetAvailableForAttachment(promptID, excludeIDs)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if prompts == nil {
			prompts = []models.Prompt{}
		}

		h.responder.WriteJSON(w, prompts)
	}
}

// getPopularCombinations ranks attachment pairings by usage
func (h attachmentHandler) getPopularCombinations() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := queryInt(r, "limit", 10)
		combinations, err := h.attachedService.PopularCombinations(limit)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, map[string]any{
			"combinations": combinations,
			"total":        len(combinations),
		})
	}
}
