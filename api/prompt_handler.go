package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/elimS2/prompt-manager/database"
	"github.com/elimS2/prompt-manager/errs"
	"github.com/elimS2/prompt-manager/models"
	"github.com/elimS2/prompt-manager/services"
)

type promptHandler struct {
	responder     Responder
	logger        zerolog.Logger
	promptService *services.PromptService
}

func newPromptHandler(promptService *services.PromptService) promptHandler {
	logger := log.With().Str("handlerName", "promptHandler").Logger()

	return promptHandler{
		responder:     NewResponder(logger),
		logger:        logger,
		promptService: promptService,
	}
}

// PromptCollection represents a paginated list of prompts
type PromptCollection struct {
	Prompts []models.Prompt `json:"prompts"`
	Total   int64           `json:"total"`
}

type createPromptRequest struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Description string   `json:"description"`
	IsActive    *bool    `json:"is_active"`
	Tags        []string `json:"tags"`
}

type updatePromptRequest struct {
	Title       *string   `json:"title"`
	Content     *string   `json:"content"`
	Description *string   `json:"description"`
	IsActive    *bool     `json:"is_active"`
	Tags        *[]string `json:"tags"`
}

// getAllPrompts lists prompts with filtering, sorting, and pagination
// @Summary List prompts
// @Tags Prompts
// @Produce json
// @Success 200 {object} PromptCollection "Prompts matching the filters"
// @Router /prompts [get]
func (h promptHandler) getAllPrompts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters := database.PromptFilters{
			Search:          r.URL.Query().Get("search"),
			TagNames:        splitQueryList(r.URL.Query().Get("tags")),
			TagMatchAll:     r.URL.Query().Get("match_all") == "true",
			IncludeInactive: r.URL.Query().Get("include_inactive") == "true",
			SortBy:          r.URL.Query().Get("sort_by"),
			SortDesc:        r.URL.Query().Get("sort_desc") == "true",
			Page:            queryInt(r, "page", 0),
			PerPage:         queryInt(r, "per_page", 0),
		}

		prompts, total, err := h.promptService.ListPrompts(filters)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if prompts == nil {
			prompts = []models.Prompt{}
		}

		h.responder.WriteJSON(w, PromptCollection{Prompts: prompts, Total: total})
	}
}

// getPrompt returns a single prompt by ID
// @Summary Get prompt
// @Tags Prompts
// @Produce json
// @Param promptID path string true "Prompt ID" format(uuid)
// @Success 200 {object} models.Prompt
// @Failure 404 {object} ErrorResponse "Prompt not found"
// @Router /prompts/{promptID} [get]
func (h promptHandler) getPrompt() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		promptID, err := pathUUID(r, "promptID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		prompt, err := h.promptService.GetPrompt(promptID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, prompt)
	}
}

// createPrompt stores a new prompt
// @Summary Create prompt
// @Tags Prompts
// @Accept json
// @Produce json
// @Success 201 {object} models.Prompt
// @Failure 400 {object} ErrorResponse "Validation failure"
// @Router /prompts [post]
func (h promptHandler) createPrompt() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPromptRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.Malformed("prompt"))
			return
		}

		prompt, err := h.promptService.CreatePrompt(services.CreatePromptInput{
			Title:       req.Title,
			Content:     req.Content,
			Description: req.Description,
			IsActive:    req.IsActive,
			Tags:        req.Tags,
			UserID:      userIDFromCtx(r),
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, prompt)
	}
}

// updatePrompt applies a partial update to a prompt
// @Summary Update prompt
// @Tags Prompts
// @Accept json
// @Produce json
// @Param promptID path string true "Prompt ID" format(uuid)
// @Success 200 {object} models.Prompt
// @Failure 404 {object} ErrorResponse "Prompt not found"
// @Router /prompts/{promptID} [put]
func (h promptHandler) updatePrompt() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		promptID, err := pathUUID(r, "promptID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req updatePromptRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.Malformed("prompt"))
			return
		}

		prompt, err := h.promptService.UpdatePrompt(promptID, services.UpdatePromptInput{
			Title:       req.Title,
			Content:     req.Content,
			Description: req.Description,
			IsActive:    req.IsActive,
			Tags:        req.Tags,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, prompt)
	}
}

// deletePrompt soft-deletes a prompt; ?hard=true removes the row entirely
// @Summary Delete prompt
// @Tags Prompts
// @Param promptID path string true "Prompt ID" format(uuid)
// @Success 200 {object} map[string]string
// @Failure 404 {object} ErrorResponse "Prompt not found"
// @Router /prompts/{promptID} [delete]
func (h promptHandler) deletePrompt() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		promptID, err := pathUUID(r, "promptID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		hard := r.URL.Query().Get("hard") == "true"
		if err := h.promptService.DeletePrompt(promptID, hard); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, map[string]string{"status": "deleted"})
	}
}

// restorePrompt reactivates a soft-deleted prompt
func (h promptHandler) restorePrompt() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		promptID, err := pathUUID(r, "promptID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.promptService.RestorePrompt(promptID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, map[string]string{"status": "restored"})
	}
}

// duplicatePrompt copies a prompt with its description and tags
func (h promptHandler) duplicatePrompt() http.HandlerFunc {
	type duplicateRequest struct {
		Title string `json:"title"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		promptID, err := pathUUID(r, "promptID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req duplicateRequest
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				h.responder.WriteError(w, errs.Malformed("duplicate request"))
				return
			}
		}

		copy, err := h.promptService.DuplicatePrompt(promptID, req.Title)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, copy)
	}
}

// searchPrompts matches the query against title, content, and description
func (h promptHandler) searchPrompts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		if strings.TrimSpace(query) == "" {
			h.responder.WriteValidationError(w, "q", "search query is required")
			return
		}

		includeInactive := r.URL.Query().Get("include_inactive") == "true"
		prompts, err := h.promptService.SearchPrompts(query, includeInactive)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if prompts == nil {
			prompts = []models.Prompt{}
		}

		h.responder.WriteJSON(w, PromptCollection{Prompts: prompts, Total: int64(len(prompts))})
	}
}

// getPromptsByTags lists active prompts carrying the given tags; ?match_all=true
// narrows to prompts carrying every tag
func (h promptHandler) getPromptsByTags() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var tagIDs []uuid.UUID
		for _, raw := range splitQueryList(r.URL.Query().Get("tag_ids")) {
			id, err := uuid.Parse(raw)
			if err != nil {
				h.responder.WriteValidationError(w, "tag_ids", "tag_ids must be a comma-separated list of ids")
				return
			}
			tagIDs = append(tagIDs, id)
		}
		if len(tagIDs) == 0 {
			h.responder.WriteValidationError(w, "tag_ids", "tag_ids is required")
			return
		}

		matchAll := r.URL.Query().Get("match_all") == "true"
		prompts, err := h.promptService.GetPromptsByTags(tagIDs, matchAll)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if prompts == nil {
			prompts = []models.Prompt{}
		}

		h.responder.WriteJSON(w, PromptCollection{Prompts: prompts, Total: int64(len(prompts))})
	}
}

// getRecentPrompts returns the newest active prompts
func (h promptHandler) getRecentPrompts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := queryInt(r, "limit", 10)
		prompts, err := h.promptService.GetRecentPrompts(limit)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if prompts == nil {
			prompts = []models.Prompt{}
		}

		h.responder.WriteJSON(w, PromptCollection{Prompts: prompts, Total: int64(len(prompts))})
	}
}

// bulkReorder assigns manual order by the position of each id in the payload
func (h promptHandler) bulkReorder() http.HandlerFunc {
	type reorderRequest struct {
		PromptIDs []uuid.UUID `json:"prompt_ids"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req reorderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.Malformed("reorder request"))
			return
		}

		if err := h.promptService.BulkReorder(req.PromptIDs); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, map[string]string{"status": "reordered"})
	}
}

// getStatistics summarizes the prompt store
func (h promptHandler) getStatistics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := h.promptService.GetStatistics()
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, stats)
	}
}

// pathUUID parses a UUID path parameter or returns a bad-request error.
func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	if raw == "" {
		return uuid.Nil, errs.NewBadRequestError("missing " + param)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errs.NewBadRequestError("invalid " + param)
	}
	return id, nil
}

// queryInt parses an integer query parameter, falling back on absence or junk.
func queryInt(r *http.Request, param string, fallback int) int {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

// splitQueryList splits a comma-separated query value, dropping empties.
func splitQueryList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// userIDFromCtx returns the authenticated user's id, or nil outside an
// authenticated route.
func userIDFromCtx(r *http.Request) *uuid.UUID {
	user, err := ctxGetUser(r.Context())
	if err != nil {
		return nil
	}
	id := user.ID
	return &id
}
