package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/elimS2/prompt-manager/database"
	"github.com/elimS2/prompt-manager/errs"
	"github.com/elimS2/prompt-manager/models"
)

// CreatePromptInput carries the fields accepted when creating a prompt. Tags
// are raw names; they get normalized and created on demand.
type CreatePromptInput struct {
	Title       string
	Content     string
	Description string
	IsActive    *bool
	Tags        []string
	UserID      *uuid.UUID
}

// UpdatePromptInput carries a partial update. Nil pointers leave the field
// untouched; a non-nil Tags slice replaces the full tag set.
type UpdatePromptInput struct {
	Title       *string
	Content     *string
	Description *string
	IsActive    *bool
	Tags        *[]string
}

// PromptStatistics summarizes the store for dashboards.
type PromptStatistics struct {
	TotalPrompts    int64           `json:"total_prompts"`
	ActivePrompts   int64           `json:"active_prompts"`
	InactivePrompts int64           `json:"inactive_prompts"`
	RecentPrompts   []models.Prompt `json:"recent_prompts"`
}

// PromptService owns the prompt lifecycle: creation, partial updates, soft
// and hard deletion, duplication, search, and manual ordering.
type PromptService struct {
	promptRepo *database.PromptRepo
	tagRepo    *database.TagRepo
	logger     zerolog.Logger
}

func NewPromptService(promptRepo *database.PromptRepo, tagRepo *database.TagRepo) *PromptService {
	return &PromptService{
		promptRepo: promptRepo,
		tagRepo:    tagRepo,
		logger:     log.With().Str("serviceName", "promptService").Logger(),
	}
}

// CreatePrompt validates and stores a new prompt, resolving tag names to tag
// rows as needed.
func (s *PromptService) CreatePrompt(input CreatePromptInput) (*models.Prompt, error) {
	prompt := &models.Prompt{
		Title:       strings.TrimSpace(input.Title),
		Content:     strings.TrimSpace(input.Content),
		Description: strings.TrimSpace(input.Description),
		IsActive:    true,
		UserID:      input.UserID,
	}
	if input.IsActive != nil {
		prompt.IsActive = *input.IsActive
	}

	if problems := prompt.Validate(); len(problems) > 0 {
		return nil, errs.BadRequest(strings.Join(problems, "; "))
	}

	tags, err := s.resolveTags(input.Tags)
	if err != nil {
		return nil, err
	}
	prompt.Tags = tags

	if err := s.promptRepo.Add(prompt); err != nil {
		return nil, errs.NewDatabaseError("create", "prompt", err)
	}

	s.logger.Info().Str("promptId", prompt.ID.String()).Msg("Created prompt")
	return prompt, nil
}

// UpdatePrompt applies a partial update. Provided title/content must survive
// the same validation as creation.
func (s *PromptService) UpdatePrompt(id uuid.UUID, input UpdatePromptInput) (*models.Prompt, error) {
	prompt, err := s.promptRepo.FindByID(id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "prompt", err)
	}
	if prompt == nil {
		return nil, errs.NewNotFoundError(fmt.Sprintf("prompt %s not found", id))
	}

	fields := map[string]any{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, errs.BadRequest("title cannot be empty")
		}
		if len(title) > 255 {
			return nil, errs.BadRequest("title must be at most 255 characters")
		}
		fields["title"] = title
	}
	if input.Content != nil {
		content := strings.TrimSpace(*input.Content)
		if content == "" {
			return nil, errs.BadRequest("content cannot be empty")
		}
		fields["content"] = content
	}
	if input.Description != nil {
		fields["description"] = strings.TrimSpace(*input.Description)
	}
	if input.IsActive != nil {
		fields["is_active"] = *input.IsActive
	}

	if len(fields) > 0 {
		if err := s.promptRepo.UpdateFields(id, fields); err != nil {
			return nil, errs.NewDatabaseError("update", "prompt", err)
		}
	}

	if input.Tags != nil {
		tags, err := s.resolveTags(*input.Tags)
		if err != nil {
			return nil, err
		}
		if err := s.promptRepo.ReplaceTags(prompt, tags); err != nil {
			return nil, errs.NewDatabaseError("update", "prompt tags", err)
		}
	}

	updated, err := s.promptRepo.FindByID(id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "prompt", err)
	}

	s.logger.Info().Str("promptId", id.String()).Msg("Updated prompt")
	return updated, nil
}

// GetPrompt returns a prompt by id or a not-found error.
func (s *PromptService) GetPrompt(id uuid.UUID) (*models.Prompt, error) {
	prompt, err := s.promptRepo.FindByID(id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "prompt", err)
	}
	if prompt == nil {
		return nil, errs.NewNotFoundError(fmt.Sprintf("prompt %s not found", id))
	}
	return prompt, nil
}

// ListPrompts applies filter, sort, and pagination criteria. The second
// return value is the total match count before pagination.
func (s *PromptService) ListPrompts(filters database.PromptFilters) ([]models.Prompt, int64, error) {
	if len(filters.TagNames) > 0 {
		ids, err := s.tagIDsForNames(filters.TagNames)
		if err != nil {
			return nil, 0, err
		}
		filters.TagIDs = append(filters.TagIDs, ids...)
	}

	prompts, total, err := s.promptRepo.FindWithFilters(filters)
	if err != nil {
		return nil, 0, errs.NewDatabaseError("find", "prompts", err)
	}
	return prompts, total, nil
}

// GetPromptsByTags returns active prompts carrying any of the given tags, or
// all of them when matchAll is set.
func (s *PromptService) GetPromptsByTags(tagIDs []uuid.UUID, matchAll bool) ([]models.Prompt, error) {
	if len(tagIDs) == 0 {
		return nil, errs.BadRequest("tag_ids must not be empty")
	}

	prompts, err := s.promptRepo.FindByTagIDs(tagIDs, matchAll)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "prompts", err)
	}
	return prompts, nil
}

// SearchPrompts matches the query against title, content, and description.
func (s *PromptService) SearchPrompts(query string, includeInactive bool) ([]models.Prompt, error) {
	prompts, err := s.promptRepo.Search(query, includeInactive)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "prompts", err)
	}
	return prompts, nil
}

// GetRecentPrompts returns the newest active prompts.
func (s *PromptService) GetRecentPrompts(limit int) ([]models.Prompt, error) {
	if limit <= 0 {
		limit = 10
	}
	prompts, err := s.promptRepo.Recent(limit, false)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "prompts", err)
	}
	return prompts, nil
}

// DeletePrompt soft-deletes by default; hard=true removes the row along with
// its attachment edges and tag associations.
func (s *PromptService) DeletePrompt(id uuid.UUID, hard bool) error {
	var (
		done bool
		err  error
	)
	if hard {
		done, err = s.promptRepo.Remove(id)
	} else {
		done, err = s.promptRepo.MarkInactive(id)
	}
	if err != nil {
		return errs.NewDatabaseError("delete", "prompt", err)
	}
	if !done {
		return errs.NewNotFoundError(fmt.Sprintf("prompt %s not found", id))
	}

	s.logger.Info().Str("promptId", id.String()).Bool("hard", hard).Msg("Deleted prompt")
	return nil
}

// RestorePrompt reactivates a soft-deleted prompt.
func (s *PromptService) RestorePrompt(id uuid.UUID) error {
	done, err := s.promptRepo.Restore(id)
	if err != nil {
		return errs.NewDatabaseError("update", "prompt", err)
	}
	if !done {
		return errs.NewNotFoundError(fmt.Sprintf("prompt %s not found", id))
	}
	return nil
}

// DuplicatePrompt copies a prompt, its description, and its tag set under a
// new title. The copy is always active.
func (s *PromptService) DuplicatePrompt(id uuid.UUID, newTitle string) (*models.Prompt, error) {
	original, err := s.GetPrompt(id)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(newTitle)
	if title == "" {
		title = "Copy of " + original.Title
	}

	tagNames := make([]string, 0, len(original.Tags))
	for _, tag := range original.Tags {
		tagNames = append(tagNames, tag.Name)
	}

	return s.CreatePrompt(CreatePromptInput{
		Title:       title,
		Content:     original.Content,
		Description: original.Description,
		Tags:        tagNames,
		UserID:      original.UserID,
	})
}

// BulkReorder assigns order = index for each id in the supplied sequence.
// Unknown ids are skipped.
func (s *PromptService) BulkReorder(orderedIDs []uuid.UUID) error {
	if len(orderedIDs) == 0 {
		return errs.BadRequest("prompt_ids must not be empty")
	}
	if hasDuplicateIDs(orderedIDs) {
		return errs.NewDuplicatePromptIDsError()
	}

	if err := s.promptRepo.BulkReorder(orderedIDs); err != nil {
		return errs.NewDatabaseError("update", "prompts", err)
	}

	s.logger.Info().Int("promptCount", len(orderedIDs)).Msg("Reordered prompts")
	return nil
}

// GetStatistics summarizes the store.
func (s *PromptService) GetStatistics() (*PromptStatistics, error) {
	total, active, err := s.promptRepo.Count()
	if err != nil {
		return nil, errs.NewDatabaseError("find", "prompts", err)
	}

	recent, err := s.promptRepo.Recent(5, false)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "prompts", err)
	}

	return &PromptStatistics{
		TotalPrompts:    total,
		ActivePrompts:   active,
		InactivePrompts: total - active,
		RecentPrompts:   recent,
	}, nil
}

// resolveTags normalizes tag names and loads or creates the matching rows.
// Names that normalize to nothing are dropped; duplicates collapse.
func (s *PromptService) resolveTags(names []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	seen := map[string]bool{}

	for _, raw := range names {
		name := models.NormalizeTagName(raw)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		tag, err := s.tagRepo.FindByName(name)
		if err != nil {
			return nil, errs.NewDatabaseError("find", "tag", err)
		}
		if tag == nil {
			tag = &models.Tag{Name: name, Color: models.DefaultTagColor}
			if err := s.tagRepo.Add(tag); err != nil {
				return nil, errs.NewDatabaseError("create", "tag", err)
			}
		}
		tags = append(tags, *tag)
	}

	return tags, nil
}

func (s *PromptService) tagIDsForNames(names []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(names))
	for _, raw := range names {
		name := models.NormalizeTagName(raw)
		if name == "" {
			continue
		}
		tag, err := s.tagRepo.FindByName(name)
		if err != nil {
			return nil, errs.NewDatabaseError("find", "tag", err)
		}
		if tag != nil {
			ids = append(ids, tag.ID)
		}
	}
	return ids, nil
}
