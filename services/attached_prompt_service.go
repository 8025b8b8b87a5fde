package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/elimS2/prompt-manager/database"
	"github.com/elimS2/prompt-manager/errs"
	"github.com/elimS2/prompt-manager/models"
)

// MaxAttachedPrompts is the out-degree limit per main prompt.
const MaxAttachedPrompts = 10

// AttachmentValidation is the dry-run counterpart of Attach: it reports every
// rule the pair would violate without creating the edge.
type AttachmentValidation struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// AttachedPromptService manages the directed attachment graph between
// prompts: which prompts hang off which, in what order, and how often each
// pairing gets used.
type AttachedPromptService struct {
	attachedRepo *database.AttachedPromptRepo
	promptRepo   *database.PromptRepo
	logger       zerolog.Logger
}

func NewAttachedPromptService(attachedRepo *database.AttachedPromptRepo, promptRepo *database.PromptRepo) *AttachedPromptService {
	return &AttachedPromptService{
		attachedRepo: attachedRepo,
		promptRepo:   promptRepo,
		logger:       log.With().Str("serviceName", "attachedPromptService").Logger(),
	}
}

// Attach creates an edge from mainID to attachedID at the end of the main
// prompt's attachment list. Both prompts must exist and be active; the pair
// must not be a self-reference, a duplicate, a cycle, or push the main prompt
// past the out-degree limit.
func (s *AttachedPromptService) Attach(mainID, attachedID uuid.UUID) (*models.AttachedPrompt, error) {
	if err := s.checkAttachment(mainID, attachedID); err != nil {
		return nil, err
	}

	maxPos, err := s.attachedRepo.MaxPosition(mainID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "attached prompts", err)
	}

	edge := &models.AttachedPrompt{
		MainPromptID:     mainID,
		AttachedPromptID: attachedID,
		Position:         maxPos + 1,
	}
	if err := s.attachedRepo.Add(edge); err != nil {
		return nil, errs.NewDatabaseError("create", "attached prompt", err)
	}

	s.logger.Info().
		Str("mainPromptId", mainID.String()).
		Str("attachedPromptId", attachedID.String()).
		Int("position", edge.Position).
		Msg("Attached prompt")

	return edge, nil
}

// Detach removes the edge for the ordered pair. Detaching a pair that is not
// attached is not an error.
func (s *AttachedPromptService) Detach(mainID, attachedID uuid.UUID) (bool, error) {
	removed, err := s.attachedRepo.Delete(mainID, attachedID)
	if err != nil {
		return false, errs.NewDatabaseError("delete", "attached prompt", err)
	}
	if removed {
		s.logger.Info().
			Str("mainPromptId", mainID.String()).
			Str("attachedPromptId", attachedID.String()).
			Msg("Detached prompt")
	}
	return removed, nil
}

// GetAttached returns the main prompt's edges ordered by position, each with
// its attached prompt loaded.
func (s *AttachedPromptService) GetAttached(mainID uuid.UUID) ([]models.AttachedPrompt, error) {
	edges, err := s.attachedRepo.FindByMain(mainID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "attached prompts", err)
	}
	return edges, nil
}

// Reorder applies an attached-id -> position map to the main prompt's edges
// in one transaction. Pairs that reference prompts not currently attached are
// skipped rather than rejected.
func (s *AttachedPromptService) Reorder(mainID uuid.UUID, positions map[uuid.UUID]int) error {
	main, err := s.promptRepo.FindByID(mainID)
	if err != nil {
		return errs.NewDatabaseError("find", "prompt", err)
	}
	if main == nil {
		return errs.NewNotFoundError(fmt.Sprintf("prompt %s not found", mainID))
	}

	if err := s.attachedRepo.Reorder(mainID, positions); err != nil {
		return errs.NewDatabaseError("update", "attached prompts", err)
	}

	s.logger.Info().
		Str("mainPromptId", mainID.String()).
		Int("edgeCount", len(positions)).
		Msg("Reordered attached prompts")
	return nil
}

// IncrementUsage bumps the usage counter of an existing edge.
func (s *AttachedPromptService) IncrementUsage(mainID, attachedID uuid.UUID) error {
	bumped, err := s.attachedRepo.IncrementUsage(mainID, attachedID)
	if err != nil {
		return errs.NewDatabaseError("update", "attached prompt", err)
	}
	if !bumped {
		return errs.NewNotFoundError(fmt.Sprintf("prompt %s is not attached to prompt %s", attachedID, mainID))
	}
	return nil
}

// GetAvailableForAttachment lists active prompts that could still be attached
// to mainID, minus any extra exclusions the caller supplies.
func (s *AttachedPromptService) GetAvailableForAttachment(mainID uuid.UUID, excludeIDs []uuid.UUID) ([]models.Prompt, error) {
	main, err := s.promptRepo.FindByID(mainID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "prompt", err)
	}
	if main == nil {
		return nil, errs.NewNotFoundError(fmt.Sprintf("prompt %s not found", mainID))
	}

	prompts, err := s.promptRepo.AvailableForAttachment(mainID, excludeIDs)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "prompts", err)
	}
	return prompts, nil
}

// PopularCombinations ranks edges by usage count, most used first.
func (s *AttachedPromptService) PopularCombinations(limit int) ([]database.PopularCombination, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.attachedRepo.PopularCombinations(limit)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "attached prompts", err)
	}
	return rows, nil
}

// ValidateAttachment runs the attachment preconditions without creating the
// edge, collecting every violated rule instead of stopping at the first.
func (s *AttachedPromptService) ValidateAttachment(mainID, attachedID uuid.UUID) (*AttachmentValidation, error) {
	v := &AttachmentValidation{Errors: []string{}}

	if mainID == attachedID {
		v.Errors = append(v.Errors, errs.ErrSelfAttachment.Error())
	}

	main, err := s.promptRepo.FindByID(mainID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "prompt", err)
	}
	if main == nil {
		v.Errors = append(v.Errors, fmt.Sprintf("prompt %s not found", mainID))
	} else if !main.IsActive {
		v.Errors = append(v.Errors, fmt.Sprintf("prompt %s is not active", mainID))
	}

	attached, err := s.promptRepo.FindByID(attachedID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "prompt", err)
	}
	if attached == nil {
		v.Errors = append(v.Errors, fmt.Sprintf("prompt %s not found", attachedID))
	} else if !attached.IsActive {
		v.Errors = append(v.Errors, fmt.Sprintf("prompt %s is not active", attachedID))
	}

	if main != nil && attached != nil && mainID != attachedID {
		exists, err := s.attachedRepo.Exists(mainID, attachedID)
		if err != nil {
			return nil, errs.NewDatabaseError("find", "attached prompt", err)
		}
		if exists {
			v.Errors = append(v.Errors, errs.ErrDuplicateAttachment.Error())
		}

		cyclic, err := s.wouldCreateCycle(mainID, attachedID)
		if err != nil {
			return nil, err
		}
		if cyclic {
			v.Errors = append(v.Errors, errs.ErrCircularAttachment.Error())
		}

		count, err := s.attachedRepo.Count(mainID)
		if err != nil {
			return nil, errs.NewDatabaseError("find", "attached prompts", err)
		}
		if count >= MaxAttachedPrompts {
			v.Errors = append(v.Errors, errs.ErrAttachmentLimit.Error())
		}
	}

	v.Valid = len(v.Errors) == 0
	return v, nil
}

// checkAttachment enforces the attachment rules, failing on the first
// violation. Order matters: existence and activity before relational checks.
func (s *AttachedPromptService) checkAttachment(mainID, attachedID uuid.UUID) error {
	if mainID == attachedID {
		return errs.NewSelfAttachmentError()
	}

	main, err := s.promptRepo.FindByID(mainID)
	if err != nil {
		return errs.NewDatabaseError("find", "prompt", err)
	}
	if main == nil {
		return errs.NewNotFoundError(fmt.Sprintf("prompt %s not found", mainID))
	}
	if !main.IsActive {
		return errs.NewInactivePromptError(mainID.String())
	}

	attached, err := s.promptRepo.FindByID(attachedID)
	if err != nil {
		return errs.NewDatabaseError("find", "prompt", err)
	}
	if attached == nil {
		return errs.NewNotFoundError(fmt.Sprintf("prompt %s not found", attachedID))
	}
	if !attached.IsActive {
		return errs.NewInactivePromptError(attachedID.String())
	}

	exists, err := s.attachedRepo.Exists(mainID, attachedID)
	if err != nil {
		return errs.NewDatabaseError("find", "attached prompt", err)
	}
	if exists {
		return errs.NewDuplicateAttachmentError(mainID.String(), attachedID.String())
	}

	cyclic, err := s.wouldCreateCycle(mainID, attachedID)
	if err != nil {
		return err
	}
	if cyclic {
		return errs.NewCircularAttachmentError()
	}

	count, err := s.attachedRepo.Count(mainID)
	if err != nil {
		return errs.NewDatabaseError("find", "attached prompts", err)
	}
	if count >= MaxAttachedPrompts {
		return errs.NewAttachmentLimitError(MaxAttachedPrompts)
	}

	return nil
}

// wouldCreateCycle reports whether adding main -> attached would close a
// loop, i.e. whether the attached prompt can already reach the main prompt
// through existing edges. It walks upward from the main prompt: at each node
// it follows every edge where that node is the attached endpoint, moving to
// the main endpoint. Reaching attachedID means attachedID is an ancestor of
// mainID, so the new edge would close the loop.
func (s *AttachedPromptService) wouldCreateCycle(mainID, attachedID uuid.UUID) (bool, error) {
	visited := map[uuid.UUID]bool{}
	stack := []uuid.UUID{mainID}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if current == attachedID {
			return true, nil
		}
		if visited[current] {
			continue
		}
		visited[current] = true

		edges, err := s.attachedRepo.FindByAttached(current)
		if err != nil {
			return false, errs.NewDatabaseError("find", "attached prompts", err)
		}
		for _, edge := range edges {
			stack = append(stack, edge.MainPromptID)
		}
	}

	return false, nil
}
