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

// UpdateFavoriteSetInput carries a partial favorite-set update. A non-nil
// PromptIDs slice replaces the full item list.
type UpdateFavoriteSetInput struct {
	Name        *string
	Description *string
	IsActive    *bool
	PromptIDs   *[]uuid.UUID
}

// FavoriteSetService owns user-scoped named prompt collections. Every
// operation is checked against the owning user; sets of other users behave
// as if they do not exist.
type FavoriteSetService struct {
	favoriteRepo *database.FavoriteSetRepo
	promptRepo   *database.PromptRepo
	logger       zerolog.Logger
}

func NewFavoriteSetService(favoriteRepo *database.FavoriteSetRepo, promptRepo *database.PromptRepo) *FavoriteSetService {
	return &FavoriteSetService{
		favoriteRepo: favoriteRepo,
		promptRepo:   promptRepo,
		logger:       log.With().Str("serviceName", "favoriteSetService").Logger(),
	}
}

// ListForUser returns all of the user's sets, items included.
func (s *FavoriteSetService) ListForUser(userID uuid.UUID) ([]models.FavoriteSet, error) {
	sets, err := s.favoriteRepo.FindByUser(userID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "favorite sets", err)
	}
	return sets, nil
}

// Get returns one of the user's sets with its ordered items.
func (s *FavoriteSetService) Get(userID, setID uuid.UUID) (*models.FavoriteSet, error) {
	return s.requireOwned(userID, setID)
}

// Create stores a new set for the user. The name must be non-empty, at most
// 150 characters, and unique among the user's sets; prompt ids are deduped in
// order and unknown ids dropped.
func (s *FavoriteSetService) Create(userID uuid.UUID, name, description string, promptIDs []uuid.UUID) (*models.FavoriteSet, error) {
	name = strings.TrimSpace(name)
	if err := s.validateName(userID, name, uuid.Nil); err != nil {
		return nil, err
	}

	normalized, err := s.normalizePromptIDs(promptIDs)
	if err != nil {
		return nil, err
	}

	set := &models.FavoriteSet{
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(description),
		IsActive:    true,
	}
	for i, pid := range normalized {
		set.Items = append(set.Items, models.FavoriteSetItem{PromptID: pid, Position: i})
	}

	if err := s.favoriteRepo.Add(set); err != nil {
		return nil, errs.NewDatabaseError("create", "favorite set", err)
	}

	s.logger.Info().
		Str("favoriteSetId", set.ID.String()).
		Str("userId", userID.String()).
		Msg("Created favorite set")

	return s.favoriteRepo.FindWithItems(set.ID, userID)
}

// Update applies a partial update to one of the user's sets.
func (s *FavoriteSetService) Update(userID, setID uuid.UUID, input UpdateFavoriteSetInput) (*models.FavoriteSet, error) {
	set, err := s.requireOwned(userID, setID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name != set.Name {
			if err := s.validateName(userID, name, setID); err != nil {
				return nil, err
			}
			fields["name"] = name
		}
	}
	if input.Description != nil {
		fields["description"] = strings.TrimSpace(*input.Description)
	}
	if input.IsActive != nil {
		fields["is_active"] = *input.IsActive
	}

	if len(fields) > 0 {
		if err := s.favoriteRepo.UpdateFields(setID, fields); err != nil {
			return nil, errs.NewDatabaseError("update", "favorite set", err)
		}
	}

	if input.PromptIDs != nil {
		normalized, err := s.normalizePromptIDs(*input.PromptIDs)
		if err != nil {
			return nil, err
		}
		if err := s.favoriteRepo.ReplaceItems(setID, normalized); err != nil {
			return nil, errs.NewDatabaseError("update", "favorite set items", err)
		}
	}

	updated, err := s.favoriteRepo.FindWithItems(setID, userID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "favorite set", err)
	}

	s.logger.Info().Str("favoriteSetId", setID.String()).Msg("Updated favorite set")
	return updated, nil
}

// Delete removes one of the user's sets and its items.
func (s *FavoriteSetService) Delete(userID, setID uuid.UUID) error {
	if _, err := s.requireOwned(userID, setID); err != nil {
		return err
	}

	deleted, err := s.favoriteRepo.Delete(setID)
	if err != nil {
		return errs.NewDatabaseError("delete", "favorite set", err)
	}
	if !deleted {
		return errs.NewNotFoundError(fmt.Sprintf("favorite set %s not found", setID))
	}

	s.logger.Info().Str("favoriteSetId", setID.String()).Msg("Deleted favorite set")
	return nil
}

func (s *FavoriteSetService) requireOwned(userID, setID uuid.UUID) (*models.FavoriteSet, error) {
	set, err := s.favoriteRepo.FindWithItems(setID, userID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "favorite set", err)
	}
	if set == nil {
		return nil, errs.NewNotFoundError(fmt.Sprintf("favorite set %s not found", setID))
	}
	return set, nil
}

func (s *FavoriteSetService) validateName(userID uuid.UUID, name string, excludeID uuid.UUID) error {
	if name == "" {
		return errs.BadRequest("name is required")
	}
	if len(name) > 150 {
		return errs.BadRequest("name must be at most 150 characters")
	}

	taken, err := s.favoriteRepo.ExistsByName(userID, name, excludeID)
	if err != nil {
		return errs.NewDatabaseError("find", "favorite set", err)
	}
	if taken {
		return errs.NewConflictError(fmt.Sprintf("favorite set %q already exists", name))
	}
	return nil
}

// normalizePromptIDs dedupes ids preserving first occurrence and silently
// drops ids that do not resolve to a stored prompt.
func (s *FavoriteSetService) normalizePromptIDs(ids []uuid.UUID) ([]uuid.UUID, error) {
	normalized := make([]uuid.UUID, 0, len(ids))
	seen := map[uuid.UUID]bool{}

	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		prompt, err := s.promptRepo.FindByID(id)
		if err != nil {
			return nil, errs.NewDatabaseError("find", "prompt", err)
		}
		if prompt == nil {
			continue
		}
		seen[id] = true
		normalized = append(normalized, id)
	}

	return normalized, nil
}
