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

// TagStatistics summarizes the tag store.
type TagStatistics struct {
	TotalTags  int                 `json:"total_tags"`
	UnusedTags int                 `json:"unused_tags"`
	MostUsed   []database.TagUsage `json:"most_used"`
}

// TagService owns tag naming rules and the operations that move prompt
// associations between tags.
type TagService struct {
	tagRepo *database.TagRepo
	logger  zerolog.Logger
}

func NewTagService(tagRepo *database.TagRepo) *TagService {
	return &TagService{
		tagRepo: tagRepo,
		logger:  log.With().Str("serviceName", "tagService").Logger(),
	}
}

// CreateTag normalizes the name and stores a new tag. Fails when the
// normalized name is empty, too long, or already taken.
func (s *TagService) CreateTag(name, color string) (*models.Tag, error) {
	normalized := models.NormalizeTagName(name)
	if normalized == "" {
		return nil, errs.BadRequest("tag name is empty after normalization")
	}
	if len(normalized) > 100 {
		return nil, errs.BadRequest("tag name must be at most 100 characters")
	}

	if color == "" {
		color = models.DefaultTagColor
	}
	if !models.IsValidHexColor(color) {
		return nil, errs.BadRequest("color must be a hex value like #RRGGBB")
	}

	existing, err := s.tagRepo.FindByName(normalized)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "tag", err)
	}
	if existing != nil {
		return nil, errs.NewConflictError(fmt.Sprintf("tag %q already exists", normalized))
	}

	tag := &models.Tag{Name: normalized, Color: color}
	if err := s.tagRepo.Add(tag); err != nil {
		return nil, errs.NewDatabaseError("create", "tag", err)
	}

	s.logger.Info().Str("tagId", tag.ID.String()).Str("name", normalized).Msg("Created tag")
	return tag, nil
}

// GetTag returns a tag by id or a not-found error.
func (s *TagService) GetTag(id uuid.UUID) (*models.Tag, error) {
	tag, err := s.tagRepo.FindByID(id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "tag", err)
	}
	if tag == nil {
		return nil, errs.NewNotFoundError(fmt.Sprintf("tag %s not found", id))
	}
	return tag, nil
}

// ListTags returns all tags ordered by name.
func (s *TagService) ListTags() ([]models.Tag, error) {
	tags, err := s.tagRepo.FindAll()
	if err != nil {
		return nil, errs.NewDatabaseError("find", "tags", err)
	}
	return tags, nil
}

// UpdateTag renames and/or recolors a tag. Renaming normalizes the new name
// and enforces uniqueness against other tags.
func (s *TagService) UpdateTag(id uuid.UUID, name, color *string) (*models.Tag, error) {
	tag, err := s.GetTag(id)
	if err != nil {
		return nil, err
	}

	if name != nil {
		normalized := models.NormalizeTagName(*name)
		if normalized == "" {
			return nil, errs.BadRequest("tag name is empty after normalization")
		}
		if len(normalized) > 100 {
			return nil, errs.BadRequest("tag name must be at most 100 characters")
		}
		if normalized != tag.Name {
			existing, err := s.tagRepo.FindByName(normalized)
			if err != nil {
				return nil, errs.NewDatabaseError("find", "tag", err)
			}
			if existing != nil {
				return nil, errs.NewConflictError(fmt.Sprintf("tag %q already exists", normalized))
			}
			tag.Name = normalized
		}
	}

	if color != nil {
		if !models.IsValidHexColor(*color) {
			return nil, errs.BadRequest("color must be a hex value like #RRGGBB")
		}
		tag.Color = *color
	}

	if err := s.tagRepo.Update(tag); err != nil {
		return nil, errs.NewDatabaseError("update", "tag", err)
	}
	return tag, nil
}

// DeleteTag removes a tag. When reassignTo is non-nil, the tag's prompt
// associations move to that tag first instead of being dropped.
func (s *TagService) DeleteTag(id uuid.UUID, reassignTo *uuid.UUID) error {
	if _, err := s.GetTag(id); err != nil {
		return err
	}

	if reassignTo != nil {
		if *reassignTo == id {
			return errs.BadRequest("cannot reassign a tag to itself")
		}
		if _, err := s.GetTag(*reassignTo); err != nil {
			return err
		}
		// Merge moves the associations and deletes the source in one step.
		if err := s.tagRepo.Merge(id, *reassignTo); err != nil {
			return errs.NewDatabaseError("update", "tags", err)
		}
		s.logger.Info().Str("tagId", id.String()).Str("reassignedTo", reassignTo.String()).Msg("Deleted tag with reassignment")
		return nil
	}

	deleted, err := s.tagRepo.Delete(id)
	if err != nil {
		return errs.NewDatabaseError("delete", "tag", err)
	}
	if !deleted {
		return errs.NewNotFoundError(fmt.Sprintf("tag %s not found", id))
	}

	s.logger.Info().Str("tagId", id.String()).Msg("Deleted tag")
	return nil
}

// MergeTags folds the source tag into the target: prompt associations move
// over without duplication and the source is deleted.
func (s *TagService) MergeTags(sourceID, targetID uuid.UUID) (*models.Tag, error) {
	if sourceID == targetID {
		return nil, errs.BadRequest("cannot merge a tag into itself")
	}
	if _, err := s.GetTag(sourceID); err != nil {
		return nil, err
	}
	target, err := s.GetTag(targetID)
	if err != nil {
		return nil, err
	}

	if err := s.tagRepo.Merge(sourceID, targetID); err != nil {
		return nil, errs.NewDatabaseError("update", "tags", err)
	}

	s.logger.Info().
		Str("sourceTagId", sourceID.String()).
		Str("targetTagId", targetID.String()).
		Msg("Merged tags")
	return target, nil
}

// PopularTags ranks tags by how many prompts carry them.
func (s *TagService) PopularTags(limit int) ([]database.TagUsage, error) {
	if limit <= 0 {
		limit = 10
	}
	usages, err := s.tagRepo.Popular(limit)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "tags", err)
	}
	return usages, nil
}

// SearchTags matches tags by name substring.
func (s *TagService) SearchTags(query string) ([]models.Tag, error) {
	tags, err := s.tagRepo.Search(models.NormalizeTagName(query))
	if err != nil {
		return nil, errs.NewDatabaseError("find", "tags", err)
	}
	return tags, nil
}

// GetOrCreateTags resolves raw names to tag rows, creating missing ones with
// the default color. Empty normalizations and duplicates are dropped.
func (s *TagService) GetOrCreateTags(names []string) ([]models.Tag, error) {
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

// CleanupUnusedTags deletes every tag with no prompt associations and returns
// how many were removed.
func (s *TagService) CleanupUnusedTags() (int, error) {
	unused, err := s.tagRepo.Unused()
	if err != nil {
		return 0, errs.NewDatabaseError("find", "tags", err)
	}

	removed := 0
	for _, tag := range unused {
		deleted, err := s.tagRepo.Delete(tag.ID)
		if err != nil {
			return removed, errs.NewDatabaseError("delete", "tag", err)
		}
		if deleted {
			removed++
		}
	}

	if removed > 0 {
		s.logger.Info().Int("removedCount", removed).Msg("Cleaned up unused tags")
	}
	return removed, nil
}

// GetStatistics summarizes the tag store.
func (s *TagService) GetStatistics() (*TagStatistics, error) {
	all, err := s.tagRepo.FindAll()
	if err != nil {
		return nil, errs.NewDatabaseError("find", "tags", err)
	}
	unused, err := s.tagRepo.Unused()
	if err != nil {
		return nil, errs.NewDatabaseError("find", "tags", err)
	}
	mostUsed, err := s.tagRepo.Popular(5)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "tags", err)
	}

	return &TagStatistics{
		TotalTags:  len(all),
		UnusedTags: len(unused),
		MostUsed:   mostUsed,
	}, nil
}
