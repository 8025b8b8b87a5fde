package services

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/elimS2/prompt-manager/database"
	"github.com/elimS2/prompt-manager/errs"
	"github.com/elimS2/prompt-manager/models"
)

// Merge strategy names.
const (
	StrategySimple    = "simple"
	StrategySeparator = "separator"
	StrategyNumbered  = "numbered"
	StrategyBulleted  = "bulleted"
	StrategyTemplate  = "template"
)

// Defaults for the strategies' formatting options.
const (
	DefaultSeparator    = "\n\n---\n\n"
	DefaultBullet       = "• "
	DefaultNumberFormat = "%d. "
)

// mergeHistoryCap bounds the in-process history buffer; oldest entries are
// evicted first. Diagnostic only, never persisted.
const mergeHistoryCap = 100

// mergeSizeWarning is the total content size (characters) above which
// validation emits a warning.
const mergeSizeWarning = 50000

// MergeOptions is the strategy-specific option map, echoed back in metadata.
type MergeOptions map[string]any

// MergeMetadata describes a completed merge.
type MergeMetadata struct {
	Strategy     string       `json:"strategy"`
	PromptCount  int          `json:"prompt_count"`
	PromptIDs    []uuid.UUID  `json:"prompt_ids"`
	PromptTitles []string     `json:"prompt_titles"`
	MergedAt     string       `json:"merged_at"`
	Options      MergeOptions `json:"options"`
}

// MergeResult is the merged text plus its metadata. Warnings carry the
// non-blocking findings of the pre-flight validation.
type MergeResult struct {
	MergedContent string        `json:"merged_content"`
	Metadata      MergeMetadata `json:"metadata"`
	Warnings      []string      `json:"warnings"`
}

// MergeValidation is the non-mutating pre-flight result: hard errors block
// the merge, warnings do not.
type MergeValidation struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// MergeRecord is one entry of the diagnostic history buffer.
type MergeRecord struct {
	Timestamp     time.Time     `json:"timestamp"`
	PromptIDs     []uuid.UUID   `json:"prompt_ids"`
	PromptTitles  []string      `json:"prompt_titles"`
	ContentLength int           `json:"content_length"`
	Metadata      MergeMetadata `json:"metadata"`
}

// MergeService combines the contents of existing prompts into a single text
// blob under a named strategy. Composition itself is pure; the only shared
// state is the mutex-guarded history buffer.
type MergeService struct {
	promptRepo *database.PromptRepo
	logger     zerolog.Logger

	mu      sync.Mutex
	history []MergeRecord
}

func NewMergeService(promptRepo *database.PromptRepo) *MergeService {
	return &MergeService{
		promptRepo: promptRepo,
		logger:     log.With().Str("serviceName", "mergeService").Logger(),
	}
}

// MergePrompts merges the prompts referenced by ids, in the given order,
// under the named strategy. The result follows the input order, not creation
// order.
func (s *MergeService) MergePrompts(ids []uuid.UUID, strategy string, options MergeOptions) (*MergeResult, error) {
	if len(ids) < 2 {
		return nil, errs.NewTooFewPromptsError()
	}
	if hasDuplicateIDs(ids) {
		return nil, errs.NewDuplicatePromptIDsError()
	}

	prompts, missing, err := s.resolvePrompts(ids)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "prompts", err)
	}
	if len(missing) > 0 {
		return nil, errs.NewNotFoundError(fmt.Sprintf("prompts not found: %s", joinIDs(missing)))
	}

	if options == nil {
		options = MergeOptions{}
	}

	var merged string
	switch strategy {
	case StrategySimple:
		merged = s.simpleConcatenation(prompts, options)
	case StrategySeparator:
		merged = s.withSeparators(prompts, optString(options, "separator", DefaultSeparator), options)
	case StrategyNumbered:
		merged = s.numberedMerge(prompts, options)
	case StrategyBulleted:
		merged = s.bulletedMerge(prompts, options)
	case StrategyTemplate:
		template := optString(options, "template", "")
		if template == "" {
			return nil, errs.NewEmptyTemplateError()
		}
		merged = s.structuredMerge(prompts, template)
	default:
		return nil, errs.NewUnsupportedStrategyError(strategy)
	}

	metadata := MergeMetadata{
		Strategy:     strategy,
		PromptCount:  len(prompts),
		PromptIDs:    ids,
		PromptTitles: promptTitles(prompts),
		MergedAt:     time.Now().UTC().Format(time.RFC3339),
		Options:      options,
	}

	s.recordMerge(prompts, merged, metadata)
	s.logger.Info().
		Str("strategy", strategy).
		Int("promptCount", len(prompts)).
		Msg("Merged prompts")

	return &MergeResult{MergedContent: merged, Metadata: metadata}, nil
}

// ValidateMerge runs the merge preconditions without composing anything.
// Missing prompts, too few ids, and duplicates are hard errors; inactive
// prompts and oversized content only warn.
func (s *MergeService) ValidateMerge(ids []uuid.UUID) (*MergeValidation, error) {
	v := &MergeValidation{Errors: []string{}, Warnings: []string{}}

	if len(ids) < 2 {
		v.Errors = append(v.Errors, "at least 2 prompts required for merging")
	}
	if hasDuplicateIDs(ids) {
		v.Errors = append(v.Errors, "duplicate prompt IDs found")
	}

	prompts, missing, err := s.resolvePrompts(ids)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "prompts", err)
	}
	if len(missing) > 0 {
		v.Errors = append(v.Errors, fmt.Sprintf("prompts not found: %s", joinIDs(missing)))
	}

	inactive := 0
	totalSize := 0
	for _, p := range prompts {
		if !p.IsActive {
			inactive++
		}
		totalSize += len(p.Content)
	}
	if inactive > 0 {
		v.Warnings = append(v.Warnings, fmt.Sprintf("%d inactive prompt(s) included", inactive))
	}
	if totalSize > mergeSizeWarning {
		v.Warnings = append(v.Warnings, fmt.Sprintf("large merged content size: %d characters", totalSize))
	}

	v.Valid = len(v.Errors) == 0
	return v, nil
}

// GetMergeHistory returns up to limit history entries, newest first.
func (s *MergeService) GetMergeHistory(limit int) []MergeRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}

	out := make([]MergeRecord, 0, limit)
	for i := len(s.history) - 1; i >= len(s.history)-limit; i-- {
		out = append(out, s.history[i])
	}
	return out
}

// resolvePrompts fetches all ids and re-sorts the rows to input order, since
// the repository does not guarantee any ordering. Returns the ids that did
// not resolve.
func (s *MergeService) resolvePrompts(ids []uuid.UUID) ([]models.Prompt, []uuid.UUID, error) {
	prompts, err := s.promptRepo.FindByIDs(ids)
	if err != nil {
		return nil, nil, err
	}

	found := make(map[uuid.UUID]bool, len(prompts))
	for _, p := range prompts {
		found[p.ID] = true
	}
	var missing []uuid.UUID
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}

	order := make(map[uuid.UUID]int, len(ids))
	for i, id := range ids {
		order[id] = i
	}
	sort.SliceStable(prompts, func(i, j int) bool {
		return order[prompts[i].ID] < order[prompts[j].ID]
	})

	return prompts, missing, nil
}

func (s *MergeService) simpleConcatenation(prompts []models.Prompt, options MergeOptions) string {
	includeTitle := optBool(options, "include_title", true)

	parts := make([]string, 0, len(prompts))
	for _, p := range prompts {
		if includeTitle {
			parts = append(parts, fmt.Sprintf("## %s\n\n%s", p.Title, p.Content))
		} else {
			parts = append(parts, p.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}

func (s *MergeService) withSeparators(prompts []models.Prompt, separator string, options MergeOptions) string {
	includeTitle := optBool(options, "include_title", true)
	includeDescription := optBool(options, "include_description", false)

	parts := make([]string, 0, len(prompts))
	for _, p := range prompts {
		var block []string
		if includeTitle {
			block = append(block, "## "+p.Title)
		}
		if includeDescription && p.Description != "" {
			block = append(block, "*"+p.Description+"*")
		}
		block = append(block, p.Content)
		parts = append(parts, strings.Join(block, "\n\n"))
	}
	return strings.Join(parts, separator)
}

func (s *MergeService) numberedMerge(prompts []models.Prompt, options MergeOptions) string {
	includeTitle := optBool(options, "include_title", true)
	numberFormat := optString(options, "number_format", DefaultNumberFormat)

	parts := make([]string, 0, len(prompts))
	for i, p := range prompts {
		prefix := fmt.Sprintf(numberFormat, i+1)
		if includeTitle {
			parts = append(parts, fmt.Sprintf("%s**%s**\n\n%s", prefix, p.Title, p.Content))
		} else {
			parts = append(parts, prefix+p.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}

func (s *MergeService) bulletedMerge(prompts []models.Prompt, options MergeOptions) string {
	includeTitle := optBool(options, "include_title", true)
	bullet := optString(options, "bullet", DefaultBullet)

	parts := make([]string, 0, len(prompts))
	for _, p := range prompts {
		// Re-indent body line breaks so continuation lines nest under the bullet.
		indented := strings.ReplaceAll(p.Content, "\n", "\n  ")
		if includeTitle {
			parts = append(parts, fmt.Sprintf("%s**%s**\n  %s", bullet, p.Title, indented))
		} else {
			parts = append(parts, bullet+indented)
		}
	}
	return strings.Join(parts, "\n\n")
}

// structuredMerge substitutes placeholders by literal string replacement.
// A single replacer pass keeps substituted values from being re-expanded
// when they themselves contain placeholder text.
func (s *MergeService) structuredMerge(prompts []models.Prompt, template string) string {
	titles := make([]string, 0, len(prompts))
	contents := make([]string, 0, len(prompts))
	for _, p := range prompts {
		titles = append(titles, p.Title)
		contents = append(contents, p.Content)
	}

	pairs := []string{
		"{count}", fmt.Sprintf("%d", len(prompts)),
		"{titles}", strings.Join(titles, ", "),
		"{prompts}", strings.Join(contents, "\n\n"),
	}
	for i, p := range prompts {
		n := i + 1
		pairs = append(pairs,
			fmt.Sprintf("{prompt_%d}", n), fmt.Sprintf("%s\n\n%s", p.Title, p.Content),
			fmt.Sprintf("{title_%d}", n), p.Title,
			fmt.Sprintf("{content_%d}", n), p.Content,
			fmt.Sprintf("{description_%d}", n), p.Description,
		)
	}

	return strings.NewReplacer(pairs...).Replace(template)
}

func (s *MergeService) recordMerge(prompts []models.Prompt, merged string, metadata MergeMetadata) {
	entry := MergeRecord{
		Timestamp:     time.Now().UTC(),
		PromptIDs:     metadata.PromptIDs,
		PromptTitles:  promptTitles(prompts),
		ContentLength: len(merged),
		Metadata:      metadata,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, entry)
	if len(s.history) > mergeHistoryCap {
		s.history = s.history[len(s.history)-mergeHistoryCap:]
	}
}

func promptTitles(prompts []models.Prompt) []string {
	titles := make([]string, 0, len(prompts))
	for _, p := range prompts {
		titles = append(titles, p.Title)
	}
	return titles
}

func hasDuplicateIDs(ids []uuid.UUID) bool {
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return true
		}
		seen[id] = true
	}
	return false
}

func joinIDs(ids []uuid.UUID) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id.String())
	}
	return strings.Join(parts, ", ")
}

// optString falls back only when the key is absent or not a string; an
// explicit empty string is honored.
func optString(options MergeOptions, key, fallback string) string {
	if options == nil {
		return fallback
	}
	v, ok := options[key]
	if !ok {
		return fallback
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fallback
}

func optBool(options MergeOptions, key string, fallback bool) bool {
	if options == nil {
		return fallback
	}
	if v, ok := options[key].(bool); ok {
		return v
	}
	return fallback
}
