package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/elimS2/prompt-manager/database"
	"github.com/elimS2/prompt-manager/errs"
	"github.com/elimS2/prompt-manager/models"
)

// Access policies for first-time logins that are neither admins nor
// allowlisted.
const (
	PolicyAllowlistStrict       = "allowlist_strict"
	PolicyAllowlistThenApproval = "allowlist_then_approval"
	PolicyOpen                  = "open"
)

// GoogleProfile is the subset of the Google userinfo payload the identity
// layer cares about.
type GoogleProfile struct {
	Sub          string `json:"sub"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Picture      string `json:"picture"`
	HostedDomain string `json:"hd"`
}

// AccessConfig drives the status a user lands in after login.
type AccessConfig struct {
	// Policy is one of the Policy* constants.
	Policy string
	// AdminEmails always become active admins.
	AdminEmails []string
	// AllowedDomain, when set, rejects Google accounts from other hosted
	// domains.
	AllowedDomain string
}

// UserService owns the identity workflow: upsert on external login, the
// pending/active/disabled lifecycle, and the email allowlist.
type UserService struct {
	userRepo      *database.UserRepo
	allowlistRepo *database.AllowlistRepo
	access        AccessConfig
	logger        zerolog.Logger
}

func NewUserService(userRepo *database.UserRepo, allowlistRepo *database.AllowlistRepo, access AccessConfig) *UserService {
	if access.Policy == "" {
		access.Policy = PolicyAllowlistThenApproval
	}
	return &UserService{
		userRepo:      userRepo,
		allowlistRepo: allowlistRepo,
		access:        access,
		logger:        log.With().Str("serviceName", "userService").Logger(),
	}
}

// FindOrCreateFromGoogle upserts a user from a Google userinfo profile and
// applies the access policy. Matching is by external identity first, falling
// back to email for accounts created before the identity was linked. Disabled
// users stay disabled; pending->active only happens through admin approval or
// the allowlist.
func (s *UserService) FindOrCreateFromGoogle(profile GoogleProfile) (*models.User, error) {
	sub := strings.TrimSpace(profile.Sub)
	email := strings.ToLower(strings.TrimSpace(profile.Email))
	if sub == "" || email == "" {
		return nil, errs.BadRequest("google profile must contain sub and email")
	}

	if s.access.AllowedDomain != "" && profile.HostedDomain != "" &&
		!strings.EqualFold(profile.HostedDomain, s.access.AllowedDomain) {
		return nil, errs.NewForbiddenError("google account domain is not allowed")
	}

	user, err := s.userRepo.FindByGoogleSub(sub)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "user", err)
	}
	if user == nil {
		user, err = s.userRepo.FindByEmail(email)
		if err != nil {
			return nil, errs.NewDatabaseError("find", "user", err)
		}
	}

	isNew := user == nil
	if isNew {
		user = &models.User{
			Role:   models.RoleUser,
			Status: models.StatusActive,
		}
	}
	user.GoogleSub = sub
	user.Email = email
	user.Name = profile.Name
	user.PictureURL = profile.Picture

	if err := s.applyAccessPolicy(user, isNew); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now

	if isNew {
		err = s.userRepo.Add(user)
	} else {
		err = s.userRepo.Update(user)
	}
	if err != nil {
		return nil, errs.NewDatabaseError("save", "user", err)
	}

	s.logger.Info().
		Str("userId", user.ID.String()).
		Str("status", user.Status).
		Bool("newUser", isNew).
		Msg("User logged in")

	return user, nil
}

// RequireActive turns a non-active status into the matching typed error.
func (s *UserService) RequireActive(user *models.User) error {
	switch user.Status {
	case models.StatusActive:
		return nil
	case models.StatusPending:
		return errs.NewAccountPendingError()
	case models.StatusDisabled:
		return errs.NewAccountDisabledError()
	default:
		return errs.NewForbiddenError("unknown account status")
	}
}

// GetUser returns a user by id or a not-found error.
func (s *UserService) GetUser(id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "user", err)
	}
	if user == nil {
		return nil, errs.NewNotFoundError(fmt.Sprintf("user %s not found", id))
	}
	return user, nil
}

// ApproveUser activates a pending user, optionally changing their role, and
// records who approved them.
func (s *UserService) ApproveUser(userID uuid.UUID, approverID *uuid.UUID, role string) (*models.User, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	if role != "" {
		if role != models.RoleUser && role != models.RoleAdmin {
			return nil, errs.BadRequest("role must be user or admin")
		}
		user.Role = role
	}

	now := time.Now().UTC()
	user.Status = models.StatusActive
	user.ApprovedAt = &now
	user.ApprovedByUserID = approverID

	if err := s.userRepo.Update(user); err != nil {
		return nil, errs.NewDatabaseError("update", "user", err)
	}

	s.logger.Info().Str("userId", userID.String()).Msg("Approved user")
	return user, nil
}

// DisableUser blocks a user. Disabled users never auto-reactivate on login.
func (s *UserService) DisableUser(userID uuid.UUID) (*models.User, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	user.Status = models.StatusDisabled
	if err := s.userRepo.Update(user); err != nil {
		return nil, errs.NewDatabaseError("update", "user", err)
	}

	s.logger.Info().Str("userId", userID.String()).Msg("Disabled user")
	return user, nil
}

// ListPendingUsers returns users awaiting approval, oldest first.
func (s *UserService) ListPendingUsers() ([]models.User, error) {
	users, err := s.userRepo.ListByStatus(models.StatusPending)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "users", err)
	}
	return users, nil
}

// ListAllowlist returns the email allowlist ordered by email.
func (s *UserService) ListAllowlist() ([]models.EmailAllowlist, error) {
	entries, err := s.allowlistRepo.FindAll()
	if err != nil {
		return nil, errs.NewDatabaseError("find", "allowlist", err)
	}
	return entries, nil
}

// AddToAllowlist registers an email so future logins activate immediately.
func (s *UserService) AddToAllowlist(email, defaultRole, note string) (*models.EmailAllowlist, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, errs.BadRequest("a valid email is required")
	}
	if defaultRole == "" {
		defaultRole = models.RoleUser
	}
	if defaultRole != models.RoleUser && defaultRole != models.RoleAdmin {
		return nil, errs.BadRequest("default_role must be user or admin")
	}

	existing, err := s.allowlistRepo.FindByEmail(email)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "allowlist entry", err)
	}
	if existing != nil {
		return nil, errs.NewConflictError(fmt.Sprintf("email %s is already allowlisted", email))
	}

	entry := &models.EmailAllowlist{Email: email, DefaultRole: defaultRole, Note: note}
	if err := s.allowlistRepo.Add(entry); err != nil {
		return nil, errs.NewDatabaseError("create", "allowlist entry", err)
	}

	s.logger.Info().Str("email", email).Msg("Added email to allowlist")
	return entry, nil
}

// RemoveFromAllowlist deletes an allowlist entry. Existing users keep their
// status.
func (s *UserService) RemoveFromAllowlist(id uuid.UUID) error {
	deleted, err := s.allowlistRepo.Delete(id)
	if err != nil {
		return errs.NewDatabaseError("delete", "allowlist entry", err)
	}
	if !deleted {
		return errs.NewNotFoundError(fmt.Sprintf("allowlist entry %s not found", id))
	}
	return nil
}

// applyAccessPolicy sets role/status after a login. Order matters: disabled
// wins over everything, then admin emails, then the allowlist, then the
// policy for unknown accounts.
func (s *UserService) applyAccessPolicy(user *models.User, isNew bool) error {
	if user.Status == models.StatusDisabled {
		return nil
	}

	for _, admin := range s.access.AdminEmails {
		if strings.EqualFold(strings.TrimSpace(admin), user.Email) {
			user.Role = models.RoleAdmin
			user.Status = models.StatusActive
			return nil
		}
	}

	entry, err := s.allowlistRepo.FindByEmail(user.Email)
	if err != nil {
		return errs.NewDatabaseError("find", "allowlist entry", err)
	}
	if entry != nil {
		user.Status = models.StatusActive
		if isNew && entry.DefaultRole != "" && user.Role != models.RoleAdmin {
			user.Role = entry.DefaultRole
		}
		return nil
	}

	// Not allowlisted. Existing users keep their earned status; only
	// first-time logins are gated by the policy.
	if isNew {
		switch s.access.Policy {
		case PolicyAllowlistStrict, PolicyAllowlistThenApproval:
			user.Status = models.StatusPending
		case PolicyOpen:
			user.Status = models.StatusActive
		}
	}
	return nil
}
