package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elimS2/prompt-manager/errs"
	"github.com/elimS2/prompt-manager/models"
)

func TestFirstLoginIsPendingByDefault(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db.UserRepo(), db.AllowlistRepo(), AccessConfig{})

	user, err := svc.FindOrCreateFromGoogle(GoogleProfile{
		Sub:   "sub-1",
		Email: "Somebody@Example.com",
		Name:  "Somebody",
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, user.Status)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, "somebody@example.com", user.Email)
	assert.NotNil(t, user.LastLoginAt)
}

func TestFirstLoginWithOpenPolicy(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db.UserRepo(), db.AllowlistRepo(), AccessConfig{Policy: PolicyOpen})

	user, err := svc.FindOrCreateFromGoogle(GoogleProfile{Sub: "sub-1", Email: "a@b.com"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, user.Status)
}

func TestAdminEmailBecomesActiveAdmin(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db.UserRepo(), db.AllowlistRepo(), AccessConfig{
		AdminEmails: []string{"boss@example.com"},
	})

	user, err := svc.FindOrCreateFromGoogle(GoogleProfile{Sub: "sub-1", Email: "boss@example.com"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Equal(t, models.StatusActive, user.Status)
}

func TestAllowlistedEmailActivatesWithDefaultRole(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db.UserRepo(), db.AllowlistRepo(), AccessConfig{})

	_, err := svc.AddToAllowlist("trusted@example.com", models.RoleAdmin, "team lead")
	require.NoError(t, err)

	user, err := svc.FindOrCreateFromGoogle(GoogleProfile{Sub: "sub-1", Email: "trusted@example.com"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, user.Status)
	assert.Equal(t, models.RoleAdmin, user.Role)
}

func TestRepeatLoginUpdatesProfile(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db.UserRepo(), db.AllowlistRepo(), AccessConfig{Policy: PolicyOpen})

	first, err := svc.FindOrCreateFromGoogle(GoogleProfile{Sub: "sub-1", Email: "a@b.com", Name: "Old Name"})
	require.NoError(t, err)

	second, err := svc.FindOrCreateFromGoogle(GoogleProfile{Sub: "sub-1", Email: "a@b.com", Name: "New Name"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "New Name", second.Name)
}

func TestDisabledUserStaysDisabledOnLogin(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db.UserRepo(), db.AllowlistRepo(), AccessConfig{})

	_, err := svc.AddToAllowlist("banned@example.com", "", "")
	require.NoError(t, err)

	user, err := svc.FindOrCreateFromGoogle(GoogleProfile{Sub: "sub-1", Email: "banned@example.com"})
	require.NoError(t, err)
	require.Equal(t, models.StatusActive, user.Status)

	_, err = svc.DisableUser(user.ID)
	require.NoError(t, err)

	// Allowlist membership must not resurrect a disabled account.
	again, err := svc.FindOrCreateFromGoogle(GoogleProfile{Sub: "sub-1", Email: "banned@example.com"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDisabled, again.Status)
	assert.ErrorIs(t, svc.RequireActive(again), errs.ErrAccountDisabled)
}

func TestApproveUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db.UserRepo(), db.AllowlistRepo(), AccessConfig{})

	pending, err := svc.FindOrCreateFromGoogle(GoogleProfile{Sub: "sub-1", Email: "new@example.com"})
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, pending.Status)
	assert.ErrorIs(t, svc.RequireActive(pending), errs.ErrAccountPending)

	admin := createUser(t, db, "admin@example.com")

	approved, err := svc.ApproveUser(pending.ID, &admin.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, approved.Status)
	require.NotNil(t, approved.ApprovedByUserID)
	assert.Equal(t, admin.ID, *approved.ApprovedByUserID)
	assert.NotNil(t, approved.ApprovedAt)
	assert.NoError(t, svc.RequireActive(approved))
}

func TestApproveUserRejectsUnknownRole(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db.UserRepo(), db.AllowlistRepo(), AccessConfig{})

	pending, err := svc.FindOrCreateFromGoogle(GoogleProfile{Sub: "sub-1", Email: "new@example.com"})
	require.NoError(t, err)

	_, err = svc.ApproveUser(pending.ID, nil, "overlord")
	require.Error(t, err)
	assert.True(t, errs.IsBadRequest(err))
}

func TestListPendingUsers(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db.UserRepo(), db.AllowlistRepo(), AccessConfig{})

	_, err := svc.FindOrCreateFromGoogle(GoogleProfile{Sub: "sub-1", Email: "one@example.com"})
	require.NoError(t, err)
	_, err = svc.FindOrCreateFromGoogle(GoogleProfile{Sub: "sub-2", Email: "two@example.com"})
	require.NoError(t, err)
	createUser(t, db, "active@example.com")

	pending, err := svc.ListPendingUsers()
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "one@example.com", pending[0].Email)
}

func TestHostedDomainRestriction(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db.UserRepo(), db.AllowlistRepo(), AccessConfig{
		Policy:        PolicyOpen,
		AllowedDomain: "example.com",
	})

	_, err := svc.FindOrCreateFromGoogle(GoogleProfile{
		Sub:          "sub-1",
		Email:        "a@other.com",
		HostedDomain: "other.com",
	})
	require.Error(t, err)
	assert.True(t, errs.IsForbidden(err))

	_, err = svc.FindOrCreateFromGoogle(GoogleProfile{
		Sub:          "sub-2",
		Email:        "a@example.com",
		HostedDomain: "example.com",
	})
	require.NoError(t, err)
}

func TestGoogleProfileRequiresSubAndEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db.UserRepo(), db.AllowlistRepo(), AccessConfig{})

	_, err := svc.FindOrCreateFromGoogle(GoogleProfile{Email: "a@b.com"})
	require.Error(t, err)
	assert.True(t, errs.IsBadRequest(err))

	_, err = svc.FindOrCreateFromGoogle(GoogleProfile{Sub: "sub-1"})
	require.Error(t, err)
	assert.True(t, errs.IsBadRequest(err))
}

func TestAllowlistManagement(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db.UserRepo(), db.AllowlistRepo(), AccessConfig{})

	entry, err := svc.AddToAllowlist(" Person@Example.com ", "", "note")
	require.NoError(t, err)
	assert.Equal(t, "person@example.com", entry.Email)
	assert.Equal(t, models.RoleUser, entry.DefaultRole)

	_, err = svc.AddToAllowlist("person@example.com", "", "")
	require.Error(t, err)
	assert.True(t, errs.IsConflict(err))

	_, err = svc.AddToAllowlist("not-an-email", "", "")
	require.Error(t, err)
	assert.True(t, errs.IsBadRequest(err))

	entries, err := svc.ListAllowlist()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, svc.RemoveFromAllowlist(entry.ID))
	entries, err = svc.ListAllowlist()
	require.NoError(t, err)
	assert.Empty(t, entries)
}
