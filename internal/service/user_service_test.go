package service

import (
	"context"
	"testing"
	"time"

	"aura-be/internal/dto"
	"aura-be/internal/model"
	"aura-be/internal/pkg/apperror"
	"aura-be/internal/pkg/logger"
	"aura-be/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_GetProfileHidesEmail(t *testing.T) {
	factory, _ := testutil.NewFactory(t)
	svc := NewUserService(factory, &fakeMail{}, "", logger.NewNop())
	owner := seedUser(t, factory, "owner")
	viewer := seedUser(t, factory, "viewer")

	own, err := svc.GetProfile(context.Background(), owner.Id, owner.Id)
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", own.Email)

	other, err := svc.GetProfile(context.Background(), viewer.Id, owner.Id)
	require.NoError(t, err)
	assert.Empty(t, other.Email)
	assert.Equal(t, "owner", other.Username)
}

func TestUserService_UpdateProfile(t *testing.T) {
	factory, _ := testutil.NewFactory(t)
	svc := NewUserService(factory, &fakeMail{}, "", logger.NewNop())
	u := seedUser(t, factory, "wendy")
	seedUser(t, factory, "taken")
	ctx := context.Background()

	res, err := svc.UpdateProfile(ctx, u.Id, &dto.UpdateProfileRequest{Bio: strPtr("hello"), MoodPreference: strPtr("calm")})
	require.NoError(t, err)
	assert.Equal(t, "hello", res.Bio)
	require.NotNil(t, res.MoodPreference)
	assert.Equal(t, "calm", *res.MoodPreference)
	assert.Equal(t, "wendy", res.Username)

	_, err = svc.UpdateProfile(ctx, u.Id, &dto.UpdateProfileRequest{Username: strPtr("TAKEN")})
	assert.Equal(t, "Username already taken", messageOf(t, err))

	res, err = svc.UpdateProfile(ctx, u.Id, &dto.UpdateProfileRequest{MoodPreference: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, res.MoodPreference)
}

func TestUserService_DeleteAccountRevokesSessions(t *testing.T) {
	factory, db := testutil.NewFactory(t)
	ctx := context.Background()
	svc := NewUserService(factory, &fakeMail{}, "", logger.NewNop())
	sessions := NewSessionService(factory, "secret", time.Hour)
	u := seedUser(t, factory, "xena")

	issued, err := sessions.Issue(ctx, u.Id)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(ctx, u.Id))

	var stored model.Session
	require.NoError(t, db.First(&stored, "id = ?", issued.Session.Id).Error)
	assert.True(t, stored.Revoked)
	assert.NotNil(t, stored.RevokedAt)

	_, err = svc.GetProfile(ctx, u.Id, u.Id)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestUserService_BlockAndReport(t *testing.T) {
	factory, _ := testutil.NewFactory(t)
	ctx := context.Background()
	svc := NewUserService(factory, &fakeMail{}, "", logger.NewNop())
	a := seedUser(t, factory, "yara")
	b := seedUser(t, factory, "zane")

	err := svc.BlockUser(ctx, a.Id, a.Id)
	assert.Equal(t, "Cannot block self", messageOf(t, err))
	err = svc.ReportUser(ctx, a.Id, a.Id, &dto.ReportRequest{})
	assert.Equal(t, "Cannot report self", messageOf(t, err))

	require.NoError(t, svc.BlockUser(ctx, a.Id, b.Id))
	// blocking twice is idempotent
	require.NoError(t, svc.BlockUser(ctx, a.Id, b.Id))
	require.NoError(t, svc.ReportUser(ctx, a.Id, b.Id, &dto.ReportRequest{Reason: strPtr("spam")}))

	ids, err := factory.NewUnitOfWork(ctx).UserRepository().BlockRelatedIDs(ctx, b.Id)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a.Id}, ids)
}

func TestUserService_UpdatePreferencesKeepsOmittedFields(t *testing.T) {
	factory, _ := testutil.NewFactory(t)
	ctx := context.Background()
	svc := NewUserService(factory, &fakeMail{}, "", logger.NewNop())
	u := seedUser(t, factory, "pref")

	enabled := true
	res, err := svc.UpdatePreferences(ctx, u.Id, &dto.UpdatePreferencesRequest{MoodEnabled: &enabled})
	require.NoError(t, err)
	assert.True(t, res.MoodEnabled)
	assert.Equal(t, "public", res.PrivacyLevel)

	res, err = svc.UpdatePreferences(ctx, u.Id, &dto.UpdatePreferencesRequest{PrivacyLevel: strPtr("private")})
	require.NoError(t, err)
	assert.True(t, res.MoodEnabled, "omitted mood_enabled keeps its stored value")
	assert.Equal(t, "private", res.PrivacyLevel)
}

func TestUserService_ChangeEmailClearsVerification(t *testing.T) {
	factory, db := testutil.NewFactory(t)
	ctx := context.Background()
	mail := &fakeMail{}
	svc := NewUserService(factory, mail, "", logger.NewNop())
	u := seedUser(t, factory, "ivan")
	seedUser(t, factory, "judy")
	require.NoError(t, db.Model(&model.User{}).Where("id = ?", u.Id).Update("verified_at", time.Now()).Error)

	_, err := svc.ChangeEmail(ctx, u.Id, &dto.ChangeEmailRequest{Email: "judy@example.com"})
	assert.Equal(t, "Email already in use", messageOf(t, err))

	res, err := svc.ChangeEmail(ctx, u.Id, &dto.ChangeEmailRequest{Email: "Ivan.New@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "ivan.new@example.com", res.Email)
	assert.True(t, res.VerifySent)
	assert.Equal(t, 1, mail.count())

	profile, err := svc.GetProfile(ctx, u.Id, u.Id)
	require.NoError(t, err)
	assert.False(t, profile.Verified)
}

func TestUserService_ChangeUsernameValidation(t *testing.T) {
	factory, _ := testutil.NewFactory(t)
	svc := NewUserService(factory, &fakeMail{}, "", logger.NewNop())
	u := seedUser(t, factory, "kate")

	_, err := svc.ChangeUsername(context.Background(), u.Id, &dto.ChangeUsernameRequest{Username: "ab"})
	assert.Equal(t, apperror.KindInvalidInput, apperror.KindOf(err))

	res, err := svc.ChangeUsername(context.Background(), u.Id, &dto.ChangeUsernameRequest{Username: "kate.b_2"})
	require.NoError(t, err)
	assert.Equal(t, "kate.b_2", res.Username)
}
