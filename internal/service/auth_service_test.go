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
	"aura-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type authFixture struct {
	db       *gorm.DB
	auth     IAuthService
	sessions ISessionService
	mail     *fakeMail
	events   *events.Recorder
}

func newAuthFixture(t *testing.T) *authFixture {
	factory, db := testutil.NewFactory(t)
	sessions := NewSessionService(factory, "test-secret", time.Hour)
	mail := &fakeMail{}
	rec := &events.Recorder{}

	svc := NewAuthService(factory, sessions, mail, rec, "http://localhost:3000", logger.NewNop())
	svc.(*authService).bcryptCost = bcrypt.MinCost

	return &authFixture{db: db, auth: svc, sessions: sessions, mail: mail, events: rec}
}

func (f *authFixture) register(t *testing.T, email, username, password string) *dto.RegisterResponse {
	t.Helper()
	res, err := f.auth.Register(context.Background(), &dto.RegisterRequest{Email: email, Username: username, Password: password})
	require.NoError(t, err)
	return res
}

func (f *authFixture) verificationToken(t *testing.T, userId interface{}) string {
	t.Helper()
	var tok model.EmailVerificationToken
	require.NoError(t, f.db.Where("user_id = ?", userId).Order("created_at DESC").First(&tok).Error)
	return tok.Token
}

func messageOf(t *testing.T, err error) string {
	t.Helper()
	appErr, ok := apperror.As(err)
	require.True(t, ok, "expected *apperror.Error, got %v", err)
	return appErr.Message
}

func TestAuthService_RegisterLoginLogout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	reg := f.register(t, " Alice@Example.com ", "alice", "password123")
	assert.Equal(t, "alice@example.com", reg.Email)
	assert.Equal(t, 1, f.mail.count())

	login, err := f.auth.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "password123"}, "go-test")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", login.TokenType)
	assert.NotEmpty(t, login.AccessToken)
	assert.Equal(t, []string{events.TypeUserRegistered, events.TypeUserLogin}, f.events.Types())

	session, err := f.sessions.Authenticate(ctx, login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.Id, session.UserId)

	require.NoError(t, f.auth.Logout(ctx, session.Id))

	_, err = f.sessions.Authenticate(ctx, login.AccessToken)
	assert.Equal(t, apperror.KindSessionRevoked, apperror.KindOf(err))
}

func TestAuthService_RegisterConflicts(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "bob@example.com", "bob", "password123")

	_, err := f.auth.Register(context.Background(), &dto.RegisterRequest{Email: "BOB@example.com", Username: "other", Password: "password123"})
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	assert.Equal(t, "Email or username already in use", messageOf(t, err))

	_, err = f.auth.Register(context.Background(), &dto.RegisterRequest{Email: "new@example.com", Username: "BOB", Password: "password123"})
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	_, err = f.auth.Register(context.Background(), &dto.RegisterRequest{Email: "x@example.com", Username: "no spaces!", Password: "password123"})
	assert.Equal(t, apperror.KindInvalidInput, apperror.KindOf(err))
}

func TestAuthService_LoginFailures(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	reg := f.register(t, "carol@example.com", "carol", "password123")

	_, err := f.auth.Login(ctx, &dto.LoginRequest{Email: "carol@example.com", Password: "wrong-password"}, "")
	assert.Equal(t, "Invalid credentials", messageOf(t, err))

	_, err = f.auth.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "password123"}, "")
	assert.Equal(t, "Invalid credentials", messageOf(t, err))

	require.NoError(t, f.db.Delete(&model.User{}, "id = ?", reg.Id).Error)
	_, err = f.auth.Login(ctx, &dto.LoginRequest{Email: "carol@example.com", Password: "password123"}, "")
	assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))
	assert.Equal(t, "Account deleted", messageOf(t, err))
}

func TestAuthService_VerifyEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	reg := f.register(t, "dave@example.com", "dave", "password123")
	token := f.verificationToken(t, reg.Id)

	err := f.auth.VerifyEmail(ctx, &dto.VerifyEmailRequest{Token: "not-a-token"})
	assert.Equal(t, "Invalid token", messageOf(t, err))

	require.NoError(t, f.auth.VerifyEmail(ctx, &dto.VerifyEmailRequest{Token: token}))

	var user model.User
	require.NoError(t, f.db.First(&user, "id = ?", reg.Id).Error)
	assert.NotNil(t, user.VerifiedAt)

	err = f.auth.VerifyEmail(ctx, &dto.VerifyEmailRequest{Token: token})
	assert.Equal(t, "Token already used", messageOf(t, err))
}

func TestAuthService_VerifyEmailExpired(t *testing.T) {
	f := newAuthFixture(t)
	reg := f.register(t, "erin@example.com", "erin", "password123")
	token := f.verificationToken(t, reg.Id)

	require.NoError(t, f.db.Model(&model.EmailVerificationToken{}).
		Where("token = ?", token).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	err := f.auth.VerifyEmail(context.Background(), &dto.VerifyEmailRequest{Token: token})
	assert.Equal(t, "Token expired", messageOf(t, err))
}

func TestAuthService_ForgotAndResetPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	reg := f.register(t, "frank@example.com", "frank", "password123")
	sentAfterRegister := f.mail.count()

	// unknown addresses succeed silently
	require.NoError(t, f.auth.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: "ghost@example.com"}))
	assert.Equal(t, sentAfterRegister, f.mail.count())

	require.NoError(t, f.auth.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: "frank@example.com"}))
	assert.Equal(t, sentAfterRegister+1, f.mail.count())

	var reset model.PasswordResetToken
	require.NoError(t, f.db.Where("user_id = ?", reg.Id).First(&reset).Error)

	require.NoError(t, f.auth.ResetPassword(ctx, &dto.ResetPasswordRequest{Token: reset.Token, Password: "new-password"}))

	_, err := f.auth.Login(ctx, &dto.LoginRequest{Email: "frank@example.com", Password: "password123"}, "")
	assert.Error(t, err)
	_, err = f.auth.Login(ctx, &dto.LoginRequest{Email: "frank@example.com", Password: "new-password"}, "")
	assert.NoError(t, err)

	err = f.auth.ResetPassword(ctx, &dto.ResetPasswordRequest{Token: reset.Token, Password: "another-one"})
	assert.Equal(t, "Token already used", messageOf(t, err))
}
