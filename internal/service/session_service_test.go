package service

import (
	"context"
	"testing"
	"time"

	"aura-be/internal/model"
	"aura-be/internal/pkg/apperror"
	"aura-be/internal/testutil"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionService_Authenticate(t *testing.T) {
	factory, db := testutil.NewFactory(t)
	ctx := context.Background()
	svc := NewSessionService(factory, "secret", time.Hour)
	user := seedUser(t, factory, "sam")

	issued, err := svc.Issue(ctx, user.Id)
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		session, err := svc.Authenticate(ctx, issued.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, issued.Session.Id, session.Id)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "not.a.jwt")
		assert.Equal(t, "Unauthorized", messageOf(t, err))
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewSessionService(factory, "other-secret", time.Hour)
		_, err := other.Authenticate(ctx, issued.AccessToken)
		assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))
	})

	t.Run("unknown session", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			Subject:   user.Id.String(),
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = svc.Authenticate(ctx, signed)
		assert.Equal(t, "Session invalidated", messageOf(t, err))
	})

	t.Run("subject mismatch", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ID:        issued.Session.Id.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = svc.Authenticate(ctx, signed)
		assert.Equal(t, "Session invalidated", messageOf(t, err))
	})

	t.Run("deleted user", func(t *testing.T) {
		ghost := seedUser(t, factory, "ghost")
		tok, err := svc.Issue(ctx, ghost.Id)
		require.NoError(t, err)
		require.NoError(t, db.Delete(&model.User{}, "id = ?", ghost.Id).Error)

		_, err = svc.Authenticate(ctx, tok.AccessToken)
		assert.Equal(t, "User inactive", messageOf(t, err))
	})
}

func TestSessionService_Expired(t *testing.T) {
	factory, _ := testutil.NewFactory(t)
	svc := NewSessionService(factory, "secret", -time.Minute)
	user := seedUser(t, factory, "tess")

	issued, err := svc.Issue(context.Background(), user.Id)
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), issued.AccessToken)
	assert.Equal(t, "Token expired", messageOf(t, err))
}

func TestSessionService_RevokeAll(t *testing.T) {
	factory, _ := testutil.NewFactory(t)
	ctx := context.Background()
	svc := NewSessionService(factory, "secret", time.Hour)
	user := seedUser(t, factory, "uma")

	a, err := svc.Issue(ctx, user.Id)
	require.NoError(t, err)
	b, err := svc.Issue(ctx, user.Id)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeAll(ctx, user.Id))

	for _, tok := range []string{a.AccessToken, b.AccessToken} {
		_, err := svc.Authenticate(ctx, tok)
		assert.Equal(t, apperror.KindSessionRevoked, apperror.KindOf(err))
	}
}
