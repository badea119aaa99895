package service

import (
	"context"
	"errors"
	"time"

	"aura-be/internal/entity"
	"aura-be/internal/pkg/apperror"
	"aura-be/internal/repository/specification"
	"aura-be/internal/repository/unitofwork"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type IssuedToken struct {
	AccessToken string
	ExpiresAt   time.Time
	Session     *entity.Session
}

type ISessionService interface {
	// Issue creates a session and signs a token whose jti is the session id.
	Issue(ctx context.Context, userId uuid.UUID) (*IssuedToken, error)
	Authenticate(ctx context.Context, token string) (*entity.Session, error)
	Revoke(ctx context.Context, sessionId uuid.UUID) error
	RevokeAll(ctx context.Context, userId uuid.UUID) error
}

type sessionService struct {
	uowFactory unitofwork.RepositoryFactory
	secret     []byte
	ttl        time.Duration
}

func NewSessionService(uowFactory unitofwork.RepositoryFactory, secret string, ttl time.Duration) ISessionService {
	return &sessionService{
		uowFactory: uowFactory,
		secret:     []byte(secret),
		ttl:        ttl,
	}
}

func (s *sessionService) Issue(ctx context.Context, userId uuid.UUID) (*IssuedToken, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session := &entity.Session{Id: uuid.New(), UserId: userId}
	if err := uow.SessionRepository().Create(ctx, session); err != nil {
		return nil, apperror.FromStorage(err, "User not found")
	}

	now := time.Now()
	expiresAt := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   userId.String(),
		ID:        session.Id.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return &IssuedToken{AccessToken: signed, ExpiresAt: expiresAt, Session: session}, nil
}

func (s *sessionService) Authenticate(ctx context.Context, token string) (*entity.Session, error) {
	// 1. Signature, algorithm and expiry
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.Unauthorized("Token expired")
		}
		return nil, apperror.Unauthorized("Unauthorized")
	}

	userId, errSub := uuid.Parse(claims.Subject)
	sessionId, errJti := uuid.Parse(claims.ID)
	if errSub != nil || errJti != nil {
		return nil, apperror.Unauthorized("Unauthorized")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	// 2. Session must exist, be live and belong to the subject
	session, err := uow.SessionRepository().FindByID(ctx, sessionId)
	if err != nil {
		return nil, apperror.FromStorage(err, "Session invalidated")
	}
	if session == nil || session.UserId != userId {
		return nil, apperror.Unauthorized("Session invalidated")
	}
	if session.Revoked {
		return nil, apperror.SessionRevoked()
	}

	// 3. Soft-deleted users are filtered by the default scope
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, apperror.FromStorage(err, "User inactive")
	}
	if user == nil {
		return nil, apperror.Unauthorized("User inactive")
	}

	return session, nil
}

func (s *sessionService) Revoke(ctx context.Context, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.SessionRepository().Revoke(ctx, sessionId, time.Now()); err != nil {
		return apperror.FromStorage(err, "Session not found")
	}
	return nil
}

func (s *sessionService) RevokeAll(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := uow.SessionRepository().RevokeAllForUser(ctx, userId, time.Now()); err != nil {
		return apperror.FromStorage(err, "User not found")
	}
	return nil
}
