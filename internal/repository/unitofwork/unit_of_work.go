package unitofwork

import (
	"context"

	"aura-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	SessionRepository() contract.SessionRepository
	PreferenceRepository() contract.PreferenceRepository
	PostRepository() contract.PostRepository
	FollowRepository() contract.FollowRepository
	MessageRepository() contract.MessageRepository
}
