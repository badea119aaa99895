package service

import (
	"context"

	"aura-be/internal/metrics"
	"aura-be/internal/pkg/apperror"
	"aura-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

const moodDisabledMessage = "Mood feature disabled in preferences"

// IMoodGate decides whether a user may use mood features at all.
type IMoodGate interface {
	Require(ctx context.Context, userId uuid.UUID) error
}

type moodGate struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewMoodGate(uowFactory unitofwork.RepositoryFactory) IMoodGate {
	return &moodGate{uowFactory: uowFactory}
}

// Require passes only when the user has a preference row with mood_enabled set.
func (g *moodGate) Require(ctx context.Context, userId uuid.UUID) error {
	uow := g.uowFactory.NewUnitOfWork(ctx)
	pref, err := uow.PreferenceRepository().FindByUserID(ctx, userId)
	if err != nil {
		return apperror.FromStorage(err, "")
	}
	if pref == nil || !pref.MoodEnabled {
		metrics.RecordGateRejection()
		return apperror.FeatureDisabled(moodDisabledMessage)
	}
	return nil
}
