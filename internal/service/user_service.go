package service

import (
	"context"
	"strings"
	"time"

	"aura-be/internal/dto"
	"aura-be/internal/entity"
	"aura-be/internal/pkg/apperror"
	"aura-be/internal/pkg/logger"
	"aura-be/internal/pkg/mailer"
	"aura-be/internal/repository/specification"
	"aura-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IUserService interface {
	GetProfile(ctx context.Context, requesterId, userId uuid.UUID) (*dto.UserDTO, error)
	UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserDTO, error)
	DeleteAccount(ctx context.Context, userId uuid.UUID) error
	BlockUser(ctx context.Context, blockerId, targetId uuid.UUID) error
	ReportUser(ctx context.Context, reporterId, targetId uuid.UUID, req *dto.ReportRequest) error
	UpdatePreferences(ctx context.Context, userId uuid.UUID, req *dto.UpdatePreferencesRequest) (*dto.PreferenceResponse, error)

	ChangeUsername(ctx context.Context, userId uuid.UUID, req *dto.ChangeUsernameRequest) (*dto.ChangeUsernameResponse, error)
	ChangeEmail(ctx context.Context, userId uuid.UUID, req *dto.ChangeEmailRequest) (*dto.ChangeEmailResponse, error)
	ChangePhoto(ctx context.Context, userId uuid.UUID, req *dto.ChangePhotoRequest) (*dto.ChangePhotoResponse, error)
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
	mail       mailer.Dispatcher
	clientURL  string
	log        logger.ILogger
}

func NewUserService(uowFactory unitofwork.RepositoryFactory, mail mailer.Dispatcher, clientURL string, log logger.ILogger) IUserService {
	return &userService{
		uowFactory: uowFactory,
		mail:       mail,
		clientURL:  clientURL,
		log:        log,
	}
}

func (s *userService) findLive(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (*entity.User, error) {
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, apperror.FromStorage(err, "User not found")
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}
	return user, nil
}

// GetProfile hides the email address from everyone but its owner.
func (s *userService) GetProfile(ctx context.Context, requesterId, userId uuid.UUID) (*dto.UserDTO, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := s.findLive(ctx, uow, userId)
	if err != nil {
		return nil, err
	}
	res := toUserDTO(user)
	if requesterId != userId {
		res.Email = ""
	}
	return &res, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserDTO, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	fields := map[string]interface{}{}
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if err := s.ensureUsernameFree(ctx, uow, userId, username); err != nil {
			return nil, err
		}
		fields["username"] = username
	}
	if req.Bio != nil {
		fields["bio"] = *req.Bio
	}
	if req.MoodPreference != nil {
		// empty clears the preference
		if pref := strings.TrimSpace(*req.MoodPreference); pref != "" {
			fields["mood_preference"] = pref
		} else {
			fields["mood_preference"] = nil
		}
	}
	if req.ProfilePic != nil {
		fields["profile_pic"] = strings.TrimSpace(*req.ProfilePic)
	}

	if len(fields) > 0 {
		if err := uow.UserRepository().UpdateFields(ctx, userId, fields); err != nil {
			return nil, apperror.FromStorage(err, "User not found")
		}
	}

	user, err := s.findLive(ctx, uow, userId)
	if err != nil {
		return nil, err
	}
	res := toUserDTO(user)
	return &res, nil
}

// DeleteAccount soft-deletes the user and revokes every session atomically.
func (s *userService) DeleteAccount(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return apperror.FromStorage(err, "")
	}
	defer uow.Rollback()

	if err := uow.UserRepository().SoftDelete(ctx, userId); err != nil {
		return apperror.FromStorage(err, "User not found")
	}
	revoked, err := uow.SessionRepository().RevokeAllForUser(ctx, userId, time.Now())
	if err != nil {
		return apperror.FromStorage(err, "")
	}
	if err := uow.Commit(); err != nil {
		return apperror.FromStorage(err, "")
	}

	s.log.Info("USER", "Account deleted", map[string]interface{}{"user_id": userId, "sessions_revoked": revoked})
	return nil
}

func (s *userService) BlockUser(ctx context.Context, blockerId, targetId uuid.UUID) error {
	if blockerId == targetId {
		return apperror.InvalidInput("Cannot block self")
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.findLive(ctx, uow, targetId); err != nil {
		return err
	}
	err := uow.UserRepository().CreateBlock(ctx, &entity.UserBlock{BlockerId: blockerId, BlockedId: targetId})
	return apperror.FromStorage(err, "")
}

func (s *userService) ReportUser(ctx context.Context, reporterId, targetId uuid.UUID, req *dto.ReportRequest) error {
	if reporterId == targetId {
		return apperror.InvalidInput("Cannot report self")
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.findLive(ctx, uow, targetId); err != nil {
		return err
	}
	err := uow.UserRepository().CreateReport(ctx, &entity.UserReport{
		ReporterId: reporterId,
		ReportedId: targetId,
		Reason:     req.Reason,
	})
	return apperror.FromStorage(err, "")
}

// UpdatePreferences upserts the row; omitted fields keep their stored value
// (or the default on first write).
func (s *userService) UpdatePreferences(ctx context.Context, userId uuid.UUID, req *dto.UpdatePreferencesRequest) (*dto.PreferenceResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	pref := entity.DefaultPreference(userId)
	var columns []string
	if req.PrivacyLevel != nil {
		pref.PrivacyLevel = *req.PrivacyLevel
		columns = append(columns, "privacy_level")
	}
	if req.Notifications != nil {
		pref.Notifications = req.Notifications
		columns = append(columns, "notifications")
	}
	if req.MoodEnabled != nil {
		pref.MoodEnabled = *req.MoodEnabled
		columns = append(columns, "mood_enabled")
	}

	if err := uow.PreferenceRepository().Upsert(ctx, pref, columns); err != nil {
		return nil, apperror.FromStorage(err, "")
	}

	return &dto.PreferenceResponse{
		UserId:        pref.UserId,
		PrivacyLevel:  pref.PrivacyLevel,
		Notifications: pref.Notifications,
		MoodEnabled:   pref.MoodEnabled,
		UpdatedAt:     pref.UpdatedAt,
	}, nil
}

func (s *userService) ChangeUsername(ctx context.Context, userId uuid.UUID, req *dto.ChangeUsernameRequest) (*dto.ChangeUsernameResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	username := strings.TrimSpace(req.Username)
	if err := s.ensureUsernameFree(ctx, uow, userId, username); err != nil {
		return nil, err
	}
	if err := uow.UserRepository().UpdateFields(ctx, userId, map[string]interface{}{"username": username}); err != nil {
		return nil, apperror.FromStorage(err, "User not found")
	}
	return &dto.ChangeUsernameResponse{Id: userId, Username: username}, nil
}

// ChangeEmail clears verification and mails a fresh token to the new address.
func (s *userService) ChangeEmail(ctx context.Context, userId uuid.UUID, req *dto.ChangeEmailRequest) (*dto.ChangeEmailResponse, error) {
	email := normalizeEmail(req.Email)
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.UserRepository().FindOneUnscoped(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	if existing != nil && existing.Id != userId {
		return nil, apperror.Conflict("Email already in use")
	}

	token := &entity.EmailVerificationToken{
		UserId:    userId,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(EmailVerificationTTL),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	defer uow.Rollback()

	fields := map[string]interface{}{"email": email, "verified_at": nil}
	if err := uow.UserRepository().UpdateFields(ctx, userId, fields); err != nil {
		return nil, apperror.FromStorage(err, "User not found")
	}
	if err := uow.UserRepository().CreateEmailVerificationToken(ctx, token); err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	if err := uow.Commit(); err != nil {
		return nil, apperror.FromStorage(err, "")
	}

	sent := true
	if s.mail == nil {
		sent = false
	} else if err := s.mail.Enqueue(ctx, mailer.VerificationMail(email, s.clientURL, token.Token)); err != nil {
		s.log.Warn("USER", "Failed to enqueue verification mail", map[string]interface{}{"error": err.Error()})
		sent = false
	}
	return &dto.ChangeEmailResponse{Email: email, VerifySent: sent}, nil
}

func (s *userService) ChangePhoto(ctx context.Context, userId uuid.UUID, req *dto.ChangePhotoRequest) (*dto.ChangePhotoResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	pic := strings.TrimSpace(req.ProfilePic)
	if err := uow.UserRepository().UpdateFields(ctx, userId, map[string]interface{}{"profile_pic": pic}); err != nil {
		return nil, apperror.FromStorage(err, "User not found")
	}
	return &dto.ChangePhotoResponse{Id: userId, ProfilePic: pic}, nil
}

func (s *userService) ensureUsernameFree(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, username string) error {
	if !usernamePattern.MatchString(username) {
		return apperror.InvalidInput("Invalid username")
	}
	existing, err := uow.UserRepository().FindOneUnscoped(ctx, specification.ByUsername{Username: username})
	if err != nil {
		return apperror.FromStorage(err, "")
	}
	if existing != nil && existing.Id != userId {
		return apperror.Conflict("Username already taken")
	}
	return nil
}
