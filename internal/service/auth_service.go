package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"aura-be/internal/dto"
	"aura-be/internal/entity"
	"aura-be/internal/pkg/apperror"
	"aura-be/internal/pkg/logger"
	"aura-be/internal/pkg/mailer"
	"aura-be/internal/repository/specification"
	"aura-be/internal/repository/unitofwork"
	"aura-be/pkg/events"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	BcryptCost           = 12
	EmailVerificationTTL = 60 * time.Minute
	PasswordResetTTL     = 30 * time.Minute
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	VerifyEmail(ctx context.Context, req *dto.VerifyEmailRequest) error
	Login(ctx context.Context, req *dto.LoginRequest, userAgent string) (*dto.LoginResponse, error)
	Logout(ctx context.Context, sessionId uuid.UUID) error
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
}

type authService struct {
	uowFactory unitofwork.RepositoryFactory
	sessions   ISessionService
	mail       mailer.Dispatcher
	publisher  events.Publisher
	clientURL  string
	log        logger.ILogger
	bcryptCost int
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	sessions ISessionService,
	mail mailer.Dispatcher,
	publisher events.Publisher,
	clientURL string,
	log logger.ILogger,
) IAuthService {
	return &authService{
		uowFactory: uowFactory,
		sessions:   sessions,
		mail:       mail,
		publisher:  publisher,
		clientURL:  clientURL,
		log:        log,
		bcryptCost: BcryptCost,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	email := normalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)
	if !usernamePattern.MatchString(username) {
		return nil, apperror.InvalidInput("Invalid username")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	// 1. Email and username are unique across live and deleted accounts
	byEmail, err := uow.UserRepository().FindOneUnscoped(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, apperror.FromStorage(err, "User not found")
	}
	byName, err := uow.UserRepository().FindOneUnscoped(ctx, specification.ByUsername{Username: username})
	if err != nil {
		return nil, apperror.FromStorage(err, "User not found")
	}
	if byEmail != nil || byName != nil {
		return nil, apperror.Conflict("Email or username already in use")
	}

	// 2. Hash password
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	hashStr := string(hash)

	user := &entity.User{
		Id:           uuid.New(),
		Email:        email,
		Username:     username,
		PasswordHash: &hashStr,
	}
	verification := &entity.EmailVerificationToken{
		UserId:    user.Id,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(EmailVerificationTTL),
	}

	// 3. User and token together
	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	defer uow.Rollback()

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	if err := uow.UserRepository().CreateEmailVerificationToken(ctx, verification); err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	if err := uow.Commit(); err != nil {
		return nil, apperror.FromStorage(err, "")
	}

	// 4. Side effects never fail the request
	s.enqueueMail(ctx, mailer.VerificationMail(user.Email, s.clientURL, verification.Token))
	publishEvent(ctx, s.publisher, s.log, events.UserRegistered(user.Id, user.Email, user.Username))

	s.log.Info("AUTH", "User registered", map[string]interface{}{"user_id": user.Id})
	return &dto.RegisterResponse{Id: user.Id, Email: user.Email, Username: user.Username}, nil
}

func (s *authService) VerifyEmail(ctx context.Context, req *dto.VerifyEmailRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	token, err := uow.UserRepository().FindEmailVerificationToken(ctx, strings.TrimSpace(req.Token))
	if err != nil {
		return apperror.FromStorage(err, "Invalid token")
	}
	if token == nil {
		return apperror.InvalidInput("Invalid token")
	}
	if err := checkToken(token.UsedAt, token.ExpiresAt); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return apperror.FromStorage(err, "")
	}
	defer uow.Rollback()

	now := time.Now()
	if err := uow.UserRepository().MarkEmailVerificationTokenUsed(ctx, token.Id, now); err != nil {
		return consumeErr(err)
	}
	if err := uow.UserRepository().UpdateFields(ctx, token.UserId, map[string]interface{}{"verified_at": now}); err != nil {
		return apperror.FromStorage(err, "User not found")
	}
	return apperror.FromStorage(uow.Commit(), "")
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest, userAgent string) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// 1. Deleted accounts are looked up too so they get a distinct answer
	user, err := uow.UserRepository().FindOneUnscoped(ctx, specification.ByEmail{Email: normalizeEmail(req.Email)})
	if err != nil {
		return nil, apperror.FromStorage(err, "Invalid credentials")
	}
	if user == nil {
		return nil, apperror.Unauthorized("Invalid credentials")
	}
	if user.IsDeleted() {
		return nil, apperror.Unauthorized("Account deleted")
	}

	// 2. Social-only accounts have no password
	if user.PasswordHash == nil {
		return nil, apperror.Unauthorized("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.Unauthorized("Invalid credentials")
	}

	// 3. Session + token
	issued, err := s.sessions.Issue(ctx, user.Id)
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.publisher, s.log, events.UserLogin(user.Id, issued.Session.Id, userAgent))

	return &dto.LoginResponse{
		AccessToken: issued.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   issued.ExpiresAt,
		User:        toUserDTO(user),
	}, nil
}

func (s *authService) Logout(ctx context.Context, sessionId uuid.UUID) error {
	return s.sessions.Revoke(ctx, sessionId)
}

func (s *authService) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: normalizeEmail(req.Email)})
	if err != nil || user == nil {
		// Don't leak exists
		if err != nil {
			s.log.Warn("AUTH", "Forgot password lookup failed", map[string]interface{}{"error": err.Error()})
		}
		return nil
	}

	reset := &entity.PasswordResetToken{
		UserId:    user.Id,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(PasswordResetTTL),
	}
	if err := uow.UserRepository().CreatePasswordResetToken(ctx, reset); err != nil {
		s.log.Error("AUTH", "Failed to store reset token", map[string]interface{}{"error": err})
		return nil
	}

	s.enqueueMail(ctx, mailer.PasswordResetMail(user.Email, s.clientURL, reset.Token))
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	token, err := uow.UserRepository().FindPasswordResetToken(ctx, strings.TrimSpace(req.Token))
	if err != nil {
		return apperror.FromStorage(err, "Invalid token")
	}
	if token == nil {
		return apperror.InvalidInput("Invalid token")
	}
	if err := checkToken(token.UsedAt, token.ExpiresAt); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return apperror.Internal(err)
	}

	if err := uow.Begin(ctx); err != nil {
		return apperror.FromStorage(err, "")
	}
	defer uow.Rollback()

	if err := uow.UserRepository().MarkPasswordResetTokenUsed(ctx, token.Id, time.Now()); err != nil {
		return consumeErr(err)
	}
	if err := uow.UserRepository().UpdateFields(ctx, token.UserId, map[string]interface{}{"password_hash": string(hash)}); err != nil {
		return apperror.FromStorage(err, "User not found")
	}
	return apperror.FromStorage(uow.Commit(), "")
}

func (s *authService) enqueueMail(ctx context.Context, m mailer.Mail) {
	if s.mail == nil {
		return
	}
	if err := s.mail.Enqueue(ctx, m); err != nil {
		s.log.Warn("AUTH", "Failed to enqueue mail", map[string]interface{}{"subject": m.Subject, "error": err.Error()})
	}
}

// checkToken applies the shared one-time token rules.
func checkToken(usedAt *time.Time, expiresAt time.Time) error {
	if usedAt != nil {
		return apperror.InvalidInput("Token already used")
	}
	if time.Now().After(expiresAt) {
		return apperror.InvalidInput("Token expired")
	}
	return nil
}

// consumeErr maps a lost race on marking a token used.
func consumeErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.InvalidInput("Token already used")
	}
	return apperror.FromStorage(err, "")
}
