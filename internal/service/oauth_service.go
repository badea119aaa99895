package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"aura-be/internal/config"
	"aura-be/internal/dto"
	"aura-be/internal/entity"
	"aura-be/internal/pkg/apperror"
	"aura-be/internal/pkg/logger"
	"aura-be/internal/repository/specification"
	"aura-be/internal/repository/unitofwork"
	"aura-be/pkg/events"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	ProviderGoogle       = "google"
	googleUserInfoURL    = "https://www.googleapis.com/oauth2/v2/userinfo"
	maxUsernameAttempts  = 5
	generatedNameMaxBase = 24
)

type IOAuthService interface {
	// GetLoginURL returns the provider consent URL and the state it embeds.
	GetLoginURL(provider string) (url, state string, err error)
	HandleCallback(ctx context.Context, provider, code, userAgent string) (*dto.LoginResponse, error)
}

type GoogleProfile struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

type oauthService struct {
	uowFactory  unitofwork.RepositoryFactory
	sessions    ISessionService
	publisher   events.Publisher
	log         logger.ILogger
	googleConf  *oauth2.Config
	userInfoURL string
}

func NewOAuthService(
	uowFactory unitofwork.RepositoryFactory,
	sessions ISessionService,
	publisher events.Publisher,
	cfg config.OAuthConfig,
	log logger.ILogger,
) IOAuthService {
	conf := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	return &oauthService{
		uowFactory:  uowFactory,
		sessions:    sessions,
		publisher:   publisher,
		log:         log,
		googleConf:  conf,
		userInfoURL: googleUserInfoURL,
	}
}

func (s *oauthService) provider(name string) (*oauth2.Config, error) {
	if name != ProviderGoogle {
		return nil, apperror.InvalidInput("Unsupported provider")
	}
	if s.googleConf.ClientID == "" {
		return nil, apperror.NotImplemented("Social login is not configured")
	}
	return s.googleConf, nil
}

func (s *oauthService) GetLoginURL(provider string) (string, string, error) {
	conf, err := s.provider(provider)
	if err != nil {
		return "", "", err
	}

	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", "", apperror.Internal(err)
	}
	state := base64.RawURLEncoding.EncodeToString(b)

	return conf.AuthCodeURL(state), state, nil
}

func (s *oauthService) HandleCallback(ctx context.Context, provider, code, userAgent string) (*dto.LoginResponse, error) {
	conf, err := s.provider(provider)
	if err != nil {
		return nil, err
	}

	// 1. Exchange code for token
	token, err := conf.Exchange(ctx, code)
	if err != nil {
		s.log.Warn("OAUTH", "Code exchange failed", map[string]interface{}{"provider": provider, "error": err.Error()})
		return nil, apperror.Unauthorized("Social login failed")
	}

	// 2. Profile
	profile, err := s.fetchProfile(ctx, conf.Client(ctx, token))
	if err != nil {
		s.log.Warn("OAUTH", "Failed getting user info", map[string]interface{}{"provider": provider, "error": err.Error()})
		return nil, apperror.Unauthorized("Social login failed")
	}

	// 3. Find or create the local account
	user, err := s.resolveUser(ctx, provider, profile)
	if err != nil {
		return nil, err
	}

	// 4. Session + token
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

func (s *oauthService) fetchProfile(ctx context.Context, client *http.Client) (*GoogleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var profile GoogleProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, err
	}
	if profile.ID == "" || profile.Email == "" {
		return nil, fmt.Errorf("userinfo missing id or email")
	}
	return &profile, nil
}

// resolveUser links the provider identity to an account, creating a verified
// one on first sight.
func (s *oauthService) resolveUser(ctx context.Context, provider string, profile *GoogleProfile) (*entity.User, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.UserRepository()

	var user *entity.User
	link, err := repo.FindUserProvider(ctx, provider, profile.ID)
	if err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	if link != nil {
		user, err = repo.FindOneUnscoped(ctx, specification.ByID{ID: link.UserId})
	} else {
		user, err = repo.FindOneUnscoped(ctx, specification.ByEmail{Email: normalizeEmail(profile.Email)})
	}
	if err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	if user != nil && user.IsDeleted() {
		return nil, apperror.Unauthorized("Account deleted")
	}

	if user == nil {
		username, err := s.availableUsername(ctx, repo, profile.Email)
		if err != nil {
			return nil, err
		}
		now := time.Now()
		user = &entity.User{
			Id:         uuid.New(),
			Email:      normalizeEmail(profile.Email),
			Username:   username,
			ProfilePic: profile.Picture,
			VerifiedAt: &now,
		}
		if err := repo.Create(ctx, user); err != nil {
			return nil, apperror.FromStorage(err, "")
		}
		s.log.Info("OAUTH", "User created from social login", map[string]interface{}{"user_id": user.Id, "provider": provider})
		publishEvent(ctx, s.publisher, s.log, events.UserRegistered(user.Id, user.Email, user.Username))
	}

	err = repo.SaveUserProvider(ctx, &entity.UserProvider{
		UserId:         user.Id,
		ProviderName:   provider,
		ProviderUserId: profile.ID,
		AvatarURL:      profile.Picture,
	})
	if err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	return user, nil
}

type usernameLookup interface {
	FindOneUnscoped(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
}

func (s *oauthService) availableUsername(ctx context.Context, repo usernameLookup, email string) (string, error) {
	base := usernameBase(email)
	candidate := base
	for i := 0; i < maxUsernameAttempts; i++ {
		existing, err := repo.FindOneUnscoped(ctx, specification.ByUsername{Username: candidate})
		if err != nil {
			return "", apperror.FromStorage(err, "")
		}
		if existing == nil {
			return candidate, nil
		}
		suffix := make([]byte, 2)
		if _, err := rand.Read(suffix); err != nil {
			return "", apperror.Internal(err)
		}
		candidate = base + "_" + hex.EncodeToString(suffix)
	}
	return "", apperror.Conflict("Could not allocate a username")
}

// usernameBase derives a valid username stem from an email local part.
func usernameBase(email string) string {
	local, _, _ := strings.Cut(strings.ToLower(email), "@")
	var b strings.Builder
	for _, r := range local {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '.' {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if len(name) > generatedNameMaxBase {
		name = name[:generatedNameMaxBase]
	}
	for len(name) < 3 {
		name += "_"
	}
	return name
}
