package bootstrap

import (
	"context"
	"net/http"
	"time"

	"aura-be/internal/config"
	"aura-be/internal/controller"
	"aura-be/internal/pkg/logger"
	"aura-be/internal/pkg/mailer"
	"aura-be/internal/pkg/serverutils"
	"aura-be/internal/repository/cache"
	"aura-be/internal/repository/unitofwork"
	"aura-be/internal/service"
	"aura-be/internal/websocket"
	"aura-be/pkg/llm/factory"
	"aura-be/pkg/moodai"

	pktNats "aura-be/pkg/nats"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController    controller.IAuthController
	OAuthController   controller.IOAuthController
	UserController    controller.IUserController
	ProfileController controller.IProfileController
	PostController    controller.IPostController
	SearchController  controller.ISearchController
	MoodController    controller.IMoodController
	SocialController  controller.ISocialController
	DMController      controller.IDMController

	// Background workers, run and closed by main.go
	MailDispatcher mailer.Dispatcher
	RateLimiter    *serverutils.UserRateLimiter
	WebSocketHub   *websocket.Hub

	Logger logger.ILogger

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(logger.Options{
		FilePath: cfg.App.LogFilePath,
		IsProd:   cfg.IsProduction(),
		Verbose:  cfg.Verbose(),
	})

	// 2. Mail
	var sender mailer.Sender
	if cfg.SMTP.Host == "" {
		sysLogger.Warn("BOOT", "SMTP_HOST not set, mail is logged instead of sent", nil)
		sender = mailer.NewLogSender(sysLogger)
	} else {
		sender = mailer.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Email, cfg.SMTP.Password, cfg.SMTP.From, sysLogger)
	}
	mailDispatcher := mailer.NewDispatcher(mailer.NewGoChannel(), sender, sysLogger)

	// 3. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		sysLogger.Warn("BOOT", "NATS unavailable, domain events are dropped", map[string]interface{}{"error": err})
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		sysLogger.Warn("BOOT", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err})
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	trendingCache, err := cache.NewTrendingCache(pingCtx, rdb, cfg.App.TrendingCacheTTL)
	cancel()
	if err != nil {
		sysLogger.Warn("BOOT", "Redis unavailable, trending cache is in-process", map[string]interface{}{"error": err})
	}

	// WebSocket Hub, fanned out across instances through Redis when it answers
	var hubRedis *redis.Client
	if err == nil {
		hubRedis = rdb
	}
	wsHub := websocket.NewHub(hubRedis, sysLogger)

	// 4. Classification
	httpClient := &http.Client{Timeout: cfg.Ai.Timeout}
	primary, err := factory.NewLLMProvider(factory.ProviderGemini, cfg.Ai.GeminiAPIKey, cfg.Ai.GeminiBaseURL, cfg.Ai.GeminiModel, httpClient)
	if err != nil {
		sysLogger.Error("BOOT", "Failed to build primary LLM provider", map[string]interface{}{"error": err})
	}
	fallback, err := factory.NewLLMProvider(factory.ProviderOpenAI, cfg.Ai.GeminiAPIKey, cfg.Ai.OpenAICompatURL(), cfg.Ai.GeminiModel, httpClient)
	if err != nil {
		sysLogger.Error("BOOT", "Failed to build fallback LLM provider", map[string]interface{}{"error": err})
	}
	classifier := moodai.New(moodai.Config{
		Primary:    primary,
		Fallback:   fallback,
		Observer:   service.NewClassifierObserver(sysLogger, cfg.Verbose()),
		Configured: cfg.Ai.GeminiAPIKey != "",
		Timeout:    cfg.Ai.Timeout,
	})
	if cfg.Ai.GeminiAPIKey == "" {
		sysLogger.Warn("BOOT", "GEMINI_API_KEY not set, mood analysis will report unavailable", nil)
	}

	// 5. Services
	sessionService := service.NewSessionService(uowFactory, cfg.Auth.JWTSecret, cfg.Auth.JWTExpires)
	authService := service.NewAuthService(uowFactory, sessionService, mailDispatcher, natsPub, cfg.App.ClientURL, sysLogger)
	oauthService := service.NewOAuthService(uowFactory, sessionService, natsPub, cfg.OAuth, sysLogger)
	userService := service.NewUserService(uowFactory, mailDispatcher, cfg.App.ClientURL, sysLogger)
	postService := service.NewPostService(uowFactory, trendingCache, natsPub, sysLogger)
	searchService := service.NewSearchService(uowFactory)
	socialService := service.NewSocialService(uowFactory, natsPub, sysLogger)
	dmService := service.NewDMService(uowFactory, wsHub, natsPub, sysLogger)
	moodService := service.NewMoodService(uowFactory, service.NewMoodGate(uowFactory), classifier, postService, sysLogger)

	authMiddleware := serverutils.AuthMiddleware(sessionService)
	limiter := serverutils.NewUserRateLimiter(cfg.Ai.MoodRateRPS, cfg.Ai.MoodRateBurst)

	// 6. Controllers
	return &Container{
		AuthController:    controller.NewAuthController(authService, authMiddleware),
		OAuthController:   controller.NewOAuthController(oauthService, cfg.App.ClientURL, sysLogger),
		UserController:    controller.NewUserController(userService, authMiddleware),
		ProfileController: controller.NewProfileController(userService, authMiddleware),
		PostController:    controller.NewPostController(postService, authMiddleware),
		SearchController:  controller.NewSearchController(searchService, authMiddleware),
		MoodController:    controller.NewMoodController(moodService, authMiddleware, limiter),
		SocialController:  controller.NewSocialController(socialService, authMiddleware),
		DMController:      controller.NewDMController(dmService, authMiddleware, sessionService, wsHub, sysLogger),

		MailDispatcher: mailDispatcher,
		RateLimiter:    limiter,
		WebSocketHub:   wsHub,
		Logger:         sysLogger,

		closers: []func(){
			natsPub.Close,
			func() { _ = rdb.Close() },
			func() { _ = mailDispatcher.Close() },
			func() { _ = sysLogger.Sync() },
		},
	}
}

// Close releases connections in creation order.
func (c *Container) Close() {
	for _, fn := range c.closers {
		fn()
	}
}
