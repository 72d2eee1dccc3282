package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/embercortex/embercortex/internal/api/handler"
	customMiddleware "github.com/embercortex/embercortex/internal/api/middleware"
	"github.com/embercortex/embercortex/internal/config"
	"github.com/embercortex/embercortex/internal/repository/redis"
	"github.com/embercortex/embercortex/internal/repository/sqlite"
	"github.com/embercortex/embercortex/internal/service"
	"github.com/embercortex/embercortex/internal/upstream/completion"
	"github.com/embercortex/embercortex/internal/upstream/health"
	"github.com/embercortex/embercortex/internal/upstream/rag"
)

// NewRouter creates and configures the HTTP router. redisClient may be
// nil; the collection cache and rate limiter are then disabled.
func NewRouter(cfg *config.Config, db *sqlite.DB, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"X-Request-ID", "X-Session-ID"},
		MaxAge:         300,
	}))

	// Upstream clients
	completionClient := completion.NewClient(
		cfg.Upstream.LLMAPI,
		cfg.Chat.DefaultModel,
		cfg.Chat.Temperature,
		cfg.Chat.MaxTokens,
		completion.WithTimeouts(cfg.Upstream.ConnectTimeout, cfg.Upstream.RequestTimeout),
	)
	ragClient := rag.NewClient(cfg.Upstream.RAGAPI, cfg.Upstream.ConnectTimeout, cfg.Upstream.RequestTimeout)
	healthChecker := health.NewChecker(cfg.Upstream.LLMAPI, cfg.Upstream.RAGAPI, cfg.Upstream.EmbedAPI)

	// Repositories
	messageRepo := sqlite.NewMessageRepository(db)
	settingRepo := sqlite.NewSettingRepository(db)
	collectionRepo := sqlite.NewCollectionRepository(db)

	// Optional redis-backed pieces
	var collectionCache *redis.CollectionCache
	var rateLimiter *redis.RateLimiter
	if redisClient != nil {
		collectionCache = redis.NewCollectionCache(redisClient)
		rateLimiter = redis.NewRateLimiter(
			redisClient,
			cfg.Security.RateLimit.RequestsPerMinute,
			cfg.Security.RateLimit.Burst,
		)
	}

	// Services
	notifier := service.NewNotifier()
	chatService := service.NewChatService(
		cfg.Chat,
		messageRepo,
		service.NewCompletionClient(completionClient),
		ragClient,
		notifier,
	)
	collectionService := service.NewCollectionService(ragClient, collectionCache, collectionRepo)

	// Handlers
	chatHandler := handler.NewChatHandler(chatService)
	sessionHandler := handler.NewSessionHandler(chatService)
	collectionHandler := handler.NewCollectionHandler(collectionService)
	settingHandler := handler.NewSettingHandler(settingRepo)
	eventsHandler := handler.NewEventsHandler(notifier)

	r.Route("/api/v1", func(r chi.Router) {
		// Health
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(db))
		r.Get("/health/services", handler.ServiceHealth(healthChecker))

		// Chat
		r.Group(func(r chi.Router) {
			if rateLimiter != nil {
				r.Use(customMiddleware.NewRateLimitMiddleware(rateLimiter).Limit)
			}
			r.Post("/chat", chatHandler.Submit)
		})

		// Sessions
		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", sessionHandler.List)
			r.Get("/{sessionID}/history", sessionHandler.GetHistory)
			r.Delete("/{sessionID}", sessionHandler.Delete)
		})

		// Collections
		r.Get("/collections", collectionHandler.List)

		// Settings
		r.Route("/settings/{key}", func(r chi.Router) {
			r.Get("/", settingHandler.Get)
			r.Put("/", settingHandler.Set)
		})

		// Sidebar refresh notifications
		r.Get("/events", eventsHandler.Stream)
	})

	return r
}
