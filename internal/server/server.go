// Package server contains the HTTP handlers for the community engagement API.
package server

import (
	"context"
	"log"
	"time"

	_ "agora/docs" // swagger docs
	"agora/internal/cache"
	"agora/internal/config"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/notifications"
	"agora/internal/repository"
	"agora/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	notifier       *notifications.Notifier

	userService       *service.UserService
	communityService  *service.CommunityService
	membershipService *service.MembershipService
	postService       *service.PostService
	engagementService *service.EngagementService
	feedService       *service.FeedService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil, in which case community reads are not cached.
// A nil publisher drops activity events.
func NewServerWithDeps(
	cfg *config.Config,
	db *gorm.DB,
	redisClient *redis.Client,
	publisher service.ActivityPublisher,
) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	communityRepo := repository.NewCommunityRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	followRepo := repository.NewFollowRepository(db)

	store := cache.NewStore(redisClient, "community")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("agora-api"),
	}
	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
	}

	server.userService = service.NewUserService(service.UserRepositories{
		Users:       userRepo,
		Follows:     followRepo,
		Posts:       postRepo,
		Memberships: membershipRepo,
		Activities:  activityRepo,
	}, cfg.JWTSecret, cfg.JWTTTL())
	server.communityService = service.NewCommunityService(communityRepo, store, cfg.CommunityCacheTTL())
	server.membershipService = service.NewMembershipService(userRepo, communityRepo, membershipRepo, store)
	server.postService = service.NewPostService(postRepo, communityRepo, membershipRepo, userRepo, store)
	server.engagementService = service.NewEngagementService(postRepo, activityRepo, commentRepo, store, publisher)
	server.feedService = service.NewFeedService(postRepo, membershipRepo, followRepo, userRepo)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	// Propagates request and user IDs into the slog context
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}
	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	auth := middleware.AuthRequired(s.config.JWTSecret)

	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "register"), s.Register)
	authRoutes.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	authRoutes.Get("/profile", auth, s.GetCurrentUser)

	communities := api.Group("/communities")
	communities.Get("/", s.ListCommunities)
	communities.Post("/", auth, middleware.RateLimit(
		s.redis, 5, time.Hour, "create_community"), s.CreateCommunity)
	// Specific /:name/:resource routes before the generic /:name route
	communities.Post("/:name/members", auth, s.JoinCommunity)
	communities.Delete("/:name/members", auth, s.LeaveCommunity)
	communities.Put("/:name/members/:username", auth, s.UpdateMemberRole)
	communities.Get("/:name", s.GetCommunity)

	posts := api.Group("/posts")
	posts.Post("/", auth, middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Post("/:slug/upvote", auth, middleware.RateLimit(
		s.redis, 60, time.Minute, "vote"), s.Upvote)
	posts.Post("/:slug/downvote", auth, middleware.RateLimit(
		s.redis, 60, time.Minute, "vote"), s.Downvote)
	posts.Post("/:slug/comments", auth, middleware.RateLimit(
		s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	posts.Get("/:slug", s.GetPost)
	posts.Delete("/:slug", auth, s.DeletePost)

	api.Delete("/comments/:id", auth, s.DeleteComment)

	users := api.Group("/users", auth)
	users.Put("/me", s.UpdateProfile)
	users.Get("/me/activities", s.ListMyActivities)
	users.Get("/me/memberships", s.ListMyMemberships)
	users.Get("/me/following", s.ListFollowing)
	users.Get("/me/followers", s.ListFollowers)
	users.Post("/:username/follow", middleware.RateLimit(
		s.redis, 30, time.Minute, "follow"), s.Follow)
	users.Delete("/:username/follow", s.Unfollow)
	users.Get("/:username", s.GetUser)

	api.Get("/feed", auth, s.GetFeed)
	api.Get("/recommendations", auth, s.GetRecommendations)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Without a Redis client the
// cache is disabled and Redis is not part of readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// NewApp builds a Fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "Agora API",
		BodyLimit: 1 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.NewApp()

	if s.notifier != nil {
		err := s.notifier.StartActivitySubscriber(s.shutdownCtx, func(channel string, event models.ActivityEvent) {
			middleware.Logger.Debug("activity event",
				"channel", channel,
				"kind", event.Kind,
				"post_id", event.PostID,
				"user_id", event.UserID,
			)
		})
		if err != nil {
			log.Printf("failed to start activity subscriber: %v", err)
		}
	}

	log.Printf("Server starting on port %s...", s.config.Port)
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
