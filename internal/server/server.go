// Package server contains the HTTP layer: routing, session handling, and the
// HTML page handlers.
package server

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"inkwell/internal/bootstrap"
	"inkwell/internal/config"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/template/html/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

//go:embed all:views
var viewsFS embed.FS

// The Prometheus collectors live in the default registry, so they must be
// created exactly once no matter how many Server values exist (tests build
// one per case).
var (
	promOnce sync.Once
	promInst *fiberprometheus.FiberPrometheus
)

func promMetrics() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promInst = middleware.InitMetrics("inkwell")
	})
	return promInst
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	sessions       *session.Store
	promMiddleware *fiberprometheus.FiberPrometheus

	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository

	postService    *service.PostService
	commentService *service.CommentService
	userService    *service.UserService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(cfg)
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests use this with an in-memory database and no Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	images := service.NewDiskImageStore(cfg.UploadDir, cfg.MaxUploadSizeMB)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: promMetrics(),
		userRepo:       userRepo,
		postRepo:       postRepo,
		commentRepo:    commentRepo,
		postService:    service.NewPostService(postRepo, images),
		commentService: service.NewCommentService(commentRepo, postRepo),
		userService:    service.NewUserService(userRepo),
	}

	s.sessions = session.New(session.Config{
		KeyLookup:      "cookie:inkwell_session",
		Expiration:     7 * 24 * time.Hour,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		CookieSecure:   cfg.Env == "production" || cfg.Env == "prod",
	})

	return s, nil
}

// BuildApp constructs the Fiber app with the template engine, middleware, and
// routes. Start uses it; tests call it directly with app.Test.
func (s *Server) BuildApp() *fiber.App {
	views, err := fs.Sub(viewsFS, "views")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(views), ".html")

	app := fiber.New(fiber.Config{
		AppName:      "Inkwell",
		Views:        engine,
		ViewsLayout:  "layouts/main",
		ErrorHandler: s.handleError,
		// One MB of headroom over the image cap for the rest of the form.
		BodyLimit: (s.config.MaxUploadSizeMB + 1) * 1024 * 1024,
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Propagate request ID and user ID into the request context for logging
	app.Use(middleware.ContextMiddleware())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// Browser forms only speak GET and POST; a hidden _method field upgrades
	// a POST to PUT or DELETE before routing.
	app.Use(methodOverride())

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).
				SendString("Too many requests, please try again later.")
		},
	}))

	// Uploaded featured images
	app.Static("/uploads", s.config.UploadDir)
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health", s.HealthCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Public pages
	app.Get("/", s.Index)
	app.Get("/posts", s.Index)

	// Auth pages
	app.Get("/signup", s.RequireGuest, s.SignupForm)
	app.Post("/signup", s.RequireGuest, middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	app.Get("/login", s.RequireGuest, s.LoginForm)
	app.Post("/login", s.RequireGuest, middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	app.Post("/logout", s.Logout)

	// Post management, author only. AuthRequired hangs on each route instead
	// of the group so the public show page below stays unauthenticated.
	// /posts/create registers before the generic /posts/:slug page so it is
	// not swallowed as a slug.
	posts := app.Group("/posts")
	posts.Get("/create", s.AuthRequired, s.NewPost)
	posts.Post("/", s.AuthRequired, middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Get("/:id/edit", s.AuthRequired, s.EditPost)
	posts.Put("/:id", s.AuthRequired, s.UpdatePost)
	posts.Delete("/:id", s.AuthRequired, s.DeletePost)

	// Comments
	posts.Post("/:id/comments", s.AuthRequired, middleware.RateLimit(
		s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	app.Delete("/comments/:id", s.AuthRequired, s.DeleteComment)

	app.Get("/posts/:slug", s.ShowPost)
}

// HealthCheck reports readiness of the database connection.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.UserContext())
	}
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// handleError maps application errors to rendered error pages.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case models.CodeNotFound:
			return s.renderError(c, fiber.StatusNotFound, "Page not found.")
		case models.CodeForbidden:
			return s.renderError(c, fiber.StatusForbidden, appErr.Message)
		case models.CodeValidation:
			return s.renderError(c, fiber.StatusUnprocessableEntity, appErr.Message)
		default:
			middleware.Logger.ErrorContext(c.UserContext(), "request failed",
				slog.String("error", err.Error()))
			return s.renderError(c, fiber.StatusInternalServerError, "Something went wrong.")
		}
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return s.renderError(c, fiberErr.Code, fiberErr.Message)
	}

	middleware.Logger.ErrorContext(c.UserContext(), "request failed",
		slog.String("error", err.Error()))
	return s.renderError(c, fiber.StatusInternalServerError, "Something went wrong.")
}

// Start starts the server
func (s *Server) Start() error {
	app := s.BuildApp()
	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
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
