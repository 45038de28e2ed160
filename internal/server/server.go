package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/cache"
	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/router"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/validation"
)

const (
	shutdownTimeout = 10 * time.Second
	tagCacheTTL     = 10 * time.Minute
)

// Server represents the HTTP server
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	http   *http.Server
	log    *logger.Logger
}

// New wires repositories, services and routes. redisClient may be nil, which
// disables the tag cache and the recipe creation limit.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, redisClient *redis.Client, log *logger.Logger) (*Server, error) {
	store, err := newImageStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	validator := validation.New()
	tx := repository.NewTransactor(db)
	users := repository.NewUserRepo(db, log)
	catalogRepo := repository.NewCatalogRepo(db, log)
	recipes := repository.NewRecipeRepo(db, log)
	relations := repository.NewRelationRepo(db, log)
	subscriptions := repository.NewSubscriptionRepo(db, log)

	// A typed nil *cache.TagCache would not compare equal to nil inside the service.
	var tagCache service.TagCache
	var createLimiter *middleware.RateLimiter
	if redisClient != nil {
		tagCache = cache.NewTagCache(redisClient, tagCacheTTL)
		if cfg.RecipeCreateLimit > 0 {
			createLimiter = middleware.NewRecipeCreationRateLimiter(redisClient, cfg.RecipeCreateLimit, log)
		}
	}

	decorator := service.NewViewDecorator(relations, subscriptions)
	authService := service.NewAuthService(users, validator, cfg.JWTSecret, cfg.JWTTTL, log)
	svc := router.Services{
		Auth:          authService,
		Users:         service.NewUserService(users, decorator),
		Subscriptions: service.NewSubscriptionService(tx, users, recipes, subscriptions, log),
		Catalog:       service.NewCatalogService(catalogRepo, tagCache, validator, log),
		Recipes:       service.NewRecipeService(tx, recipes, catalogRepo, service.NewImageService(store, log), validator, log),
		Relations:     service.NewRelationService(tx, recipes, relations, log),
		Decorator:     decorator,
		ShoppingList:  service.NewShoppingListService(relations),
	}

	opts := router.Options{
		CORSOrigins:   cfg.CORSOrigins,
		CreateLimiter: createLimiter,
	}
	if cfg.ImageStorage != "s3" {
		opts.MediaDir = cfg.MediaDir
		opts.MediaURL = cfg.MediaURL
	}

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := router.SetupRouter(db, svc, opts, log)

	return &Server{
		cfg:    cfg,
		router: r,
		http: &http.Server{
			Addr:              net.JoinHostPort(cfg.ServerHost, cfg.ServerPort),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log.With("component", "Server"),
	}, nil
}

func newImageStore(ctx context.Context, cfg *config.Config) (storage.ImageStore, error) {
	if cfg.ImageStorage == "s3" {
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to configure S3: %w", err)
		}
		return storage.NewS3Store(s3cfg), nil
	}
	return storage.NewLocalStore(cfg.MediaDir, cfg.MediaURL), nil
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("Starting server", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
