package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

// Services are the dependencies the HTTP layer is built from.
type Services struct {
	Auth          service.IAuthService
	Users         service.IUserService
	Subscriptions service.ISubscriptionService
	Catalog       service.ICatalogService
	Recipes       service.IRecipeService
	Relations     service.IRelationService
	Decorator     service.IViewDecorator
	ShoppingList  service.IShoppingListService
}

// Options tune the router. Zero values disable the optional parts.
type Options struct {
	CORSOrigins []string
	// CreateLimiter rate limits recipe creation; nil disables it.
	CreateLimiter *middleware.RateLimiter
	// MediaDir and MediaURL serve locally stored images when both are set.
	MediaDir string
	MediaURL string
}

// SetupRouter configures the application routes
func SetupRouter(db *gorm.DB, svc Services, opts Options, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(log), middleware.Recovery(log))
	if len(opts.CORSOrigins) > 0 {
		router.Use(middleware.CORS(opts.CORSOrigins))
	}

	health := api.NewHealthHandler(db, log)
	router.GET("/health", health.HealthCheck)
	router.GET("/api/health/", health.HealthCheck)

	if opts.MediaDir != "" && opts.MediaURL != "" {
		router.Static(opts.MediaURL, opts.MediaDir)
	}

	v1 := router.Group("/api")
	api.NewAuthHandler(svc.Auth, svc.Users, log).RegisterRoutes(v1)
	api.NewUserHandler(svc.Users, svc.Subscriptions, svc.Auth, log).RegisterRoutes(v1)
	api.NewCatalogHandler(svc.Catalog, log).RegisterRoutes(v1)
	api.NewRecipeHandler(svc.Recipes, svc.Relations, svc.Decorator, svc.ShoppingList, svc.Auth, opts.CreateLimiter, log).RegisterRoutes(v1)
	if opts.CreateLimiter != nil {
		api.NewRateLimitHandler(opts.CreateLimiter, svc.Auth, log).RegisterRoutes(v1)
	}

	return router
}
