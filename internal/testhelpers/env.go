package testhelpers

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/validation"
)

const JWTSecret = "test-secret"

// Env is a fully wired service layer over one database.
type Env struct {
	DB     *gorm.DB
	Images *MemoryStore

	Users             repository.UserRepo
	Catalog           repository.CatalogRepo
	Recipes           repository.RecipeRepo
	Relations         repository.RelationRepo
	SubscriptionsRepo repository.SubscriptionRepo

	Auth          *service.AuthService
	UserService   *service.UserService
	CatalogSvc    *service.CatalogService
	RecipeSvc     *service.RecipeService
	RelationSvc   *service.RelationService
	Decorator     *service.ViewDecorator
	ShoppingList  *service.ShoppingListService
	Subscriptions *service.SubscriptionService
}

// NewEnv wires services over a fresh SQLite database.
func NewEnv(t *testing.T) *Env {
	t.Helper()
	return NewEnvWithDB(NewSQLiteDB(t))
}

// NewEnvWithDB wires services over db without a tag cache.
func NewEnvWithDB(db *gorm.DB) *Env {
	log := logger.Nop()
	v := validation.New()
	tx := repository.NewTransactor(db)

	e := &Env{
		DB:                db,
		Images:            NewMemoryStore(),
		Users:             repository.NewUserRepo(db, log),
		Catalog:           repository.NewCatalogRepo(db, log),
		Recipes:           repository.NewRecipeRepo(db, log),
		Relations:         repository.NewRelationRepo(db, log),
		SubscriptionsRepo: repository.NewSubscriptionRepo(db, log),
	}
	e.Decorator = service.NewViewDecorator(e.Relations, e.SubscriptionsRepo)
	e.Auth = service.NewAuthService(e.Users, v, JWTSecret, time.Hour, log)
	e.UserService = service.NewUserService(e.Users, e.Decorator)
	e.CatalogSvc = service.NewCatalogService(e.Catalog, nil, v, log)
	e.RecipeSvc = service.NewRecipeService(tx, e.Recipes, e.Catalog, service.NewImageService(e.Images, log), v, log)
	e.RelationSvc = service.NewRelationService(tx, e.Recipes, e.Relations, log)
	e.ShoppingList = service.NewShoppingListService(e.Relations)
	e.Subscriptions = service.NewSubscriptionService(tx, e.Users, e.Recipes, e.SubscriptionsRepo, log)
	return e
}
