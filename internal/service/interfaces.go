package service

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IAuthService defines the authentication operations used by handlers and middleware
type IAuthService interface {
	Register(ctx context.Context, req types.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req types.LoginRequest) (string, error)
	GetUser(ctx context.Context, userID uint) (*models.User, error)
	SetPassword(ctx context.Context, userID uint, req types.SetPasswordRequest) error
	ValidateToken(token string) (*types.TokenClaims, error)
}

// IRecipeService defines recipe reads and writes
type IRecipeService interface {
	CreateRecipe(ctx context.Context, authorID uint, req types.RecipeRequest) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, recipeID, requesterID uint, req types.RecipeRequest) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, recipeID, requesterID uint) error
	GetRecipe(ctx context.Context, id uint) (*models.Recipe, error)
	ListRecipes(ctx context.Context, filter types.RecipeFilter, page types.Page) ([]models.Recipe, int64, error)
}

// IRelationService defines favorite and shopping cart toggles
type IRelationService interface {
	AddRelation(ctx context.Context, kind models.RelationKind, userID, recipeID uint) (*types.RecipeShort, error)
	RemoveRelation(ctx context.Context, kind models.RelationKind, userID, recipeID uint) error
}

// IViewDecorator defines per-requester view building
type IViewDecorator interface {
	Decorate(ctx context.Context, recipe *models.Recipe, userID uint) (*types.RecipeView, error)
	DecorateMany(ctx context.Context, recipes []models.Recipe, userID uint) ([]types.RecipeView, error)
}

type IShoppingListService interface {
	BuildShoppingList(ctx context.Context, userID uint) ([]types.ShoppingListItem, error)
}

type ICatalogService interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id uint) (*models.Tag, error)
	ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error)
}

type ISubscriptionService interface {
	Subscribe(ctx context.Context, subscriberID, authorID uint, recipesLimit int) (*types.SubscriptionView, error)
	Unsubscribe(ctx context.Context, subscriberID, authorID uint) error
	ListSubscriptions(ctx context.Context, subscriberID uint, page types.Page, recipesLimit int) ([]types.SubscriptionView, int64, error)
}

type IUserService interface {
	ListUsers(ctx context.Context, viewerID uint, page types.Page) ([]types.UserView, int64, error)
	GetUser(ctx context.Context, viewerID, id uint) (*types.UserView, error)
}

var (
	_ IAuthService         = (*AuthService)(nil)
	_ IRecipeService       = (*RecipeService)(nil)
	_ IRelationService     = (*RelationService)(nil)
	_ IViewDecorator       = (*ViewDecorator)(nil)
	_ IShoppingListService = (*ShoppingListService)(nil)
	_ ICatalogService      = (*CatalogService)(nil)
	_ ISubscriptionService = (*SubscriptionService)(nil)
	_ IUserService         = (*UserService)(nil)
)
