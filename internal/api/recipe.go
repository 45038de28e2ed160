package api

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/export"
	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type RecipeHandler struct {
	recipes       service.IRecipeService
	relations     service.IRelationService
	decorator     service.IViewDecorator
	shoppingList  service.IShoppingListService
	tokens        middleware.TokenValidator
	createLimiter *middleware.RateLimiter
	log           *logger.Logger
}

// NewRecipeHandler builds the recipe handler. createLimiter may be nil, which disables rate limiting.
func NewRecipeHandler(
	recipes service.IRecipeService,
	relations service.IRelationService,
	decorator service.IViewDecorator,
	shoppingList service.IShoppingListService,
	tokens middleware.TokenValidator,
	createLimiter *middleware.RateLimiter,
	log *logger.Logger,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:       recipes,
		relations:     relations,
		decorator:     decorator,
		shoppingList:  shoppingList,
		tokens:        tokens,
		createLimiter: createLimiter,
		log:           log.With("handler", "RecipeHandler"),
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.AuthMiddleware(h.tokens)
	optional := middleware.OptionalAuth(h.tokens)

	create := []gin.HandlerFunc{auth}
	if h.createLimiter != nil {
		create = append(create, h.createLimiter.Middleware())
	}
	create = append(create, h.CreateRecipe)

	recipes := router.Group("/recipes")
	{
		recipes.GET("/", optional, h.ListRecipes)
		recipes.POST("/", create...)
		recipes.GET("/download_shopping_cart/", auth, h.DownloadShoppingCart)
		recipes.GET("/:id/", optional, h.GetRecipe)
		recipes.PATCH("/:id/", auth, h.UpdateRecipe)
		recipes.DELETE("/:id/", auth, h.DeleteRecipe)
		recipes.POST("/:id/favorite/", auth, h.relationAdder(models.RelationFavorite))
		recipes.DELETE("/:id/favorite/", auth, h.relationRemover(models.RelationFavorite))
		recipes.POST("/:id/shopping_cart/", auth, h.relationAdder(models.RelationShoppingCart))
		recipes.DELETE("/:id/shopping_cart/", auth, h.relationRemover(models.RelationShoppingCart))
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	userID := middleware.UserID(c)
	filter := recipeFilter(c, userID)
	page := parsePage(c)

	recipes, total, err := h.recipes.ListRecipes(c.Request.Context(), filter, page)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	views, err := h.decorator.DecorateMany(c.Request.Context(), recipes, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, page, total, views))
}

// recipeFilter reads the list filters. The relation filters only apply to authenticated users.
func recipeFilter(c *gin.Context, userID uint) types.RecipeFilter {
	var filter types.RecipeFilter
	if author, err := strconv.ParseUint(c.Query("author"), 10, 64); err == nil {
		filter.AuthorID = uint(author)
	}
	for _, slug := range c.QueryArray("tags") {
		if slug != "" {
			filter.TagSlugs = append(filter.TagSlugs, slug)
		}
	}
	if userID != 0 {
		if c.Query("is_favorited") == "1" {
			filter.FavoritedBy = userID
		}
		if c.Query("is_in_shopping_cart") == "1" {
			filter.InCartOf = userID
		}
	}
	return filter
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	recipe, err := h.recipes.GetRecipe(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.respondRecipe(c, http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.RecipeRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.log, err)
		return
	}

	recipe, err := h.recipes.CreateRecipe(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.respondRecipe(c, http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	var req types.RecipeRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.log, err)
		return
	}

	recipe, err := h.recipes.UpdateRecipe(c.Request.Context(), id, middleware.UserID(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.respondRecipe(c, http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if err := h.recipes.DeleteRecipe(c.Request.Context(), id, middleware.UserID(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) respondRecipe(c *gin.Context, status int, recipe *models.Recipe) {
	view, err := h.decorator.Decorate(c.Request.Context(), recipe, middleware.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(status, view)
}

func (h *RecipeHandler) relationAdder(kind models.RelationKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c, "id")
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		short, err := h.relations.AddRelation(c.Request.Context(), kind, middleware.UserID(c), id)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		c.JSON(http.StatusCreated, short)
	}
}

func (h *RecipeHandler) relationRemover(kind models.RelationKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c, "id")
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		if err := h.relations.RemoveRelation(c.Request.Context(), kind, middleware.UserID(c), id); err != nil {
			respondError(c, h.log, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// DownloadShoppingCart sends the aggregated cart as an attachment.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	format, ok := export.ParseFormat(c.Query("format"))
	if !ok {
		respondError(c, h.log, apperr.ValidationWithDetails("validation failed", map[string]string{"format": "must be txt or pdf"}))
		return
	}

	items, err := h.shoppingList.BuildShoppingList(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Render(&buf, format, items); err != nil {
		respondError(c, h.log, apperr.Internal("failed to render shopping list", err))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+format.Filename()+`"`)
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
