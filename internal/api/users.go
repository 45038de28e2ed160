package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

type UserHandler struct {
	users         service.IUserService
	subscriptions service.ISubscriptionService
	tokens        middleware.TokenValidator
	log           *logger.Logger
}

func NewUserHandler(users service.IUserService, subscriptions service.ISubscriptionService, tokens middleware.TokenValidator, log *logger.Logger) *UserHandler {
	return &UserHandler{
		users:         users,
		subscriptions: subscriptions,
		tokens:        tokens,
		log:           log.With("handler", "UserHandler"),
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("/", middleware.OptionalAuth(h.tokens), h.ListUsers)
		users.GET("/subscriptions/", middleware.AuthMiddleware(h.tokens), h.ListSubscriptions)
		users.GET("/:id/", middleware.OptionalAuth(h.tokens), h.GetUser)
		users.POST("/:id/subscribe/", middleware.AuthMiddleware(h.tokens), h.Subscribe)
		users.DELETE("/:id/subscribe/", middleware.AuthMiddleware(h.tokens), h.Unsubscribe)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page := parsePage(c)
	views, total, err := h.users.ListUsers(c.Request.Context(), middleware.UserID(c), page)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, page, total, views))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	view, err := h.users.GetUser(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *UserHandler) ListSubscriptions(c *gin.Context) {
	page := parsePage(c)
	views, total, err := h.subscriptions.ListSubscriptions(c.Request.Context(), middleware.UserID(c), page, parseRecipesLimit(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, page, total, views))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	view, err := h.subscriptions.Subscribe(c.Request.Context(), middleware.UserID(c), id, parseRecipesLimit(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if err := h.subscriptions.Unsubscribe(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
