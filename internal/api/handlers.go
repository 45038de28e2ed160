package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/middleware"
)

// HealthHandler reports whether the database answers.
type HealthHandler struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHealthHandler(db *gorm.DB, log *logger.Logger) *HealthHandler {
	return &HealthHandler{db: db, log: log.With("handler", "HealthHandler")}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	if err := database.HealthCheck(c.Request.Context(), h.db); err != nil {
		h.log.Warn("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Foodgram API is running",
	})
}

// RateLimitHandler exposes the caller's remaining recipe creations.
type RateLimitHandler struct {
	limiter *middleware.RateLimiter
	tokens  middleware.TokenValidator
	log     *logger.Logger
}

func NewRateLimitHandler(limiter *middleware.RateLimiter, tokens middleware.TokenValidator, log *logger.Logger) *RateLimitHandler {
	return &RateLimitHandler{limiter: limiter, tokens: tokens, log: log.With("handler", "RateLimitHandler")}
}

func (h *RateLimitHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/rate-limits/recipe-creation/", middleware.AuthMiddleware(h.tokens), h.RecipeCreation)
}

func (h *RateLimitHandler) RecipeCreation(c *gin.Context) {
	key := strconv.FormatUint(uint64(middleware.UserID(c)), 10)
	remaining, resetTime, err := h.limiter.GetRemainingRequests(c.Request.Context(), key)
	if err != nil {
		h.log.Error("Failed to check rate limit", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to check rate limit"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"limit":      h.limiter.Limit(),
		"remaining":  remaining,
		"reset_time": resetTime.Unix(),
		"window":     h.limiter.Window().String(),
	})
}
