// Package api holds the gin handlers of the HTTP API.
package api

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/types"
)

// respondError writes err as {"error", "message", "details"} with the status of its kind.
// Internal causes are logged and replaced by a generic message.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	var body *apperr.Error
	if !errors.As(err, &body) {
		body = apperr.Internal("internal server error", err)
	}

	if body.Kind == apperr.KindInternal {
		log.Error("Request failed", "path", c.Request.URL.Path, "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   apperr.KindInternal,
			"message": "internal server error",
		})
		return
	}
	c.AbortWithStatusJSON(body.HTTPStatus(), body)
}

// bindJSON decodes the request body into dst, reporting malformed bodies as validation errors.
func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperr.Validation("invalid request body: " + err.Error())
	}
	return nil
}

func parseID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.NotFound("not found")
	}
	return uint(id), nil
}

// parsePage reads limit/offset. A page parameter is accepted in place of offset.
func parsePage(c *gin.Context) types.Page {
	page := types.Page{}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		page.Limit = v
	}
	page = page.Normalize()
	if v, err := strconv.Atoi(c.Query("offset")); err == nil {
		page.Offset = v
	} else if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 1 {
		page.Offset = (v - 1) * page.Limit
	}
	return page.Normalize()
}

// parseRecipesLimit reads recipes_limit; absent or invalid means no cap.
func parseRecipesLimit(c *gin.Context) int {
	v, err := strconv.Atoi(c.Query("recipes_limit"))
	if err != nil || v < 0 {
		return -1
	}
	return v
}

// paginate wraps results in the list envelope with absolute next/previous links.
func paginate[T any](c *gin.Context, page types.Page, total int64, results []T) types.Paginated[T] {
	out := types.Paginated[T]{Count: total, Results: orEmpty(results)}
	if int64(page.Offset+page.Limit) < total {
		next := pageURL(c, page.Limit, page.Offset+page.Limit)
		out.Next = &next
	}
	if page.Offset > 0 {
		prev := page.Offset - page.Limit
		if prev < 0 {
			prev = 0
		}
		link := pageURL(c, page.Limit, prev)
		out.Previous = &link
	}
	return out
}

func pageURL(c *gin.Context, limit, offset int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	q := c.Request.URL.Query()
	q.Del("page")
	q.Set("limit", strconv.Itoa(limit))
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	} else {
		q.Del("offset")
	}
	u := url.URL{Scheme: scheme, Host: c.Request.Host, Path: c.Request.URL.Path, RawQuery: q.Encode()}
	return u.String()
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
