// Response helpers shared by every endpoint.
//
// Errors use the ErrorResponse envelope with a stable code from errors.go.
// Successes are plain JSON bodies; list endpoints add Pagination and a weak
// ETag. The /actions endpoints are the exception: they always reply with an
// ActionResult so the portal can render the message as-is.
//
//	HTTP/1.1 404 Not Found
//	{"request_id":"123e4567-e89b-12d3-a456-426614174000","code":"not_found","message":"Case not found."}
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/legal-aid-backend/internal/http/middleware"
	"github.com/tbourn/legal-aid-backend/internal/utils"
)

// ErrorResponse is the error envelope returned by every non-action endpoint.
type ErrorResponse struct {
	// Echoes X-Request-ID so a user report can be matched to server logs.
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go).
	Code string `json:"code" example:"not_found"`
	// Safe to show to users.
	Message string `json:"message" example:"Case not found."`
}

// fail aborts with an ErrorResponse. 5xx responses are logged.
func fail(c *gin.Context, status int, code, msg string) {
	rid := middleware.RequestIDFrom(c)
	if rid == "" {
		rid = c.Writer.Header().Get(middleware.HeaderRequestID)
	}
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{RequestID: rid, Code: code, Message: msg})
}

// Fail lets the router reply with the same envelope (NoRoute, readiness).
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	tp := utils.TotalPages(total, pageSize)
	return Pagination{Page: page, PageSize: pageSize, Total: total, TotalPages: tp, HasNext: page < tp}
}

// clampPagination parses the page and page_size query params.
func clampPagination(c *gin.Context) (page, pageSize int) {
	return utils.ClampPage(c.Query("page"), c.Query("page_size"))
}

// notModified sets etag and, when If-None-Match lists it (or is "*"),
// answers 304 and returns true.
func notModified(c *gin.Context, etag string) bool {
	c.Header("ETag", etag)
	inm := c.GetHeader("If-None-Match")
	if inm == "" {
		return false
	}
	for _, tag := range strings.Split(inm, ",") {
		if tag = strings.TrimSpace(tag); tag == etag || tag == "*" {
			c.Status(http.StatusNotModified)
			return true
		}
	}
	return false
}
