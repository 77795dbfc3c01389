package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/legal-aid-backend/internal/session"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

// Session resolves the caller from X-User-ID, X-User-Role and
// Accept-Language and stores it in the request context for services.
//
// The gin "userID" key is only set when the header is present so that rate
// limiting keys anonymous callers by IP. The negotiated language is echoed
// in Content-Language.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader(HeaderUserID))
		s := session.Context{
			UserID: uid,
			Role:   session.ParseRole(c.GetHeader(HeaderUserRole)),
			Locale: session.MatchLocale(c.GetHeader("Accept-Language")),
		}
		if uid != "" {
			c.Set("userID", uid)
		} else {
			s.UserID = session.DefaultUserID
		}
		c.Set("userRole", string(s.Role))
		c.Request = c.Request.WithContext(session.With(c.Request.Context(), s))
		c.Header("Content-Language", s.Lang())
		c.Next()
	}
}
