// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides the request ID injector, panic recovery and the
// request-scoped logger accessor. The access logger itself lives in
// redact_logger.go.
//
// Recommended order: RequestID, Session, RedactingLogger, Recovery.
package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// HeaderRequestID is the HTTP header used to propagate the correlation ID.
	HeaderRequestID = "X-Request-ID"

	requestIDKey = "requestID"
	loggerKey    = "logger"

	maxRequestIDLength = 128
	maxQueryLogLength  = 2048
)

// RequestID reuses a well-formed incoming X-Request-ID or mints a UUIDv4,
// echoes it on the response and stores it in the Gin context. IDs longer than
// 128 bytes or containing anything other than letters, digits and ._:- are
// replaced, since they end up in logs and error bodies.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if !validRequestID(rid) {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(HeaderRequestID, rid)
		c.Next()
	}
}

// RequestIDFrom returns the ID installed by RequestID, or "".
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func validRequestID(s string) bool {
	if s == "" || len(s) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch b := s[i]; {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		case b == '-', b == '_', b == '.', b == ':':
		default:
			return false
		}
	}
	return true
}

// Logger is RedactingLogger with the default masked headers.
func Logger() gin.HandlerFunc {
	return RedactingLogger(RedactOptions{})
}

// Recovery turns a panic into 500 {"request_id","code":"internal_error",
// "message"} when nothing was written yet, and logs it with its stack through
// the request-scoped logger.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			rid := RequestIDFrom(c)
			lg := LoggerFrom(c)
			if _, scoped := c.Get(loggerKey); !scoped {
				l := lg.With().Str("request_id", rid).Logger()
				lg = &l
			}
			lg.Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"request_id": rid,
				"code":       "internal_error",
				"message":    "internal server error",
			})
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger, or the global one.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}
