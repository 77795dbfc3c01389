// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements RedactingLogger, the access logger used by the
// router. Requests to the portal routinely carry personal data (names, phone
// numbers, Aadhaar numbers, email addresses), so the logger never records
// bodies and scrubs the query string and header values before emitting.
//
// Usage:
//
//	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
//	    MaskHeaders: []string{"X-Api-Key"},
//	}))
package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/legal-aid-backend/internal/session"
	"github.com/tbourn/legal-aid-backend/internal/utils"
)

// RedactOptions configures additional scrub behavior for RedactingLogger.
//
// MaskHeaders lists extra header names (case-insensitive) whose values are
// replaced with "[REDACTED]", on top of Authorization, Cookie and Set-Cookie.
type RedactOptions struct {
	MaskHeaders []string
}

// Patterns are applied in order; the loosest (phone) runs last so it cannot
// eat the digit groups of a UUID or an Aadhaar number.
var redactions = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`), "[REDACTED:id]"},
	{regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`), "[REDACTED:email]"},
	{regexp.MustCompile(`\b\d{4}[ -]?\d{4}[ -]?\d{4}\b`), "[REDACTED:aadhaar]"},
	{regexp.MustCompile(`(?:\+91[ -]?)?\b[6-9]\d{4}[ -]?\d{5}\b`), "[REDACTED:phone]"},
	{regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`), "[REDACTED:phone]"},
}

// Redact scrubs identifiers, email addresses, Aadhaar and phone numbers from s.
func Redact(s string) string {
	if s == "" {
		return s
	}
	for _, r := range redactions {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	return s
}

// RedactingLogger logs one line per request with scrubbed query and headers,
// and attaches a request-scoped logger (request ID, caller, route) to the Gin
// context and to the request context for downstream code.
//
// The level is error for 5xx or when handlers attached gin errors, warn for
// 4xx and info otherwise.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	maskHeaders := map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			maskHeaders[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		reqID := RequestIDFrom(c)
		if reqID == "" {
			reqID = c.GetHeader(HeaderRequestID)
		}
		sess := session.From(c.Request.Context())

		safeHeaders := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			if _, ok := maskHeaders[strings.ToLower(k)]; ok {
				safeHeaders[k] = "[REDACTED]"
				continue
			}
			safeHeaders[k] = Redact(strings.Join(vv, ", "))
		}

		l := log.With().
			Str("request_id", reqID).
			Str("user_id", sess.UserID).
			Str("user_role", string(sess.Role)).
			Str("lang", sess.Lang()).
			Str("method", c.Request.Method).
			Str("path", path).
			Logger()
		c.Set(loggerKey, &l)
		c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))

		c.Next()

		status := c.Writer.Status()
		ev := l.Info()
		switch {
		case len(c.Errors) > 0:
			ev = l.Error().Str("errors", Redact(c.Errors.String()))
		case status >= 500:
			ev = l.Error()
		case status >= 400:
			ev = l.Warn()
		}

		ev.
			Str("query", utils.Truncate(Redact(c.Request.URL.RawQuery), maxQueryLogLength)).
			Str("remote_ip", c.ClientIP()).
			Int64("bytes_in", c.Request.ContentLength).
			Int("status", status).
			Int("bytes_out", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", safeHeaders).
			Msg("request")
	}
}
