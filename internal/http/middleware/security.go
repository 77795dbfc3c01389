// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides SecurityHeaders. The API only ever returns JSON, so every
// response gets a locked-down Content-Security-Policy except the Swagger UI,
// which needs its own scripts and styles. Case records and generated drafts
// carry personal data; responses under NoStorePrefixes are never cached.
package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	defaultHSTSMaxAge = 180 * 24 * time.Hour
	apiCSP            = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'"
	permissionsPolicy = "geolocation=(), microphone=(), camera=(), payment=()"
)

// SecurityOptions configures SecurityHeaders.
type SecurityOptions struct {
	EnableHSTS   bool          // only honored for HTTPS requests
	HSTSMaxAge   time.Duration // defaults to 180 days
	NoStore      bool          // Cache-Control: no-store on every response
	EnablePolicy bool          // Permissions-Policy and X-Permitted-Cross-Domain-Policies

	// NoStorePrefixes marks responses under these path prefixes no-store
	// even when NoStore is false.
	NoStorePrefixes []string
	// CSPExemptPrefixes skip the API Content-Security-Policy (Swagger UI).
	CSPExemptPrefixes []string
}

// SecurityHeaders sets nosniff, DENY framing, no-referrer and the API CSP on
// every response; the remaining headers follow opt. When X-Request-ID is
// present it is exposed to browser clients.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := opt.HSTSMaxAge
	if maxAge <= 0 {
		maxAge = defaultHSTSMaxAge
	}
	hsts := fmt.Sprintf("max-age=%d; includeSubDomains; preload", int64(maxAge/time.Second))

	static := http.Header{}
	static.Set("X-Content-Type-Options", "nosniff")
	static.Set("X-Frame-Options", "DENY")
	static.Set("Referrer-Policy", "no-referrer")
	if opt.EnablePolicy {
		static.Set("Permissions-Policy", permissionsPolicy)
		static.Set("X-Permitted-Cross-Domain-Policies", "none")
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		for k := range static {
			h.Set(k, static.Get(k))
		}
		path := c.Request.URL.Path

		if !hasAnyPrefix(path, opt.CSPExemptPrefixes) {
			h.Set("Content-Security-Policy", apiCSP)
		}
		if opt.NoStore || hasAnyPrefix(path, opt.NoStorePrefixes) {
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
		}
		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}
		if rid := h.Get(HeaderRequestID); rid != "" {
			exposeHeader(h, HeaderRequestID)
		}

		c.Next()
	}
}

// exposeHeader appends name to Access-Control-Expose-Headers once.
func exposeHeader(h http.Header, name string) {
	const key = "Access-Control-Expose-Headers"
	cur := h.Get(key)
	if cur == "" {
		h.Set(key, name)
		return
	}
	for _, v := range strings.Split(cur, ",") {
		if strings.EqualFold(strings.TrimSpace(v), name) {
			return
		}
	}
	h.Set(key, cur+", "+name)
}

// isHTTPS reports whether the request arrived over TLS, directly or via a
// proxy setting X-Forwarded-Proto: https.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	proto, _, _ := strings.Cut(r.Header.Get("X-Forwarded-Proto"), ",")
	return strings.EqualFold(strings.TrimSpace(proto), "https")
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
