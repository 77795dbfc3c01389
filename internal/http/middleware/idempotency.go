package middleware

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/legal-aid-backend/internal/session"
)

const (
	HeaderIdempotencyKey      = "Idempotency-Key"
	HeaderIdempotencyReplayed = "Idempotency-Replayed"

	defaultIdemMaxLen = 200

	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemScope  = "idem.scope"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"
)

var idemKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._:\-]+$`)

// IdempotencyLookup reports whether a live record exists for the key.
type IdempotencyLookup func(ctx context.Context, userID, scope, key string, now time.Time) (bool, error)

// IdempotencyOptions configures Idempotency.
//
// Scopes maps a route template to the scope the key is recorded under, e.g.
// "/api/v1/cases" to "cases.create"; unmapped routes use the template
// itself. A nil Lookup validates keys without detecting replays.
type IdempotencyOptions struct {
	MaxLen  int
	Pattern *regexp.Regexp
	Scopes  map[string]string
	Lookup  IdempotencyLookup
}

// Idempotency validates the Idempotency-Key header and stashes it for the
// handler. Requests whose key already has a live record are flagged as
// replays, which rate limiters let through. Lookup failures are logged and
// treated as misses.
func Idempotency(opt IdempotencyOptions) gin.HandlerFunc {
	if opt.MaxLen <= 0 {
		opt.MaxLen = defaultIdemMaxLen
	}
	if opt.Pattern == nil {
		opt.Pattern = idemKeyPattern
	}

	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
		if key == "" {
			c.Next()
			return
		}
		if len(key) > opt.MaxLen || !opt.Pattern.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": RequestIDFrom(c),
				"code":       "bad_idempotency_key",
				"message":    "invalid Idempotency-Key",
			})
			return
		}

		scope := c.FullPath()
		if mapped, ok := opt.Scopes[scope]; ok {
			scope = mapped
		}
		c.Set(ctxKeyIdemKey, key)
		c.Set(ctxKeyIdemScope, scope)

		if opt.Lookup != nil {
			uid := session.From(c.Request.Context()).UserID
			switch hit, err := opt.Lookup(c.Request.Context(), uid, scope, key, time.Now().UTC()); {
			case err != nil:
				LoggerFrom(c).Warn().Err(err).Str("scope", scope).Msg("idempotency lookup failed")
			case hit:
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}
		c.Next()
	}
}

// IdempotencyKey returns the validated key and its scope, if the request
// carried one.
func IdempotencyKey(c *gin.Context) (key, scope string, ok bool) {
	key = c.GetString(ctxKeyIdemKey)
	return key, c.GetString(ctxKeyIdemScope), key != ""
}

// IsReplay reports whether a live record matched the request's key.
func IsReplay(c *gin.Context) bool {
	return c.GetBool(ctxKeyIdemReplay)
}
