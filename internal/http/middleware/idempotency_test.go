package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/legal-aid-backend/internal/session"
)

type lookupCall struct {
	user, scope, key string
	at               time.Time
}

// idemRouter records what the handler saw for each request.
type idemRouter struct {
	*gin.Engine
	calls []lookupCall
	seen  struct {
		key, scope     string
		ok, replay, rb bool
	}
}

func newIdemRouter(opt IdempotencyOptions, hit bool, err error) *idemRouter {
	gin.SetMode(gin.TestMode)
	ir := &idemRouter{Engine: gin.New()}
	if opt.Lookup == nil && (hit || err != nil) {
		opt.Lookup = func(_ context.Context, user, scope, key string, now time.Time) (bool, error) {
			ir.calls = append(ir.calls, lookupCall{user, scope, key, now})
			return hit, err
		}
	}
	h := func(c *gin.Context) {
		ir.seen.key, ir.seen.scope, ir.seen.ok = IdempotencyKey(c)
		ir.seen.replay, ir.seen.rb = IsReplay(c), IsRateBypass(c)
		c.Status(http.StatusCreated)
	}
	ir.Use(RequestID(), Session(), Idempotency(opt))
	ir.POST("/api/v1/cases", h)
	ir.POST("/api/v1/directory/:type", h)
	return ir
}

func (ir *idemRouter) post(path, key, user string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, nil)
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	if user != "" {
		req.Header.Set(HeaderUserID, user)
	}
	ir.ServeHTTP(w, req)
	return w
}

var caseScopes = map[string]string{"/api/v1/cases": "cases.create"}

func TestIdempotency_RejectsBadKeys(t *testing.T) {
	tests := []struct {
		name string
		opt  IdempotencyOptions
		key  string
	}{
		{"too long for default", IdempotencyOptions{}, strings.Repeat("k", defaultIdemMaxLen+1)},
		{"too long for option", IdempotencyOptions{MaxLen: 5}, "abcdef"},
		{"default charset", IdempotencyOptions{}, "has space/slash"},
		{"custom pattern", IdempotencyOptions{Pattern: regexp.MustCompile(`^[0-9]+$`)}, "abc123"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ir := newIdemRouter(tc.opt, false, nil)
			w := ir.post("/api/v1/cases", tc.key, "")
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), `"code":"bad_idempotency_key"`)
			assert.Contains(t, w.Body.String(), w.Header().Get(HeaderRequestID))
			assert.False(t, ir.seen.ok, "handler must not run")
		})
	}
}

func TestIdempotency_NoHeader(t *testing.T) {
	ir := newIdemRouter(IdempotencyOptions{}, true, nil)
	w := ir.post("/api/v1/cases", "", "u1")

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, ir.calls)
	assert.False(t, ir.seen.ok)
	assert.False(t, ir.seen.replay)
}

func TestIdempotency_StashesKeyWithoutLookup(t *testing.T) {
	ir := newIdemRouter(IdempotencyOptions{Scopes: caseScopes}, false, nil)
	ir.post("/api/v1/cases", "  abc-123 ", "")

	assert.True(t, ir.seen.ok)
	assert.Equal(t, "abc-123", ir.seen.key)
	assert.Equal(t, "cases.create", ir.seen.scope)
	assert.False(t, ir.seen.replay)
	assert.False(t, ir.seen.rb)
}

func TestIdempotency_Lookup(t *testing.T) {
	t.Run("hit marks replay for the session user", func(t *testing.T) {
		ir := newIdemRouter(IdempotencyOptions{Scopes: caseScopes}, true, nil)
		ir.post("/api/v1/cases", "k-9", "u9")

		require.Len(t, ir.calls, 1)
		call := ir.calls[0]
		assert.Equal(t, "u9", call.user)
		assert.Equal(t, "cases.create", call.scope)
		assert.Equal(t, "k-9", call.key)
		assert.Equal(t, time.UTC, call.at.Location())
		assert.True(t, ir.seen.replay)
		assert.True(t, ir.seen.rb)
	})

	t.Run("anonymous caller", func(t *testing.T) {
		ir := newIdemRouter(IdempotencyOptions{Scopes: caseScopes}, true, nil)
		ir.post("/api/v1/cases", "k-1", "")
		require.Len(t, ir.calls, 1)
		assert.Equal(t, session.DefaultUserID, ir.calls[0].user)
	})

	t.Run("unmapped route scopes by template", func(t *testing.T) {
		ir := newIdemRouter(IdempotencyOptions{Scopes: caseScopes}, true, nil)
		ir.post("/api/v1/directory/ngos", "k-1", "u1")
		require.Len(t, ir.calls, 1)
		assert.Equal(t, "/api/v1/directory/:type", ir.calls[0].scope)
	})

	t.Run("error is a miss", func(t *testing.T) {
		ir := newIdemRouter(IdempotencyOptions{Scopes: caseScopes}, true, errors.New("db down"))
		w := ir.post("/api/v1/cases", "k-1", "u1")
		require.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, ir.seen.ok)
		assert.False(t, ir.seen.replay)
		assert.False(t, ir.seen.rb)
	})
}

func TestIdempotencyKey_Unset(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	key, scope, ok := IdempotencyKey(c)
	assert.Empty(t, key)
	assert.Empty(t, scope)
	assert.False(t, ok)
	assert.False(t, IsReplay(c))

	c.Set(ctxKeyIdemKey, 123)
	_, _, ok = IdempotencyKey(c)
	assert.False(t, ok)
}
