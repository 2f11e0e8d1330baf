package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestSessionMiddleware_IssueParse(t *testing.T) {
	t.Parallel()

	m := NewSessionMiddleware("secret", time.Minute)
	id := uuid.New()

	token, expiresAt, err := m.Issue(id)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), expiresAt, 5*time.Second)

	got, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = NewSessionMiddleware("other", time.Minute).Parse(token)
	assert.Error(t, err)
}

func TestSessionMiddleware_Expired(t *testing.T) {
	t.Parallel()

	m := NewSessionMiddleware("secret", -time.Minute)
	token, _, err := m.Issue(uuid.New())
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.Error(t, err)
}

func TestRequireSession(t *testing.T) {
	t.Parallel()

	m := NewSessionMiddleware("secret", time.Minute)
	id := uuid.New()
	token, _, err := m.Issue(id)
	require.NoError(t, err)

	router := gin.New()
	router.GET("/me", m.RequireSession(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("session_id"))
	})

	tests := []struct {
		name     string
		target   string
		header   string
		wantCode int
	}{
		{name: "bearer header", target: "/me", header: "Bearer " + token, wantCode: http.StatusOK},
		{name: "query token", target: "/me?token=" + token, wantCode: http.StatusOK},
		{name: "missing token", target: "/me", wantCode: http.StatusUnauthorized},
		{name: "garbage token", target: "/me", header: "Bearer nope", wantCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusOK {
				assert.Equal(t, id.String(), rec.Body.String())
			}
		})
	}
}

func TestRequireSession_RefreshesAgingToken(t *testing.T) {
	t.Parallel()

	m := NewSessionMiddleware("secret", time.Hour)
	id := uuid.New()

	aging, _, err := NewSessionMiddleware("secret", time.Minute).Issue(id)
	require.NoError(t, err)
	young, _, err := m.Issue(id)
	require.NoError(t, err)

	router := gin.New()
	router.GET("/me", m.RequireSession(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	serve := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := serve(young)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get(RefreshedTokenHeader))

	rec = serve(aging)
	require.Equal(t, http.StatusNoContent, rec.Code)
	fresh := rec.Header().Get(RefreshedTokenHeader)
	require.NotEmpty(t, fresh)

	got, err := m.Parse(fresh)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	router := gin.New()
	router.Use(RateLimit(1, 2, zap.NewNop()))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}

func TestRateLimiter_Evict(t *testing.T) {
	t.Parallel()

	l := NewRateLimiter(60, 2, zap.NewNop())
	now := time.Now()

	require.True(t, l.allow("10.0.0.1", now))
	require.True(t, l.allow("10.0.0.2", now.Add(time.Second)))
	require.Equal(t, 2, l.Len())

	// two-request burst at one per second refills after two idle seconds
	assert.Zero(t, l.Evict(now.Add(time.Second)))
	assert.Equal(t, 1, l.Evict(now.Add(2*time.Second)))
	assert.Equal(t, 1, l.Len())
	assert.Equal(t, 1, l.Evict(now.Add(3*time.Second)))
	assert.Zero(t, l.Len())
}
