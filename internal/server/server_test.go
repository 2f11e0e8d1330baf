package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/signupform/internal/config"
	"anoa.com/signupform/internal/modules/signup/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:               "test",
		AllowedOrigins:       []string{"http://localhost:3000"},
		SessionSecret:        "secret",
		SessionTTL:           time.Minute,
		SessionSweepInterval: time.Minute,
		MaxUploadBytes:       1 << 20,
		PlaceholderPreview:   "/img/placeholder.png",
		PreviewBaseURL:       "/api/previews",
		ResetOnSuccess:       true,
		RateLimitPerMinute:   600,
		RateLimitBurst:       100,
	}
}

func TestServer_SignupFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)

	srv, err := NewServer(testConfig(), nil, zap.NewNop())
	require.NoError(t, err)
	h := srv.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/signup/sessions", nil))
	require.Equal(t, http.StatusCreated, rec.Code)

	var session dto.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Equal(t, "/img/placeholder.png", session.Draft.PreviewURI)

	for _, body := range []string{
		`{"name":"firstName","kind":"text","value":"Haider"}`,
		`{"name":"lastName","kind":"text","value":"Al-Khafaji"}`,
		`{"name":"email","kind":"text","value":"example@gmail.com"}`,
		`{"name":"dateOfBirth","kind":"text","value":"1999-04-01"}`,
		`{"name":"telNumber","kind":"text","value":"00964111"}`,
		`{"name":"termsAndPolicies","kind":"checkbox","checked":true}`,
		`{"name":"password","kind":"text","value":"Abc12345!"}`,
		`{"name":"passwordConfirmation","kind":"text","value":"Abc12345!"}`,
	} {
		req := httptest.NewRequest(http.MethodPatch, "/api/signup/fields", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+session.Token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodPost, "/api/signup/submit", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.SubmitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, dto.OutcomeSuccess, resp.Outcome)
	require.Len(t, resp.Notifications, 1)
}

func TestServer_WebSocketWithoutRedis(t *testing.T) {
	gin.SetMode(gin.TestMode)

	srv, err := NewServer(testConfig(), nil, zap.NewNop())
	require.NoError(t, err)
	h := srv.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/signup/sessions", nil))
	var session dto.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/signup/notifications/ws?token="+session.Token, nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_Healthz(t *testing.T) {
	gin.SetMode(gin.TestMode)

	srv, err := NewServer(testConfig(), nil, zap.NewNop())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","sessions":0}`, rec.Body.String())
}

func TestServer_SweepEvictsIdleState(t *testing.T) {
	gin.SetMode(gin.TestMode)

	srv, err := NewServer(testConfig(), nil, zap.NewNop())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/signup/sessions", nil))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 1, srv.sessions.Count())
	require.Equal(t, 1, srv.limiter.Len())

	srv.sweep(time.Now().Add(time.Hour))

	assert.Zero(t, srv.sessions.Count())
	assert.Zero(t, srv.limiter.Len())
}
