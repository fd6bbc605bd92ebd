package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/motofleet/internal/metrics"
	"github.com/mamadbah2/motofleet/internal/server/handlers"
	"github.com/mamadbah2/motofleet/pkg/clients/identity"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequestIDGeneratedAndPropagated(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(requestIDKey)) })

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, rec.Header().Get(RequestIDHeader), rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rec = serve(r, req)
	assert.Equal(t, "abc", rec.Header().Get(RequestIDHeader))
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/motos/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, httptest.NewRequest(http.MethodGet, "/motos/1", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/motos/2", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/nope", nil))

	count, err := testutil.GatherAndCount(reg, "motofleet_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

type countingVerifier struct {
	calls int
	err   error
	users []identity.User
}

func (v *countingVerifier) Lookup(context.Context, string) (*identity.LookupResponse, error) {
	v.calls++
	if v.err != nil {
		return nil, v.err
	}
	return &identity.LookupResponse{Users: v.users}, nil
}

func authRouter(a *Auth) *gin.Engine {
	r := gin.New()
	r.Use(a.Handler())
	r.GET("/motos", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(handlers.UserEmailKey)) })
	return r
}

func authed(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/motos", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestAuthCachesVerifiedTokens(t *testing.T) {
	clock := clockwork.NewFakeClock()
	verifier := &countingVerifier{users: []identity.User{{Email: "op@mottu.com"}}}
	r := authRouter(NewAuth(verifier, time.Minute, clock, nil))

	rec := serve(r, authed("token-1"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "op@mottu.com", rec.Body.String())

	serve(r, authed("token-1"))
	assert.Equal(t, 1, verifier.calls)

	clock.Advance(2 * time.Minute)
	serve(r, authed("token-1"))
	assert.Equal(t, 2, verifier.calls)
}

func TestAuthRejections(t *testing.T) {
	verifier := &countingVerifier{}
	r := authRouter(NewAuth(verifier, time.Minute, nil, nil))

	rec := serve(r, authed(""))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))

	rec = serve(r, authed("no-users"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	verifier.err = &identity.APIError{Status: 400, Message: identity.CodeInvalidIDToken}
	rec = serve(r, authed("bad"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	verifier.err = errors.New("dial tcp: timeout")
	rec = serve(r, authed("any"))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(2)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	r := gin.New()
	r.Use(limiter.Handler())
	r.POST("/cmd", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := func() int {
		return serve(r, httptest.NewRequest(http.MethodPost, "/cmd", nil)).Code
	}
	assert.Equal(t, http.StatusOK, req())
	assert.Equal(t, http.StatusOK, req())
	assert.Equal(t, http.StatusTooManyRequests, req())

	now = now.Add(30 * time.Second)
	assert.Equal(t, http.StatusOK, req())
}

func TestRateLimiterSweepsIdleClients(t *testing.T) {
	limiter := NewRateLimiter(5)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.allow("10.0.0.1"))
	assert.True(t, limiter.allow("10.0.0.2"))
	assert.Len(t, limiter.clients, 2)

	now = now.Add(limiterIdle / 2)
	assert.True(t, limiter.allow("10.0.0.2"))
	assert.Len(t, limiter.clients, 2, "no sweep before the idle window passes")

	now = now.Add(limiterIdle/2 + time.Second)
	assert.True(t, limiter.allow("10.0.0.3"))
	assert.Len(t, limiter.clients, 2)
	assert.NotContains(t, limiter.clients, "10.0.0.1")
	assert.Contains(t, limiter.clients, "10.0.0.2")
}
