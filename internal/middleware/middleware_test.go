package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/cabinet/config"
	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/service"
	"github.com/dmehra2102/prod-golang-projects/cabinet/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/cabinet/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestIDAndCaller(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Caller())
	var seen service.Caller
	r.GET("/x", func(c *gin.Context) {
		seen = service.CallerFrom(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "req-7")
	w := serve(r, req)

	assert.Equal(t, "req-7", w.Header().Get(HeaderRequestID))
	assert.Equal(t, "req-7", seen.RequestID)
	assert.Equal(t, "anonymous", seen.Actor)
	assert.NotEmpty(t, seen.IPAddress)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Len(t, w.Header().Get(HeaderRequestID), 36)
}

func TestRecoveryAndLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	r := gin.New()
	r.Use(RequestID(), Logger(log), Recovery(log))
	r.GET("/boom", func(*gin.Context) { panic("nil map") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error","code":"INTERNAL_ERROR"}`, w.Body.String())

	require.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
	access := logs.FilterMessage("request").All()
	require.Len(t, access, 1)
	assert.Equal(t, zapcore.ErrorLevel, access[0].Level)
	assert.Equal(t, int64(500), access[0].ContextMap()["status"])
}

func TestMetricsUseRouteTemplate(t *testing.T) {
	m := metrics.NewCollector("mw_test")
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/patients/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, httptest.NewRequest(http.MethodGet, "/patients/a", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/patients/b", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/patients/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))
	assert.Zero(t, testutil.ToFloat64(m.InFlightGauge))
}

func TestRateLimit(t *testing.T) {
	m := metrics.NewCollector("rl_test")
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(rate.Every(time.Second), 2)
	l.now = func() time.Time { return now }

	r := gin.New()
	r.Use(RateLimit(l, m))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
	}
	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimited))

	other := httptest.NewRequest(http.MethodGet, "/x", nil)
	other.RemoteAddr = "198.51.100.4:5555"
	assert.Equal(t, http.StatusOK, serve(r, other).Code, "budgets are per IP")

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)

	now = now.Add(time.Hour)
	l.Sweep()
	assert.Empty(t, l.visitors)
}

type stubAuthenticator struct {
	err error
}

func (s stubAuthenticator) Authenticate(token string) (*domain.Claims, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Claims{Subject: "cabinet"}, nil
}

func TestAuth(t *testing.T) {
	route := func(a Authenticator) *gin.Engine {
		r := gin.New()
		r.Use(Auth(a), Caller())
		r.GET("/x", func(c *gin.Context) {
			c.String(http.StatusOK, service.CallerFrom(c.Request.Context()).Actor)
		})
		return r
	}

	w := serve(route(stubAuthenticator{}), httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_TOKEN")

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer abc")
	w = serve(route(stubAuthenticator{}), req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cabinet", w.Body.String())

	w = serve(route(stubAuthenticator{err: auth.ErrTokenExpired}), req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")

	w = serve(route(stubAuthenticator{err: errors.New("bad signature")}), req)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS(config.CORSConfig{
		AllowedOrigins: []string{"https://agenda.example.fr"},
		AllowedMethods: []string{"GET", "PATCH"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         time.Hour,
	}))
	r.PATCH("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://agenda.example.fr")
	req.Header.Set("Access-Control-Request-Method", "PATCH")
	w := serve(r, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://agenda.example.fr", w.Header().Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://evil.example")
	w = serve(r, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
