package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/config"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/services/ratelimit"
)

func rateLimitedRouter(ceiling int) *gin.Engine {
	gin.SetMode(gin.TestMode)

	limiter := ratelimit.NewLimiterWithClock(config.RateLimitConfig{
		RequestsPerMinute: ceiling,
		Window:            time.Minute,
	}, time.Now)

	router := gin.New()
	router.Use(RateLimit(limiter))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func doRequest(router *gin.Engine, forwardedFor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimit_DeniesOverCeiling(t *testing.T) {
	router := rateLimitedRouter(3)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doRequest(router, "10.0.0.1").Code)
	}

	w := doRequest(router, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate_limited")
}

func TestRateLimit_SeparateClients(t *testing.T) {
	router := rateLimitedRouter(1)

	assert.Equal(t, http.StatusOK, doRequest(router, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, doRequest(router, "10.0.0.2").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(router, "10.0.0.1").Code)
}

func TestRateLimit_FirstForwardedHopWins(t *testing.T) {
	router := rateLimitedRouter(1)

	assert.Equal(t, http.StatusOK, doRequest(router, "10.0.0.1, 172.16.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(router, "10.0.0.1, 172.16.0.9").Code)
}
