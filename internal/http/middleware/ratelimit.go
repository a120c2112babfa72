package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/models"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/services/ratelimit"
)

// RateLimit rejects clients that exceed the per-minute request ceiling. The
// denial carries a Retry-After header with the seconds until the window
// resets.
func RateLimit(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		allowed, retryAfter := limiter.Admit(clientIdentifier(ctx))
		if !allowed {
			ctx.Header("Retry-After", strconv.Itoa(retryAfter))
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, models.APIResponse{
				Success: false,
				Error:   fmt.Sprintf("rate limit exceeded, retry in %d seconds", retryAfter),
				Code:    models.CodeRateLimited,
			})
			return
		}
		ctx.Next()
	}
}

// clientIdentifier derives the rate-limit key from the first forwarded hop,
// falling back to the connection address, then to a literal "unknown".
func clientIdentifier(ctx *gin.Context) string {
	if forwarded := ctx.GetHeader("X-Forwarded-For"); forwarded != "" {
		if first := strings.TrimSpace(strings.Split(forwarded, ",")[0]); first != "" {
			return first
		}
	}
	if ip := ctx.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}
