package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cryptoproxy/internal/auth"
	"cryptoproxy/internal/models"
)

// identityKey is the gin context key the verified token payload is
// stored under for the duration of the request.
const identityKey = "identity"

// RequestIDMiddleware generates or propagates request IDs for tracing
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// LoggerMiddleware logs each HTTP request with method, path, status
// and latency.
func LoggerMiddleware(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		event := logger.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = logger.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", c.Writer.Status()).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetString("request_id")).
			Dur("latency", time.Since(start)).
			Msg("HTTP request")
	}
}

// AuthMiddleware validates the Authorization header against the token
// service and attaches the verified identity to the request context.
// Rejections are always 401; the message names the failure.
func AuthMiddleware(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				models.NewErrorResponse("Authorization header missing"))
			return
		}

		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				models.NewErrorResponse("Invalid authorization format. Use: Bearer <token>"))
			return
		}

		payload, err := tokens.Verify(parts[1])
		if err != nil {
			message := "Invalid or expired token"
			if errors.Is(err, auth.ErrTokenExpired) {
				message = "Token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				models.NewErrorResponse(message))
			return
		}

		c.Set(identityKey, payload)
		c.Next()
	}
}

// IdentityFromContext returns the verified token payload attached by
// AuthMiddleware, if any.
func IdentityFromContext(c *gin.Context) (*auth.TokenPayload, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return nil, false
	}
	payload, ok := value.(*auth.TokenPayload)
	return payload, ok
}
