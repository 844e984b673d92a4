package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"tixbay/internal/apperrors"
	"tixbay/internal/guard"
	"tixbay/internal/helpers"
	"tixbay/internal/models"
	"tixbay/internal/services"
)

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger provides structured logging middleware
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		// Process request
		c.Next()

		// Log request completion
		latency := time.Since(start)
		clientIP := c.ClientIP()
		method := c.Request.Method
		statusCode := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		requestID, _ := c.Get("request_id")

		logger.Info("HTTP Request",
			"request_id", requestID,
			"method", method,
			"path", path,
			"status", statusCode,
			"latency", latency,
			"client_ip", clientIP,
		)
	}
}

// ErrorHandler provides centralized error handling. Errors attached to the
// context are translated through the app error taxonomy so clients get a
// stable status code per failure class.
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			requestID, _ := c.Get("request_id")

			logger.Error("Request error",
				"request_id", requestID,
				"error", err.Error(),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)

			if c.Writer.Written() {
				return
			}
			c.JSON(apperrors.Status(err), gin.H{
				"error":      err.Error(),
				"request_id": requestID,
			})
		}
	}
}

func AuthMiddleware(authService *services.AuthService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get JWT token from cookie
		token, err := c.Cookie("access_token")
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Unauthorized access",
				"error":   "JWT token not found in cookie",
			})
			c.Abort()
			return
		}

		// Validate token using Supabase JWKS
		claims, err := helpers.ValidateToken(token)
		if err != nil {
			// Token validation failed, try to refresh
			refreshToken, refreshErr := c.Cookie("refresh_token")
			if refreshErr != nil {
				c.JSON(http.StatusUnauthorized, gin.H{
					"message": "Unauthorized access",
					"error":   err.Error(),
				})
				c.Abort()
				return
			}

			tokenRes, refreshErr := authService.RefreshToken(refreshToken)
			if refreshErr != nil {
				logger.Error("Token refresh failed", "error", refreshErr)
				c.JSON(http.StatusUnauthorized, gin.H{
					"message": "Unauthorized access",
					"error":   "Token expired and refresh failed",
				})
				c.Abort()
				return
			}

			// Refresh succeeded, set new cookies
			isProduction := os.Getenv("GIN_MODE") == "production"
			logger.Info("Token refreshed successfully",
				"user_id", tokenRes.User.ID,
				"expires_in", tokenRes.ExpiresIn,
			)
			c.SetCookie(
				"access_token",
				tokenRes.AccessToken,
				tokenRes.ExpiresIn,
				"/",
				"", // let Gin pick current domain
				isProduction,
				true,
			)
			c.SetCookie(
				"refresh_token",
				tokenRes.RefreshToken,
				3600*24*30, // 30 days
				"/",
				"",
				isProduction,
				true,
			)
			token = tokenRes.AccessToken
			claims, err = helpers.ValidateToken(token)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{
					"message": "Unauthorized access",
					"error":   "Refreshed token validation failed",
				})
				c.Abort()
				return
			}
		}

		userID, parseErr := uuid.Parse(claims.Subject)
		if parseErr != nil {
			logger.Error("Invalid user ID in token", "user_id", claims.Subject, "error", parseErr)
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Unauthorized access",
				"error":   "Invalid subject in token",
			})
			c.Abort()
			return
		}

		// An authenticated identity without a profile row is a broken
		// account, not a guest. Surface it instead of degrading the role.
		profile, err := authService.Profile(c.Request.Context(), userID, token)
		if err != nil {
			if errors.Is(err, apperrors.ErrProfileMissing) {
				c.JSON(apperrors.Status(err), gin.H{
					"message": "Account profile is missing",
					"error":   err.Error(),
				})
			} else {
				logger.Error("Profile lookup failed", "user_id", userID, "error", err)
				c.JSON(apperrors.Status(err), gin.H{
					"message": "Failed to resolve account",
					"error":   err.Error(),
				})
			}
			c.Abort()
			return
		}

		enhancedClaims := &helpers.EnhancedClaims{
			CustomClaims:  claims,
			Role:          profile.Role,
			UserID:        claims.Subject,
			Email:         profile.Email,
			PreferredName: profile.PreferredName,
			CreatedAt:     profile.CreatedAt.Format(time.RFC3339),
		}

		c.Set("user", enhancedClaims)
		c.Set("access_token", token)
		c.Next()
	}
}

// RequireRole gates a route group on the navigation decision matrix. A
// redirected caller gets the target route in the body so browser clients
// can navigate there.
func RequireRole(requiredRole models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := guard.Session{Phase: guard.PhaseAnonymous}
		if raw, exists := c.Get("user"); exists {
			if claims, ok := raw.(*helpers.EnhancedClaims); ok {
				session = guard.Session{Phase: guard.PhaseAuthenticated, Role: claims.Role}
			}
		}

		decision := guard.Decide(session, requiredRole, c.Request.URL.Path)
		if decision.Action == guard.ActionRedirect {
			c.JSON(http.StatusForbidden, gin.H{
				"message":   "Access denied for this role",
				"redirect":  decision.Target,
				"return_to": decision.ReturnTo,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RateLimit allows max requests per window per client IP and route, backed
// by a Redis counter. Exceeding the budget returns 429.
func RateLimit(rdb *redis.Client, max int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:%s:%s", c.FullPath(), c.ClientIP())

		count, err := rdb.Incr(c.Request.Context(), key).Result()
		if err != nil {
			// Redis being down should not take auth down with it.
			c.Next()
			return
		}
		if count == 1 {
			rdb.Expire(c.Request.Context(), key, window)
		}

		if count > int64(max) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"message": "Too many requests, try again later",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
