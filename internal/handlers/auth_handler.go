package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tixbay/internal/apperrors"
	"tixbay/internal/guard"
	"tixbay/internal/helpers"
	"tixbay/internal/models"
	"tixbay/internal/services"
)

func Register(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		res, err := a.Register(c.Request.Context(), req)
		if err != nil {
			c.JSON(apperrors.Status(err), models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(gin.H{
			"user_id": res.UserID,
			"profile": res.Profile,
		}, "Account created, check your email to verify it"))
	}
}

func Login(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email    string `json:"email" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		res, err := a.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			c.JSON(apperrors.Status(err), models.ErrorResponse(err.Error()))
			return
		}

		isProduction := os.Getenv("GIN_MODE") == "production"
		c.SetCookie(
			"access_token",
			res.Tokens.AccessToken,
			res.Tokens.ExpiresIn,
			"/",
			"",
			isProduction,
			true,
		)
		c.SetCookie(
			"refresh_token",
			res.Tokens.RefreshToken,
			3600*24*30, // 30 days
			"/",
			"",
			isProduction,
			true,
		)

		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
			"profile":  res.Profile,
			"redirect": guard.HomeFor(res.Profile.Role),
		}, "Logged in successfully"))
	}
}

// Logout clears the session cookies before anything else, so the caller is
// logged out locally even when the backend revocation fails.
func Logout(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("access_token")

		isProduction := os.Getenv("GIN_MODE") == "production"
		c.SetCookie("access_token", "", -1, "/", "", isProduction, true)
		c.SetCookie("refresh_token", "", -1, "/", "", isProduction, true)

		a.Logout(c.Request.Context(), token)

		c.JSON(http.StatusOK, gin.H{
			"message":  "Logged out successfully",
			"redirect": guard.LoginPath,
		})
	}
}

func ResendVerification(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email string `json:"email" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		if err := a.ResendVerification(c.Request.Context(), req.Email); err != nil {
			c.JSON(apperrors.Status(err), models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Verification email sent if the account exists"))
	}
}

func GetProfile(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, token, ok := currentUser(c)
		if !ok {
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid user ID in token"))
			return
		}

		profile, err := a.Profile(c.Request.Context(), userID, token)
		if err != nil {
			c.JSON(apperrors.Status(err), models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(profile, ""))
	}
}

// AuthEvents receives auth webhook callbacks (signup confirmations) and
// lazily repairs any profile row that went missing between signup and
// profile creation.
func AuthEvents(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			UserID   string                 `json:"user_id" binding:"required"`
			Email    string                 `json:"email" binding:"required"`
			Metadata map[string]interface{} `json:"metadata"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		userID, err := uuid.Parse(req.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid user ID"))
			return
		}

		profile, err := a.ReconcileAuthEvent(c.Request.Context(), userID, req.Email, req.Metadata, "")
		if err != nil {
			c.JSON(apperrors.Status(err), models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(profile, ""))
	}
}

// currentUser pulls the enhanced claims and access token the auth
// middleware stored. A false return means the response is already written.
func currentUser(c *gin.Context) (*helpers.EnhancedClaims, string, bool) {
	raw, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, "", false
	}
	claims, ok := raw.(*helpers.EnhancedClaims)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid user claims"})
		return nil, "", false
	}
	token := c.GetString("access_token")
	if token == "" {
		token, _ = c.Cookie("access_token")
	}
	return claims, token, true
}
