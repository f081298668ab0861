package middleware

import (
	"errors"
	"fmt"
	"go-tutoring-backend/config"
	"go-tutoring-backend/internal/delivery/http/response"
	"go-tutoring-backend/internal/domain"
	"go-tutoring-backend/pkg/apperror"
	"go-tutoring-backend/pkg/auth"
	"go-tutoring-backend/pkg/logger"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func AuthMiddleware(jwksProvider *auth.Provider, cfg *config.Config, authUC domain.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		var tokenString string

		// 1. Try to get token from Header
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		} else {
			// 2. Try to get token from Cookie
			cookie, err := c.Cookie("auth_token")
			if err == nil && cookie != "" {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header or auth_token cookie required", nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			// Check signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
				// HS256 - Use Secret
				if cfg.SupabaseJWTSecret == "" {
					return nil, fmt.Errorf("HS256 token received but SUPABASE_JWT_KEY is not configured")
				}
				return []byte(cfg.SupabaseJWTSecret), nil
			}

			if _, ok := token.Method.(*jwt.SigningMethodRSA); ok {
				// RS256 - Use JWKS
				return jwksProvider.KeyFunc(token)
			}

			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		})

		if err != nil || !token.Valid {
			logger.Log.Warn("token validation failed", "error", err)
			response.Error(c, http.StatusUnauthorized, "Invalid token", nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "Invalid claims", nil)
			c.Abort()
			return
		}

		// Extract Supabase standard claims
		sub, _ := claims["sub"].(string)
		email, _ := claims["email"].(string)
		var fullName string
		if meta, ok := claims["user_metadata"].(map[string]interface{}); ok {
			fullName, _ = meta["full_name"].(string)
		}

		if sub == "" {
			response.Error(c, http.StatusUnauthorized, "Invalid claims", nil)
			c.Abort()
			return
		}

		// Fetch fresh user data from DB to get the correct role.
		// The JWT role claim is often just 'authenticated' and never trusted.
		user, err := authUC.GetCurrentUser(c.Request.Context(), sub)
		if err != nil {
			var appErr *apperror.AppError
			if !errors.As(err, &appErr) || appErr.Code != http.StatusNotFound {
				response.Error(c, http.StatusUnauthorized, "User not found", nil)
				c.Abort()
				return
			}

			// First request from a verified identity: create the local row
			// from the claims so every downstream handler can rely on it.
			// Supabase already verified the email before issuing this token.
			user = &domain.User{
				ID:       sub,
				Email:    email,
				FullName: fullName,
			}
			if err := authUC.EnsureUserExists(c.Request.Context(), user); err != nil {
				logger.Log.Error("user sync failed", "error", err, "user_id", sub)
				response.Error(c, http.StatusUnauthorized, "User not found", nil)
				c.Abort()
				return
			}
			logger.Log.Info("synced new user from token", "user_id", sub)
		}

		role := user.Role
		if role == "" {
			role = domain.RoleTutor // Fallback
		}

		c.Set(string(domain.KeyUserID), sub)
		c.Set(string(domain.KeyUserEmail), email)
		c.Set(string(domain.KeyUserRole), role)

		c.Next()
	}
}
