package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const emailKey = "email"

//go:generate mockgen -destination=../mocks/middleware.go -package=mocks parcel-delivery-api/middleware TokenVerifier

// TokenVerifier checks a bearer credential and returns the verified email
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// AdminChecker reports whether an email belongs to an admin
type AdminChecker interface {
	IsAdmin(ctx context.Context, email string) (bool, error)
}

// Authenticate verifies the bearer token and injects the caller's email
func Authenticate(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized access"})
			return
		}
		email, err := v.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "forbidden access"})
			return
		}
		c.Set(emailKey, email)
		c.Next()
	}
}

// RequireAdmin lets only admins through. It must run after Authenticate.
func RequireAdmin(roles AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := GetEmail(c)
		if email == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "forbidden access"})
			return
		}
		admin, err := roles.IsAdmin(c.Request.Context(), email)
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "failed to check role"})
			return
		}
		if !admin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "forbidden access"})
			return
		}
		c.Next()
	}
}

// GetEmail returns the authenticated caller's email, or "" outside Authenticate
func GetEmail(c *gin.Context) string {
	return c.GetString(emailKey)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
