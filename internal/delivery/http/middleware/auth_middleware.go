package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"contact-backend/internal/delivery/http/response"
	"contact-backend/internal/domain"
	"contact-backend/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AdminAuthMiddleware accepts HS256 bearer tokens signed with secret whose
// "role" claim is "admin".
func AdminAuthMiddleware(secret string, secLog *security.SecurityLogger) gin.HandlerFunc {
	if secLog == nil {
		secLog = security.Nop()
	}

	reject := func(c *gin.Context, reason string) {
		secLog.LogUnauthorizedAccess(c.Request.Context(), c.ClientIP(), c.GetHeader("User-Agent"), c.GetString(RequestIDKey), reason)
		response.Error(c, http.StatusUnauthorized, "Unauthorized", "")
		c.Abort()
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || tokenString == "" {
			reject(c, "missing_bearer_token")
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			reject(c, "invalid_token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			reject(c, "invalid_claims")
			return
		}
		if role, _ := claims["role"].(string); role != "admin" {
			reject(c, "not_admin")
			return
		}

		sub, _ := claims.GetSubject()
		c.Set(string(domain.KeyAdminSubject), sub)
		c.Next()
	}
}
