package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"cdc_zoning/internal/auth"
	"cdc_zoning/internal/httpx"
)

// UsernameKey is the gin context key holding the authenticated user
const UsernameKey = "username"

// AuthRequired is a middleware that validates the bearer JWT
func AuthRequired(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httpx.AbortErr(c, httpx.ErrUnauthorized("missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			httpx.AbortErr(c, httpx.ErrUnauthorized("invalid authorization header format"))
			return
		}

		claims, err := issuer.ParseToken(parts[1])
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				httpx.AbortErr(c, httpx.ErrTokenExpired("token expired"))
			} else {
				httpx.AbortErr(c, httpx.ErrInvalidToken("invalid token"))
			}
			return
		}

		c.Set(UsernameKey, claims.Username())
		c.Next()
	}
}
