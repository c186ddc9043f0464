package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"profile-nft-backend/internal/config"
)

// WalletAddressKey is the gin context key holding the authenticated caller's
// Sui address, taken from the token's sub claim.
const WalletAddressKey = "wallet_address"

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			if cfg.JWTSecret == "" {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWTSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))

		if err != nil {
			var errorMsg string
			if strings.Contains(err.Error(), "signature is invalid") {
				errorMsg = "token signature is invalid - check JWT secret"
			} else if strings.Contains(err.Error(), "token is expired") {
				errorMsg = "token has expired"
			} else {
				errorMsg = err.Error()
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "message": errorMsg})
			c.Abort()
			return
		}

		if !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
			c.Abort()
			return
		}

		// The sub claim carries the caller's wallet address.
		sub, ok := claims["sub"].(string)
		if !ok || !strings.HasPrefix(sub, "0x") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing wallet address in token"})
			c.Abort()
			return
		}

		c.Set(WalletAddressKey, sub)
		c.Next()
	}
}
