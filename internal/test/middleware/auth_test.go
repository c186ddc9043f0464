package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"profile-nft-backend/internal/config"
	"profile-nft-backend/internal/middleware"
)

func authRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.AuthMiddleware(cfg))
	router.GET("/test", func(c *gin.Context) {
		address, _ := c.Get(middleware.WalletAddressKey)
		c.JSON(http.StatusOK, gin.H{"address": address})
	})
	return router
}

func TestAuthMiddleware_NoToken(t *testing.T) {
	router := authRouter(&config.Config{JWTSecret: "test-secret"})

	req, _ := http.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	router := authRouter(&config.Config{JWTSecret: "test-secret"})

	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret-key-for-jwt-signing-must-be-long-enough"}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "0xabc123",
	})
	tokenString, _ := token.SignedString([]byte(cfg.JWTSecret))

	router := authRouter(cfg)
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "0xabc123")
}

func TestAuthMiddleware_SubMustBeWalletAddress(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret-key-for-jwt-signing-must-be-long-enough"}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-123",
	})
	tokenString, _ := token.SignedString([]byte(cfg.JWTSecret))

	router := authRouter(cfg)
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_WrongSigningMethodRejected(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}

	// Tokens signed with a different secret fail signature validation.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "0xabc"})
	tokenString, _ := token.SignedString([]byte("other-secret"))

	router := authRouter(cfg)
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
