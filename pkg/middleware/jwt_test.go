package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/wapangaji/kiganjani/internal/config"
	"github.com/wapangaji/kiganjani/internal/models"
	"github.com/wapangaji/kiganjani/internal/sessions"
	"github.com/wapangaji/kiganjani/internal/tokens"
)

func jwtTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "jwt-middleware-test-secret-32-bytes"
	return cfg
}

func TestJWTAuth_ValidToken(t *testing.T) {
	sessions.SetBlacklistClient(nil)
	cfg := jwtTestConfig()
	u := &models.User{ID: "user-1", PhoneNumber: "+255754123456", FullName: "Asha Juma"}
	tok, err := tokens.GenerateAccessToken(cfg, u, time.Minute)
	require.NoError(t, err)

	g := gin.New()
	g.GET("/", JWTAuth(cfg), func(c *gin.Context) {
		require.Equal(t, "user-1", UserID(c))
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)

	require.Equal(t, http.StatusOK, rw.Code)
}

func TestJWTAuth_MissingAndBadHeader(t *testing.T) {
	sessions.SetBlacklistClient(nil)
	cfg := jwtTestConfig()
	g := gin.New()
	g.GET("/", JWTAuth(cfg), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	require.Equal(t, http.StatusUnauthorized, rw.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc")
	rw = httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	require.Equal(t, http.StatusUnauthorized, rw.Code)
}

func TestJWTAuth_ExpiredToken(t *testing.T) {
	sessions.SetBlacklistClient(nil)
	cfg := jwtTestConfig()
	u := &models.User{ID: "user-1", PhoneNumber: "+255754123456"}
	tok, err := tokens.GenerateAccessToken(cfg, u, -time.Minute)
	require.NoError(t, err)

	g := gin.New()
	g.GET("/", JWTAuth(cfg), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)

	require.Equal(t, http.StatusUnauthorized, rw.Code)
}

func TestJWTAuth_BlacklistedToken(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	sessions.SetBlacklistClient(client)
	defer sessions.SetBlacklistClient(nil)

	cfg := jwtTestConfig()
	u := &models.User{ID: "user-1", PhoneNumber: "+255754123456"}
	tok, err := tokens.GenerateAccessToken(cfg, u, time.Minute)
	require.NoError(t, err)
	require.NoError(t, sessions.BlacklistAccessToken(context.Background(), tok, time.Minute))

	g := gin.New()
	g.GET("/", JWTAuth(cfg), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)

	require.Equal(t, http.StatusUnauthorized, rw.Code)
}
