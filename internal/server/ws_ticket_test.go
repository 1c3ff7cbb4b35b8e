package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kampus/internal/cache"
	"kampus/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTicketTestServer(t *testing.T) (*Server, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return &Server{
		config: &config.Config{JWTSecret: "test-secret"},
		redis:  rdb,
	}, rdb
}

func TestAuthRequired_WSTicket(t *testing.T) {
	s, rdb := newTicketTestServer(t)

	app := fiber.New()
	echoUserID := func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userID": c.Locals("userID")})
	}
	app.Get("/ws/chat", s.AuthRequired(), echoUserID)
	app.Get("/api/other", s.AuthRequired(), echoUserID)

	ctx := context.Background()

	t.Run("ValidTicketConsumedOnce", func(t *testing.T) {
		key := cache.WSTicketKey("ticket-one")
		require.NoError(t, rdb.Set(ctx, key, "123", time.Minute).Err())

		req := httptest.NewRequest(http.MethodGet, "/ws/chat?ticket=ticket-one", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var out struct {
			UserID uint `json:"userID"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		_ = resp.Body.Close()
		assert.Equal(t, uint(123), out.UserID)

		// Single-use: the ticket is gone and a replay fails.
		exists, err := rdb.Exists(ctx, key).Result()
		require.NoError(t, err)
		assert.Zero(t, exists)

		req = httptest.NewRequest(http.MethodGet, "/ws/chat?ticket=ticket-one", nil)
		resp, err = app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("InvalidTicketFailsOnWSPath", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ws/chat?ticket=bogus", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("NonWSPathFallsBackToJWT", func(t *testing.T) {
		token, err := s.generateToken(42, "deniz")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/other?ticket=bogus", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var out struct {
			UserID uint `json:"userID"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		_ = resp.Body.Close()
		assert.Equal(t, uint(42), out.UserID)
	})

	t.Run("TokenQueryParamRejectedOnWSPath", func(t *testing.T) {
		token, err := s.generateToken(42, "deniz")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/ws/chat?token="+token, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestIssueWSTicket(t *testing.T) {
	s, rdb := newTicketTestServer(t)

	app := fiber.New()
	app.Post("/api/ws/ticket", s.AuthRequired(), s.IssueWSTicket)

	token, err := s.generateToken(9, "ayse")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/ws/ticket", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Ticket    string `json:"ticket"`
		ExpiresIn int    `json:"expires_in"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	_ = resp.Body.Close()
	require.NotEmpty(t, out.Ticket)
	assert.Equal(t, int(cache.WSTicketTTL.Seconds()), out.ExpiresIn)

	// The stored ticket maps back to the issuing user.
	val, err := rdb.Get(context.Background(), cache.WSTicketKey(out.Ticket)).Result()
	require.NoError(t, err)
	assert.Equal(t, "9", val)
}

func TestTicketRevokedJTI(t *testing.T) {
	s, rdb := newTicketTestServer(t)

	app := fiber.New()
	app.Get("/api/other", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	token, err := s.generateToken(5, "cem")
	require.NoError(t, err)

	// Blacklist the token's jti and the same token stops working.
	var claims struct {
		JTI string `json:"jti"`
	}
	decodeJWTClaims(t, token, &claims)
	require.NotEmpty(t, claims.JTI)
	require.NoError(t, rdb.Set(context.Background(), "blacklist:"+claims.JTI, "1", time.Minute).Err())

	req := httptest.NewRequest(http.MethodGet, "/api/other", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// decodeJWTClaims unpacks the payload segment of a JWT without verifying it.
func decodeJWTClaims(t *testing.T, token string, dest interface{}) {
	t.Helper()

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(payload, dest))
}
