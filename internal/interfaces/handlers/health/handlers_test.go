package health

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"keystone-backend/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type okPinger struct{}

func (okPinger) Ping() error { return nil }

func setupHealthTest(t *testing.T) (*fiber.App, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	h := &Handlers{Rdb: rdb, DB: okPinger{}, HealthAdminKey: "secret"}
	app := fiber.New()
	app.Get("/health/json", h.JSON)
	app.Get("/health/reset", h.Reset)
	return app, mr
}

func TestHealthJSON(t *testing.T) {
	app, mr := setupHealthTest(t)
	require.NoError(t, mr.Set(middleware.KeyReqTotal, "10"))
	require.NoError(t, mr.Set(middleware.KeyReqErrors, "2"))

	resp, err := app.Test(httptest.NewRequest("GET", "/health/json", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var parsed map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	assert.Equal(t, "keystone-api", parsed["service"])
	assert.Equal(t, "ok", parsed["status"])

	traffic := parsed["traffic"].(map[string]interface{})
	assert.Equal(t, float64(10), traffic["totalRequests"])
	assert.Equal(t, float64(8), traffic["successCount"])
	assert.Equal(t, float64(2), traffic["failedCount"])

	deps := parsed["dependencies"].(map[string]interface{})
	dbDep := deps["database"].(map[string]interface{})
	assert.Equal(t, "connected", dbDep["status"])
	redisDep := deps["redis"].(map[string]interface{})
	assert.Equal(t, "connected", redisDep["status"])
}

func TestHealthReset(t *testing.T) {
	app, mr := setupHealthTest(t)
	require.NoError(t, mr.Set(middleware.KeyReqTotal, "10"))

	resp, err := app.Test(httptest.NewRequest("GET", "/health/reset", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/health/reset?key=wrong", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/health/reset?key=secret", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.False(t, mr.Exists(middleware.KeyReqTotal))
	assert.True(t, mr.Exists(middleware.KeyStartTime))
}
