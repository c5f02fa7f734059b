package modules

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutesAttachMiddlewarePerRoute(t *testing.T) {
	app := fiber.New()
	deny := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusUnauthorized) }
	tag := func(c *fiber.Ctx) error {
		c.Set("X-Public", "1")
		return c.Next()
	}
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }

	r := Routes{Router: app.Group("/api"), Public: []fiber.Handler{tag}, Protected: []fiber.Handler{deny}}
	r.Get("/things", ok)
	r.AuthPost("/things", ok)
	r.AuthGet("/mine", ok)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/things", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("X-Public"))

	resp, err = app.Test(httptest.NewRequest("POST", "/api/things", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("X-Public"))

	resp, err = app.Test(httptest.NewRequest("GET", "/api/mine", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
