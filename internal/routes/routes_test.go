package routes

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/realtime"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp() *fiber.App {
	cfg := &config.Config{JWTSecret: "test-secret", AdminToken: "op-token"}
	hub := realtime.NewHub()
	h := Handlers{
		Auth:          handlers.NewAuthHandler(services.NewAuthService(nil, cfg)),
		Health:        handlers.NewHealthHandler(hub),
		Moderation:    handlers.NewModerationHandler(services.NewModerationService(nil, nil, nil, 5, nil)),
		Notifications: handlers.NewNotificationHandler(services.NewNotificationService(nil), hub),
		Legal:         handlers.NewLegalHandler("Sussurro"),
		Config:        handlers.NewRemoteConfigHandler(nil),
	}
	app := fiber.New()
	Setup(app, cfg, nil, h, nil)
	return app
}

func TestAdminResolveRoute(t *testing.T) {
	app := newTestApp()
	path := "/api/admin/reports/" + uuid.NewString() + "/resolve"

	cases := []struct {
		name   string
		token  string
		status int
	}{
		{"without admin token", "", fiber.StatusUnauthorized},
		{"with admin token reaches the handler", "op-token", fiber.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodPut, path, strings.NewReader(`{"action":"archive"}`))
			req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			if tc.token != "" {
				req.Header.Set(middleware.AdminTokenHeader, tc.token)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestResolveWithoutSuffixIsNotRouted(t *testing.T) {
	app := newTestApp()
	req := httptest.NewRequest(fiber.MethodPut, "/api/admin/reports/"+uuid.NewString(), strings.NewReader(`{"action":"dismiss"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(middleware.AdminTokenHeader, "op-token")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
