package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode(t *testing.T, body io.Reader, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(body).Decode(v))
}

func TestDecodeSetting(t *testing.T) {
	v, err := decodeSetting("bool", "true")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = decodeSetting("int", "42")
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	v, err = decodeSetting("json", `{"a":[1,2]}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"a": []interface{}{1.0, 2.0}}, v)

	v, err = decodeSetting("string", "olá")
	require.NoError(t, err)
	assert.Equal(t, "olá", v)

	_, err = decodeSetting("bool", "talvez")
	assert.Error(t, err)
	_, err = decodeSetting("int", "1.5")
	assert.Error(t, err)
}

func TestLegalPagesUseAppName(t *testing.T) {
	h := NewLegalHandler("Sussurro <beta>")
	app := fiber.New()
	app.Get("/privacy", h.PrivacyPolicy)
	app.Get("/guidelines", h.CommunityGuidelines)

	for _, path := range []string{"/privacy", "/guidelines"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), "Sussurro &lt;beta&gt;")
	}
}

func TestUsernameAvailableRejectsInvalidWithoutLookup(t *testing.T) {
	h := NewAuthHandler(services.NewAuthService(nil, nil))
	app := fiber.New()
	app.Get("/check", h.UsernameAvailable)

	resp, err := app.Test(httptest.NewRequest("GET", "/check?username=ab", nil))
	require.NoError(t, err)
	var out map[string]interface{}
	decode(t, resp.Body, &out)
	assert.Equal(t, false, out["available"])
	assert.NotEmpty(t, out["reason"])
}

func TestRegisterValidation(t *testing.T) {
	h := NewAuthHandler(services.NewAuthService(nil, nil))
	app := fiber.New()
	app.Post("/register", h.Register)

	cases := map[string]string{
		"bad email":    `{"email":"nope","password":"secret1","username":"anonimo"}`,
		"short pass":   `{"email":"a@b.co","password":"123","username":"anonimo"}`,
		"bad username": `{"email":"a@b.co","password":"secret1","username":"no spaces"}`,
		"long avatar":  `{"email":"a@b.co","password":"secret1","username":"anonimo","avatar":"123456789"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp, err := app.Test(jsonRequest("POST", "/register", body))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestAuthFlowAgainstPostgres(t *testing.T) {
	pg := testutil.NewPostgres(t)
	cfg := &config.Config{
		JWTSecret:        "integration-secret",
		JWTAccessExpiry:  time.Minute,
		JWTRefreshExpiry: time.Hour,
	}
	h := NewAuthHandler(services.NewAuthService(pg.DB, cfg))

	app := fiber.New()
	app.Post("/register", h.Register)
	app.Post("/login", h.Login)
	app.Post("/refresh", h.Refresh)
	app.Post("/logout", h.Logout)
	app.Get("/available", h.UsernameAvailable)

	resp, err := app.Test(jsonRequest("POST", "/register",
		`{"email":"Anon@Example.com","password":"secret1","username":"Sombra_1"}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var registered dto.AuthResponse
	decode(t, resp.Body, &registered)
	assert.Equal(t, "anon@example.com", registered.User.Email)
	assert.Equal(t, "👻", registered.User.AvatarValue)

	token, err := jwt.Parse(registered.AccessToken, func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, registered.User.ID.String(), claims["sub"])
	assert.Equal(t, "Sombra_1", claims["username"])

	resp, err = app.Test(jsonRequest("POST", "/register",
		`{"email":"other@example.com","password":"secret1","username":"sombra_1"}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/available?username=SOMBRA_1", nil))
	require.NoError(t, err)
	var avail map[string]interface{}
	decode(t, resp.Body, &avail)
	assert.Equal(t, false, avail["available"])

	resp, err = app.Test(jsonRequest("POST", "/login", `{"email":"anon@example.com","password":"wrong1"}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(jsonRequest("POST", "/login", `{"email":"anon@example.com","password":"secret1"}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	refreshBody := `{"refresh_token":"` + registered.RefreshToken + `"}`
	resp, err = app.Test(jsonRequest("POST", "/refresh", refreshBody))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var rotated dto.AuthResponse
	decode(t, resp.Body, &rotated)
	assert.NotEqual(t, registered.RefreshToken, rotated.RefreshToken)

	// The old refresh token was revoked by rotation.
	resp, err = app.Test(jsonRequest("POST", "/refresh", refreshBody))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(jsonRequest("POST", "/logout", `{"refresh_token":"`+rotated.RefreshToken+`"}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(jsonRequest("POST", "/refresh", `{"refresh_token":"`+rotated.RefreshToken+`"}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRemoteConfigAgainstPostgres(t *testing.T) {
	pg := testutil.NewPostgres(t)
	h := NewRemoteConfigHandler(pg.DB)
	require.NoError(t, h.SeedDefaults())
	require.NoError(t, h.SeedDefaults())

	app := fiber.New()
	app.Get("/config", h.GetConfig)
	app.Put("/config/:key", h.SetConfigKey)
	app.Delete("/config/:key", h.DeleteConfigKey)

	resp, err := app.Test(jsonRequest("PUT", "/config/maintenance_mode", `{"value":"yes","type":"bool"}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(jsonRequest("PUT", "/config/maintenance_mode", `{"value":"true","type":"bool"}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(jsonRequest("PUT", "/config/max_battles", `{"value":"3","type":"int"}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/config", nil))
	require.NoError(t, err)
	var values map[string]interface{}
	decode(t, resp.Body, &values)
	assert.Equal(t, true, values["maintenance_mode"])
	assert.Equal(t, 3.0, values["max_battles"])
	assert.Equal(t, "", values["announcement_title"])

	resp, err = app.Test(httptest.NewRequest("DELETE", "/config/max_battles", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, err = app.Test(httptest.NewRequest("DELETE", "/config/max_battles", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
