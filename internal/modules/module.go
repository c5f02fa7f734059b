package modules

import (
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Module is a feature area that owns a set of routes and, optionally, tables.
type Module interface {
	// ID names the module in logs.
	ID() string

	// Models returns module-owned GORM models for AutoMigrate. Shared
	// tables live in internal/models and are migrated by the database package.
	Models() []interface{}

	// RegisterRoutes mounts the module's routes under /api.
	RegisterRoutes(r Routes, db *gorm.DB, cfg *config.Config)
}

// AdminModule is a Module with admin-only routes.
type AdminModule interface {
	Module

	// RegisterAdminRoutes mounts routes on the admin group (JWT + admin check).
	RegisterAdminRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config)
}

// Routes mounts handlers on the /api router with middleware attached per
// route. Groups sharing a prefix in fiber run each other's middleware, so
// public and protected routes cannot be two groups on /api.
type Routes struct {
	Router fiber.Router
	// Public runs before read routes; it identifies the caller when a token
	// is present and lets anonymous requests through.
	Public []fiber.Handler
	// Protected runs before routes that require a signed-in, unbanned user.
	Protected []fiber.Handler
}

func chain(mw []fiber.Handler, h fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(mw)+1)
	out = append(out, mw...)
	return append(out, h)
}

func (r Routes) Get(path string, h fiber.Handler) {
	r.Router.Get(path, chain(r.Public, h)...)
}

func (r Routes) AuthGet(path string, h fiber.Handler) {
	r.Router.Get(path, chain(r.Protected, h)...)
}

func (r Routes) AuthPost(path string, h fiber.Handler) {
	r.Router.Post(path, chain(r.Protected, h)...)
}

func (r Routes) AuthPut(path string, h fiber.Handler) {
	r.Router.Put(path, chain(r.Protected, h)...)
}

func (r Routes) AuthDelete(path string, h fiber.Handler) {
	r.Router.Delete(path, chain(r.Protected, h)...)
}
