package social

import (
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/modules"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/services"
	"gorm.io/gorm"
)

// Module serves profiles and the follow graph.
type Module struct {
	auth          *services.AuthService
	notifications *services.NotificationService
}

func New(auth *services.AuthService, notifications *services.NotificationService) *Module {
	return &Module{auth: auth, notifications: notifications}
}

func (m *Module) ID() string { return "social" }

func (m *Module) Models() []interface{} { return nil }

func (m *Module) RegisterRoutes(r modules.Routes, db *gorm.DB, _ *config.Config) {
	h := NewSocialHandler(NewSocialService(db, m.auth, m.notifications))

	r.Get("/users/:username", h.Profile)
	r.Get("/users/:username/followers", h.Followers)
	r.Get("/users/:username/following", h.Following)

	r.AuthPost("/users/:id/follow", h.ToggleFollow)
	r.AuthPut("/me/profile", h.UpdateProfile)
}
