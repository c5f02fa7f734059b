package posts

import (
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/modules"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/services"
	"gorm.io/gorm"
)

// Module serves posts, reactions, comments and bookmarks. Its tables are
// shared with moderation and live in internal/models.
type Module struct {
	moderation    *services.ModerationService
	notifications *services.NotificationService
}

func New(moderation *services.ModerationService, notifications *services.NotificationService) *Module {
	return &Module{moderation: moderation, notifications: notifications}
}

func (m *Module) ID() string { return "posts" }

func (m *Module) Models() []interface{} { return nil }

func (m *Module) RegisterRoutes(r modules.Routes, db *gorm.DB, cfg *config.Config) {
	limits := LimitsFromConfig(cfg)
	h := NewPostHandler(
		NewPostService(db, m.moderation, limits),
		NewReactionService(db, m.notifications),
		NewCommentService(db, m.moderation, m.notifications, limits),
	)

	r.Get("/categories", h.Categories)
	r.Get("/posts", h.Feed)
	r.Get("/posts/explore", h.Explore)
	r.Get("/posts/:id", h.Get)
	r.Get("/posts/:id/comments", h.Comments)
	r.Get("/posts/:id/reactions", h.Reactions)
	r.Get("/users/:username/posts", h.ByAuthor)

	r.AuthPost("/posts", h.Create)
	r.AuthPut("/posts/:id", h.Update)
	r.AuthDelete("/posts/:id", h.Delete)
	r.AuthPost("/posts/:id/react", h.React)
	r.AuthDelete("/posts/:id/react", h.Unreact)
	r.AuthPost("/posts/:id/comments", h.AddComment)
	r.AuthPost("/posts/:id/save", h.ToggleSave)
	r.AuthPost("/comments/:id/like", h.LikeComment)
	r.AuthDelete("/comments/:id", h.DeleteComment)
	r.AuthGet("/me/saved", h.Saved)
}
