package arena

import (
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/modules"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Module runs the daily post battle.
type Module struct{}

func New() *Module { return &Module{} }

func (m *Module) ID() string { return "arena" }

func (m *Module) Models() []interface{} {
	return []interface{}{&Battle{}, &BattleVote{}}
}

func (m *Module) RegisterRoutes(r modules.Routes, db *gorm.DB, _ *config.Config) {
	h := NewBattleHandler(NewBattleService(db))

	r.Get("/battles/today", h.Today)
	r.Get("/battles/history", h.History)
	r.AuthPost("/battles/:id/vote", h.Vote)
}

func (m *Module) RegisterAdminRoutes(router fiber.Router, db *gorm.DB, _ *config.Config) {
	h := NewBattleHandler(NewBattleService(db))
	router.Post("/battles/today", h.Draw)
}
