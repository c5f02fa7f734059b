package logging

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	mu   sync.Mutex
	rows []models.SystemLog
}

func (c *captured) write(batch []models.SystemLog) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows = append(c.rows, batch...)
	return nil
}

func TestPGHandlerStoresErrorsOnStop(t *testing.T) {
	sink := &captured{}
	h := newPGHandler(sink.write, time.Hour)
	logger := slog.New(h).With("request_id", "req-1")

	logger.Info("ignored")
	logger.Error("post create failed",
		"user_id", "u-1", "action", "create_post", "error", errors.New("boom"),
		"latency_ms", 12.6, "path", "/api/posts", "post_id", "p-1")
	h.Stop()
	h.Stop()

	require.Len(t, sink.rows, 1)
	row := sink.rows[0]
	assert.Equal(t, "ERROR", row.Level)
	assert.Equal(t, "post create failed", row.Message)
	assert.Equal(t, "req-1", row.RequestID)
	require.NotNil(t, row.UserID)
	assert.Equal(t, "u-1", *row.UserID)
	assert.Equal(t, "create_post", row.Action)
	assert.Equal(t, "boom", row.Error)
	assert.Equal(t, 13, row.LatencyMs)
	assert.Equal(t, "/api/posts", row.Path)
	assert.JSONEq(t, `{"post_id":"p-1"}`, string(row.Extra))
}

func TestPGHandlerGroupsExtraKeys(t *testing.T) {
	sink := &captured{}
	h := newPGHandler(sink.write, time.Hour)
	slog.New(h).WithGroup("battle").Error("draw failed", "category", "geral")
	h.Stop()

	require.Len(t, sink.rows, 1)
	assert.JSONEq(t, `{"battle.category":"geral"}`, string(sink.rows[0].Extra))
}

type countingHandler struct {
	level slog.Level
	n     *int
	err   error
}

func (c countingHandler) Enabled(_ context.Context, l slog.Level) bool { return l >= c.level }
func (c countingHandler) Handle(context.Context, slog.Record) error    { *c.n++; return c.err }
func (c countingHandler) WithAttrs([]slog.Attr) slog.Handler           { return c }
func (c countingHandler) WithGroup(string) slog.Handler                { return c }

func TestMultiHandlerFansOutByLevel(t *testing.T) {
	var info, errs int
	failing := errors.New("sink down")
	m := NewMultiHandler(
		countingHandler{level: slog.LevelInfo, n: &info, err: failing},
		countingHandler{level: slog.LevelError, n: &errs},
	)
	logger := slog.New(m)

	logger.Info("hello")
	logger.Error("bad")

	assert.Equal(t, 2, info)
	assert.Equal(t, 1, errs)
	assert.False(t, m.Enabled(context.Background(), slog.LevelDebug))

	rec := slog.NewRecord(time.Now(), slog.LevelError, "x", 0)
	assert.ErrorIs(t, m.Handle(context.Background(), rec), failing)
	assert.Equal(t, 2, errs)
}
