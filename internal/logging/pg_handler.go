package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	pgBatchSize     = 50
	pgFlushInterval = 5 * time.Second
)

// PGHandler batches ERROR+ records into the system_logs table. Known attrs
// (request_id, path, user_id, action, error, latency_ms) get their own columns;
// the rest land in Extra.
type PGHandler struct {
	sink  *pgSink
	attrs []slog.Attr
	group string
}

// pgSink is shared by a handler and every WithAttrs/WithGroup derivative.
type pgSink struct {
	write  func([]models.SystemLog) error
	mu     sync.Mutex
	buffer []models.SystemLog
	ticker *time.Ticker
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

func NewPGHandler(db *gorm.DB) *PGHandler {
	return newPGHandler(func(batch []models.SystemLog) error {
		return db.CreateInBatches(batch, pgBatchSize).Error
	}, pgFlushInterval)
}

func newPGHandler(write func([]models.SystemLog) error, interval time.Duration) *PGHandler {
	s := &pgSink{
		write:  write,
		buffer: make([]models.SystemLog, 0, pgBatchSize),
		ticker: time.NewTicker(interval),
		done:   make(chan struct{}),
	}
	s.wg.Add(1)
	go s.loop()
	return &PGHandler{sink: s}
}

func (s *pgSink) loop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ticker.C:
			s.flush()
		case <-s.done:
			s.flush()
			return
		}
	}
}

func (s *pgSink) flush() {
	s.mu.Lock()
	if len(s.buffer) == 0 {
		s.mu.Unlock()
		return
	}
	batch := s.buffer
	s.buffer = make([]models.SystemLog, 0, pgBatchSize)
	s.mu.Unlock()

	// Logged at WARN so the failure does not re-enter this handler.
	if err := s.write(batch); err != nil {
		slog.Warn("failed to flush system logs to DB", "error", err, "count", len(batch))
	}
}

func (s *pgSink) add(entry models.SystemLog) {
	s.mu.Lock()
	s.buffer = append(s.buffer, entry)
	full := len(s.buffer) >= pgBatchSize
	s.mu.Unlock()

	if full {
		go s.flush()
	}
}

// Stop flushes buffered records and stops the background loop.
func (h *PGHandler) Stop() {
	h.sink.once.Do(func() {
		h.sink.ticker.Stop()
		close(h.sink.done)
	})
	h.sink.wg.Wait()
}

func (h *PGHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *PGHandler) Handle(_ context.Context, record slog.Record) error {
	entry := models.SystemLog{
		ID:        uuid.New(),
		Timestamp: record.Time.UTC(),
		Level:     record.Level.String(),
		Message:   record.Message,
		CreatedAt: time.Now().UTC(),
	}

	extra := make(map[string]interface{})
	apply := func(a slog.Attr) bool {
		a.Value = a.Value.Resolve()
		switch a.Key {
		case "request_id":
			entry.RequestID = a.Value.String()
		case "path":
			entry.Path = a.Value.String()
		case "user_id":
			s := a.Value.String()
			entry.UserID = &s
		case "action":
			entry.Action = a.Value.String()
		case "error":
			entry.Error = a.Value.String()
		case "latency_ms":
			entry.LatencyMs = latencyMs(a.Value)
		default:
			key := a.Key
			if h.group != "" {
				key = h.group + "." + key
			}
			extra[key] = a.Value.Any()
		}
		return true
	}
	for _, a := range h.attrs {
		apply(a)
	}
	record.Attrs(apply)

	if len(extra) > 0 {
		if b, err := json.Marshal(extra); err == nil {
			entry.Extra = datatypes.JSON(b)
		}
	}
	if entry.Extra == nil {
		entry.Extra = datatypes.JSON("{}")
	}

	h.sink.add(entry)
	return nil
}

func latencyMs(v slog.Value) int {
	switch v.Kind() {
	case slog.KindFloat64:
		return int(math.Round(v.Float64()))
	case slog.KindInt64:
		return int(v.Int64())
	case slog.KindDuration:
		return int(v.Duration().Milliseconds())
	}
	return 0
}

func (h *PGHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &PGHandler{sink: h.sink, attrs: merged, group: h.group}
}

func (h *PGHandler) WithGroup(name string) slog.Handler {
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &PGHandler{sink: h.sink, attrs: h.attrs, group: group}
}
