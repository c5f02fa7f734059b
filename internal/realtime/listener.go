package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	minBackoff = time.Second
	maxBackoff = 30 * time.Second
)

// Listener holds a dedicated pgx connection that LISTENs on a channel and
// forwards each payload to the hub, keyed by its recipient_id.
type Listener struct {
	dsn     string
	channel string
	hub     *Hub
}

func NewListener(dsn, channel string, hub *Hub) *Listener {
	return &Listener{dsn: dsn, channel: channel, hub: hub}
}

// Run blocks until ctx is cancelled, reconnecting with backoff when the
// connection drops.
func (l *Listener) Run(ctx context.Context) {
	backoff := minBackoff
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return
		}
		slog.Warn("notification listener disconnected", "error", err, "retry_in", backoff.String())

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = nextBackoff(backoff)
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return err
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return err
	}
	slog.Info("notification listener started", "channel", l.channel)

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		l.dispatch([]byte(n.Payload))
	}
}

func (l *Listener) dispatch(payload []byte) {
	recipient, err := RecipientOf(payload)
	if err != nil {
		slog.Warn("dropping malformed notification", "error", err)
		return
	}
	l.hub.Publish(recipient, payload)
}

// RecipientOf extracts recipient_id from a notification payload.
func RecipientOf(payload []byte) (uuid.UUID, error) {
	var envelope struct {
		RecipientID uuid.UUID `json:"recipient_id"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return uuid.Nil, err
	}
	if envelope.RecipientID == uuid.Nil {
		return uuid.Nil, errors.New("missing recipient_id")
	}
	return envelope.RecipientID, nil
}

func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}
