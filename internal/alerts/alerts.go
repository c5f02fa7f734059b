// Package alerts pages human moderators when content needs urgent review.
package alerts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/config"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Notifier delivers a short plain-text alert.
type Notifier interface {
	Send(ctx context.Context, message string) error
}

// New returns a Twilio notifier when credentials and recipients are
// configured, and a log-only notifier otherwise.
func New(cfg *config.Config) Notifier {
	if !cfg.TwilioEnabled() {
		return LogNotifier{}
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})
	return &TwilioNotifier{
		api:        client.Api,
		from:       cfg.TwilioFromNumber,
		recipients: cfg.ModeratorPhones,
	}
}

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

type TwilioNotifier struct {
	api        messageCreator
	from       string
	recipients []string
}

// Send texts every moderator. A failure for one number does not stop the rest.
func (n *TwilioNotifier) Send(ctx context.Context, message string) error {
	var errs []error
	for _, to := range n.recipients {
		if err := ctx.Err(); err != nil {
			return err
		}
		params := &twilioApi.CreateMessageParams{}
		params.SetTo(to)
		params.SetFrom(n.from)
		params.SetBody(message)

		resp, err := n.api.CreateMessage(params)
		if err != nil {
			errs = append(errs, fmt.Errorf("sms to %s: %w", to, err))
			continue
		}
		sid := ""
		if resp != nil && resp.Sid != nil {
			sid = *resp.Sid
		}
		slog.Info("moderator alert sent", "to", to, "sid", sid)
	}
	return errors.Join(errs...)
}

// LogNotifier writes alerts to the log instead of sending them.
type LogNotifier struct{}

func (LogNotifier) Send(_ context.Context, message string) error {
	slog.Warn("moderator alert", "action", "alert", "message", message)
	return nil
}
