package alerts

import (
	"context"
	"errors"
	"testing"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type fakeMessages struct {
	sent   []string
	failTo string
}

func (f *fakeMessages) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	to := *params.To
	if to == f.failTo {
		return nil, errors.New("undeliverable")
	}
	f.sent = append(f.sent, to+"|"+*params.From+"|"+*params.Body)
	sid := "SM" + to
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

func TestTwilioNotifierSendsToEveryRecipient(t *testing.T) {
	fake := &fakeMessages{}
	n := &TwilioNotifier{api: fake, from: "+15550000", recipients: []string{"+1111", "+2222"}}

	require.NoError(t, n.Send(context.Background(), "post flagged"))
	assert.Equal(t, []string{"+1111|+15550000|post flagged", "+2222|+15550000|post flagged"}, fake.sent)
}

func TestTwilioNotifierContinuesAfterFailure(t *testing.T) {
	fake := &fakeMessages{failTo: "+1111"}
	n := &TwilioNotifier{api: fake, from: "+15550000", recipients: []string{"+1111", "+2222"}}

	err := n.Send(context.Background(), "post flagged")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "+1111")
	assert.Len(t, fake.sent, 1)
}

func TestTwilioNotifierHonoursCancelledContext(t *testing.T) {
	fake := &fakeMessages{}
	n := &TwilioNotifier{api: fake, from: "+15550000", recipients: []string{"+1111"}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, n.Send(ctx, "x"), context.Canceled)
	assert.Empty(t, fake.sent)
}

func TestNewFallsBackToLog(t *testing.T) {
	_, ok := New(&config.Config{}).(LogNotifier)
	assert.True(t, ok)

	cfg := &config.Config{
		TwilioAccountSID: "AC123",
		TwilioAuthToken:  "secret",
		TwilioFromNumber: "+15550000",
		ModeratorPhones:  []string{"+1111"},
	}
	_, ok = New(cfg).(*TwilioNotifier)
	assert.True(t, ok)
}
