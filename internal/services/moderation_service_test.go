package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newFilterOnly(extra ...string) *ModerationService {
	return NewModerationService(nil, nil, nil, 5, extra)
}

func TestFilterContent(t *testing.T) {
	ms := newFilterOnly("abacaxi")

	cases := []struct {
		name   string
		text   string
		ok     bool
		reason string
	}{
		{"clean", "Hoje eu finalmente contei para minha mãe", true, ""},
		{"empty", "", true, ""},
		{"banned word", "que porra foi essa", false, "inappropriate_language"},
		{"configured word", "Eu odeio ABACAXI na pizza", false, "inappropriate_language"},
		{"word inside another word", "classification", true, ""},
		{"url", "olha isso https://example.com/x", false, "url_not_allowed"},
		{"www", "entra em www.example.com.br", false, "url_not_allowed"},
		{"email", "me chama em fulano@example.com", false, "contact_info_not_allowed"},
		{"br phone", "liga (11) 99999-0000", false, "contact_info_not_allowed"},
		{"us phone", "call 555-123-4567", false, "contact_info_not_allowed"},
		{"handle", "me segue no @fulano.oficial", false, "contact_info_not_allowed"},
		{"repeated", "nãoooooooo acredito", false, "spam_detected"},
		{"laughter", "kkkkkkkkkkk que isso", true, ""},
		{"caps", "ISSO É MUITO ERRADO GENTE SERIO MESMO", false, "excessive_caps"},
		{"some caps", "TODOS viram aquilo", true, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, reason := ms.FilterContent(tc.text)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.reason, reason)
		})
	}
}

func TestGetRejectionMessage(t *testing.T) {
	ms := newFilterOnly()
	assert.Contains(t, ms.GetRejectionMessage("url_not_allowed"), "Links")
	assert.Contains(t, ms.GetRejectionMessage("unknown"), "community guidelines")
}

func TestShouldAlert(t *testing.T) {
	assert.False(t, ShouldAlert(4, 5))
	assert.True(t, ShouldAlert(5, 5))
	assert.False(t, ShouldAlert(6, 5))
	assert.False(t, ShouldAlert(1, 0))
}

func TestValidReportReason(t *testing.T) {
	assert.True(t, validReportReason("identity_exposure"))
	assert.False(t, validReportReason("boring"))
}
