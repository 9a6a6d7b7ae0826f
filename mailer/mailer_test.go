package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSubstitutesPlaceholders(t *testing.T) {
	subject, body, err := Render("proposal_rejected", map[string]string{
		"title":  "Harbour Tower Fit-out",
		"reason": "budget too low",
	})
	require.NoError(t, err)
	assert.Equal(t, "Proposal rejected", subject)
	assert.Equal(t, "Your proposal Harbour Tower Fit-out was rejected. Reason: budget too low", body)
}

func TestRenderLeavesUnknownPlaceholders(t *testing.T) {
	_, body, err := Render("proposal_approved", nil)
	require.NoError(t, err)
	assert.Contains(t, body, "{title}")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, _, err := Render("no_such_template", nil)
	assert.Error(t, err)
}

func TestLogSenderNeverFailsOnKnownTemplate(t *testing.T) {
	err := LogSender{}.Send([]string{"ana@example.com"}, "timeoff_approved", nil)
	assert.NoError(t, err)
}
