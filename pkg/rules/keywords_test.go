package rules

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devwatch/sentinel/pkg/models"
)

func atHour(h int) time.Time {
	return time.Date(2026, 3, 10, h, 30, 0, 0, time.UTC)
}

func TestKeywordsUnauthorizedAccess(t *testing.T) {
	k := NewKeywords(22, 6)

	for _, msg := range []string{
		"Unauthorized login detected on workstation",
		"Failed password attempt for user admin",
	} {
		out, ok := k.Classify(msg, atHour(13))
		require.True(t, ok, msg)
		assert.Equal(t, models.AlertSecurity, out.AlertType)
		assert.Equal(t, models.SeverityHigh, out.Severity)
		assert.Equal(t, "Unauthorized Access Attempt", out.Title)
	}
}

func TestKeywordsUnknownUSB(t *testing.T) {
	k := NewKeywords(22, 6)

	out, ok := k.Classify("Unknown USB device enumerated", atHour(13))
	require.True(t, ok)
	assert.Equal(t, models.AlertHardware, out.AlertType)
	assert.Equal(t, models.SeverityWarning, out.Severity)
}

func TestKeywordsCriticalSystemChange(t *testing.T) {
	k := NewKeywords(22, 6)

	out, ok := k.Classify("system file modification in C:\\Windows", atHour(13))
	require.True(t, ok)
	assert.Equal(t, models.AlertFileIntegrity, out.AlertType)
	assert.Equal(t, models.SeverityCritical, out.Severity)
}

func TestKeywordsOffHoursUSB(t *testing.T) {
	k := NewKeywords(22, 6)

	out, ok := k.Classify("USB connected", atHour(23))
	require.True(t, ok)
	assert.Equal(t, "Off-Hours USB Activity", out.Title)
	assert.Equal(t, models.SeverityWarning, out.Severity)

	out, ok = k.Classify("USB connected", atHour(5))
	require.True(t, ok)
	assert.Equal(t, "Off-Hours USB Activity", out.Title)

	_, ok = k.Classify("USB connected", atHour(13))
	assert.False(t, ok, "mid-day usb connect should not trigger the off-hours rule")
}

func TestKeywordsFirstMatchWins(t *testing.T) {
	k := NewKeywords(22, 6)

	// Matches both the unauthorized rule and the unknown-usb rule; the
	// unauthorized rule is declared first.
	out, ok := k.Classify("unauthorized unknown usb device", atHour(13))
	require.True(t, ok)
	assert.Equal(t, "Unauthorized Access Attempt", out.Title)
}

func TestKeywordsNoMatch(t *testing.T) {
	k := NewKeywords(22, 6)

	_, ok := k.Classify("routine heartbeat", atHour(13))
	assert.False(t, ok)
}

func TestKeywordsCaseInsensitive(t *testing.T) {
	k := NewKeywords(22, 6)

	out, ok := k.Classify("UNAUTHORIZED ACCESS", atHour(13))
	require.True(t, ok)
	assert.Equal(t, models.SeverityHigh, out.Severity)
}

func TestKeywordsDescriptionTruncated(t *testing.T) {
	k := NewKeywords(22, 6)

	long := "failed " + strings.Repeat("x", 300)
	out, ok := k.Classify(long, atHour(13))
	require.True(t, ok)
	assert.LessOrEqual(t, len(out.Description), len(out.Title)+2+100)
}
