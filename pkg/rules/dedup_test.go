package rules

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devwatch/sentinel/pkg/models"
)

type fakeHistory struct {
	alert *models.Alert
	err   error
}

func (f *fakeHistory) LatestUnresolvedAlert(_, _ string) (*models.Alert, error) {
	return f.alert, f.err
}

func TestShouldSuppressWithinWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	history := &fakeHistory{alert: &models.Alert{
		DeviceID:  "dev-1",
		AlertType: models.AlertSecurity,
		CreatedAt: now.Add(-30 * time.Minute),
	}}

	d := NewDeduplicator(history, time.Hour).WithClock(func() time.Time { return now })

	suppress, err := d.ShouldSuppress("dev-1", models.AlertSecurity)
	require.NoError(t, err)
	assert.True(t, suppress)
}

func TestShouldNotSuppressOutsideWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	history := &fakeHistory{alert: &models.Alert{
		DeviceID:  "dev-1",
		AlertType: models.AlertSecurity,
		CreatedAt: now.Add(-90 * time.Minute),
	}}

	d := NewDeduplicator(history, time.Hour).WithClock(func() time.Time { return now })

	// An unresolved alert older than the window does not suppress; the
	// new alert is created even though the old one is still open.
	suppress, err := d.ShouldSuppress("dev-1", models.AlertSecurity)
	require.NoError(t, err)
	assert.False(t, suppress)
}

func TestShouldNotSuppressWithoutHistory(t *testing.T) {
	d := NewDeduplicator(&fakeHistory{}, time.Hour)

	suppress, err := d.ShouldSuppress("dev-1", models.AlertSecurity)
	require.NoError(t, err)
	assert.False(t, suppress)
}

func TestShouldSuppressPropagatesStoreError(t *testing.T) {
	boom := errors.New("connection lost")
	d := NewDeduplicator(&fakeHistory{err: boom}, time.Hour)

	_, err := d.ShouldSuppress("dev-1", models.AlertSecurity)
	assert.ErrorIs(t, err, boom)
}

func TestWindowBoundaryIsExclusive(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	history := &fakeHistory{alert: &models.Alert{CreatedAt: now.Add(-time.Hour)}}

	d := NewDeduplicator(history, time.Hour).WithClock(func() time.Time { return now })

	suppress, err := d.ShouldSuppress("dev-1", models.AlertSecurity)
	require.NoError(t, err)
	assert.False(t, suppress, "an alert exactly one window old no longer suppresses")
}
