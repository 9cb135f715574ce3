package liveness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/devwatch/sentinel/pkg/models"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func evaluator() *Evaluator {
	return NewEvaluator(60 * time.Second).WithClock(func() time.Time { return now })
}

func deviceSeen(ago time.Duration) *models.Device {
	seen := now.Add(-ago)
	return &models.Device{Status: models.StatusOnline, LastSeen: &seen}
}

func TestFreshHeartbeatIsOnline(t *testing.T) {
	assert.Equal(t, models.StatusOnline, evaluator().EffectiveStatus(deviceSeen(30*time.Second)))
}

func TestStaleHeartbeatIsOffline(t *testing.T) {
	assert.Equal(t, models.StatusOffline, evaluator().EffectiveStatus(deviceSeen(90*time.Second)))
}

func TestThresholdBoundaryIsOffline(t *testing.T) {
	assert.Equal(t, models.StatusOffline, evaluator().EffectiveStatus(deviceSeen(60*time.Second)))
}

func TestStoredStatusIsNeverTrustedAlone(t *testing.T) {
	// Stored "online" with no heartbeat at all means offline.
	d := &models.Device{Status: models.StatusOnline}
	assert.Equal(t, models.StatusOffline, evaluator().EffectiveStatus(d))
}

func TestStoredOfflineStaysOffline(t *testing.T) {
	seen := now.Add(-5 * time.Second)
	d := &models.Device{Status: models.StatusOffline, LastSeen: &seen}
	assert.Equal(t, models.StatusOffline, evaluator().EffectiveStatus(d))
}

func TestIsStale(t *testing.T) {
	assert.True(t, evaluator().IsStale(deviceSeen(2*time.Minute)))
	assert.False(t, evaluator().IsStale(deviceSeen(10*time.Second)))

	// Already-offline rows are not stale, nothing to correct.
	seen := now.Add(-time.Hour)
	d := &models.Device{Status: models.StatusOffline, LastSeen: &seen}
	assert.False(t, evaluator().IsStale(d))
}

func TestDefaultThreshold(t *testing.T) {
	e := NewEvaluator(0)
	assert.Equal(t, DefaultThreshold, e.threshold)
}
