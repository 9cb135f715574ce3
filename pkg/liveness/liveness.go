// Package liveness derives a device's effective online/offline state
// from its heartbeat recency. The stored status column is a hint written
// by the last heartbeat; only this evaluator decides what the dashboard
// shows or aggregates.
package liveness

import (
	"time"

	"github.com/devwatch/sentinel/pkg/models"
)

// DefaultThreshold is how stale a heartbeat may be before the device
// counts as offline.
const DefaultThreshold = 60 * time.Second

// Evaluator computes effective device status
type Evaluator struct {
	threshold time.Duration
	now       func() time.Time
}

// NewEvaluator builds an evaluator (non-positive threshold falls back
// to the default)
func NewEvaluator(threshold time.Duration) *Evaluator {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Evaluator{threshold: threshold, now: time.Now}
}

// WithClock overrides the time source, for tests
func (e *Evaluator) WithClock(now func() time.Time) *Evaluator {
	e.now = now
	return e
}

// EffectiveStatus returns "online" only when the stored status says
// online AND the last heartbeat is fresh. A device that never reported
// a heartbeat is offline regardless of stored status.
func (e *Evaluator) EffectiveStatus(d *models.Device) string {
	if d.Status != models.StatusOnline {
		return models.StatusOffline
	}
	if d.LastSeen == nil {
		return models.StatusOffline
	}
	if e.now().Sub(*d.LastSeen) >= e.threshold {
		return models.StatusOffline
	}
	return models.StatusOnline
}

// IsStale reports devices whose stored status claims online but whose
// heartbeat has lapsed; callers may lazily persist the correction.
func (e *Evaluator) IsStale(d *models.Device) bool {
	return d.Status == models.StatusOnline && e.EffectiveStatus(d) == models.StatusOffline
}
