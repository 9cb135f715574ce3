package rules

import (
	"strings"
	"time"

	"github.com/devwatch/sentinel/pkg/models"
)

// AlertHistory is the one store query deduplication needs
type AlertHistory interface {
	LatestUnresolvedAlert(deviceID, alertType string) (*models.Alert, error)
}

// Deduplicator suppresses repeat alerts of the same (device, type) pair.
// It is a sliding-window debounce, not a rate limiter: only the single
// most recent unresolved alert is consulted, and the window restarts
// each time an alert is actually inserted. An unresolved alert older
// than the window does not suppress, so incidents outlasting the window
// accumulate unresolved alerts of the same type.
type Deduplicator struct {
	history AlertHistory
	window  time.Duration
	now     func() time.Time
}

// NewDeduplicator builds a deduplicator with the given suppression
// window (zero falls back to one hour)
func NewDeduplicator(history AlertHistory, window time.Duration) *Deduplicator {
	if window <= 0 {
		window = time.Hour
	}
	return &Deduplicator{
		history: history,
		window:  window,
		now:     time.Now,
	}
}

// WithClock overrides the time source, for tests
func (d *Deduplicator) WithClock(now func() time.Time) *Deduplicator {
	d.now = now
	return d
}

// ShouldSuppress reports whether a new alert of alertType for device
// would duplicate a recent unresolved one
func (d *Deduplicator) ShouldSuppress(deviceID, alertType string) (bool, error) {
	last, err := d.history.LatestUnresolvedAlert(deviceID, alertType)
	if err != nil {
		return false, err
	}
	if last == nil {
		return false, nil
	}
	return d.now().Sub(last.CreatedAt) < d.window, nil
}

func contains(s, sub string) bool {
	return strings.Contains(s, sub)
}

func normalize(msg string) string {
	return strings.ToLower(strings.TrimSpace(msg))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
