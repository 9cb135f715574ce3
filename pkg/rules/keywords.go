package rules

import (
	"fmt"
	"time"

	"github.com/devwatch/sentinel/pkg/models"
)

// KeywordRule matches against the lower-cased log message. Rules run in
// declaration order, first match wins.
type KeywordRule struct {
	Title     string
	Severity  string
	AlertType string
	Match     func(msg string, now time.Time) bool
}

// Keywords is the message-text classifier. It runs on every log
// regardless of hardware type, independently of the hardware pass, so
// one log can raise alerts from both passes.
type Keywords struct {
	// Off-hours window boundaries, exclusive: activity is off-hours
	// when hour < End or hour > Start.
	OffHoursStart int
	OffHoursEnd   int

	rules []KeywordRule
}

// NewKeywords builds the classifier with the standard rule set
func NewKeywords(offHoursStart, offHoursEnd int) *Keywords {
	k := &Keywords{
		OffHoursStart: offHoursStart,
		OffHoursEnd:   offHoursEnd,
	}

	k.rules = []KeywordRule{
		{
			Title:     "Unauthorized Access Attempt",
			Severity:  models.SeverityHigh,
			AlertType: models.AlertSecurity,
			Match: func(msg string, _ time.Time) bool {
				return contains(msg, "unauthorized") || contains(msg, "failed")
			},
		},
		{
			Title:     "Unknown USB Device Detected",
			Severity:  models.SeverityWarning,
			AlertType: models.AlertHardware,
			Match: func(msg string, _ time.Time) bool {
				return contains(msg, "unknown") && contains(msg, "usb")
			},
		},
		{
			Title:     "Critical System Change",
			Severity:  models.SeverityCritical,
			AlertType: models.AlertFileIntegrity,
			Match: func(msg string, _ time.Time) bool {
				return contains(msg, "critical") || contains(msg, "system file")
			},
		},
		{
			Title:     "Off-Hours USB Activity",
			Severity:  models.SeverityWarning,
			AlertType: models.AlertHardware,
			Match: func(msg string, now time.Time) bool {
				h := now.Hour()
				return (h < k.OffHoursEnd || h > k.OffHoursStart) &&
					contains(msg, "usb") && contains(msg, "connected")
			},
		},
	}

	return k
}

// Classify runs the keyword rules over a log message. Unlike the
// hardware pass, no match means no alert.
func (k *Keywords) Classify(msg string, now time.Time) (Outcome, bool) {
	normalized := normalize(msg)

	for _, r := range k.rules {
		if r.Match(normalized, now) {
			return Outcome{
				AlertType:   r.AlertType,
				Severity:    r.Severity,
				Title:       r.Title,
				Description: fmt.Sprintf("%s: %s", r.Title, truncate(msg, 100)),
			}, true
		}
	}

	return Outcome{}, false
}
