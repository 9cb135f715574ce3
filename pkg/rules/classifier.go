// Package rules holds the alert decision logic: the hardware-event
// classifier, the message keyword classifier, and the duplicate-alert
// suppression window. Each classifier is an ordered rule table evaluated
// first-match-wins by a single pure function, so the decision order is
// explicit and testable.
package rules

import (
	"fmt"
	"strings"

	"github.com/devwatch/sentinel/pkg/models"
)

// SerialUnknown is the sentinel agents report when a USB device exposes
// no usable serial number.
const SerialUnknown = "UNKNOWN"

// Outcome is the classification result for one rule match
type Outcome struct {
	AlertType   string
	Severity    string
	Title       string
	Description string
	// EscalateLog marks outcomes that must also raise the severity of
	// the log entry that triggered them.
	EscalateLog bool
}

type hardwareRule struct {
	match func(ev models.HardwareEvent, authorized bool) bool
	build func(ev models.HardwareEvent) Outcome
}

func usbConnected(ev models.HardwareEvent) bool {
	return strings.EqualFold(ev.HardwareType, "usb") && strings.EqualFold(ev.Event, "connected")
}

func hasUsableSerial(ev models.HardwareEvent) bool {
	return ev.SerialNumber != "" && ev.SerialNumber != SerialUnknown
}

func usbName(ev models.HardwareEvent, fallback string) string {
	if ev.USBName != "" {
		return ev.USBName
	}
	return fallback
}

func hostOrDevice(ev models.HardwareEvent) string {
	if ev.Hostname != "" {
		return ev.Hostname
	}
	return "device"
}

// hardwareRules is evaluated in order; the first matching rule decides
// the outcome. The final rule matches everything, so every hardware
// event produces exactly one alert.
var hardwareRules = []hardwareRule{
	{
		// usb connect with a usable serial that is not whitelisted
		match: func(ev models.HardwareEvent, authorized bool) bool {
			return usbConnected(ev) && hasUsableSerial(ev) && !authorized
		},
		build: func(ev models.HardwareEvent) Outcome {
			return Outcome{
				AlertType: models.AlertUnauthorizedUSB,
				Severity:  models.SeverityCritical,
				Title:     "Unauthorized USB Device Detected",
				Description: fmt.Sprintf("Unauthorized USB device %q (Serial: %s) was connected to %s",
					usbName(ev, "Unknown USB Device"), ev.SerialNumber, hostOrDevice(ev)),
				EscalateLog: true,
			}
		},
	},
	{
		// usb connect with a whitelisted serial, informational only
		match: func(ev models.HardwareEvent, authorized bool) bool {
			return usbConnected(ev) && hasUsableSerial(ev) && authorized
		},
		build: func(ev models.HardwareEvent) Outcome {
			return Outcome{
				AlertType: models.AlertHardwareEvent,
				Severity:  models.SeverityLow,
				Title:     "Authorized USB Device Connected",
				Description: fmt.Sprintf("Authorized USB device %q connected to %s",
					usbName(ev, "USB Device"), hostOrDevice(ev)),
			}
		},
	},
	{
		// usb connect with no usable serial
		match: func(ev models.HardwareEvent, _ bool) bool {
			return usbConnected(ev)
		},
		build: func(ev models.HardwareEvent) Outcome {
			return Outcome{
				AlertType: models.AlertHardwareEvent,
				Severity:  models.SeverityModerate,
				Title:     "USB Device Connected (No Serial)",
				Description: fmt.Sprintf("USB device %q connected to %s but serial number could not be determined",
					usbName(ev, "Unknown"), hostOrDevice(ev)),
			}
		},
	},
	{
		// any other hardware type, or usb disconnect
		match: func(models.HardwareEvent, bool) bool { return true },
		build: func(ev models.HardwareEvent) Outcome {
			return Outcome{
				AlertType: models.AlertHardwareEvent,
				Severity:  models.SeverityLow,
				Title:     "Device Event",
				Description: fmt.Sprintf("%s %s on %s",
					strings.ToUpper(ev.HardwareType), strings.ToLower(ev.Event), hostOrDevice(ev)),
			}
		},
	},
}

// ClassifyHardware decides the alert for a hardware event. The caller
// resolves whitelist membership beforehand; classification itself does
// no I/O.
func ClassifyHardware(ev models.HardwareEvent, authorized bool) Outcome {
	for _, r := range hardwareRules {
		if r.match(ev, authorized) {
			return r.build(ev)
		}
	}
	// unreachable, the last rule matches everything
	return Outcome{}
}
