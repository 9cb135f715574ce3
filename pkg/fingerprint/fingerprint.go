// Package fingerprint derives a stable identity for a USB device from
// its hardware attributes. The same physical device must always map to
// the same hash so that approval requests and whitelist entries can be
// matched regardless of which agent reported it or how the fields were
// cased.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Attributes are the six identifying fields reported by an agent for a
// USB device. Missing fields are treated as empty strings so partial
// reports still produce a usable identity.
type Attributes struct {
	SerialNumber string `json:"serial_number"`
	VendorID     string `json:"vendor_id"`
	ProductID    string `json:"product_id"`
	DeviceClass  string `json:"device_class"`
	HardwareID   string `json:"hardware_id"`
	DeviceID     string `json:"device_id"` // machine binding
}

// Compute returns the hex-encoded SHA-256 fingerprint of the given
// attributes. The computation is case-insensitive: every field is
// lower-cased before hashing.
func Compute(attrs Attributes) string {
	fields := []string{
		attrs.SerialNumber,
		attrs.VendorID,
		attrs.ProductID,
		attrs.DeviceClass,
		attrs.HardwareID,
		attrs.DeviceID,
	}

	joined := strings.ToLower(strings.Join(fields, "|"))
	sum := sha256.Sum256([]byte(joined))
	return hex.EncodeToString(sum[:])
}
