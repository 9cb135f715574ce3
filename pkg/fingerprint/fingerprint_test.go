package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDeterministic(t *testing.T) {
	attrs := Attributes{
		SerialNumber: "SN123456",
		VendorID:     "0x0781",
		ProductID:    "0x5567",
		DeviceClass:  "Mass Storage",
		HardwareID:   "USB\\VID_0781&PID_5567",
		DeviceID:     "machine-01",
	}

	first := Compute(attrs)
	second := Compute(attrs)

	require.Len(t, first, 64, "expected a hex-encoded sha256")
	assert.Equal(t, first, second)
}

func TestComputeCaseInsensitive(t *testing.T) {
	lower := Attributes{
		SerialNumber: "sn123456",
		VendorID:     "0x0781",
		ProductID:    "0x5567",
		DeviceClass:  "mass storage",
		HardwareID:   "usb\\vid_0781&pid_5567",
		DeviceID:     "machine-01",
	}
	upper := Attributes{
		SerialNumber: "SN123456",
		VendorID:     "0X0781",
		ProductID:    "0X5567",
		DeviceClass:  "MASS STORAGE",
		HardwareID:   "USB\\VID_0781&PID_5567",
		DeviceID:     "MACHINE-01",
	}

	assert.Equal(t, Compute(lower), Compute(upper))
}

func TestComputeDiffersWhenAnyFieldDiffers(t *testing.T) {
	base := Attributes{
		SerialNumber: "SN123456",
		VendorID:     "0x0781",
		ProductID:    "0x5567",
		DeviceClass:  "Mass Storage",
		HardwareID:   "USB\\VID_0781&PID_5567",
		DeviceID:     "machine-01",
	}

	variants := []Attributes{
		{SerialNumber: "SN999999", VendorID: base.VendorID, ProductID: base.ProductID, DeviceClass: base.DeviceClass, HardwareID: base.HardwareID, DeviceID: base.DeviceID},
		{SerialNumber: base.SerialNumber, VendorID: "0x0000", ProductID: base.ProductID, DeviceClass: base.DeviceClass, HardwareID: base.HardwareID, DeviceID: base.DeviceID},
		{SerialNumber: base.SerialNumber, VendorID: base.VendorID, ProductID: "0x0000", DeviceClass: base.DeviceClass, HardwareID: base.HardwareID, DeviceID: base.DeviceID},
		{SerialNumber: base.SerialNumber, VendorID: base.VendorID, ProductID: base.ProductID, DeviceClass: "HID", HardwareID: base.HardwareID, DeviceID: base.DeviceID},
		{SerialNumber: base.SerialNumber, VendorID: base.VendorID, ProductID: base.ProductID, DeviceClass: base.DeviceClass, HardwareID: "other", DeviceID: base.DeviceID},
		{SerialNumber: base.SerialNumber, VendorID: base.VendorID, ProductID: base.ProductID, DeviceClass: base.DeviceClass, HardwareID: base.HardwareID, DeviceID: "machine-02"},
	}

	baseHash := Compute(base)
	for _, v := range variants {
		assert.NotEqual(t, baseHash, Compute(v))
	}
}

func TestComputeMissingFieldsAreEmpty(t *testing.T) {
	partial := Attributes{SerialNumber: "SN1"}
	explicit := Attributes{
		SerialNumber: "SN1",
		VendorID:     "",
		ProductID:    "",
		DeviceClass:  "",
		HardwareID:   "",
		DeviceID:     "",
	}

	assert.Equal(t, Compute(explicit), Compute(partial))
}
