package models

import (
	"time"
)

// Approval request states. Approved and rejected are terminal.
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

// AuthorizedUSBDevice is a whitelisted USB device. A device is trusted
// while IsActive holds; the policy fields are advisory and default to
// permissive values. At most one active entry may exist per
// fingerprint; deactivated history rows may accumulate.
type AuthorizedUSBDevice struct {
	ID                 string     `json:"id" gorm:"primaryKey;size:36"`
	SerialNumber       string     `json:"serial_number" gorm:"size:255;index"`
	VendorID           string     `json:"vendor_id" gorm:"size:50"`
	ProductID          string     `json:"product_id" gorm:"size:50"`
	DeviceName         string     `json:"device_name" gorm:"size:255"`
	VendorName         string     `json:"vendor_name" gorm:"size:255"`
	Description        string     `json:"description" gorm:"size:500"`
	DeviceClass        string     `json:"device_class" gorm:"size:100"`
	HardwareID         string     `json:"hardware_id" gorm:"size:255"`
	DeviceID           string     `json:"device_id" gorm:"size:64"`
	ComputerName       string     `json:"computer_name" gorm:"size:255"`
	FingerprintHash    string     `json:"fingerprint_hash" gorm:"size:64;uniqueIndex:idx_authorized_active_fp,where:is_active = 1"`
	IsActive           bool       `json:"is_active" gorm:"index"`
	MaxDailyTransferMB int        `json:"max_daily_transfer_mb"`
	AllowedStartTime   string     `json:"allowed_start_time" gorm:"size:8"`
	AllowedEndTime     string     `json:"allowed_end_time" gorm:"size:8"`
	ExpirationDate     *time.Time `json:"expiration_date"`
	IsReadOnly         bool       `json:"is_read_only"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// USBPolicies carries the optional policy overrides an admin binds to a
// device at approval time. Zero values mean permissive.
type USBPolicies struct {
	MaxDailyTransferMB int        `json:"max_daily_transfer_mb"`
	AllowedStartTime   string     `json:"allowed_start_time"`
	AllowedEndTime     string     `json:"allowed_end_time"`
	ExpirationDate     *time.Time `json:"expiration_date"`
	IsReadOnly         bool       `json:"is_read_only"`
}

// USBApprovalRequest is an agent-submitted request to whitelist a USB
// device. At most one pending request may exist per fingerprint; the
// partial unique index enforces that under concurrent submission.
type USBApprovalRequest struct {
	ID              string    `json:"id" gorm:"primaryKey;size:36"`
	SerialNumber    string    `json:"serial_number" gorm:"size:255"`
	VendorID        string    `json:"vendor_id" gorm:"size:50"`
	ProductID       string    `json:"product_id" gorm:"size:50"`
	DeviceName      string    `json:"device_name" gorm:"size:255"`
	VendorName      string    `json:"vendor_name" gorm:"size:255"`
	Description     string    `json:"description" gorm:"size:500"`
	DeviceClass     string    `json:"device_class" gorm:"size:100"`
	HardwareID      string    `json:"hardware_id" gorm:"size:255"`
	DeviceID        string    `json:"device_id" gorm:"size:64"`
	ComputerName    string    `json:"computer_name" gorm:"size:255"`
	FingerprintHash string    `json:"fingerprint_hash" gorm:"size:64;uniqueIndex:idx_requests_pending_fp,where:status = 'pending'"`
	Status          string    `json:"status" gorm:"size:16;index"`
	RequestedAt     time.Time `json:"requested_at"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
