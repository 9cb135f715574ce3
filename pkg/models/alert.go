package models

import (
	"time"
)

// Alert types raised by the rule engine and the admin workflows
const (
	AlertUnauthorizedUSB   = "unauthorized_usb"
	AlertHardwareEvent     = "hardware_event"
	AlertSecurity          = "security"
	AlertHardware          = "hardware"
	AlertFileIntegrity     = "file_integrity"
	AlertDeviceQuarantined = "device_quarantined"
)

// Alert is a security finding surfaced to the dashboard
type Alert struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	DeviceID    string     `json:"device_id" gorm:"size:64;index:idx_alerts_device_type"`
	AlertType   string     `json:"alert_type" gorm:"size:50;index:idx_alerts_device_type"`
	LogType     string     `json:"log_type" gorm:"size:50"`
	Severity    string     `json:"severity" gorm:"size:16;index"`
	Title       string     `json:"title" gorm:"size:255"`
	Description string     `json:"description" gorm:"size:1000"`
	Message     string     `json:"message" gorm:"type:text"`
	IsRead      bool       `json:"is_read"`
	IsResolved  bool       `json:"is_resolved" gorm:"index"`
	ResolvedAt  *time.Time `json:"resolved_at"`
	ResolvedBy  string     `json:"resolved_by" gorm:"size:255"`
	CreatedAt   time.Time  `json:"created_at" gorm:"index"`
}
