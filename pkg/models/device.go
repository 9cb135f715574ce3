package models

import (
	"time"
)

// Stored device statuses. The stored value is a hint only: callers must
// derive the effective state through the liveness evaluator.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Device represents a monitored endpoint reporting through an agent
type Device struct {
	ID               string     `json:"id" gorm:"primaryKey;size:64"`
	ReadableID       string     `json:"readable_id" gorm:"size:32;index"`
	DeviceName       string     `json:"device_name" gorm:"size:255"`
	DeviceType       string     `json:"device_type" gorm:"size:50"`
	Hostname         string     `json:"hostname" gorm:"size:255;index"`
	Owner            string     `json:"owner" gorm:"size:255"`
	Location         string     `json:"location" gorm:"size:255"`
	IPAddress        string     `json:"ip_address" gorm:"size:45"`
	MACAddress       string     `json:"mac_address" gorm:"size:17"`
	OSVersion        string     `json:"os_version" gorm:"size:100"`
	AgentVersion     string     `json:"agent_version" gorm:"size:50"`
	Status           string     `json:"status" gorm:"size:16;default:'offline';index"`
	SecurityStatus   string     `json:"security_status" gorm:"size:16;default:'secure'"`
	IsServer         bool       `json:"is_server"`
	IsQuarantined    bool       `json:"is_quarantined" gorm:"index"`
	QuarantineReason string     `json:"quarantine_reason" gorm:"size:500"`
	QuarantinedAt    *time.Time `json:"quarantined_at"`
	QuarantinedBy    string     `json:"quarantined_by" gorm:"size:255"`
	HardwareLocked   bool       `json:"hardware_locked"`
	NetworkLocked    bool       `json:"network_locked"`
	USBLocked        bool       `json:"usb_locked"`
	LastLockAttempt  *time.Time `json:"last_lock_attempt"`
	LastSeen         *time.Time `json:"last_seen" gorm:"index"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// DeviceEvent mirrors a hardware plug/unplug report for the event timeline
type DeviceEvent struct {
	ID             string    `json:"id" gorm:"primaryKey;size:36"`
	DeviceID       string    `json:"device_id" gorm:"size:64;index"`
	DeviceName     string    `json:"device_name" gorm:"size:255"`
	HostName       string    `json:"host_name" gorm:"size:255"`
	DeviceCategory string    `json:"device_category" gorm:"size:50"`
	Event          string    `json:"event" gorm:"size:20"`
	Timestamp      time.Time `json:"timestamp" gorm:"index"`
	CreatedAt      time.Time `json:"created_at"`
}
