package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Log severities, ordered critical > high > moderate > low. The keyword
// rules additionally emit "warning" and "info", which rank with moderate
// and low respectively.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityModerate = "moderate"
	SeverityWarning  = "warning"
	SeverityLow      = "low"
	SeverityInfo     = "info"
)

// JSONB stores arbitrary agent payloads as a JSON column
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if len(j) == 0 {
		return "{}", nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSONB)
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return fmt.Errorf("cannot scan %T into JSONB", value)
	}
}

// LogEntry is a single report submitted by an agent
type LogEntry struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	DeviceID     string    `json:"device_id" gorm:"size:64;index"`
	LogType      string    `json:"log_type" gorm:"size:50;index"`
	Source       string    `json:"source" gorm:"size:100"`
	Severity     string    `json:"severity" gorm:"size:16;index"`
	Message      string    `json:"message" gorm:"type:text"`
	EventCode    string    `json:"event_code" gorm:"size:50"`
	HardwareType string    `json:"hardware_type" gorm:"size:50"`
	Event        string    `json:"event" gorm:"size:20"`
	RawData      JSONB     `json:"raw_data" gorm:"type:jsonb"`
	Timestamp    time.Time `json:"timestamp" gorm:"index"`
	CreatedAt    time.Time `json:"created_at"`
}

// DataTransfer records a USB data movement extracted from agent logs
type DataTransfer struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	DeviceID     string    `json:"device_id" gorm:"size:64;index"`
	TransferType string    `json:"transfer_type" gorm:"size:20"`
	Message      string    `json:"message" gorm:"type:text"`
	DataSummary  string    `json:"data_summary" gorm:"size:255"`
	CreatedAt    time.Time `json:"created_at"`
}

// HardwareEvent is the transient unit of classification. It is never
// persisted as its own row; the ingest handler materializes it from the
// incoming log payload and hands it to the rule engine.
type HardwareEvent struct {
	DeviceID     string
	HardwareType string
	Event        string
	Hostname     string
	SerialNumber string
	USBName      string
	Timestamp    time.Time
}
