package store

import (
	"github.com/google/uuid"

	"github.com/devwatch/sentinel/pkg/models"
)

// CreateLog inserts a log entry
func (s *Store) CreateLog(entry *models.LogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	return s.db.Create(entry).Error
}

// SetLogSeverity escalates (or corrects) the severity of a stored log
func (s *Store) SetLogSeverity(id, severity string) error {
	return s.db.Model(&models.LogEntry{}).Where("id = ?", id).
		Update("severity", severity).Error
}

// ListLogs returns logs newest first, optionally scoped to one device
func (s *Store) ListLogs(deviceID string, limit int) ([]models.LogEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	q := s.db.Order("timestamp DESC").Limit(limit)
	if deviceID != "" {
		q = q.Where("device_id = ?", deviceID)
	}

	var logs []models.LogEntry
	err := q.Find(&logs).Error
	return logs, err
}

// CreateDeviceEvent inserts a hardware event mirror record
func (s *Store) CreateDeviceEvent(ev *models.DeviceEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	return s.db.Create(ev).Error
}

// CreateDataTransfer records a USB data transfer
func (s *Store) CreateDataTransfer(t *models.DataTransfer) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return s.db.Create(t).Error
}
