package store

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devwatch/sentinel/pkg/models"
)

// CreateAlert inserts an alert
func (s *Store) CreateAlert(a *models.Alert) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	return s.db.Create(a).Error
}

// LatestUnresolvedAlert returns the most recent unresolved alert for the
// (device, type) pair, or nil when none exists. Only the newest row
// matters; older unresolved alerts do not participate in deduplication.
func (s *Store) LatestUnresolvedAlert(deviceID, alertType string) (*models.Alert, error) {
	var a models.Alert
	err := s.db.Where("device_id = ? AND alert_type = ? AND is_resolved = ?", deviceID, alertType, false).
		Order("created_at DESC").
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// AlertFilter narrows ListAlerts
type AlertFilter struct {
	DeviceID       string
	UnresolvedOnly bool
	Limit          int
}

// ListAlerts returns alerts newest first
func (s *Store) ListAlerts(f AlertFilter) ([]models.Alert, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}

	q := s.db.Order("created_at DESC").Limit(f.Limit)
	if f.DeviceID != "" {
		q = q.Where("device_id = ?", f.DeviceID)
	}
	if f.UnresolvedOnly {
		q = q.Where("is_resolved = ?", false)
	}

	var alerts []models.Alert
	err := q.Find(&alerts).Error
	return alerts, err
}

// ResolveAlert marks an alert resolved
func (s *Store) ResolveAlert(id, by string, now time.Time) error {
	if by == "" {
		by = "system"
	}

	res := s.db.Model(&models.Alert{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_resolved": true,
		"resolved_at": now,
		"resolved_by": by,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountUnresolvedBySeverity aggregates open alerts for the dashboard
func (s *Store) CountUnresolvedBySeverity() (map[string]int64, error) {
	type row struct {
		Severity string
		Total    int64
	}

	var rows []row
	err := s.db.Model(&models.Alert{}).
		Select("severity, COUNT(*) AS total").
		Where("is_resolved = ?", false).
		Group("severity").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Severity] = r.Total
	}
	return counts, nil
}
