package store

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devwatch/sentinel/pkg/models"
)

// ActiveBySerial looks up an active whitelist entry by serial number.
// Returns nil when the serial is not authorized; absence is a normal
// branch, not an error.
func (s *Store) ActiveBySerial(serial string) (*models.AuthorizedUSBDevice, error) {
	var d models.AuthorizedUSBDevice
	err := s.db.Where("serial_number = ? AND is_active = ?", serial, true).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ActiveByFingerprint looks up an active whitelist entry by fingerprint
// hash, nil when absent
func (s *Store) ActiveByFingerprint(hash string) (*models.AuthorizedUSBDevice, error) {
	var d models.AuthorizedUSBDevice
	err := s.db.Where("fingerprint_hash = ? AND is_active = ?", hash, true).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateAuthorized inserts a whitelist entry
func (s *Store) CreateAuthorized(d *models.AuthorizedUSBDevice) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return s.db.Create(d).Error
}

// ListAuthorized returns whitelist entries newest first
func (s *Store) ListAuthorized(activeOnly bool) ([]models.AuthorizedUSBDevice, error) {
	q := s.db.Order("created_at DESC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}

	var devices []models.AuthorizedUSBDevice
	err := q.Find(&devices).Error
	return devices, err
}

// SetAuthorizedActive activates or deactivates a whitelist entry
func (s *Store) SetAuthorizedActive(id string, active bool) error {
	res := s.db.Model(&models.AuthorizedUSBDevice{}).Where("id = ?", id).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAuthorized removes a whitelist entry entirely
func (s *Store) DeleteAuthorized(id string) error {
	res := s.db.Delete(&models.AuthorizedUSBDevice{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
