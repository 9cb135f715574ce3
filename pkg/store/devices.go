package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devwatch/sentinel/pkg/models"
)

// CreateDevice inserts a device, assigning IDs when the agent did not
// provide them
func (s *Store) CreateDevice(d *models.Device) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.ReadableID == "" {
		d.ReadableID = fmt.Sprintf("Device-%s", uuid.NewString()[:8])
	}
	return s.db.Create(d).Error
}

// SaveDevice persists changes to an existing device
func (s *Store) SaveDevice(d *models.Device) error {
	return s.db.Save(d).Error
}

// GetDevice fetches a device by id
func (s *Store) GetDevice(id string) (*models.Device, error) {
	var d models.Device
	if err := s.db.First(&d, "id = ?", id).Error; err != nil {
		return nil, asNotFound(err)
	}
	return &d, nil
}

// GetDeviceByHostname returns the device registered under hostname, or
// nil when no such device exists
func (s *Store) GetDeviceByHostname(hostname string) (*models.Device, error) {
	var d models.Device
	err := s.db.First(&d, "hostname = ?", hostname).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDevices returns all devices, newest first
func (s *Store) ListDevices() ([]models.Device, error) {
	var devices []models.Device
	err := s.db.Order("created_at DESC").Find(&devices).Error
	return devices, err
}

// TouchDevice records a heartbeat: the device is online as of now
func (s *Store) TouchDevice(id string, now time.Time) error {
	return s.db.Model(&models.Device{}).Where("id = ?", id).Updates(map[string]interface{}{
		"last_seen": now,
		"status":    models.StatusOnline,
	}).Error
}

// MarkDevicesOffline lazily persists the corrected offline status for
// stale devices. Failures here must not block the read path.
func (s *Store) MarkDevicesOffline(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.Model(&models.Device{}).Where("id IN ?", ids).
		Update("status", models.StatusOffline).Error
}

// SetQuarantine updates the quarantine fields on a device
func (s *Store) SetQuarantine(id string, quarantined bool, reason, by string, now time.Time) error {
	updates := map[string]interface{}{
		"is_quarantined":    quarantined,
		"quarantine_reason": reason,
		"quarantined_by":    by,
	}
	if quarantined {
		updates["quarantined_at"] = now
		updates["security_status"] = "critical"
	} else {
		updates["quarantined_at"] = nil
		updates["security_status"] = "secure"
	}

	res := s.db.Model(&models.Device{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetHardwareLock records the requested lock state on the device row
func (s *Store) SetHardwareLock(id string, lockNetwork, lockUSB bool, now time.Time) error {
	res := s.db.Model(&models.Device{}).Where("id = ?", id).Updates(map[string]interface{}{
		"hardware_locked":   true,
		"network_locked":    lockNetwork,
		"usb_locked":        lockUSB,
		"last_lock_attempt": now,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteDevice removes a device
func (s *Store) DeleteDevice(id string) error {
	res := s.db.Delete(&models.Device{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
