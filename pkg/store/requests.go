package store

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devwatch/sentinel/pkg/models"
)

// CreateRequest inserts an approval request. The partial unique index on
// pending fingerprints makes concurrent duplicate submissions surface as
// a conflict instead of a second row; callers treat that as absorption.
func (s *Store) CreateRequest(r *models.USBApprovalRequest) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = models.RequestPending
	}
	if r.RequestedAt.IsZero() {
		r.RequestedAt = time.Now()
	}
	return s.db.Create(r).Error
}

// GetRequest fetches an approval request by id
func (s *Store) GetRequest(id string) (*models.USBApprovalRequest, error) {
	var r models.USBApprovalRequest
	if err := s.db.First(&r, "id = ?", id).Error; err != nil {
		return nil, asNotFound(err)
	}
	return &r, nil
}

// PendingByFingerprint returns the pending request for a fingerprint,
// nil when absent
func (s *Store) PendingByFingerprint(hash string) (*models.USBApprovalRequest, error) {
	var r models.USBApprovalRequest
	err := s.db.Where("fingerprint_hash = ? AND status = ?", hash, models.RequestPending).
		First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListPendingRequests returns pending requests, newest first
func (s *Store) ListPendingRequests() ([]models.USBApprovalRequest, error) {
	var requests []models.USBApprovalRequest
	err := s.db.Where("status = ?", models.RequestPending).
		Order("requested_at DESC").
		Find(&requests).Error
	return requests, err
}

// SetRequestStatus transitions a pending request to a terminal state.
// Requests already in a terminal state are not touched and report
// ErrNotFound.
func (s *Store) SetRequestStatus(id, status string) error {
	res := s.db.Model(&models.USBApprovalRequest{}).
		Where("id = ? AND status = ?", id, models.RequestPending).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountPendingRequests returns the number of pending requests
func (s *Store) CountPendingRequests() (int64, error) {
	var n int64
	err := s.db.Model(&models.USBApprovalRequest{}).
		Where("status = ?", models.RequestPending).
		Count(&n).Error
	return n, err
}
