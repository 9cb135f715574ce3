// Package approval implements the USB authorization workflow: agents
// submit requests for unknown devices, admins approve or reject them,
// and approval materializes the whitelist entry. Requests move
// pending -> approved or pending -> rejected; both end states are
// terminal.
package approval

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/devwatch/sentinel/pkg/fingerprint"
	"github.com/devwatch/sentinel/pkg/models"
	"github.com/devwatch/sentinel/pkg/store"
)

// ErrMissingFields is returned when a submission lacks a required field
var ErrMissingFields = errors.New("missing required fields: serial_number, device_name, device_id")

// ErrNotFound is returned when approve/reject references a request that
// does not exist or has already reached a terminal state
var ErrNotFound = store.ErrNotFound

// Service runs the workflow against the store
type Service struct {
	store *store.Store
	log   *logrus.Logger
}

// NewService builds the workflow service
func NewService(st *store.Store, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
	}
	return &Service{store: st, log: log}
}

// Submission is an agent's request to authorize a USB device
type Submission struct {
	SerialNumber string `json:"serial_number"`
	VendorID     string `json:"vendor_id"`
	ProductID    string `json:"product_id"`
	DeviceName   string `json:"device_name"`
	VendorName   string `json:"vendor_name"`
	Description  string `json:"description"`
	DeviceClass  string `json:"device_class"`
	HardwareID   string `json:"hardware_id"`
	DeviceID     string `json:"device_id"`
	ComputerName string `json:"computer_name"`
}

// SubmitResult tells the agent what happened to its submission
type SubmitResult string

const (
	// Submitted means a new pending request was created
	Submitted SubmitResult = "submitted"
	// AlreadyPending means an identical request is awaiting review;
	// the submission was absorbed as an idempotent retransmission
	AlreadyPending SubmitResult = "already_pending"
	// AlreadyAuthorized means the device is on the active whitelist
	// and no request is needed
	AlreadyAuthorized SubmitResult = "already_authorized"
)

// Submit records an approval request unless one is already pending for
// the same fingerprint or the device is already trusted
func (s *Service) Submit(sub Submission) (SubmitResult, error) {
	if sub.SerialNumber == "" || sub.DeviceName == "" || sub.DeviceID == "" {
		return "", ErrMissingFields
	}

	hash := fingerprint.Compute(fingerprint.Attributes{
		SerialNumber: sub.SerialNumber,
		VendorID:     sub.VendorID,
		ProductID:    sub.ProductID,
		DeviceClass:  sub.DeviceClass,
		HardwareID:   sub.HardwareID,
		DeviceID:     sub.DeviceID,
	})

	pending, err := s.store.PendingByFingerprint(hash)
	if err != nil {
		return "", err
	}
	if pending != nil {
		return AlreadyPending, nil
	}

	authorized, err := s.store.ActiveByFingerprint(hash)
	if err != nil {
		return "", err
	}
	if authorized != nil {
		return AlreadyAuthorized, nil
	}

	req := &models.USBApprovalRequest{
		SerialNumber:    sub.SerialNumber,
		VendorID:        sub.VendorID,
		ProductID:       sub.ProductID,
		DeviceName:      sub.DeviceName,
		VendorName:      sub.VendorName,
		Description:     sub.Description,
		DeviceClass:     sub.DeviceClass,
		HardwareID:      sub.HardwareID,
		DeviceID:        sub.DeviceID,
		ComputerName:    sub.ComputerName,
		FingerprintHash: hash,
		Status:          models.RequestPending,
	}

	if err := s.store.CreateRequest(req); err != nil {
		// A concurrent identical submission won the insert race; the
		// pending unique index turned ours into a no-op.
		if store.IsConflict(err) {
			return AlreadyPending, nil
		}
		return "", err
	}

	s.log.WithFields(logrus.Fields{
		"fingerprint": hash,
		"device_name": sub.DeviceName,
		"computer":    sub.ComputerName,
	}).Info("USB approval request submitted")

	return Submitted, nil
}

// Approve turns a pending request into an active whitelist entry and
// marks the request approved. Both writes happen in one transaction so
// an approved request without its whitelist row (or the reverse) cannot
// be observed.
func (s *Service) Approve(id string, policies models.USBPolicies) error {
	err := s.store.Transaction(func(tx *store.Store) error {
		req, err := tx.GetRequest(id)
		if err != nil {
			return err
		}
		if req.Status != models.RequestPending {
			return ErrNotFound
		}

		authorized := &models.AuthorizedUSBDevice{
			SerialNumber:       req.SerialNumber,
			VendorID:           req.VendorID,
			ProductID:          req.ProductID,
			DeviceName:         req.DeviceName,
			VendorName:         req.VendorName,
			Description:        req.Description,
			DeviceClass:        req.DeviceClass,
			HardwareID:         req.HardwareID,
			DeviceID:           req.DeviceID,
			ComputerName:       req.ComputerName,
			FingerprintHash:    req.FingerprintHash,
			IsActive:           true,
			MaxDailyTransferMB: policies.MaxDailyTransferMB,
			AllowedStartTime:   policies.AllowedStartTime,
			AllowedEndTime:     policies.AllowedEndTime,
			ExpirationDate:     policies.ExpirationDate,
			IsReadOnly:         policies.IsReadOnly,
		}
		if err := tx.CreateAuthorized(authorized); err != nil {
			return err
		}

		return tx.SetRequestStatus(id, models.RequestApproved)
	})
	if err != nil {
		return err
	}

	s.log.WithField("request_id", id).Info("USB device authorized")
	return nil
}

// Reject marks a pending request rejected. No other side effects.
func (s *Service) Reject(id string) error {
	if err := s.store.SetRequestStatus(id, models.RequestRejected); err != nil {
		return err
	}
	s.log.WithField("request_id", id).Info("USB approval request rejected")
	return nil
}

// PendingRequest is a pending row enriched for the admin UI
type PendingRequest struct {
	models.USBApprovalRequest
	// IsUnknownAgent is set when no registered device matches the
	// request's computer name. Advisory only, not a workflow gate.
	IsUnknownAgent bool `json:"isUnknownAgent"`
}

// ListPending returns pending requests flagged with agent knowledge
func (s *Service) ListPending() ([]PendingRequest, error) {
	requests, err := s.store.ListPendingRequests()
	if err != nil {
		return nil, err
	}

	out := make([]PendingRequest, 0, len(requests))
	for _, req := range requests {
		enriched := PendingRequest{USBApprovalRequest: req, IsUnknownAgent: true}
		if req.ComputerName != "" {
			device, err := s.store.GetDeviceByHostname(req.ComputerName)
			if err != nil {
				return nil, err
			}
			enriched.IsUnknownAgent = device == nil
		}
		out = append(out, enriched)
	}

	return out, nil
}
