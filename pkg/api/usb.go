package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devwatch/sentinel/pkg/approval"
	"github.com/devwatch/sentinel/pkg/fingerprint"
	"github.com/devwatch/sentinel/pkg/models"
	"github.com/devwatch/sentinel/pkg/store"
)

// handleListWhitelist returns authorized USB devices
func (s *Server) handleListWhitelist(c *gin.Context) {
	devices, err := s.store.ListAuthorized(c.Query("active_only") == "true")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(devices), "devices": devices})
}

type whitelistRequest struct {
	SerialNumber string             `json:"serial_number"`
	VendorID     string             `json:"vendor_id"`
	ProductID    string             `json:"product_id"`
	DeviceName   string             `json:"device_name"`
	VendorName   string             `json:"vendor_name"`
	Description  string             `json:"description"`
	DeviceClass  string             `json:"device_class"`
	HardwareID   string             `json:"hardware_id"`
	DeviceID     string             `json:"device_id"`
	Policies     models.USBPolicies `json:"policies"`
}

// handleAddWhitelist lets an admin authorize a device directly, without
// an agent-submitted request
func (s *Server) handleAddWhitelist(c *gin.Context) {
	var req whitelistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}
	if req.SerialNumber == "" || req.DeviceName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "serial_number and device_name are required"})
		return
	}

	hash := fingerprint.Compute(fingerprint.Attributes{
		SerialNumber: req.SerialNumber,
		VendorID:     req.VendorID,
		ProductID:    req.ProductID,
		DeviceClass:  req.DeviceClass,
		HardwareID:   req.HardwareID,
		DeviceID:     req.DeviceID,
	})

	device := &models.AuthorizedUSBDevice{
		SerialNumber:       req.SerialNumber,
		VendorID:           req.VendorID,
		ProductID:          req.ProductID,
		DeviceName:         req.DeviceName,
		VendorName:         req.VendorName,
		Description:        req.Description,
		DeviceClass:        req.DeviceClass,
		HardwareID:         req.HardwareID,
		DeviceID:           req.DeviceID,
		FingerprintHash:    hash,
		IsActive:           true,
		MaxDailyTransferMB: req.Policies.MaxDailyTransferMB,
		AllowedStartTime:   req.Policies.AllowedStartTime,
		AllowedEndTime:     req.Policies.AllowedEndTime,
		ExpirationDate:     req.Policies.ExpirationDate,
		IsReadOnly:         req.Policies.IsReadOnly,
	}
	if err := s.store.CreateAuthorized(device); err != nil {
		if store.IsConflict(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Device already authorized"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to authorize device"})
		return
	}

	s.logger.WithField("serial", req.SerialNumber).Info("USB device whitelisted")
	c.JSON(http.StatusCreated, gin.H{"success": true, "device": device})
}

type whitelistUpdateRequest struct {
	IsActive *bool `json:"is_active"`
}

// handleUpdateWhitelist activates or deactivates a whitelist entry
func (s *Server) handleUpdateWhitelist(c *gin.Context) {
	var req whitelistUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsActive == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "is_active is required"})
		return
	}

	err := s.store.SetAuthorizedActive(c.Param("id"), *req.IsActive)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Whitelist entry not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update whitelist entry"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// handleDeleteWhitelist removes a whitelist entry
func (s *Server) handleDeleteWhitelist(c *gin.Context) {
	err := s.store.DeleteAuthorized(c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Whitelist entry not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete whitelist entry"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// handleSubmitRequest accepts an agent's approval request. Unknown
// agents may submit; the admin listing flags them.
func (s *Server) handleSubmitRequest(c *gin.Context) {
	var sub approval.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	result, err := s.approval.Submit(sub)
	if errors.Is(err, approval.ErrMissingFields) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit request"})
		return
	}

	message := map[approval.SubmitResult]string{
		approval.Submitted:         "Request submitted successfully",
		approval.AlreadyPending:    "Request already pending",
		approval.AlreadyAuthorized: "Device already authorized",
	}[result]

	c.JSON(http.StatusOK, gin.H{"success": true, "result": result, "message": message})
}

// handleListRequests returns pending requests for the admin UI
func (s *Server) handleListRequests(c *gin.Context) {
	requests, err := s.approval.ListPending()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "requests": requests})
}

type reviewRequest struct {
	Action   string             `json:"action"`
	Policies models.USBPolicies `json:"policies"`
}

// handleReviewRequest approves or rejects a pending request
func (s *Server) handleReviewRequest(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	id := c.Param("id")

	switch req.Action {
	case "approve":
		err := s.approval.Approve(id, req.Policies)
		if errors.Is(err, approval.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve request"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Device authorized successfully"})

	case "reject":
		err := s.approval.Reject(id)
		if errors.Is(err, approval.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject request"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Request rejected"})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action"})
	}
}
