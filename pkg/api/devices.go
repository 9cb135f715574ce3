package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/devwatch/sentinel/pkg/models"
	"github.com/devwatch/sentinel/pkg/store"
)

type registerRequest struct {
	DeviceName   string `json:"device_name"`
	DeviceType   string `json:"device_type"`
	Owner        string `json:"owner"`
	Location     string `json:"location"`
	Hostname     string `json:"hostname"`
	IPAddress    string `json:"ip_address"`
	MACAddress   string `json:"mac_address"`
	OSVersion    string `json:"os_version"`
	AgentVersion string `json:"agent_version"`
	IsServer     bool   `json:"is_server"`
}

// handleRegisterDevice registers an agent, or revives the existing row
// when the hostname is already known (re-install, re-image)
func (s *Server) handleRegisterDevice(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	if req.DeviceName == "" || req.DeviceType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: device_name and device_type"})
		return
	}

	now := time.Now()

	existing, err := s.store.GetDeviceByHostname(req.Hostname)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}

	if existing != nil {
		existing.DeviceName = req.DeviceName
		existing.DeviceType = req.DeviceType
		existing.Owner = orDefault(req.Owner, existing.Owner)
		existing.Location = orDefault(req.Location, existing.Location)
		existing.IPAddress = orDefault(req.IPAddress, existing.IPAddress)
		existing.MACAddress = orDefault(req.MACAddress, existing.MACAddress)
		existing.OSVersion = orDefault(req.OSVersion, existing.OSVersion)
		existing.AgentVersion = orDefault(req.AgentVersion, existing.AgentVersion)
		existing.Status = models.StatusOnline
		existing.LastSeen = &now

		if err := s.store.SaveDevice(existing); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update device"})
			return
		}

		s.logger.WithField("device_id", existing.ID).Info("device re-registered")
		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"device_id":   existing.ID,
			"readable_id": existing.ReadableID,
			"message":     "Device re-registered",
		})
		return
	}

	device := &models.Device{
		DeviceName:   req.DeviceName,
		DeviceType:   req.DeviceType,
		Owner:        req.Owner,
		Location:     req.Location,
		Hostname:     req.Hostname,
		IPAddress:    req.IPAddress,
		MACAddress:   req.MACAddress,
		OSVersion:    req.OSVersion,
		AgentVersion: req.AgentVersion,
		IsServer:     req.IsServer,
		Status:       models.StatusOnline,
		LastSeen:     &now,
	}
	if err := s.store.CreateDevice(device); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register device"})
		return
	}

	s.logger.WithField("device_id", device.ID).Info("device registered")
	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"device_id":   device.ID,
		"readable_id": device.ReadableID,
		"message":     "Device registered",
	})
}

// handleListDevices lists devices with effective liveness applied. The
// stored status is never trusted for display; stale rows are corrected
// lazily without blocking the response.
func (s *Server) handleListDevices(c *gin.Context) {
	devices, err := s.store.ListDevices()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}

	var staleIDs []string
	counts := gin.H{}
	online, offline, quarantined := 0, 0, 0

	for i := range devices {
		if s.liveness.IsStale(&devices[i]) {
			staleIDs = append(staleIDs, devices[i].ID)
		}
		devices[i].Status = s.liveness.EffectiveStatus(&devices[i])

		if devices[i].Status == models.StatusOnline {
			online++
		} else {
			offline++
		}
		if devices[i].IsQuarantined {
			quarantined++
		}
	}

	if len(staleIDs) > 0 {
		if err := s.store.MarkDevicesOffline(staleIDs); err != nil {
			s.logger.WithError(err).Warn("failed to persist offline status for stale devices")
		} else {
			s.logger.Debugf("marked %d stale device(s) as offline", len(staleIDs))
		}
	}

	counts["total"] = len(devices)
	counts["online"] = online
	counts["offline"] = offline
	counts["quarantined"] = quarantined

	c.JSON(http.StatusOK, gin.H{"devices": devices, "counts": counts})
}

// handleGetDevice returns one device with effective status
func (s *Server) handleGetDevice(c *gin.Context) {
	device, err := s.store.GetDevice(c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Device not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}

	device.Status = s.liveness.EffectiveStatus(device)
	c.JSON(http.StatusOK, device)
}

// handleDeleteDevice removes a device
func (s *Server) handleDeleteDevice(c *gin.Context) {
	err := s.store.DeleteDevice(c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Device not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete device"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Device deleted"})
}

type quarantineRequest struct {
	DeviceID      string `json:"device_id"`
	Reason        string `json:"reason"`
	QuarantinedBy string `json:"quarantined_by"`
}

// handleQuarantine places a device under quarantine, raises the alert,
// writes the audit log, and fires the hardware-lock stub
func (s *Server) handleQuarantine(c *gin.Context) {
	var req quarantineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}
	if req.DeviceID == "" || req.Reason == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	now := time.Now()

	err := s.store.SetQuarantine(req.DeviceID, true, req.Reason, req.QuarantinedBy, now)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Device not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to quarantine device"})
		return
	}

	alert := &models.Alert{
		DeviceID:    req.DeviceID,
		AlertType:   models.AlertDeviceQuarantined,
		Severity:    models.SeverityCritical,
		Title:       "Device Quarantined",
		Description: "Device has been quarantined. Reason: " + req.Reason,
	}
	if err := s.store.CreateAlert(alert); err != nil {
		s.logger.WithError(err).Warn("failed to create quarantine alert")
	} else {
		s.hub.Broadcast(alert)
	}

	s.auditLog(req.DeviceID, "quarantine-system", models.SeverityCritical,
		"Device quarantined: "+req.Reason, now)

	// Lock is best-effort: the quarantine status stands even when the
	// lock update fails.
	if err := s.lockDevice(req.DeviceID, true, true, now); err != nil {
		s.logger.WithError(err).Error("hardware lock failed, quarantine status still set")
		s.auditLog(req.DeviceID, "quarantine-system", models.SeverityHigh,
			"Hardware lock command failed", now)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Device quarantined"})
}

type releaseRequest struct {
	DeviceID   string `json:"device_id"`
	ReleasedBy string `json:"released_by"`
}

// handleRelease lifts a quarantine
func (s *Server) handleRelease(c *gin.Context) {
	var req releaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}
	if req.DeviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	now := time.Now()

	err := s.store.SetQuarantine(req.DeviceID, false, "", req.ReleasedBy, now)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Device not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to release device"})
		return
	}

	s.auditLog(req.DeviceID, "quarantine-system", models.SeverityInfo,
		"Device released from quarantine", now)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Device released"})
}

type hardwareLockRequest struct {
	DeviceID    string `json:"device_id"`
	LockNetwork *bool  `json:"lock_network"`
	LockUSB     *bool  `json:"lock_usb"`
}

// handleHardwareLock records the requested lock state on the device row
func (s *Server) handleHardwareLock(c *gin.Context) {
	var req hardwareLockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}
	if req.DeviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing device_id"})
		return
	}

	lockNetwork := req.LockNetwork == nil || *req.LockNetwork
	lockUSB := req.LockUSB == nil || *req.LockUSB
	now := time.Now()

	err := s.lockDevice(req.DeviceID, lockNetwork, lockUSB, now)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Device not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to lock device"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Hardware lock recorded"})
}

// lockDevice updates the stored lock state.
// TODO: push the lock command to the agent over the /ws/alerts stream
// once agents subscribe to it; today only the database state changes.
func (s *Server) lockDevice(deviceID string, lockNetwork, lockUSB bool, now time.Time) error {
	if err := s.store.SetHardwareLock(deviceID, lockNetwork, lockUSB, now); err != nil {
		return err
	}
	s.auditLog(deviceID, "hardware-lock-system", models.SeverityHigh, "Hardware lock requested", now)
	return nil
}

// auditLog writes an internal security log entry, best-effort
func (s *Server) auditLog(deviceID, source, severity, message string, now time.Time) {
	entry := &models.LogEntry{
		DeviceID:  deviceID,
		LogType:   "security",
		Source:    source,
		Severity:  severity,
		Message:   message,
		Timestamp: now,
	}
	if err := s.store.CreateLog(entry); err != nil {
		s.logger.WithError(err).Warn("failed to write audit log")
	}
}

func intQuery(c *gin.Context, key string, fallback int) int {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
