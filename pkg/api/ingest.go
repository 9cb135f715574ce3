package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/devwatch/sentinel/pkg/models"
	"github.com/devwatch/sentinel/pkg/rules"
	"github.com/devwatch/sentinel/pkg/store"
)

type ingestRequest struct {
	DeviceID     string       `json:"device_id"`
	LogType      string       `json:"log_type"`
	Source       string       `json:"source"`
	Severity     string       `json:"severity"`
	Message      string       `json:"message"`
	EventCode    string       `json:"event_code"`
	Timestamp    *time.Time   `json:"timestamp"`
	RawData      models.JSONB `json:"raw_data"`
	HardwareType string       `json:"hardware_type"`
	Event        string       `json:"event"`
	DeviceName   string       `json:"device_name"`
	Hostname     string       `json:"hostname"`
}

func (r *ingestRequest) rawString(key string) string {
	if r.RawData == nil {
		return ""
	}
	if v, ok := r.RawData[key].(string); ok {
		return v
	}
	return ""
}

// handleIngestLog accepts one agent report, persists the log, and runs
// both classification passes. The log insert is the primary write;
// mirror records and keyword alerts are best-effort.
func (s *Server) handleIngestLog(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	if req.DeviceID == "" || req.LogType == "" || req.Message == "" || req.Timestamp == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing required fields: device_id, log_type, message, timestamp",
		})
		return
	}

	now := time.Now()

	s.logger.WithFields(logrus.Fields{
		"device_id":     req.DeviceID,
		"log_type":      req.LogType,
		"hardware_type": req.HardwareType,
		"event":         req.Event,
	}).Debug("log received")

	if err := s.ensureDevice(&req, now); err != nil {
		s.logger.WithError(err).Error("failed to verify reporting device")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify device"})
		return
	}

	severity := req.Severity
	if severity == "" {
		severity = models.SeverityInfo
	}

	entry := &models.LogEntry{
		DeviceID:     req.DeviceID,
		LogType:      req.LogType,
		Source:       sourceOrDefault(req.Source),
		Severity:     severity,
		Message:      req.Message,
		EventCode:    req.EventCode,
		HardwareType: req.HardwareType,
		Event:        req.Event,
		RawData:      req.RawData,
		Timestamp:    *req.Timestamp,
	}
	if err := s.store.CreateLog(entry); err != nil {
		s.logger.WithError(err).Error("failed to insert log")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create log"})
		return
	}

	if strings.EqualFold(req.LogType, "hardware") && req.HardwareType != "" {
		s.processHardwareEvent(&req, entry)
	}

	s.processKeywords(&req, now)

	if strings.EqualFold(req.LogType, "usb") && strings.Contains(strings.ToLower(req.Message), "transfer") {
		s.trackDataTransfer(&req)
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"log_id":  entry.ID,
		"message": "Log created successfully",
	})
}

// ensureDevice auto-registers unknown reporters and records a heartbeat
// for known ones
func (s *Server) ensureDevice(req *ingestRequest, now time.Time) error {
	_, err := s.store.GetDevice(req.DeviceID)
	if err == nil {
		return s.store.TouchDevice(req.DeviceID, now)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	name := req.DeviceName
	if name == "" {
		name = "Unknown Device"
	}
	hostname := req.Hostname
	if hostname == "" {
		hostname = "unknown-host"
	}

	s.logger.WithField("device_id", req.DeviceID).Info("unknown device, auto-registering")

	lastSeen := now
	return s.store.CreateDevice(&models.Device{
		ID:           req.DeviceID,
		DeviceName:   name,
		DeviceType:   "windows",
		Hostname:     hostname,
		Status:       models.StatusOnline,
		AgentVersion: "auto-registered",
		LastSeen:     &lastSeen,
	})
}

// processHardwareEvent mirrors the event and runs the hardware-type
// classification pass, which fires for every hardware event
func (s *Server) processHardwareEvent(req *ingestRequest, entry *models.LogEntry) {
	event := strings.ToLower(req.Event)
	if event == "" {
		event = "connected"
	}

	mirror := &models.DeviceEvent{
		DeviceID:       req.DeviceID,
		DeviceName:     orDefault(req.DeviceName, "Unknown Device"),
		HostName:       orDefault(req.Hostname, "Unknown Host"),
		DeviceCategory: strings.ToUpper(req.HardwareType),
		Event:          event,
		Timestamp:      *req.Timestamp,
	}
	if err := s.store.CreateDeviceEvent(mirror); err != nil {
		// best-effort mirror, the alert and log still stand
		s.logger.WithError(err).Warn("failed to record device event")
	}

	hw := models.HardwareEvent{
		DeviceID:     req.DeviceID,
		HardwareType: req.HardwareType,
		Event:        event,
		Hostname:     req.Hostname,
		SerialNumber: req.rawString("serial_number"),
		USBName:      req.rawString("usb_name"),
		Timestamp:    *req.Timestamp,
	}

	authorized := false
	if strings.EqualFold(hw.HardwareType, "usb") && event == "connected" &&
		hw.SerialNumber != "" && hw.SerialNumber != rules.SerialUnknown {
		record, err := s.store.ActiveBySerial(hw.SerialNumber)
		if err != nil {
			s.logger.WithError(err).Error("whitelist lookup failed")
			return
		}
		authorized = record != nil
	}

	outcome := rules.ClassifyHardware(hw, authorized)

	alert := &models.Alert{
		DeviceID:    req.DeviceID,
		AlertType:   outcome.AlertType,
		Severity:    outcome.Severity,
		Title:       outcome.Title,
		Description: outcome.Description,
	}
	if err := s.store.CreateAlert(alert); err != nil {
		s.logger.WithError(err).Error("failed to create hardware alert")
		return
	}
	s.hub.Broadcast(alert)

	if outcome.EscalateLog {
		if err := s.store.SetLogSeverity(entry.ID, models.SeverityCritical); err != nil {
			s.logger.WithError(err).Warn("failed to escalate log severity")
		}
	}
}

// processKeywords runs the message-text pass through the deduplicator.
// Failures here are logged and never fail the ingest request.
func (s *Server) processKeywords(req *ingestRequest, now time.Time) {
	outcome, ok := s.keywords.Classify(req.Message, now)
	if !ok {
		return
	}

	suppress, err := s.dedup.ShouldSuppress(req.DeviceID, outcome.AlertType)
	if err != nil {
		s.logger.WithError(err).Warn("alert dedup lookup failed")
		return
	}
	if suppress {
		s.logger.WithFields(logrus.Fields{
			"device_id":  req.DeviceID,
			"alert_type": outcome.AlertType,
		}).Debug("duplicate alert suppressed")
		return
	}

	alert := &models.Alert{
		DeviceID:    req.DeviceID,
		AlertType:   outcome.AlertType,
		LogType:     req.LogType,
		Severity:    outcome.Severity,
		Title:       outcome.Title,
		Description: outcome.Description,
		Message:     req.Message,
	}
	if err := s.store.CreateAlert(alert); err != nil {
		s.logger.WithError(err).Warn("failed to create keyword alert")
		return
	}
	s.hub.Broadcast(alert)

	s.logger.WithFields(logrus.Fields{
		"device_id": req.DeviceID,
		"severity":  outcome.Severity,
		"title":     outcome.Title,
	}).Info("alert created")
}

// trackDataTransfer records USB transfer activity, best-effort
func (s *Server) trackDataTransfer(req *ingestRequest) {
	summary := ""
	if len(req.RawData) > 0 {
		if b, err := json.Marshal(req.RawData); err == nil {
			summary = truncateString(string(b), 200)
		}
	}

	t := &models.DataTransfer{
		DeviceID:     req.DeviceID,
		TransferType: "usb",
		Message:      req.Message,
		DataSummary:  summary,
	}
	if err := s.store.CreateDataTransfer(t); err != nil {
		s.logger.WithError(err).Warn("failed to record data transfer")
	}
}

// handleListLogs returns recent logs, optionally filtered by device
func (s *Server) handleListLogs(c *gin.Context) {
	logs, err := s.store.ListLogs(c.Query("device_id"), intQuery(c, "limit", 100))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs, "count": len(logs)})
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func sourceOrDefault(source string) string {
	return orDefault(source, "agent")
}

func truncateString(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
