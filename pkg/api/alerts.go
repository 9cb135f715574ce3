package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/devwatch/sentinel/pkg/store"
)

// handleListAlerts returns alerts, newest first
func (s *Server) handleListAlerts(c *gin.Context) {
	alerts, err := s.store.ListAlerts(store.AlertFilter{
		DeviceID:       c.Query("device_id"),
		UnresolvedOnly: c.Query("unresolved") == "true",
		Limit:          intQuery(c, "limit", 50),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "count": len(alerts)})
}

type resolveRequest struct {
	ResolvedBy string `json:"resolved_by"`
}

// handleResolveAlert marks an alert resolved
func (s *Server) handleResolveAlert(c *gin.Context) {
	var req resolveRequest
	_ = c.ShouldBindJSON(&req) // body optional

	err := s.store.ResolveAlert(c.Param("id"), req.ResolvedBy, time.Now())
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve alert"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
