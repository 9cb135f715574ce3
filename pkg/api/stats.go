package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devwatch/sentinel/pkg/models"
)

// handleStats aggregates the dashboard counters. Device liveness is
// recomputed here, never read from the stored status column.
func (s *Server) handleStats(c *gin.Context) {
	devices, err := s.store.ListDevices()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}

	online, offline, quarantined := 0, 0, 0
	for i := range devices {
		if s.liveness.EffectiveStatus(&devices[i]) == models.StatusOnline {
			online++
		} else {
			offline++
		}
		if devices[i].IsQuarantined {
			quarantined++
		}
	}

	alertCounts, err := s.store.CountUnresolvedBySeverity()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}

	pending, err := s.store.CountPendingRequests()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"devices": gin.H{
			"total":       len(devices),
			"online":      online,
			"offline":     offline,
			"quarantined": quarantined,
		},
		"alerts":           alertCounts,
		"pending_requests": pending,
	})
}
