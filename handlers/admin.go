package handlers

import (
	"net/http"

	"parkinglot/services/parking"
	"parkinglot/services/tasks"
	"parkinglot/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler encapsulates maintenance operations.
type AdminHandler struct {
	Parking parking.ParkingService
	// Queue is nil when the background worker is disabled.
	Queue tasks.Enqueuer
}

func NewAdminHandler(ps parking.ParkingService, queue tasks.Enqueuer) *AdminHandler {
	return &AdminHandler{Parking: ps, Queue: queue}
}

// ReconcileHandler repairs ticket/vehicle drift. With ?async=true the run is
// handed to the worker instead.
func (h *AdminHandler) ReconcileHandler(c *gin.Context) {
	if c.Query("async") == "true" && h.Queue != nil {
		id, err := tasks.EnqueueReconcile(c.Request.Context(), h.Queue, "admin")
		if err != nil {
			respondError(c, err, "Failed to enqueue reconciliation")
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"message": "Reconciliation queued", "taskId": id})
		return
	}

	report, err := h.Parking.Reconcile(c.Request.Context())
	if err != nil {
		respondError(c, err, "Reconciliation failed")
		return
	}
	getLogger(c).Info("Manual reconciliation",
		zap.Int("promoted", len(report.Promoted)),
		zap.Int("released", len(report.Released)))
	c.JSON(http.StatusOK, gin.H{"message": "Reconciliation complete", "report": report})
}

// HealthHandler reports the last dependency probe. It answers 503 when a probe failed.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	state := "ok"
	if !status.CheckedAt.IsZero() && !status.Healthy() {
		code = http.StatusServiceUnavailable
		state = "degraded"
	}
	c.JSON(code, gin.H{"status": state, "checks": status})
}
