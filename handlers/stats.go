package handlers

import (
	"io"
	"net/http"
	"time"

	"parkinglot/services/stats"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	Svc       stats.StatsService
	KeepAlive time.Duration
}

func NewStatsHandler(svc stats.StatsService) *StatsHandler {
	return &StatsHandler{Svc: svc, KeepAlive: 25 * time.Second}
}

func (h *StatsHandler) GetStatsHandler(c *gin.Context) {
	current, err := h.Svc.Compute(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to compute stats")
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": current})
}

// StreamStatsHandler pushes a "stats" event on connect and after every change.
// The subscription ends with the client connection.
func (h *StatsHandler) StreamStatsHandler(c *gin.Context) {
	ctx := c.Request.Context()
	updates, err := h.Svc.Stream(ctx)
	if err != nil {
		respondError(c, err, "Failed to open stats stream")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	keepAlive := h.KeepAlive
	if keepAlive <= 0 {
		keepAlive = 25 * time.Second
	}
	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case s, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("stats", s)
			return true
		case t := <-ticker.C:
			c.SSEvent("ping", t.UTC().Format(time.RFC3339))
			return true
		}
	})
}
