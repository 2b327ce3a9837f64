package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"parkinglot/database/repository"
	"parkinglot/services/domain"
	"parkinglot/services/receipt"

	"github.com/gin-gonic/gin"
)

// ListHistoryHandler supports ?plate=, ?ticket= and ?limit=.
func (h *ParkingHandler) ListHistoryHandler(c *gin.Context) {
	filter := repository.HistoryFilter{
		Plate:      c.Query("plate"),
		TicketCode: c.Query("ticket"),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(c, domain.Invalid("limit", "must be an integer"), "")
			return
		}
		filter.Limit = limit
	}

	entries, err := h.Svc.ListHistory(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Failed to list history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": entries})
}

func (h *ParkingHandler) GetHistoryHandler(c *gin.Context) {
	entry, err := h.Svc.GetHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to load history entry")
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": entry})
}

// ReceiptHandler renders the PDF receipt of a finished visit.
func (h *ParkingHandler) ReceiptHandler(c *gin.Context) {
	ctx := c.Request.Context()
	entry, err := h.Svc.GetHistory(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to load history entry")
		return
	}
	if !entry.Finalized() {
		respondError(c, domain.Conflict("history entry", entry.ID, "open", "visit has not finished"), "")
		return
	}
	company, err := h.Settings.Get(ctx)
	if err != nil {
		respondError(c, err, "Failed to load settings")
		return
	}

	pdf, err := receipt.Render(entry, company)
	if errors.Is(err, receipt.ErrOpenVisit) {
		respondError(c, domain.Conflict("history entry", entry.ID, "open", "visit has not finished"), "")
		return
	}
	if err != nil {
		respondError(c, err, "Failed to render receipt")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="receipt-%s.pdf"`, entry.TicketCode))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
