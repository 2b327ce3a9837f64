package handlers

import (
	"net/http"

	"parkinglot/services/parking"
	"parkinglot/services/settings"

	"github.com/gin-gonic/gin"
)

// ParkingHandler serves the ticket, vehicle, payment and history endpoints.
type ParkingHandler struct {
	Svc      parking.ParkingService
	Settings settings.SettingsService
}

func NewParkingHandler(svc parking.ParkingService, settingsSvc settings.SettingsService) *ParkingHandler {
	return &ParkingHandler{Svc: svc, Settings: settingsSvc}
}

func (h *ParkingHandler) ListAvailableTicketsHandler(c *gin.Context) {
	tickets, err := h.Svc.ListAvailableTickets(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list available tickets")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}

// GetTicketDetailsHandler returns the fee a customer owes for a ticket.
func (h *ParkingHandler) GetTicketDetailsHandler(c *gin.Context) {
	details, err := h.Svc.GetTicketDetails(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err, "Failed to load ticket details")
		return
	}
	c.JSON(http.StatusOK, gin.H{"details": details})
}

func (h *ParkingHandler) ConfirmParkingHandler(c *gin.Context) {
	ticket, err := h.Svc.ConfirmParking(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err, "Failed to confirm parking")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Parking confirmed", "ticket": ticket})
}

// ListPendingReviewHandler is the staff queue: payments to validate and tickets to confirm.
func (h *ParkingHandler) ListPendingReviewHandler(c *gin.Context) {
	review, err := h.Svc.ListPendingReview(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list pending review")
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": review.Payments, "unconfirmed": review.Unconfirmed})
}

func (h *ParkingHandler) ListReadyForExitHandler(c *gin.Context) {
	tickets, err := h.Svc.ListReadyForExit(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list tickets ready for exit")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}

func (h *ParkingHandler) ProcessExitHandler(c *gin.Context) {
	entry, err := h.Svc.ProcessExit(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err, "Failed to process exit")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vehicle exit processed", "history": entry})
}
