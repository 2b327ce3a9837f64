package handlers

import (
	"net/http"

	"parkinglot/models"

	"github.com/gin-gonic/gin"
)

func (h *ParkingHandler) SubmitPaymentHandler(c *gin.Context) {
	var input models.PaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	payment, err := h.Svc.SubmitPayment(c.Request.Context(), input)
	if err != nil {
		respondError(c, err, "Failed to submit payment")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Payment submitted", "payment": payment})
}

func (h *ParkingHandler) ValidatePaymentHandler(c *gin.Context) {
	payment, err := h.Svc.ValidatePayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to validate payment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment validated", "payment": payment})
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// RejectPaymentHandler takes an optional {"reason": "..."} body.
func (h *ParkingHandler) RejectPaymentHandler(c *gin.Context) {
	var req rejectRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	payment, err := h.Svc.RejectPayment(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err, "Failed to reject payment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment rejected", "payment": payment})
}
