package handlers

import (
	"net/http"

	"parkinglot/models"
	"parkinglot/services/settings"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	Svc settings.SettingsService
}

func NewSettingsHandler(svc settings.SettingsService) *SettingsHandler {
	return &SettingsHandler{Svc: svc}
}

func (h *SettingsHandler) GetSettingsHandler(c *gin.Context) {
	current, err := h.Svc.Get(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to load settings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": current})
}

// UpdateSettingsHandler accepts partial updates: payment info, tariffs, or both.
func (h *SettingsHandler) UpdateSettingsHandler(c *gin.Context) {
	var input models.SettingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	updated, err := h.Svc.Update(c.Request.Context(), input)
	if err != nil {
		respondError(c, err, "Failed to update settings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Settings updated", "settings": updated})
}
