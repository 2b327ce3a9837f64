package handlers

import (
	"net/http"

	"parkinglot/models"
	"parkinglot/services/domain"
	"parkinglot/services/recognition"

	"github.com/gin-gonic/gin"
)

// RecognitionHandler exposes the recognizer so the registration form can
// prefill fields before submitting.
type RecognitionHandler struct {
	Recognizer recognition.Recognizer
}

func NewRecognitionHandler(r recognition.Recognizer) *RecognitionHandler {
	return &RecognitionHandler{Recognizer: r}
}

func (h *RecognitionHandler) RecognizePlateHandler(c *gin.Context) {
	img, ok := requireImage(c)
	if !ok {
		return
	}
	reading, err := h.Recognizer.RecognizePlate(c.Request.Context(), img.Data, img.ContentType)
	if err != nil {
		respondError(c, err, "Plate recognition failed")
		return
	}
	reading.Text = recognition.NormalizePlate(reading.Text)
	c.JSON(http.StatusOK, gin.H{"reading": reading})
}

func (h *RecognitionHandler) RecognizeVehicleHandler(c *gin.Context) {
	img, ok := requireImage(c)
	if !ok {
		return
	}
	reading, err := h.Recognizer.RecognizeVehicle(c.Request.Context(), img.Data, img.ContentType)
	if err != nil {
		respondError(c, err, "Vehicle recognition failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"reading": reading})
}

func requireImage(c *gin.Context) (*models.ImageUpload, bool) {
	img, err := readImage(c, "image")
	if err != nil {
		respondError(c, err, "Failed to read image")
		return nil, false
	}
	if img == nil {
		respondError(c, domain.Invalid("image", "an image file is required"), "")
		return nil, false
	}
	return img, true
}
