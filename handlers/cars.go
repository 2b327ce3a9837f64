package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"parkinglot/models"
	"parkinglot/services/domain"
	"parkinglot/services/parking"

	"github.com/gin-gonic/gin"
)

const maxImageBytes = 10 << 20

// RegisterVehicleHandler accepts a multipart form (or JSON) with optional
// plateImage and vehicleImage files.
func (h *ParkingHandler) RegisterVehicleHandler(c *gin.Context) {
	var input models.CarInput
	if err := c.ShouldBind(&input); err != nil {
		badRequest(c, err)
		return
	}
	images, err := readVehicleImages(c)
	if err != nil {
		respondError(c, err, "Failed to read vehicle images")
		return
	}

	car, err := h.Svc.RegisterVehicle(c.Request.Context(), input, images)
	if err != nil {
		respondError(c, err, "Failed to register vehicle")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Vehicle registered", "car": car})
}

func (h *ParkingHandler) UpdateVehicleHandler(c *gin.Context) {
	var input models.CarInput
	if err := c.ShouldBind(&input); err != nil {
		badRequest(c, err)
		return
	}
	images, err := readVehicleImages(c)
	if err != nil {
		respondError(c, err, "Failed to read vehicle images")
		return
	}

	car, err := h.Svc.UpdateVehicle(c.Request.Context(), c.Param("id"), input, images)
	if err != nil {
		respondError(c, err, "Failed to update vehicle")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vehicle updated", "car": car})
}

func readVehicleImages(c *gin.Context) (parking.VehicleImages, error) {
	var images parking.VehicleImages
	var err error
	if images.Plate, err = readImage(c, "plateImage"); err != nil {
		return images, err
	}
	if images.Vehicle, err = readImage(c, "vehicleImage"); err != nil {
		return images, err
	}
	return images, nil
}

// readImage returns nil when the form has no such file.
func readImage(c *gin.Context, field string) (*models.ImageUpload, error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Invalid(field, err.Error())
	}
	if header.Size > maxImageBytes {
		return nil, domain.Invalid(field, fmt.Sprintf("image larger than %d MB", maxImageBytes>>20))
	}

	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", field, err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return &models.ImageUpload{Filename: header.Filename, ContentType: contentType, Data: data}, nil
}
