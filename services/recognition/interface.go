package recognition

import (
	"context"
	"errors"
)

// ErrEmptyImage is returned when a recognizer receives no image bytes.
var ErrEmptyImage = errors.New("empty image")

// PlateReading is the text read from a licence plate.
type PlateReading struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// VehicleReading describes a vehicle seen in a photo.
type VehicleReading struct {
	Make       string  `json:"make"`
	Model      string  `json:"model"`
	Color      string  `json:"color"`
	Confidence float64 `json:"confidence"`
}

type PlateRecognizer interface {
	RecognizePlate(ctx context.Context, image []byte, mimeType string) (PlateReading, error)
}

type VehicleRecognizer interface {
	RecognizeVehicle(ctx context.Context, image []byte, mimeType string) (VehicleReading, error)
}

// Recognizer reads both plates and vehicles.
type Recognizer interface {
	PlateRecognizer
	VehicleRecognizer
}
