// File: models/car.go
package models

import "time"

type CarStatus string

const (
	CarParked          CarStatus = "parked"
	CarParkedConfirmed CarStatus = "parked_confirmed"
	CarPaidValidated   CarStatus = "paid_validated"
)

// PresentCarStatuses are the states of a vehicle that is still inside the lot.
var PresentCarStatuses = []CarStatus{CarParked, CarParkedConfirmed, CarPaidValidated}

// Capture methods for a recorded field.
const (
	CaptureManual     = "manual"
	CaptureRecognized = "recognized"
)

// Car is the live record of a vehicle occupying a space.
type Car struct {
	ID         string                 `bson:"id" json:"id"`
	Plate      string                 `bson:"plate" json:"plate"`
	Make       string                 `bson:"make" json:"make"`
	Model      string                 `bson:"model" json:"model"`
	Color      string                 `bson:"color" json:"color"`
	OwnerName  string                 `bson:"ownerName" json:"ownerName"`
	OwnerPhone string                 `bson:"ownerPhone" json:"ownerPhone"`
	TicketCode string                 `bson:"ticketCode" json:"ticketCode"`
	EnteredAt  time.Time              `bson:"enteredAt" json:"enteredAt"`
	Status     CarStatus              `bson:"status" json:"status"`
	HistoryID  string                 `bson:"historyId" json:"historyId"`
	Images     CarImages              `bson:"images" json:"images"`
	Captures   map[string]CaptureInfo `bson:"captures,omitempty" json:"captures,omitempty"`
	CreatedAt  time.Time              `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time              `bson:"updatedAt" json:"updatedAt"`
}

// Snapshot returns the summary embedded in tickets.
func (c *Car) Snapshot() *CarSnapshot {
	return &CarSnapshot{
		Plate:      c.Plate,
		Make:       c.Make,
		Model:      c.Model,
		Color:      c.Color,
		OwnerName:  c.OwnerName,
		OwnerPhone: c.OwnerPhone,
	}
}

type CarImages struct {
	Plate   *ImageRef `bson:"plate,omitempty" json:"plate,omitempty"`
	Vehicle *ImageRef `bson:"vehicle,omitempty" json:"vehicle,omitempty"`
}

// ImageRef points at a hosted image.
type ImageRef struct {
	URL      string `bson:"url" json:"url"`
	PublicID string `bson:"publicId" json:"publicId"`
}

// CaptureInfo records how a single field (plate, make, ...) was obtained.
type CaptureInfo struct {
	Method     string    `bson:"method" json:"method"`
	Confidence float64   `bson:"confidence" json:"confidence"`
	CapturedAt time.Time `bson:"capturedAt" json:"capturedAt"`
}

// CarInput carries vehicle fields from a registration or edit form.
type CarInput struct {
	Plate      string `form:"plate" json:"plate"`
	Make       string `form:"make" json:"make"`
	Model      string `form:"model" json:"model"`
	Color      string `form:"color" json:"color"`
	OwnerName  string `form:"ownerName" json:"ownerName"`
	OwnerPhone string `form:"ownerPhone" json:"ownerPhone"`
	TicketCode string `form:"ticketCode" json:"ticketCode"`
}

// ImageUpload is an image received with a vehicle form.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}
