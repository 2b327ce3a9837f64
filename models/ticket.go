// File: models/ticket.go
package models

import "time"

// TicketStatus is the lifecycle state of a parking space.
type TicketStatus string

const (
	TicketAvailable       TicketStatus = "available"
	TicketOccupied        TicketStatus = "occupied"
	TicketParkedConfirmed TicketStatus = "parked_confirmed"
	TicketPaymentPending  TicketStatus = "payment_pending"
	TicketPaymentRejected TicketStatus = "payment_rejected"
	TicketPaidValidated   TicketStatus = "paid_validated"
)

// Payable reports whether a customer may submit a payment for a ticket in this state.
func (s TicketStatus) Payable() bool {
	return s == TicketParkedConfirmed || s == TicketPaymentRejected
}

// Quotable reports whether the ticket's fee can be shown to a customer.
func (s TicketStatus) Quotable() bool {
	return s == TicketOccupied || s.Payable()
}

// Ticket is one physical parking space, addressed by its code (e.g. "PARK007").
type Ticket struct {
	Code           string       `bson:"code" json:"code"`
	Status         TicketStatus `bson:"status" json:"status"`
	OccupiedAt     *time.Time   `bson:"occupiedAt,omitempty" json:"occupiedAt,omitempty"`
	AmountDue      float64      `bson:"amountDue" json:"amountDue"`
	AmountDueLocal float64      `bson:"amountDueLocal" json:"amountDueLocal"`
	LastPaymentID  string       `bson:"lastPaymentId,omitempty" json:"lastPaymentId,omitempty"`
	Car            *CarSnapshot `bson:"car,omitempty" json:"car,omitempty"`
	CreatedAt      time.Time    `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time    `bson:"updatedAt" json:"updatedAt"`
}

// Release clears everything tied to the vehicle that used the space.
func (t *Ticket) Release(now time.Time) {
	t.Status = TicketAvailable
	t.OccupiedAt = nil
	t.AmountDue = 0
	t.AmountDueLocal = 0
	t.LastPaymentID = ""
	t.Car = nil
	t.UpdatedAt = now
}

// CarSnapshot is the denormalized vehicle summary embedded in tickets and review items.
type CarSnapshot struct {
	Plate      string `bson:"plate" json:"plate"`
	Make       string `bson:"make,omitempty" json:"make,omitempty"`
	Model      string `bson:"model,omitempty" json:"model,omitempty"`
	Color      string `bson:"color,omitempty" json:"color,omitempty"`
	OwnerName  string `bson:"ownerName,omitempty" json:"ownerName,omitempty"`
	OwnerPhone string `bson:"ownerPhone,omitempty" json:"ownerPhone,omitempty"`
}

// TicketDetails is what a customer sees before paying.
type TicketDetails struct {
	Ticket         Ticket      `json:"ticket"`
	AmountDue      float64     `json:"amountDue"`
	AmountDueLocal float64     `json:"amountDueLocal"`
	HourlyRate     float64     `json:"hourlyRate"`
	ExchangeRate   float64     `json:"exchangeRate"`
	ElapsedMinutes int         `json:"elapsedMinutes"`
	PaymentInfo    PaymentInfo `json:"paymentInfo"`
}
