// File: models/history.go
package models

import "time"

type HistoryEventType string

const (
	EventRegistered       HistoryEventType = "registered"
	EventConfirmed        HistoryEventType = "confirmed"
	EventPaymentRejected  HistoryEventType = "payment_rejected"
	EventPaymentValidated HistoryEventType = "payment_validated"
	EventExited           HistoryEventType = "exited"
)

// HistoryEntry is the permanent audit record of one vehicle visit.
type HistoryEntry struct {
	ID               string           `bson:"id" json:"id"`
	TicketCode       string           `bson:"ticketCode" json:"ticketCode"`
	Car              Car              `bson:"car" json:"car"`
	Events           []HistoryEvent   `bson:"events" json:"events"`
	Payment          *PaymentSnapshot `bson:"payment,omitempty" json:"payment,omitempty"`
	TotalAmount      float64          `bson:"totalAmount" json:"totalAmount"`
	TotalAmountLocal float64          `bson:"totalAmountLocal" json:"totalAmountLocal"`
	EnteredAt        time.Time        `bson:"enteredAt" json:"enteredAt"`
	ExitedAt         *time.Time       `bson:"exitedAt,omitempty" json:"exitedAt,omitempty"`
	DurationMinutes  int              `bson:"durationMinutes" json:"durationMinutes"`
	CreatedAt        time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time        `bson:"updatedAt" json:"updatedAt"`
}

// Finalized reports whether the visit has ended.
func (h *HistoryEntry) Finalized() bool {
	return h.ExitedAt != nil
}

type HistoryEvent struct {
	Type   HistoryEventType `bson:"type" json:"type"`
	At     time.Time        `bson:"at" json:"at"`
	Detail string           `bson:"detail,omitempty" json:"detail,omitempty"`
}

// PaymentSnapshot freezes the payment that settled a visit.
type PaymentSnapshot struct {
	PaymentID   string    `bson:"paymentId" json:"paymentId"`
	Reference   string    `bson:"reference" json:"reference"`
	Bank        string    `bson:"bank" json:"bank"`
	Amount      float64   `bson:"amount" json:"amount"`
	PaidAt      time.Time `bson:"paidAt" json:"paidAt"`
	ValidatedAt time.Time `bson:"validatedAt" json:"validatedAt"`
}
