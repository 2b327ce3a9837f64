// File: models/payment.go
package models

import "time"

type PaymentStatus string

const (
	PaymentPendingValidation PaymentStatus = "pending_validation"
	PaymentValidated         PaymentStatus = "validated"
	PaymentRejected          PaymentStatus = "rejected"
)

// Exit options a customer can pick when paying.
const (
	ExitNow   = "now"
	Exit15Min = "15min"
	Exit30Min = "30min"
	Exit60Min = "60min"
)

// ExitOptionDelays maps an exit option to the delay after payment.
var ExitOptionDelays = map[string]time.Duration{
	ExitNow:   0,
	Exit15Min: 15 * time.Minute,
	Exit30Min: 30 * time.Minute,
	Exit60Min: 60 * time.Minute,
}

// Payment is one customer-submitted attempt to pay for a ticket.
type Payment struct {
	ID              string        `bson:"id" json:"id"`
	TicketCode      string        `bson:"ticketCode" json:"ticketCode"`
	Reference       string        `bson:"reference" json:"reference"`
	Bank            string        `bson:"bank" json:"bank"`
	Phone           string        `bson:"phone" json:"phone"`
	NationalID      string        `bson:"nationalId" json:"nationalId"`
	Amount          float64       `bson:"amount" json:"amount"`
	AmountDue       float64       `bson:"amountDue" json:"amountDue"`
	AmountDueLocal  float64       `bson:"amountDueLocal" json:"amountDueLocal"`
	PaidAt          time.Time     `bson:"paidAt" json:"paidAt"`
	Status          PaymentStatus `bson:"status" json:"status"`
	ExitOption      string        `bson:"exitOption,omitempty" json:"exitOption,omitempty"`
	RequestedExitAt *time.Time    `bson:"requestedExitAt,omitempty" json:"requestedExitAt,omitempty"`
	ReviewedAt      *time.Time    `bson:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`
	RejectReason    string        `bson:"rejectReason,omitempty" json:"rejectReason,omitempty"`
}

// PaymentInput is the customer's payment form.
type PaymentInput struct {
	TicketCode string  `json:"ticketCode" binding:"required"`
	Reference  string  `json:"reference" binding:"required"`
	Bank       string  `json:"bank" binding:"required"`
	Phone      string  `json:"phone" binding:"required"`
	NationalID string  `json:"nationalId" binding:"required"`
	Amount     float64 `json:"amount" binding:"required"`
	ExitOption string  `json:"exitOption"`
}

// ReviewItem joins a payment with its ticket and vehicle for staff review.
type ReviewItem struct {
	Payment Payment      `json:"payment"`
	Ticket  *Ticket      `json:"ticket,omitempty"`
	Car     *CarSnapshot `json:"car,omitempty"`
}

// PendingReview is the staff work queue.
type PendingReview struct {
	Payments    []ReviewItem `json:"payments"`
	Unconfirmed []Ticket     `json:"unconfirmed"`
}
