// File: models/stats.go
package models

import "time"

// DashboardStats are the counters shown on the staff dashboard.
type DashboardStats struct {
	PendingPayments      int64     `json:"pendingPayments"`
	PendingConfirmations int64     `json:"pendingConfirmations"`
	TotalStaff           int64     `json:"totalStaff"`
	PaymentsToday        int64     `json:"paymentsToday"`
	TotalTickets         int64     `json:"totalTickets"`
	AvailableTickets     int64     `json:"availableTickets"`
	ParkedVehicles       int64     `json:"parkedVehicles"`
	ReadyForExit         int64     `json:"readyForExit"`
	GeneratedAt          time.Time `json:"generatedAt"`
}
