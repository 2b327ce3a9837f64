package repository

import (
	carRepo "parkinglot/database/repository/car"
	historyRepo "parkinglot/database/repository/history"
	paymentRepo "parkinglot/database/repository/payment"
	settingsRepo "parkinglot/database/repository/settings"
	staffRepo "parkinglot/database/repository/staff"
	ticketRepo "parkinglot/database/repository/ticket"

	"go.mongodb.org/mongo-driver/mongo"
)

// Re-export the repository interfaces.
type (
	TicketRepository   = ticketRepo.TicketRepository
	CarRepository      = carRepo.CarRepository
	PaymentRepository  = paymentRepo.PaymentRepository
	HistoryRepository  = historyRepo.HistoryRepository
	HistoryFilter      = historyRepo.HistoryFilter
	SettingsRepository = settingsRepo.SettingsRepository
	StaffRepository    = staffRepo.StaffRepository
)

// Repos bundles every store the service layer needs.
type Repos struct {
	Tickets  TicketRepository
	Cars     CarRepository
	Payments PaymentRepository
	History  HistoryRepository
	Settings SettingsRepository
	Staff    StaffRepository
}

// NewMongoRepos builds all repositories on one database.
func NewMongoRepos(db *mongo.Database) *Repos {
	return &Repos{
		Tickets:  ticketRepo.NewMongoTicketRepo(db),
		Cars:     carRepo.NewMongoCarRepo(db),
		Payments: paymentRepo.NewMongoPaymentRepo(db),
		History:  historyRepo.NewMongoHistoryRepo(db),
		Settings: settingsRepo.NewMongoSettingsRepo(db),
		Staff:    staffRepo.NewMongoStaffRepo(db),
	}
}
