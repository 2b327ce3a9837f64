package parking

import (
	"context"
	"time"

	"parkinglot/database"
	"parkinglot/database/repository"
	"parkinglot/models"
	"parkinglot/services/events"
	"parkinglot/services/recognition"
	"parkinglot/services/settings"
	"parkinglot/services/storage"

	"go.uber.org/zap"
)

// VehicleImages are the optional photos sent with a vehicle form.
type VehicleImages struct {
	Plate   *models.ImageUpload
	Vehicle *models.ImageUpload
}

// ParkingService drives the ticket, vehicle and payment lifecycle.
type ParkingService interface {
	ListAvailableTickets(ctx context.Context) ([]models.Ticket, error)
	GetTicketDetails(ctx context.Context, code string) (*models.TicketDetails, error)
	RegisterVehicle(ctx context.Context, input models.CarInput, images VehicleImages) (*models.Car, error)
	UpdateVehicle(ctx context.Context, id string, input models.CarInput, images VehicleImages) (*models.Car, error)
	ConfirmParking(ctx context.Context, code string) (*models.Ticket, error)
	SubmitPayment(ctx context.Context, input models.PaymentInput) (*models.Payment, error)
	ValidatePayment(ctx context.Context, paymentID string) (*models.Payment, error)
	RejectPayment(ctx context.Context, paymentID, reason string) (*models.Payment, error)
	ProcessExit(ctx context.Context, code string) (*models.HistoryEntry, error)
	ListPendingReview(ctx context.Context) (*models.PendingReview, error)
	ListReadyForExit(ctx context.Context) ([]models.Ticket, error)
	GetHistory(ctx context.Context, id string) (*models.HistoryEntry, error)
	ListHistory(ctx context.Context, filter repository.HistoryFilter) ([]models.HistoryEntry, error)
	Reconcile(ctx context.Context) (*models.ReconcileReport, error)
	EnsureInventory(ctx context.Context, prefix string, count int) (int64, error)
}

// DefaultParkingService implements ParkingService.
type DefaultParkingService struct {
	Repos       *repository.Repos
	Tx          database.TxRunner
	Settings    settings.SettingsService
	Images      storage.ImageStore
	Recognizer  recognition.Recognizer
	Publisher   events.Publisher
	Logger      *zap.Logger
	ImageFolder string
	Now         func() time.Time
}

func (s *DefaultParkingService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
