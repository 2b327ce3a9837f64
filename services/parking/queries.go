package parking

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"parkinglot/database"
	"parkinglot/database/repository"
	"parkinglot/models"
	"parkinglot/services/domain"
	"parkinglot/services/pricing"

	"go.uber.org/zap"
)

func (s *DefaultParkingService) ListAvailableTickets(ctx context.Context) ([]models.Ticket, error) {
	return s.Repos.Tickets.ListByStatus(ctx, models.TicketAvailable)
}

func (s *DefaultParkingService) ListReadyForExit(ctx context.Context) ([]models.Ticket, error) {
	return s.Repos.Tickets.ListByStatus(ctx, models.TicketPaidValidated)
}

// GetTicketDetails quotes the current fee of a ticket for the customer.
//
// An available ticket that a live vehicle still references is promoted to
// occupied using the vehicle's entry time before quoting.
func (s *DefaultParkingService) GetTicketDetails(ctx context.Context, code string) (*models.TicketDetails, error) {
	code = normalizeCode(code)
	ticket, err := s.loadTicket(ctx, code)
	if err != nil {
		return nil, err
	}

	if ticket.Status == models.TicketAvailable {
		car, err := s.carForTicket(ctx, code)
		if err != nil {
			return nil, err
		}
		if car == nil {
			return nil, ticketConflict(ticket, "ticket is not in use")
		}
		if err := s.heal(ctx, ticket, car); err != nil {
			return nil, err
		}
	}
	if !ticket.Status.Quotable() {
		return nil, ticketConflict(ticket, "ticket has no fee to pay")
	}

	current, err := s.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	enteredAt := now
	if ticket.OccupiedAt != nil {
		enteredAt = *ticket.OccupiedAt
	}
	fee := pricing.Quote(enteredAt, now, current.Tariffs)

	return &models.TicketDetails{
		Ticket:         *ticket,
		AmountDue:      fee.Amount,
		AmountDueLocal: fee.AmountLocal,
		HourlyRate:     fee.HourlyRate,
		ExchangeRate:   fee.ExchangeRate,
		ElapsedMinutes: fee.ElapsedMinutes,
		PaymentInfo:    current.Payment,
	}, nil
}

// heal promotes an available ticket held by car back to occupied.
func (s *DefaultParkingService) heal(ctx context.Context, ticket *models.Ticket, car *models.Car) error {
	s.Logger.Warn("Ticket marked available but a vehicle references it, restoring occupancy",
		zap.String("ticket", ticket.Code),
		zap.String("carId", car.ID),
		zap.Time("enteredAt", car.EnteredAt))

	enteredAt := car.EnteredAt
	ticket.Status = models.TicketOccupied
	ticket.OccupiedAt = &enteredAt
	ticket.Car = car.Snapshot()
	ticket.UpdatedAt = s.now()
	if err := s.Repos.Tickets.Update(ctx, ticket); err != nil {
		return fmt.Errorf("restore ticket %s: %w", ticket.Code, err)
	}
	s.notify(ctx, "tickets", "update", ticket.Code)
	return nil
}

// ListPendingReview builds the staff queue: payments awaiting validation,
// most urgent first, plus occupied tickets that still need confirmation.
func (s *DefaultParkingService) ListPendingReview(ctx context.Context) (*models.PendingReview, error) {
	payments, err := s.Repos.Payments.ListByStatus(ctx, models.PaymentPendingValidation)
	if err != nil {
		return nil, fmt.Errorf("list pending payments: %w", err)
	}

	items := make([]models.ReviewItem, 0, len(payments))
	for _, p := range payments {
		item := models.ReviewItem{Payment: p}
		ticket, err := s.Repos.Tickets.GetByCode(ctx, p.TicketCode)
		switch {
		case err == nil:
			item.Ticket = ticket
		case !errors.Is(err, database.ErrNotFound):
			return nil, fmt.Errorf("load ticket %s: %w", p.TicketCode, err)
		}
		if item.Car, err = s.reviewCar(ctx, p.TicketCode, item.Ticket); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	sortByUrgency(items)

	unconfirmed, err := s.Repos.Tickets.ListByStatus(ctx, models.TicketOccupied)
	if err != nil {
		return nil, fmt.Errorf("list unconfirmed tickets: %w", err)
	}
	return &models.PendingReview{Payments: items, Unconfirmed: unconfirmed}, nil
}

// reviewCar resolves vehicle details from the live record, then the ticket
// snapshot, then the most recent history entry.
func (s *DefaultParkingService) reviewCar(ctx context.Context, code string, ticket *models.Ticket) (*models.CarSnapshot, error) {
	car, err := s.carForTicket(ctx, code)
	if err != nil {
		return nil, err
	}
	if car != nil {
		return car.Snapshot(), nil
	}
	if ticket != nil && ticket.Car != nil {
		return ticket.Car, nil
	}
	recent, err := s.Repos.History.List(ctx, repository.HistoryFilter{TicketCode: code, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("list history for %s: %w", code, err)
	}
	if len(recent) == 0 {
		return nil, nil
	}
	return recent[0].Car.Snapshot(), nil
}

// sortByUrgency moves payments with a requested exit time to the front,
// earliest first. The rest keep their order.
func sortByUrgency(items []models.ReviewItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Payment.RequestedExitAt, items[j].Payment.RequestedExitAt
		switch {
		case a != nil && b != nil:
			return a.Before(*b)
		case a != nil:
			return true
		default:
			return false
		}
	})
}

func (s *DefaultParkingService) GetHistory(ctx context.Context, id string) (*models.HistoryEntry, error) {
	entry, err := s.Repos.History.GetByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, domain.NotFound("history entry", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load history %s: %w", id, err)
	}
	return entry, nil
}

func (s *DefaultParkingService) ListHistory(ctx context.Context, filter repository.HistoryFilter) ([]models.HistoryEntry, error) {
	if filter.Limit < 0 {
		return nil, domain.Invalid("limit", "must not be negative")
	}
	filter.TicketCode = normalizeCode(filter.TicketCode)
	return s.Repos.History.List(ctx, filter)
}
