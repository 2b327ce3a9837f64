package parking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"parkinglot/database"
	"parkinglot/models"
	"parkinglot/services/domain"
	"parkinglot/services/events"

	"go.uber.org/zap"
)

func (s *DefaultParkingService) loadTicket(ctx context.Context, code string) (*models.Ticket, error) {
	ticket, err := s.Repos.Tickets.GetByCode(ctx, code)
	if errors.Is(err, database.ErrNotFound) {
		return nil, domain.NotFound("ticket", code)
	}
	if err != nil {
		return nil, fmt.Errorf("load ticket %s: %w", code, err)
	}
	return ticket, nil
}

func (s *DefaultParkingService) loadPayment(ctx context.Context, id string) (*models.Payment, error) {
	payment, err := s.Repos.Payments.GetByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, domain.NotFound("payment", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load payment %s: %w", id, err)
	}
	return payment, nil
}

// carForTicket returns nil, nil when no vehicle references the ticket.
func (s *DefaultParkingService) carForTicket(ctx context.Context, code string) (*models.Car, error) {
	car, err := s.Repos.Cars.GetByTicketCode(ctx, code)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load vehicle for ticket %s: %w", code, err)
	}
	return car, nil
}

// appendHistory adds an event to the visit's history. A missing entry is logged, not fatal.
func (s *DefaultParkingService) appendHistory(ctx context.Context, historyID string, event models.HistoryEvent, mutate func(*models.HistoryEntry)) error {
	if historyID == "" {
		return nil
	}
	entry, err := s.Repos.History.GetByID(ctx, historyID)
	if errors.Is(err, database.ErrNotFound) {
		s.Logger.Warn("History entry missing", zap.String("historyId", historyID), zap.String("event", string(event.Type)))
		return nil
	}
	if err != nil {
		return fmt.Errorf("load history %s: %w", historyID, err)
	}
	entry.Events = append(entry.Events, event)
	if mutate != nil {
		mutate(entry)
	}
	entry.UpdatedAt = event.At
	if err := s.Repos.History.Update(ctx, entry); err != nil {
		return fmt.Errorf("update history %s: %w", historyID, err)
	}
	return nil
}

// notify publishes after a committed transition. Failures only affect dashboards, so they are logged.
func (s *DefaultParkingService) notify(ctx context.Context, collection, op, key string) {
	if s.Publisher == nil {
		return
	}
	change := events.Change{Collection: collection, Operation: op, Key: key, At: s.now()}
	if err := s.Publisher.Publish(ctx, change); err != nil {
		s.Logger.Warn("Failed to publish change", zap.String("collection", collection), zap.Error(err))
	}
}

func ticketConflict(t *models.Ticket, msg string) error {
	return domain.Conflict("ticket", t.Code, string(t.Status), msg)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
