package parking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parkinglot/database"
	"parkinglot/database/repository"
	"parkinglot/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProcessExit lets a paid vehicle leave: the vehicle record is removed, the
// visit's history is finalized and the ticket is returned to the pool.
func (s *DefaultParkingService) ProcessExit(ctx context.Context, code string) (*models.HistoryEntry, error) {
	code = normalizeCode(code)
	now := s.now()

	var finalized *models.HistoryEntry
	err := s.Tx.RunInTransaction(ctx, func(ctx context.Context) error {
		ticket, err := s.loadTicket(ctx, code)
		if err != nil {
			return err
		}
		if ticket.Status != models.TicketPaidValidated {
			return ticketConflict(ticket, "ticket has no validated payment")
		}

		var payment *models.Payment
		if ticket.LastPaymentID != "" {
			payment, err = s.Repos.Payments.GetByID(ctx, ticket.LastPaymentID)
			if errors.Is(err, database.ErrNotFound) {
				s.Logger.Warn("Validated payment missing at exit", zap.String("ticket", code), zap.String("paymentId", ticket.LastPaymentID))
				payment = nil
			} else if err != nil {
				return fmt.Errorf("load payment %s: %w", ticket.LastPaymentID, err)
			}
		}

		car, err := s.carForTicket(ctx, code)
		if err != nil {
			return err
		}
		entry, err := s.openHistory(ctx, ticket, car)
		if err != nil {
			return err
		}

		closeVisit(entry, payment, now)
		if entry.CreatedAt.IsZero() {
			// No record survived registration; write one so the visit is still audited.
			entry.CreatedAt = now
			if _, err := s.Repos.History.Create(ctx, entry); err != nil {
				return err
			}
		} else if err := s.Repos.History.Update(ctx, entry); err != nil {
			return err
		}

		if car != nil {
			if err := s.Repos.Cars.Delete(ctx, car.ID); err != nil {
				return err
			}
		}
		ticket.Release(now)
		if err := s.Repos.Tickets.Update(ctx, ticket); err != nil {
			return err
		}
		finalized = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("Vehicle exited",
		zap.String("ticket", code),
		zap.String("historyId", finalized.ID),
		zap.Int("durationMinutes", finalized.DurationMinutes))
	s.notify(ctx, "tickets", "update", code)
	return finalized, nil
}

// openHistory finds the unfinished history entry of the visit on ticket.
// When none exists an unsaved entry is built from the ticket.
func (s *DefaultParkingService) openHistory(ctx context.Context, ticket *models.Ticket, car *models.Car) (*models.HistoryEntry, error) {
	if car != nil && car.HistoryID != "" {
		entry, err := s.Repos.History.GetByID(ctx, car.HistoryID)
		if err == nil && !entry.Finalized() {
			return entry, nil
		}
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("load history %s: %w", car.HistoryID, err)
		}
	}

	recent, err := s.Repos.History.List(ctx, repository.HistoryFilter{TicketCode: ticket.Code, Limit: 5})
	if err != nil {
		return nil, fmt.Errorf("list history for %s: %w", ticket.Code, err)
	}
	for i := range recent {
		if !recent[i].Finalized() {
			return &recent[i], nil
		}
	}

	s.Logger.Warn("No open history entry at exit", zap.String("ticket", ticket.Code))
	entry := &models.HistoryEntry{
		ID:         uuid.New().String(),
		TicketCode: ticket.Code,
	}
	if car != nil {
		entry.Car = *car
		entry.EnteredAt = car.EnteredAt
	} else {
		if ticket.Car != nil {
			entry.Car = models.Car{
				Plate:      ticket.Car.Plate,
				Make:       ticket.Car.Make,
				Model:      ticket.Car.Model,
				Color:      ticket.Car.Color,
				OwnerName:  ticket.Car.OwnerName,
				OwnerPhone: ticket.Car.OwnerPhone,
				TicketCode: ticket.Code,
			}
		}
		if ticket.OccupiedAt != nil {
			entry.EnteredAt = *ticket.OccupiedAt
		}
	}
	return entry, nil
}

func closeVisit(entry *models.HistoryEntry, payment *models.Payment, now time.Time) {
	entry.Events = append(entry.Events, models.HistoryEvent{Type: models.EventExited, At: now})
	entry.ExitedAt = &now
	entry.UpdatedAt = now
	if !entry.EnteredAt.IsZero() && now.After(entry.EnteredAt) {
		entry.DurationMinutes = int(now.Sub(entry.EnteredAt).Minutes())
	}
	if payment == nil {
		return
	}
	if entry.Payment == nil {
		validatedAt := now
		if payment.ReviewedAt != nil {
			validatedAt = *payment.ReviewedAt
		}
		entry.Payment = &models.PaymentSnapshot{
			PaymentID:   payment.ID,
			Reference:   payment.Reference,
			Bank:        payment.Bank,
			Amount:      payment.Amount,
			PaidAt:      payment.PaidAt,
			ValidatedAt: validatedAt,
		}
	}
	entry.TotalAmount = payment.AmountDue
	entry.TotalAmountLocal = payment.AmountDueLocal
}
