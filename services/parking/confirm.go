package parking

import (
	"context"

	"parkinglot/models"

	"go.uber.org/zap"
)

// ConfirmParking records that staff saw the vehicle in its space.
func (s *DefaultParkingService) ConfirmParking(ctx context.Context, code string) (*models.Ticket, error) {
	code = normalizeCode(code)
	now := s.now()

	var confirmed *models.Ticket
	err := s.Tx.RunInTransaction(ctx, func(ctx context.Context) error {
		ticket, err := s.loadTicket(ctx, code)
		if err != nil {
			return err
		}
		if ticket.Status != models.TicketOccupied {
			return ticketConflict(ticket, "only occupied tickets can be confirmed")
		}

		car, err := s.carForTicket(ctx, code)
		if err != nil {
			return err
		}
		if car != nil {
			car.Status = models.CarParkedConfirmed
			car.UpdatedAt = now
			if err := s.Repos.Cars.Update(ctx, car); err != nil {
				return err
			}
			event := models.HistoryEvent{Type: models.EventConfirmed, At: now}
			if err := s.appendHistory(ctx, car.HistoryID, event, nil); err != nil {
				return err
			}
		} else {
			s.Logger.Warn("Confirming ticket without a vehicle record", zap.String("ticket", code))
		}

		ticket.Status = models.TicketParkedConfirmed
		ticket.UpdatedAt = now
		if err := s.Repos.Tickets.Update(ctx, ticket); err != nil {
			return err
		}
		confirmed = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("Parking confirmed", zap.String("ticket", code))
	s.notify(ctx, "tickets", "update", code)
	return confirmed, nil
}
