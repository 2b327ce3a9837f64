package parking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"parkinglot/database"
	"parkinglot/models"
	"parkinglot/services/domain"

	"go.uber.org/zap"
)

// Reconcile repairs drift between tickets and vehicle records: available
// tickets held by a live vehicle become occupied, and in-use tickets with
// no vehicle are released. The two listings only nominate candidates; each
// correction re-reads its ticket and vehicle in its own transaction and is
// skipped when the drift is gone.
func (s *DefaultParkingService) Reconcile(ctx context.Context) (*models.ReconcileReport, error) {
	report := &models.ReconcileReport{Promoted: []string{}, Released: []string{}}

	cars, err := s.Repos.Cars.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	held := make(map[string]bool, len(cars))
	for i := range cars {
		code := cars[i].TicketCode
		if held[code] {
			continue
		}
		held[code] = true
		promoted, err := s.promoteIfHeld(ctx, code)
		if err != nil {
			return nil, err
		}
		if promoted {
			report.Promoted = append(report.Promoted, code)
		}
	}

	inUse, err := s.Repos.Tickets.ListNotAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tickets in use: %w", err)
	}
	for i := range inUse {
		code := inUse[i].Code
		if held[code] {
			continue
		}
		released, err := s.releaseIfEmpty(ctx, code)
		if err != nil {
			return nil, err
		}
		if released {
			report.Released = append(report.Released, code)
		}
	}

	if len(report.Promoted)+len(report.Released) > 0 {
		s.Logger.Info("Reconciliation applied corrections",
			zap.Strings("promoted", report.Promoted),
			zap.Strings("released", report.Released))
		s.notify(ctx, "tickets", "update", "")
	}
	return report, nil
}

// promoteIfHeld marks an available ticket occupied when a vehicle still holds it.
func (s *DefaultParkingService) promoteIfHeld(ctx context.Context, code string) (bool, error) {
	promoted := false
	err := s.Tx.RunInTransaction(ctx, func(ctx context.Context) error {
		promoted = false
		ticket, err := s.Repos.Tickets.GetByCode(ctx, code)
		if errors.Is(err, database.ErrNotFound) {
			s.Logger.Warn("Vehicle references unknown ticket", zap.String("ticket", code))
			return nil
		}
		if err != nil {
			return fmt.Errorf("load ticket %s: %w", code, err)
		}
		if ticket.Status != models.TicketAvailable {
			return nil
		}
		car, err := s.carForTicket(ctx, code)
		if err != nil || car == nil {
			return err
		}
		if err := s.heal(ctx, ticket, car); err != nil {
			return err
		}
		promoted = true
		return nil
	})
	return promoted, err
}

// releaseIfEmpty frees an in-use ticket that no vehicle holds.
func (s *DefaultParkingService) releaseIfEmpty(ctx context.Context, code string) (bool, error) {
	released := false
	err := s.Tx.RunInTransaction(ctx, func(ctx context.Context) error {
		released = false
		ticket, err := s.Repos.Tickets.GetByCode(ctx, code)
		if errors.Is(err, database.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load ticket %s: %w", code, err)
		}
		if ticket.Status == models.TicketAvailable {
			return nil
		}
		car, err := s.carForTicket(ctx, code)
		if err != nil || car != nil {
			return err
		}

		s.Logger.Warn("Ticket in use without a vehicle, releasing",
			zap.String("ticket", ticket.Code),
			zap.String("status", string(ticket.Status)))
		ticket.Release(s.now())
		if err := s.Repos.Tickets.Update(ctx, ticket); err != nil {
			return fmt.Errorf("release ticket %s: %w", code, err)
		}
		released = true
		return nil
	})
	return released, err
}

// EnsureInventory creates tickets prefix001..prefixNNN that do not exist yet
// and returns how many were added.
func (s *DefaultParkingService) EnsureInventory(ctx context.Context, prefix string, count int) (int64, error) {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		return 0, domain.Invalid("prefix", "is required")
	}
	if count <= 0 {
		return 0, domain.Invalid("count", "must be positive")
	}
	codes := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		codes = append(codes, fmt.Sprintf("%s%03d", prefix, i))
	}
	added, err := s.Repos.Tickets.UpsertInventory(ctx, codes)
	if err != nil {
		return 0, fmt.Errorf("create tickets: %w", err)
	}
	if added > 0 {
		s.notify(ctx, "tickets", "insert", "")
	}
	return added, nil
}
