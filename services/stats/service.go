package stats

import (
	"context"
	"fmt"
	"time"

	"parkinglot/database/repository"
	"parkinglot/models"
	"parkinglot/services/events"

	"go.uber.org/zap"
)

// StatsService computes dashboard counters and streams them as data changes.
type StatsService interface {
	Compute(ctx context.Context) (*models.DashboardStats, error)
	Stream(ctx context.Context) (<-chan models.DashboardStats, error)
}

type DefaultStatsService struct {
	Repos      *repository.Repos
	Subscriber events.Subscriber
	Logger     *zap.Logger
	Now        func() time.Time
	// Settle coalesces bursts of changes, e.g. the several writes of one transaction.
	Settle time.Duration
}

func NewStatsService(repos *repository.Repos, sub events.Subscriber, logger *zap.Logger) *DefaultStatsService {
	return &DefaultStatsService{
		Repos:      repos,
		Subscriber: sub,
		Logger:     logger,
		Now:        time.Now,
		Settle:     200 * time.Millisecond,
	}
}

// Compute counts everything from scratch.
func (s *DefaultStatsService) Compute(ctx context.Context) (*models.DashboardStats, error) {
	now := s.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	out := &models.DashboardStats{GeneratedAt: now}

	counts := []struct {
		name string
		dst  *int64
		fn   func() (int64, error)
	}{
		{"pending payments", &out.PendingPayments, func() (int64, error) {
			return s.Repos.Payments.CountByStatus(ctx, models.PaymentPendingValidation)
		}},
		{"pending confirmations", &out.PendingConfirmations, func() (int64, error) {
			return s.Repos.Tickets.CountByStatus(ctx, models.TicketOccupied)
		}},
		{"staff", &out.TotalStaff, func() (int64, error) {
			return s.Repos.Staff.Count(ctx)
		}},
		{"payments today", &out.PaymentsToday, func() (int64, error) {
			return s.Repos.Payments.CountSince(ctx, midnight)
		}},
		{"tickets", &out.TotalTickets, func() (int64, error) {
			return s.Repos.Tickets.Count(ctx)
		}},
		{"available tickets", &out.AvailableTickets, func() (int64, error) {
			return s.Repos.Tickets.CountByStatus(ctx, models.TicketAvailable)
		}},
		{"parked vehicles", &out.ParkedVehicles, func() (int64, error) {
			return s.Repos.Cars.CountByStatus(ctx, models.PresentCarStatuses...)
		}},
		{"ready for exit", &out.ReadyForExit, func() (int64, error) {
			return s.Repos.Tickets.CountByStatus(ctx, models.TicketPaidValidated)
		}},
	}
	for _, c := range counts {
		n, err := c.fn()
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", c.name, err)
		}
		*c.dst = n
	}
	return out, nil
}

// Stream emits the current stats, then fresh stats after every change,
// until ctx is done. The subscription is released when ctx ends.
func (s *DefaultStatsService) Stream(ctx context.Context) (<-chan models.DashboardStats, error) {
	first, err := s.Compute(ctx)
	if err != nil {
		return nil, err
	}
	changes, err := s.Subscriber.Subscribe(ctx)
	if err != nil {
		return nil, fmt.Errorf("subscribe to changes: %w", err)
	}

	out := make(chan models.DashboardStats, 1)
	out <- *first
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
			}
			if !s.settle(ctx, changes) {
				return
			}

			current, err := s.Compute(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.Logger.Error("Failed to recompute stats", zap.Error(err))
				continue
			}
			select {
			case out <- *current:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// settle drains changes arriving within the settle window. It reports false
// when the stream should stop.
func (s *DefaultStatsService) settle(ctx context.Context, changes <-chan events.Change) bool {
	if s.Settle <= 0 {
		return true
	}
	timer := time.NewTimer(s.Settle)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
			return true
		case _, ok := <-changes:
			if !ok {
				return false
			}
		}
	}
}
