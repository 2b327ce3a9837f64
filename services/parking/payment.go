package parking

import (
	"context"
	"errors"
	"math"
	"strings"

	"parkinglot/database"
	"parkinglot/models"
	"parkinglot/services/domain"
	"parkinglot/services/pricing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SubmitPayment records a customer's transfer for a confirmed or previously rejected ticket.
func (s *DefaultParkingService) SubmitPayment(ctx context.Context, input models.PaymentInput) (*models.Payment, error) {
	if err := validatePaymentInput(&input); err != nil {
		return nil, err
	}
	tariffs, err := s.Settings.Tariffs(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()

	payment := &models.Payment{
		ID:         uuid.New().String(),
		TicketCode: input.TicketCode,
		Reference:  input.Reference,
		Bank:       input.Bank,
		Phone:      input.Phone,
		NationalID: input.NationalID,
		Amount:     pricing.Round2(input.Amount),
		PaidAt:     now,
		Status:     models.PaymentPendingValidation,
		ExitOption: input.ExitOption,
	}
	if input.ExitOption != "" {
		at := now.Add(models.ExitOptionDelays[input.ExitOption])
		payment.RequestedExitAt = &at
	}

	err = s.Tx.RunInTransaction(ctx, func(ctx context.Context) error {
		ticket, err := s.loadTicket(ctx, input.TicketCode)
		if err != nil {
			return err
		}
		if !ticket.Status.Payable() {
			return ticketConflict(ticket, "ticket is not awaiting payment")
		}
		pending, err := s.Repos.Payments.FindPendingByTicket(ctx, ticket.Code)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			return err
		}
		if pending != nil {
			return domain.Conflict("payment", pending.ID, string(pending.Status), "ticket already has a payment awaiting validation")
		}

		enteredAt := now
		if ticket.OccupiedAt != nil {
			enteredAt = *ticket.OccupiedAt
		}
		fee := pricing.Quote(enteredAt, now, tariffs)
		payment.AmountDue = fee.Amount
		payment.AmountDueLocal = fee.AmountLocal
		if err := s.Repos.Payments.Create(ctx, payment); err != nil {
			return err
		}

		ticket.Status = models.TicketPaymentPending
		ticket.LastPaymentID = payment.ID
		ticket.AmountDue = fee.Amount
		ticket.AmountDueLocal = fee.AmountLocal
		ticket.UpdatedAt = now
		return s.Repos.Tickets.Update(ctx, ticket)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("Payment submitted",
		zap.String("ticket", payment.TicketCode),
		zap.String("paymentId", payment.ID),
		zap.Float64("amount", payment.Amount),
		zap.Float64("amountDue", payment.AmountDue))
	s.notify(ctx, "payments", "insert", payment.ID)
	return payment, nil
}

// ValidatePayment accepts a pending payment and marks the ticket ready for exit.
func (s *DefaultParkingService) ValidatePayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	now := s.now()
	var validated *models.Payment
	err := s.Tx.RunInTransaction(ctx, func(ctx context.Context) error {
		payment, ticket, err := s.loadReview(ctx, paymentID)
		if err != nil {
			return err
		}

		car, err := s.carForTicket(ctx, ticket.Code)
		if err != nil {
			return err
		}
		if car != nil {
			car.Status = models.CarPaidValidated
			car.UpdatedAt = now
			if err := s.Repos.Cars.Update(ctx, car); err != nil {
				return err
			}
			event := models.HistoryEvent{Type: models.EventPaymentValidated, At: now, Detail: payment.Reference}
			err = s.appendHistory(ctx, car.HistoryID, event, func(h *models.HistoryEntry) {
				h.Payment = &models.PaymentSnapshot{
					PaymentID:   payment.ID,
					Reference:   payment.Reference,
					Bank:        payment.Bank,
					Amount:      payment.Amount,
					PaidAt:      payment.PaidAt,
					ValidatedAt: now,
				}
			})
			if err != nil {
				return err
			}
		}

		payment.Status = models.PaymentValidated
		payment.ReviewedAt = &now
		if err := s.Repos.Payments.Update(ctx, payment); err != nil {
			return err
		}
		ticket.Status = models.TicketPaidValidated
		ticket.UpdatedAt = now
		if err := s.Repos.Tickets.Update(ctx, ticket); err != nil {
			return err
		}
		validated = payment
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("Payment validated", zap.String("paymentId", paymentID), zap.String("ticket", validated.TicketCode))
	s.notify(ctx, "payments", "update", paymentID)
	return validated, nil
}

// RejectPayment declines a pending payment. The ticket becomes payable again.
func (s *DefaultParkingService) RejectPayment(ctx context.Context, paymentID, reason string) (*models.Payment, error) {
	reason = strings.TrimSpace(reason)
	now := s.now()
	var rejected *models.Payment
	err := s.Tx.RunInTransaction(ctx, func(ctx context.Context) error {
		payment, ticket, err := s.loadReview(ctx, paymentID)
		if err != nil {
			return err
		}

		payment.Status = models.PaymentRejected
		payment.ReviewedAt = &now
		payment.RejectReason = reason
		if err := s.Repos.Payments.Update(ctx, payment); err != nil {
			return err
		}

		ticket.Status = models.TicketPaymentRejected
		ticket.LastPaymentID = ""
		ticket.UpdatedAt = now
		if err := s.Repos.Tickets.Update(ctx, ticket); err != nil {
			return err
		}

		car, err := s.carForTicket(ctx, ticket.Code)
		if err != nil {
			return err
		}
		if car != nil {
			event := models.HistoryEvent{Type: models.EventPaymentRejected, At: now, Detail: reason}
			if err := s.appendHistory(ctx, car.HistoryID, event, nil); err != nil {
				return err
			}
		}
		rejected = payment
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("Payment rejected", zap.String("paymentId", paymentID), zap.String("reason", reason))
	s.notify(ctx, "payments", "update", paymentID)
	return rejected, nil
}

// loadReview returns a payment awaiting validation together with its ticket.
func (s *DefaultParkingService) loadReview(ctx context.Context, paymentID string) (*models.Payment, *models.Ticket, error) {
	payment, err := s.loadPayment(ctx, paymentID)
	if err != nil {
		return nil, nil, err
	}
	if payment.Status != models.PaymentPendingValidation {
		return nil, nil, domain.Conflict("payment", payment.ID, string(payment.Status), "payment was already reviewed")
	}
	ticket, err := s.loadTicket(ctx, payment.TicketCode)
	if err != nil {
		return nil, nil, err
	}
	if ticket.Status != models.TicketPaymentPending {
		return nil, nil, ticketConflict(ticket, "ticket is not awaiting payment validation")
	}
	return payment, ticket, nil
}

func validatePaymentInput(in *models.PaymentInput) error {
	in.TicketCode = normalizeCode(in.TicketCode)
	in.Reference = strings.TrimSpace(in.Reference)
	in.Bank = strings.TrimSpace(in.Bank)
	in.Phone = strings.TrimSpace(in.Phone)
	in.NationalID = strings.TrimSpace(in.NationalID)
	in.ExitOption = strings.TrimSpace(in.ExitOption)

	required := []struct{ field, value string }{
		{"ticketCode", in.TicketCode},
		{"reference", in.Reference},
		{"bank", in.Bank},
		{"phone", in.Phone},
		{"nationalId", in.NationalID},
	}
	for _, r := range required {
		if r.value == "" {
			return domain.Invalid(r.field, "is required")
		}
	}
	if math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) || in.Amount <= 0 {
		return domain.Invalid("amount", "must be a positive number")
	}
	if in.ExitOption != "" {
		if _, ok := models.ExitOptionDelays[in.ExitOption]; !ok {
			return domain.Invalid("exitOption", "must be one of now, 15min, 30min, 60min")
		}
	}
	return nil
}
