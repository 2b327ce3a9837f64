package parking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"parkinglot/database"
	"parkinglot/models"
	"parkinglot/services/domain"
	"parkinglot/services/recognition"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RegisterVehicle parks a vehicle on an available ticket.
func (s *DefaultParkingService) RegisterVehicle(ctx context.Context, input models.CarInput, images VehicleImages) (*models.Car, error) {
	input = trimCarInput(input)
	if input.TicketCode == "" {
		return nil, domain.Invalid("ticketCode", "ticket code is required")
	}
	now := s.now()
	captures := s.recognize(ctx, &input, images, now)
	if input.Plate == "" {
		return nil, domain.Invalid("plate", "plate is required")
	}

	// Fail fast before uploading anything.
	ticket, err := s.loadTicket(ctx, input.TicketCode)
	if err != nil {
		return nil, err
	}
	if ticket.Status != models.TicketAvailable {
		return nil, ticketConflict(ticket, "ticket is not available")
	}

	uploaded, err := s.uploadImages(ctx, input.TicketCode, images, now)
	if err != nil {
		return nil, err
	}

	car := &models.Car{
		ID:         uuid.New().String(),
		Plate:      input.Plate,
		Make:       input.Make,
		Model:      input.Model,
		Color:      input.Color,
		OwnerName:  input.OwnerName,
		OwnerPhone: input.OwnerPhone,
		TicketCode: input.TicketCode,
		EnteredAt:  now,
		Status:     models.CarParked,
		Images:     uploaded,
		Captures:   captures,
		HistoryID:  uuid.New().String(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = s.Tx.RunInTransaction(ctx, func(ctx context.Context) error {
		ticket, err := s.loadTicket(ctx, input.TicketCode)
		if err != nil {
			return err
		}
		if ticket.Status != models.TicketAvailable {
			return ticketConflict(ticket, "ticket is not available")
		}
		existing, err := s.carForTicket(ctx, ticket.Code)
		if err != nil {
			return err
		}
		if existing != nil {
			return ticketConflict(ticket, "ticket is already in use by vehicle "+existing.Plate)
		}

		entry := &models.HistoryEntry{
			ID:         car.HistoryID,
			TicketCode: ticket.Code,
			Car:        *car,
			Events:     []models.HistoryEvent{{Type: models.EventRegistered, At: now, Detail: car.Plate}},
			EnteredAt:  now,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if _, err := s.Repos.History.Create(ctx, entry); err != nil {
			return err
		}
		if err := s.Repos.Cars.Create(ctx, car); err != nil {
			return err
		}

		ticket.Status = models.TicketOccupied
		ticket.OccupiedAt = &now
		ticket.Car = car.Snapshot()
		ticket.UpdatedAt = now
		return s.Repos.Tickets.Update(ctx, ticket)
	})
	if err != nil {
		s.discardImages(ctx, uploaded)
		return nil, err
	}

	s.Logger.Info("Vehicle registered",
		zap.String("ticket", car.TicketCode),
		zap.String("plate", car.Plate),
		zap.String("carId", car.ID))
	s.notify(ctx, "cars", "insert", car.ID)
	return car, nil
}

// UpdateVehicle edits a live vehicle record. Blank fields keep their current value
// and the ticket cannot be changed.
func (s *DefaultParkingService) UpdateVehicle(ctx context.Context, id string, input models.CarInput, images VehicleImages) (*models.Car, error) {
	input = trimCarInput(input)
	existing, err := s.Repos.Cars.GetByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, domain.NotFound("vehicle", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load vehicle %s: %w", id, err)
	}
	if input.TicketCode != "" && input.TicketCode != existing.TicketCode {
		return nil, domain.Invalid("ticketCode", "a vehicle cannot be moved to another ticket")
	}

	now := s.now()
	captures := s.recognize(ctx, &input, images, now)
	uploaded, err := s.uploadImages(ctx, existing.TicketCode, images, now)
	if err != nil {
		return nil, err
	}

	var (
		car      *models.Car
		replaced []*models.ImageRef
	)
	err = s.Tx.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.Repos.Cars.GetByID(ctx, id)
		if errors.Is(err, database.ErrNotFound) {
			return domain.NotFound("vehicle", id)
		}
		if err != nil {
			return err
		}
		applyCarInput(current, input)
		for field, c := range captures {
			if current.Captures == nil {
				current.Captures = map[string]models.CaptureInfo{}
			}
			current.Captures[field] = c
		}
		replaced = nil
		if uploaded.Plate != nil {
			replaced = append(replaced, current.Images.Plate)
			current.Images.Plate = uploaded.Plate
		}
		if uploaded.Vehicle != nil {
			replaced = append(replaced, current.Images.Vehicle)
			current.Images.Vehicle = uploaded.Vehicle
		}
		current.UpdatedAt = now
		if err := s.Repos.Cars.Update(ctx, current); err != nil {
			return err
		}

		ticket, err := s.loadTicket(ctx, current.TicketCode)
		if err != nil {
			return err
		}
		if ticket.Status != models.TicketAvailable {
			ticket.Car = current.Snapshot()
			ticket.UpdatedAt = now
			if err := s.Repos.Tickets.Update(ctx, ticket); err != nil {
				return err
			}
		}
		car = current
		return nil
	})
	if err != nil {
		s.discardImages(ctx, uploaded)
		return nil, err
	}

	for _, ref := range replaced {
		if ref != nil {
			s.deleteImage(ctx, ref.PublicID)
		}
	}
	s.notify(ctx, "cars", "update", car.ID)
	return car, nil
}

// recognize fills blank fields from the supplied images and records how each was captured.
func (s *DefaultParkingService) recognize(ctx context.Context, input *models.CarInput, images VehicleImages, now time.Time) map[string]models.CaptureInfo {
	captures := map[string]models.CaptureInfo{}
	manual := func(field, value string) {
		if value != "" {
			captures[field] = models.CaptureInfo{Method: models.CaptureManual, Confidence: 1, CapturedAt: now}
		}
	}

	if input.Plate == "" && images.Plate != nil && s.Recognizer != nil {
		reading, err := s.Recognizer.RecognizePlate(ctx, images.Plate.Data, images.Plate.ContentType)
		if err != nil {
			s.Logger.Warn("Plate recognition failed", zap.Error(err))
		} else if reading.Text != "" {
			input.Plate = recognition.NormalizePlate(reading.Text)
			captures["plate"] = models.CaptureInfo{Method: models.CaptureRecognized, Confidence: reading.Confidence, CapturedAt: now}
		}
	} else {
		manual("plate", input.Plate)
	}

	blank := input.Make == "" || input.Model == "" || input.Color == ""
	if blank && images.Vehicle != nil && s.Recognizer != nil {
		reading, err := s.Recognizer.RecognizeVehicle(ctx, images.Vehicle.Data, images.Vehicle.ContentType)
		if err != nil {
			s.Logger.Warn("Vehicle recognition failed", zap.Error(err))
		} else {
			fill := func(field string, dst *string, v string) {
				if *dst == "" && v != "" {
					*dst = v
					captures[field] = models.CaptureInfo{Method: models.CaptureRecognized, Confidence: reading.Confidence, CapturedAt: now}
				}
			}
			fill("make", &input.Make, reading.Make)
			fill("model", &input.Model, reading.Model)
			fill("color", &input.Color, reading.Color)
		}
	}
	for field, v := range map[string]string{"make": input.Make, "model": input.Model, "color": input.Color} {
		if _, ok := captures[field]; !ok {
			manual(field, v)
		}
	}
	return captures
}

func (s *DefaultParkingService) uploadImages(ctx context.Context, ticketCode string, images VehicleImages, now time.Time) (models.CarImages, error) {
	var out models.CarImages
	if s.Images == nil {
		return out, nil
	}
	stamp := now.Format("20060102T150405")
	if images.Plate != nil {
		ref, err := s.Images.Upload(ctx, images.Plate.Data, s.ImageFolder, fmt.Sprintf("%s_plate_%s", ticketCode, stamp))
		if err != nil {
			return out, fmt.Errorf("upload plate image: %w", err)
		}
		out.Plate = &ref
	}
	if images.Vehicle != nil {
		ref, err := s.Images.Upload(ctx, images.Vehicle.Data, s.ImageFolder, fmt.Sprintf("%s_vehicle_%s", ticketCode, stamp))
		if err != nil {
			s.discardImages(ctx, out)
			return models.CarImages{}, fmt.Errorf("upload vehicle image: %w", err)
		}
		out.Vehicle = &ref
	}
	return out, nil
}

func (s *DefaultParkingService) discardImages(ctx context.Context, images models.CarImages) {
	if images.Plate != nil {
		s.deleteImage(ctx, images.Plate.PublicID)
	}
	if images.Vehicle != nil {
		s.deleteImage(ctx, images.Vehicle.PublicID)
	}
}

func (s *DefaultParkingService) deleteImage(ctx context.Context, publicID string) {
	if s.Images == nil || publicID == "" {
		return
	}
	if err := s.Images.Delete(ctx, publicID); err != nil {
		s.Logger.Warn("Failed to delete image", zap.String("publicId", publicID), zap.Error(err))
	}
}

func trimCarInput(in models.CarInput) models.CarInput {
	return models.CarInput{
		Plate:      recognition.NormalizePlate(in.Plate),
		Make:       strings.TrimSpace(in.Make),
		Model:      strings.TrimSpace(in.Model),
		Color:      strings.TrimSpace(in.Color),
		OwnerName:  strings.TrimSpace(in.OwnerName),
		OwnerPhone: strings.TrimSpace(in.OwnerPhone),
		TicketCode: strings.ToUpper(strings.TrimSpace(in.TicketCode)),
	}
}

func applyCarInput(car *models.Car, in models.CarInput) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&car.Plate, in.Plate)
	set(&car.Make, in.Make)
	set(&car.Model, in.Model)
	set(&car.Color, in.Color)
	set(&car.OwnerName, in.OwnerName)
	set(&car.OwnerPhone, in.OwnerPhone)
}
