package settings

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"parkinglot/database"
	"parkinglot/database/repository"
	"parkinglot/models"
	"parkinglot/services/domain"
	"parkinglot/services/pricing"

	"go.uber.org/zap"
)

// Night window and multiplier applied when migrating a legacy single-rate tariff.
const (
	LegacyNightMultiplier = 1.3
	DefaultNightStart     = "20:00"
	DefaultNightEnd       = "06:00"
)

type SettingsService interface {
	Get(ctx context.Context) (*models.CompanySettings, error)
	Update(ctx context.Context, input models.SettingsInput) (*models.CompanySettings, error)
	Tariffs(ctx context.Context) (models.Tariffs, error)
}

type DefaultSettingsService struct {
	Repo   repository.SettingsRepository
	Logger *zap.Logger
	Now    func() time.Time
}

func NewSettingsService(repo repository.SettingsRepository, logger *zap.Logger) *DefaultSettingsService {
	return &DefaultSettingsService{Repo: repo, Logger: logger, Now: time.Now}
}

// Defaults is the configuration served before an admin saves settings.
func Defaults() models.CompanySettings {
	return models.CompanySettings{
		ID: models.CompanySettingsID,
		Payment: models.PaymentInfo{
			MobilePayment: models.MobilePayment{Bank: "Banco de Venezuela", Phone: "04140000000", NationalID: "J000000000"},
			BankTransfer: models.BankTransfer{
				Bank:          "Banco de Venezuela",
				AccountNumber: "01020000000000000000",
				AccountHolder: "Estacionamiento",
				NationalID:    "J000000000",
			},
		},
		Tariffs: models.Tariffs{
			DayRate:      1,
			NightRate:    1.3,
			ExchangeRate: 36.5,
			NightStart:   DefaultNightStart,
			NightEnd:     DefaultNightEnd,
		},
	}
}

// Get returns the stored settings, synthesizing defaults (not persisted) when none exist
// and migrating a legacy single-rate tariff in place.
func (s *DefaultSettingsService) Get(ctx context.Context) (*models.CompanySettings, error) {
	stored, err := s.Repo.Get(ctx)
	if errors.Is(err, database.ErrNotFound) {
		d := Defaults()
		return &d, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	if migrateLegacyTariff(&stored.Tariffs) {
		stored.UpdatedAt = s.Now().UTC()
		if err := s.Repo.Save(ctx, stored); err != nil {
			return nil, fmt.Errorf("persist migrated tariffs: %w", err)
		}
		s.Logger.Info("Migrated legacy tariff",
			zap.Float64("dayRate", stored.Tariffs.DayRate),
			zap.Float64("nightRate", stored.Tariffs.NightRate))
	}
	return stored, nil
}

// Tariffs is a convenience for fee calculation; it always reads fresh settings.
func (s *DefaultSettingsService) Tariffs(ctx context.Context) (models.Tariffs, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return models.Tariffs{}, err
	}
	return settings.Tariffs, nil
}

func migrateLegacyTariff(t *models.Tariffs) bool {
	if t.LegacyRate == nil || t.DayRate > 0 {
		return false
	}
	legacy := *t.LegacyRate
	t.DayRate = pricing.Round2(legacy)
	t.NightRate = pricing.Round2(legacy * LegacyNightMultiplier)
	t.NightStart = DefaultNightStart
	t.NightEnd = DefaultNightEnd
	t.LegacyRate = nil
	return true
}

// Update validates the whole input before writing anything.
func (s *DefaultSettingsService) Update(ctx context.Context, input models.SettingsInput) (*models.CompanySettings, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	next := *current

	if input.Payment != nil {
		next.Payment = *input.Payment
	}
	if input.Tariffs != nil {
		tariffs, err := validateTariffs(*input.Tariffs)
		if err != nil {
			return nil, err
		}
		next.Tariffs = tariffs
	}
	if input.Payment == nil && input.Tariffs == nil {
		return nil, domain.Invalid("settings", "nothing to update")
	}

	next.UpdatedAt = s.Now().UTC()
	if err := s.Repo.Save(ctx, &next); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}
	return &next, nil
}

func validateTariffs(in models.TariffInput) (models.Tariffs, error) {
	day, err := positiveNumber("dayRate", in.DayRate)
	if err != nil {
		return models.Tariffs{}, err
	}
	night, err := positiveNumber("nightRate", in.NightRate)
	if err != nil {
		return models.Tariffs{}, err
	}
	exchange, err := positiveNumber("exchangeRate", in.ExchangeRate)
	if err != nil {
		return models.Tariffs{}, err
	}
	start := strings.TrimSpace(in.NightStart)
	if !pricing.ValidClock(start) {
		return models.Tariffs{}, domain.Invalid("nightStart", "must be a 24-hour HH:mm time")
	}
	end := strings.TrimSpace(in.NightEnd)
	if !pricing.ValidClock(end) {
		return models.Tariffs{}, domain.Invalid("nightEnd", "must be a 24-hour HH:mm time")
	}
	return models.Tariffs{
		DayRate:      day,
		NightRate:    night,
		ExchangeRate: exchange,
		NightStart:   start,
		NightEnd:     end,
	}, nil
}

// positiveNumber accepts JSON numbers and numeric strings.
func positiveNumber(field string, v any) (float64, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, domain.Invalid(field, "must be numeric")
		}
		f = parsed
	case nil:
		return 0, domain.Invalid(field, "is required")
	default:
		return 0, domain.Invalid(field, "must be numeric")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, domain.Invalid(field, "must be numeric")
	}
	f = pricing.Round2(f)
	if f <= 0 {
		return 0, domain.Invalid(field, "must be greater than zero")
	}
	return f, nil
}
