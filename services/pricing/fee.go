package pricing

import (
	"fmt"
	"math"
	"regexp"
	"time"

	"parkinglot/models"
)

// clockPattern is a 24-hour HH:mm time of day.
var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// ValidClock reports whether s is a valid HH:mm string.
func ValidClock(s string) bool {
	return clockPattern.MatchString(s)
}

// Round2 rounds to two decimals, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Fee is the amount owed for a stay.
type Fee struct {
	Amount         float64 `json:"amount"`
	AmountLocal    float64 `json:"amountLocal"`
	HourlyRate     float64 `json:"hourlyRate"`
	ExchangeRate   float64 `json:"exchangeRate"`
	ElapsedMinutes int     `json:"elapsedMinutes"`
}

// Quote prices a stay by charging the minutes spent inside the night window
// at the night rate and the rest at the day rate. The minimum charge is half
// the rate in force at entry, so the amount never decreases as time passes.
// HourlyRate is the rate currently in force.
func Quote(enteredAt, now time.Time, tariffs models.Tariffs) Fee {
	day, night := Split(enteredAt, now, tariffs)
	amount := day.Hours()*tariffs.DayRate + night.Hours()*tariffs.NightRate
	amount = Round2(math.Max(amount, RateAt(enteredAt, tariffs)/2))
	return Fee{
		Amount:         amount,
		AmountLocal:    Round2(amount * tariffs.ExchangeRate),
		HourlyRate:     RateAt(now, tariffs),
		ExchangeRate:   tariffs.ExchangeRate,
		ElapsedMinutes: int((day + night).Minutes()),
	}
}

// Split divides [enteredAt, now) into time outside and inside the night window.
// A clock that runs backwards yields zero for both. A malformed or empty
// window puts everything in day.
func Split(enteredAt, now time.Time, tariffs models.Tariffs) (day, night time.Duration) {
	if !now.After(enteredAt) {
		return 0, 0
	}
	start, err := minuteOfDay(tariffs.NightStart)
	if err != nil {
		return now.Sub(enteredAt), 0
	}
	end, err := minuteOfDay(tariffs.NightEnd)
	if err != nil || start == end {
		return now.Sub(enteredAt), 0
	}

	for t := enteredAt; t.Before(now); {
		next := nextBoundary(t, start, end)
		if next.After(now) {
			next = now
		}
		if inWindow(t.Hour()*60+t.Minute(), start, end) {
			night += next.Sub(t)
		} else {
			day += next.Sub(t)
		}
		t = next
	}
	return day, night
}

// nextBoundary is the first window edge strictly after t.
func nextBoundary(t time.Time, start, end int) time.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	var next time.Time
	for _, day := range []int{0, 1} {
		for _, m := range []int{start, end} {
			edge := midnight.AddDate(0, 0, day).Add(time.Duration(m) * time.Minute)
			if edge.After(t) && (next.IsZero() || edge.Before(next)) {
				next = edge
			}
		}
	}
	return next
}

// RateAt picks the night rate when t falls in [NightStart, NightEnd), else the day rate.
// The window may wrap midnight. Malformed window strings fall back to the day rate.
func RateAt(t time.Time, tariffs models.Tariffs) float64 {
	start, err := minuteOfDay(tariffs.NightStart)
	if err != nil {
		return tariffs.DayRate
	}
	end, err := minuteOfDay(tariffs.NightEnd)
	if err != nil {
		return tariffs.DayRate
	}
	if inWindow(t.Hour()*60+t.Minute(), start, end) {
		return tariffs.NightRate
	}
	return tariffs.DayRate
}

func inWindow(m, start, end int) bool {
	switch {
	case start == end:
		return false
	case start < end:
		return m >= start && m < end
	default:
		return m >= start || m < end
	}
}

func minuteOfDay(clock string) (int, error) {
	if !ValidClock(clock) {
		return 0, fmt.Errorf("invalid time of day %q", clock)
	}
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
