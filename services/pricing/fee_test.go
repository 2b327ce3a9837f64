package pricing

import (
	"testing"
	"time"

	"parkinglot/models"
)

var base = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

// flat has no night window, so every minute is charged at rate.
func flat(rate float64) models.Tariffs {
	return models.Tariffs{DayRate: rate, NightRate: rate * 3, ExchangeRate: 1, NightStart: "00:00", NightEnd: "00:00"}
}

var nightly = models.Tariffs{DayRate: 1, NightRate: 1.3, ExchangeRate: 36.5, NightStart: "20:00", NightEnd: "06:00"}

func TestQuoteMinimumIsHalfRate(t *testing.T) {
	cases := []time.Duration{0, time.Minute, 29 * time.Minute, 30 * time.Minute}
	for _, d := range cases {
		if got := Quote(base, base.Add(d), flat(2)).Amount; got != 1 {
			t.Errorf("elapsed %v: got %v, want 1", d, got)
		}
	}
}

func TestQuoteProportional(t *testing.T) {
	if got := Quote(base, base.Add(90*time.Minute), flat(2)).Amount; got != 3 {
		t.Fatalf("got %v, want 3", got)
	}
	if got := Quote(base, base.Add(100*time.Minute), flat(1.5)).Amount; got != 2.5 {
		t.Fatalf("got %v, want 2.5", got)
	}
}

func TestQuoteRoundsToCents(t *testing.T) {
	// 70 minutes at 1.00 is 1.1666...
	if got := Quote(base, base.Add(70*time.Minute), flat(1)).Amount; got != 1.17 {
		t.Fatalf("got %v, want 1.17", got)
	}
}

func TestQuoteNegativeElapsed(t *testing.T) {
	fee := Quote(base, base.Add(-time.Hour), flat(4))
	if fee.Amount != 2 || fee.ElapsedMinutes != 0 {
		t.Fatalf("unexpected quote: %+v", fee)
	}
}

func TestQuoteChargesEachWindowAtItsRate(t *testing.T) {
	cases := []struct {
		name         string
		from, to     time.Time
		want         float64
		dayM, nightM int
	}{
		// 19:00-21:00: one hour at 1.00, one at 1.30.
		{"into night", time.Date(2025, 3, 10, 19, 0, 0, 0, time.UTC), time.Date(2025, 3, 10, 21, 0, 0, 0, time.UTC), 2.3, 60, 60},
		// 22:00-05:59: 479 minutes at 1.30.
		{"before dawn", time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC), time.Date(2025, 3, 11, 5, 59, 0, 0, time.UTC), 10.38, 0, 479},
		// 22:00-06:01: 480 night minutes, then one day minute.
		{"after dawn", time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC), time.Date(2025, 3, 11, 6, 1, 0, 0, time.UTC), 10.42, 1, 480},
		// 12:00 to 12:00 next day: 14h day, 10h night.
		{"full day", time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC), time.Date(2025, 3, 11, 12, 0, 0, 0, time.UTC), 27, 840, 600},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			day, night := Split(tc.from, tc.to, nightly)
			if int(day.Minutes()) != tc.dayM || int(night.Minutes()) != tc.nightM {
				t.Fatalf("split = %v day, %v night", day, night)
			}
			if got := Quote(tc.from, tc.to, nightly).Amount; got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestQuoteNeverDecreases(t *testing.T) {
	entries := []time.Time{
		time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 10, 19, 45, 30, 0, time.UTC),
		time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 11, 5, 50, 0, 0, time.UTC),
	}
	for _, entered := range entries {
		prev := 0.0
		for m := 0; m <= 36*60; m++ {
			fee := Quote(entered, entered.Add(time.Duration(m)*time.Minute), nightly)
			if fee.Amount < prev {
				t.Fatalf("entered %s: fee decreased at %d minutes: %v -> %v", entered.Format("15:04"), m, prev, fee.Amount)
			}
			if fee.Amount < RateAt(entered, nightly)/2 {
				t.Fatalf("entered %s: fee below floor at %d minutes: %v", entered.Format("15:04"), m, fee.Amount)
			}
			prev = fee.Amount
		}
	}
}

func TestRateAtWrappingWindow(t *testing.T) {
	tariffs := models.Tariffs{DayRate: 1, NightRate: 1.3, NightStart: "20:00", NightEnd: "06:00"}
	cases := []struct {
		hour, min int
		want      float64
	}{
		{19, 59, 1},
		{20, 0, 1.3},
		{23, 30, 1.3},
		{0, 0, 1.3},
		{5, 59, 1.3},
		{6, 0, 1},
		{12, 0, 1},
	}
	for _, tc := range cases {
		at := time.Date(2025, 3, 10, tc.hour, tc.min, 0, 0, time.UTC)
		if got := RateAt(at, tariffs); got != tc.want {
			t.Errorf("%02d:%02d: got %v, want %v", tc.hour, tc.min, got, tc.want)
		}
	}
}

func TestRateAtSameDayWindow(t *testing.T) {
	tariffs := models.Tariffs{DayRate: 2, NightRate: 3, NightStart: "01:00", NightEnd: "05:00"}
	if got := RateAt(time.Date(2025, 1, 1, 3, 0, 0, 0, time.UTC), tariffs); got != 3 {
		t.Fatalf("got %v, want 3", got)
	}
	if got := RateAt(time.Date(2025, 1, 1, 5, 0, 0, 0, time.UTC), tariffs); got != 2 {
		t.Fatalf("got %v, want 2", got)
	}
}

func TestRateAtMalformedWindowUsesDayRate(t *testing.T) {
	tariffs := models.Tariffs{DayRate: 2, NightRate: 3, NightStart: "25:00", NightEnd: "05:00"}
	if got := RateAt(time.Date(2025, 1, 1, 3, 0, 0, 0, time.UTC), tariffs); got != 2 {
		t.Fatalf("got %v, want 2", got)
	}
}

func TestQuoteLocalAmount(t *testing.T) {
	fee := Quote(base, base.Add(2*time.Hour), nightly)
	if fee.Amount != 2 || fee.AmountLocal != 73 || fee.HourlyRate != 1 || fee.ElapsedMinutes != 120 {
		t.Fatalf("unexpected quote: %+v", fee)
	}
}

func TestValidClock(t *testing.T) {
	for _, s := range []string{"00:00", "09:30", "23:59", "20:00"} {
		if !ValidClock(s) {
			t.Errorf("%q should be valid", s)
		}
	}
	for _, s := range []string{"24:00", "9:30", "12:60", "", "12-30", "12:3"} {
		if ValidClock(s) {
			t.Errorf("%q should be invalid", s)
		}
	}
}
