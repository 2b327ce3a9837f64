package recognition

import (
	"context"
	"errors"
	"math/rand"
	"regexp"
	"testing"
)

var platePattern = regexp.MustCompile(`^[A-Z]{3}[0-9]{3}$`)

func TestSimulatedPlate(t *testing.T) {
	s := NewSimulated(rand.New(rand.NewSource(7)))
	for i := 0; i < 20; i++ {
		r, err := s.RecognizePlate(context.Background(), []byte{0xff, 0xd8}, "image/jpeg")
		if err != nil {
			t.Fatalf("RecognizePlate: %v", err)
		}
		if !platePattern.MatchString(r.Text) {
			t.Fatalf("unexpected plate %q", r.Text)
		}
		if r.Confidence < 0.7 || r.Confidence > 0.99 {
			t.Fatalf("confidence out of range: %v", r.Confidence)
		}
	}
}

func TestSimulatedVehicle(t *testing.T) {
	s := NewSimulated(rand.New(rand.NewSource(7)))
	r, err := s.RecognizeVehicle(context.Background(), []byte{1}, "image/png")
	if err != nil {
		t.Fatalf("RecognizeVehicle: %v", err)
	}
	if r.Make == "" || r.Model == "" || r.Color == "" {
		t.Fatalf("incomplete reading %+v", r)
	}
}

func TestSimulatedEmptyImage(t *testing.T) {
	s := NewSimulated(nil)
	if _, err := s.RecognizePlate(context.Background(), nil, ""); !errors.Is(err, ErrEmptyImage) {
		t.Fatalf("got %v, want ErrEmptyImage", err)
	}
	if _, err := s.RecognizeVehicle(context.Background(), nil, ""); !errors.Is(err, ErrEmptyImage) {
		t.Fatalf("got %v, want ErrEmptyImage", err)
	}
}

func TestNormalizePlate(t *testing.T) {
	cases := map[string]string{
		" abc-123 ": "ABC123",
		"ab 12 cd":  "AB12CD",
		"XYZ789":    "XYZ789",
	}
	for in, want := range cases {
		if got := NormalizePlate(in); got != want {
			t.Errorf("NormalizePlate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestImageFormat(t *testing.T) {
	cases := map[string]string{"image/jpeg": "jpeg", "image/PNG": "png", "": "jpeg", "jpg": "jpeg"}
	for in, want := range cases {
		if got := imageFormat(in); got != want {
			t.Errorf("imageFormat(%q) = %q, want %q", in, got, want)
		}
	}
}
