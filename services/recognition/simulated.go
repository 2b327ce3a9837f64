package recognition

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"
)

type vehicleModel struct {
	make, model string
}

var simulatedCatalog = []vehicleModel{
	{"Toyota", "Corolla"},
	{"Toyota", "Hilux"},
	{"Chevrolet", "Aveo"},
	{"Ford", "Fiesta"},
	{"Hyundai", "Accent"},
	{"Kia", "Rio"},
	{"Renault", "Logan"},
	{"Mitsubishi", "Lancer"},
}

var simulatedColors = []string{"Blanco", "Negro", "Gris", "Plata", "Rojo", "Azul"}

// Simulated returns random plausible readings. It stands in for a real
// recognition backend in development and tests.
type Simulated struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulated seeds from the clock when rng is nil.
func NewSimulated(rng *rand.Rand) *Simulated {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Simulated{rng: rng}
}

func (s *Simulated) confidence() float64 {
	// 0.70 .. 0.99
	return float64(70+s.rng.Intn(30)) / 100
}

func (s *Simulated) RecognizePlate(ctx context.Context, image []byte, mimeType string) (PlateReading, error) {
	if len(image) == 0 {
		return PlateReading{}, ErrEmptyImage
	}
	if err := ctx.Err(); err != nil {
		return PlateReading{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	for i := 0; i < 3; i++ {
		b.WriteByte(byte('A' + s.rng.Intn(26)))
	}
	for i := 0; i < 3; i++ {
		b.WriteByte(byte('0' + s.rng.Intn(10)))
	}
	return PlateReading{Text: b.String(), Confidence: s.confidence()}, nil
}

func (s *Simulated) RecognizeVehicle(ctx context.Context, image []byte, mimeType string) (VehicleReading, error) {
	if len(image) == 0 {
		return VehicleReading{}, ErrEmptyImage
	}
	if err := ctx.Err(); err != nil {
		return VehicleReading{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m := simulatedCatalog[s.rng.Intn(len(simulatedCatalog))]
	return VehicleReading{
		Make:       m.make,
		Model:      m.model,
		Color:      simulatedColors[s.rng.Intn(len(simulatedColors))],
		Confidence: s.confidence(),
	}, nil
}
