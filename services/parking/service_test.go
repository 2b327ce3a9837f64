package parking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"parkinglot/database"
	"parkinglot/database/repository"
	memoryRepo "parkinglot/database/repository/memory"
	"parkinglot/models"
	"parkinglot/services/domain"
	"parkinglot/services/events"
	"parkinglot/services/recognition"
	"parkinglot/services/settings"

	"go.uber.org/zap"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingPublisher struct {
	mu      sync.Mutex
	changes []events.Change
}

func (p *recordingPublisher) Publish(ctx context.Context, c events.Change) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, c)
	return nil
}

type fakeImages struct {
	uploaded []string
	deleted  []string
	err      error
}

func (f *fakeImages) Upload(ctx context.Context, data []byte, folder, name string) (models.ImageRef, error) {
	if f.err != nil {
		return models.ImageRef{}, f.err
	}
	f.uploaded = append(f.uploaded, name)
	return models.ImageRef{URL: "https://img.test/" + folder + "/" + name, PublicID: folder + "/" + name}, nil
}

func (f *fakeImages) Delete(ctx context.Context, publicID string) error {
	f.deleted = append(f.deleted, publicID)
	return nil
}

type fixedRecognizer struct {
	plate   recognition.PlateReading
	vehicle recognition.VehicleReading
}

func (f fixedRecognizer) RecognizePlate(context.Context, []byte, string) (recognition.PlateReading, error) {
	return f.plate, nil
}

func (f fixedRecognizer) RecognizeVehicle(context.Context, []byte, string) (recognition.VehicleReading, error) {
	return f.vehicle, nil
}

type fixture struct {
	svc    *DefaultParkingService
	store  *memoryRepo.Store
	repos  *repository.Repos
	clock  *testClock
	images *fakeImages
	pub    *recordingPublisher
}

// newFixture starts at 10:00 UTC so the default day rate of 1/hour applies.
func newFixture(t *testing.T, tickets int) *fixture {
	t.Helper()
	store := memoryRepo.NewStore()
	repos := store.Repos()
	clock := &testClock{now: time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)}
	settingsSvc := settings.NewSettingsService(repos.Settings, zap.NewNop())
	settingsSvc.Now = clock.Now

	f := &fixture{
		store:  store,
		repos:  repos,
		clock:  clock,
		images: &fakeImages{},
		pub:    &recordingPublisher{},
	}
	f.svc = &DefaultParkingService{
		Repos:       repos,
		Tx:          store,
		Settings:    settingsSvc,
		Images:      f.images,
		Recognizer:  fixedRecognizer{},
		Publisher:   f.pub,
		Logger:      zap.NewNop(),
		ImageFolder: "parking/test",
		Now:         clock.Now,
	}
	if tickets > 0 {
		if _, err := f.svc.EnsureInventory(context.Background(), "PARK", tickets); err != nil {
			t.Fatalf("EnsureInventory: %v", err)
		}
	}
	return f
}

func (f *fixture) ticket(t *testing.T, code string) *models.Ticket {
	t.Helper()
	ticket, err := f.repos.Tickets.GetByCode(context.Background(), code)
	if err != nil {
		t.Fatalf("GetByCode(%s): %v", code, err)
	}
	return ticket
}

func (f *fixture) register(t *testing.T, code, plate string) *models.Car {
	t.Helper()
	car, err := f.svc.RegisterVehicle(context.Background(), models.CarInput{Plate: plate, TicketCode: code, Make: "Toyota"}, VehicleImages{})
	if err != nil {
		t.Fatalf("RegisterVehicle(%s): %v", code, err)
	}
	return car
}

// park takes a ticket to parked_confirmed.
func (f *fixture) park(t *testing.T, code, plate string) *models.Car {
	t.Helper()
	car := f.register(t, code, plate)
	if _, err := f.svc.ConfirmParking(context.Background(), code); err != nil {
		t.Fatalf("ConfirmParking(%s): %v", code, err)
	}
	return car
}

func (f *fixture) pay(t *testing.T, code string, exit string) *models.Payment {
	t.Helper()
	p, err := f.svc.SubmitPayment(context.Background(), models.PaymentInput{
		TicketCode: code,
		Reference:  "REF-" + code,
		Bank:       "Banesco",
		Phone:      "04141234567",
		NationalID: "V12345678",
		Amount:     1,
		ExitOption: exit,
	})
	if err != nil {
		t.Fatalf("SubmitPayment(%s): %v", code, err)
	}
	return p
}

func expectConflict(t *testing.T, err error, state string) {
	t.Helper()
	conflict, ok := domain.AsConflict(err)
	if !ok {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if conflict.CurrentState != state {
		t.Fatalf("CurrentState = %q, want %q", conflict.CurrentState, state)
	}
}

func TestFullVisit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 3)

	car := f.register(t, "PARK001", "abc123")
	if car.Plate != "ABC123" {
		t.Fatalf("plate = %q, want ABC123", car.Plate)
	}
	if got := f.ticket(t, "PARK001"); got.Status != models.TicketOccupied || got.Car == nil || got.OccupiedAt == nil {
		t.Fatalf("after register ticket = %+v", got)
	}

	f.clock.Advance(30 * time.Minute)
	if _, err := f.svc.ConfirmParking(ctx, "park001"); err != nil {
		t.Fatalf("ConfirmParking: %v", err)
	}
	if got := f.ticket(t, "PARK001").Status; got != models.TicketParkedConfirmed {
		t.Fatalf("after confirm status = %s", got)
	}

	f.clock.Advance(60 * time.Minute)
	details, err := f.svc.GetTicketDetails(ctx, "PARK001")
	if err != nil {
		t.Fatalf("GetTicketDetails: %v", err)
	}
	if details.AmountDue != 1.5 || details.AmountDueLocal != 54.75 || details.ElapsedMinutes != 90 {
		t.Fatalf("details = %+v", details)
	}

	payment, err := f.svc.SubmitPayment(ctx, models.PaymentInput{
		TicketCode: "PARK001",
		Reference:  "000123",
		Bank:       "Banesco",
		Phone:      "04141234567",
		NationalID: "V12345678",
		Amount:     details.AmountDue,
		ExitOption: models.Exit15Min,
	})
	if err != nil {
		t.Fatalf("SubmitPayment: %v", err)
	}
	if payment.Status != models.PaymentPendingValidation || payment.AmountDue != 1.5 {
		t.Fatalf("payment = %+v", payment)
	}
	if payment.RequestedExitAt == nil || !payment.RequestedExitAt.Equal(f.clock.Now().Add(15*time.Minute)) {
		t.Fatalf("RequestedExitAt = %v", payment.RequestedExitAt)
	}
	if got := f.ticket(t, "PARK001"); got.Status != models.TicketPaymentPending || got.LastPaymentID != payment.ID {
		t.Fatalf("after submit ticket = %+v", got)
	}

	if _, err := f.svc.ValidatePayment(ctx, payment.ID); err != nil {
		t.Fatalf("ValidatePayment: %v", err)
	}
	if got := f.ticket(t, "PARK001").Status; got != models.TicketPaidValidated {
		t.Fatalf("after validate status = %s", got)
	}
	live, err := f.repos.Cars.GetByTicketCode(ctx, "PARK001")
	if err != nil || live.Status != models.CarPaidValidated {
		t.Fatalf("car after validate = %+v, %v", live, err)
	}

	f.clock.Advance(10 * time.Minute)
	entry, err := f.svc.ProcessExit(ctx, "PARK001")
	if err != nil {
		t.Fatalf("ProcessExit: %v", err)
	}

	ticket := f.ticket(t, "PARK001")
	if ticket.Status != models.TicketAvailable || ticket.OccupiedAt != nil || ticket.AmountDue != 0 ||
		ticket.AmountDueLocal != 0 || ticket.LastPaymentID != "" || ticket.Car != nil {
		t.Fatalf("after exit ticket = %+v", ticket)
	}
	if _, err := f.repos.Cars.GetByTicketCode(ctx, "PARK001"); !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("car still present after exit: %v", err)
	}

	entries, err := f.repos.History.List(ctx, repository.HistoryFilter{TicketCode: "PARK001"})
	if err != nil {
		t.Fatalf("List history: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != entry.ID || !entries[0].Finalized() {
		t.Fatalf("history = %+v", entries)
	}
	want := []models.HistoryEventType{models.EventRegistered, models.EventConfirmed, models.EventPaymentValidated, models.EventExited}
	if len(entries[0].Events) != len(want) {
		t.Fatalf("events = %+v", entries[0].Events)
	}
	for i, ev := range entries[0].Events {
		if ev.Type != want[i] {
			t.Errorf("event %d = %s, want %s", i, ev.Type, want[i])
		}
	}
	if entries[0].DurationMinutes != 100 || entries[0].TotalAmount != 1.5 || entries[0].Payment == nil {
		t.Fatalf("finalized entry = %+v", entries[0])
	}
	if len(f.pub.changes) == 0 {
		t.Fatal("expected change notifications")
	}
}

func TestRejectThenResubmit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	f.park(t, "PARK001", "XYZ987")

	first := f.pay(t, "PARK001", "")
	rejected, err := f.svc.RejectPayment(ctx, first.ID, "reference not found")
	if err != nil {
		t.Fatalf("RejectPayment: %v", err)
	}
	if rejected.Status != models.PaymentRejected || rejected.RejectReason != "reference not found" {
		t.Fatalf("rejected = %+v", rejected)
	}

	ticket := f.ticket(t, "PARK001")
	if ticket.Status != models.TicketPaymentRejected || ticket.LastPaymentID != "" || !ticket.Status.Payable() {
		t.Fatalf("after reject ticket = %+v", ticket)
	}
	car, _ := f.repos.Cars.GetByTicketCode(ctx, "PARK001")
	if car.Status == models.CarPaidValidated {
		t.Fatal("car marked paid after rejection")
	}
	entry, _ := f.repos.History.GetByID(ctx, car.HistoryID)
	if entry.Payment != nil {
		t.Fatal("history carries a payment after rejection")
	}

	second := f.pay(t, "PARK001", "")
	if second.ID == first.ID {
		t.Fatal("resubmission reused the payment id")
	}
	old, _ := f.repos.Payments.GetByID(ctx, first.ID)
	if old.Status != models.PaymentRejected {
		t.Fatalf("old payment status = %s", old.Status)
	}
	if got := f.ticket(t, "PARK001"); got.LastPaymentID != second.ID {
		t.Fatalf("LastPaymentID = %q, want %q", got.LastPaymentID, second.ID)
	}
}

func TestRegisterRejectsTicketInUse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	f.register(t, "PARK001", "AAA111")

	_, err := f.svc.RegisterVehicle(ctx, models.CarInput{Plate: "BBB222", TicketCode: "PARK001"}, VehicleImages{})
	expectConflict(t, err, string(models.TicketOccupied))

	cars, _ := f.repos.Cars.ListAll(ctx)
	history, _ := f.repos.History.List(ctx, repository.HistoryFilter{})
	if len(cars) != 1 || len(history) != 1 {
		t.Fatalf("writes after conflict: %d cars, %d history entries", len(cars), len(history))
	}
}

func TestRegisterRejectsDriftedTicket(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	f.register(t, "PARK001", "AAA111")

	drifted := f.ticket(t, "PARK001")
	drifted.Release(f.clock.Now())
	if err := f.repos.Tickets.Update(ctx, drifted); err != nil {
		t.Fatal(err)
	}

	images := VehicleImages{Plate: &models.ImageUpload{Data: []byte{1}, ContentType: "image/jpeg"}}
	_, err := f.svc.RegisterVehicle(ctx, models.CarInput{Plate: "BBB222", TicketCode: "PARK001"}, images)
	expectConflict(t, err, string(models.TicketAvailable))

	history, _ := f.repos.History.List(ctx, repository.HistoryFilter{})
	if len(history) != 1 {
		t.Fatalf("history entries = %d, want 1", len(history))
	}
	if len(f.images.deleted) != 1 {
		t.Fatalf("uploaded image not discarded: %+v", f.images)
	}
}

func TestRegisterRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	f.store.FailOn("tickets.update", errors.New("write conflict"))

	_, err := f.svc.RegisterVehicle(ctx, models.CarInput{Plate: "AAA111", TicketCode: "PARK001"}, VehicleImages{})
	if err == nil {
		t.Fatal("expected error")
	}
	f.store.FailOn("tickets.update", nil)

	cars, _ := f.repos.Cars.ListAll(ctx)
	history, _ := f.repos.History.List(ctx, repository.HistoryFilter{})
	if len(cars) != 0 || len(history) != 0 {
		t.Fatalf("partial writes survived: %d cars, %d history", len(cars), len(history))
	}
	if got := f.ticket(t, "PARK001").Status; got != models.TicketAvailable {
		t.Fatalf("status = %s", got)
	}
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	if _, err := f.svc.RegisterVehicle(ctx, models.CarInput{Plate: "AAA111"}, VehicleImages{}); !domain.IsValidation(err) {
		t.Fatalf("missing ticket: %v", err)
	}
	if _, err := f.svc.RegisterVehicle(ctx, models.CarInput{TicketCode: "PARK001"}, VehicleImages{}); !domain.IsValidation(err) {
		t.Fatalf("missing plate: %v", err)
	}
	if _, err := f.svc.RegisterVehicle(ctx, models.CarInput{Plate: "AAA111", TicketCode: "PARK404"}, VehicleImages{}); !domain.IsNotFound(err) {
		t.Fatalf("unknown ticket: %v", err)
	}
}

func TestRegisterFillsBlankFieldsFromImages(t *testing.T) {
	f := newFixture(t, 1)
	f.svc.Recognizer = fixedRecognizer{
		plate:   recognition.PlateReading{Text: "abc-123", Confidence: 0.91},
		vehicle: recognition.VehicleReading{Make: "Ford", Model: "Fiesta", Color: "Red", Confidence: 0.8},
	}
	images := VehicleImages{
		Plate:   &models.ImageUpload{Data: []byte{1, 2}, ContentType: "image/jpeg"},
		Vehicle: &models.ImageUpload{Data: []byte{3, 4}, ContentType: "image/png"},
	}

	car, err := f.svc.RegisterVehicle(context.Background(), models.CarInput{TicketCode: "PARK001", Color: "Blue"}, images)
	if err != nil {
		t.Fatalf("RegisterVehicle: %v", err)
	}
	if car.Plate != "ABC123" || car.Make != "Ford" || car.Model != "Fiesta" || car.Color != "Blue" {
		t.Fatalf("car = %+v", car)
	}
	if c := car.Captures["plate"]; c.Method != models.CaptureRecognized || c.Confidence != 0.91 {
		t.Fatalf("plate capture = %+v", c)
	}
	if c := car.Captures["color"]; c.Method != models.CaptureManual {
		t.Fatalf("color capture = %+v", c)
	}
	if car.Images.Plate == nil || car.Images.Vehicle == nil {
		t.Fatalf("images = %+v", car.Images)
	}
}

func TestUpdateVehicle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	car := f.register(t, "PARK001", "AAA111")

	updated, err := f.svc.UpdateVehicle(ctx, car.ID, models.CarInput{Color: "Green", OwnerName: "Ana"}, VehicleImages{})
	if err != nil {
		t.Fatalf("UpdateVehicle: %v", err)
	}
	if updated.Color != "Green" || updated.Plate != "AAA111" || updated.Make != "Toyota" {
		t.Fatalf("updated = %+v", updated)
	}
	if snap := f.ticket(t, "PARK001").Car; snap == nil || snap.OwnerName != "Ana" {
		t.Fatalf("ticket snapshot = %+v", snap)
	}

	if _, err := f.svc.UpdateVehicle(ctx, car.ID, models.CarInput{TicketCode: "PARK002"}, VehicleImages{}); !domain.IsValidation(err) {
		t.Fatalf("moving ticket: %v", err)
	}
	if _, err := f.svc.UpdateVehicle(ctx, "missing", models.CarInput{}, VehicleImages{}); !domain.IsNotFound(err) {
		t.Fatalf("unknown vehicle: %v", err)
	}
}

func TestConfirmRequiresOccupied(t *testing.T) {
	f := newFixture(t, 1)
	_, err := f.svc.ConfirmParking(context.Background(), "PARK001")
	expectConflict(t, err, string(models.TicketAvailable))
}

func TestSubmitPaymentRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)
	f.register(t, "PARK001", "AAA111")

	input := models.PaymentInput{TicketCode: "PARK001", Reference: "1", Bank: "B", Phone: "P", NationalID: "N", Amount: 1}
	_, err := f.svc.SubmitPayment(ctx, input)
	expectConflict(t, err, string(models.TicketOccupied))

	bad := input
	bad.Reference = " "
	if _, err := f.svc.SubmitPayment(ctx, bad); !domain.IsValidation(err) {
		t.Fatalf("blank reference: %v", err)
	}
	bad = input
	bad.ExitOption = "tomorrow"
	if _, err := f.svc.SubmitPayment(ctx, bad); !domain.IsValidation(err) {
		t.Fatalf("exit option: %v", err)
	}
	bad = input
	bad.Amount = -3
	if _, err := f.svc.SubmitPayment(ctx, bad); !domain.IsValidation(err) {
		t.Fatalf("negative amount: %v", err)
	}

	f.park(t, "PARK002", "BBB222")
	f.pay(t, "PARK002", "")
	input.TicketCode = "PARK002"
	_, err = f.svc.SubmitPayment(ctx, input)
	expectConflict(t, err, string(models.TicketPaymentPending))
}

func TestReviewTwiceIsConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	f.park(t, "PARK001", "AAA111")
	p := f.pay(t, "PARK001", "")

	if _, err := f.svc.ValidatePayment(ctx, p.ID); err != nil {
		t.Fatalf("ValidatePayment: %v", err)
	}
	_, err := f.svc.RejectPayment(ctx, p.ID, "late")
	expectConflict(t, err, string(models.PaymentValidated))

	if _, err := f.svc.ValidatePayment(ctx, "nope"); !domain.IsNotFound(err) {
		t.Fatalf("unknown payment: %v", err)
	}
}

func TestExitRequiresValidatedPayment(t *testing.T) {
	f := newFixture(t, 1)
	f.park(t, "PARK001", "AAA111")
	_, err := f.svc.ProcessExit(context.Background(), "PARK001")
	expectConflict(t, err, string(models.TicketParkedConfirmed))
}

func TestTicketDetailsSelfHeals(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	car := f.register(t, "PARK001", "AAA111")

	drifted := f.ticket(t, "PARK001")
	drifted.Release(f.clock.Now())
	if err := f.repos.Tickets.Update(ctx, drifted); err != nil {
		t.Fatal(err)
	}

	f.clock.Advance(2 * time.Hour)
	details, err := f.svc.GetTicketDetails(ctx, "PARK001")
	if err != nil {
		t.Fatalf("GetTicketDetails: %v", err)
	}
	if details.Ticket.Status != models.TicketOccupied || details.AmountDue != 2 {
		t.Fatalf("details = %+v", details)
	}
	healed := f.ticket(t, "PARK001")
	if healed.Status != models.TicketOccupied || healed.OccupiedAt == nil || !healed.OccupiedAt.Equal(car.EnteredAt) {
		t.Fatalf("healed ticket = %+v", healed)
	}
}

func TestTicketDetailsUnusedTicket(t *testing.T) {
	f := newFixture(t, 1)
	_, err := f.svc.GetTicketDetails(context.Background(), "PARK001")
	expectConflict(t, err, string(models.TicketAvailable))
}

func TestAvailableTicketsHaveNoOccupancy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 4)
	f.park(t, "PARK001", "AAA111")
	p := f.pay(t, "PARK001", "")
	if _, err := f.svc.ValidatePayment(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.ProcessExit(ctx, "PARK001"); err != nil {
		t.Fatal(err)
	}
	f.register(t, "PARK002", "BBB222")

	available, err := f.svc.ListAvailableTickets(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(available) != 3 {
		t.Fatalf("available = %d, want 3", len(available))
	}
	for _, tk := range available {
		if tk.OccupiedAt != nil || tk.AmountDue != 0 || tk.AmountDueLocal != 0 || tk.LastPaymentID != "" || tk.Car != nil {
			t.Errorf("available ticket %s carries occupancy: %+v", tk.Code, tk)
		}
	}
}

func TestPendingReviewOrdering(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 4)
	for _, code := range []string{"PARK001", "PARK002", "PARK003", "PARK004"} {
		f.park(t, code, "CAR"+code[4:])
	}

	f.pay(t, "PARK001", "")
	f.clock.Advance(time.Minute)
	f.pay(t, "PARK002", models.Exit60Min)
	f.clock.Advance(time.Minute)
	f.pay(t, "PARK003", "")
	f.clock.Advance(time.Minute)
	f.pay(t, "PARK004", models.ExitNow)

	// The vehicle record is gone; details must come from the ticket snapshot.
	car, _ := f.repos.Cars.GetByTicketCode(ctx, "PARK003")
	if err := f.repos.Cars.Delete(ctx, car.ID); err != nil {
		t.Fatal(err)
	}

	review, err := f.svc.ListPendingReview(ctx)
	if err != nil {
		t.Fatalf("ListPendingReview: %v", err)
	}
	var order []string
	for _, item := range review.Payments {
		order = append(order, item.Payment.TicketCode)
		if item.Car == nil || item.Ticket == nil {
			t.Errorf("%s missing joins: %+v", item.Payment.TicketCode, item)
		}
	}
	want := []string{"PARK004", "PARK002", "PARK003", "PARK001"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
	if len(review.Unconfirmed) != 0 {
		t.Fatalf("unconfirmed = %+v", review.Unconfirmed)
	}
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 3)
	f.register(t, "PARK001", "AAA111")
	f.register(t, "PARK002", "BBB222")

	drifted := f.ticket(t, "PARK001")
	drifted.Release(f.clock.Now())
	_ = f.repos.Tickets.Update(ctx, drifted)
	orphan, _ := f.repos.Cars.GetByTicketCode(ctx, "PARK002")
	_ = f.repos.Cars.Delete(ctx, orphan.ID)

	report, err := f.svc.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(report.Promoted) != 1 || report.Promoted[0] != "PARK001" {
		t.Fatalf("promoted = %v", report.Promoted)
	}
	if len(report.Released) != 1 || report.Released[0] != "PARK002" {
		t.Fatalf("released = %v", report.Released)
	}
	if f.ticket(t, "PARK001").Status != models.TicketOccupied || f.ticket(t, "PARK002").Status != models.TicketAvailable {
		t.Fatal("tickets not corrected")
	}

	again, _ := f.svc.Reconcile(ctx)
	if len(again.Promoted)+len(again.Released) != 0 {
		t.Fatalf("second pass not idempotent: %+v", again)
	}
}

// interleavedTickets runs before once, just ahead of listing in-use tickets.
type interleavedTickets struct {
	repository.TicketRepository
	before func()
}

func (r *interleavedTickets) ListNotAvailable(ctx context.Context) ([]models.Ticket, error) {
	if r.before != nil {
		before := r.before
		r.before = nil
		before()
	}
	return r.TicketRepository.ListNotAvailable(ctx)
}

// interleavedCars runs after once, right after listing vehicles.
type interleavedCars struct {
	repository.CarRepository
	after func()
}

func (r *interleavedCars) ListAll(ctx context.Context) ([]models.Car, error) {
	cars, err := r.CarRepository.ListAll(ctx)
	if r.after != nil {
		after := r.after
		r.after = nil
		after()
	}
	return cars, err
}

func TestReconcileKeepsTicketsTakenMidRun(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 3)
	repos := *f.repos
	repos.Tickets = &interleavedTickets{TicketRepository: f.repos.Tickets, before: func() {
		f.register(t, "PARK001", "ABC123")
		f.park(t, "PARK002", "XYZ789")
		p := f.pay(t, "PARK002", "now")
		if _, err := f.svc.ValidatePayment(ctx, p.ID); err != nil {
			t.Fatalf("ValidatePayment: %v", err)
		}
	}}
	f.svc.Repos = &repos

	report, err := f.svc.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(report.Released)+len(report.Promoted) != 0 {
		t.Fatalf("report = %+v", report)
	}
	if got := f.ticket(t, "PARK001").Status; got != models.TicketOccupied {
		t.Fatalf("PARK001 = %s, want occupied", got)
	}
	if got := f.ticket(t, "PARK002").Status; got != models.TicketPaidValidated {
		t.Fatalf("PARK002 = %s, want paid_validated", got)
	}
}

func TestReconcileSkipsVehiclesGoneMidRun(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	car := f.register(t, "PARK001", "AAA111")
	drifted := f.ticket(t, "PARK001")
	drifted.Release(f.clock.Now())
	if err := f.repos.Tickets.Update(ctx, drifted); err != nil {
		t.Fatal(err)
	}

	repos := *f.repos
	repos.Cars = &interleavedCars{CarRepository: f.repos.Cars, after: func() {
		if err := f.repos.Cars.Delete(ctx, car.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
	}}
	f.svc.Repos = &repos

	report, err := f.svc.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(report.Promoted) != 0 {
		t.Fatalf("promoted = %v", report.Promoted)
	}
	if got := f.ticket(t, "PARK001").Status; got != models.TicketAvailable {
		t.Fatalf("PARK001 = %s, want available", got)
	}
}

func TestTicketDetailsAcrossNightEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	f.clock.Advance(12 * time.Hour) // 22:00
	f.park(t, "PARK001", "AAA111")

	f.clock.Advance(7*time.Hour + 59*time.Minute) // 05:59
	before, err := f.svc.GetTicketDetails(ctx, "PARK001")
	if err != nil {
		t.Fatalf("GetTicketDetails: %v", err)
	}
	f.clock.Advance(2 * time.Minute) // 06:01
	after, err := f.svc.GetTicketDetails(ctx, "PARK001")
	if err != nil {
		t.Fatalf("GetTicketDetails: %v", err)
	}
	if before.AmountDue != 10.38 || after.AmountDue != 10.42 {
		t.Fatalf("amounts = %v then %v, want 10.38 then 10.42", before.AmountDue, after.AmountDue)
	}
	if before.HourlyRate != 1.3 || after.HourlyRate != 1 {
		t.Fatalf("rates = %v then %v", before.HourlyRate, after.HourlyRate)
	}
}

func TestEnsureInventory(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	added, err := f.svc.EnsureInventory(ctx, "lot", 12)
	if err != nil || added != 12 {
		t.Fatalf("added = %d, %v", added, err)
	}
	added, _ = f.svc.EnsureInventory(ctx, "LOT", 15)
	if added != 3 {
		t.Fatalf("second run added %d, want 3", added)
	}
	f.ticket(t, "LOT015")
	if _, err := f.svc.EnsureInventory(ctx, "LOT", 0); !domain.IsValidation(err) {
		t.Fatalf("zero count: %v", err)
	}
}
