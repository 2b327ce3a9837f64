package receipt

import (
	"bytes"
	"errors"
	"fmt"

	"parkinglot/models"

	"github.com/phpdave11/gofpdf"
)

// ErrOpenVisit is returned for a visit that has not exited yet.
var ErrOpenVisit = errors.New("visit has not finished")

// Render builds the one-page exit receipt for a finalized visit.
func Render(entry *models.HistoryEntry, company *models.CompanySettings) ([]byte, error) {
	if entry == nil || !entry.Finalized() {
		return nil, ErrOpenVisit
	}

	pdf := gofpdf.New("P", "mm", "A5", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Parking receipt "+entry.TicketCode, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "PARKING RECEIPT")
	pdf.Ln(12)

	line := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.Cell(38, 6, tr(label))
		pdf.SetFont("Helvetica", "", 10)
		pdf.Cell(0, 6, tr(safe(value)))
		pdf.Ln(6)
	}

	line("Receipt", entry.ID)
	line("Ticket", entry.TicketCode)
	line("Plate", entry.Car.Plate)
	line("Vehicle", joinNonEmpty(entry.Car.Make, entry.Car.Model, entry.Car.Color))
	line("Owner", entry.Car.OwnerName)
	pdf.Ln(3)

	line("Entered", entry.EnteredAt.UTC().Format("2006-01-02 15:04 UTC"))
	line("Exited", entry.ExitedAt.UTC().Format("2006-01-02 15:04 UTC"))
	line("Duration", formatDuration(entry.DurationMinutes))
	pdf.Ln(3)

	if p := entry.Payment; p != nil {
		line("Payment ref.", p.Reference)
		line("Bank", p.Bank)
		line("Paid", fmt.Sprintf("%.2f", p.Amount))
		line("Validated", p.ValidatedAt.UTC().Format("2006-01-02 15:04 UTC"))
		pdf.Ln(3)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Total: %.2f  (local %.2f)", entry.TotalAmount, entry.TotalAmountLocal))
	pdf.Ln(10)

	if company != nil && company.Payment.BankTransfer.AccountHolder != "" {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, tr(fmt.Sprintf("%s - %s", company.Payment.BankTransfer.AccountHolder, company.Payment.BankTransfer.NationalID)), "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}

func safe(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func joinNonEmpty(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += p
	}
	return out
}

func formatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	return fmt.Sprintf("%d h %02d min", minutes/60, minutes%60)
}
