// Package receipt renders payment receipts as PDF.
package receipt

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/Nirajxs/Hospital-management-system/internal/app/ds"

	"github.com/jung-kurt/gofpdf"
)

var ErrNotPaid = errors.New("appointment is not paid")

// Render builds the receipt for a paid appointment. The appointment must carry its
// Patient and Doctor.
func Render(clinic string, a *ds.Appointment, issued time.Time) ([]byte, error) {
	return render(clinic, a, issued, true)
}

func render(clinic string, a *ds.Appointment, issued time.Time, compress bool) ([]byte, error) {
	if a.PaymentStatus != ds.PaymentSuccess {
		return nil, ErrNotPaid
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()
	// core fonts are cp1252; names are translated from UTF-8 before they are drawn
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 70, 127)
	pdf.CellFormat(0, 10, tr(clinic), "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 10, "Payment Receipt", "1", 1, "C", false, 0, "")

	method := "-"
	if a.PaymentMethod != nil {
		method = a.PaymentMethod.Label()
	}
	patient := a.PatientName
	if patient == "" {
		patient = a.Patient.FullName()
	}

	row(pdf, tr, "Receipt No.", fmt.Sprintf("APT-%06d", a.ID))
	row(pdf, tr, "Issued", issued.Format("2006-01-02 15:04"))
	row(pdf, tr, "Patient", patient)
	row(pdf, tr, "Contact", a.ContactNumber)
	row(pdf, tr, "Doctor", "Dr. "+a.Doctor.FullName())
	row(pdf, tr, "Appointment", a.Date.Format("2006-01-02")+" "+a.Time)
	row(pdf, tr, "Status", a.Status.Label())
	row(pdf, tr, "Payment method", method)
	row(pdf, tr, "Payment status", string(a.PaymentStatus))

	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.MultiCell(0, 5, "Thank you for booking with us.", "", "L", false)
	pdf.SetY(pdf.GetY() + 12)
	pdf.CellFormat(0, 10, "This is a computer generated receipt", "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt %d: %w", a.ID, err)
	}
	return buf.Bytes(), nil
}

// FileName is the attachment name used for the download.
func FileName(a *ds.Appointment) string {
	return fmt.Sprintf("receipt-%d.pdf", a.ID)
}

func row(pdf *gofpdf.Fpdf, tr func(string) string, label, value string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(45, 9, label, "1", 0, "", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 9, tr(value), "1", 1, "", false, 0, "")
}
