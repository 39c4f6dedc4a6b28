package receipt

import (
	"bytes"
	"testing"
	"time"

	"github.com/Nirajxs/Hospital-management-system/internal/app/ds"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paidAppointment() *ds.Appointment {
	method := ds.PaymentUPI
	return &ds.Appointment{
		ID:            12,
		Date:          time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC),
		Time:          "10:30",
		PatientName:   "Alice",
		ContactNumber: "5551234567",
		Status:        ds.StatusPending,
		PaymentStatus: ds.PaymentSuccess,
		PaymentMethod: &method,
		Doctor:        ds.User{Username: "drbob", FirstName: "Bob"},
	}
}

func TestRenderPaid(t *testing.T) {
	out, err := Render("City Clinic", paidAppointment(), time.Now())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestRenderEncodesAccentedNames(t *testing.T) {
	a := paidAppointment()
	a.PatientName = "José Núñez"

	out, err := render("Clínica Central", a, time.Now(), false)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Jos\xe9 N\xfa\xf1ez")
	assert.Contains(t, string(out), "Cl\xednica Central")
	assert.NotContains(t, string(out), "José")
}

func TestRenderUnpaid(t *testing.T) {
	a := paidAppointment()
	a.PaymentStatus = ds.PaymentPending

	_, err := Render("City Clinic", a, time.Now())
	assert.ErrorIs(t, err, ErrNotPaid)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "receipt-12.pdf", FileName(paidAppointment()))
}
