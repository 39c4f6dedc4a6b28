// Package notify carries booking events to notifiers off the request path.
package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/Nirajxs/Hospital-management-system/internal/app/ds"
)

// AppointmentBooked is published once a booking is stored.
type AppointmentBooked struct {
	AppointmentID uint
	DoctorName    string
	DoctorEmail   string
	PatientName   string
	ContactNumber string
	Date          time.Time
	Time          string
	Symptoms      string
}

func NewAppointmentBooked(a *ds.Appointment, doctor *ds.User) AppointmentBooked {
	return AppointmentBooked{
		AppointmentID: a.ID,
		DoctorName:    doctor.FullName(),
		DoctorEmail:   doctor.Email,
		PatientName:   a.PatientName,
		ContactNumber: a.ContactNumber,
		Date:          a.Date,
		Time:          a.Time,
		Symptoms:      a.Symptoms,
	}
}

// Message is the subject and plain-text body sent to the doctor.
func (e AppointmentBooked) Message() (string, string) {
	symptoms := strings.TrimSpace(e.Symptoms)
	if symptoms == "" {
		symptoms = "Not provided"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Dear Dr. %s,\n\n", e.DoctorName)
	b.WriteString("You have a new appointment.\n\n")
	fmt.Fprintf(&b, "Patient Name: %s\n", e.PatientName)
	fmt.Fprintf(&b, "Contact Number: %s\n", e.ContactNumber)
	fmt.Fprintf(&b, "Date: %s\n", e.Date.Format("2006-01-02"))
	fmt.Fprintf(&b, "Time: %s\n", e.Time)
	fmt.Fprintf(&b, "Symptoms: %s\n\n", symptoms)
	b.WriteString("Please login to your dashboard for details.")
	return "New Appointment Booked", b.String()
}
