package notify

import (
	"context"
	"fmt"

	"github.com/go-gomail/gomail"
	"github.com/sirupsen/logrus"
)

// MailSender is satisfied by *gomail.Dialer.
type MailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailNotifier mails the assigned doctor about a new booking.
type EmailNotifier struct {
	sender MailSender
	from   string
}

func NewEmailNotifier(host string, port int, username, password, from string) *EmailNotifier {
	return NewEmailNotifierWithSender(gomail.NewDialer(host, port, username, password), from)
}

func NewEmailNotifierWithSender(sender MailSender, from string) *EmailNotifier {
	return &EmailNotifier{sender: sender, from: from}
}

func (n *EmailNotifier) Handle(ctx context.Context, ev AppointmentBooked) error {
	if ev.DoctorEmail == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	subject, body := ev.Message()
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", ev.DoctorEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	// gomail takes no context; ctx bounds the wait, not the send itself.
	done := make(chan error, 1)
	go func() { done <- n.sender.DialAndSend(m) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send booking mail for appointment %d: %w", ev.AppointmentID, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send booking mail for appointment %d: %w", ev.AppointmentID, ctx.Err())
	}
}

// LogNotifier records bookings when no SMTP server is configured.
type LogNotifier struct {
	Log *logrus.Logger
}

func (n LogNotifier) Handle(_ context.Context, ev AppointmentBooked) error {
	subject, _ := ev.Message()
	n.Log.WithFields(logrus.Fields{
		"appointment_id": ev.AppointmentID,
		"doctor_email":   ev.DoctorEmail,
		"date":           ev.Date.Format("2006-01-02"),
		"time":           ev.Time,
	}).Info(subject)
	return nil
}
