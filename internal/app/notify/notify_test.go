package notify

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-gomail/gomail"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() AppointmentBooked {
	return AppointmentBooked{
		AppointmentID: 3,
		DoctorName:    "Bob Stone",
		DoctorEmail:   "drbob@example.com",
		PatientName:   "Alice",
		ContactNumber: "5551234567",
		Date:          time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC),
		Time:          "10:30",
	}
}

func TestMessageBody(t *testing.T) {
	subject, body := sampleEvent().Message()
	assert.Equal(t, "New Appointment Booked", subject)
	assert.Equal(t, "Dear Dr. Bob Stone,\n\n"+
		"You have a new appointment.\n\n"+
		"Patient Name: Alice\n"+
		"Contact Number: 5551234567\n"+
		"Date: 2026-11-02\n"+
		"Time: 10:30\n"+
		"Symptoms: Not provided\n\n"+
		"Please login to your dashboard for details.", body)
}

func TestDispatcherDeliversAndDrainsOnClose(t *testing.T) {
	logger, _ := test.NewNullLogger()
	var mu sync.Mutex
	var got []uint
	h := HandlerFunc(func(_ context.Context, ev AppointmentBooked) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, ev.AppointmentID)
		return nil
	})

	d := NewDispatcher(DispatcherConfig{Buffer: 8, Workers: 1}, logger, h)
	for i := uint(1); i <= 3; i++ {
		ev := sampleEvent()
		ev.AppointmentID = i
		require.True(t, d.Publish(ev))
	}
	require.NoError(t, d.Close(context.Background()))

	assert.Equal(t, []uint{1, 2, 3}, got)
	assert.False(t, d.Publish(sampleEvent()))
}

func TestPublishDropsWhenFull(t *testing.T) {
	logger, hook := test.NewNullLogger()
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	h := HandlerFunc(func(context.Context, AppointmentBooked) error {
		started <- struct{}{}
		<-release
		return nil
	})

	d := NewDispatcher(DispatcherConfig{Buffer: 1, Workers: 1}, logger, h)
	require.True(t, d.Publish(sampleEvent()))
	<-started
	require.True(t, d.Publish(sampleEvent()))
	assert.False(t, d.Publish(sampleEvent()))
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	close(release)
	require.NoError(t, d.Close(context.Background()))
}

func TestHandlerErrorIsLogged(t *testing.T) {
	logger, hook := test.NewNullLogger()
	h := HandlerFunc(func(context.Context, AppointmentBooked) error {
		return errors.New("smtp down")
	})

	d := NewDispatcher(DispatcherConfig{}, logger, h)
	d.Publish(sampleEvent())
	require.NoError(t, d.Close(context.Background()))

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

type fakeSender struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	f.sent = append(f.sent, m...)
	return f.err
}

func TestEmailNotifier(t *testing.T) {
	sender := &fakeSender{}
	n := NewEmailNotifierWithSender(sender, "clinic@example.com")

	require.NoError(t, n.Handle(context.Background(), sampleEvent()))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"drbob@example.com"}, sender.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"New Appointment Booked"}, sender.sent[0].GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := sender.sent[0].WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Patient Name: Alice")
}

func TestEmailNotifierSkipsMissingAddress(t *testing.T) {
	sender := &fakeSender{}
	ev := sampleEvent()
	ev.DoctorEmail = ""

	require.NoError(t, NewEmailNotifierWithSender(sender, "clinic@example.com").Handle(context.Background(), ev))
	assert.Empty(t, sender.sent)
}

type stuckSender struct {
	release chan struct{}
}

func (s stuckSender) DialAndSend(...*gomail.Message) error {
	<-s.release
	return nil
}

func TestEmailNotifierGivesUpWhenContextEnds(t *testing.T) {
	sender := stuckSender{release: make(chan struct{})}
	defer close(sender.release)
	n := NewEmailNotifierWithSender(sender, "clinic@example.com")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := n.Handle(ctx, sampleEvent())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestEmailNotifierWrapsSendError(t *testing.T) {
	boom := errors.New("refused")
	n := NewEmailNotifierWithSender(&fakeSender{err: boom}, "clinic@example.com")

	assert.ErrorIs(t, n.Handle(context.Background(), sampleEvent()), boom)
}
