package notify

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Handler consumes booking events. Errors are logged, never returned to the booker.
type Handler interface {
	Handle(ctx context.Context, ev AppointmentBooked) error
}

type HandlerFunc func(ctx context.Context, ev AppointmentBooked) error

func (f HandlerFunc) Handle(ctx context.Context, ev AppointmentBooked) error {
	return f(ctx, ev)
}

type DispatcherConfig struct {
	Buffer  int
	Workers int
	Timeout time.Duration
}

// Dispatcher fans events out to handlers from a buffered queue.
type Dispatcher struct {
	events   chan AppointmentBooked
	handlers []Handler
	timeout  time.Duration
	log      *logrus.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(cfg DispatcherConfig, log *logrus.Logger, handlers ...Handler) *Dispatcher {
	if cfg.Buffer <= 0 {
		cfg.Buffer = 64
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	d := &Dispatcher{
		events:   make(chan AppointmentBooked, cfg.Buffer),
		handlers: handlers,
		timeout:  cfg.Timeout,
		log:      log,
	}
	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
	return d
}

// Publish queues ev without blocking. It reports false when the event was dropped
// because the queue is full or the dispatcher is closed.
func (d *Dispatcher) Publish(ev AppointmentBooked) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.log.WithField("appointment_id", ev.AppointmentID).Warn("notify: dispatcher closed, event dropped")
		return false
	}
	select {
	case d.events <- ev:
		return true
	default:
		d.log.WithField("appointment_id", ev.AppointmentID).Warn("notify: queue full, event dropped")
		return false
	}
}

// Close stops accepting events and waits until the queue is drained or ctx ends.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.events)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for ev := range d.events {
		for _, h := range d.handlers {
			d.handle(h, ev)
		}
	}
}

func (d *Dispatcher) handle(h Handler, ev AppointmentBooked) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			d.log.WithField("appointment_id", ev.AppointmentID).Errorf("notify: handler panic: %v", r)
		}
	}()

	if err := h.Handle(ctx, ev); err != nil {
		d.log.WithError(err).WithField("appointment_id", ev.AppointmentID).Error("notify: handler failed")
	}
}
