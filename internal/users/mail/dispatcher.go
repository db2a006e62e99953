package mail

import (
	"context"
	"log/slog"
	"time"
)

const sendTimeout = 30 * time.Second

// Dispatcher hands messages to a background worker so callers return
// before delivery happens. Delivery failures are logged, never surfaced.
type Dispatcher struct {
	mailer Mailer
	logger *slog.Logger

	queue  chan Message
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewDispatcher creates a dispatcher with the given queue depth.
// If buffer is 0 or negative, defaults to 64.
func NewDispatcher(mailer Mailer, buffer int, logger *slog.Logger) *Dispatcher {
	if buffer <= 0 {
		buffer = 64
	}

	return &Dispatcher{
		mailer: mailer,
		logger: logger,
		queue:  make(chan Message, buffer),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start begins the background delivery worker. Non-blocking.
func (d *Dispatcher) Start() {
	go d.run()
	d.logger.Info("mail dispatcher started", "queue_depth", cap(d.queue))
}

// Stop drains nothing: the worker finishes its in-flight send and exits.
// Queued but undelivered messages are dropped (delivery is best-effort).
func (d *Dispatcher) Stop() {
	close(d.stopCh)
	<-d.doneCh
	d.logger.Info("mail dispatcher stopped")
}

// Enqueue hands a message to the worker without blocking. When the queue
// is full the message is dropped with a warning; the invitation itself has
// already committed and the invitee can be re-sent the key out of band.
func (d *Dispatcher) Enqueue(msg Message) {
	select {
	case d.queue <- msg:
	default:
		d.logger.Warn("mail queue full, dropping message", "to", msg.To)
	}
}

func (d *Dispatcher) run() {
	defer close(d.doneCh)

	for {
		select {
		case msg := <-d.queue:
			d.deliver(msg)
		case <-d.stopCh:
			return
		}
	}
}

func (d *Dispatcher) deliver(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := d.mailer.Send(ctx, msg); err != nil {
		d.logger.Error("mail delivery failed", "to", msg.To, "err", err)
		return
	}

	d.logger.Debug("mail delivered", "to", msg.To)
}
