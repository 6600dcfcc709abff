// internal/app/system/notify/notify.go
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dalemusser/applyhub/internal/app/system/mailer"
)

// Sender delivers a rendered email. *mailer.Mailer satisfies this; tests
// substitute a capture stub.
type Sender interface {
	Send(ctx context.Context, email mailer.Email) bool
}

// Job is a queued outbound notification.
type Job struct {
	ID    string
	Email mailer.Email
}

// Dispatcher is a background worker that drains a bounded queue of outbound
// emails. Enqueue never blocks request handlers: when the queue is full the
// job is dropped and logged. Each job is attempted at most once.
type Dispatcher struct {
	sender   Sender
	log      *zap.Logger
	jobs     chan Job
	timeout  time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewDispatcher creates a dispatcher with the given queue capacity.
// timeout bounds each individual send attempt.
func NewDispatcher(sender Sender, logger *zap.Logger, capacity int, timeout time.Duration) *Dispatcher {
	if capacity <= 0 {
		capacity = 64
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{
		sender:  sender,
		log:     logger,
		jobs:    make(chan Job, capacity),
		timeout: timeout,
		stopCh:  make(chan struct{}),
	}
}

// Start begins the background send loop.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go d.run()
	d.log.Info("notification dispatcher started",
		zap.Int("capacity", cap(d.jobs)),
		zap.Duration("send_timeout", d.timeout))
}

// Stop signals the worker to stop and waits for it to finish. Jobs already
// queued are drained before returning. Safe to call more than once.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.stopCh)
		d.wg.Wait()
		d.log.Info("notification dispatcher stopped")
	})
}

// Enqueue adds an email to the send queue without blocking. Returns the job
// ID, or "" if the dispatcher has stopped or the queue was full and the job
// dropped.
func (d *Dispatcher) Enqueue(email mailer.Email) string {
	select {
	case <-d.stopCh:
		d.log.Warn("dispatcher stopped, dropping email",
			zap.String("to", email.To),
			zap.String("subject", email.Subject))
		return ""
	default:
	}

	job := Job{ID: uuid.NewString(), Email: email}
	select {
	case d.jobs <- job:
		return job.ID
	default:
		d.log.Warn("notification queue full, dropping email",
			zap.String("to", email.To),
			zap.String("subject", email.Subject))
		return ""
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case job := <-d.jobs:
			d.send(job)
		case <-d.stopCh:
			// Drain what is already queued, then exit.
			for {
				select {
				case job := <-d.jobs:
					d.send(job)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) send(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if !d.sender.Send(ctx, job.Email) {
		// Delivery is best-effort; the sender already logged the cause.
		d.log.Warn("notification not delivered",
			zap.String("job_id", job.ID),
			zap.String("to", job.Email.To))
	}
}
