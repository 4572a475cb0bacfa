// Package notifier announces confirmed bookings to operator channels. It is
// best effort: announcements are queued without blocking the booking, and a
// failing channel only produces a log line.
package notifier

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"slot-bot/logger"
	"slot-bot/types"
)

const defaultSendTimeout = 10 * time.Second

// Announcement is one queued booking notice.
type Announcement struct {
	ID string
	types.BookingConfirmed
}

// Channel delivers an announcement to one kind of operator destination.
type Channel interface {
	Name() string
	Send(ctx context.Context, a Announcement) error
}

type Recorder interface {
	ObserveNotification(channel, status string)
	ObserveNotificationDropped()
}

type nopRecorder struct{}

func (nopRecorder) ObserveNotification(string, string) {}
func (nopRecorder) ObserveNotificationDropped()        {}

type Notifier struct {
	channels    []Channel
	queue       chan Announcement
	workers     int
	sendTimeout time.Duration
	recorder    Recorder
	log         *zap.Logger

	wg      sync.WaitGroup
	mu      sync.RWMutex
	started bool
	closed  bool
}

func New(channels []Channel, workers, queueSize int, recorder Recorder, log *zap.Logger) *Notifier {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 128
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Notifier{
		channels:    channels,
		queue:       make(chan Announcement, queueSize),
		workers:     workers,
		sendTimeout: defaultSendTimeout,
		recorder:    recorder,
		log:         logger.OrNop(log),
	}
}

// WithSendTimeout bounds each channel send.
func (n *Notifier) WithSendTimeout(d time.Duration) *Notifier {
	if d > 0 {
		n.sendTimeout = d
	}
	return n
}

// Start launches the worker pool. Queued announcements are still delivered
// after ctx is cancelled, until Stop returns.
func (n *Notifier) Start(ctx context.Context) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.started {
		return
	}
	n.started = true

	runCtx := context.WithoutCancel(ctx)
	for i := 0; i < n.workers; i++ {
		n.wg.Add(1)
		go n.worker(runCtx)
	}
	n.log.Info("notifier started", zap.Int("workers", n.workers), zap.Int("channels", len(n.channels)))
}

func (n *Notifier) worker(ctx context.Context) {
	defer n.wg.Done()
	for a := range n.queue {
		n.deliver(ctx, a)
	}
}

// Announce queues evt and returns immediately. A full queue drops it.
func (n *Notifier) Announce(evt types.BookingConfirmed) {
	if len(n.channels) == 0 {
		return
	}
	a := Announcement{ID: uuid.NewString(), BookingConfirmed: evt}

	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		n.log.Warn("notifier stopped, announcement dropped", zap.Int64("appointment_id", evt.AppointmentID))
		n.recorder.ObserveNotificationDropped()
		return
	}
	select {
	case n.queue <- a:
	default:
		n.log.Warn("notification queue full, announcement dropped",
			zap.String("announcement_id", a.ID),
			zap.Int64("appointment_id", evt.AppointmentID),
		)
		n.recorder.ObserveNotificationDropped()
	}
}

// deliver sends to every channel concurrently; one channel's failure or
// slowness does not affect the others.
func (n *Notifier) deliver(ctx context.Context, a Announcement) {
	var wg sync.WaitGroup
	for _, ch := range n.channels {
		wg.Add(1)
		go func(ch Channel) {
			defer wg.Done()
			sendCtx, cancel := context.WithTimeout(ctx, n.sendTimeout)
			defer cancel()

			if err := ch.Send(sendCtx, a); err != nil {
				n.recorder.ObserveNotification(ch.Name(), "failed")
				n.log.Warn("notification failed",
					zap.String("channel", ch.Name()),
					zap.String("announcement_id", a.ID),
					zap.Int64("appointment_id", a.AppointmentID),
					zap.Error(err),
				)
				return
			}
			n.recorder.ObserveNotification(ch.Name(), "sent")
			n.log.Debug("notification sent",
				zap.String("channel", ch.Name()),
				zap.String("announcement_id", a.ID),
			)
		}(ch)
	}
	wg.Wait()
}

// Stop stops accepting announcements and waits until queued ones are delivered.
func (n *Notifier) Stop() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	close(n.queue)
	started := n.started
	n.mu.Unlock()

	if started {
		n.wg.Wait()
	}
	n.log.Info("notifier stopped")
}
