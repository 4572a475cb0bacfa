// Package dispatcher runs inbound events one at a time per conversation and
// concurrently across conversations.
package dispatcher

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"slot-bot/events"
	"slot-bot/logger"
)

var ErrStopped = errors.New("dispatcher: stopped")

// Handler processes one event. It must not block on other conversations.
type Handler interface {
	Handle(ctx context.Context, in events.Inbound)
}

type HandlerFunc func(ctx context.Context, in events.Inbound)

func (f HandlerFunc) Handle(ctx context.Context, in events.Inbound) { f(ctx, in) }

type Recorder interface {
	ObserveInbound(kind string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveInbound(string) {}

// Dispatcher shards conversations by chat id onto ordered queues. Every event
// of a chat lands on the same queue, so it is handled after all earlier events
// of that chat.
type Dispatcher struct {
	handler  Handler
	recorder Recorder
	log      *zap.Logger

	shards []chan events.Inbound
	wg     sync.WaitGroup

	mu      sync.RWMutex
	started bool
	stopped bool
}

func New(handler Handler, workers, queueSize int, recorder Recorder, log *zap.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 8
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	d := &Dispatcher{
		handler:  handler,
		recorder: recorder,
		log:      logger.OrNop(log),
		shards:   make([]chan events.Inbound, workers),
	}
	for i := range d.shards {
		d.shards[i] = make(chan events.Inbound, queueSize)
	}
	return d
}

// Start launches one worker per shard. Handlers run with a context that is
// not cancelled by ctx, so Stop can drain what was already accepted.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	d.started = true

	runCtx := context.WithoutCancel(ctx)
	for i, ch := range d.shards {
		d.wg.Add(1)
		go d.worker(runCtx, i, ch)
	}
	d.log.Info("dispatcher started", zap.Int("workers", len(d.shards)))
}

func (d *Dispatcher) worker(ctx context.Context, shard int, ch <-chan events.Inbound) {
	defer d.wg.Done()
	for in := range ch {
		d.handle(ctx, shard, in)
	}
}

func (d *Dispatcher) handle(ctx context.Context, shard int, in events.Inbound) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("handler panic",
				zap.Int("shard", shard),
				zap.Int64("chat_id", in.ChatID),
				zap.String("event", in.Event.Kind()),
				zap.Any("panic", r),
			)
		}
	}()
	d.handler.Handle(ctx, in)
}

// Submit queues in behind the earlier events of its chat. It blocks while the
// shard is full, until ctx is done.
func (d *Dispatcher) Submit(ctx context.Context, in events.Inbound) error {
	if in.Event == nil {
		in.Event = events.GenericError{}
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrStopped
	}

	d.recorder.ObserveInbound(in.Event.Kind())
	select {
	case d.shards[d.shardFor(in.ChatID)] <- in:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) shardFor(chatID int64) int {
	return int(uint64(chatID) % uint64(len(d.shards)))
}

// Stop rejects new events, drains the queues and waits for the workers.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	for _, ch := range d.shards {
		close(ch)
	}
	started := d.started
	d.mu.Unlock()

	if started {
		d.wg.Wait()
	}
	d.log.Info("dispatcher stopped")
}
