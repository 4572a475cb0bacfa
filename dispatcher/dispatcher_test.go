package dispatcher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slot-bot/events"
)

type orderLog struct {
	mu   sync.Mutex
	seen map[int64][]int64
}

func (o *orderLog) Handle(_ context.Context, in events.Inbound) {
	// later events finish faster, so reordering would show up
	slot := in.Event.(events.SlotSelected).SlotID
	time.Sleep(time.Duration(10-slot%10) * time.Millisecond)
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen[in.ChatID] = append(o.seen[in.ChatID], slot)
}

func TestDispatcher_PreservesPerChatOrder(t *testing.T) {
	log := &orderLog{seen: map[int64][]int64{}}
	d := New(log, 4, 16, nil, nil)
	d.Start(context.Background())

	ctx := context.Background()
	for i := int64(0); i < 10; i++ {
		for _, chat := range []int64{1, 2, -100123} {
			require.NoError(t, d.Submit(ctx, events.Inbound{ChatID: chat, Event: events.SlotSelected{SlotID: i}}))
		}
	}
	d.Stop()

	want := []int64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	for _, chat := range []int64{1, 2, -100123} {
		assert.Equal(t, want, log.seen[chat], "chat %d", chat)
	}
}

func TestDispatcher_ConversationsRunConcurrently(t *testing.T) {
	release := make(chan struct{})
	done := make(chan int64, 2)
	h := HandlerFunc(func(_ context.Context, in events.Inbound) {
		if in.ChatID == 0 {
			// chat 0 waits until chat 1 has been handled
			<-release
		} else {
			close(release)
		}
		done <- in.ChatID
	})
	d := New(h, 2, 1, nil, nil)
	d.Start(context.Background())
	defer d.Stop()

	ctx := context.Background()
	require.NoError(t, d.Submit(ctx, events.Inbound{ChatID: 0, Event: events.BookRequested{}}))
	require.NoError(t, d.Submit(ctx, events.Inbound{ChatID: 1, Event: events.BookRequested{}}))

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("chat 0 blocked chat 1")
		}
	}
}

func TestDispatcher_StopDrainsAndRejects(t *testing.T) {
	var mu sync.Mutex
	handled := 0
	h := HandlerFunc(func(context.Context, events.Inbound) {
		mu.Lock()
		handled++
		mu.Unlock()
	})
	d := New(h, 1, 8, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	for i := 0; i < 5; i++ {
		require.NoError(t, d.Submit(ctx, events.Inbound{ChatID: 7, Event: events.MyAppointmentsRequested{}}))
	}
	d.Start(ctx)
	cancel()
	d.Stop()

	assert.Equal(t, 5, handled)
	assert.ErrorIs(t, d.Submit(context.Background(), events.Inbound{ChatID: 7}), ErrStopped)
	d.Stop()
}

func TestDispatcher_SubmitHonoursContextWhenFull(t *testing.T) {
	block := make(chan struct{})
	h := HandlerFunc(func(context.Context, events.Inbound) { <-block })
	d := New(h, 1, 1, nil, nil)
	d.Start(context.Background())
	defer func() {
		close(block)
		d.Stop()
	}()

	bg := context.Background()
	require.NoError(t, d.Submit(bg, events.Inbound{ChatID: 1, Event: events.BookRequested{}}))
	// wait until the worker has picked up the first event
	require.Eventually(t, func() bool { return len(d.shards[0]) == 0 }, time.Second, time.Millisecond)
	require.NoError(t, d.Submit(bg, events.Inbound{ChatID: 1, Event: events.BookRequested{}}))

	ctx, cancel := context.WithTimeout(bg, 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Submit(ctx, events.Inbound{ChatID: 1, Event: events.BookRequested{}}), context.DeadlineExceeded)
}

func TestDispatcher_RecoversFromPanics(t *testing.T) {
	var mu sync.Mutex
	var after []int64
	h := HandlerFunc(func(_ context.Context, in events.Inbound) {
		if in.ChatID == 13 {
			panic("boom")
		}
		mu.Lock()
		after = append(after, in.ChatID)
		mu.Unlock()
	})
	d := New(h, 1, 4, nil, nil)
	d.Start(context.Background())

	ctx := context.Background()
	require.NoError(t, d.Submit(ctx, events.Inbound{ChatID: 13, Event: events.BookRequested{}}))
	require.NoError(t, d.Submit(ctx, events.Inbound{ChatID: 14, Event: events.BookRequested{}}))
	d.Stop()

	assert.Equal(t, []int64{14}, after)
}
