package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slot-bot/storage"
	"slot-bot/types"
)

type recordingAnnouncer struct {
	mu     sync.Mutex
	events []types.BookingConfirmed
}

func (a *recordingAnnouncer) Announce(evt types.BookingConfirmed) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, evt)
}

func (a *recordingAnnouncer) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.events)
}

type countingRecorder struct {
	mu       sync.Mutex
	confirms map[string]int
	cancels  map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{confirms: map[string]int{}, cancels: map[string]int{}}
}

func (r *countingRecorder) ObserveConfirm(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.confirms[outcome]++
}

func (r *countingRecorder) ObserveCancel(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancels[outcome]++
}

func newEngineFixture(t *testing.T) (*Engine, *storage.Memory, *recordingAnnouncer, *countingRecorder) {
	t.Helper()
	start := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	mem := storage.NewMemory()
	mem.AddService(types.Service{ID: 5, Name: "Haircut", DurationMinutes: 30})
	mem.AddSlot(types.Slot{ID: 77, ServiceID: 5, StartAt: start, EndAt: start.Add(30 * time.Minute)})
	mem.AddSlot(types.Slot{ID: 10, ServiceID: 5, StartAt: start.Add(time.Hour), EndAt: start.Add(90 * time.Minute)})
	ann := &recordingAnnouncer{}
	rec := newCountingRecorder()
	return NewEngine(mem, ann, rec, nil), mem, ann, rec
}

func TestConfirm_ReturnsDenormalizedBooking(t *testing.T) {
	engine, _, ann, rec := newEngineFixture(t)

	b, err := engine.Confirm(context.Background(), 77, 1001)
	require.NoError(t, err)
	assert.Equal(t, types.StatusConfirmed, b.Appointment.Status)
	assert.Equal(t, int64(1001), b.Appointment.ChatID)
	assert.Equal(t, "Haircut", b.Service.Name)
	assert.Equal(t, int64(77), b.Slot.ID)

	require.Equal(t, 1, ann.count())
	assert.Equal(t, b.Appointment.ID, ann.events[0].AppointmentID)
	assert.Equal(t, "Haircut", ann.events[0].ServiceName)
	assert.Equal(t, 1, rec.confirms["confirmed"])
}

func TestConfirm_ConcurrentConversationsOneWinner(t *testing.T) {
	engine, mem, ann, _ := newEngineFixture(t)

	const racers = 32
	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		results = make([]error, racers)
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, results[i] = engine.Confirm(context.Background(), 77, int64(2000+i))
		}(i)
	}
	close(start)
	wg.Wait()

	var won, taken int
	for _, err := range results {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrSlotTaken):
			taken++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, racers-1, taken)
	assert.Equal(t, 1, mem.CountAppointments(77)[types.StatusConfirmed])
	assert.Equal(t, 1, ann.count())
}

func TestConfirm_RepeatIsSlotTaken(t *testing.T) {
	engine, mem, ann, rec := newEngineFixture(t)
	ctx := context.Background()

	_, err := engine.Confirm(ctx, 10, 1001)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = engine.Confirm(ctx, 10, 1001)
		assert.ErrorIs(t, err, ErrSlotTaken)
	}
	_, err = engine.Confirm(ctx, 10, 2002)
	assert.ErrorIs(t, err, ErrSlotTaken)

	counts := mem.CountAppointments(10)
	assert.Equal(t, 1, counts[types.StatusConfirmed]+counts[types.StatusCancelled])
	assert.Equal(t, 1, ann.count())
	assert.Equal(t, 4, rec.confirms["taken"])
}

func TestConfirm_MissingSlot(t *testing.T) {
	engine, mem, ann, _ := newEngineFixture(t)
	mem.RemoveSlot(77)

	_, err := engine.Confirm(context.Background(), 77, 1001)
	assert.ErrorIs(t, err, ErrSlotNotFound)
	assert.Zero(t, ann.count())
}

type failingStore struct {
	Store
	err error
}

func (f failingStore) ConfirmAppointment(context.Context, int64, int64) (*types.Booking, error) {
	return nil, f.err
}

func TestConfirm_StoreFailureIsWrapped(t *testing.T) {
	boom := errors.New("db down")
	engine := NewEngine(failingStore{err: boom}, nil, nil, nil)

	_, err := engine.Confirm(context.Background(), 1, 1)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrSlotTaken)
}

func TestCancel_OwnerOnly(t *testing.T) {
	engine, mem, _, rec := newEngineFixture(t)
	ctx := context.Background()

	b, err := engine.Confirm(ctx, 77, 4444) // conversation D
	require.NoError(t, err)

	_, errOther := engine.Cancel(ctx, b.Appointment.ID, 3333) // conversation C
	_, errMissing := engine.Cancel(ctx, 9999, 3333)
	assert.ErrorIs(t, errOther, ErrNotFoundOrNotOwned)
	assert.ErrorIs(t, errMissing, ErrNotFoundOrNotOwned)
	assert.Equal(t, errOther.Error(), errMissing.Error())
	assert.Equal(t, 1, mem.CountAppointments(77)[types.StatusConfirmed])

	cancelled, err := engine.Cancel(ctx, b.Appointment.ID, 4444)
	require.NoError(t, err)
	assert.Equal(t, types.StatusCancelled, cancelled.Appointment.Status)
	assert.NotNil(t, cancelled.Appointment.CancelledAt)
	assert.Equal(t, 2, rec.cancels["rejected"])
	assert.Equal(t, 1, rec.cancels["cancelled"])
}

func TestCancel_DoesNotReleaseSlot(t *testing.T) {
	engine, _, _, _ := newEngineFixture(t)
	ctx := context.Background()

	b, err := engine.Confirm(ctx, 77, 4444)
	require.NoError(t, err)
	_, err = engine.Cancel(ctx, b.Appointment.ID, 4444)
	require.NoError(t, err)

	_, err = engine.Confirm(ctx, 77, 5555)
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestAppointments_ListsOwnOnly(t *testing.T) {
	engine, _, _, _ := newEngineFixture(t)
	ctx := context.Background()

	_, err := engine.Confirm(ctx, 77, 1)
	require.NoError(t, err)
	_, err = engine.Confirm(ctx, 10, 2)
	require.NoError(t, err)

	list, err := engine.Appointments(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(77), list[0].Slot.ID)
}
