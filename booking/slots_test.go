package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slot-bot/storage"
	"slot-bot/types"
)

func seededStore(t *testing.T, starts ...time.Time) *storage.Memory {
	t.Helper()
	mem := storage.NewMemory()
	mem.AddService(types.Service{ID: 5, Name: "Haircut", DurationMinutes: 30})
	for i, start := range starts {
		mem.AddSlot(types.Slot{ID: int64(100 + i), ServiceID: 5, StartAt: start, EndAt: start.Add(30 * time.Minute)})
	}
	return mem
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestListBookable_CutoffBoundary(t *testing.T) {
	now := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	mem := seededStore(t,
		now.Add(29*time.Minute), // 100: inside cutoff
		now.Add(30*time.Minute), // 101: exactly on the floor
		now.Add(31*time.Minute), // 102: after the floor
	)
	q := NewSlotQuery(mem, time.UTC, 20).WithClock(fixedClock(now))

	slots, err := q.ListBookable(context.Background(), 5, "2025-05-01", 30)
	require.NoError(t, err)

	ids := slotIDs(slots)
	assert.NotContains(t, ids, int64(100))
	assert.Contains(t, ids, int64(101))
	assert.Contains(t, ids, int64(102))
}

func TestListBookable_NineOClockSlot(t *testing.T) {
	nine := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	mem := seededStore(t, nine)

	at0845 := NewSlotQuery(mem, time.UTC, 20).WithClock(fixedClock(time.Date(2025, 5, 1, 8, 45, 0, 0, time.UTC)))
	slots, err := at0845.ListBookable(context.Background(), 5, "2025-05-01", 30)
	require.NoError(t, err)
	assert.Empty(t, slots)

	at0829 := NewSlotQuery(mem, time.UTC, 20).WithClock(fixedClock(time.Date(2025, 5, 1, 8, 29, 0, 0, time.UTC)))
	slots, err = at0829.ListBookable(context.Background(), 5, "2025-05-01", 30)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, int64(100), slots[0].ID)
}

func TestListBookable_OrderedAndCapped(t *testing.T) {
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	mem := seededStore(t,
		day.Add(12*time.Hour),
		day.Add(9*time.Hour),
		day.Add(10*time.Hour),
		day.Add(11*time.Hour),
	)
	q := NewSlotQuery(mem, time.UTC, 3).WithClock(fixedClock(day.AddDate(0, 0, -1)))

	slots, err := q.ListBookable(context.Background(), 5, "2025-06-02", 30)
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, []int64{101, 102, 103}, slotIDs(slots))
}

func TestListBookable_OtherDaysAndBookedSlotsExcluded(t *testing.T) {
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	mem := seededStore(t,
		day.Add(9*time.Hour),
		day.Add(33*time.Hour), // next day
		day.Add(10*time.Hour),
	)
	_, err := mem.ConfirmAppointment(context.Background(), 102, 1)
	require.NoError(t, err)

	q := NewSlotQuery(mem, time.UTC, 20).WithClock(fixedClock(day.AddDate(0, 0, -1)))
	slots, err := q.ListBookable(context.Background(), 5, "2025-06-02", 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{100}, slotIDs(slots))
}

func TestListBookable_DateInLocation(t *testing.T) {
	warsaw, err := time.LoadLocation("Europe/Warsaw")
	require.NoError(t, err)
	// 23:30 UTC on 1 June is 01:30 on 2 June in Warsaw
	mem := seededStore(t, time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC))
	q := NewSlotQuery(mem, warsaw, 20).WithClock(fixedClock(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)))

	slots, err := q.ListBookable(context.Background(), 5, "2025-06-02", 30)
	require.NoError(t, err)
	assert.Len(t, slots, 1)

	slots, err = q.ListBookable(context.Background(), 5, "2025-06-01", 30)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestListBookable_PastDayIsEmpty(t *testing.T) {
	mem := seededStore(t, time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC))
	q := NewSlotQuery(mem, time.UTC, 20).WithClock(fixedClock(time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC)))

	slots, err := q.ListBookable(context.Background(), 5, "2025-05-01", 30)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestListBookable_Errors(t *testing.T) {
	mem := seededStore(t)
	q := NewSlotQuery(mem, time.UTC, 20)

	_, err := q.ListBookable(context.Background(), 5, "01/05/2025", 30)
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = q.ListBookable(context.Background(), 999, "2025-05-01", 30)
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func slotIDs(slots []types.Slot) []int64 {
	ids := make([]int64, 0, len(slots))
	for _, s := range slots {
		ids = append(ids, s.ID)
	}
	return ids
}
