package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slot-bot/storage"
	"slot-bot/types"
)

const DateLayout = "2006-01-02"

// SlotQuery lists bookable slots for a service on a calendar date.
type SlotQuery struct {
	store    Store
	loc      *time.Location
	pageSize int
	now      func() time.Time
}

func NewSlotQuery(store Store, loc *time.Location, pageSize int) *SlotQuery {
	if loc == nil {
		loc = time.UTC
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return &SlotQuery{store: store, loc: loc, pageSize: pageSize, now: time.Now}
}

// WithClock replaces the time source; used by tests.
func (q *SlotQuery) WithClock(now func() time.Time) *SlotQuery {
	q.now = now
	return q
}

// ListBookable returns free slots of serviceID on date (YYYY-MM-DD, in the
// configured timezone) whose start is at or after now+cutoffMinutes, ordered
// by start time and capped at the page size. No qualifying slots is an empty
// result, not an error.
func (q *SlotQuery) ListBookable(ctx context.Context, serviceID int64, date string, cutoffMinutes int) ([]types.Slot, error) {
	day, err := time.ParseInLocation(DateLayout, date, q.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	if _, err := q.store.GetService(ctx, serviceID); err != nil {
		if errors.Is(err, storage.ErrServiceNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("booking: load service: %w", err)
	}

	// computed once so every slot is judged against the same floor
	floor := q.now().Add(time.Duration(cutoffMinutes) * time.Minute)
	from := day
	if floor.After(from) {
		from = floor
	}
	to := day.AddDate(0, 0, 1)
	if !from.Before(to) {
		return nil, nil
	}

	slots, err := q.store.ListFreeSlots(ctx, serviceID, from, to, q.pageSize)
	if err != nil {
		return nil, fmt.Errorf("booking: list slots: %w", err)
	}
	return slots, nil
}

// Services returns the catalog for the service menu.
func (q *SlotQuery) Services(ctx context.Context) ([]types.Service, error) {
	svcs, err := q.store.ListServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("booking: list services: %w", err)
	}
	return svcs, nil
}

func (q *SlotQuery) Service(ctx context.Context, id int64) (*types.Service, error) {
	svc, err := q.store.GetService(ctx, id)
	if errors.Is(err, storage.ErrServiceNotFound) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("booking: load service: %w", err)
	}
	return svc, nil
}
