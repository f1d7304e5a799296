package booking

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// DefaultLockWait bounds how long a mutation waits for a room's serialization
// region before giving up with ErrBusy.
const DefaultLockWait = 2 * time.Second

// Ledger owns booking records and enforces the temporal non-overlap invariant
// per room: at most one pending/confirmed booking may hold any instant.
//
// Each room has a capacity-1 semaphore that serializes its check-then-insert
// sequence, and a copy-on-write snapshot of its bookings ordered by interval
// start. Readers load the snapshot without taking any lock, so they never
// observe a partially inserted booking. Different rooms mutate in parallel.
type Ledger struct {
	store    Store
	registry *Registry
	lockWait time.Duration
	now      func() time.Time

	mu     sync.RWMutex
	queues map[string]*roomQueue
	byID   map[string]*Booking
}

type roomQueue struct {
	sem  chan struct{}
	snap atomic.Pointer[[]*Booking] // sorted by (interval.Start, CreatedAt)
}

func NewLedger(store Store, registry *Registry, lockWait time.Duration) *Ledger {
	if store == nil {
		store = NullStore{}
	}
	if lockWait <= 0 {
		lockWait = DefaultLockWait
	}
	return &Ledger{
		store:    store,
		registry: registry,
		lockWait: lockWait,
		now:      time.Now,
		queues:   make(map[string]*roomQueue),
		byID:     make(map[string]*Booking),
	}
}

// Hydrate seeds the ledger from previously persisted bookings.
func (l *Ledger) Hydrate(bookings []*Booking) {
	byRoom := make(map[string][]*Booking)
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, b := range bookings {
		cp := *b
		byRoom[cp.RoomID] = append(byRoom[cp.RoomID], &cp)
		l.byID[cp.ID] = &cp
	}
	for roomID, items := range byRoom {
		sort.Slice(items, func(i, j int) bool {
			if !items[i].Interval.Start.Equal(items[j].Interval.Start) {
				return items[i].Interval.Start.Before(items[j].Interval.Start)
			}
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		})
		q := l.queueLocked(roomID)
		q.snap.Store(&items)
	}
}

func (l *Ledger) queue(roomID string) *roomQueue {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.queueLocked(roomID)
}

func (l *Ledger) queueLocked(roomID string) *roomQueue {
	q, ok := l.queues[roomID]
	if !ok {
		q = &roomQueue{sem: make(chan struct{}, 1)}
		empty := make([]*Booking, 0)
		q.snap.Store(&empty)
		l.queues[roomID] = q
	}
	return q
}

// acquire enters the room's serialization region, waiting at most lockWait.
func (l *Ledger) acquire(ctx context.Context, q *roomQueue) error {
	timer := time.NewTimer(l.lockWait)
	defer timer.Stop()
	select {
	case q.sem <- struct{}{}:
		return nil
	case <-timer.C:
		return fmt.Errorf("%w: room lock not acquired within %s", ErrBusy, l.lockWait)
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrBusy, ctx.Err())
	}
}

func (l *Ledger) release(q *roomQueue) {
	<-q.sem
}

// RequestBooking inserts a confirmed booking for the interval, or fails with
// ErrConflict if any pending/confirmed booking on the room overlaps it.
func (l *Ledger) RequestBooking(ctx context.Context, roomID, requesterID string, iv Interval) (*Booking, error) {
	return l.insert(ctx, roomID, requesterID, iv, StatusConfirmed)
}

// HoldBooking inserts a pending booking. Holds take part in overlap conflicts
// like confirmed bookings and are either confirmed later or swept by expiry.
func (l *Ledger) HoldBooking(ctx context.Context, roomID, requesterID string, iv Interval) (*Booking, error) {
	return l.insert(ctx, roomID, requesterID, iv, StatusPending)
}

func (l *Ledger) insert(ctx context.Context, roomID, requesterID string, iv Interval, status BookingStatus) (*Booking, error) {
	if _, err := l.registry.GetRoom(roomID); err != nil {
		return nil, err
	}
	if requesterID == "" {
		return nil, fmt.Errorf("%w: requester is required", ErrValidation)
	}
	if !iv.Start.Before(iv.End) {
		return nil, fmt.Errorf("%w: start must be before end", ErrValidation)
	}
	now := l.now().UTC()
	if iv.Start.Before(now) {
		return nil, fmt.Errorf("%w: booking starts in the past", ErrValidation)
	}

	q := l.queue(roomID)
	if err := l.acquire(ctx, q); err != nil {
		return nil, err
	}
	defer l.release(q)

	items := *q.snap.Load()
	if hit := findOverlap(items, iv, func(b *Booking) bool { return b.Status.Active() }); hit != nil {
		return nil, fmt.Errorf("%w: interval %s overlaps booking %s", ErrConflict, iv, hit.ID)
	}

	b := &Booking{
		ID:          uuid.NewString(),
		RoomID:      roomID,
		RequesterID: requesterID,
		Interval:    iv,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := l.store.SaveBooking(ctx, b); err != nil {
		return nil, fmt.Errorf("persist booking: %w", err)
	}

	next := insertSorted(items, b)
	q.snap.Store(&next)

	l.mu.Lock()
	l.byID[b.ID] = b
	l.mu.Unlock()

	cp := *b
	return &cp, nil
}

// CancelBooking transitions a booking to cancelled. Only the original
// requester may cancel, unless the caller carries the admin capability.
// Bookings are never deleted; history stays in the ledger.
func (l *Ledger) CancelBooking(ctx context.Context, bookingID string, by Principal) (*Booking, error) {
	return l.transition(ctx, bookingID, by, StatusCancelled)
}

// ConfirmHold promotes a pending booking to confirmed.
func (l *Ledger) ConfirmHold(ctx context.Context, bookingID string, by Principal) (*Booking, error) {
	return l.transition(ctx, bookingID, by, StatusConfirmed)
}

func (l *Ledger) transition(ctx context.Context, bookingID string, by Principal, target BookingStatus) (*Booking, error) {
	l.mu.RLock()
	current, ok := l.byID[bookingID]
	l.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: booking %s", ErrNotFound, bookingID)
	}

	q := l.queue(current.RoomID)
	if err := l.acquire(ctx, q); err != nil {
		return nil, err
	}
	defer l.release(q)

	// Re-read inside the region; a concurrent transition may have won.
	l.mu.RLock()
	current = l.byID[bookingID]
	l.mu.RUnlock()

	if current.RequesterID != by.ID && !by.Admin {
		return nil, fmt.Errorf("%w: booking %s belongs to another requester", ErrPermission, bookingID)
	}
	switch target {
	case StatusCancelled:
		if current.Status == StatusCancelled {
			return nil, fmt.Errorf("%w: booking %s is already cancelled", ErrInvalidState, bookingID)
		}
	case StatusConfirmed:
		if current.Status != StatusPending {
			return nil, fmt.Errorf("%w: booking %s is not pending", ErrInvalidState, bookingID)
		}
	}

	updated := *current
	updated.Status = target
	updated.UpdatedAt = l.now().UTC()
	if err := l.store.SaveBooking(ctx, &updated); err != nil {
		return nil, fmt.Errorf("persist booking: %w", err)
	}

	l.publish(q, &updated)

	cp := updated
	return &cp, nil
}

// publish swaps the updated booking into the room snapshot. Sort position is
// stable: interval and creation time never change.
func (l *Ledger) publish(q *roomQueue, updated *Booking) {
	items := *q.snap.Load()
	next := make([]*Booking, len(items))
	copy(next, items)
	for i, b := range next {
		if b.ID == updated.ID {
			next[i] = updated
			break
		}
	}
	q.snap.Store(&next)

	l.mu.Lock()
	l.byID[updated.ID] = updated
	l.mu.Unlock()
}

// GetBooking returns a booking by id.
func (l *Ledger) GetBooking(id string) (*Booking, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	b, ok := l.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: booking %s", ErrNotFound, id)
	}
	cp := *b
	return &cp, nil
}

// ListBookings returns the room's bookings intersecting the optional range,
// ordered by interval start ascending, ties broken by creation time.
func (l *Ledger) ListBookings(roomID string, rng *Interval) ([]*Booking, error) {
	if _, err := l.registry.GetRoom(roomID); err != nil {
		return nil, err
	}
	items := *l.queue(roomID).snap.Load()
	out := make([]*Booking, 0, len(items))
	for _, b := range items {
		if rng != nil && !b.Interval.Overlaps(*rng) {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	return out, nil
}

// HasOverlap reports whether any booking matching the status filter overlaps
// the interval. Used by the availability resolver.
func (l *Ledger) HasOverlap(roomID string, iv Interval, status BookingStatus) bool {
	items := *l.queue(roomID).snap.Load()
	return findOverlap(items, iv, func(b *Booking) bool { return b.Status == status }) != nil
}

// ExpireHolds cancels pending bookings created before the cutoff and returns
// them. Each room is swept inside its own serialization region.
func (l *Ledger) ExpireHolds(ctx context.Context, cutoff time.Time) ([]*Booking, error) {
	l.mu.RLock()
	roomIDs := make([]string, 0, len(l.queues))
	for id := range l.queues {
		roomIDs = append(roomIDs, id)
	}
	l.mu.RUnlock()

	var expired []*Booking
	for _, roomID := range roomIDs {
		q := l.queue(roomID)
		if err := l.acquire(ctx, q); err != nil {
			return expired, err
		}
		items := *q.snap.Load()
		for _, b := range items {
			if b.Status != StatusPending || !b.CreatedAt.Before(cutoff) {
				continue
			}
			updated := *b
			updated.Status = StatusCancelled
			updated.UpdatedAt = l.now().UTC()
			if err := l.store.SaveBooking(ctx, &updated); err != nil {
				l.release(q)
				return expired, fmt.Errorf("persist expired hold %s: %w", b.ID, err)
			}
			l.publish(q, &updated)
			cp := updated
			expired = append(expired, &cp)
		}
		l.release(q)
	}
	return expired, nil
}

// findOverlap locates a booking overlapping iv among those matching the
// filter. Bookings matching the filter are pairwise disjoint, so after the
// binary search only the nearest matching neighbor on the left and the
// matching entries starting before iv.End on the right need inspection.
func findOverlap(items []*Booking, iv Interval, match func(*Booking) bool) *Booking {
	idx := sort.Search(len(items), func(i int) bool {
		return !items[i].Interval.Start.Before(iv.Start)
	})
	for j := idx - 1; j >= 0; j-- {
		if !match(items[j]) {
			continue
		}
		if items[j].Interval.End.After(iv.Start) {
			return items[j]
		}
		break
	}
	for j := idx; j < len(items); j++ {
		if !items[j].Interval.Start.Before(iv.End) {
			break
		}
		if match(items[j]) {
			return items[j]
		}
	}
	return nil
}

func insertSorted(items []*Booking, b *Booking) []*Booking {
	idx := sort.Search(len(items), func(i int) bool {
		if !items[i].Interval.Start.Equal(b.Interval.Start) {
			return items[i].Interval.Start.After(b.Interval.Start)
		}
		return !items[i].CreatedAt.Before(b.CreatedAt)
	})
	next := make([]*Booking, 0, len(items)+1)
	next = append(next, items[:idx]...)
	next = append(next, b)
	next = append(next, items[idx:]...)
	return next
}
