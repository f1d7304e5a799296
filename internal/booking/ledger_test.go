package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) (*Registry, *Ledger, string) {
	t.Helper()
	reg := NewRegistry(nil)
	room, err := reg.CreateRoom(context.Background(), validSpec())
	require.NoError(t, err)
	return reg, NewLedger(nil, reg, 0), room.ID
}

// tomorrow returns a slot safely in the future, offset in minutes from a
// fixed base one day ahead.
func tomorrow(minutes int) time.Time {
	return time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour).Add(time.Duration(minutes) * time.Minute)
}

func TestLedger_RequestBooking(t *testing.T) {
	_, ledger, roomID := newTestLedger(t)
	ctx := context.Background()

	b, err := ledger.RequestBooking(ctx, roomID, "alice", Interval{Start: tomorrow(0), End: tomorrow(60)})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, b.Status)
	assert.Equal(t, roomID, b.RoomID)
	assert.Equal(t, "alice", b.RequesterID)
	assert.NotEmpty(t, b.ID)
}

func TestLedger_RequestBooking_Validation(t *testing.T) {
	_, ledger, roomID := newTestLedger(t)
	ctx := context.Background()

	_, err := ledger.RequestBooking(ctx, "missing", "alice", Interval{Start: tomorrow(0), End: tomorrow(60)})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = ledger.RequestBooking(ctx, roomID, "", Interval{Start: tomorrow(0), End: tomorrow(60)})
	require.ErrorIs(t, err, ErrValidation)

	_, err = ledger.RequestBooking(ctx, roomID, "alice", Interval{Start: tomorrow(60), End: tomorrow(0)})
	require.ErrorIs(t, err, ErrValidation)

	past := time.Now().UTC().Add(-2 * time.Hour)
	_, err = ledger.RequestBooking(ctx, roomID, "alice", Interval{Start: past, End: past.Add(time.Hour)})
	require.ErrorIs(t, err, ErrValidation)
}

func TestLedger_OverlapConflict(t *testing.T) {
	_, ledger, roomID := newTestLedger(t)
	ctx := context.Background()

	// [09:00, 11:00)
	_, err := ledger.RequestBooking(ctx, roomID, "alice", Interval{Start: tomorrow(0), End: tomorrow(120)})
	require.NoError(t, err)

	// [10:00, 12:00) collides.
	_, err = ledger.RequestBooking(ctx, roomID, "bob", Interval{Start: tomorrow(60), End: tomorrow(180)})
	require.ErrorIs(t, err, ErrConflict)

	// [11:00, 12:00) shares only the boundary and succeeds.
	_, err = ledger.RequestBooking(ctx, roomID, "bob", Interval{Start: tomorrow(120), End: tomorrow(180)})
	require.NoError(t, err)

	// An interval fully inside an existing one collides.
	_, err = ledger.RequestBooking(ctx, roomID, "carol", Interval{Start: tomorrow(30), End: tomorrow(45)})
	require.ErrorIs(t, err, ErrConflict)

	// An interval spanning everything collides too.
	_, err = ledger.RequestBooking(ctx, roomID, "carol", Interval{Start: tomorrow(0), End: tomorrow(240)})
	require.ErrorIs(t, err, ErrConflict)
}

func TestLedger_PendingHoldBlocksBooking(t *testing.T) {
	_, ledger, roomID := newTestLedger(t)
	ctx := context.Background()

	hold, err := ledger.HoldBooking(ctx, roomID, "alice", Interval{Start: tomorrow(0), End: tomorrow(60)})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, hold.Status)

	_, err = ledger.RequestBooking(ctx, roomID, "bob", Interval{Start: tomorrow(30), End: tomorrow(90)})
	require.ErrorIs(t, err, ErrConflict)
}

func TestLedger_CancelBooking(t *testing.T) {
	_, ledger, roomID := newTestLedger(t)
	ctx := context.Background()

	b, err := ledger.RequestBooking(ctx, roomID, "alice", Interval{Start: tomorrow(0), End: tomorrow(60)})
	require.NoError(t, err)

	_, err = ledger.CancelBooking(ctx, "missing", Principal{ID: "alice"})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = ledger.CancelBooking(ctx, b.ID, Principal{ID: "bob"})
	require.ErrorIs(t, err, ErrPermission)

	cancelled, err := ledger.CancelBooking(ctx, b.ID, Principal{ID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	// Cancel is a status transition, not a delete; a second cancel is invalid.
	_, err = ledger.CancelBooking(ctx, b.ID, Principal{ID: "alice"})
	require.ErrorIs(t, err, ErrInvalidState)

	// History is preserved on the ledger.
	all, err := ledger.ListBookings(roomID, nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, StatusCancelled, all[0].Status)
}

func TestLedger_AdminCanCancelForeignBooking(t *testing.T) {
	_, ledger, roomID := newTestLedger(t)
	ctx := context.Background()

	b, err := ledger.RequestBooking(ctx, roomID, "alice", Interval{Start: tomorrow(0), End: tomorrow(60)})
	require.NoError(t, err)

	cancelled, err := ledger.CancelBooking(ctx, b.ID, Principal{ID: "registrar", Admin: true})
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
}

func TestLedger_CancelThenRebookSameInterval(t *testing.T) {
	_, ledger, roomID := newTestLedger(t)
	ctx := context.Background()

	iv := Interval{Start: tomorrow(0), End: tomorrow(60)}
	b, err := ledger.RequestBooking(ctx, roomID, "alice", iv)
	require.NoError(t, err)

	_, err = ledger.CancelBooking(ctx, b.ID, Principal{ID: "alice"})
	require.NoError(t, err)

	rebooked, err := ledger.RequestBooking(ctx, roomID, "bob", iv)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, rebooked.Status)
	assert.NotEqual(t, b.ID, rebooked.ID)
}

func TestLedger_ConfirmHold(t *testing.T) {
	_, ledger, roomID := newTestLedger(t)
	ctx := context.Background()

	hold, err := ledger.HoldBooking(ctx, roomID, "alice", Interval{Start: tomorrow(0), End: tomorrow(60)})
	require.NoError(t, err)

	_, err = ledger.ConfirmHold(ctx, hold.ID, Principal{ID: "bob"})
	require.ErrorIs(t, err, ErrPermission)

	confirmed, err := ledger.ConfirmHold(ctx, hold.ID, Principal{ID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, confirmed.Status)

	_, err = ledger.ConfirmHold(ctx, hold.ID, Principal{ID: "alice"})
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestLedger_ListBookings_OrderAndRange(t *testing.T) {
	_, ledger, roomID := newTestLedger(t)
	ctx := context.Background()

	// Insert out of chronological order.
	late, err := ledger.RequestBooking(ctx, roomID, "carol", Interval{Start: tomorrow(240), End: tomorrow(300)})
	require.NoError(t, err)
	early, err := ledger.RequestBooking(ctx, roomID, "alice", Interval{Start: tomorrow(0), End: tomorrow(60)})
	require.NoError(t, err)
	mid, err := ledger.RequestBooking(ctx, roomID, "bob", Interval{Start: tomorrow(120), End: tomorrow(180)})
	require.NoError(t, err)

	all, err := ledger.ListBookings(roomID, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{early.ID, mid.ID, late.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	rng := Interval{Start: tomorrow(30), End: tomorrow(150)}
	hits, err := ledger.ListBookings(roomID, &rng)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, early.ID, hits[0].ID)
	assert.Equal(t, mid.ID, hits[1].ID)

	_, err = ledger.ListBookings("missing", nil)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLedger_ConcurrentOverlappingBookings_OneWinner(t *testing.T) {
	_, ledger, roomID := newTestLedger(t)
	ctx := context.Background()

	const n = 16
	iv := Interval{Start: tomorrow(0), End: tomorrow(60)}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ledger.RequestBooking(ctx, roomID, "requester", iv)
		}(i)
	}
	wg.Wait()

	var won, conflicted int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrConflict):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, n-1, conflicted)
}

func TestLedger_DifferentRoomsDoNotContend(t *testing.T) {
	reg := NewRegistry(nil)
	ctx := context.Background()
	ledger := NewLedger(nil, reg, 0)

	var roomIDs []string
	for i := 0; i < 4; i++ {
		room, err := reg.CreateRoom(ctx, validSpec())
		require.NoError(t, err)
		roomIDs = append(roomIDs, room.ID)
	}

	iv := Interval{Start: tomorrow(0), End: tomorrow(60)}
	var wg sync.WaitGroup
	errs := make([]error, len(roomIDs))
	for i, id := range roomIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = ledger.RequestBooking(ctx, id, "requester", iv)
		}(i, id)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
}

func TestLedger_BusyWhenRoomLockHeld(t *testing.T) {
	reg := NewRegistry(nil)
	ctx := context.Background()
	room, err := reg.CreateRoom(ctx, validSpec())
	require.NoError(t, err)

	ledger := NewLedger(nil, reg, 50*time.Millisecond)

	// Park a holder inside the room's serialization region.
	q := ledger.queue(room.ID)
	q.sem <- struct{}{}
	defer func() { <-q.sem }()

	_, err = ledger.RequestBooking(ctx, room.ID, "alice", Interval{Start: tomorrow(0), End: tomorrow(60)})
	require.ErrorIs(t, err, ErrBusy)
}

func TestLedger_ExpireHolds(t *testing.T) {
	_, ledger, roomID := newTestLedger(t)
	ctx := context.Background()

	hold, err := ledger.HoldBooking(ctx, roomID, "alice", Interval{Start: tomorrow(0), End: tomorrow(60)})
	require.NoError(t, err)
	confirmed, err := ledger.RequestBooking(ctx, roomID, "bob", Interval{Start: tomorrow(120), End: tomorrow(180)})
	require.NoError(t, err)

	expired, err := ledger.ExpireHolds(ctx, time.Now().UTC().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, hold.ID, expired[0].ID)
	assert.Equal(t, StatusCancelled, expired[0].Status)

	// Confirmed bookings are untouched.
	got, err := ledger.GetBooking(confirmed.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, got.Status)

	// The freed interval can be booked again.
	_, err = ledger.RequestBooking(ctx, roomID, "carol", Interval{Start: tomorrow(0), End: tomorrow(60)})
	require.NoError(t, err)
}

type failingStore struct {
	NullStore
	failBookings bool
}

func (s *failingStore) SaveBooking(ctx context.Context, b *Booking) error {
	if s.failBookings {
		return errors.New("store down")
	}
	return nil
}

func TestLedger_StoreFailureLeavesNoPartialBooking(t *testing.T) {
	store := &failingStore{failBookings: true}
	reg := NewRegistry(nil)
	ctx := context.Background()
	room, err := reg.CreateRoom(ctx, validSpec())
	require.NoError(t, err)

	ledger := NewLedger(store, reg, 0)

	iv := Interval{Start: tomorrow(0), End: tomorrow(60)}
	_, err = ledger.RequestBooking(ctx, room.ID, "alice", iv)
	require.Error(t, err)

	all, err := ledger.ListBookings(room.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, all)

	// Once the store recovers the interval books cleanly.
	store.failBookings = false
	_, err = ledger.RequestBooking(ctx, room.ID, "alice", iv)
	require.NoError(t, err)
}

func TestLedger_ConfirmedNonOverlapInvariant(t *testing.T) {
	_, ledger, roomID := newTestLedger(t)
	ctx := context.Background()

	// A burst of adjacent and colliding requests.
	slots := [][2]int{{0, 60}, {30, 90}, {60, 120}, {90, 150}, {120, 180}, {0, 180}}
	for _, s := range slots {
		ledger.RequestBooking(ctx, roomID, "r", Interval{Start: tomorrow(s[0]), End: tomorrow(s[1])})
	}

	all, err := ledger.ListBookings(roomID, nil)
	require.NoError(t, err)
	for i, a := range all {
		for j, b := range all {
			if i == j || !a.Status.Active() || !b.Status.Active() {
				continue
			}
			assert.False(t, a.Interval.Overlaps(b.Interval),
				"bookings %s and %s overlap", a.Interval, b.Interval)
		}
	}
}
