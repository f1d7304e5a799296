package booking

import (
	"context"
	"fmt"
	"time"
)

// Facade is the single entry point for external callers: the booking UI, the
// admin dashboard and the background jobs. It coordinates the registry, the
// ledger and the resolver, and enforces policy (no past bookings, attendee
// count against capacity, administratively closed rooms reject bookings).
type Facade struct {
	registry *Registry
	ledger   *Ledger
	resolver *Resolver
	store    Store
}

func NewFacade(store Store, lockWait time.Duration) *Facade {
	if store == nil {
		store = NullStore{}
	}
	registry := NewRegistry(store)
	ledger := NewLedger(store, registry, lockWait)
	return &Facade{
		registry: registry,
		ledger:   ledger,
		resolver: NewResolver(registry, ledger),
		store:    store,
	}
}

// Hydrate loads persisted rooms and bookings into the engine. Called once at
// startup before the facade is exposed to callers.
func (f *Facade) Hydrate(ctx context.Context) error {
	rooms, err := f.store.LoadRooms(ctx)
	if err != nil {
		return fmt.Errorf("load rooms: %w", err)
	}
	f.registry.Hydrate(rooms)

	bookings, err := f.store.LoadBookings(ctx)
	if err != nil {
		return fmt.Errorf("load bookings: %w", err)
	}
	f.ledger.Hydrate(bookings)
	return nil
}

// BookRoom reserves the room for [start, end) in a single step. Attendees is
// optional; when positive it is checked against the room capacity.
func (f *Facade) BookRoom(ctx context.Context, by Principal, roomID string, start, end time.Time, attendees int) (*Booking, error) {
	iv, err := f.admit(roomID, start, end, attendees)
	if err != nil {
		return nil, err
	}
	return f.ledger.RequestBooking(ctx, roomID, by.ID, iv)
}

// HoldRoom places a tentative (pending) reservation on the interval. Holds
// block other bookings until confirmed, cancelled or expired.
func (f *Facade) HoldRoom(ctx context.Context, by Principal, roomID string, start, end time.Time, attendees int) (*Booking, error) {
	iv, err := f.admit(roomID, start, end, attendees)
	if err != nil {
		return nil, err
	}
	return f.ledger.HoldBooking(ctx, roomID, by.ID, iv)
}

func (f *Facade) admit(roomID string, start, end time.Time, attendees int) (Interval, error) {
	room, err := f.registry.GetRoom(roomID)
	if err != nil {
		return Interval{}, err
	}
	if room.Availability != AdminAvailable {
		return Interval{}, fmt.Errorf("%w: room %s is administratively %s", ErrConflict, roomID, room.Availability)
	}
	if attendees > 0 && attendees > room.Capacity {
		return Interval{}, fmt.Errorf("%w: %d attendees exceed room capacity %d", ErrValidation, attendees, room.Capacity)
	}
	return NewInterval(start, end)
}

func (f *Facade) ConfirmHold(ctx context.Context, by Principal, bookingID string) (*Booking, error) {
	return f.ledger.ConfirmHold(ctx, bookingID, by)
}

func (f *Facade) CancelReservation(ctx context.Context, by Principal, bookingID string) (*Booking, error) {
	return f.ledger.CancelBooking(ctx, bookingID, by)
}

// CheckAvailability answers for an interval, or for a single instant when end
// is zero.
func (f *Facade) CheckAvailability(roomID string, start, end time.Time) (bool, error) {
	if end.IsZero() {
		return f.resolver.IsAvailableAt(roomID, start)
	}
	iv, err := NewInterval(start, end)
	if err != nil {
		return false, err
	}
	return f.resolver.IsAvailable(roomID, iv)
}

// ListBookings returns the room's bookings, optionally restricted to those
// intersecting [from, to). Zero bounds mean no range filter.
func (f *Facade) ListBookings(roomID string, from, to time.Time) ([]*Booking, error) {
	if from.IsZero() && to.IsZero() {
		return f.ledger.ListBookings(roomID, nil)
	}
	iv, err := NewInterval(from, to)
	if err != nil {
		return nil, err
	}
	return f.ledger.ListBookings(roomID, &iv)
}

func (f *Facade) GetBooking(id string) (*Booking, error) {
	return f.ledger.GetBooking(id)
}

// ExpireHolds cancels pending holds created before the cutoff.
func (f *Facade) ExpireHolds(ctx context.Context, cutoff time.Time) ([]*Booking, error) {
	return f.ledger.ExpireHolds(ctx, cutoff)
}

// Room administration. Mutations require the admin capability; reads are open
// to any caller.

func (f *Facade) CreateRoom(ctx context.Context, by Principal, spec RoomSpec) (*Room, error) {
	if !by.Admin {
		return nil, fmt.Errorf("%w: room administration requires the admin capability", ErrPermission)
	}
	return f.registry.CreateRoom(ctx, spec)
}

func (f *Facade) UpdateRoom(ctx context.Context, by Principal, id string, patch RoomPatch) (*Room, error) {
	if !by.Admin {
		return nil, fmt.Errorf("%w: room administration requires the admin capability", ErrPermission)
	}
	return f.registry.UpdateRoom(ctx, id, patch)
}

func (f *Facade) SetAdministrativeAvailability(ctx context.Context, by Principal, id string, value AdminAvailability) (*Room, error) {
	if !by.Admin {
		return nil, fmt.Errorf("%w: room administration requires the admin capability", ErrPermission)
	}
	return f.registry.SetAdministrativeAvailability(ctx, id, value)
}

func (f *Facade) GetRoom(id string) (*Room, error) {
	return f.registry.GetRoom(id)
}

func (f *Facade) ListRooms() []*Room {
	return f.registry.ListRooms()
}
