package booking

import "context"

// Store is the write-through persistence hook for the engine. Mutations are
// persisted before they become visible to readers; a store failure leaves no
// partial state behind. Implementations must be safe for concurrent use.
type Store interface {
	SaveRoom(ctx context.Context, room *Room) error
	SaveBooking(ctx context.Context, b *Booking) error
	LoadRooms(ctx context.Context) ([]*Room, error)
	LoadBookings(ctx context.Context) ([]*Booking, error)
}

// NullStore keeps nothing. It lets the engine run as a plain in-memory
// library, e.g. in tests.
type NullStore struct{}

func (NullStore) SaveRoom(context.Context, *Room) error            { return nil }
func (NullStore) SaveBooking(context.Context, *Booking) error      { return nil }
func (NullStore) LoadRooms(context.Context) ([]*Room, error)       { return nil, nil }
func (NullStore) LoadBookings(context.Context) ([]*Booking, error) { return nil, nil }
