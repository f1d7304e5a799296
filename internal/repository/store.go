package repository

import (
	"context"
	"database/sql"

	"campusrooms/internal/booking"
)

// PostgresStore implements booking.Store on top of the room and booking
// repositories, giving the engine durable write-through persistence.
type PostgresStore struct {
	Rooms    *RoomRepository
	Bookings *BookingRepository
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		Rooms:    NewRoomRepository(db),
		Bookings: NewBookingRepository(db),
	}
}

func (s *PostgresStore) SaveRoom(ctx context.Context, room *booking.Room) error {
	return s.Rooms.Upsert(ctx, room)
}

func (s *PostgresStore) SaveBooking(ctx context.Context, b *booking.Booking) error {
	return s.Bookings.Upsert(ctx, b)
}

func (s *PostgresStore) LoadRooms(ctx context.Context) ([]*booking.Room, error) {
	return s.Rooms.LoadAll(ctx)
}

func (s *PostgresStore) LoadBookings(ctx context.Context) ([]*booking.Booking, error) {
	return s.Bookings.LoadAll(ctx)
}
