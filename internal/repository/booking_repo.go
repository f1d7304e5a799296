package repository

import (
	"context"
	"database/sql"
	"fmt"

	"campusrooms/internal/booking"
)

type BookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{DB: db}
}

// Upsert writes the booking row. Only the status and updated_at columns ever
// change after insert; bookings are never deleted.
func (r *BookingRepository) Upsert(ctx context.Context, b *booking.Booking) error {
	query := `
		INSERT INTO bookings (id, room_id, requester_id, start_time, end_time, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at`
	_, err := r.DB.ExecContext(ctx, query,
		b.ID,
		b.RoomID,
		b.RequesterID,
		b.Interval.Start,
		b.Interval.End,
		string(b.Status),
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error upserting booking %s: %w", b.ID, err)
	}
	return nil
}

// LoadAll returns every booking ordered by room and interval start, matching
// the (room_id, start_time) index the overlap search relies on.
func (r *BookingRepository) LoadAll(ctx context.Context) ([]*booking.Booking, error) {
	query := `
		SELECT id, room_id, requester_id, start_time, end_time, status, created_at, updated_at
		FROM bookings
		ORDER BY room_id, start_time, created_at`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*booking.Booking
	for rows.Next() {
		var b booking.Booking
		var status string
		if err := rows.Scan(
			&b.ID,
			&b.RoomID,
			&b.RequesterID,
			&b.Interval.Start,
			&b.Interval.End,
			&status,
			&b.CreatedAt,
			&b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning booking: %w", err)
		}
		b.Status = booking.BookingStatus(status)
		bookings = append(bookings, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating booking rows: %w", err)
	}
	return bookings, nil
}
