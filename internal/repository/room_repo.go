package repository

import (
	"context"
	"database/sql"
	"fmt"

	"campusrooms/internal/booking"

	"github.com/lib/pq"
)

type RoomRepository struct {
	DB *sql.DB
}

func NewRoomRepository(db *sql.DB) *RoomRepository {
	return &RoomRepository{DB: db}
}

// Upsert writes the room row, inserting on first save and overwriting the
// mutable fields afterwards.
func (r *RoomRepository) Upsert(ctx context.Context, room *booking.Room) error {
	query := `
		INSERT INTO rooms (id, name, location, capacity, facilities, availability, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			location = EXCLUDED.location,
			capacity = EXCLUDED.capacity,
			facilities = EXCLUDED.facilities,
			availability = EXCLUDED.availability,
			updated_at = EXCLUDED.updated_at`
	_, err := r.DB.ExecContext(ctx, query,
		room.ID,
		room.Name,
		room.Location,
		room.Capacity,
		pq.Array(room.Facilities),
		string(room.Availability),
		room.CreatedAt,
		room.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error upserting room %s: %w", room.ID, err)
	}
	return nil
}

// LoadAll returns every room in creation order.
func (r *RoomRepository) LoadAll(ctx context.Context) ([]*booking.Room, error) {
	query := `
		SELECT id, name, location, capacity, facilities, availability, created_at, updated_at
		FROM rooms
		ORDER BY created_at, id`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*booking.Room
	for rows.Next() {
		var room booking.Room
		var availability string
		if err := rows.Scan(
			&room.ID,
			&room.Name,
			&room.Location,
			&room.Capacity,
			pq.Array(&room.Facilities),
			&availability,
			&room.CreatedAt,
			&room.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning room: %w", err)
		}
		room.Availability = booking.AdminAvailability(availability)
		rooms = append(rooms, &room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating room rows: %w", err)
	}
	return rooms, nil
}
