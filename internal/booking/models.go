package booking

import "time"

// AdminAvailability is the manual override an administrator sets on a room,
// independent of any bookings.
type AdminAvailability string

const (
	AdminAvailable AdminAvailability = "available"
	AdminOccupied  AdminAvailability = "occupied"
	AdminDisabled  AdminAvailability = "disabled"
)

func (a AdminAvailability) Valid() bool {
	switch a {
	case AdminAvailable, AdminOccupied, AdminDisabled:
		return true
	}
	return false
}

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

// Active statuses participate in overlap conflicts.
func (s BookingStatus) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

type Room struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Location     string            `json:"location"`
	Capacity     int               `json:"capacity"`
	Facilities   []string          `json:"facilities"`
	Availability AdminAvailability `json:"availability"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

type Booking struct {
	ID          string        `json:"id"`
	RoomID      string        `json:"room_id"`
	RequesterID string        `json:"requester_id"`
	Interval    Interval      `json:"interval"`
	Status      BookingStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Principal identifies the caller of a facade operation. The ID is an opaque
// token supplied by the external auth layer; Admin grants the administrator
// capability (room management, cancelling on behalf of others).
type Principal struct {
	ID    string
	Admin bool
}

// RoomSpec is the input for creating a room.
type RoomSpec struct {
	Name         string
	Location     string
	Capacity     int
	Facilities   []string
	Availability AdminAvailability
}

// RoomPatch is a partial update; nil fields are left unchanged.
type RoomPatch struct {
	Name       *string
	Location   *string
	Capacity   *int
	Facilities *[]string
}
