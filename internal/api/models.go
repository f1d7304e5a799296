package api

import (
	"time"

	"campusrooms/internal/entities"
)

// Availability
type AvailabilityRequest struct {
	RoomID    string    `json:"room_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time,omitempty"` // zero means a point-in-time query
}
type AvailabilityResponse struct {
	Available bool   `json:"available"`
	Message   string `json:"message,omitempty"`
}

// Booking
type CreateBookingRequest struct {
	RoomID      string           `json:"room_id"`
	RequesterID string           `json:"requester_id"`
	StartTime   time.Time        `json:"start_time"`
	EndTime     time.Time        `json:"end_time"`
	Attendees   int              `json:"attendees,omitempty"`
	Contact     entities.Contact `json:"contact,omitempty"`
}
type CancelBookingRequest struct {
	RequesterID string           `json:"requester_id"`
	Contact     entities.Contact `json:"contact,omitempty"`
}
type ConfirmHoldRequest struct {
	RequesterID string           `json:"requester_id"`
	Contact     entities.Contact `json:"contact,omitempty"`
}

// Rooms (admin)
type CreateRoomRequest struct {
	Name         string   `json:"name"`
	Location     string   `json:"location"`
	Capacity     int      `json:"capacity"`
	Facilities   []string `json:"facilities,omitempty"`
	Availability string   `json:"availability,omitempty"`
}
type UpdateRoomRequest struct {
	Name       *string   `json:"name,omitempty"`
	Location   *string   `json:"location,omitempty"`
	Capacity   *int      `json:"capacity,omitempty"`
	Facilities *[]string `json:"facilities,omitempty"`
}
type SetAvailabilityRequest struct {
	Availability string `json:"availability"`
}
