package api

import (
	"encoding/json"
	"net/http"

	"campusrooms/internal/auth"
	"campusrooms/internal/booking"

	"github.com/gorilla/mux"
)

// AdminHandler serves the room-administration and reporting endpoints behind
// the admin auth middleware.
type AdminHandler struct {
	Facade *booking.Facade
}

func NewAdminHandler(facade *booking.Facade) *AdminHandler {
	return &AdminHandler{Facade: facade}
}

func principal(r *http.Request) booking.Principal {
	p, _ := auth.PrincipalFromContext(r.Context())
	return p
}

func (h *AdminHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	room, err := h.Facade.CreateRoom(r.Context(), principal(r), booking.RoomSpec{
		Name:         req.Name,
		Location:     req.Location,
		Capacity:     req.Capacity,
		Facilities:   req.Facilities,
		Availability: booking.AdminAvailability(req.Availability),
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, room)
}

func (h *AdminHandler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req UpdateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	room, err := h.Facade.UpdateRoom(r.Context(), principal(r), id, booking.RoomPatch{
		Name:       req.Name,
		Location:   req.Location,
		Capacity:   req.Capacity,
		Facilities: req.Facilities,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, room)
}

func (h *AdminHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req SetAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	room, err := h.Facade.SetAdministrativeAvailability(r.Context(), principal(r), id, booking.AdminAvailability(req.Availability))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, room)
}

// ListBookings feeds the dashboard. Without a room_id it walks every room in
// creation order; the dashboard derives its aggregate counts from this and
// from the rooms listing.
func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room_id")
	from, to, err := parseRange(r)
	if err != nil {
		http.Error(w, "Invalid time range", http.StatusBadRequest)
		return
	}

	var roomIDs []string
	if roomID != "" {
		roomIDs = []string{roomID}
	} else {
		for _, room := range h.Facade.ListRooms() {
			roomIDs = append(roomIDs, room.ID)
		}
	}

	bookings := make([]*booking.Booking, 0)
	for _, id := range roomIDs {
		list, err := h.Facade.ListBookings(id, from, to)
		if err != nil {
			writeErr(w, err)
			return
		}
		bookings = append(bookings, list...)
	}
	writeJSON(w, bookings)
}

// AdminCancelBooking cancels on behalf of any requester using the admin
// capability carried by the principal.
func (h *AdminHandler) AdminCancelBooking(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	b, err := h.Facade.CancelReservation(r.Context(), principal(r), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, b)
}
