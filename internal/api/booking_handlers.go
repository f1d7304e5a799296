package api

import (
	"encoding/json"
	"net/http"
	"time"

	"campusrooms/internal/booking"
	"campusrooms/internal/entities"
	apperrors "campusrooms/internal/errors"
	"campusrooms/internal/service"

	"github.com/gorilla/mux"
)

type BookingHandler struct {
	Facade *booking.Facade
	Sender *service.SenderService
}

func NewBookingHandler(facade *booking.Facade, sender *service.SenderService) *BookingHandler {
	return &BookingHandler{Facade: facade, Sender: sender}
}

func writeErr(w http.ResponseWriter, err error) {
	httpErr := apperrors.FromEngine(err)
	http.Error(w, httpErr.Message, httpErr.Code)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req AvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	available, err := h.Facade.CheckAvailability(req.RoomID, req.StartTime, req.EndTime)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, AvailabilityResponse{Available: available})
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	by := booking.Principal{ID: req.RequesterID}
	b, err := h.Facade.BookRoom(r.Context(), by, req.RoomID, req.StartTime, req.EndTime, req.Attendees)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.notify(b, req.Contact, "confirmed")
	writeJSON(w, b)
}

// HoldBooking places a tentative reservation that must be confirmed before
// the hold TTL runs out.
func (h *BookingHandler) HoldBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	by := booking.Principal{ID: req.RequesterID}
	b, err := h.Facade.HoldRoom(r.Context(), by, req.RoomID, req.StartTime, req.EndTime, req.Attendees)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, b)
}

func (h *BookingHandler) ConfirmHold(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req ConfirmHoldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	by := booking.Principal{ID: req.RequesterID}
	b, err := h.Facade.ConfirmHold(r.Context(), by, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.notify(b, req.Contact, "confirmed")
	writeJSON(w, b)
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req CancelBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	by := booking.Principal{ID: req.RequesterID}
	b, err := h.Facade.CancelReservation(r.Context(), by, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.notify(b, req.Contact, "cancelled")
	writeJSON(w, map[string]string{"message": "Booking cancelled"})
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	b, err := h.Facade.GetBooking(id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, b)
}

func (h *BookingHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Facade.ListRooms())
}

func (h *BookingHandler) ListRoomBookings(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["id"]
	from, to, err := parseRange(r)
	if err != nil {
		http.Error(w, "Invalid time range", http.StatusBadRequest)
		return
	}
	bookings, err := h.Facade.ListBookings(roomID, from, to)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, bookings)
}

func parseRange(r *http.Request) (time.Time, time.Time, error) {
	var from, to time.Time
	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return from, to, err
		}
		from = parsed
	}
	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return from, to, err
		}
		to = parsed
	}
	return from, to, nil
}

func (h *BookingHandler) notify(b *booking.Booking, contact entities.Contact, status string) {
	if h.Sender == nil || (contact.Email == "" && contact.Phone == "") {
		return
	}
	room, err := h.Facade.GetRoom(b.RoomID)
	if err != nil {
		return
	}
	h.Sender.SendBookingEmail(b, room, contact, status)
	h.Sender.SendBookingSMS(b, room, contact, status)
}
