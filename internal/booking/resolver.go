package booking

import "time"

// Resolver derives a room's availability from the administrative flag and the
// confirmed bookings on the ledger. It holds no state of its own; every query
// reads the current registry and ledger state.
//
// The administrative flag can force a room closed regardless of bookings, but
// cannot force it open during a confirmed booking.
type Resolver struct {
	registry *Registry
	ledger   *Ledger
}

func NewResolver(registry *Registry, ledger *Ledger) *Resolver {
	return &Resolver{registry: registry, ledger: ledger}
}

// IsAvailable reports whether the room is free for the whole interval.
func (r *Resolver) IsAvailable(roomID string, iv Interval) (bool, error) {
	room, err := r.registry.GetRoom(roomID)
	if err != nil {
		return false, err
	}
	if room.Availability != AdminAvailable {
		return false, nil
	}
	return !r.ledger.HasOverlap(roomID, iv, StatusConfirmed), nil
}

// IsAvailableAt is the point-in-time form of IsAvailable.
func (r *Resolver) IsAvailableAt(roomID string, t time.Time) (bool, error) {
	return r.IsAvailable(roomID, At(t))
}
