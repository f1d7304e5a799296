package booking

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry owns room definitions. Rooms are only ever created and updated;
// a room with bookings is retired by setting its availability to disabled,
// never deleted.
type Registry struct {
	store Store
	now   func() time.Time

	mu    sync.RWMutex
	rooms map[string]*Room
	order []string // ids in creation order
}

func NewRegistry(store Store) *Registry {
	if store == nil {
		store = NullStore{}
	}
	return &Registry{
		store: store,
		now:   time.Now,
		rooms: make(map[string]*Room),
	}
}

// Hydrate seeds the registry from previously persisted rooms, oldest first.
func (r *Registry) Hydrate(rooms []*Room) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, room := range rooms {
		cp := cloneRoom(room)
		r.rooms[cp.ID] = cp
		r.order = append(r.order, cp.ID)
	}
}

func validateSpec(spec RoomSpec) error {
	if strings.TrimSpace(spec.Name) == "" {
		return fmt.Errorf("%w: room name is required", ErrValidation)
	}
	if strings.TrimSpace(spec.Location) == "" {
		return fmt.Errorf("%w: room location is required", ErrValidation)
	}
	if spec.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive", ErrValidation)
	}
	if spec.Availability != "" && !spec.Availability.Valid() {
		return fmt.Errorf("%w: unknown availability %q", ErrValidation, spec.Availability)
	}
	return nil
}

func (r *Registry) CreateRoom(ctx context.Context, spec RoomSpec) (*Room, error) {
	if err := validateSpec(spec); err != nil {
		return nil, err
	}
	availability := spec.Availability
	if availability == "" {
		availability = AdminAvailable
	}

	now := r.now().UTC()
	room := &Room{
		ID:           uuid.NewString(),
		Name:         spec.Name,
		Location:     spec.Location,
		Capacity:     spec.Capacity,
		Facilities:   append([]string(nil), spec.Facilities...),
		Availability: availability,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.store.SaveRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("persist room: %w", err)
	}
	r.rooms[room.ID] = room
	r.order = append(r.order, room.ID)
	return cloneRoom(room), nil
}

// UpdateRoom applies a partial update and re-validates the result.
func (r *Registry) UpdateRoom(ctx context.Context, id string, patch RoomPatch) (*Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.rooms[id]
	if !ok {
		return nil, fmt.Errorf("%w: room %s", ErrNotFound, id)
	}

	updated := cloneRoom(current)
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.Location != nil {
		updated.Location = *patch.Location
	}
	if patch.Capacity != nil {
		updated.Capacity = *patch.Capacity
	}
	if patch.Facilities != nil {
		updated.Facilities = append([]string(nil), (*patch.Facilities)...)
	}
	if err := validateSpec(RoomSpec{
		Name:         updated.Name,
		Location:     updated.Location,
		Capacity:     updated.Capacity,
		Availability: updated.Availability,
	}); err != nil {
		return nil, err
	}
	updated.UpdatedAt = r.now().UTC()

	if err := r.store.SaveRoom(ctx, updated); err != nil {
		return nil, fmt.Errorf("persist room: %w", err)
	}
	r.rooms[id] = updated
	return cloneRoom(updated), nil
}

func (r *Registry) SetAdministrativeAvailability(ctx context.Context, id string, value AdminAvailability) (*Room, error) {
	if !value.Valid() {
		return nil, fmt.Errorf("%w: unknown availability %q", ErrValidation, value)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.rooms[id]
	if !ok {
		return nil, fmt.Errorf("%w: room %s", ErrNotFound, id)
	}
	updated := cloneRoom(current)
	updated.Availability = value
	updated.UpdatedAt = r.now().UTC()

	if err := r.store.SaveRoom(ctx, updated); err != nil {
		return nil, fmt.Errorf("persist room: %w", err)
	}
	r.rooms[id] = updated
	return cloneRoom(updated), nil
}

func (r *Registry) GetRoom(id string) (*Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[id]
	if !ok {
		return nil, fmt.Errorf("%w: room %s", ErrNotFound, id)
	}
	return cloneRoom(room), nil
}

// ListRooms returns all rooms in creation order.
func (r *Registry) ListRooms() []*Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Room, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, cloneRoom(r.rooms[id]))
	}
	return out
}

func cloneRoom(room *Room) *Room {
	cp := *room
	cp.Facilities = append([]string(nil), room.Facilities...)
	return &cp
}
