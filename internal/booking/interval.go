package booking

import (
	"fmt"
	"time"
)

// Interval is a half-open time range [Start, End). A booking ending at 11:00
// does not collide with one starting at 11:00.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewInterval(start, end time.Time) (Interval, error) {
	if start.IsZero() || end.IsZero() {
		return Interval{}, fmt.Errorf("%w: start and end are required", ErrValidation)
	}
	if !start.Before(end) {
		return Interval{}, fmt.Errorf("%w: start must be before end", ErrValidation)
	}
	return Interval{Start: start.UTC(), End: end.UTC()}, nil
}

// At is the degenerate interval for a point-in-time query.
func At(t time.Time) Interval {
	return Interval{Start: t.UTC(), End: t.UTC().Add(time.Nanosecond)}
}

func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && t.Before(iv.End)
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%s, %s)", iv.Start.Format(time.RFC3339), iv.End.Format(time.RFC3339))
}
