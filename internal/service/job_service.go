package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"campusrooms/internal/booking"
)

type JobService struct {
	Facade  *booking.Facade
	HoldTTL time.Duration
}

func NewJobService(facade *booking.Facade, holdTTL time.Duration) *JobService {
	return &JobService{Facade: facade, HoldTTL: holdTTL}
}

// ExpireStaleHolds cancels pending holds older than the configured TTL. Holds
// block the room's interval like confirmed bookings do, so stale ones must be
// released or they starve legitimate requests.
func (s *JobService) ExpireStaleHolds(ctx context.Context) error {
	log.Println("Cron Job: Checking for stale holds to expire...")

	cutoff := time.Now().UTC().Add(-s.HoldTTL)
	expired, err := s.Facade.ExpireHolds(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("cron job: failed to expire stale holds: %w", err)
	}

	if len(expired) == 0 {
		log.Println("Cron Job: No stale holds found.")
		return nil
	}

	log.Printf("Cron Job: Expired %d stale holds.", len(expired))
	return nil
}
