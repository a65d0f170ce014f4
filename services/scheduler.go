package services

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartExpiryScheduler sweeps for lapsed subscriptions every hour.
func (s *SubscriptionService) StartExpiryScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			expired, err := s.ExpireOverdue(context.Background(), time.Now())
			if err != nil {
				log.Printf("[Scheduler] subscription expiry sweep failed: %v", err)
				return
			}
			if expired > 0 {
				log.Printf("[Scheduler] marked %d subscription(s) inactive", expired)
			}
		}),
	)
}
