// services/scheduler.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartRatingReconciler recomputes listing ratings from comments on a fixed interval.
// The caller owns the returned scheduler and must Shutdown it.
func (s *GameService) StartRatingReconciler(interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			n, err := s.RecomputeRatings(ctx)
			if err != nil {
				slog.Error("rating reconcile failed", "error", err)
				return
			}
			slog.Info("ratings reconciled", "games", n)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to schedule rating reconcile: %w", err)
	}

	sched.Start()
	return sched, nil
}
