package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"

	"pet-medication-reminder/internal/observability"
	"pet-medication-reminder/internal/reminder"
)

const jobName = "daily-sweep"

type Sweeper interface {
	Sweep(ctx context.Context) (reminder.SweepResult, error)
}

// Start registers the daily sweep on crontab (5 fields, evaluated in loc) and
// starts the scheduler. Callers stop it with Shutdown.
func Start(ctx context.Context, sw Sweeper, crontab string, loc *time.Location) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, err
	}

	_, err = s.NewJob(
		gocron.CronJob(crontab, false),
		gocron.NewTask(func() { Run(ctx, sw) }),
		gocron.WithName(jobName),
		// a slow sweep is never overlapped by the next trigger
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, err
	}

	s.Start()
	return s, nil
}

// Run performs one sweep and logs its outcome.
func Run(ctx context.Context, sw Sweeper) {
	log := observability.LoggerFromContext(ctx)

	res, err := sw.Sweep(ctx)
	if err != nil {
		log.Error("sweep failed", "error", err)
	}
	log.Info("sweep finished",
		"date", reminder.FormatDate(res.Date),
		"notified", res.Notified,
		"subscribers", res.Subscribers,
		"delivered", res.Delivered,
		"failed", len(res.Failures))
}
