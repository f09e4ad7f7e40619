package jobs

import (
	"context"

	"bookstack/core/logger"
	"bookstack/core/scheduler"
)

// CacheSweeper removes expired entries from a cache.
type CacheSweeper interface {
	Sweep() int
}

// SetupScheduler registers all scheduled jobs with the cron scheduler.
func SetupScheduler(sweeper CacheSweeper, log logger.Logger) *scheduler.CronScheduler {
	cronScheduler := scheduler.NewCronScheduler(log)

	sweepTask := &scheduler.CronTask{
		Name:        "search_cache_sweep",
		Description: "Drop expired search result pages so memory is reclaimed between searches",
		CronExpr:    "*/5 * * * *",
		Handler: func(ctx context.Context) error {
			if removed := sweeper.Sweep(); removed > 0 {
				log.Debug("swept expired search cache entries", logger.Int("removed", removed))
			}
			return nil
		},
		Enabled: true,
	}

	if err := cronScheduler.RegisterTask(sweepTask); err != nil {
		log.Error("failed to register cache sweep job", logger.String("error", err.Error()))
	}

	return cronScheduler
}
