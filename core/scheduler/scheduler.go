package scheduler

import (
	"context"
	"fmt"

	"bookstack/core/logger"

	"github.com/robfig/cron/v3"
)

// CronTask is a named scheduled job.
type CronTask struct {
	Name        string
	Description string
	CronExpr    string
	Handler     func(ctx context.Context) error
	Enabled     bool
}

// CronScheduler runs registered tasks on their cron schedules.
type CronScheduler struct {
	cron   *cron.Cron
	logger logger.Logger
	tasks  []*CronTask
}

// NewCronScheduler creates a stopped scheduler; call Start after registering
// tasks.
func NewCronScheduler(log logger.Logger) *CronScheduler {
	return &CronScheduler{
		cron:   cron.New(),
		logger: log,
	}
}

// RegisterTask adds a task to the schedule. Disabled tasks are recorded but
// never run.
func (s *CronScheduler) RegisterTask(task *CronTask) error {
	if task.Name == "" {
		return fmt.Errorf("task name is required")
	}
	s.tasks = append(s.tasks, task)

	if !task.Enabled {
		return nil
	}

	_, err := s.cron.AddFunc(task.CronExpr, func() {
		if err := task.Handler(context.Background()); err != nil {
			s.logger.Error("scheduled task failed",
				logger.String("task", task.Name),
				logger.String("error", err.Error()))
			return
		}
		s.logger.Debug("scheduled task completed", logger.String("task", task.Name))
	})
	if err != nil {
		return fmt.Errorf("invalid cron expression %q for task %s: %w", task.CronExpr, task.Name, err)
	}
	return nil
}

// Start begins running scheduled tasks in their own goroutine.
func (s *CronScheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", logger.Int("tasks", len(s.tasks)))
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *CronScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
