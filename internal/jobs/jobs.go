package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const taskTimeout = 30 * time.Second

// Task is a named background job run on a cron schedule
type Task struct {
	Name string
	Spec string
	Run  func(ctx context.Context) error
}

// Start schedules every task with a non-empty spec and starts the scheduler.
// The caller stops it with Stop on shutdown.
func Start(tasks []Task, logger *zap.Logger) (*cron.Cron, error) {
	c := cron.New()

	for _, task := range tasks {
		if task.Spec == "" {
			logger.Info("background task disabled", zap.String("task", task.Name))
			continue
		}

		task := task
		_, err := c.AddFunc(task.Spec, func() {
			runTask(task, logger)
		})
		if err != nil {
			return nil, fmt.Errorf("jobs: failed to schedule %s (%q): %w", task.Name, task.Spec, err)
		}
		logger.Info("background task scheduled", zap.String("task", task.Name), zap.String("spec", task.Spec))
	}

	c.Start()
	return c, nil
}

// Stop halts the scheduler and waits for running tasks or ctx
func Stop(ctx context.Context, c *cron.Cron) {
	if c == nil {
		return
	}
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
}

func runTask(task Task, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
	defer cancel()

	start := time.Now()
	if err := task.Run(ctx); err != nil {
		logger.Warn("background task failed", zap.String("task", task.Name), zap.Error(err))
		return
	}
	logger.Debug("background task done", zap.String("task", task.Name), zap.Duration("took", time.Since(start)))
}
