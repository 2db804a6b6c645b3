package store

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rolegate/bot/pkg/logger"
)

// Janitor runs the retention sweep on a cron schedule.
type Janitor struct {
	store    *Store
	schedule string
	cron     *cron.Cron
	log      *logger.Logger
}

// NewJanitor creates a janitor for the given store. An empty schedule
// defaults to a daily sweep.
func NewJanitor(s *Store, schedule string) *Janitor {
	if schedule == "" {
		schedule = "@daily"
	}
	return &Janitor{
		store:    s,
		schedule: schedule,
		cron:     cron.New(),
		log:      logger.Global().WithComponent("store"),
	}
}

// Start schedules the sweep and begins running it
func (j *Janitor) Start() error {
	_, err := j.cron.AddFunc(j.schedule, j.sweep)
	if err != nil {
		return err
	}
	j.cron.Start()
	j.log.Info("retention janitor started", "schedule", j.schedule)
	return nil
}

// Stop stops the janitor, waiting for a running sweep to finish
func (j *Janitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
}

func (j *Janitor) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := j.store.Cleanup(ctx)
	if err != nil {
		j.log.Error("retention sweep failed", "error", err)
		return
	}
	if removed > 0 {
		j.log.Info("retention sweep removed entries", "count", removed)
	}
}
