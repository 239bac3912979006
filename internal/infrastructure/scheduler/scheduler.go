// Package scheduler runs periodic housekeeping for in-memory state.
package scheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"motiv8/pkg/logger"
)

type Scheduler struct {
	sched gocron.Scheduler
	log   logger.Logger
}

func New(log logger.Logger) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{sched: sched, log: log}, nil
}

// Every registers task to run at a fixed interval. Overlapping runs of the
// same task are skipped.
func (s *Scheduler) Every(name string, interval time.Duration, task func()) error {
	_, err := s.sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			start := time.Now()
			task()
			s.log.Debug("job finished", "job", name, "took", time.Since(start))
		}),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}

	return nil
}

func (s *Scheduler) Start() {
	s.sched.Start()
}

func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}
