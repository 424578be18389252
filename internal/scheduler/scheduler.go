package scheduler

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the digest pipeline on a cron spec.
type Scheduler struct {
	cron *cron.Cron
	run  func()
}

func New(spec string, run func()) (*Scheduler, error) {
	c := cron.New()
	s := &Scheduler{cron: c, run: run}
	if _, err := c.AddFunc(spec, s.runOnce); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for a running job to finish before returning.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RunOnce triggers a single run outside the schedule.
func (s *Scheduler) RunOnce() {
	s.runOnce()
}

func (s *Scheduler) runOnce() {
	slog.Info("scheduler: starting digest run")
	s.run()
	slog.Info("scheduler: digest run finished")
}
