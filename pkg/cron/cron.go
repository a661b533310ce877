// Package cron schedules the periodic jobs of revd.
package cron

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/debugflow/revd/pkg/jobs"
	"github.com/robfig/cron/v3"
)

// Scheduler is a cron-like job scheduler.
type Scheduler struct {
	*cron.Cron
	logger *log.Logger
}

// cronLogger is a wrapper around the logger to make it compatible with the
// cron logger.
type cronLogger struct {
	logger *log.Logger
}

// Info logs routine messages about cron's operation.
func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

// Error logs an error condition.
func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "err", err)...)
}

// NewScheduler returns a new Cron. Panics in jobs are recovered and
// logged.
func NewScheduler(ctx context.Context) *Scheduler {
	logger := log.FromContext(ctx).WithPrefix("cron")
	clogger := cronLogger{logger}
	return &Scheduler{
		Cron: cron.New(
			cron.WithLogger(clogger),
			cron.WithChain(cron.Recover(clogger), cron.SkipIfStillRunning(clogger)),
		),
		logger: logger,
	}
}

// Shutdown gracefully shuts down the Scheduler, waiting for running jobs
// up to 30 seconds.
func (s *Scheduler) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	select {
	case <-s.Cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("timed out waiting for running jobs")
	}
}

// Start starts the Scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
}

// AddFunc adds a job to the Scheduler.
func (s *Scheduler) AddFunc(spec string, fn func()) (int, error) {
	id, err := s.Cron.AddFunc(spec, fn)
	return int(id), err
}

// Remove removes a job from the Scheduler.
func (s *Scheduler) Remove(id int) {
	s.Cron.Remove(cron.EntryID(id))
}

// AddJobs schedules every registered job with a non-empty spec.
func (s *Scheduler) AddJobs(ctx context.Context) {
	for name, j := range jobs.List() {
		spec := j.Runner.Spec(ctx)
		if spec == "" {
			s.logger.Debug("job disabled", "job", name)
			continue
		}
		id, err := s.AddFunc(spec, j.Runner.Func(ctx))
		if err != nil {
			s.logger.Warn("error adding cron job", "job", name, "err", err)
			continue
		}
		j.ID = id
		s.logger.Debug("job scheduled", "job", name, "spec", spec)
	}
}

// RemoveJobs unschedules every registered job.
func (s *Scheduler) RemoveJobs() {
	for _, j := range jobs.List() {
		if j.ID != 0 {
			s.Remove(j.ID)
			j.ID = 0
		}
	}
}
