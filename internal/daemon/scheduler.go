package daemon

import (
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/makesite/internal/foundation/errors"
)

// Scheduler wraps a gocron scheduler. Jobs run in singleton mode: a run that
// comes due while the previous one is still going is rescheduled.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler creates a stopped scheduler.
func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.RuntimeError("failed to create scheduler").WithCause(err).Build()
	}
	return &Scheduler{scheduler: s}, nil
}

// ScheduleEvery runs task every interval and returns the job id.
func (s *Scheduler) ScheduleEvery(name string, interval time.Duration, task func()) (string, error) {
	if interval <= 0 {
		return "", errors.ValidationError("schedule interval must be positive").
			WithContext("name", interval.String()).
			Build()
	}
	return s.schedule(name, gocron.DurationJob(interval), task)
}

// ScheduleCron runs task on a five field cron expression and returns the job id.
func (s *Scheduler) ScheduleCron(name, expr string, task func()) (string, error) {
	return s.schedule(name, gocron.CronJob(expr, false), task)
}

func (s *Scheduler) schedule(name string, def gocron.JobDefinition, task func()) (string, error) {
	job, err := s.scheduler.NewJob(
		def,
		gocron.NewTask(task),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", errors.ConfigError("invalid schedule").WithCause(err).WithContext("name", name).Build()
	}
	return job.ID().String(), nil
}

// NextRun returns the next run time of the first job, or the zero time.
func (s *Scheduler) NextRun() time.Time {
	for _, j := range s.scheduler.Jobs() {
		if t, err := j.NextRun(); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Start begins running jobs.
func (s *Scheduler) Start() { s.scheduler.Start() }

// Stop waits for running jobs and shuts the scheduler down.
func (s *Scheduler) Stop() error {
	if err := s.scheduler.Shutdown(); err != nil {
		return errors.RuntimeError("scheduler shutdown failed").WithCause(err).Build()
	}
	return nil
}
