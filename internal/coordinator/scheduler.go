package coordinator

import (
	"time"

	"github.com/robfig/cron/v3"
)

// Handle identifies a scheduled task for cancellation
type Handle int

// Scheduler abstracts the host timer. The coordinator never owns the timer
// itself; the daemon injects a real scheduler and tests inject a stub.
type Scheduler interface {
	ScheduleEvery(interval time.Duration, task func()) (Handle, error)
	Cancel(handle Handle)
}

// CronScheduler implements Scheduler on a robfig/cron runner
type CronScheduler struct {
	cron *cron.Cron
}

// NewCronScheduler creates and starts a cron-backed scheduler
func NewCronScheduler() *CronScheduler {
	c := cron.New()
	c.Start()
	return &CronScheduler{cron: c}
}

// ScheduleEvery runs task at a fixed interval
func (s *CronScheduler) ScheduleEvery(interval time.Duration, task func()) (Handle, error) {
	id := s.cron.Schedule(cron.Every(interval), cron.FuncJob(task))
	return Handle(id), nil
}

// Cancel removes a scheduled task
func (s *CronScheduler) Cancel(handle Handle) {
	s.cron.Remove(cron.EntryID(handle))
}

// Stop shuts the scheduler down; running tasks finish
func (s *CronScheduler) Stop() {
	s.cron.Stop()
}
