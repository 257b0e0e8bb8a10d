package client

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs jobs on a fixed interval
type Scheduler interface {
	// Every schedules job and returns a func that unschedules it.
	Every(interval time.Duration, job func()) (func(), error)
}

// CronScheduler schedules jobs on a robfig/cron runner
type CronScheduler struct {
	cron *cron.Cron
}

// NewCronScheduler creates a started scheduler
func NewCronScheduler() *CronScheduler {
	c := cron.New(cron.WithSeconds())
	c.Start()
	return &CronScheduler{cron: c}
}

// Every implements Scheduler
func (s *CronScheduler) Every(interval time.Duration, job func()) (func(), error) {
	if interval < time.Second {
		return nil, fmt.Errorf("refresh interval %s is below one second", interval)
	}

	id, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), job)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule job: %w", err)
	}
	return func() { s.cron.Remove(id) }, nil
}

// Stop stops the runner and waits for running jobs
func (s *CronScheduler) Stop() {
	<-s.cron.Stop().Done()
}

// ManualScheduler fires jobs only when Advance moves its clock. Jobs run
// synchronously on the caller's goroutine.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Time
	nextID int
	jobs   map[int]*manualJob
}

type manualJob struct {
	interval time.Duration
	next     time.Time
	run      func()
}

// NewManualScheduler creates a scheduler whose clock starts at start
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start, jobs: make(map[int]*manualJob)}
}

// Every implements Scheduler
func (s *ManualScheduler) Every(interval time.Duration, job func()) (func(), error) {
	if interval <= 0 {
		return nil, fmt.Errorf("invalid interval %s", interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.jobs[id] = &manualJob{interval: interval, next: s.now.Add(interval), run: job}

	return func() {
		s.mu.Lock()
		delete(s.jobs, id)
		s.mu.Unlock()
	}, nil
}

// Advance moves the clock by d and runs every job that came due, once per
// elapsed interval.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	for {
		s.mu.Lock()
		job := s.nextDue(target)
		if job == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		s.now = job.next
		job.next = job.next.Add(job.interval)
		run := job.run
		s.mu.Unlock()

		run()
	}
}

// Len reports how many jobs are scheduled
func (s *ManualScheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

func (s *ManualScheduler) nextDue(target time.Time) *manualJob {
	ids := make([]int, 0, len(s.jobs))
	for id := range s.jobs {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var best *manualJob
	for _, id := range ids {
		job := s.jobs[id]
		if job.next.After(target) {
			continue
		}
		if best == nil || job.next.Before(best.next) {
			best = job
		}
	}
	return best
}
