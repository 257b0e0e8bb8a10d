package client

import (
	"context"
	"sync"
	"time"

	"github.com/retailops/loadboard/internal/infrastructure/logger"
)

// Revalidator refreshes the active key of a cache on a schedule
type Revalidator struct {
	cache     *Cache
	scheduler Scheduler
	interval  time.Duration
	active    func() Key
	onUpdate  func(Snapshot)
	logger    *logger.Logger
}

// NewRevalidator creates a revalidator. active is asked for the key to
// refresh on every tick; onUpdate, if set, receives each result.
func NewRevalidator(cache *Cache, scheduler Scheduler, interval time.Duration, active func() Key, onUpdate func(Snapshot), log *logger.Logger) *Revalidator {
	if log == nil {
		log = logger.NewNop()
	}
	return &Revalidator{
		cache:     cache,
		scheduler: scheduler,
		interval:  interval,
		active:    active,
		onUpdate:  onUpdate,
		logger:    log.WithComponent("revalidator"),
	}
}

// Start schedules periodic refreshes until ctx is done or the returned
// stop func is called.
func (r *Revalidator) Start(ctx context.Context) (func(), error) {
	unschedule, err := r.scheduler.Every(r.interval, func() {
		if ctx.Err() != nil {
			return
		}
		snap := r.cache.Revalidate(ctx, r.active())
		if r.onUpdate != nil {
			r.onUpdate(snap)
		}
	})
	if err != nil {
		return nil, err
	}

	r.logger.Infow("Background refresh started", "interval", r.interval.String())

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-ctx.Done():
		case <-done:
		}
		unschedule()
		r.logger.Debug("Background refresh stopped")
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
		<-stopped
	}, nil
}
