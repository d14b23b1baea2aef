// Package reaper periodically closes rooms that were opened and then left empty.
package reaper

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const runTimeout = time.Minute

// RoomCloser closes stale empty rooms
type RoomCloser interface {
	CloseAbandonedRooms(ctx context.Context, olderThan time.Duration) (int, error)
}

// Reaper runs the stale room sweep on a cron schedule
type Reaper struct {
	cron       *cron.Cron
	closer     RoomCloser
	staleAfter time.Duration
	ctx        context.Context
}

// New schedules the sweep. schedule accepts standard cron specs and
// descriptors such as "@hourly" or "@every 15m".
func New(closer RoomCloser, schedule string, staleAfter time.Duration) (*Reaper, error) {
	logger := cron.PrintfLogger(&log.Logger)
	r := &Reaper{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		closer:     closer,
		staleAfter: staleAfter,
		ctx:        context.Background(),
	}

	if _, err := r.cron.AddFunc(schedule, r.run); err != nil {
		return nil, fmt.Errorf("failed to schedule reaper %q: %w", schedule, err)
	}
	return r, nil
}

// Start runs the schedule until ctx is cancelled
func (r *Reaper) Start(ctx context.Context) {
	r.ctx = ctx
	r.cron.Start()
	log.Info().Dur("stale_after", r.staleAfter).Msg("room reaper started")

	go func() {
		<-ctx.Done()
		<-r.cron.Stop().Done()
		log.Info().Msg("room reaper stopped")
	}()
}

// RunOnce performs a single sweep
func (r *Reaper) RunOnce(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	closed, err := r.closer.CloseAbandonedRooms(ctx, r.staleAfter)
	if err != nil {
		return 0, fmt.Errorf("failed to close abandoned rooms: %w", err)
	}
	return closed, nil
}

func (r *Reaper) run() {
	closed, err := r.RunOnce(r.ctx)
	if err != nil {
		log.Error().Err(err).Msg("room reaper run failed")
		return
	}
	log.Debug().Int("closed", closed).Msg("room reaper run complete")
}
