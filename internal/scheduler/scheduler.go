package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"politrades/internal/logging"
)

// ErrStop ends Run cleanly when returned from a TickFunc.
var ErrStop = errors.New("scheduler: stop")

// TickFunc is invoked on every interval. Other errors are logged and the
// loop continues.
type TickFunc func(ctx context.Context, bucket time.Time) error

// Options tune scheduler behaviour.
type Options struct {
	Interval     time.Duration
	AlignToStart bool
	StartupDelay time.Duration
	// RunImmediately fires one tick before waiting for the first interval.
	RunImmediately bool
}

// Scheduler drives periodic execution of polling jobs.
type Scheduler struct {
	opts   Options
	logger zerolog.Logger
}

// New constructs a Scheduler instance.
func New(opts Options, logger zerolog.Logger) *Scheduler {
	if opts.Interval <= 0 {
		panic("scheduler interval must be positive")
	}
	return &Scheduler{opts: opts, logger: logging.Component(logger, "scheduler")}
}

// Run blocks, invoking tick at each interval until ctx is cancelled or tick
// returns ErrStop.
func (s *Scheduler) Run(ctx context.Context, tick TickFunc) error {
	if s.opts.StartupDelay > 0 {
		timer := time.NewTimer(s.opts.StartupDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	if s.opts.RunImmediately {
		if stop := s.fire(ctx, s.bucketStart(time.Now().UTC()), tick); stop {
			return nil
		}
	}

	next := s.nextTick(time.Now().UTC())
	for {
		delay := time.Until(next)
		if delay < 0 {
			next = s.nextTick(time.Now().UTC())
			delay = time.Until(next)
		}

		timer := time.NewTimer(delay)
		s.logger.Debug().Time("next_tick", next).Msg("waiting for next tick")

		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			timer.Stop()
		}

		if stop := s.fire(ctx, s.bucketStart(next), tick); stop {
			return nil
		}

		next = next.Add(s.opts.Interval)
	}
}

func (s *Scheduler) fire(ctx context.Context, bucket time.Time, tick TickFunc) bool {
	s.logger.Debug().Time("bucket", bucket).Msg("executing scheduled tick")
	err := tick(ctx, bucket)
	if errors.Is(err, ErrStop) {
		return true
	}
	if err != nil {
		s.logger.Error().Err(err).Time("bucket", bucket).Msg("tick execution failed")
	}
	return false
}

func (s *Scheduler) nextTick(now time.Time) time.Time {
	if !s.opts.AlignToStart {
		return now.Add(s.opts.Interval)
	}
	bucket := now.Truncate(s.opts.Interval)
	if !bucket.After(now) {
		bucket = bucket.Add(s.opts.Interval)
	}
	return bucket
}

func (s *Scheduler) bucketStart(t time.Time) time.Time {
	if !s.opts.AlignToStart {
		return t
	}
	return t.Truncate(s.opts.Interval)
}
