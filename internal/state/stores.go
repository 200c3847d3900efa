package state

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"politrades/internal/logging"
	"politrades/internal/storage"
)

// Options configure the store container.
type Options struct {
	// Backend is where persisted stores are written; nil keeps everything in memory.
	Backend            storage.Backend
	Clock              Clock
	Observer           Observer
	ToastDuration      time.Duration
	ManualToastDismiss bool
	WriteTimeout       time.Duration
}

func (o Options) observer() Observer {
	if o.Observer == nil {
		return noopObserver{}
	}
	return o.Observer
}

func (o Options) clock() Clock {
	if o.Clock == nil {
		return SystemClock()
	}
	return o.Clock
}

// Stores is the application-owned state container passed to every consumer.
type Stores struct {
	Preferences *PreferenceStore
	Auth        *AuthStore
	Watchlist   *WatchlistStore
	UI          *UIStore
}

// Open hydrates every persisted store. Hydration never fails; unreadable
// state falls back to defaults.
func Open(ctx context.Context, opts Options, logger zerolog.Logger) *Stores {
	logger = logging.Component(logger, "state")

	s := &Stores{
		Preferences: newPreferenceStore(ctx, opts.Backend, opts, logger),
		Auth:        newAuthStore(ctx, opts.Backend, opts, logger),
		Watchlist:   newWatchlistStore(ctx, opts.Backend, opts, logger),
		UI:          newUIStore(opts),
	}
	s.UI.SetPremium(s.Auth.IsPremium(opts.clock().Now()))

	logger.Debug().
		Bool("onboarded", s.Preferences.Snapshot().HasCompletedOnboarding).
		Int("followed_politicians", len(s.Watchlist.Snapshot().FollowedPoliticians)).
		Msg("stores hydrated")
	return s
}

// Flush synchronously writes any pending state.
func (s *Stores) Flush(ctx context.Context) error {
	return errors.Join(
		s.Preferences.flush(ctx),
		s.Auth.flush(ctx),
		s.Watchlist.flush(ctx),
	)
}

// Close stops background writers after a final flush and cancels UI timers.
func (s *Stores) Close(ctx context.Context) error {
	s.UI.Stop()
	return errors.Join(
		s.Preferences.close(ctx),
		s.Auth.close(ctx),
		s.Watchlist.close(ctx),
	)
}
