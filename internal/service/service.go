package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"politrades/internal/alerting"
	"politrades/internal/config"
	"politrades/internal/logging"
	"politrades/internal/metrics"
	"politrades/internal/query"
	"politrades/internal/scheduler"
	"politrades/internal/state"
	"politrades/internal/storage"
)

// SentKey is the backend key holding the ids of trades already alerted on.
const SentKey = "alerts-sent"

// recentCacheSize is how many trades each tick refreshes into the watchlist cache.
const recentCacheSize = 20

// Deps are the collaborators of the alert watch service.
type Deps struct {
	Scheduler *scheduler.Scheduler
	Engine    *query.Engine
	Stores    *state.Stores
	Notifier  alerting.Notifier
	// Backend records delivered alerts across restarts; nil keeps them in memory.
	Backend storage.Backend
	Locker  storage.AdvisoryLocker
	Metrics *metrics.Collectors
	Now     func() time.Time
}

// Service polls the dataset on an interval and notifies on followed trades.
type Service struct {
	scheduler *scheduler.Scheduler
	engine    *query.Engine
	stores    *state.Stores
	notifier  alerting.Notifier
	backend   storage.Backend
	locker    storage.AdvisoryLocker
	metrics   *metrics.Collectors
	now       func() time.Time
	logger    zerolog.Logger

	channels []string
	lockKey  int64

	mu     sync.Mutex
	sent   map[string]struct{}
	loaded bool
}

// New constructs the alert watch service.
func New(cfg config.AlertingConfig, deps Deps, logger zerolog.Logger) *Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	locker := deps.Locker
	if locker == nil {
		if l, ok := deps.Backend.(storage.AdvisoryLocker); ok {
			locker = l
		}
	}

	return &Service{
		scheduler: deps.Scheduler,
		engine:    deps.Engine,
		stores:    deps.Stores,
		notifier:  deps.Notifier,
		backend:   deps.Backend,
		locker:    locker,
		metrics:   deps.Metrics,
		now:       now,
		logger:    logging.Component(logger, "service"),
		channels:  cfg.Channels,
		lockKey:   cfg.AdvisoryLockKey,
		sent:      make(map[string]struct{}),
	}
}

// Run begins the polling loop.
func (s *Service) Run(ctx context.Context) error {
	if s.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return s.scheduler.Run(ctx, s.ProcessTick)
}

// ProcessTick evaluates alerts once. When another process holds the advisory
// lock the tick is skipped.
func (s *Service) ProcessTick(ctx context.Context, bucket time.Time) error {
	unlock, proceed, err := s.acquireLock(ctx)
	if err != nil {
		return err
	}
	if !proceed {
		s.logger.Debug().Time("bucket", bucket).Msg("skip tick because advisory lock held elsewhere")
		return nil
	}
	if unlock != nil {
		defer unlock()
	}

	_, err = s.executeTick(ctx, bucket)
	return err
}

// Once runs a single evaluation and returns the alerts it delivered.
func (s *Service) Once(ctx context.Context) ([]alerting.Alert, error) {
	unlock, proceed, err := s.acquireLock(ctx)
	if err != nil {
		return nil, err
	}
	if !proceed {
		return nil, nil
	}
	if unlock != nil {
		defer unlock()
	}
	return s.executeTick(ctx, s.now())
}

func (s *Service) executeTick(ctx context.Context, bucket time.Time) ([]alerting.Alert, error) {
	if s.engine == nil || s.stores == nil {
		return nil, fmt.Errorf("service dependencies not configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadSent(ctx); err != nil {
		return nil, err
	}

	s.stores.Watchlist.SetRecentTrades(s.engine.RecentTrades(recentCacheSize))

	settings := s.stores.Preferences.Snapshot()
	watchlist := s.stores.Watchlist.Snapshot()
	candidates := alerting.Evaluate(settings, watchlist, s.engine.Trades())

	var delivered []alerting.Alert
	for _, alert := range candidates {
		if _, done := s.sent[alert.Trade.ID]; done {
			continue
		}
		note := alerting.Notification{
			Alert:    alert,
			Language: settings.Language,
			Now:      s.now(),
			Channels: s.channels,
		}
		if err := s.notifier.Notify(ctx, note); err != nil {
			s.logger.Error().Err(err).Str("trade_id", alert.Trade.ID).Msg("failed to dispatch alert")
			continue
		}
		s.sent[alert.Trade.ID] = struct{}{}
		for _, ch := range s.channels {
			s.metrics.AlertSent(ch)
		}
		delivered = append(delivered, alert)
	}

	if len(delivered) > 0 {
		if err := s.saveSent(ctx); err != nil {
			s.logger.Error().Err(err).Msg("failed to record delivered alerts")
		}
	}

	s.logger.Info().Time("bucket", bucket).
		Int("candidates", len(candidates)).
		Int("delivered", len(delivered)).
		Msg("alert tick complete")
	return delivered, nil
}

func (s *Service) loadSent(ctx context.Context) error {
	if s.loaded || s.backend == nil {
		s.loaded = true
		return nil
	}
	raw, err := s.backend.Get(ctx, SentKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return fmt.Errorf("load delivered alerts: %w", err)
	default:
		var ids []string
		if err := json.Unmarshal(raw, &ids); err != nil {
			s.logger.Warn().Err(err).Msg("discarding unreadable delivered alert log")
		}
		for _, id := range ids {
			s.sent[id] = struct{}{}
		}
	}
	s.loaded = true
	return nil
}

func (s *Service) saveSent(ctx context.Context) error {
	if s.backend == nil {
		return nil
	}
	ids := make([]string, 0, len(s.sent))
	for id := range s.sent {
		ids = append(ids, id)
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("marshal delivered alerts: %w", err)
	}
	return s.backend.Set(ctx, SentKey, raw)
}

func (s *Service) acquireLock(ctx context.Context) (func(), bool, error) {
	if s.lockKey == 0 || s.locker == nil {
		return nil, true, nil
	}
	unlock, acquired, err := s.locker.TryAdvisoryLock(ctx, s.lockKey)
	if err != nil {
		return nil, false, fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}
	return unlock, true, nil
}
