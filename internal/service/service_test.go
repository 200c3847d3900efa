package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"politrades/internal/alerting"
	"politrades/internal/config"
	"politrades/internal/dataset"
	"politrades/internal/query"
	"politrades/internal/scheduler"
	"politrades/internal/state"
	"politrades/internal/storage"
)

var now = time.Date(2026, time.March, 12, 15, 30, 0, 0, time.UTC)

type recordingNotifier struct {
	mu   sync.Mutex
	ids  []string
	fail error
}

func (r *recordingNotifier) Notify(_ context.Context, note alerting.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.ids = append(r.ids, note.Alert.Trade.ID)
	return nil
}

type stubLocker struct {
	acquired bool
	unlocked int
}

func (l *stubLocker) TryAdvisoryLock(context.Context, int64) (func(), bool, error) {
	if !l.acquired {
		return nil, false, nil
	}
	return func() { l.unlocked++ }, true, nil
}

type fixture struct {
	backend  *storage.MemoryBackend
	stores   *state.Stores
	engine   *query.Engine
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	snap, err := dataset.Load(context.Background(), dataset.NewMock(now, time.UTC), zerolog.Nop())
	require.NoError(t, err)

	backend := storage.NewMemoryBackend()
	stores := state.Open(context.Background(), state.Options{Backend: backend}, zerolog.Nop())
	t.Cleanup(func() { _ = stores.Close(context.Background()) })

	return &fixture{
		backend:  backend,
		stores:   stores,
		engine:   query.New(snap, time.UTC),
		notifier: &recordingNotifier{},
	}
}

func (f *fixture) service(cfg config.AlertingConfig, locker storage.AdvisoryLocker) *Service {
	return New(cfg, Deps{
		Engine:   f.engine,
		Stores:   f.stores,
		Notifier: f.notifier,
		Backend:  f.backend,
		Locker:   locker,
		Now:      func() time.Time { return now },
	}, zerolog.Nop())
}

func TestOnceDeliversFollowedTradesAboveThreshold(t *testing.T) {
	f := newFixture(t)
	f.stores.Watchlist.AddFollowedPolitician("p-hale")

	svc := f.service(config.AlertingConfig{Channels: []string{"log"}}, nil)
	delivered, err := svc.Once(context.Background())
	require.NoError(t, err)

	assert.Len(t, delivered, 4)
	assert.Equal(t, []string{"t-001", "t-005", "t-013", "t-021"}, f.notifier.ids)
	assert.Len(t, f.stores.Watchlist.Snapshot().RecentTrades, recentCacheSize)
}

func TestOnceDeduplicatesAcrossRunsAndRestarts(t *testing.T) {
	f := newFixture(t)
	f.stores.Watchlist.AddFollowedPolitician("p-hale")

	svc := f.service(config.AlertingConfig{}, nil)
	_, err := svc.Once(context.Background())
	require.NoError(t, err)

	again, err := svc.Once(context.Background())
	require.NoError(t, err)
	assert.Empty(t, again)

	restarted := f.service(config.AlertingConfig{}, nil)
	afterRestart, err := restarted.Once(context.Background())
	require.NoError(t, err)
	assert.Empty(t, afterRestart)
	assert.Len(t, f.notifier.ids, 4)
}

func TestOnceRespectsNotificationToggle(t *testing.T) {
	f := newFixture(t)
	f.stores.Watchlist.AddFollowedPolitician("p-hale")
	f.stores.Preferences.SetNotificationsEnabled(false)

	delivered, err := f.service(config.AlertingConfig{}, nil).Once(context.Background())
	require.NoError(t, err)
	assert.Empty(t, delivered)
	assert.Empty(t, f.notifier.ids)
}

func TestFailedDeliveryIsRetried(t *testing.T) {
	f := newFixture(t)
	f.stores.Watchlist.AddFollowedSector("Energy")
	f.notifier.fail = errors.New("telegram down")

	svc := f.service(config.AlertingConfig{}, nil)
	delivered, err := svc.Once(context.Background())
	require.NoError(t, err)
	assert.Empty(t, delivered)

	f.notifier.fail = nil
	delivered, err = svc.Once(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, delivered)
}

func TestProcessTickSkipsWithoutLock(t *testing.T) {
	f := newFixture(t)
	f.stores.Watchlist.AddFollowedPolitician("p-hale")
	locker := &stubLocker{}

	svc := f.service(config.AlertingConfig{AdvisoryLockKey: 42}, locker)
	require.NoError(t, svc.ProcessTick(context.Background(), now))
	assert.Empty(t, f.notifier.ids)

	locker.acquired = true
	require.NoError(t, svc.ProcessTick(context.Background(), now))
	assert.Len(t, f.notifier.ids, 4)
	assert.Equal(t, 1, locker.unlocked)
}

func TestRunRequiresScheduler(t *testing.T) {
	f := newFixture(t)
	assert.Error(t, f.service(config.AlertingConfig{}, nil).Run(context.Background()))
}

func TestRunPollsUntilCancelled(t *testing.T) {
	f := newFixture(t)
	f.stores.Watchlist.AddFollowedPolitician("p-hale")

	svc := New(config.AlertingConfig{}, Deps{
		Scheduler: scheduler.New(scheduler.Options{Interval: time.Hour, RunImmediately: true}, zerolog.Nop()),
		Engine:    f.engine,
		Stores:    f.stores,
		Notifier:  f.notifier,
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	require.Eventually(t, func() bool {
		f.notifier.mu.Lock()
		defer f.notifier.mu.Unlock()
		return len(f.notifier.ids) == 4
	}, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
