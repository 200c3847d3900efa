package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"politrades/internal/alerting"
	"politrades/internal/config"
	"politrades/internal/dataset"
	"politrades/internal/logging"
	"politrades/internal/metrics"
	"politrades/internal/query"
	"politrades/internal/scheduler"
	"politrades/internal/service"
	"politrades/internal/state"
	"politrades/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Out     io.Writer
	Fs      afero.Fs
	Now     func() time.Time
	Metrics *metrics.Collectors

	memory *storage.MemoryBackend
}

// NewApp constructs a new application handle writing command output to stdout.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{
		Config:  cfg,
		Logger:  logging.Component(logger, "app"),
		Out:     os.Stdout,
		Fs:      afero.NewOsFs(),
		Now:     time.Now,
		Metrics: metrics.New(),
		memory:  storage.NewMemoryBackend(),
	}
}

// Runtime is everything one command needs: hydrated stores over the
// configured backend and a query engine over the loaded dataset.
type Runtime struct {
	Stores  *state.Stores
	Engine  *query.Engine
	Backend storage.Backend
	Locker  storage.AdvisoryLocker

	closers []func()
}

// Close flushes pending writes and releases connections.
func (r *Runtime) Close(ctx context.Context) error {
	err := r.Stores.Close(ctx)
	r.release()
	return err
}

// Open builds a Runtime from configuration.
func (a *App) Open(ctx context.Context) (*Runtime, error) {
	rt := &Runtime{}

	var pg *storage.Store
	if a.needsPostgres() {
		pool, err := storage.NewPool(ctx, a.Config.Database)
		if err != nil {
			return nil, err
		}
		pg = storage.NewStore(pool)
		rt.closers = append(rt.closers, pg.Close)
		rt.Locker = pg
	}

	backend, err := a.openBackend(ctx, pg, rt)
	if err != nil {
		rt.release()
		return nil, err
	}
	if prefix := a.Config.Storage.KeyPrefix; prefix != "" {
		backend = storage.WithPrefix(backend, prefix)
	}
	rt.Backend = backend

	snap, err := a.openDataset(ctx, pg)
	if err != nil {
		rt.release()
		return nil, err
	}
	rt.Engine = query.New(snap, a.Config.Location())

	rt.Stores = state.Open(ctx, state.Options{
		Backend:       backend,
		Observer:      a.Metrics,
		ToastDuration: a.Config.UI.ToastDuration,
		WriteTimeout:  a.Config.Storage.WriteTimeout,
	}, a.Logger)
	return rt, nil
}

func (r *Runtime) release() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
	r.closers = nil
}

func (a *App) needsPostgres() bool {
	return a.Config.Storage.Backend == config.BackendPostgres || a.Config.Dataset.Source == config.SourcePostgres
}

func (a *App) openBackend(ctx context.Context, pg *storage.Store, rt *Runtime) (storage.Backend, error) {
	switch a.Config.Storage.Backend {
	case config.BackendMemory:
		return a.memory, nil
	case config.BackendFile:
		return storage.NewFileBackend(a.Fs, a.Config.Storage.FileDir)
	case config.BackendRedis:
		rb, err := storage.NewRedisBackend(ctx, storage.RedisOptions{
			Addr:     a.Config.Redis.Addr,
			Password: a.Config.Redis.Password,
			DB:       a.Config.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, func() { _ = rb.Close() })
		return rb, nil
	case config.BackendPostgres:
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return pg, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", a.Config.Storage.Backend)
}

func (a *App) openDataset(ctx context.Context, pg *storage.Store) (*dataset.Snapshot, error) {
	var src dataset.Source
	switch a.Config.Dataset.Source {
	case config.SourceMock:
		src = dataset.NewMock(a.Now(), a.Config.Location())
	case config.SourcePostgres:
		src = pg
	default:
		return nil, fmt.Errorf("unknown dataset source %q", a.Config.Dataset.Source)
	}
	return dataset.Load(ctx, src, a.Logger)
}

func (a *App) newNotifier() (alerting.Notifier, error) {
	var fan alerting.Fanout
	for _, ch := range a.Config.Alerting.Channels {
		switch ch {
		case "log":
			fan = append(fan, alerting.NewLogNotifier(a.Logger))
		case "telegram":
			cfg := a.Config.Alerting.Telegram
			if !cfg.Enabled {
				return nil, errors.New("telegram channel requested but alerting.telegram.enabled is false")
			}
			fan = append(fan, alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger))
		default:
			return nil, fmt.Errorf("unknown alert channel %q", ch)
		}
	}
	if len(fan) == 0 {
		return nil, errors.New("no alert channels configured")
	}
	return fan, nil
}

func (a *App) newService(rt *Runtime, sched *scheduler.Scheduler) (*service.Service, error) {
	notifier, err := a.newNotifier()
	if err != nil {
		return nil, err
	}
	return service.New(a.Config.Alerting, service.Deps{
		Scheduler: sched,
		Engine:    rt.Engine,
		Stores:    rt.Stores,
		Notifier:  notifier,
		Backend:   rt.Backend,
		Locker:    rt.Locker,
		Metrics:   a.Metrics,
		Now:       a.Now,
	}, a.Logger), nil
}

// Watch runs the alert polling service until interrupted.
func (a *App) Watch(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return a.withRuntime(ctx, func(rt *Runtime) error {
		sched := scheduler.New(scheduler.Options{
			Interval:       a.Config.Alerting.Interval,
			RunImmediately: true,
		}, a.Logger)
		svc, err := a.newService(rt, sched)
		if err != nil {
			return err
		}

		a.Logger.Info().Dur("interval", a.Config.Alerting.Interval).Msg("starting alert watch")
		err = svc.Run(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			a.Logger.Error().Err(err).Msg("alert watch terminated with error")
			return err
		}
		a.Logger.Info().Msg("alert watch stopped")
		return nil
	})
}

// CheckAlerts evaluates alerts once and prints what was delivered.
func (a *App) CheckAlerts(ctx context.Context) error {
	return a.withRuntime(ctx, func(rt *Runtime) error {
		svc, err := a.newService(rt, nil)
		if err != nil {
			return err
		}
		delivered, err := svc.Once(ctx)
		if err != nil {
			return err
		}
		if len(delivered) == 0 {
			fmt.Fprintln(a.Out, "no new alerts")
			return nil
		}
		lang := rt.Stores.Preferences.Snapshot().Language
		for _, alert := range delivered {
			fmt.Fprint(a.Out, alerting.RenderMessage(alerting.Notification{Alert: alert, Language: lang, Now: a.Now()}))
			fmt.Fprintln(a.Out)
		}
		return nil
	})
}

// withRuntime opens a Runtime for fn and always flushes it afterwards.
func (a *App) withRuntime(ctx context.Context, fn func(rt *Runtime) error) error {
	rt, err := a.Open(ctx)
	if err != nil {
		return err
	}
	runErr := fn(rt)

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.closeTimeout())
	defer cancel()
	if err := rt.Close(closeCtx); err != nil {
		a.Logger.Error().Err(err).Msg("failed to flush state")
		if runErr == nil {
			runErr = err
		}
	}
	return runErr
}

func (a *App) closeTimeout() time.Duration {
	if d := a.Config.Storage.WriteTimeout; d > 0 {
		return 2 * d
	}
	return 10 * time.Second
}

// ExportOptions hold parameters for exporting trades and price history.
type ExportOptions struct {
	CSVPath  string
	PNGPath  string
	Symbol   string
	Type     string
	Period   string
	Query    string
	Followed bool
}

// TradesOptions configure the trades feed command.
type TradesOptions struct {
	Type     string
	Period   string
	Query    string
	Followed bool
	Limit    int
}
