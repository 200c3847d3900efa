package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"politrades/internal/storage"
)

// Storage keys, one namespace per persisted store.
const (
	AuthKey      = "auth-storage"
	WatchlistKey = "trades-storage"
	SettingsKey  = "settings-storage"
)

const persistVersion = 0

// envelope is the on-disk shape of every persisted store.
type envelope struct {
	State   json.RawMessage `json:"state"`
	Version int             `json:"version"`
}

// Observer receives store lifecycle events; metrics.Collectors implements it.
type Observer interface {
	Mutated(store string)
	PersistFailed(store string)
}

type noopObserver struct{}

func (noopObserver) Mutated(string)       {}
func (noopObserver) PersistFailed(string) {}

func encodeEnvelope(v any) ([]byte, error) {
	state, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}
	return json.Marshal(envelope{State: state, Version: persistVersion})
}

// hydrate decodes key into dst. Any failure leaves dst untouched and returns false.
func hydrate(ctx context.Context, backend storage.Backend, key string, dst any, logger zerolog.Logger) bool {
	if backend == nil {
		return false
	}
	data, err := backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Debug().Err(err).Str("key", key).Msg("read persisted state failed; using defaults")
		}
		return false
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil || len(env.State) == 0 {
		logger.Debug().Err(err).Str("key", key).Msg("malformed persisted state; using defaults")
		return false
	}
	if env.Version != persistVersion {
		logger.Debug().Int("version", env.Version).Str("key", key).Msg("unknown persisted version; using defaults")
		return false
	}
	if err := json.Unmarshal(env.State, dst); err != nil {
		logger.Debug().Err(err).Str("key", key).Msg("undecodable persisted state; using defaults")
		return false
	}
	return true
}

// persister writes the latest snapshot of one store in the background.
// Pending writes coalesce: only the newest blob is ever written.
type persister struct {
	backend  storage.Backend
	key      string
	store    string
	timeout  time.Duration
	logger   zerolog.Logger
	observer Observer

	mu      sync.Mutex
	pending []byte
	dirty   bool

	writeMu   sync.Mutex
	signal    chan struct{}
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func newPersister(backend storage.Backend, key, store string, timeout time.Duration, observer Observer, logger zerolog.Logger) *persister {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	p := &persister{
		backend:  backend,
		key:      key,
		store:    store,
		timeout:  timeout,
		logger:   logger,
		observer: observer,
		signal:   make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *persister) enqueue(v any) {
	data, err := encodeEnvelope(v)
	if err != nil {
		p.logger.Warn().Err(err).Str("key", p.key).Msg("encode state failed; skipping write")
		p.observer.PersistFailed(p.store)
		return
	}

	p.mu.Lock()
	p.pending = data
	p.dirty = true
	p.mu.Unlock()

	select {
	case p.signal <- struct{}{}:
	default:
	}
}

func (p *persister) run() {
	defer close(p.done)
	for {
		select {
		case <-p.stop:
			return
		case <-p.signal:
			ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
			_ = p.write(ctx)
			cancel()
		}
	}
}

func (p *persister) write(ctx context.Context) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	p.mu.Lock()
	if !p.dirty {
		p.mu.Unlock()
		return nil
	}
	data := p.pending
	p.dirty = false
	p.mu.Unlock()

	if err := p.backend.Set(ctx, p.key, data); err != nil {
		p.logger.Warn().Err(err).Str("key", p.key).Msg("persist state failed")
		p.observer.PersistFailed(p.store)

		p.mu.Lock()
		if !p.dirty {
			p.pending = data
			p.dirty = true
		}
		p.mu.Unlock()
		return fmt.Errorf("persist %s: %w", p.key, err)
	}
	p.logger.Debug().Str("key", p.key).Int("bytes", len(data)).Msg("state persisted")
	return nil
}

func (p *persister) flush(ctx context.Context) error {
	return p.write(ctx)
}

func (p *persister) close(ctx context.Context) error {
	p.closeOnce.Do(func() { close(p.stop) })
	<-p.done
	return p.write(ctx)
}

// core is the shared plumbing of every store: an observable value, an
// optional persister and the observer hooks.
type core[T any] struct {
	name     string
	obs      *observable[T]
	persist  *persister
	view     func(T) any
	observer Observer
}

func (c *core[T]) apply(fn func(*T) bool) bool {
	snap, changed := c.obs.mutate(fn)
	if !changed {
		return false
	}
	c.observer.Mutated(c.name)
	if c.persist != nil {
		c.persist.enqueue(c.view(snap))
	}
	return true
}

func (c *core[T]) flush(ctx context.Context) error {
	if c.persist == nil {
		return nil
	}
	return c.persist.flush(ctx)
}

func (c *core[T]) close(ctx context.Context) error {
	if c.persist == nil {
		return nil
	}
	return c.persist.close(ctx)
}
