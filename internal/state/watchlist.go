package state

import (
	"context"
	"slices"

	"github.com/rs/zerolog"

	"politrades/internal/models"
	"politrades/internal/storage"
)

// Watchlist is the user-curated follow set plus the last fetched trades.
type Watchlist struct {
	FollowedPoliticians []string       `json:"followedPoliticians"`
	FollowedSectors     []string       `json:"followedSectors"`
	RecentTrades        []models.Trade `json:"recentTrades"`
}

func cloneWatchlist(w Watchlist) Watchlist {
	return Watchlist{
		FollowedPoliticians: slices.Clone(w.FollowedPoliticians),
		FollowedSectors:     slices.Clone(w.FollowedSectors),
		RecentTrades:        slices.Clone(w.RecentTrades),
	}
}

// dedupe keeps the first occurrence of each value, in order.
func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

// WatchlistStore holds the Watchlist and persists it in full under WatchlistKey.
type WatchlistStore struct {
	core[Watchlist]
}

func newWatchlistStore(ctx context.Context, backend storage.Backend, opts Options, logger zerolog.Logger) *WatchlistStore {
	var initial Watchlist
	if hydrate(ctx, backend, WatchlistKey, &initial, logger) {
		initial.FollowedPoliticians = dedupe(initial.FollowedPoliticians)
		initial.FollowedSectors = dedupe(initial.FollowedSectors)
	} else {
		initial = Watchlist{}
	}

	s := &WatchlistStore{core: core[Watchlist]{
		name:     "watchlist",
		obs:      newObservable(initial, cloneWatchlist),
		view:     func(v Watchlist) any { return v },
		observer: opts.observer(),
	}}
	if backend != nil {
		s.persist = newPersister(backend, WatchlistKey, s.name, opts.WriteTimeout, s.observer, logger)
	}
	return s
}

// Snapshot returns a copy of the watchlist.
func (s *WatchlistStore) Snapshot() Watchlist {
	return s.obs.get()
}

// Subscribe registers fn for every effective change and returns its cancel func.
func (s *WatchlistStore) Subscribe(fn func(Watchlist)) func() {
	return s.obs.subscribe(fn)
}

// AddFollowedPolitician is idempotent.
func (s *WatchlistStore) AddFollowedPolitician(id string) {
	s.add(id, func(w *Watchlist) *[]string { return &w.FollowedPoliticians })
}

// RemoveFollowedPolitician is a no-op for ids not followed.
func (s *WatchlistStore) RemoveFollowedPolitician(id string) {
	s.remove(id, func(w *Watchlist) *[]string { return &w.FollowedPoliticians })
}

// AddFollowedSector is idempotent.
func (s *WatchlistStore) AddFollowedSector(sector string) {
	s.add(sector, func(w *Watchlist) *[]string { return &w.FollowedSectors })
}

// RemoveFollowedSector is a no-op for sectors not followed.
func (s *WatchlistStore) RemoveFollowedSector(sector string) {
	s.remove(sector, func(w *Watchlist) *[]string { return &w.FollowedSectors })
}

// IsFollowing reports whether the politician id is followed.
func (s *WatchlistStore) IsFollowing(id string) bool {
	var ok bool
	s.obs.read(func(w *Watchlist) { ok = slices.Contains(w.FollowedPoliticians, id) })
	return ok
}

// IsFollowingSector reports whether the sector is followed.
func (s *WatchlistStore) IsFollowingSector(sector string) bool {
	var ok bool
	s.obs.read(func(w *Watchlist) { ok = slices.Contains(w.FollowedSectors, sector) })
	return ok
}

// SetRecentTrades replaces the trade cache. Refresh timing is the caller's job.
func (s *WatchlistStore) SetRecentTrades(trades []models.Trade) {
	cached := slices.Clone(trades)
	s.apply(func(w *Watchlist) bool {
		w.RecentTrades = cached
		return true
	})
}

func (s *WatchlistStore) add(value string, field func(*Watchlist) *[]string) {
	if value == "" {
		return
	}
	s.apply(func(w *Watchlist) bool {
		set := field(w)
		if slices.Contains(*set, value) {
			return false
		}
		*set = append(*set, value)
		return true
	})
}

func (s *WatchlistStore) remove(value string, field func(*Watchlist) *[]string) {
	s.apply(func(w *Watchlist) bool {
		set := field(w)
		idx := slices.Index(*set, value)
		if idx < 0 {
			return false
		}
		*set = slices.Delete(slices.Clone(*set), idx, idx+1)
		return true
	})
}
