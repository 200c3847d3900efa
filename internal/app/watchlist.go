package app

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"politrades/internal/format"
	"politrades/internal/state"
)

// Follow adds a politician id, or a sector when sector is set.
func (a *App) Follow(ctx context.Context, target string, sector bool) error {
	return a.withRuntime(ctx, func(rt *Runtime) error {
		wl := rt.Stores.Watchlist
		if sector {
			if !slices.Contains(rt.Engine.Sectors(), target) {
				return fmt.Errorf("unknown sector %q", target)
			}
			wl.AddFollowedSector(target)
			rt.Stores.UI.ShowToast("Following "+target, state.ToastSuccess)
		} else {
			p, ok := rt.Engine.Politician(target)
			if !ok {
				return fmt.Errorf("politician %q not found", target)
			}
			wl.AddFollowedPolitician(p.ID)
			rt.Stores.UI.ShowToast("Following "+p.Name, state.ToastSuccess)
		}
		fmt.Fprintln(a.Out, rt.Stores.UI.Snapshot().Toast.Message)
		return nil
	})
}

// Unfollow removes a politician id or sector. Unknown values are a no-op.
func (a *App) Unfollow(ctx context.Context, target string, sector bool) error {
	return a.withRuntime(ctx, func(rt *Runtime) error {
		wl := rt.Stores.Watchlist
		if sector {
			wl.RemoveFollowedSector(target)
		} else {
			wl.RemoveFollowedPolitician(target)
		}
		rt.Stores.UI.ShowToast("Unfollowed "+target, state.ToastInfo)
		fmt.Fprintln(a.Out, rt.Stores.UI.Snapshot().Toast.Message)
		return nil
	})
}

// Watchlist prints followed politicians and sectors.
func (a *App) Watchlist(ctx context.Context) error {
	return a.withRuntime(ctx, func(rt *Runtime) error {
		snap := rt.Stores.Watchlist.Snapshot()
		if len(snap.FollowedPoliticians) == 0 && len(snap.FollowedSectors) == 0 {
			fmt.Fprintln(a.Out, "watchlist is empty")
			return nil
		}

		w := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
		for _, id := range snap.FollowedPoliticians {
			p, ok := rt.Engine.Politician(id)
			if !ok {
				fmt.Fprintf(w, "politician\t%s\t(not in dataset)\n", id)
				continue
			}
			fmt.Fprintf(w, "politician\t%s\t%s\t%s\n", id, p.Name, format.PartyTag(p.Snapshot()))
		}
		if len(snap.FollowedSectors) > 0 {
			fmt.Fprintf(w, "sectors\t%s\n", strings.Join(snap.FollowedSectors, ", "))
		}
		if n := len(snap.RecentTrades); n > 0 {
			fmt.Fprintf(w, "cached trades\t%d\n", n)
		}
		return w.Flush()
	})
}
