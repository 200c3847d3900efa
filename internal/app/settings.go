package app

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"politrades/internal/format"
	"politrades/internal/models"
	"politrades/internal/scheduler"
	"politrades/internal/state"
)

// Settings prints the current preferences.
func (a *App) Settings(ctx context.Context) error {
	return a.withRuntime(ctx, func(rt *Runtime) error {
		s := rt.Stores.Preferences.Snapshot()
		fmt.Fprintf(a.Out, "language:      %s\n", s.Language)
		fmt.Fprintf(a.Out, "notifications: %t\n", s.NotificationsEnabled)
		fmt.Fprintf(a.Out, "threshold:     %s\n", format.Threshold(s.AlertThreshold))
		fmt.Fprintf(a.Out, "onboarded:     %t\n", s.HasCompletedOnboarding)
		return nil
	})
}

// SetSetting updates one preference by name.
func (a *App) SetSetting(ctx context.Context, key, value string) error {
	return a.withRuntime(ctx, func(rt *Runtime) error {
		prefs := rt.Stores.Preferences
		switch strings.ToLower(key) {
		case "language", "lang":
			lang, err := models.ParseLanguage(value)
			if err != nil {
				return err
			}
			if err := prefs.SetLanguage(lang); err != nil {
				return err
			}
		case "notifications":
			on, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("notifications must be true or false: %w", err)
			}
			prefs.SetNotificationsEnabled(on)
		case "threshold", "alert_threshold":
			d, err := decimal.NewFromString(strings.NewReplacer(",", "", "$", "").Replace(value))
			if err != nil {
				return fmt.Errorf("parse threshold %q: %w", value, err)
			}
			if err := prefs.SetAlertThreshold(d); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown setting %q (language, notifications, threshold)", key)
		}
		fmt.Fprintf(a.Out, "%s updated\n", key)
		return nil
	})
}

// OnboardingAction names the onboarding subcommands.
type OnboardingAction string

const (
	OnboardingStatus   OnboardingAction = "status"
	OnboardingComplete OnboardingAction = "complete"
	OnboardingReset    OnboardingAction = "reset"
)

// Onboarding reports or changes the onboarding gate.
func (a *App) Onboarding(ctx context.Context, action OnboardingAction) error {
	return a.withRuntime(ctx, func(rt *Runtime) error {
		gate := state.NewGate(rt.Stores.Preferences, func(from, to state.Route) {
			fmt.Fprintf(a.Out, "route: %s -> %s\n", from, to)
		})
		defer gate.Close()

		switch action {
		case OnboardingStatus:
		case OnboardingComplete:
			rt.Stores.Preferences.SetHasCompletedOnboarding(true)
		case OnboardingReset:
			rt.Stores.Preferences.ResetOnboarding()
		default:
			return fmt.Errorf("unknown onboarding action %q", action)
		}
		fmt.Fprintf(a.Out, "route: %s\n", gate.Current())
		return nil
	})
}

// SignIn installs a local session and profile for email.
func (a *App) SignIn(ctx context.Context, email, displayName string) error {
	return a.withRuntime(ctx, func(rt *Runtime) error {
		auth := rt.Stores.Auth
		user := state.User{ID: uuid.NewString(), Email: email}
		auth.SetSession(user, state.NewSession(uuid.NewString(), 24*time.Hour, a.Now()))

		profile := state.Profile{Email: email, DisplayName: displayName}
		if prev := auth.Snapshot().Profile; prev != nil && prev.Email == email {
			profile.IsPremium = prev.IsPremium
			profile.PremiumExpiresAt = prev.PremiumExpiresAt
			if displayName == "" {
				profile.DisplayName = prev.DisplayName
			}
		}
		auth.SetProfile(profile)
		fmt.Fprintf(a.Out, "signed in as %s\n", email)
		return nil
	})
}

// SignOut clears the cached profile.
func (a *App) SignOut(ctx context.Context) error {
	return a.withRuntime(ctx, func(rt *Runtime) error {
		rt.Stores.Auth.SignOut()
		rt.Stores.UI.SetPremium(false)
		fmt.Fprintln(a.Out, "signed out")
		return nil
	})
}

// StartTrial grants a local premium trial. The flag is not verified against
// any store receipt.
func (a *App) StartTrial(ctx context.Context, days int) error {
	if days <= 0 {
		return fmt.Errorf("trial length must be positive")
	}
	return a.withRuntime(ctx, func(rt *Runtime) error {
		ui := rt.Stores.UI
		ui.OpenPaywall()
		defer ui.ClosePaywall()

		profile := state.Profile{}
		if prev := rt.Stores.Auth.Snapshot().Profile; prev != nil {
			profile = *prev
		}
		expires := a.Now().AddDate(0, 0, days)
		profile.IsPremium = true
		profile.PremiumExpiresAt = &expires
		rt.Stores.Auth.SetProfile(profile)
		ui.SetPremium(true)

		fmt.Fprintf(a.Out, "premium trial active until %s\n", expires.Format(time.RFC1123))
		return nil
	})
}

// PremiumStatus prints the entitlement. With watch it counts down to expiry
// until interrupted.
func (a *App) PremiumStatus(ctx context.Context, watch bool, interval time.Duration) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return a.withRuntime(ctx, func(rt *Runtime) error {
		auth := rt.Stores.Auth
		if !auth.IsPremium(a.Now()) {
			rt.Stores.UI.SetPremium(false)
			fmt.Fprintln(a.Out, "premium: inactive")
			return nil
		}
		expires, ok := auth.PremiumExpiresAt()
		if !ok {
			fmt.Fprintln(a.Out, "premium: active (no expiry)")
			return nil
		}
		if !watch {
			fmt.Fprintf(a.Out, "premium: active, %s left\n", remaining(expires.Sub(a.Now())))
			return nil
		}

		countdown := scheduler.Countdown{Interval: interval, Now: a.Now}
		err := countdown.Run(ctx, auth.PremiumExpiresAt, func(left time.Duration) {
			fmt.Fprintf(a.Out, "premium: %s left\n", remaining(left))
		})
		if err != nil && ctx.Err() != nil {
			return nil
		}
		return err
	})
}

func remaining(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	d = d.Truncate(time.Second)
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	switch {
	case days > 0 && d == 0:
		return fmt.Sprintf("%dd", days)
	case days > 0:
		return fmt.Sprintf("%dd %s", days, d)
	}
	return d.String()
}
