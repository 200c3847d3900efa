package state

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"politrades/internal/models"
	"politrades/internal/storage"
)

// DefaultAlertThreshold is the minimum trade value that triggers an alert.
var DefaultAlertThreshold = decimal.NewFromInt(50000)

// Settings are the durable user preferences.
type Settings struct {
	Language               models.Language `json:"language"`
	NotificationsEnabled   bool            `json:"notificationsEnabled"`
	AlertThreshold         decimal.Decimal `json:"alertThreshold"`
	HasCompletedOnboarding bool            `json:"hasCompletedOnboarding"`
}

// DefaultSettings is used on first launch and whenever persisted data is unusable.
func DefaultSettings() Settings {
	return Settings{
		Language:               models.LanguageEnglish,
		NotificationsEnabled:   true,
		AlertThreshold:         DefaultAlertThreshold,
		HasCompletedOnboarding: false,
	}
}

func (s Settings) validate() error {
	if !s.Language.Valid() {
		return fmt.Errorf("unsupported language %q", s.Language)
	}
	if s.AlertThreshold.IsNegative() {
		return fmt.Errorf("alert threshold cannot be negative")
	}
	return nil
}

// PreferenceStore holds Settings and persists them under SettingsKey.
type PreferenceStore struct {
	core[Settings]
}

func newPreferenceStore(ctx context.Context, backend storage.Backend, opts Options, logger zerolog.Logger) *PreferenceStore {
	initial := DefaultSettings()
	loaded := DefaultSettings()
	if hydrate(ctx, backend, SettingsKey, &loaded, logger) {
		if err := loaded.validate(); err != nil {
			logger.Debug().Err(err).Msg("persisted settings invalid; using defaults")
		} else {
			initial = loaded
		}
	}

	s := &PreferenceStore{core: core[Settings]{
		name:     "settings",
		obs:      newObservable(initial, nil),
		view:     func(v Settings) any { return v },
		observer: opts.observer(),
	}}
	if backend != nil {
		s.persist = newPersister(backend, SettingsKey, s.name, opts.WriteTimeout, s.observer, logger)
	}
	return s
}

// Snapshot returns the current settings.
func (s *PreferenceStore) Snapshot() Settings {
	return s.obs.get()
}

// Subscribe registers fn for every effective change and returns its cancel func.
func (s *PreferenceStore) Subscribe(fn func(Settings)) func() {
	return s.obs.subscribe(fn)
}

// SetLanguage switches the UI language.
func (s *PreferenceStore) SetLanguage(lang models.Language) error {
	if !lang.Valid() {
		return fmt.Errorf("unsupported language %q", lang)
	}
	s.apply(func(v *Settings) bool {
		if v.Language == lang {
			return false
		}
		v.Language = lang
		return true
	})
	return nil
}

// SetNotificationsEnabled toggles trade alerts.
func (s *PreferenceStore) SetNotificationsEnabled(enabled bool) {
	s.apply(func(v *Settings) bool {
		if v.NotificationsEnabled == enabled {
			return false
		}
		v.NotificationsEnabled = enabled
		return true
	})
}

// SetAlertThreshold sets the minimum USD trade value that triggers an alert.
func (s *PreferenceStore) SetAlertThreshold(threshold decimal.Decimal) error {
	if threshold.IsNegative() {
		return fmt.Errorf("alert threshold cannot be negative")
	}
	s.apply(func(v *Settings) bool {
		if v.AlertThreshold.Equal(threshold) {
			return false
		}
		v.AlertThreshold = threshold
		return true
	})
	return nil
}

// SetHasCompletedOnboarding records whether the intro flow was finished.
func (s *PreferenceStore) SetHasCompletedOnboarding(done bool) {
	s.apply(func(v *Settings) bool {
		if v.HasCompletedOnboarding == done {
			return false
		}
		v.HasCompletedOnboarding = done
		return true
	})
}

// ResetOnboarding is the debug action that sends the user back to onboarding.
func (s *PreferenceStore) ResetOnboarding() {
	s.SetHasCompletedOnboarding(false)
}
