package state

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultToastDuration is how long a toast stays visible.
const DefaultToastDuration = 2500 * time.Millisecond

// ToastType selects toast styling.
type ToastType string

const (
	ToastSuccess ToastType = "success"
	ToastError   ToastType = "error"
	ToastInfo    ToastType = "info"
)

// Toast is the single transient notification slot.
type Toast struct {
	ID      string    `json:"id"`
	Message string    `json:"message"`
	Type    ToastType `json:"type"`
	Visible bool      `json:"visible"`
}

// UIState is session-scoped and never persisted.
type UIState struct {
	Toast         Toast `json:"toast"`
	IsPaywallOpen bool  `json:"isPaywallOpen"`
	IsPremium     bool  `json:"isPremium"`
}

// UIStore holds ephemeral UI flags.
type UIStore struct {
	core[UIState]

	clock       Clock
	duration    time.Duration
	autoDismiss bool

	timerMu sync.Mutex
	timer   Timer
}

func newUIStore(opts Options) *UIStore {
	duration := opts.ToastDuration
	if duration <= 0 {
		duration = DefaultToastDuration
	}
	return &UIStore{
		core: core[UIState]{
			name:     "ui",
			obs:      newObservable(UIState{}, nil),
			observer: opts.observer(),
		},
		clock:       opts.clock(),
		duration:    duration,
		autoDismiss: !opts.ManualToastDismiss,
	}
}

// Snapshot returns the current UI state.
func (s *UIStore) Snapshot() UIState {
	return s.obs.get()
}

// Subscribe registers fn for every change and returns its cancel func.
func (s *UIStore) Subscribe(fn func(UIState)) func() {
	return s.obs.subscribe(fn)
}

// OpenPaywall shows the paywall.
func (s *UIStore) OpenPaywall() { s.setPaywall(true) }

// ClosePaywall hides the paywall.
func (s *UIStore) ClosePaywall() { s.setPaywall(false) }

func (s *UIStore) setPaywall(open bool) {
	s.apply(func(v *UIState) bool {
		if v.IsPaywallOpen == open {
			return false
		}
		v.IsPaywallOpen = open
		return true
	})
}

// SetPremium sets the local premium flag. It is not an entitlement check.
func (s *UIStore) SetPremium(premium bool) {
	s.apply(func(v *UIState) bool {
		if v.IsPremium == premium {
			return false
		}
		v.IsPremium = premium
		return true
	})
}

// ShowToast replaces any visible toast and, unless manual dismissal is
// configured, schedules HideToast after the toast duration. It returns the
// toast id.
func (s *UIStore) ShowToast(message string, typ ToastType) string {
	id := uuid.NewString()
	s.apply(func(v *UIState) bool {
		v.Toast = Toast{ID: id, Message: message, Type: typ, Visible: true}
		return true
	})
	s.rearm()
	return id
}

// HideToast hides the current toast and cancels its pending timer.
func (s *UIStore) HideToast() {
	s.apply(func(v *UIState) bool {
		if !v.Toast.Visible {
			return false
		}
		v.Toast.Visible = false
		return true
	})
	s.rearm()
}

// rearm replaces the dismiss timer with one for the toast visible now, so
// the last caller to return always leaves the timer matching the state.
func (s *UIStore) rearm() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if !s.autoDismiss {
		return
	}
	var (
		id      string
		visible bool
	)
	s.obs.read(func(v *UIState) { id, visible = v.Toast.ID, v.Toast.Visible })
	if visible {
		s.timer = s.clock.AfterFunc(s.duration, func() { s.dismiss(id) })
	}
}

// dismiss hides the toast only if it is still the one the timer was set for.
func (s *UIStore) dismiss(id string) {
	s.apply(func(v *UIState) bool {
		if !v.Toast.Visible || v.Toast.ID != id {
			return false
		}
		v.Toast.Visible = false
		return true
	})
}

// Stop cancels any pending toast timer.
func (s *UIStore) Stop() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
