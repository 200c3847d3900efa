package state

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"politrades/internal/storage"
)

// User is the signed-in identity. Live only; re-fetched every launch.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session references the auth provider session. The token is never persisted.
type Session struct {
	ID          string    `json:"id"`
	AccessToken string    `json:"-"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// NewSession builds a session with a fresh local id.
func NewSession(accessToken string, ttl time.Duration, now time.Time) Session {
	return Session{
		ID:          uuid.NewString(),
		AccessToken: accessToken,
		ExpiresAt:   now.Add(ttl),
	}
}

// Profile is the account record cached across restarts.
type Profile struct {
	Email            string     `json:"email"`
	DisplayName      string     `json:"displayName"`
	IsPremium        bool       `json:"isPremium"`
	PremiumExpiresAt *time.Time `json:"premiumExpiresAt,omitempty"`
}

// AuthPersisted is the only slice of auth state written to storage.
type AuthPersisted struct {
	Profile *Profile `json:"profile"`
}

// AuthRuntime lives in memory only.
type AuthRuntime struct {
	User    *User
	Session *Session
}

// AuthState is the public shape of the auth store.
type AuthState struct {
	AuthRuntime
	AuthPersisted
}

func cloneAuth(s AuthState) AuthState {
	out := AuthState{}
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	if s.Session != nil {
		sess := *s.Session
		out.Session = &sess
	}
	if s.Profile != nil {
		p := *s.Profile
		if p.PremiumExpiresAt != nil {
			exp := *p.PremiumExpiresAt
			p.PremiumExpiresAt = &exp
		}
		out.Profile = &p
	}
	return out
}

// AuthStore holds the identity snapshot; only AuthPersisted survives restarts.
type AuthStore struct {
	core[AuthState]
}

func newAuthStore(ctx context.Context, backend storage.Backend, opts Options, logger zerolog.Logger) *AuthStore {
	var persisted AuthPersisted
	if !hydrate(ctx, backend, AuthKey, &persisted, logger) {
		persisted = AuthPersisted{}
	}

	s := &AuthStore{core: core[AuthState]{
		name:     "auth",
		obs:      newObservable(AuthState{AuthPersisted: persisted}, cloneAuth),
		view:     func(v AuthState) any { return v.AuthPersisted },
		observer: opts.observer(),
	}}
	if backend != nil {
		s.persist = newPersister(backend, AuthKey, s.name, opts.WriteTimeout, s.observer, logger)
	}
	return s
}

// Snapshot returns a deep copy of the auth state.
func (s *AuthStore) Snapshot() AuthState {
	return s.obs.get()
}

// Subscribe registers fn for every change and returns its cancel func.
func (s *AuthStore) Subscribe(fn func(AuthState)) func() {
	return s.obs.subscribe(fn)
}

// SetSession installs a live user and session.
func (s *AuthStore) SetSession(user User, session Session) {
	s.apply(func(v *AuthState) bool {
		v.User = &user
		v.Session = &session
		return true
	})
}

// SetProfile replaces the cached profile.
func (s *AuthStore) SetProfile(profile Profile) {
	s.apply(func(v *AuthState) bool {
		v.Profile = &profile
		return true
	})
}

// SignOut clears runtime and persisted state.
func (s *AuthStore) SignOut() {
	s.apply(func(v *AuthState) bool {
		if v.User == nil && v.Session == nil && v.Profile == nil {
			return false
		}
		*v = AuthState{}
		return true
	})
}

// IsPremium reports an active, unexpired premium entitlement on the profile.
func (s *AuthStore) IsPremium(now time.Time) bool {
	var premium bool
	s.obs.read(func(v *AuthState) {
		if v.Profile == nil || !v.Profile.IsPremium {
			return
		}
		premium = v.Profile.PremiumExpiresAt == nil || now.Before(*v.Profile.PremiumExpiresAt)
	})
	return premium
}

// PremiumExpiresAt returns the entitlement end, if the profile has one.
func (s *AuthStore) PremiumExpiresAt() (time.Time, bool) {
	var (
		at time.Time
		ok bool
	)
	s.obs.read(func(v *AuthState) {
		if v.Profile != nil && v.Profile.PremiumExpiresAt != nil {
			at, ok = *v.Profile.PremiumExpiresAt, true
		}
	})
	return at, ok
}
