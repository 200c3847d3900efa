package state

import "sync"

// Route is the top-level navigation destination.
type Route string

const (
	RouteOnboarding Route = "onboarding"
	RouteMainApp    Route = "main"
)

// EvaluateGate picks the route for the given settings.
func EvaluateGate(s Settings) Route {
	if s.HasCompletedOnboarding {
		return RouteMainApp
	}
	return RouteOnboarding
}

// Gate tracks the onboarding route as preferences change.
type Gate struct {
	prefs       *PreferenceStore
	mu          sync.RWMutex
	current     Route
	onChange    func(from, to Route)
	unsubscribe func()
}

// NewGate evaluates the initial route and follows prefs. onChange may be nil.
func NewGate(prefs *PreferenceStore, onChange func(from, to Route)) *Gate {
	g := &Gate{prefs: prefs, onChange: onChange}
	g.unsubscribe = prefs.Subscribe(func(Settings) { g.evaluate() })
	g.mu.Lock()
	g.current = EvaluateGate(prefs.Snapshot())
	g.mu.Unlock()
	return g
}

// evaluate re-reads the store instead of trusting the notified value;
// concurrent setters can deliver notifications out of order.
func (g *Gate) evaluate() {
	g.mu.Lock()
	prev := g.current
	next := EvaluateGate(g.prefs.Snapshot())
	g.current = next
	g.mu.Unlock()
	if prev != next && g.onChange != nil {
		g.onChange(prev, next)
	}
}

// Current returns the route as of the last preference change.
func (g *Gate) Current() Route {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.current
}

// Close stops following preference changes.
func (g *Gate) Close() {
	if g.unsubscribe != nil {
		g.unsubscribe()
	}
}
