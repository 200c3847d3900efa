package state

import "sync"

type listener[T any] struct {
	id uint64
	fn func(T)
}

// observable holds one value and notifies listeners after each effective
// mutation. Listeners run synchronously, outside the lock, in subscription order.
type observable[T any] struct {
	mu        sync.RWMutex
	value     T
	clone     func(T) T
	listeners []listener[T]
	nextID    uint64
}

func newObservable[T any](initial T, clone func(T) T) *observable[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &observable[T]{value: initial, clone: clone}
}

func (o *observable[T]) get() T {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.clone(o.value)
}

// read gives fn a borrowed view of the value; fn must not retain it.
func (o *observable[T]) read(fn func(*T)) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	fn(&o.value)
}

func (o *observable[T]) subscribe(fn func(T)) func() {
	o.mu.Lock()
	o.nextID++
	id := o.nextID
	o.listeners = append(o.listeners, listener[T]{id: id, fn: fn})
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			for i, l := range o.listeners {
				if l.id == id {
					o.listeners = append(o.listeners[:i:i], o.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// mutate applies fn under the write lock. fn reports whether it changed
// anything; unchanged mutations notify nobody.
func (o *observable[T]) mutate(fn func(*T) bool) (T, bool) {
	o.mu.Lock()
	if !fn(&o.value) {
		o.mu.Unlock()
		var zero T
		return zero, false
	}
	snap := o.clone(o.value)
	listeners := make([]listener[T], len(o.listeners))
	copy(listeners, o.listeners)
	o.mu.Unlock()

	for _, l := range listeners {
		l.fn(o.clone(snap))
	}
	return snap, true
}
