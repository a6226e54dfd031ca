//go:build js && wasm

package domjs

import (
	"sync"
	"sync/atomic"
	"syscall/js"
)

// idGenerator hands out the integers stamped into data-vdom-id, the
// runtime-assigned key the listener registry and patch resolution key
// off of (§3 Lifecycle).
type idGenerator struct {
	next atomic.Uint64
}

func (g *idGenerator) next_() uint64 { return g.next.Add(1) }

// registry owns every live element's attached js.Func closures, keyed by
// the same integer stamped into that element's data-vdom-id (§3, §4.4).
// Disposing an id releases every js.Func registered under it, which is
// the only way to avoid leaking the V8-side closure.
type registry struct {
	mu        sync.Mutex
	listeners map[uint64]map[string]js.Func
}

func newRegistry() *registry {
	return &registry{listeners: make(map[uint64]map[string]js.Func)}
}

func (r *registry) attach(id uint64, event string, fn js.Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.listeners[id]
	if !ok {
		m = make(map[string]js.Func)
		r.listeners[id] = m
	}
	if old, exists := m[event]; exists {
		old.Release()
	}
	m[event] = fn
}

// lookup returns the js.Func currently registered for (id, event),
// needed before detaching one so removeEventListener can be called with
// the exact function value addEventListener received.
func (r *registry) lookup(id uint64, event string) (js.Func, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.listeners[id]
	if !ok {
		return js.Func{}, false
	}
	fn, ok := m[event]
	return fn, ok
}

// detach releases and forgets event on id, returning whether one existed.
func (r *registry) detach(id uint64, event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.listeners[id]
	if !ok {
		return false
	}
	fn, ok := m[event]
	if !ok {
		return false
	}
	fn.Release()
	delete(m, event)
	if len(m) == 0 {
		delete(r.listeners, id)
	}
	return true
}

// disposeSubtree releases every listener registered under id, called
// when the element (and therefore its closures) is removed or replaced.
func (r *registry) disposeSubtree(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, fn := range r.listeners[id] {
		fn.Release()
	}
	delete(r.listeners, id)
}

// count reports the number of distinct ids with at least one listener.
// Nothing in the module calls it.
func (r *registry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listeners)
}
