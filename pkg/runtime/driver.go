// Package runtime implements the Program mount/dispatch/commit loop
// (§4.7) against a host DOM reached only through the Builder/Patcher/
// Scheduler ports defined here. Concrete adapters live in package domjs
// (js&&wasm build) and package schedjs; this package's own logic is
// exercised in tests against fakes, keeping the commit-cycle and
// ordering guarantees testable off a browser.
package runtime

import "github.com/vango-dev/sauron/pkg/vdom"

// NodeHandle is an opaque reference to a live DOM node. Program never
// inspects it; only a Builder/Patcher pair agrees on its concrete type.
type NodeHandle any

// MountAction discriminates how Mount splices the built tree into the
// host document (§4.7).
type MountAction uint8

const (
	MountAppend MountAction = iota
	MountReplace
	MountClearAppend
)

// Builder constructs a detached real-DOM subtree from a VDOM node (C5,
// §4.5). dispatch is threaded down so every listener attribute can be
// wired to the owning Program's message queue.
type Builder[MSG any] interface {
	Build(n *vdom.Node[MSG], dispatch func(MSG)) NodeHandle
}

// Patcher owns the live DOM: splicing a freshly built tree in at Mount
// time, and applying subsequent patch batches (C4, §4.4).
type Patcher[MSG any] interface {
	// Mount splices built into target per action, returning the handle
	// Program should treat as its current root.
	Mount(target NodeHandle, built NodeHandle, action MountAction) (root NodeHandle, err error)

	// Apply resolves every patch's path against root up front (§4.3
	// ordering invariants), then applies them in order, returning the
	// (possibly different, if the root itself was replaced) root handle.
	Apply(root NodeHandle, patches []vdom.Patch[MSG], dispatch func(MSG)) (newRoot NodeHandle, err error)
}

// StyleInjector injects a stylesheet into the document head at most
// once per key (§4.7 Mount: "keyed by a hash of the application type so
// duplicate injections are avoided").
type StyleInjector interface {
	InjectOnce(key string, css string)
}

// CancelFunc cancels a scheduled callback; calling it after the
// callback has already fired is a no-op.
type CancelFunc func()

// Deadline mirrors the browser's IdleDeadline (real or the 50ms-budget
// polyfill), letting the commit pass decide whether it must yield back
// to the host mid-drain (§4.7, §4.8).
type Deadline interface {
	TimeRemaining() float64
	DidTimeout() bool
}

// Scheduler is the C8 adapter surface: thin wrappers over
// requestAnimationFrame/requestIdleCallback/requestTimeout. Each
// returned CancelFunc must cancel the underlying host registration.
type Scheduler interface {
	RequestAnimationFrame(cb func()) CancelFunc
	RequestIdleCallback(cb func(deadline Deadline)) CancelFunc
	RequestTimeout(cb func(), ms int) CancelFunc
}
