//go:build js && wasm

// Package schedjs implements runtime.Scheduler (C8) against the real
// browser event loop: requestAnimationFrame, requestIdleCallback (with
// a timer-based fallback per §4.8 when the host doesn't provide one),
// and setTimeout. Every returned CancelFunc releases the js.Func it
// wraps, the same discipline package domjs uses for listeners.
package schedjs
