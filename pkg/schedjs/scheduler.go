//go:build js && wasm

package schedjs

import (
	"syscall/js"

	"github.com/vango-dev/sauron/pkg/runtime"
)

const idleBudgetMillis = 50

var (
	global      = js.Global()
	performance = global.Get("performance")
)

// Scheduler is the concrete C8 adapter. Each Request* method owns the
// js.Func it creates for the lifetime of that single callback; the
// returned CancelFunc releases it whether or not the host ever fired
// it, so a cancelled-but-pending registration never leaks.
type Scheduler struct{}

// New returns a Scheduler bound to the global window/document.
func New() *Scheduler { return &Scheduler{} }

func (s *Scheduler) RequestAnimationFrame(cb func()) runtime.CancelFunc {
	var fn js.Func
	fn = js.FuncOf(func(this js.Value, args []js.Value) any {
		fn.Release()
		cb()
		return nil
	})
	id := global.Call("requestAnimationFrame", fn)
	return func() {
		global.Call("cancelAnimationFrame", id)
		fn.Release()
	}
}

func (s *Scheduler) RequestIdleCallback(cb func(runtime.Deadline)) runtime.CancelFunc {
	if global.Get("requestIdleCallback").Truthy() {
		return requestRealIdle(cb)
	}
	return requestPolyfilledIdle(cb)
}

func (s *Scheduler) RequestTimeout(cb func(), ms int) runtime.CancelFunc {
	var fn js.Func
	fn = js.FuncOf(func(this js.Value, args []js.Value) any {
		fn.Release()
		cb()
		return nil
	})
	id := global.Call("setTimeout", fn, ms)
	return func() {
		global.Call("clearTimeout", id)
		fn.Release()
	}
}

// idleDeadline adapts a real browser IdleDeadline to runtime.Deadline.
type idleDeadline struct{ v js.Value }

func (d idleDeadline) TimeRemaining() float64 { return d.v.Call("timeRemaining").Float() }
func (d idleDeadline) DidTimeout() bool       { return d.v.Get("didTimeout").Bool() }

func requestRealIdle(cb func(runtime.Deadline)) runtime.CancelFunc {
	var fn js.Func
	fn = js.FuncOf(func(this js.Value, args []js.Value) any {
		fn.Release()
		var real js.Value
		if len(args) > 0 {
			real = args[0]
		}
		cb(idleDeadline{v: real})
		return nil
	})
	id := global.Call("requestIdleCallback", fn)
	return func() {
		global.Call("cancelIdleCallback", id)
		fn.Release()
	}
}

// polyfillDeadline fakes IdleDeadline with a fixed budget measured from
// when the callback started running (§4.8: "hosts without
// requestIdleCallback get a setTimeout(0) with a 50ms synthetic
// deadline instead").
type polyfillDeadline struct{ start float64 }

func (d polyfillDeadline) TimeRemaining() float64 {
	elapsed := performance.Call("now").Float() - d.start
	remaining := float64(idleBudgetMillis) - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (d polyfillDeadline) DidTimeout() bool { return false }

func requestPolyfilledIdle(cb func(runtime.Deadline)) runtime.CancelFunc {
	var fn js.Func
	fn = js.FuncOf(func(this js.Value, args []js.Value) any {
		fn.Release()
		cb(polyfillDeadline{start: performance.Call("now").Float()})
		return nil
	})
	id := global.Call("setTimeout", fn, 0)
	return func() {
		global.Call("clearTimeout", id)
		fn.Release()
	}
}
