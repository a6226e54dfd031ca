package runtime_test

import (
	"strconv"
	"testing"

	"github.com/vango-dev/sauron/pkg/command"
	"github.com/vango-dev/sauron/pkg/runtime"
	"github.com/vango-dev/sauron/pkg/vdom"
)

type testMsg int

const msgIncrement testMsg = 1

type counterApp struct {
	count int
}

func (a *counterApp) View() *vdom.Node[testMsg] {
	return vdom.Elem[testMsg]("div", nil, vdom.Text[testMsg](strconv.Itoa(a.count)))
}

func (a *counterApp) Update(testMsg) command.Effects[testMsg, struct{}] {
	a.count++
	return command.NoEffects[testMsg, struct{}]()
}

type fakeDeadline struct{}

func (fakeDeadline) TimeRemaining() float64 { return 50 }
func (fakeDeadline) DidTimeout() bool       { return false }

type scheduledIdle struct {
	cb        func(runtime.Deadline)
	cancelled bool
}
type scheduledRaf struct {
	cb        func()
	cancelled bool
}

type fakeScheduler struct {
	idles []*scheduledIdle
	rafs  []*scheduledRaf
}

func (s *fakeScheduler) RequestIdleCallback(cb func(runtime.Deadline)) runtime.CancelFunc {
	item := &scheduledIdle{cb: cb}
	s.idles = append(s.idles, item)
	return func() { item.cancelled = true }
}

func (s *fakeScheduler) RequestAnimationFrame(cb func()) runtime.CancelFunc {
	item := &scheduledRaf{cb: cb}
	s.rafs = append(s.rafs, item)
	return func() { item.cancelled = true }
}

func (s *fakeScheduler) RequestTimeout(cb func(), ms int) runtime.CancelFunc {
	item := &scheduledRaf{cb: cb}
	s.rafs = append(s.rafs, item)
	return func() { item.cancelled = true }
}

// runIdle fires the oldest non-cancelled idle callback, as a real host
// would once it actually becomes idle.
func (s *fakeScheduler) runIdle() {
	for len(s.idles) > 0 {
		item := s.idles[0]
		s.idles = s.idles[1:]
		if !item.cancelled {
			item.cb(fakeDeadline{})
			return
		}
	}
}

func (s *fakeScheduler) runRaf() {
	for len(s.rafs) > 0 {
		item := s.rafs[0]
		s.rafs = s.rafs[1:]
		if !item.cancelled {
			item.cb()
			return
		}
	}
}

// forceRunLastIdle fires the most recently scheduled idle callback even
// if cancelled, simulating a callback that was already in flight on the
// host's queue when Dispose ran.
func (s *fakeScheduler) forceRunLastIdle() {
	if len(s.idles) == 0 {
		return
	}
	s.idles[len(s.idles)-1].cb(fakeDeadline{})
}

type fakeBuilder struct{}

func (fakeBuilder) Build(n *vdom.Node[testMsg], dispatch func(testMsg)) runtime.NodeHandle { return n }

type fakePatcher struct {
	applied [][]vdom.Patch[testMsg]
}

func (fakePatcher) Mount(target, built runtime.NodeHandle, action runtime.MountAction) (runtime.NodeHandle, error) {
	return built, nil
}

func (p *fakePatcher) Apply(root runtime.NodeHandle, patches []vdom.Patch[testMsg], dispatch func(testMsg)) (runtime.NodeHandle, error) {
	p.applied = append(p.applied, patches)
	return root, nil
}

func newTestProgram() (*runtime.Program[testMsg], *counterApp, *fakeScheduler, *fakePatcher) {
	app := &counterApp{}
	sched := &fakeScheduler{}
	patcher := &fakePatcher{}
	prog := runtime.New[testMsg](app, fakeBuilder{}, patcher, sched)
	return prog, app, sched, patcher
}

func TestProgramMountAndDispatch(t *testing.T) {
	prog, app, sched, patcher := newTestProgram()

	if err := prog.Mount(runtime.MountProcedure{Action: runtime.MountAppend, Target: "body"}); err != nil {
		t.Fatalf("mount: %v", err)
	}

	prog.Dispatch(msgIncrement)
	sched.runIdle()
	sched.runRaf()

	if app.count != 1 {
		t.Fatalf("count = %d, want 1", app.count)
	}
	if len(patcher.applied) != 1 {
		t.Fatalf("expected exactly one applied patch batch, got %d", len(patcher.applied))
	}
}

// Two dispatches before the commit pass runs must schedule exactly one
// idle callback (§4.7: "If a commit pass is already scheduled ... no
// additional pass is scheduled").
func TestDispatchCoalescesBeforeCommit(t *testing.T) {
	prog, app, sched, _ := newTestProgram()
	if err := prog.Mount(runtime.MountProcedure{Action: runtime.MountAppend, Target: "body"}); err != nil {
		t.Fatalf("mount: %v", err)
	}

	prog.Dispatch(msgIncrement)
	prog.Dispatch(msgIncrement)
	if len(sched.idles) != 1 {
		t.Fatalf("expected exactly one scheduled idle callback, got %d", len(sched.idles))
	}

	sched.runIdle()
	sched.runRaf()
	if app.count != 2 {
		t.Fatalf("count = %d, want 2 (both messages processed in one commit)", app.count)
	}
}

// Dispose must make a weak-upgrade fail for any callback still in flight
// when it runs, even if the host's cancellation raced and the callback
// fires anyway (§9 weak self-references).
func TestDisposeMakesInFlightCallbackNoOp(t *testing.T) {
	prog, app, sched, _ := newTestProgram()
	if err := prog.Mount(runtime.MountProcedure{Action: runtime.MountAppend, Target: "body"}); err != nil {
		t.Fatalf("mount: %v", err)
	}

	prog.Dispatch(msgIncrement)
	prog.Dispose()
	sched.forceRunLastIdle()

	if app.count != 0 {
		t.Fatalf("disposed program's update() ran: count = %d, want 0", app.count)
	}
}
