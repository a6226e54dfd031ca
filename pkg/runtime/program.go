package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/vango-dev/sauron/pkg/command"
	"github.com/vango-dev/sauron/pkg/vdom"
)

// Application is the client contract (§6): view() renders the current
// state, update() folds one message into effects for the next cycle.
type Application[MSG any] interface {
	View() *vdom.Node[MSG]
	Update(msg MSG) command.Effects[MSG, struct{}]
}

// Initializer is implemented by applications with startup effects;
// Program checks for it with a type assertion since Go has no optional
// interface methods.
type Initializer[MSG any] interface {
	Init() command.Effects[MSG, struct{}]
}

// StylesheetProvider supplies a static, per-application-type stylesheet
// injected at most once no matter how many instances mount.
type StylesheetProvider interface {
	Stylesheet() []string
}

// StyleProvider supplies a dynamic, per-instance stylesheet, injected
// once per Program under a key that includes that Program's address.
type StyleProvider interface {
	Style() []string
}

// MeasurementsHook receives the measurements record for any commit that
// opted into logging (§4.7 step 4).
type MeasurementsHook interface {
	Measurements(m Measurements)
}

// MountProcedure describes how Mount splices the initial tree in.
type MountProcedure struct {
	Action MountAction
	Target NodeHandle
}

// weakSelf simulates the "weak self-reference" design note (§9) in a
// language without native weak pointers: callbacks capture weakSelf, not
// *Program, and silently no-op if upgrade fails after Dispose.
type weakSelf[MSG any] struct {
	mu       sync.Mutex
	disposed bool
	program  *Program[MSG]
}

func (w *weakSelf[MSG]) upgrade() (*Program[MSG], bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.disposed {
		return nil, false
	}
	return w.program, true
}

func (w *weakSelf[MSG]) dispose() {
	w.mu.Lock()
	w.disposed = true
	w.mu.Unlock()
}

// Program is the mount/dispatch/commit coordinator of §4.7. It is safe
// to call Dispatch from any goroutine; the commit pass itself always
// runs on whatever goroutine the Scheduler invokes callbacks on (the
// single host event loop, in the wasm build).
type Program[MSG any] struct {
	mu sync.Mutex

	app       Application[MSG]
	builder   Builder[MSG]
	patcher   Patcher[MSG]
	scheduler Scheduler
	styles    StyleInjector
	sink      MeasurementsSink
	logger    *slog.Logger

	currentVdom *vdom.Node[MSG]
	root        NodeHandle

	pendingMsgs       []MSG
	pendingDispatches []command.Command[MSG]

	commitScheduled bool
	idleHandle      CancelFunc
	rafHandle       CancelFunc
	lastCommit      time.Time

	detachers []func()

	weak *weakSelf[MSG]
}

// Option configures a Program at construction time.
type Option[MSG any] func(*Program[MSG])

// WithMeasurementsSink wires an external sink (PrometheusSink, OTelSink,
// or a custom one) alongside the Application's own Measurements hook.
func WithMeasurementsSink[MSG any](sink MeasurementsSink) Option[MSG] {
	return func(p *Program[MSG]) { p.sink = sink }
}

// WithStyleInjector wires the stylesheet-injection side of Mount.
// Without one, stylesheet()/style() are never consulted.
func WithStyleInjector[MSG any](injector StyleInjector) Option[MSG] {
	return func(p *Program[MSG]) { p.styles = injector }
}

// WithLogger overrides the slog.Logger that receives a warning whenever
// the patcher's Apply returns an error (PathNotFound, TagMismatch,
// InvalidNodeVariant).
func WithLogger[MSG any](logger *slog.Logger) Option[MSG] {
	return func(p *Program[MSG]) { p.logger = logger }
}

// New builds a Program bound to app, not yet mounted.
func New[MSG any](app Application[MSG], builder Builder[MSG], patcher Patcher[MSG], scheduler Scheduler, opts ...Option[MSG]) *Program[MSG] {
	p := &Program[MSG]{
		app:       app,
		builder:   builder,
		patcher:   patcher,
		scheduler: scheduler,
		logger:    slog.Default().With("component", "vdom.program"),
	}
	p.weak = &weakSelf[MSG]{program: p}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Mount builds the initial DOM from View(), splices it per procedure,
// injects stylesheets, runs Init(), and enqueues any init commands
// (§4.7 Mount).
func (p *Program[MSG]) Mount(procedure MountProcedure) error {
	p.currentVdom = p.app.View()
	built := p.builder.Build(p.currentVdom, p.Dispatch)

	root, err := p.patcher.Mount(procedure.Target, built, procedure.Action)
	if err != nil {
		return fmt.Errorf("vdom: mount: %w", err)
	}
	p.root = root

	p.injectStylesheets()

	if init, ok := p.app.(Initializer[MSG]); ok {
		p.runCommand(init.Init().ToCommand())
	}
	return nil
}

func (p *Program[MSG]) injectStylesheets() {
	if p.styles == nil {
		return
	}
	typeKey := reflect.TypeOf(p.app).String()
	if sp, ok := p.app.(StylesheetProvider); ok {
		for i, css := range sp.Stylesheet() {
			p.styles.InjectOnce(fmt.Sprintf("static:%s:%d", typeKey, i), css)
		}
	}
	if sp, ok := p.app.(StyleProvider); ok {
		instanceKey := fmt.Sprintf("%p", p)
		for i, css := range sp.Style() {
			p.styles.InjectOnce(fmt.Sprintf("dynamic:%s:%s:%d", typeKey, instanceKey, i), css)
		}
	}
}

// Dispatch enqueues msg and schedules a commit pass if one isn't already
// pending (§4.7 dispatch cycle, §5 ordering guarantees).
func (p *Program[MSG]) Dispatch(msg MSG) {
	p.mu.Lock()
	p.pendingMsgs = append(p.pendingMsgs, msg)
	already := p.commitScheduled
	p.commitScheduled = true
	p.mu.Unlock()

	if !already {
		p.scheduleCommit()
	}
}

func (p *Program[MSG]) scheduleCommit() {
	weak := p.weak
	cancel := p.scheduler.RequestIdleCallback(func(deadline Deadline) {
		prog, ok := weak.upgrade()
		if !ok {
			return
		}
		prog.commitPass(deadline)
	})
	p.mu.Lock()
	p.idleHandle = cancel
	p.mu.Unlock()
}

// commitPass implements §4.7's commit pass, steps 1-5.
func (p *Program[MSG]) commitPass(deadline Deadline) {
	p.mu.Lock()
	p.commitScheduled = false
	msgs := p.pendingMsgs
	p.pendingMsgs = nil
	p.mu.Unlock()

	var dispatches []command.Command[MSG]
	mod := command.Modifier{ShouldUpdateView: true}

	for i, msg := range msgs {
		if deadline != nil && deadline.TimeRemaining() <= 0 && !deadline.DidTimeout() {
			p.mu.Lock()
			remaining := make([]MSG, 0, len(msgs)-i+len(p.pendingMsgs))
			remaining = append(remaining, msgs[i:]...)
			remaining = append(remaining, p.pendingMsgs...)
			p.pendingMsgs = remaining
			p.commitScheduled = true
			p.mu.Unlock()
			p.scheduleCommit()
			break
		}
		eff := p.app.Update(msg)
		cmd := eff.ToCommand()
		mod = mod.Combine(cmd.Modifier)
		dispatches = append(dispatches, cmd)
	}

	if mod.ShouldUpdateView {
		p.renderAndPatch(mod)
	}

	for _, cmd := range dispatches {
		p.runCommand(cmd)
	}
}

// renderAndPatch implements step 3: diff against currentVdom, then
// schedule the DOM apply on the next animation frame.
func (p *Program[MSG]) renderAndPatch(mod command.Modifier) {
	t0 := time.Now()
	newVdom := p.app.View()
	t1 := time.Now()
	patches := vdom.Diff(p.currentVdom, newVdom)
	t2 := time.Now()

	p.currentVdom = newVdom
	diffTime, patchBuildTime := t1.Sub(t0), t2.Sub(t1)

	weak := p.weak
	cancel := p.scheduler.RequestAnimationFrame(func() {
		prog, ok := weak.upgrade()
		if !ok {
			return
		}
		prog.applyPatches(patches, mod, diffTime, patchBuildTime)
	})
	p.mu.Lock()
	p.rafHandle = cancel
	p.mu.Unlock()
}

// applyPatches implements step 4: apply the batch, then assemble and
// publish measurements if requested.
func (p *Program[MSG]) applyPatches(patches []vdom.Patch[MSG], mod command.Modifier, diffTime, patchBuildTime time.Duration) {
	t0 := time.Now()
	newRoot, err := p.patcher.Apply(p.root, patches, p.Dispatch)
	domApply := time.Since(t0)
	if err != nil {
		p.logger.Warn("patch batch reported an error", "error", err)
	}
	p.root = newRoot

	if mod.LogMeasurements {
		m := Measurements{
			Name:           mod.MeasurementName,
			NodeCount:      countNodes(p.currentVdom),
			DiffTime:       diffTime,
			PatchBuildTime: patchBuildTime,
			DOMApplyTime:   domApply,
			Total:          diffTime + patchBuildTime + domApply,
			RetainCount:    len(patches),
		}
		if hook, ok := p.app.(MeasurementsHook); ok {
			hook.Measurements(m)
		}
		if p.sink != nil {
			p.sink.Observe(m)
		}
	}
	p.lastCommit = time.Now()
}

// runCommand implements step 5: every MSG a command eventually produces
// is recursively dispatched.
func (p *Program[MSG]) runCommand(cmd command.Command[MSG]) {
	switch cmd.Kind {
	case command.KindNone:
		return
	case command.KindAction:
		weak := p.weak
		action := cmd.Action
		go func() {
			msg, ok := action(context.Background())
			if !ok {
				return
			}
			if prog, upgraded := weak.upgrade(); upgraded {
				prog.Dispatch(msg)
			}
		}()
	case command.KindSubscription:
		weak := p.weak
		detach := cmd.Sub.Attach(func(msg MSG) {
			if prog, ok := weak.upgrade(); ok {
				prog.Dispatch(msg)
			}
		})
		p.mu.Lock()
		p.detachers = append(p.detachers, detach)
		p.mu.Unlock()
	case command.KindBatch:
		for _, sub := range cmd.Batch {
			p.runCommand(sub)
		}
	}
}

// Dispose cancels outstanding scheduler handles, detaches every live
// subscription, and makes weak-upgrade fail for any callback already in
// flight (§9 weak self-references).
func (p *Program[MSG]) Dispose() {
	p.mu.Lock()
	idle, raf := p.idleHandle, p.rafHandle
	detachers := p.detachers
	p.detachers = nil
	p.mu.Unlock()

	if idle != nil {
		idle()
	}
	if raf != nil {
		raf()
	}
	for _, detach := range detachers {
		detach()
	}
	p.weak.dispose()
}

// CurrentVdom returns the tree the last commit rendered, for tests and
// introspection.
func (p *Program[MSG]) CurrentVdom() *vdom.Node[MSG] { return p.currentVdom }
