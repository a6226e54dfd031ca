// Package command models the asynchronous producers of messages that
// application update() calls hand back to the runtime (§4.6): one-shot
// Actions and long-lived Subscriptions, plus the Modifier flags that
// steer a commit pass (suppressing the view update, opting into
// measurement logging).
package command

import "context"

// Modifier carries the per-commit flags a batch of commands contributes
// (§4.6, §4.7 step 2): shouldUpdateView combines by logical AND across a
// batch (any false suppresses the render), the measurement flags combine
// by logical OR.
type Modifier struct {
	ShouldUpdateView bool
	LogMeasurements  bool
	MeasurementName  string
}

func defaultModifier() Modifier { return Modifier{ShouldUpdateView: true} }

// Combine unions two Modifiers per the commit-pass coalescing rule.
func (m Modifier) Combine(o Modifier) Modifier {
	name := m.MeasurementName
	if name == "" {
		name = o.MeasurementName
	}
	return Modifier{
		ShouldUpdateView: m.ShouldUpdateView && o.ShouldUpdateView,
		LogMeasurements:  m.LogMeasurements || o.LogMeasurements,
		MeasurementName:  name,
	}
}

// Kind discriminates a Command's producer shape.
type Kind uint8

const (
	KindNone Kind = iota
	KindAction
	KindSubscription
	KindBatch
)

// ActionFunc produces at most one MSG. ok is false once the action is
// exhausted; polling an exhausted action again must keep returning false.
type ActionFunc[MSG any] func(ctx context.Context) (msg MSG, ok bool)

// Subscription is an unbounded stream of MSG fed by an attached closure
// (e.g. a DOM listener). Attach returns a detach func that must remove
// whatever the subscription registered (§4.8 cancellation policy).
type Subscription[MSG any] struct {
	Attach func(emit func(MSG)) (detach func())
}

// Command is a handle for asynchronous message production (§4.6).
type Command[MSG any] struct {
	Kind     Kind
	Modifier Modifier
	Action   ActionFunc[MSG]
	Sub      *Subscription[MSG]
	Batch    []Command[MSG]
}

// None produces no messages.
func None[MSG any]() Command[MSG] {
	return Command[MSG]{Kind: KindNone, Modifier: defaultModifier()}
}

// Single wraps a one-shot action.
func Single[MSG any](action ActionFunc[MSG]) Command[MSG] {
	return Command[MSG]{Kind: KindAction, Modifier: defaultModifier(), Action: action}
}

// Sub wraps a long-lived subscription.
func Sub[MSG any](attach func(emit func(MSG)) (detach func())) Command[MSG] {
	return Command[MSG]{Kind: KindSubscription, Modifier: defaultModifier(), Sub: &Subscription[MSG]{Attach: attach}}
}

// BatchCmd groups commands to run together; their modifiers combine.
func BatchCmd[MSG any](cmds ...Command[MSG]) Command[MSG] {
	mod := defaultModifier()
	for _, c := range cmds {
		mod = mod.Combine(c.Modifier)
	}
	return Command[MSG]{Kind: KindBatch, Modifier: mod, Batch: cmds}
}

// NoRender returns c with shouldUpdateView cleared for this cycle.
func (c Command[MSG]) NoRender() Command[MSG] {
	c.Modifier.ShouldUpdateView = false
	return c
}

// Measure returns c opted into measurement logging under name.
func (c Command[MSG]) Measure(name string) Command[MSG] {
	c.Modifier.LogMeasurements = true
	c.Modifier.MeasurementName = name
	return c
}

// MapMsg applies f to every MSG a Command eventually produces, preserving
// its shape and Modifier. This is how a parent wires a child component's
// commands into its own MSG type.
func MapMsg[A, B any](c Command[A], f func(A) B) Command[B] {
	switch c.Kind {
	case KindAction:
		inner := c.Action
		return Command[B]{Kind: KindAction, Modifier: c.Modifier, Action: func(ctx context.Context) (B, bool) {
			a, ok := inner(ctx)
			if !ok {
				var zero B
				return zero, false
			}
			return f(a), true
		}}
	case KindSubscription:
		inner := c.Sub
		return Command[B]{Kind: KindSubscription, Modifier: c.Modifier, Sub: &Subscription[B]{
			Attach: func(emit func(B)) func() {
				return inner.Attach(func(a A) { emit(f(a)) })
			},
		}}
	case KindBatch:
		out := make([]Command[B], len(c.Batch))
		for i, sub := range c.Batch {
			out[i] = MapMsg(sub, f)
		}
		return Command[B]{Kind: KindBatch, Modifier: c.Modifier, Batch: out}
	default:
		return None[B]()
	}
}

// Effects is the return shape of update()/init(): a mix of messages this
// component handles itself (Local) and messages meant for whatever
// composes it (External), plus the commit Modifier (§4.6).
type Effects[MSG, XMSG any] struct {
	Local    []MSG
	External []XMSG
	Modifier Modifier
}

// NoEffects produces neither local nor external messages.
func NoEffects[MSG, XMSG any]() Effects[MSG, XMSG] {
	return Effects[MSG, XMSG]{Modifier: defaultModifier()}
}

// LocalEffects wraps messages this component's own update() loop should
// receive next.
func LocalEffects[MSG, XMSG any](msgs ...MSG) Effects[MSG, XMSG] {
	return Effects[MSG, XMSG]{Local: msgs, Modifier: defaultModifier()}
}

// ExternalEffects wraps messages meant for the parent composing this
// component; a Program never dispatches these itself.
func ExternalEffects[MSG, XMSG any](msgs ...XMSG) Effects[MSG, XMSG] {
	return Effects[MSG, XMSG]{External: msgs, Modifier: defaultModifier()}
}

// ToCommand lifts every Local message into an already-resolved one-shot
// action and discards External ones (§4.6): the parent routes externals
// by inspecting Effects directly, not through the Command produced here.
func (e Effects[MSG, XMSG]) ToCommand() Command[MSG] {
	if len(e.Local) == 0 {
		return Command[MSG]{Kind: KindNone, Modifier: e.Modifier}
	}
	cmds := make([]Command[MSG], len(e.Local))
	for i, m := range e.Local {
		cmds[i] = Command[MSG]{Kind: KindAction, Modifier: e.Modifier, Action: resolvedAction(m)}
	}
	if len(cmds) == 1 {
		return cmds[0]
	}
	batched := BatchCmd(cmds...)
	batched.Modifier = e.Modifier
	return batched
}

// resolvedAction wraps a value already known at construction time as a
// one-shot ActionFunc that fires exactly once.
func resolvedAction[MSG any](msg MSG) ActionFunc[MSG] {
	fired := false
	return func(ctx context.Context) (MSG, bool) {
		if fired {
			var zero MSG
			return zero, false
		}
		fired = true
		return msg, true
	}
}
