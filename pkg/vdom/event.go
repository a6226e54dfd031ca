package vdom

// Event is the payload handed to an EventHandler. Real is the native
// browser event (opaque to this package; package domjs fills it in from
// syscall/js). Mount is set instead of Real for the synthetic "mount"
// event the applier fires on every newly-inserted element subtree.
type Event struct {
	Real  any
	Mount *MountEvent
}

// MountEvent is the synthetic event dispatched after a newly created
// element subtree is spliced into the live DOM, in document order.
type MountEvent struct {
	// TargetNode is the real DOM node (a syscall/js.Value in the wasm
	// build) that was just attached.
	TargetNode any
}

// Handler converts a captured Event into a message. A Handler value is
// compared for "did this listener change" purposes by its Token, not by
// Go value equality (closures are never comparable); see the token
// parameter of ListenerValue and On.
type Handler[MSG any] func(Event) MSG

// ComponentHandler is carried by ComponentEventListener attributes: it
// emits out-of-band, i.e. to the parent composing this component rather
// than through the owning Program's own update loop.
type ComponentHandler[MSG any] func(Event)
