//go:build js && wasm

package domjs

import (
	"strconv"
	"strings"
	"syscall/js"

	"github.com/vango-dev/sauron/pkg/runtime"
	"github.com/vango-dev/sauron/pkg/vdom"
)

var document = js.Global().Get("document")

// domHandle is the concrete NodeHandle this package hands back to
// package runtime: the live js.Value plus the data-vdom-id it was
// stamped with (0 until a listener forces one to be assigned) and any
// "mount" callbacks captured while building it, not yet fired because
// the subtree wasn't attached to the live document yet.
type domHandle struct {
	value         js.Value
	id            uint64
	pendingMounts []func()
}

// Driver is the Builder/Patcher pair for one Program. Both interfaces
// are satisfied by the same type so they share one listener registry
// and one id generator (§3, §4.4, §4.5).
type Driver[MSG any] struct {
	reg *registry
	ids *idGenerator
}

// New returns a Driver with its own registry and id generator.
func New[MSG any]() *Driver[MSG] {
	return &Driver[MSG]{reg: newRegistry(), ids: &idGenerator{}}
}

// Build constructs a detached real-DOM subtree from n (C5, §4.5).
func (d *Driver[MSG]) Build(n *vdom.Node[MSG], dispatch func(MSG)) runtime.NodeHandle {
	h := d.build(n, dispatch)
	if h == nil {
		return nil
	}
	return h
}

func (d *Driver[MSG]) build(n *vdom.Node[MSG], dispatch func(MSG)) *domHandle {
	if n == nil {
		return nil
	}
	if n.Kind == vdom.KindElement {
		return d.buildElement(n, dispatch)
	}
	switch n.Leaf {
	case vdom.LeafText:
		return &domHandle{value: document.Call("createTextNode", n.Text)}
	case vdom.LeafComment:
		return &domHandle{value: document.Call("createComment", n.Text)}
	case vdom.LeafSafeHTML:
		return &domHandle{value: buildSafeHTML(n.Text)}
	case vdom.LeafFragment, vdom.LeafNodeList:
		frag := document.Call("createDocumentFragment")
		h := &domHandle{value: frag}
		for _, c := range flattenForBuild(n.List) {
			d.appendChild(frag, h, c, dispatch)
		}
		return h
	case vdom.LeafTemplatedView:
		return d.build(n.View, dispatch)
	case vdom.LeafStatelessComponent, vdom.LeafStatefulComponent:
		return d.build(n.Comp.Render(), dispatch)
	default:
		// DocType (and anything else) is structurally disallowed at
		// runtime; surface it as a harmless placeholder rather than
		// panicking mid-build. Program surfaces ErrInvalidNodeVariant
		// from the patcher side for the cases it can detect up front.
		return &domHandle{value: document.Call("createComment", "invalid-node-variant: "+n.Leaf.String())}
	}
}

// buildSafeHTML wraps raw markup in a display:contents container so it
// occupies exactly one childNodes slot, keeping SafeHtml addressable by
// TreePath the same way every other child is (§4.5 open question:
// trades strict "no wrapper" semantics for keeping the one-slot
// invariant the rest of the applier depends on).
func buildSafeHTML(html string) js.Value {
	wrapper := document.Call("createElement", "div")
	wrapper.Get("style").Set("display", "contents")
	wrapper.Set("innerHTML", html)
	return wrapper
}

func (d *Driver[MSG]) buildElement(n *vdom.Node[MSG], dispatch func(MSG)) *domHandle {
	var el js.Value
	if n.Namespace != "" {
		el = document.Call("createElementNS", n.Namespace, n.Tag)
	} else {
		el = document.Call("createElement", n.Tag)
	}
	h := &domHandle{value: el}
	d.setAttributes(h, n.Tag, n.Attrs, dispatch)
	for _, c := range flattenForBuild(n.Children) {
		d.appendChild(el, h, c, dispatch)
	}
	return h
}

// appendChild builds c and appends it to parent, folding its pending
// mount callbacks into host's (document order: host's own mount, then
// each child's, in declaration order).
func (d *Driver[MSG]) appendChild(parent js.Value, host *domHandle, c *vdom.Node[MSG], dispatch func(MSG)) {
	if c == nil {
		return
	}
	child := d.build(c, dispatch)
	if child == nil {
		return
	}
	parent.Call("appendChild", child.value)
	host.pendingMounts = append(host.pendingMounts, child.pendingMounts...)
}

// flattenForBuild mirrors package vdom's unexported flattenChildren so
// the live childNodes array stays index-aligned with the differ's view
// of the tree (§4.3's transparency rule for Fragment/NodeList/
// TemplatedView).
func flattenForBuild[MSG any](nodes []*vdom.Node[MSG]) []*vdom.Node[MSG] {
	var out []*vdom.Node[MSG]
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if n.Kind == vdom.KindLeaf {
			switch n.Leaf {
			case vdom.LeafFragment, vdom.LeafNodeList:
				out = append(out, flattenForBuild(n.List)...)
				continue
			case vdom.LeafTemplatedView:
				out = append(out, flattenForBuild([]*vdom.Node[MSG]{n.View})...)
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

func (d *Driver[MSG]) setAttributes(h *domHandle, tag string, attrs []vdom.Attribute[MSG], dispatch func(MSG)) {
	for _, a := range attrs {
		if a.Name == vdom.NameKey || a.Name == vdom.NameSkip || a.Name == vdom.NameReplace {
			continue
		}
		d.setAttribute(h, tag, a, dispatch)
	}
}

func (d *Driver[MSG]) setAttribute(h *domHandle, tag string, a vdom.Attribute[MSG], dispatch func(MSG)) {
	switch a.Value.Kind {
	case vdom.AttrSimple:
		d.setSimpleAttribute(h, tag, a)
	case vdom.AttrStyle:
		h.value.Call("setAttribute", "style", vdom.JoinStyles(a.Value.Styles))
	case vdom.AttrEventListener, vdom.AttrComponentEventListener:
		d.attachListener(h, a, dispatch)
	case vdom.AttrEmpty:
	}
}

func (d *Driver[MSG]) setSimpleAttribute(h *domHandle, tag string, a vdom.Attribute[MSG]) {
	el := h.value
	v := a.Value.Simple
	switch a.Name {
	case vdom.NameInnerHTML:
		el.Set("innerHTML", v.String())
	case vdom.NameOpen, vdom.NameChecked, vdom.NameDisabled:
		b := v.Bool()
		el.Set(a.Name, b)
		if b {
			el.Call("setAttribute", a.Name, a.Name)
		} else {
			el.Call("removeAttribute", a.Name)
		}
	case vdom.NameValue:
		el.Call("setAttribute", vdom.NameValue, v.String())
		if vdom.IsValueBearing(tag) {
			el.Set("value", v.String())
			// AttributeValueCoercion (§7): numeric mirror is best-effort;
			// on parse failure the string-form attribute set above stands.
			if f, ok := numericValue(v); ok {
				el.Set("valueAsNumber", f)
			}
		}
	case "class":
		el.Set("className", v.String())
		el.Call("setAttribute", "class", v.String())
	case "for":
		el.Set("htmlFor", v.String())
		el.Call("setAttribute", "for", v.String())
	default:
		if a.Namespace != "" {
			el.Call("setAttributeNS", a.Namespace, a.Name, v.String())
		} else {
			el.Call("setAttribute", a.Name, v.String())
		}
	}
}

func numericValue(v vdom.Value) (float64, bool) {
	switch v.Kind {
	case vdom.ValueInt:
		return float64(v.I), true
	case vdom.ValueFloat:
		return v.F, true
	case vdom.ValueString:
		f, err := strconv.ParseFloat(v.Str, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// attachListener wires a real addEventListener for any event except the
// synthetic "mount", which never reaches the DOM: it's captured as a
// pending callback the applier fires once the subtree is attached.
func (d *Driver[MSG]) attachListener(h *domHandle, a vdom.Attribute[MSG], dispatch func(MSG)) {
	eventName := strings.TrimPrefix(a.Name, "on")

	if eventName == "mount" {
		value := h.value
		switch a.Value.Kind {
		case vdom.AttrEventListener:
			for _, entry := range a.Value.Listeners {
				handler := entry.Handler
				h.pendingMounts = append(h.pendingMounts, func() {
					dispatch(handler(vdom.Event{Mount: &vdom.MountEvent{TargetNode: value}}))
				})
			}
		case vdom.AttrComponentEventListener:
			for _, entry := range a.Value.CompListeners {
				handler := entry.Handler
				h.pendingMounts = append(h.pendingMounts, func() {
					handler(vdom.Event{Mount: &vdom.MountEvent{TargetNode: value}})
				})
			}
		}
		return
	}

	if h.id == 0 {
		h.id = d.ids.next_()
		h.value.Call("setAttribute", vdom.NameVdomIDAttr, strconv.FormatUint(h.id, 10))
	} else if old, ok := d.reg.lookup(h.id, eventName); ok {
		h.value.Call("removeEventListener", eventName, old.Value)
	}

	// Every accumulated handler for this (name, kind) fires off one
	// native registration, in declaration order (§3, §4.1: "listeners
	// accumulate ... all fire on event").
	var fn js.Func
	switch a.Value.Kind {
	case vdom.AttrEventListener:
		handlers := a.Value.Listeners
		fn = js.FuncOf(func(this js.Value, args []js.Value) any {
			var real js.Value
			if len(args) > 0 {
				real = args[0]
			}
			ev := vdom.Event{Real: real}
			for _, entry := range handlers {
				dispatch(entry.Handler(ev))
			}
			return nil
		})
	case vdom.AttrComponentEventListener:
		handlers := a.Value.CompListeners
		fn = js.FuncOf(func(this js.Value, args []js.Value) any {
			var real js.Value
			if len(args) > 0 {
				real = args[0]
			}
			ev := vdom.Event{Real: real}
			for _, entry := range handlers {
				entry.Handler(ev)
			}
			return nil
		})
	default:
		return
	}
	h.value.Call("addEventListener", eventName, fn)
	d.reg.attach(h.id, eventName, fn)
}
