//go:build js && wasm

package domjs

import (
	"fmt"
	"strconv"
	"strings"
	"syscall/js"

	"github.com/vango-dev/sauron/pkg/runtime"
	"github.com/vango-dev/sauron/pkg/vdom"
)

// Mount splices built into target per action, returning the handle
// Program should treat as its current root (§4.7 Mount).
func (d *Driver[MSG]) Mount(target, built runtime.NodeHandle, action runtime.MountAction) (runtime.NodeHandle, error) {
	b, ok := built.(*domHandle)
	if !ok || b == nil {
		return built, fmt.Errorf("%w: builder returned no node", runtime.ErrInvalidNodeVariant)
	}
	targetEl, ok := target.(js.Value)
	if !ok {
		return built, fmt.Errorf("%w: mount target is not a js.Value", runtime.ErrInvalidNodeVariant)
	}

	switch action {
	case runtime.MountAppend:
		targetEl.Call("appendChild", b.value)
	case runtime.MountReplace:
		parent := targetEl.Get("parentNode")
		if parent.Truthy() {
			parent.Call("replaceChild", b.value, targetEl)
		}
	case runtime.MountClearAppend:
		for targetEl.Get("firstChild").Truthy() {
			targetEl.Call("removeChild", targetEl.Get("firstChild"))
		}
		targetEl.Call("appendChild", b.value)
	}

	for _, fn := range b.pendingMounts {
		fn()
	}
	return b, nil
}

// Apply resolves every patch's path against root up front, then applies
// them in order, returning the (possibly different) root handle (§4.3,
// §4.4). An AddAttributes/RemoveAttributes patch whose resolved element
// no longer has the tag it was diffed against (ErrTagMismatch, §7)
// aborts the whole batch rather than mutating attributes on the wrong
// element.
func (d *Driver[MSG]) Apply(root runtime.NodeHandle, patches []vdom.Patch[MSG], dispatch func(MSG)) (runtime.NodeHandle, error) {
	r, ok := root.(*domHandle)
	if !ok || r == nil {
		return root, fmt.Errorf("%w: nil or foreign root handle", runtime.ErrInvalidNodeVariant)
	}

	resolved := make(map[string]js.Value, len(patches)*2)
	var firstErr error
	resolve := func(p vdom.TreePath) (js.Value, bool) {
		key := p.String()
		if v, ok := resolved[key]; ok {
			return v, true
		}
		v, err := resolvePath(r.value, p)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return js.Value{}, false
		}
		resolved[key] = v
		return v, true
	}

	for _, patch := range patches {
		resolve(patch.Path)
		for _, m := range patch.Moved {
			resolve(m)
		}
	}

	newRoot := r
	var mounts []func()

patchLoop:
	for _, patch := range patches {
		target, ok := resolved[patch.Path.String()]
		if !ok {
			continue
		}
		switch patch.Op {
		case vdom.PatchAddAttributes:
			tag := elementTag(target)
			if patch.ExpectedTag != "" && tag != patch.ExpectedTag {
				firstErr = fmt.Errorf("%w: %s at %s, diffed as %s", runtime.ErrTagMismatch, tag, patch.Path, patch.ExpectedTag)
				break patchLoop
			}
			h := &domHandle{value: target, id: existingID(target)}
			d.setAttributes(h, tag, patch.Attrs, dispatch)
			mounts = append(mounts, h.pendingMounts...)

		case vdom.PatchRemoveAttributes:
			if tag := elementTag(target); patch.ExpectedTag != "" && tag != patch.ExpectedTag {
				firstErr = fmt.Errorf("%w: %s at %s, diffed as %s", runtime.ErrTagMismatch, tag, patch.Path, patch.ExpectedTag)
				break patchLoop
			}
			d.removeAttributes(target, patch.Attrs)

		case vdom.PatchInsertBeforeNode, vdom.PatchInsertAfterNode, vdom.PatchAppendChildren:
			parent := targetParentFor(patch.Op, target)
			cursor := target
			for _, n := range patch.Nodes {
				built := d.build(n, dispatch)
				if built == nil {
					continue
				}
				switch patch.Op {
				case vdom.PatchAppendChildren:
					parent.Call("appendChild", built.value)
				case vdom.PatchInsertBeforeNode:
					parent.Call("insertBefore", built.value, cursor)
				case vdom.PatchInsertAfterNode:
					insertAfter(parent, cursor, built.value)
					cursor = built.value
				}
				mounts = append(mounts, built.pendingMounts...)
			}

		case vdom.PatchReplaceNode:
			if len(patch.Nodes) == 0 {
				continue
			}
			parent := target.Get("parentNode")
			d.disposeSubtreeListeners(target)

			first := d.build(patch.Nodes[0], dispatch)
			if first == nil {
				continue
			}
			if parent.Truthy() {
				parent.Call("replaceChild", first.value, target)
			}
			if patch.Path.IsEmpty() {
				newRoot = first
			}
			mounts = append(mounts, first.pendingMounts...)

			cursor := first.value
			for _, n := range patch.Nodes[1:] {
				built := d.build(n, dispatch)
				if built == nil {
					continue
				}
				if parent.Truthy() {
					insertAfter(parent, cursor, built.value)
				}
				mounts = append(mounts, built.pendingMounts...)
				cursor = built.value
			}

		case vdom.PatchRemoveNode:
			d.disposeSubtreeListeners(target)
			parent := target.Get("parentNode")
			if parent.Truthy() {
				parent.Call("removeChild", target)
			}

		case vdom.PatchClearChildren:
			for target.Get("firstChild").Truthy() {
				child := target.Get("firstChild")
				d.disposeSubtreeListeners(child)
				target.Call("removeChild", child)
			}

		case vdom.PatchMoveBeforeNode, vdom.PatchMoveAfterNode:
			parent := targetParentFor(patch.Op, target)
			cursor := target
			for _, mp := range patch.Moved {
				node, ok := resolved[mp.String()]
				if !ok {
					continue
				}
				srcParent := node.Get("parentNode")
				if srcParent.Truthy() {
					srcParent.Call("removeChild", node)
				}
				switch patch.Op {
				case vdom.PatchMoveBeforeNode:
					parent.Call("insertBefore", node, cursor)
				case vdom.PatchMoveAfterNode:
					insertAfter(parent, cursor, node)
					cursor = node
				}
			}
		}
	}

	for _, fn := range mounts {
		fn()
	}

	if firstErr != nil {
		return newRoot, firstErr
	}
	return newRoot, nil
}

// resolvePath walks root's childNodes by index, the only addressing
// scheme a Patch's TreePath uses (§4.2, §4.4 step 1).
func resolvePath(root js.Value, path vdom.TreePath) (js.Value, error) {
	cur := root
	for _, idx := range path {
		children := cur.Get("childNodes")
		length := children.Get("length").Int()
		if idx < 0 || idx >= length {
			return js.Value{}, fmt.Errorf("%w: %s", runtime.ErrPathNotFound, path.String())
		}
		cur = children.Index(idx)
	}
	return cur, nil
}

// targetParentFor reports the true parent to splice into: for
// AppendChildren, path addresses the container itself; for every other
// insert/move op, path addresses a sibling reference node.
func targetParentFor(op vdom.PatchOp, target js.Value) js.Value {
	if op == vdom.PatchAppendChildren {
		return target
	}
	return target.Get("parentNode")
}

func insertAfter(parent, ref, node js.Value) {
	next := ref.Get("nextSibling")
	if next.Truthy() {
		parent.Call("insertBefore", node, next)
	} else {
		parent.Call("appendChild", node)
	}
}

func elementTag(el js.Value) string {
	tag := el.Get("tagName")
	if !tag.Truthy() {
		return ""
	}
	s := tag.String()
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}

func existingID(el js.Value) uint64 {
	attr := el.Call("getAttribute", vdom.NameVdomIDAttr)
	if !attr.Truthy() {
		return 0
	}
	id, err := strconv.ParseUint(attr.String(), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// disposeSubtreeListeners releases every registered listener under
// node's own id and every descendant's, called before node is removed
// or replaced so its closures don't outlive it (§4.4, §9).
func (d *Driver[MSG]) disposeSubtreeListeners(node js.Value) {
	if node.Get("nodeType").Int() != 1 {
		return
	}
	if id := existingID(node); id != 0 {
		d.reg.disposeSubtree(id)
	}
	children := node.Get("childNodes")
	n := children.Get("length").Int()
	for i := 0; i < n; i++ {
		d.disposeSubtreeListeners(children.Index(i))
	}
}

// removeAttributes applies a RemoveAttributes patch: detaching real
// listeners, clearing mirrored boolean/class/for properties, and
// removing the DOM attribute otherwise.
func (d *Driver[MSG]) removeAttributes(target js.Value, attrs []vdom.Attribute[MSG]) {
	id := existingID(target)
	for _, a := range attrs {
		if a.Value.Kind == vdom.AttrEventListener || a.Value.Kind == vdom.AttrComponentEventListener {
			eventName := strings.TrimPrefix(a.Name, "on")
			if eventName == "mount" {
				continue
			}
			if id != 0 {
				if fn, ok := d.reg.lookup(id, eventName); ok {
					target.Call("removeEventListener", eventName, fn.Value)
				}
				d.reg.detach(id, eventName)
			}
			continue
		}
		switch a.Name {
		case vdom.NameOpen, vdom.NameChecked, vdom.NameDisabled:
			target.Set(a.Name, false)
			target.Call("removeAttribute", a.Name)
		case "class":
			target.Set("className", "")
			target.Call("removeAttribute", "class")
		case "for":
			target.Set("htmlFor", "")
			target.Call("removeAttribute", "for")
		default:
			target.Call("removeAttribute", a.Name)
		}
	}
}
