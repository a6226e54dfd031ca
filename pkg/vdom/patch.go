package vdom

// PatchOp discriminates the Patch variants of §4.3.
type PatchOp uint8

const (
	PatchAddAttributes PatchOp = iota
	PatchRemoveAttributes
	PatchInsertBeforeNode
	PatchInsertAfterNode
	PatchAppendChildren
	PatchReplaceNode
	PatchRemoveNode
	PatchClearChildren
	PatchMoveBeforeNode
	PatchMoveAfterNode
)

// String names a PatchOp for diagnostics and log lines.
func (op PatchOp) String() string {
	switch op {
	case PatchAddAttributes:
		return "AddAttributes"
	case PatchRemoveAttributes:
		return "RemoveAttributes"
	case PatchInsertBeforeNode:
		return "InsertBeforeNode"
	case PatchInsertAfterNode:
		return "InsertAfterNode"
	case PatchAppendChildren:
		return "AppendChildren"
	case PatchReplaceNode:
		return "ReplaceNode"
	case PatchRemoveNode:
		return "RemoveNode"
	case PatchClearChildren:
		return "ClearChildren"
	case PatchMoveBeforeNode:
		return "MoveBeforeNode"
	case PatchMoveAfterNode:
		return "MoveAfterNode"
	default:
		return "Unknown"
	}
}

// Patch is a single structural edit located by a TreePath (§4.3). The
// differ never mutates the real DOM; it only ever appends to a Patch
// slice. Path always addresses a node in the *old* (pre-patch) tree,
// including every entry of Moved.
type Patch[MSG any] struct {
	Op PatchOp

	// Path is the primary target: the node AddAttributes/RemoveAttributes
	// apply to, the node ReplaceNode/RemoveNode/ClearChildren act on, or
	// the reference node InsertBeforeNode/InsertAfterNode/MoveBeforeNode/
	// MoveAfterNode splice relative to.
	Path TreePath

	// ExpectedTag is the element tag AddAttributes/RemoveAttributes were
	// diffed against (§7 TagMismatch). An Applier resolving Path must
	// find this same tag still live before mutating attributes; a
	// mismatch means something moved the DOM out from under the diff and
	// is fatal to the whole batch rather than silently patched anyway.
	ExpectedTag string

	// Attrs carries the attribute set for AddAttributes/RemoveAttributes.
	Attrs []Attribute[MSG]

	// Nodes carries the node(s) to materialise for InsertBeforeNode,
	// InsertAfterNode, AppendChildren and ReplaceNode. For ReplaceNode,
	// Nodes[0] replaces the target and Nodes[1:] are spliced after it
	// (§4.3).
	Nodes []*Node[MSG]

	// Moved lists old-tree paths (resolved to DOM handles before any
	// patch in the batch runs) that are detached from their current
	// parent and re-inserted relative to Path, for MoveBeforeNode and
	// MoveAfterNode.
	Moved []TreePath
}

// AddAttributes builds the patch for newly-added or changed attributes.
// expectedTag is the element tag the patch was diffed against (§7).
func AddAttributes[MSG any](path TreePath, expectedTag string, attrs []Attribute[MSG]) Patch[MSG] {
	return Patch[MSG]{Op: PatchAddAttributes, Path: path, ExpectedTag: expectedTag, Attrs: attrs}
}

// RemoveAttributes builds the patch for attributes present only in the
// old tree. expectedTag is the element tag the patch was diffed against
// (§7).
func RemoveAttributes[MSG any](path TreePath, expectedTag string, attrs []Attribute[MSG]) Patch[MSG] {
	return Patch[MSG]{Op: PatchRemoveAttributes, Path: path, ExpectedTag: expectedTag, Attrs: attrs}
}

// InsertBeforeNode builds the patch that splices nodes before path.
func InsertBeforeNode[MSG any](path TreePath, nodes []*Node[MSG]) Patch[MSG] {
	return Patch[MSG]{Op: PatchInsertBeforeNode, Path: path, Nodes: nodes}
}

// InsertAfterNode builds the patch that splices nodes after path.
func InsertAfterNode[MSG any](path TreePath, nodes []*Node[MSG]) Patch[MSG] {
	return Patch[MSG]{Op: PatchInsertAfterNode, Path: path, Nodes: nodes}
}

// AppendChildren builds the patch that appends children to the element
// at path.
func AppendChildren[MSG any](path TreePath, children []*Node[MSG]) Patch[MSG] {
	return Patch[MSG]{Op: PatchAppendChildren, Path: path, Nodes: children}
}

// ReplaceNode builds the patch that replaces the node at path with
// replacement[0], splicing replacement[1:] after it.
func ReplaceNode[MSG any](path TreePath, replacement []*Node[MSG]) Patch[MSG] {
	return Patch[MSG]{Op: PatchReplaceNode, Path: path, Nodes: replacement}
}

// RemoveNode builds the patch that detaches the node at path.
func RemoveNode[MSG any](path TreePath) Patch[MSG] {
	return Patch[MSG]{Op: PatchRemoveNode, Path: path}
}

// ClearChildren builds the patch that removes every child of the node
// at path.
func ClearChildren[MSG any](path TreePath) Patch[MSG] {
	return Patch[MSG]{Op: PatchClearChildren, Path: path}
}

// MoveBeforeNode builds the patch that detaches moved (old-tree paths)
// and reinserts them, in order, before path.
func MoveBeforeNode[MSG any](path TreePath, moved []TreePath) Patch[MSG] {
	return Patch[MSG]{Op: PatchMoveBeforeNode, Path: path, Moved: moved}
}

// MoveAfterNode builds the patch that detaches moved (old-tree paths)
// and reinserts them, in order, after path.
func MoveAfterNode[MSG any](path TreePath, moved []TreePath) Patch[MSG] {
	return Patch[MSG]{Op: PatchMoveAfterNode, Path: path, Moved: moved}
}
