package vdom

const noMatch = -1

// Diff compares two trees built for the same mount point and returns the
// ordered patch list that transforms the DOM built from old into the DOM
// that would be built from new (§4.3). Diff(t, t) returns nil unless t
// carries an event listener with a nil Token: such a listener never
// compares equal, so it is emitted again as AddAttributes.
func Diff[MSG any](old, new_ *Node[MSG]) []Patch[MSG] {
	var out []Patch[MSG]
	diffNode(RootPath(), old, new_, &out)
	return out
}

// diffNode is the recursive descent at one aligned (old, new) pair.
// path addresses old (and, once patched, new) at this position.
func diffNode[MSG any](path TreePath, old, new_ *Node[MSG], out *[]Patch[MSG]) {
	if new_ == nil {
		if old != nil {
			*out = append(*out, RemoveNode[MSG](path))
		}
		return
	}
	if old == nil {
		// Callers (diffChildren) insert new-only nodes themselves; a bare
		// nil old reaching here means a caller forgot to do so.
		return
	}
	if new_.ShouldSkip() {
		return
	}
	if needsReplace(old, new_) {
		*out = append(*out, ReplaceNode[MSG](path, []*Node[MSG]{new_}))
		return
	}

	switch new_.Kind {
	case KindElement:
		diffAttrs(path, new_.Tag, old.Attrs, new_.Attrs, out)
		diffChildren(path, old.Children, new_.Children, out)
	case KindLeaf:
		diffLeaf(path, old, new_, out)
	}
}

// needsReplace decides step 2 of §4.3: a hard ReplaceNode subsumes every
// other kind of edit for this node.
func needsReplace[MSG any](old, new_ *Node[MSG]) bool {
	if new_.ForceReplace() {
		return true
	}
	if old.Kind != new_.Kind {
		return true
	}
	if new_.Kind == KindElement {
		if old.Tag != new_.Tag || old.Namespace != new_.Namespace {
			return true
		}
		return listenerRemovedWithoutReplacement(old.Attrs, new_.Attrs)
	}
	if old.Leaf != new_.Leaf {
		return true
	}
	if new_.Leaf == LeafStatefulComponent {
		oldSM, ok1 := old.Comp.(StatefulModel[MSG])
		newSM, ok2 := new_.Comp.(StatefulModel[MSG])
		if !ok1 || !ok2 {
			return true
		}
		return oldSM.Identity() != newSM.Identity()
	}
	return false
}

// listenerRemovedWithoutReplacement implements the source's conservative
// rule: if an event name carried a listener in old and carries none at
// all in new, the node is replaced wholesale rather than patched with a
// bare RemoveAttributes (§4.3 step 2).
func listenerRemovedWithoutReplacement[MSG any](old, new_ []Attribute[MSG]) bool {
	newHas := make(map[string]bool, len(new_))
	for _, a := range new_ {
		if a.Value.Kind.isListener() {
			newHas[a.Name] = true
		}
	}
	for _, a := range old {
		if a.Value.Kind.isListener() && !newHas[a.Name] {
			return true
		}
	}
	return false
}

// diffLeaf handles the non-Element Kind variants.
func diffLeaf[MSG any](path TreePath, old, new_ *Node[MSG], out *[]Patch[MSG]) {
	switch new_.Leaf {
	case LeafText, LeafComment, LeafSafeHTML, LeafDocType:
		if old.Text != new_.Text {
			*out = append(*out, ReplaceNode[MSG](path, []*Node[MSG]{new_}))
		}
	case LeafFragment, LeafNodeList:
		// Ordinarily unreachable: a Fragment/NodeList occurring as a
		// direct child is flattened away by diffChildren before diffNode
		// ever sees it. This branch only fires when one is returned
		// directly as a component's render root, which Diff treats as
		// transparent at the component's own path.
		diffChildren(path, old.List, new_.List, out)
	case LeafTemplatedView:
		diffNode(path, old.View, new_.View, out)
	case LeafStatelessComponent, LeafStatefulComponent:
		diffNode(path, old.Comp.Render(), new_.Comp.Render(), out)
	}
}

// diffAttrs implements §4.1's name-grouped attribute diff. key/skip/
// replace are control attributes, never emitted as DOM patches. tag is
// new_'s element tag (== old's: needsReplace already forced a
// ReplaceNode for any tag change before diffAttrs is reached), stamped
// onto the resulting patches as ExpectedTag for the applier's §7
// TagMismatch check.
func diffAttrs[MSG any](path TreePath, tag string, old, new_ []Attribute[MSG], out *[]Patch[MSG]) {
	oldByName := make(map[string]Attribute[MSG], len(old))
	for _, a := range old {
		if isControlAttr(a.Name) {
			continue
		}
		oldByName[a.Name] = a
	}
	newByName := make(map[string]Attribute[MSG], len(new_))
	for _, a := range new_ {
		if isControlAttr(a.Name) {
			continue
		}
		newByName[a.Name] = a
	}

	var removed []Attribute[MSG]
	for _, a := range old {
		if isControlAttr(a.Name) {
			continue
		}
		if _, ok := newByName[a.Name]; !ok {
			removed = append(removed, a)
		}
	}

	var added []Attribute[MSG]
	for _, a := range new_ {
		if isControlAttr(a.Name) {
			continue
		}
		oa, existed := oldByName[a.Name]
		if !existed || !attrValueEqual(oa.Value, a.Value) {
			added = append(added, a)
		}
	}

	if len(removed) > 0 {
		*out = append(*out, RemoveAttributes(path, tag, removed))
	}
	if len(added) > 0 {
		*out = append(*out, AddAttributes(path, tag, added))
	}
}

var controlAttrNames = map[string]bool{NameKey: true, NameSkip: true, NameReplace: true}

func isControlAttr(name string) bool { return controlAttrNames[name] }

// attrValueEqual compares two AttributeValues the way the differ must:
// scalars and styles by value, listeners by stability Token only (never
// by Go value, since closures aren't comparable).
func attrValueEqual[MSG any](a, b AttributeValue[MSG]) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case AttrSimple:
		return a.Simple.Equal(b.Simple)
	case AttrStyle:
		return joinStyles(a.Styles) == joinStyles(b.Styles)
	case AttrEventListener:
		return listenerEntriesEqual(a.Listeners, b.Listeners)
	case AttrComponentEventListener:
		return compListenerEntriesEqual(a.CompListeners, b.CompListeners)
	case AttrEmpty:
		return true
	default:
		return false
	}
}

// flattenChildren expands Fragment/NodeList/TemplatedView entries in
// place so every remaining entry corresponds to exactly one DOM-facing
// slot; this is what lets TreePath index into "the real DOM's children"
// even though the VDOM tree nests grouping constructs with no DOM
// counterpart of their own.
func flattenChildren[MSG any](nodes []*Node[MSG]) []*Node[MSG] {
	needsFlatten := false
	for _, n := range nodes {
		if n == nil || isTransparent(n) {
			needsFlatten = true
			break
		}
	}
	if !needsFlatten {
		return nodes
	}
	out := make([]*Node[MSG], 0, len(nodes))
	for _, n := range nodes {
		switch {
		case n == nil:
			continue
		case n.Kind == KindLeaf && (n.Leaf == LeafFragment || n.Leaf == LeafNodeList):
			out = append(out, flattenChildren(n.List)...)
		case n.Kind == KindLeaf && n.Leaf == LeafTemplatedView:
			out = append(out, flattenChildren([]*Node[MSG]{n.View})...)
		default:
			out = append(out, n)
		}
	}
	return out
}

func isTransparent[MSG any](n *Node[MSG]) bool {
	return n.Kind == KindLeaf && (n.Leaf == LeafFragment || n.Leaf == LeafNodeList || n.Leaf == LeafTemplatedView)
}

// diffChildren picks keyed or positional reconciliation per §4.3.
func diffChildren[MSG any](path TreePath, oldChildren, newChildren []*Node[MSG], out *[]Patch[MSG]) {
	old := flattenChildren(oldChildren)
	new_ := flattenChildren(newChildren)
	if hasKeys(old) || hasKeys(new_) {
		diffKeyedChildren(path, old, new_, out)
	} else {
		diffPositionalChildren(path, old, new_, out)
	}
}

func hasKeys[MSG any](nodes []*Node[MSG]) bool {
	for _, n := range nodes {
		if _, ok := n.Key(); ok {
			return true
		}
	}
	return false
}

// diffPositionalChildren pairs children by index (§4.3 Positional diffing).
func diffPositionalChildren[MSG any](path TreePath, old, new_ []*Node[MSG], out *[]Patch[MSG]) {
	n := len(old)
	if len(new_) < n {
		n = len(new_)
	}
	for i := 0; i < n; i++ {
		diffNode(path.Traverse(i), old[i], new_[i], out)
	}
	switch {
	case len(new_) > len(old):
		*out = append(*out, AppendChildren(path, new_[len(old):]))
	case len(old) > len(new_):
		for i := len(new_); i < len(old); i++ {
			*out = append(*out, RemoveNode[MSG](path.Traverse(i)))
		}
	}
}

func sameKey[MSG any](a, b *Node[MSG]) bool {
	ak, aok := a.Key()
	bk, bok := b.Key()
	return aok && bok && ak == bk
}

// diffKeyedChildren implements the three-phase keyed reconciliation of
// §4.3: matching ends, then the middle range, then the LIS-based keyed
// middle.
func diffKeyedChildren[MSG any](path TreePath, old, new_ []*Node[MSG], out *[]Patch[MSG]) {
	// Phase A: matching ends.
	l := 0
	for l < len(old) && l < len(new_) && sameKey(old[l], new_[l]) {
		diffNode(path.Traverse(l), old[l], new_[l], out)
		l++
	}
	if l == len(old) {
		if l < len(new_) {
			*out = append(*out, AppendChildren(path, new_[l:]))
		}
		return
	}
	if l == len(new_) {
		for i := l; i < len(old); i++ {
			*out = append(*out, RemoveNode[MSG](path.Traverse(i)))
		}
		return
	}

	r := 0
	for l+r < len(old) && l+r < len(new_) && sameKey(old[len(old)-1-r], new_[len(new_)-1-r]) {
		oi, ni := len(old)-1-r, len(new_)-1-r
		diffNode(path.Traverse(oi), old[oi], new_[ni], out)
		r++
	}

	oldMid := old[l : len(old)-r]
	newMid := new_[l : len(new_)-r]

	// Phase B: the middle range.
	if len(newMid) == 0 {
		for i := range oldMid {
			*out = append(*out, RemoveNode[MSG](path.Traverse(l+i)))
		}
		return
	}
	if len(oldMid) == 0 {
		insertMidNodes(path, l, len(old), newMid, out)
		return
	}

	// Phase C: keyed middle with LIS.
	diffKeyedMiddle(path, l, r > 0, oldMid, newMid, out)
}

// insertMidNodes anchors a pure-insertion batch at the boundary left by
// Phase A, when the old middle range is empty.
func insertMidNodes[MSG any](path TreePath, l, oldLen int, nodes []*Node[MSG], out *[]Patch[MSG]) {
	switch {
	case l > 0:
		*out = append(*out, InsertAfterNode(path.Traverse(l-1), nodes))
	case oldLen > l:
		*out = append(*out, InsertBeforeNode(path.Traverse(l), nodes))
	default:
		*out = append(*out, AppendChildren(path, nodes))
	}
}

// diffKeyedMiddle implements phase C: build the old-key index, map each
// new-middle entry to its old match (or sentinel), drop unmatched old
// entries, take the LIS of the matched mapping as the set that needs no
// move, and bucket everything else into insert/move batches anchored on
// the LIS's surviving neighbours.
func diffKeyedMiddle[MSG any](path TreePath, l int, hasTail bool, oldMid, newMid []*Node[MSG], out *[]Patch[MSG]) {
	oldKeyToIndex := make(map[string]int, len(oldMid))
	for i, n := range oldMid {
		if k, ok := n.Key(); ok {
			if _, dup := oldKeyToIndex[k]; !dup {
				oldKeyToIndex[k] = i
			}
		}
	}

	newToOld := make([]int, len(newMid))
	usedOld := make([]bool, len(oldMid))
	for j, n := range newMid {
		k, ok := n.Key()
		if !ok {
			newToOld[j] = noMatch
			continue
		}
		oi, found := oldKeyToIndex[k]
		if !found || usedOld[oi] {
			// Repeated or unmatched key: treated as a fresh identity
			// per §9 (repeated keys keep only the first match).
			newToOld[j] = noMatch
			continue
		}
		usedOld[oi] = true
		newToOld[j] = oi
	}

	for i := range oldMid {
		if !usedOld[i] {
			*out = append(*out, RemoveNode[MSG](path.Traverse(l+i)))
		}
	}

	lis := longestIncreasingSubsequence(newToOld)
	for _, j := range lis {
		oi := newToOld[j]
		diffNode(path.Traverse(l+oi), oldMid[oi], newMid[j], out)
	}

	if len(lis) == 0 {
		// No matched entry stays in place; every newMid entry (all of
		// them fresh, since any match would seed a length-1 LIS) is one
		// insertion batch anchored on whatever Phase A left behind: the
		// last head match, else the first tail match, else the parent.
		switch {
		case l > 0:
			*out = append(*out, InsertAfterNode(path.Traverse(l-1), newMid))
		case hasTail:
			*out = append(*out, InsertBeforeNode(path.Traverse(l+len(oldMid)), newMid))
		default:
			*out = append(*out, AppendChildren(path, newMid))
		}
		return
	}

	run := func(from, to int, anchorOldAbs int, after bool) {
		if from >= to {
			return
		}
		var fresh []*Node[MSG]
		var moved []TreePath
		for j := from; j < to; j++ {
			if newToOld[j] == noMatch {
				fresh = append(fresh, newMid[j])
				continue
			}
			oi := newToOld[j]
			opath := path.Traverse(l + oi)
			diffNode(opath, oldMid[oi], newMid[j], out)
			moved = append(moved, opath)
		}
		anchor := path.Traverse(anchorOldAbs)
		if after {
			if len(fresh) > 0 {
				*out = append(*out, InsertAfterNode(anchor, fresh))
			}
			if len(moved) > 0 {
				*out = append(*out, MoveAfterNode[MSG](anchor, moved))
			}
		} else {
			if len(fresh) > 0 {
				*out = append(*out, InsertBeforeNode(anchor, fresh))
			}
			if len(moved) > 0 {
				*out = append(*out, MoveBeforeNode[MSG](anchor, moved))
			}
		}
	}

	// Leading run: before the first LIS anchor.
	run(0, lis[0], l+newToOld[lis[0]], false)
	// Gap runs: between consecutive LIS anchors, anchored on the next one.
	for k := 0; k < len(lis)-1; k++ {
		run(lis[k]+1, lis[k+1], l+newToOld[lis[k+1]], false)
	}
	// Trailing run: after the last LIS anchor.
	run(lis[len(lis)-1]+1, len(newMid), l+newToOld[lis[len(lis)-1]], true)
}

// longestIncreasingSubsequence returns positions into seq (ascending)
// whose seq values form a strictly increasing subsequence of maximal
// length, ignoring noMatch entries. It is the classic O(n log n)
// patience-sorting algorithm; ties in the choice of LIS are broken
// arbitrarily but canonically (leftmost predecessor), which §4.3
// explicitly allows.
func longestIncreasingSubsequence(seq []int) []int {
	var positions []int
	for i, v := range seq {
		if v != noMatch {
			positions = append(positions, i)
		}
	}
	n := len(positions)
	if n == 0 {
		return nil
	}

	tails := make([]int, 0, n)        // tails[k]: index into positions ending the best length-(k+1) run
	predecessor := make([]int, n)
	for i := range predecessor {
		predecessor[i] = -1
	}

	for i := 0; i < n; i++ {
		v := seq[positions[i]]
		lo, hi := 0, len(tails)
		for lo < hi {
			mid := (lo + hi) / 2
			if seq[positions[tails[mid]]] < v {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if lo > 0 {
			predecessor[i] = tails[lo-1]
		}
		if lo == len(tails) {
			tails = append(tails, i)
		} else {
			tails[lo] = i
		}
	}

	result := make([]int, len(tails))
	k := tails[len(tails)-1]
	for i := len(tails) - 1; i >= 0; i-- {
		result[i] = positions[k]
		k = predecessor[k]
	}
	return result
}
