package vdom

import "testing"

type msg int

func div(attrs []Attribute[msg], children ...*Node[msg]) *Node[msg] {
	return Elem[msg]("div", attrs, children...)
}

func span(attrs []Attribute[msg], children ...*Node[msg]) *Node[msg] {
	return Elem[msg]("span", attrs, children...)
}

func main_(attrs []Attribute[msg], children ...*Node[msg]) *Node[msg] {
	return Elem[msg]("main", attrs, children...)
}

func patchesEqual(t *testing.T, got, want []Patch[msg]) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("patch count = %d, want %d\ngot:  %#v\nwant: %#v", len(got), len(want), got, want)
	}
	for i := range got {
		g, w := got[i], want[i]
		if g.Op != w.Op || !g.Path.Equal(w.Path) {
			t.Fatalf("patch %d = {%s %s}, want {%s %s}", i, g.Op, g.Path, w.Op, w.Path)
		}
		if len(g.Nodes) != len(w.Nodes) {
			t.Fatalf("patch %d Nodes len = %d, want %d", i, len(g.Nodes), len(w.Nodes))
		}
		for j := range g.Nodes {
			if !sameShape(g.Nodes[j], w.Nodes[j]) {
				t.Fatalf("patch %d Nodes[%d] = %#v, want %#v", i, j, g.Nodes[j], w.Nodes[j])
			}
		}
		if len(g.Moved) != len(w.Moved) {
			t.Fatalf("patch %d Moved len = %d, want %d", i, len(g.Moved), len(w.Moved))
		}
		for j := range g.Moved {
			if !g.Moved[j].Equal(w.Moved[j]) {
				t.Fatalf("patch %d Moved[%d] = %s, want %s", i, j, g.Moved[j], w.Moved[j])
			}
		}
	}
}

func sameShape(a, b *Node[msg]) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || a.Tag != b.Tag || a.Leaf != b.Leaf || a.Text != b.Text {
		return false
	}
	ak, aok := a.Key()
	bk, bok := b.Key()
	return aok == bok && ak == bk
}

// S1: an unchanged tree diffs to no patches.
func TestDiff_UnchangedTree(t *testing.T) {
	tree := main_(nil,
		div([]Attribute[msg]{Key[msg]("1")}, Text[msg]("a")),
		div([]Attribute[msg]{Key[msg]("2")}, Text[msg]("b")),
	)
	got := Diff(tree, tree)
	if len(got) != 0 {
		t.Fatalf("expected no patches, got %#v", got)
	}
}

// S2: removing the first of two keyed children.
func TestDiff_RemoveFirstKeyed(t *testing.T) {
	old := main_(nil,
		div([]Attribute[msg]{Key[msg]("1")}),
		div([]Attribute[msg]{Key[msg]("2")}),
	)
	new_ := main_(nil,
		div([]Attribute[msg]{Key[msg]("2")}),
	)
	got := Diff(old, new_)
	patchesEqual(t, got, []Patch[msg]{
		RemoveNode[msg](RootPath().Traverse(0)),
	})
}

// S3: inserting a keyed child before an existing one.
func TestDiff_InsertFirstKeyed(t *testing.T) {
	old := main_(nil,
		div([]Attribute[msg]{Key[msg]("1")}),
	)
	new_ := main_(nil,
		div([]Attribute[msg]{Key[msg]("2")}),
		div([]Attribute[msg]{Key[msg]("1")}),
	)
	got := Diff(old, new_)
	patchesEqual(t, got, []Patch[msg]{
		InsertBeforeNode(RootPath().Traverse(0), []*Node[msg]{
			div([]Attribute[msg]{Key[msg]("2")}),
		}),
	})
}

// S4: inserting a keyed child in the middle.
func TestDiff_InsertMiddleKeyed(t *testing.T) {
	old := main_(nil,
		div([]Attribute[msg]{Key[msg]("1")}),
		div([]Attribute[msg]{Key[msg]("3")}),
	)
	new_ := main_(nil,
		div([]Attribute[msg]{Key[msg]("1")}),
		div([]Attribute[msg]{Key[msg]("2")}),
		div([]Attribute[msg]{Key[msg]("3")}),
	)
	got := Diff(old, new_)
	patchesEqual(t, got, []Patch[msg]{
		InsertAfterNode(RootPath().Traverse(0), []*Node[msg]{
			div([]Attribute[msg]{Key[msg]("2")}),
		}),
	})
}

// S5: toggling a boolean attribute.
func TestDiff_BooleanAttributeToggle(t *testing.T) {
	old := Elem[msg]("input", []Attribute[msg]{Attr[msg](NameChecked, BoolValue(false))})
	new_ := Elem[msg]("input", []Attribute[msg]{Attr[msg](NameChecked, BoolValue(true))})
	got := Diff(old, new_)
	patchesEqual(t, got, []Patch[msg]{
		AddAttributes(RootPath(), "input", []Attribute[msg]{Attr[msg](NameChecked, BoolValue(true))}),
	})
}

// An AddAttributes/RemoveAttributes patch must carry the tag it was
// diffed against so an applier can refuse to apply it to a DOM element
// that no longer has that tag (§7 TagMismatch).
func TestDiff_AttributePatchesCarryExpectedTag(t *testing.T) {
	old := div([]Attribute[msg]{Attr[msg]("id", StringValue("a"))})
	new_ := div([]Attribute[msg]{Attr[msg]("id", StringValue("b"))})
	got := Diff(old, new_)
	if len(got) != 1 {
		t.Fatalf("expected 1 patch, got %d", len(got))
	}
	if got[0].Op != PatchAddAttributes {
		t.Fatalf("expected AddAttributes, got %s", got[0].Op)
	}
	if got[0].ExpectedTag != "div" {
		t.Fatalf("ExpectedTag = %q, want %q", got[0].ExpectedTag, "div")
	}
}

// S6: a keyed reorder with an insertion at the head produces zero moves.
func TestDiff_KeyedInsertAtHeadZeroMoves(t *testing.T) {
	oldChildren := make([]*Node[msg], 9)
	newChildren := make([]*Node[msg], 10)
	for i := 0; i < 9; i++ {
		oldChildren[i] = div([]Attribute[msg]{Key[msg](string(rune('1' + i)))})
		newChildren[i+1] = div([]Attribute[msg]{Key[msg](string(rune('1' + i)))})
	}
	newChildren[0] = div([]Attribute[msg]{Key[msg]("x")})

	old := main_(nil, oldChildren...)
	new_ := main_(nil, newChildren...)
	got := Diff(old, new_)
	patchesEqual(t, got, []Patch[msg]{
		InsertBeforeNode(RootPath().Traverse(0), []*Node[msg]{
			div([]Attribute[msg]{Key[msg]("x")}),
		}),
	})
}

// S7: a text update nested under a keyed parent.
func TestDiff_NestedTextUpdateUnderKeyedParent(t *testing.T) {
	old := main_(nil,
		div([]Attribute[msg]{Key[msg]("k")}, span(nil, Text[msg]("old"))),
	)
	new_ := main_(nil,
		div([]Attribute[msg]{Key[msg]("k")}, span(nil, Text[msg]("new"))),
	)
	got := Diff(old, new_)
	patchesEqual(t, got, []Patch[msg]{
		ReplaceNode(RootPath().Traverse(0).Traverse(0).Traverse(0), []*Node[msg]{Text[msg]("new")}),
	})
}

func TestDiff_TagMismatchReplaces(t *testing.T) {
	old := div(nil)
	new_ := span(nil)
	got := Diff(old, new_)
	patchesEqual(t, got, []Patch[msg]{
		ReplaceNode(RootPath(), []*Node[msg]{new_}),
	})
}

func TestDiff_ListenerRemovedWithoutReplacementForcesReplace(t *testing.T) {
	old := Elem[msg]("button", []Attribute[msg]{On[msg]("click", func(Event) msg { return 0 }, "tok")})
	new_ := Elem[msg]("button", nil)
	got := Diff(old, new_)
	patchesEqual(t, got, []Patch[msg]{
		ReplaceNode(RootPath(), []*Node[msg]{new_}),
	})
}

func TestDiff_SkipPrunesSubtree(t *testing.T) {
	old := div(nil, Text[msg]("a"))
	new_ := div([]Attribute[msg]{Skip[msg](true)}, Text[msg]("ignored"))
	got := Diff(old, new_)
	if len(got) != 0 {
		t.Fatalf("expected skip to prune diff entirely, got %#v", got)
	}
}

func TestDiff_UnkeyedReorderIsPositionalNotMoved(t *testing.T) {
	old := main_(nil, Text[msg]("a"), Text[msg]("b"))
	new_ := main_(nil, Text[msg]("b"), Text[msg]("a"))
	got := Diff(old, new_)
	patchesEqual(t, got, []Patch[msg]{
		ReplaceNode(RootPath().Traverse(0), []*Node[msg]{Text[msg]("b")}),
		ReplaceNode(RootPath().Traverse(1), []*Node[msg]{Text[msg]("a")}),
	})
}

func TestLongestIncreasingSubsequence(t *testing.T) {
	seq := []int{2, noMatch, 0, 1, 3}
	got := longestIncreasingSubsequence(seq)
	if len(got) != 3 {
		t.Fatalf("lis length = %d, want 3 (indices 2,3,4 -> values 0,1,3)", len(got))
	}
	for i, j := range got {
		if i > 0 && seq[got[i-1]] >= seq[j] {
			t.Fatalf("lis not increasing at %d: %v over seq %v", i, got, seq)
		}
	}
}
