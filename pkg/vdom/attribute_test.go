package vdom

import "testing"

// Two listeners declared for the same event name on one Elem must both
// survive merging and both fire (§3, §4.1: "listeners accumulate").
func TestMergeAttrsAccumulatesListeners(t *testing.T) {
	var fired []string
	n := Elem[msg]("button", []Attribute[msg]{
		On[msg]("click", func(Event) msg { fired = append(fired, "first"); return 0 }, "a"),
		On[msg]("click", func(Event) msg { fired = append(fired, "second"); return 0 }, "b"),
	})

	got := Get(n.Attrs, "onclick")
	if len(got) != 1 {
		t.Fatalf("expected one merged onclick attribute value, got %d", len(got))
	}
	if len(got[0].Listeners) != 2 {
		t.Fatalf("expected 2 accumulated listeners, got %d", len(got[0].Listeners))
	}
	for _, entry := range got[0].Listeners {
		entry.Handler(Event{})
	}
	if len(fired) != 2 || fired[0] != "first" || fired[1] != "second" {
		t.Fatalf("expected both listeners to fire in declaration order, got %v", fired)
	}
}

// Diff must not emit an attribute patch when the same two listeners (by
// Token) are declared again across a re-render.
func TestDiffUnchangedAccumulatedListenersNoPatch(t *testing.T) {
	build := func() *Node[msg] {
		return Elem[msg]("button", []Attribute[msg]{
			On[msg]("click", func(Event) msg { return 0 }, "a"),
			On[msg]("click", func(Event) msg { return 0 }, "b"),
		})
	}
	got := Diff(build(), build())
	if len(got) != 0 {
		t.Fatalf("expected no patches for unchanged accumulated listeners, got %#v", got)
	}
}
