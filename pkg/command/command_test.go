package command

import (
	"context"
	"testing"
)

func TestSingleActionFiresOnce(t *testing.T) {
	c := Single(resolvedAction(42))
	msg, ok := c.Action(context.Background())
	if !ok || msg != 42 {
		t.Fatalf("first poll = (%v, %v), want (42, true)", msg, ok)
	}
	msg, ok = c.Action(context.Background())
	if ok {
		t.Fatalf("second poll = (%v, %v), want ok=false", msg, ok)
	}
}

func TestMapMsgAction(t *testing.T) {
	c := Single(resolvedAction(3))
	mapped := MapMsg(c, func(i int) string { return "n" })
	msg, ok := mapped.Action(context.Background())
	if !ok || msg != "n" {
		t.Fatalf("mapped action = (%v, %v), want (n, true)", msg, ok)
	}
}

func TestMapMsgSubscription(t *testing.T) {
	c := Sub(func(emit func(int)) func() {
		emit(7)
		return func() {}
	})
	mapped := MapMsg(c, func(i int) int { return i * 10 })
	var got int
	detach := mapped.Sub.Attach(func(v int) { got = v })
	defer detach()
	if got != 70 {
		t.Fatalf("got %d, want 70", got)
	}
}

func TestBatchCombinesModifiers(t *testing.T) {
	a := Single(resolvedAction(1))
	b := Single(resolvedAction(2)).NoRender()
	batch := BatchCmd(a, b)
	if batch.Modifier.ShouldUpdateView {
		t.Fatal("batch should suppress view update when any member does")
	}
}

func TestEffectsToCommandLiftsLocalOnly(t *testing.T) {
	e := Effects[int, string]{Local: []int{1, 2}, External: []string{"x"}, Modifier: defaultModifier()}
	cmd := e.ToCommand()
	if cmd.Kind != KindBatch || len(cmd.Batch) != 2 {
		t.Fatalf("expected a 2-entry batch, got %#v", cmd)
	}
}

func TestNoEffectsProducesNoneCommand(t *testing.T) {
	e := NoEffects[int, string]()
	cmd := e.ToCommand()
	if cmd.Kind != KindNone {
		t.Fatalf("expected KindNone, got %v", cmd.Kind)
	}
}
