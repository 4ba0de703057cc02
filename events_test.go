package netflow

import "testing"

func TestTemplateHooksTrigger(t *testing.T) {
	var got []TemplateEvent
	hooks := NewTemplateHooks(func(e TemplateEvent) {
		got = append(got, e)
	})

	hooks.Trigger(TemplateEvent{Kind: TemplateLearned, TemplateID: 256, Protocol: TemplateProtocolV9})

	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if got[0].Kind != TemplateLearned || got[0].TemplateID != 256 {
		t.Fatalf("unexpected event: %+v", got[0])
	}
}

func TestTemplateHooksMultiple(t *testing.T) {
	count := 0
	hooks := NewTemplateHooks(
		func(TemplateEvent) { count++ },
		func(TemplateEvent) { count++ },
	)

	hooks.Trigger(TemplateEvent{Kind: TemplateCollision, TemplateID: 1})

	if count != 2 {
		t.Fatalf("expected both hooks to run, count=%d", count)
	}
}

func TestTemplateHooksIsolatesPanics(t *testing.T) {
	ran := false
	hooks := NewTemplateHooks(
		func(TemplateEvent) { panic("boom") },
		func(TemplateEvent) { ran = true },
	)

	hooks.Trigger(TemplateEvent{Kind: TemplateEvicted, TemplateID: 2})

	if !ran {
		t.Fatal("second hook should still run after the first panics")
	}
}

func TestTemplateHooksLenAndEmpty(t *testing.T) {
	hooks := NewTemplateHooks()
	if !hooks.IsEmpty() {
		t.Fatal("freshly constructed hooks should be empty")
	}
	hooks.Register(func(TemplateEvent) {})
	if hooks.IsEmpty() || hooks.Len() != 1 {
		t.Fatalf("expected len 1, got %d", hooks.Len())
	}
}

func TestTemplateHooksNilReceiverIsNoop(t *testing.T) {
	var hooks *TemplateHooks
	// must not panic
	hooks.Trigger(TemplateEvent{Kind: TemplateMissing})
	if hooks.Len() != 0 {
		t.Fatal("nil hooks should report zero length")
	}
}
