package islet

import (
	"context"
	"strings"
	"testing"
)

func TestRenderPageHarness(t *testing.T) {
	r := New()
	r.MustRegister("cart", textComponent("<p>ready</p>"))

	page, err := RenderPage(r, `<html><body>
		<div id="a" data-islet="cart"></div>
		<div id="b" data-islet="ghost"></div>
	</body></html>`)
	if err != nil {
		t.Fatalf("RenderPage() error = %v", err)
	}

	if page.State("a") != StateMounted {
		t.Errorf("State(a) = %q, want mounted", page.State("a"))
	}
	if page.State("b") != StateFailed {
		t.Errorf("State(b) = %q, want failed", page.State("b"))
	}
	if page.State("missing") != "" {
		t.Errorf("State(missing) = %q, want empty", page.State("missing"))
	}

	if !page.HTMLContains("<p>ready</p>") {
		t.Error("HTMLContains() missed the rendered markup")
	}
	if !strings.Contains(page.ElementHTML("a"), "<p>ready</p>") {
		t.Error("ElementHTML(a) missed the rendered markup")
	}
	if page.ElementHTML("missing") != "" {
		t.Error("ElementHTML of a missing element should be empty")
	}

	if !page.IsMounted("a") || page.IsMounted("b") {
		t.Error("IsMounted() mismatch")
	}
	if !page.HasEvent("cart") {
		t.Error("HasEvent(cart) = false, want captured rendered event")
	}
	if page.HasEvent("ghost") {
		t.Error("HasEvent(ghost) = true for a failed mount")
	}
	if page.EventCount() != 1 {
		t.Errorf("EventCount() = %d, want 1", page.EventCount())
	}

	events := page.Events()
	if len(events) != 1 || events[0].ElementID != "a" || events[0].Component != "cart" {
		t.Errorf("Events() = %+v, want the cart event", events)
	}
}

func TestRenderPageHarnessInteractions(t *testing.T) {
	r := New()
	r.MustRegister("cart", textComponent("<p>live</p>"))

	page, err := RenderPage(r, `<html><body>
		<div id="a" data-islet="cart" data-islet-hydrate="partial"><p>inert</p></div>
	</body></html>`)
	if err != nil {
		t.Fatalf("RenderPage() error = %v", err)
	}

	if page.State("a") != StateDeferred {
		t.Fatalf("State(a) = %q, want deferred before interaction", page.State("a"))
	}
	if page.EventCount() != 0 {
		t.Error("deferred mount point fired an event before interaction")
	}

	page.Hover("a")

	if page.State("a") != StateMounted {
		t.Errorf("State(a) after Hover = %q, want mounted", page.State("a"))
	}
	if page.EventCount() != 1 {
		t.Errorf("EventCount() after Hover = %d, want 1", page.EventCount())
	}

	page.Hover("a")
	page.Focus("a")
	if page.EventCount() != 1 {
		t.Error("repeat interactions must not re-render")
	}
}

func TestRenderPageHarnessLifecycle(t *testing.T) {
	r := New()
	r.MustRegister("cart", textComponent("<p>v1</p>"))

	page, err := RenderPage(r, `<html><body><div id="a" data-islet="cart"></div></body></html>`)
	if err != nil {
		t.Fatalf("RenderPage() error = %v", err)
	}

	if err := page.Refresh(context.Background(), "a"); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if page.EventCount() != 2 {
		t.Errorf("EventCount() after refresh = %d, want mount plus re-mount", page.EventCount())
	}

	page.Detach(context.Background())
	if len(page.MountedIDs()) != 0 {
		t.Errorf("MountedIDs() after Detach = %v, want none", page.MountedIDs())
	}
}
