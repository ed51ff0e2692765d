package islet

import (
	"context"
	"strings"
	"sync"

	"github.com/pthm/islet/lib/dom"
)

// TestPage holds a parsed document after a full render pass, for testing.
//
// Provides convenience methods for asserting on element markup, states,
// mounted instances and rendered events, and for driving the interactions
// that deferred hydration waits on.
type TestPage struct {
	Doc    *dom.Document
	Report *Report

	renderer *Renderer

	mu     sync.Mutex
	events []RenderedEvent
}

// RenderPage parses a page, renders every mount point through the renderer
// and waits for lazy loads. Rendered events fired during the pass (and by
// later interactions on the returned page) are captured for assertions.
//
//	page, err := islet.RenderPage(r, `<div id="x" data-islet="cart"></div>`)
//	if page.State("x") != islet.StateMounted {
//	    t.Fatal("cart did not mount")
//	}
func RenderPage(r *Renderer, html string) (*TestPage, error) {
	return RenderPageWithContext(context.Background(), r, html)
}

// RenderPageWithContext is RenderPage with a caller-supplied context, for
// components that read request-scoped values.
func RenderPageWithContext(ctx context.Context, r *Renderer, html string) (*TestPage, error) {
	doc, err := dom.ParseString(html)
	if err != nil {
		return nil, err
	}

	p := &TestPage{Doc: doc, renderer: r}
	if root := doc.Root(); root != nil {
		root.On(EventRendered, func(ev dom.Event) {
			p.mu.Lock()
			p.events = append(p.events, RenderedEvent{
				ElementID: ev.Target.ID(),
				Component: detailString(ev.Detail, "type"),
			})
			p.mu.Unlock()
		})
	}

	p.Report = r.RenderAll(ctx, doc.Root())
	r.Flush()
	return p, nil
}

// HTML returns the document's current markup.
func (p *TestPage) HTML() string {
	out, err := p.Doc.HTML()
	if err != nil {
		return ""
	}
	return out
}

// HTMLContains checks if the document's current markup contains a substring.
func (p *TestPage) HTMLContains(substr string) bool {
	return strings.Contains(p.HTML(), substr)
}

// ElementHTML returns an element's outer markup, empty when the element is
// gone.
func (p *TestPage) ElementHTML(id string) string {
	el := p.Doc.ElementByID(id)
	if el == nil {
		return ""
	}
	out, err := el.OuterHTML()
	if err != nil {
		return ""
	}
	return out
}

// State returns the processing state marker on an element, empty for
// unprocessed or missing elements.
func (p *TestPage) State(id string) State {
	el := p.Doc.ElementByID(id)
	if el == nil {
		return ""
	}
	return State(el.Attr(AttrState))
}

// MountedIDs returns the renderer's currently mounted element ids.
func (p *TestPage) MountedIDs() []string {
	return p.renderer.MountedIDs()
}

// IsMounted checks if an instance is tracked for the element id.
func (p *TestPage) IsMounted(id string) bool {
	_, ok := p.renderer.tracker.Get(id)
	return ok
}

// Events returns the captured rendered events in firing order.
func (p *TestPage) Events() []RenderedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]RenderedEvent, len(p.events))
	copy(out, p.events)
	return out
}

// HasEvent checks if a rendered event was captured for a component type.
func (p *TestPage) HasEvent(component string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ev := range p.events {
		if ev.Component == component {
			return true
		}
	}
	return false
}

// EventCount returns the number of captured rendered events.
func (p *TestPage) EventCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

// Hover fires a pointerenter event on an element, the first of the two
// interactions that activate deferred hydration.
func (p *TestPage) Hover(id string) {
	if el := p.Doc.ElementByID(id); el != nil {
		el.Fire(EventPointerEnter, nil)
	}
}

// Focus fires a focusin event on an element, the second of the two
// interactions that activate deferred hydration.
func (p *TestPage) Focus(id string) {
	if el := p.Doc.ElementByID(id); el != nil {
		el.Fire(EventFocusIn, nil)
	}
}

// Refresh re-renders one element from the document's current configuration.
func (p *TestPage) Refresh(ctx context.Context, id string) error {
	return p.renderer.Refresh(ctx, p.Doc, id)
}

// Detach unmounts everything under the document root.
func (p *TestPage) Detach(ctx context.Context) {
	p.renderer.Detach(ctx, p.Doc.Root())
}

func detailString(detail map[string]any, key string) string {
	if s, ok := detail[key].(string); ok {
		return s
	}
	return ""
}
