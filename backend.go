package islet

import (
	"bytes"
	"context"

	"github.com/a-h/templ"

	"github.com/pthm/islet/lib/dom"
)

// Handle is the unmount capability a backend returns for one mounted
// instance. The lifecycle tracker keeps it and calls Unmount on detach and
// refresh.
type Handle interface {
	Unmount(ctx context.Context) error
}

// Backend writes component views onto mount elements. It is injected at
// renderer construction, selected once instead of probed per call. The two
// entry points mirror the two render paths:
//
//   - Render replaces the element's content with the view's output.
//   - Hydrate adopts pre-rendered content where the backend supports it,
//     attaching behavior without discarding markup; render-only backends
//     degrade Hydrate to Render.
//
// A backend may return a nil Handle; the tracker then falls back to the
// backend's ElementUnmounter implementation on teardown.
type Backend interface {
	Render(ctx context.Context, el *dom.Element, view templ.Component) (Handle, error)
	Hydrate(ctx context.Context, el *dom.Element, view templ.Component) (Handle, error)
}

// ElementUnmounter is the legacy unmount fallback. The tracker calls
// UnmountElement for instances without a Handle.
type ElementUnmounter interface {
	UnmountElement(ctx context.Context, el *dom.Element) error
}

// StaticBackend is the render-only backend: views become markup, nothing is
// hydrated. Hydrate degrades to Render, so pre-rendered content is replaced
// rather than adopted.
type StaticBackend struct{}

// NewStaticBackend creates a render-only backend.
func NewStaticBackend() *StaticBackend {
	return &StaticBackend{}
}

// Render writes the view's output as the element's new content.
func (b *StaticBackend) Render(ctx context.Context, el *dom.Element, view templ.Component) (Handle, error) {
	if err := writeView(ctx, el, view); err != nil {
		return nil, err
	}
	return &contentHandle{el: el}, nil
}

// Hydrate falls back to Render: a render-only backend cannot adopt markup.
func (b *StaticBackend) Hydrate(ctx context.Context, el *dom.Element, view templ.Component) (Handle, error) {
	return b.Render(ctx, el, view)
}

// UnmountElement clears the element, for instances tracked without a handle.
func (b *StaticBackend) UnmountElement(ctx context.Context, el *dom.Element) error {
	el.Clear()
	return nil
}

// HydratingBackend is the hydration-capable backend. Hydrate keeps
// pre-rendered content exactly as delivered and marks the element as
// activated; only empty elements get the view's markup written.
type HydratingBackend struct{}

// NewHydratingBackend creates a hydration-capable backend.
func NewHydratingBackend() *HydratingBackend {
	return &HydratingBackend{}
}

// Render writes the view's output as the element's new content.
func (b *HydratingBackend) Render(ctx context.Context, el *dom.Element, view templ.Component) (Handle, error) {
	if err := writeView(ctx, el, view); err != nil {
		return nil, err
	}
	return &contentHandle{el: el}, nil
}

// Hydrate adopts existing content: markup already inside the element is left
// untouched and the element is marked hydrated. An empty element is rendered
// as if through Render before marking.
func (b *HydratingBackend) Hydrate(ctx context.Context, el *dom.Element, view templ.Component) (Handle, error) {
	if !el.HasContent() {
		if err := writeView(ctx, el, view); err != nil {
			return nil, err
		}
	}
	el.SetAttr(AttrHydrated, "true")
	return &contentHandle{el: el, hydrated: true}, nil
}

// UnmountElement clears the element and its hydration marker.
func (b *HydratingBackend) UnmountElement(ctx context.Context, el *dom.Element) error {
	el.Clear()
	el.RemoveAttr(AttrHydrated)
	return nil
}

// contentHandle unmounts by discarding whatever the backend put on the
// element.
type contentHandle struct {
	el       *dom.Element
	hydrated bool
}

func (h *contentHandle) Unmount(ctx context.Context) error {
	h.el.Clear()
	if h.hydrated {
		h.el.RemoveAttr(AttrHydrated)
	}
	return nil
}

func writeView(ctx context.Context, el *dom.Element, view templ.Component) error {
	var buf bytes.Buffer
	if err := view.Render(ctx, &buf); err != nil {
		return err
	}
	return el.SetHTML(buf.String())
}
