package islet

import (
	"context"
	"encoding/json"
	"html"
	"io"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/pthm/islet/lib/dom"
)

// MountBuilder assembles the attribute contract for one mount-point element.
//
// Returned by Mount() to allow optional configuration:
//
//	islet.Mount("cart").ID("cart-42")
//	islet.Mount("cart").ID("cart-42").Hydration(islet.ModePartial).Lazy()
type MountBuilder struct {
	id        string
	component string
	props     any
	slots     map[string]any
	hydration Mode
	lazy      bool
	sealed    string
}

// Mount starts building a mount point for a component type.
func Mount(component string) *MountBuilder {
	return &MountBuilder{component: component}
}

// ID sets the element id. Required for elements emitted with Element; when
// building Attrs for a templ element, the template usually supplies the id
// itself.
func (b *MountBuilder) ID(id string) *MountBuilder {
	b.id = id
	return b
}

// Props sets the props payload, serialized to JSON on emit.
func (b *MountBuilder) Props(v any) *MountBuilder {
	b.props = v
	return b
}

// Slots sets the slot mapping, serialized to JSON on emit.
func (b *MountBuilder) Slots(m map[string]any) *MountBuilder {
	b.slots = m
	return b
}

// Hydration sets the hydration mode attribute.
func (b *MountBuilder) Hydration(m Mode) *MountBuilder {
	b.hydration = m
	return b
}

// Lazy marks the mount point for lazy loading when its component type is
// not registered.
func (b *MountBuilder) Lazy() *MountBuilder {
	b.lazy = true
	return b
}

// Sealed attaches a sealed props token produced by a Sealer.
func (b *MountBuilder) Sealed(token string) *MountBuilder {
	b.sealed = token
	return b
}

// Attrs builds the mount-point attributes for use on a templ element.
//
// Only attributes with content are emitted; the component marker is always
// present:
//
//	<div id="cart-42" { islet.Mount("cart").Props(p).Attrs()... }></div>
func (b *MountBuilder) Attrs() templ.Attributes {
	attrs := templ.Attributes{AttrComponent: b.component}

	if b.id != "" {
		attrs["id"] = b.id
	}
	if b.props != nil {
		data, _ := json.Marshal(b.props)
		attrs[AttrProps] = string(data)
	}
	if len(b.slots) > 0 {
		data, _ := json.Marshal(b.slots)
		attrs[AttrSlots] = string(data)
	}
	if b.hydration != ModeDefault {
		attrs[AttrHydrate] = string(b.hydration)
	}
	if b.lazy {
		attrs[AttrLazy] = "true"
	}
	if b.sealed != "" {
		attrs[AttrSealed] = b.sealed
	}
	return attrs
}

// Element emits a complete empty mount div carrying the builder's
// attributes, for pages not written in templ.
func (b *MountBuilder) Element() templ.Component {
	attrs := b.Attrs()
	order := []string{"id", AttrComponent, AttrProps, AttrSlots, AttrHydrate, AttrLazy, AttrSealed}

	var sb strings.Builder
	sb.WriteString("<div")
	for _, name := range order {
		v, ok := attrs[name]
		if !ok {
			continue
		}
		sb.WriteString(" ")
		sb.WriteString(name)
		sb.WriteString(`="`)
		sb.WriteString(html.EscapeString(v.(string)))
		sb.WriteString(`"`)
	}
	sb.WriteString("></div>")

	markup := sb.String()
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, markup)
		return err
	})
}

// SettingsScript emits the page settings script consumed by ParseSettings.
// json.Marshal escapes angle brackets, so the payload cannot terminate the
// script element early.
func SettingsScript(s *Settings) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		data, err := json.Marshal(s)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<script type="application/json" `+AttrSettings+`>`); err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
		_, err = io.WriteString(w, "</script>")
		return err
	})
}

// WritePage serializes a processed document to the HTTP response.
//
// Sets Content-Type to text/html and writes the document's current markup:
//
//	func handler(w http.ResponseWriter, req *http.Request) {
//	    doc, _ := dom.ParseString(page)
//	    renderer.RenderAll(req.Context(), doc.Root())
//	    renderer.Flush()
//	    islet.WritePage(w, doc)
//	}
func WritePage(w http.ResponseWriter, doc *dom.Document) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	out, err := doc.HTML()
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// Process runs the whole pipeline over one page: parse src, render every
// mount point, wait for lazy loads, and write the finished markup to w.
// The report covers every mount point the pass touched.
func Process(ctx context.Context, r *Renderer, src io.Reader, w io.Writer) (*Report, error) {
	doc, err := dom.Parse(src)
	if err != nil {
		return nil, err
	}
	report := r.RenderAll(ctx, doc.Root())
	r.Flush()
	out, err := doc.HTML()
	if err != nil {
		return report, err
	}
	if _, err := io.WriteString(w, out); err != nil {
		return report, err
	}
	return report, nil
}
