package islet

import (
	"context"

	"github.com/a-h/templ"
)

// Component is a renderable registered under a type name. Given the props
// resolved for one mount point, it produces the templ view that the backend
// writes into (or hydrates onto) the element.
//
// View construction is infallible; failures surface when the returned view
// renders (an error return or a panic) and are contained by the error
// boundary, so one broken component never takes down its siblings.
//
// Example:
//
//	type Greeting struct{}
//
//	func (Greeting) Render(ctx context.Context, props islet.Props) templ.Component {
//	    name := props.String("name")
//	    return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
//	        _, err := io.WriteString(w, "<p>Hello, "+html.EscapeString(name)+"</p>")
//	        return err
//	    })
//	}
//
//	reg.Register("greeting", Greeting{})
type Component interface {
	Render(ctx context.Context, props Props) templ.Component
}

// ComponentFunc adapts a plain function to the Component interface.
type ComponentFunc func(ctx context.Context, props Props) templ.Component

// Render calls f.
func (f ComponentFunc) Render(ctx context.Context, props Props) templ.Component {
	return f(ctx, props)
}

// Reserved props keys populated by the renderer.
const (
	// PropsSlotsKey holds the normalized slot map (name -> markup string).
	PropsSlotsKey = "slots"
	// PropsContextKey holds the mount context map (elementId, entityId,
	// bundle, viewMode, canEdit).
	PropsContextKey = "context"
)

// Props is the dynamic prop bag handed to a component: the parsed props
// payload merged with opened sealed fields, plus the reserved slots and
// context entries.
type Props map[string]any

// String returns the named prop as a string, or "" when absent or not a
// string.
func (p Props) String(key string) string {
	v, _ := p[key].(string)
	return v
}

// Bool returns the named prop as a bool, false when absent or not a bool.
func (p Props) Bool(key string) bool {
	v, _ := p[key].(bool)
	return v
}

// Float returns the named prop as a float64 (the type JSON numbers decode
// to), or 0 when absent or not numeric.
func (p Props) Float(key string) float64 {
	v, _ := p[key].(float64)
	return v
}

// Slot returns the markup for a named slot, or "" when the slot is absent.
func (p Props) Slot(name string) string {
	slots, _ := p[PropsSlotsKey].(map[string]string)
	return slots[name]
}

// Context returns the mount context map. Never nil.
func (p Props) Context() map[string]any {
	if m, ok := p[PropsContextKey].(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// CanEdit reports the capability flag passed through the mount context.
func (p Props) CanEdit() bool {
	v, _ := p.Context()["canEdit"].(bool)
	return v
}
