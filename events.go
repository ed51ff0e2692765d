package islet

// EventRendered is fired on the mount element after a component renders
// successfully, bubbling to the document root. The event detail carries the
// component type and the final props:
//
//	doc.Root().On(islet.EventRendered, func(ev dom.Event) {
//	    log.Printf("rendered %v on #%s", ev.Detail["type"], ev.Target.ID())
//	})
//
// Boundary fallbacks do not fire the event: it signals a component render
// that actually succeeded.
const EventRendered = "component:rendered"

// RenderedEvent is delivered to the Renderer's OnRendered hook, mirroring
// the DOM event for hosts that observe the renderer instead of the
// document.
type RenderedEvent struct {
	ElementID  string
	InstanceID string
	Component  string
	Props      Props
}

func renderedDetail(component string, props Props) map[string]any {
	return map[string]any{
		"type":  component,
		"props": props,
	}
}
