package islet

// Mode selects how one mount point combines pre-rendered markup with a live
// render. The default is the plain render path.
//
// The token arrives on the mount element (data-islet-hydrate) or in the page
// settings entry; unrecognized tokens fall back to ModeDefault.
type Mode string

const (
	// ModeDefault renders through the plain (non-hydrating) path.
	// Unknown mode tokens are treated as ModeDefault.
	ModeDefault Mode = ""

	// ModeFull renders immediately through the hydration-capable path,
	// merging any pre-rendered markup with live behavior.
	ModeFull Mode = "full"

	// ModePartial defers activation when pre-rendered markup exists: the
	// markup stays completely inert until the first pointerenter or focusin
	// event on the element, which triggers exactly one hydrating render and
	// removes both listeners. Without pre-rendered markup it renders
	// immediately through the plain path.
	ModePartial Mode = "partial"

	// ModeNone renders only into an empty element, through the plain path.
	// Existing markup is final and is never touched or hydrated.
	ModeNone Mode = "none"
)

// Interaction events that activate a deferred ModePartial mount point.
const (
	EventPointerEnter = "pointerenter"
	EventFocusIn      = "focusin"
)

// ParseMode maps a mode token to a Mode, treating unknown tokens as
// ModeDefault.
func ParseMode(token string) Mode {
	switch Mode(token) {
	case ModeFull, ModePartial, ModeNone:
		return Mode(token)
	}
	return ModeDefault
}

type renderAction int

const (
	actionRender renderAction = iota // render now
	actionDefer                      // arm interaction listeners, render on first one
	actionSkip                       // leave the element untouched
)

type renderPath int

const (
	pathPlain   renderPath = iota // write markup through Render
	pathHydrate                   // adopt markup through Hydrate
)

type hydrationPlan struct {
	action renderAction
	path   renderPath
}

// planFor is the hydration state machine: mode plus whether the element
// already carries content decides when the render happens and through which
// backend entry point.
func planFor(mode Mode, hasContent bool) hydrationPlan {
	switch mode {
	case ModeFull:
		return hydrationPlan{action: actionRender, path: pathHydrate}
	case ModePartial:
		if hasContent {
			return hydrationPlan{action: actionDefer, path: pathHydrate}
		}
		return hydrationPlan{action: actionRender, path: pathPlain}
	case ModeNone:
		if hasContent {
			return hydrationPlan{action: actionSkip, path: pathPlain}
		}
		return hydrationPlan{action: actionRender, path: pathPlain}
	default:
		return hydrationPlan{action: actionRender, path: pathPlain}
	}
}
