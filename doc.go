// Package islet renders components into marked elements of parsed HTML
// pages, in the islands style: the page is mostly static markup, and
// interactive components mount into designated elements by name.
//
// islet scans a document for mount points, resolves each one's
// configuration from data attributes and page-embedded settings, renders
// the named component through an injected backend, and tracks every
// mounted instance so it can be detached or refreshed later. Failures
// stay scoped to their element - one broken mount point never takes its
// siblings down.
//
// # Core Concepts
//
// A mount point is an element with an id that either carries the component
// marker attribute or has an entry in the page settings:
//
//	<div id="cart-42" data-islet="cart" data-islet-props='{"count":3}'></div>
//
// Components implement a single-method interface and are registered by
// name:
//
//	r := islet.New()
//	r.MustRegister("cart", cartComponent)
//
// RenderAll processes every unprocessed mount point under a root in
// document order. Each processed element is stamped with a state marker,
// so repeated passes over overlapping roots render each element exactly
// once:
//
//	report := r.RenderAll(ctx, doc.Root())
//
// # Hydration Modes
//
// The data-islet-hydrate attribute selects how a mount point treats
// markup already inside the element:
//
//   - full: adopt pre-rendered markup (or render when empty) immediately
//   - partial: keep delivered markup inert until the first pointerenter
//     or focusin, then hydrate exactly once
//   - none: render only into empty elements, never replace content
//
// An absent or unknown token renders immediately, replacing any existing
// content. Whether adopted markup is kept or replaced is the backend's
// call: the hydrating backend preserves it, the static backend always
// writes fresh output.
//
// # Lazy Loading
//
// A mount point marked data-islet-lazy whose component type is not
// registered is resolved through the configured Loader, derived from the
// component type name. Loads run asynchronously; the element renders when
// the load lands, and an element removed in the meantime is quietly left
// alone:
//
//	r := islet.New(islet.WithLoader(islet.NewTemplateLoader(os.DirFS("components"))))
//	r.RenderAll(ctx, doc.Root())
//	r.Flush() // wait for pending loads
//
// # Sealed Props
//
// Props that must not be client-editable travel as sealed tokens, either
// HMAC-signed (visible but tamper-proof) or AES-GCM encrypted (opaque).
// Opened fields are layered over the plain props; a sealed canEdit wins
// over the descriptor's:
//
//	sealer, _ := seal.New(key)
//	token, _ := sealer.Seal(map[string]any{"canEdit": true}, false)
//	// <div ... data-islet-sealed="TOKEN">
//
// # Error Handling
//
// Errors never escape their element. Missing configuration is logged as
// a warning, malformed props and unregistered component types as errors;
// each marks its element failed and the scan moves on. A component that
// fails or panics while rendering is contained by the boundary: the
// element gets accessible fallback markup with the detail tucked behind
// a disclosure, the instance still mounts, and the failure is recorded
// on the element's result.
//
// Sentinel errors classify failures for callers:
//
//	if errors.Is(res.Err, islet.ErrUnknownComponent) { ... }
//
// # Lifecycle
//
// Every successful render is tracked as one instance per element id.
// Detach unmounts everything under a root through each instance's handle,
// falling back to the backend's element unmount for handleless instances.
// Refresh re-renders one element from the document's current
// configuration, silently doing nothing when the element or its
// configuration is gone:
//
//	r.Refresh(ctx, doc, "cart-42")
//	r.Detach(ctx, doc.Root())
//
// # Testing
//
// The RenderPage harness runs a full pass over a page literal and exposes
// states, markup, captured rendered events and the interactions deferred
// hydration waits on:
//
//	page, _ := islet.RenderPage(r, pageHTML)
//	page.Hover("cart-42") // activate partial hydration
//
// # Design Rationale
//
// The system favors explicitness over magic:
//   - Explicit registration per renderer (no package-global tables)
//   - Explicit backend selection (injected once, never probed per call)
//   - Explicit state markers on elements (idempotence is observable)
//   - Explicit sealing (signed vs encrypted chosen by the producer)
//
// This keeps concurrent renderers independent, makes passes replayable in
// tests, and leaves every decision visible in the document itself.
package islet
