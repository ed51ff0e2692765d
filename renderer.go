package islet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/pthm/islet/lib/dom"
	"github.com/pthm/islet/lib/seal"
)

const tracerName = "github.com/pthm/islet"

// Renderer drives mount-point processing over parsed documents. It owns the
// two state containers (component registry and lifecycle tracker), the
// injected backend, and the optional loader, sealer, logger, metrics and
// tracer. One renderer serves many documents; all state is per-renderer,
// never package-global.
//
// A render pass runs on the calling goroutine. Lazy loads complete on their
// own goroutines and re-enter through the same locked containers; Flush
// waits for them.
type Renderer struct {
	registry *Registry
	tracker  *Tracker
	backend  Backend
	loader   Loader
	sealer   *seal.Sealer
	log      *zap.Logger
	metrics  *Metrics
	tracer   trace.Tracer
	loads    sync.WaitGroup

	// OnRendered, if set, is called after every successful component render,
	// mirroring the EventRendered document event.
	OnRendered func(RenderedEvent)
}

// New creates a Renderer. Without options it has an empty registry, the
// hydration-capable backend, no loader, no sealer, a no-op logger and no-op
// tracing.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		registry: NewRegistry(),
		tracker:  NewTracker(),
		backend:  NewHydratingBackend(),
		log:      zap.NewNop(),
		tracer:   noop.NewTracerProvider().Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Registry returns the renderer's component registry.
func (r *Renderer) Registry() *Registry {
	return r.registry
}

// Register stores a component in the renderer's registry.
func (r *Renderer) Register(name string, c Component) error {
	return r.registry.Register(name, c)
}

// MustRegister is Register panicking on error.
func (r *Renderer) MustRegister(name string, c Component) {
	r.registry.MustRegister(name, c)
}

// Registered returns the sorted registered component names. Diagnostic.
func (r *Renderer) Registered() []string {
	return r.registry.Names()
}

// MountedIDs returns the element ids of currently mounted instances.
// Diagnostic.
func (r *Renderer) MountedIDs() []string {
	return r.tracker.IDs()
}

// SettingsEcho re-parses and returns the page-supplied configuration.
// Diagnostic, no side effects.
func (r *Renderer) SettingsEcho(doc *dom.Document) (*Settings, error) {
	return ParseSettings(doc)
}

// RenderAll processes every unprocessed mount point under root in document
// order. Already-processed elements (non-empty state marker) are skipped, so
// repeated calls over overlapping roots are idempotent. Failures never cross
// element boundaries: each one is logged, recorded in the report, and the
// pass moves on.
//
// Elements entering lazy loading are reported as StateLoading and complete
// asynchronously; call Flush to wait for them.
func (r *Renderer) RenderAll(ctx context.Context, root *dom.Element) *Report {
	report := &Report{}
	if root == nil {
		return report
	}

	ctx, span := r.tracer.Start(ctx, "islet.render_all")
	defer span.End()

	settings := r.settingsFor(root)
	points := findMountPoints(root, settings)
	span.SetAttributes(attribute.Int("islet.mount_points", len(points)))

	for _, el := range points {
		report.add(r.renderElement(ctx, el, settings))
	}
	return report
}

// Render processes a single mount element. An element already carrying a
// state marker is left alone and its current state is echoed back. The
// returned error is the result's Err, for callers driving one element at a
// time.
func (r *Renderer) Render(ctx context.Context, el *dom.Element) (ElementResult, error) {
	if el == nil {
		return ElementResult{}, nil
	}
	if s := el.Attr(AttrState); s != "" {
		return ElementResult{ElementID: el.ID(), State: State(s)}, nil
	}
	res := r.renderElement(ctx, el, r.settingsFor(el))
	return res, res.Err
}

// Detach unmounts every tracked instance within root (plus any whose
// element has already left the document), removing tracker entries in all
// cases. Unmounting goes through the instance handle when present, else
// through the backend's legacy element unmount. Safe to call when nothing
// is tracked, and calling again is a no-op.
//
// Unmounted elements lose their state marker, so re-inserted content gets
// picked up by a later RenderAll.
func (r *Renderer) Detach(ctx context.Context, root *dom.Element) {
	if root == nil {
		return
	}
	for _, m := range r.tracker.Within(root) {
		if removed := r.tracker.Remove(m.ElementID); removed != nil {
			r.unmountInstance(ctx, removed)
			r.metrics.observeUnmount()
		}
	}
	r.metrics.setMounted(r.tracker.Len())
}

// Refresh unmounts the instance tracked for elementID and renders it again
// from the document's current configuration, exactly as the dispatcher
// would. It silently does nothing when the element or its configuration no
// longer exists.
func (r *Renderer) Refresh(ctx context.Context, doc *dom.Document, elementID string) error {
	if doc == nil || elementID == "" {
		return nil
	}

	if prev := r.tracker.Remove(elementID); prev != nil {
		r.unmountInstance(ctx, prev)
		r.metrics.observeUnmount()
		r.metrics.setMounted(r.tracker.Len())
	}

	el := doc.ElementByID(elementID)
	if el == nil {
		r.log.Debug("refresh target gone", zap.String("element", elementID))
		return nil
	}

	settings := r.settingsFor(el)
	if _, err := resolveDescriptor(el, settings); errors.Is(err, ErrNoConfiguration) {
		r.log.Debug("refresh configuration gone", zap.String("element", elementID))
		return nil
	}

	el.RemoveAttr(AttrState)
	res := r.renderElement(ctx, el, settings)
	return res.Err
}

// Flush waits for in-flight lazy loads and the renders they trigger.
func (r *Renderer) Flush() {
	r.loads.Wait()
}

// renderElement resolves one mount point's descriptor and dispatches it.
// Every failure stays scoped to this element.
func (r *Renderer) renderElement(ctx context.Context, el *dom.Element, settings *Settings) ElementResult {
	start := time.Now()
	res := ElementResult{ElementID: el.ID()}
	mode := ModeDefault

	ctx, span := r.tracer.Start(ctx, "islet.render",
		trace.WithAttributes(attribute.String("islet.element", res.ElementID)))
	defer func() {
		span.SetAttributes(
			attribute.String("islet.component", res.Component),
			attribute.String("islet.state", string(res.State)),
		)
		span.End()
		r.metrics.observeRender(res.Component, mode, res.State, time.Since(start))
	}()

	desc, err := resolveDescriptor(el, settings)
	if err != nil {
		res.State, res.Err = StateFailed, err
		setState(el, StateFailed)
		if errors.Is(err, ErrNoConfiguration) {
			r.metrics.observeError("config")
			r.log.Warn("no configuration for mount point",
				zap.String("element", res.ElementID), zap.Error(err))
		} else {
			r.metrics.observeError("props")
			r.log.Error("failed to parse props",
				zap.String("element", res.ElementID), zap.Error(err))
		}
		return res
	}
	res.Component = desc.Component
	mode = desc.Mode()

	if err := desc.Validate(); err != nil {
		res.State, res.Err = StateFailed, err
		setState(el, StateFailed)
		r.metrics.observeError("config")
		r.log.Warn("invalid mount configuration",
			zap.String("element", res.ElementID), zap.Error(err))
		return res
	}

	props, err := r.resolveProps(desc)
	if err != nil {
		res.State, res.Err = StateFailed, err
		setState(el, StateFailed)
		if errors.Is(err, ErrSealedProps) {
			r.metrics.observeError("sealed")
			r.log.Error("failed to open sealed props",
				zap.String("element", res.ElementID), zap.Error(err))
		} else {
			r.metrics.observeError("props")
			r.log.Error("failed to parse props",
				zap.String("element", res.ElementID), zap.Error(err))
		}
		return res
	}

	comp, ok := r.registry.Get(desc.Component)
	if !ok {
		if desc.Lazy && r.loader != nil {
			setState(el, StateLoading)
			res.State = StateLoading
			r.startLazyLoad(ctx, el, desc, props)
			return res
		}
		res.State = StateFailed
		res.Err = fmt.Errorf("%w: %q", ErrUnknownComponent, desc.Component)
		setState(el, StateFailed)
		r.metrics.observeError("unregistered")
		r.log.Error("component not registered",
			zap.String("element", res.ElementID), zap.String("component", desc.Component))
		return res
	}

	planned := r.dispatchPlan(ctx, el, desc, comp, props)
	res.State, res.Err = planned.State, planned.Err
	return res
}

// resolveProps parses the serialized payload and layers opened sealed
// fields on top. Signed sealed tokens carry a dot separator; tokens without
// one are treated as private.
func (r *Renderer) resolveProps(desc *Descriptor) (Props, error) {
	parsed, err := desc.parseProps()
	if err != nil {
		return nil, err
	}

	var sealed map[string]any
	if desc.Sealed != "" {
		if r.sealer == nil {
			return nil, fmt.Errorf("%w: no sealer configured", ErrSealedProps)
		}
		private := !strings.Contains(desc.Sealed, ".")
		sealed, err = r.sealer.Open(desc.Sealed, private)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSealedProps, err)
		}
	}

	return desc.buildProps(parsed, sealed), nil
}

// dispatchPlan runs the hydration state machine for a resolved component.
func (r *Renderer) dispatchPlan(ctx context.Context, el *dom.Element, desc *Descriptor, comp Component, props Props) ElementResult {
	res := ElementResult{ElementID: desc.ElementID, Component: desc.Component}

	plan := planFor(desc.Mode(), el.HasContent())
	switch plan.action {
	case actionSkip:
		setState(el, StateSkipped)
		res.State = StateSkipped
		r.log.Debug("existing markup kept",
			zap.String("element", desc.ElementID), zap.String("component", desc.Component))

	case actionDefer:
		r.armDeferred(ctx, el, desc, comp, props)
		setState(el, StateDeferred)
		res.State = StateDeferred
		r.log.Debug("hydration deferred until first interaction",
			zap.String("element", desc.ElementID), zap.String("component", desc.Component))

	default:
		contained, err := r.mount(ctx, el, desc, comp, props, plan.path)
		switch {
		case errors.Is(err, ErrDetached):
			res.State = StateSkipped
		case err != nil:
			setState(el, StateFailed)
			res.State, res.Err = StateFailed, err
		default:
			res.State, res.Err = StateMounted, contained
		}
	}
	return res
}

// mount renders the component onto the element through the backend and
// records the instance. The returned contained error is a component failure
// the boundary converted into fallback markup; the instance is still
// mounted and tracked. A non-nil second return means nothing was mounted.
func (r *Renderer) mount(ctx context.Context, el *dom.Element, desc *Descriptor, comp Component, props Props, path renderPath) (contained, err error) {
	if !el.Attached() {
		r.log.Debug("element detached before render",
			zap.String("element", desc.ElementID), zap.String("component", desc.Component))
		return nil, ErrDetached
	}

	inner := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		view := comp.Render(ctx, props)
		if view == nil {
			return errors.New("islet: component produced a nil view")
		}
		return view.Render(ctx, w)
	})
	var renderErr error
	wrapped := Boundary(inner, func(err error) { renderErr = err })

	var handle Handle
	if path == pathHydrate {
		handle, err = r.backend.Hydrate(ctx, el, wrapped)
	} else {
		handle, err = r.backend.Render(ctx, el, wrapped)
	}
	if err != nil {
		r.metrics.observeError("render")
		r.log.Error("backend render failed",
			zap.String("element", desc.ElementID), zap.String("component", desc.Component), zap.Error(err))
		return nil, err
	}

	if renderErr != nil {
		r.metrics.observeError("render")
		r.log.Error("failed to render component",
			zap.String("element", desc.ElementID), zap.String("component", desc.Component), zap.Error(renderErr))
	}

	instanceID := uuid.NewString()
	el.SetAttr(AttrRoot, instanceID)
	setState(el, StateMounted)

	prev := r.tracker.Put(&MountedInstance{
		ElementID:  desc.ElementID,
		InstanceID: instanceID,
		Component:  desc.Component,
		Element:    el,
		Handle:     handle,
	})
	if prev != nil {
		// One instance per element id: the newcomer displaces the old.
		r.unmountInstance(ctx, prev)
	}
	r.metrics.setMounted(r.tracker.Len())

	if renderErr == nil {
		ev := RenderedEvent{
			ElementID:  desc.ElementID,
			InstanceID: instanceID,
			Component:  desc.Component,
			Props:      props,
		}
		if r.OnRendered != nil {
			r.OnRendered(ev)
		}
		el.Fire(EventRendered, renderedDetail(desc.Component, props))
	}
	return renderErr, nil
}

// armDeferred wires the single-shot interaction listeners for a partial
// mount point. Nothing renders until the first pointerenter or focusin;
// then exactly one hydrating render runs and both listeners are removed.
func (r *Renderer) armDeferred(ctx context.Context, el *dom.Element, desc *Descriptor, comp Component, props Props) {
	actCtx := context.WithoutCancel(ctx)
	var once sync.Once
	var pointerID, focusID dom.ListenerID

	activate := func(dom.Event) {
		once.Do(func() {
			el.Off(EventPointerEnter, pointerID)
			el.Off(EventFocusIn, focusID)
			if _, err := r.mount(actCtx, el, desc, comp, props, pathHydrate); err != nil && !errors.Is(err, ErrDetached) {
				setState(el, StateFailed)
			}
		})
	}

	pointerID = el.On(EventPointerEnter, activate)
	focusID = el.On(EventFocusIn, activate)
}

// startLazyLoad fetches an unregistered component on its own goroutine and
// dispatches the element once the load lands. The load outlives the render
// pass's context; an element removed in the meantime is tolerated and left
// alone.
func (r *Renderer) startLazyLoad(ctx context.Context, el *dom.Element, desc *Descriptor, props Props) {
	loadCtx := context.WithoutCancel(ctx)
	r.loads.Add(1)
	r.metrics.addPending(1)

	go func() {
		defer r.loads.Done()
		defer r.metrics.addPending(-1)

		comp, err := r.loader.Load(loadCtx, desc.Component)
		if err != nil {
			r.metrics.observeLazyLoad(false)
			r.metrics.observeError("load")
			r.log.Error("failed to load component",
				zap.String("element", desc.ElementID), zap.String("component", desc.Component), zap.Error(err))
			setState(el, StateFailed)
			return
		}
		r.metrics.observeLazyLoad(true)

		if err := r.registry.Register(desc.Component, comp); err != nil {
			// A concurrent load won the registration; render its component.
			if existing, ok := r.registry.Get(desc.Component); ok {
				comp = existing
			}
		}

		if !el.Attached() {
			r.log.Debug("element removed before lazy load completed",
				zap.String("element", desc.ElementID), zap.String("component", desc.Component))
			return
		}
		r.dispatchPlan(loadCtx, el, desc, comp, props)
	}()
}

// unmountInstance tears one instance down: through its handle when present,
// else through the backend's legacy element unmount. The element loses the
// renderer's markers either way.
func (r *Renderer) unmountInstance(ctx context.Context, m *MountedInstance) {
	var err error
	switch {
	case m.Handle != nil:
		err = m.Handle.Unmount(ctx)
	default:
		if u, ok := r.backend.(ElementUnmounter); ok {
			err = u.UnmountElement(ctx, m.Element)
		}
	}
	if err != nil {
		r.metrics.observeError("unmount")
		r.log.Error("failed to unmount component",
			zap.String("element", m.ElementID), zap.String("component", m.Component), zap.Error(err))
	}
	m.Element.RemoveAttr(AttrRoot)
	m.Element.RemoveAttr(AttrState)
}

func (r *Renderer) settingsFor(el *dom.Element) *Settings {
	settings, err := ParseSettings(el.Document())
	if err != nil {
		r.log.Warn("invalid page settings", zap.Error(err))
	}
	return settings
}

// findMountPoints returns root's unprocessed mount descendants in document
// order: elements carrying the marker attribute or a settings entry for
// their id, minus anything already holding a state marker.
func findMountPoints(root *dom.Element, settings *Settings) []*dom.Element {
	return root.Find(func(e *dom.Element) bool {
		if e.Attr(AttrState) != "" {
			return false
		}
		if e.HasAttr(AttrComponent) {
			return true
		}
		id := e.ID()
		return id != "" && settings.Descriptor(id) != nil
	})
}

func setState(el *dom.Element, s State) {
	el.SetAttr(AttrState, string(s))
}
