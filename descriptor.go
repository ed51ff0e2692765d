package islet

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/pthm/islet/lib/dom"
)

// Attribute names making up the mount-point contract. An element opts into
// rendering by carrying AttrComponent (or a settings entry for its id); the
// renderer writes AttrState and AttrRoot back onto processed elements.
const (
	// AttrComponent marks a mount point and names its component type.
	AttrComponent = "data-islet"
	// AttrProps carries the serialized JSON props payload.
	AttrProps = "data-islet-props"
	// AttrSlots carries the serialized JSON slot mapping.
	AttrSlots = "data-islet-slots"
	// AttrHydrate carries the hydration mode token (full|partial|none).
	AttrHydrate = "data-islet-hydrate"
	// AttrLazy requests lazy loading for unregistered component types.
	AttrLazy = "data-islet-lazy"
	// AttrSealed carries the sealed props token.
	AttrSealed = "data-islet-sealed"
	// AttrState is written by the renderer and marks an element processed.
	AttrState = "data-islet-state"
	// AttrRoot is written by the renderer and carries the instance id of the
	// mounted root.
	AttrRoot = "data-islet-root"
	// AttrHydrated is written by the hydrating backend on adopted elements.
	AttrHydrated = "data-islet-hydrated"
	// AttrSettings marks the page-embedded settings script element.
	AttrSettings = "data-islet-settings"
)

// State is the processing outcome written to AttrState. A non-empty state
// is the "processed once" marker that makes RenderAll idempotent.
type State string

const (
	// StateMounted marks a successfully rendered element.
	StateMounted State = "mounted"
	// StateDeferred marks a partial-hydration element waiting for its first
	// interaction.
	StateDeferred State = "deferred"
	// StateLoading marks an element whose component is being lazily loaded.
	StateLoading State = "loading"
	// StateSkipped marks an element left untouched (ModeNone with content).
	StateSkipped State = "skipped"
	// StateFailed marks an element whose configuration or resolution failed.
	StateFailed State = "failed"
)

// Descriptor is the resolved configuration for one mount point, immutable
// for the lifetime of a render pass. Entries come from the page settings
// keyed by element id, overlaid by the element's own data attributes
// (attributes win).
type Descriptor struct {
	ElementID string          `json:"-" validate:"required"`
	Component string          `json:"component" validate:"required"`
	Props     json.RawMessage `json:"props,omitempty"`
	Slots     map[string]any  `json:"slots,omitempty"`
	Hydration string          `json:"hydration,omitempty"`
	Lazy      bool            `json:"lazy,omitempty"`
	Sealed    string          `json:"sealed,omitempty"`
	EntityID  string          `json:"entityId,omitempty"`
	Bundle    string          `json:"bundle,omitempty"`
	ViewMode  string          `json:"viewMode,omitempty"`
	CanEdit   bool            `json:"canEdit,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the descriptor's required fields.
func (d *Descriptor) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("%w: %v", ErrNoConfiguration, err)
	}
	return nil
}

// Mode returns the hydration mode, ModeDefault for unknown tokens.
func (d *Descriptor) Mode() Mode {
	return ParseMode(d.Hydration)
}

// resolveDescriptor builds the descriptor for a mount element: the settings
// entry for the element's id, overlaid by the element's attributes.
func resolveDescriptor(el *dom.Element, settings *Settings) (*Descriptor, error) {
	id := el.ID()
	if id == "" {
		return nil, fmt.Errorf("%w: mount point without id", ErrNoConfiguration)
	}

	var d Descriptor
	if base := settings.Descriptor(id); base != nil {
		d = *base
	}
	d.ElementID = id

	if v := el.Attr(AttrComponent); v != "" {
		d.Component = v
	}
	if v := el.Attr(AttrProps); v != "" {
		d.Props = json.RawMessage(v)
	}
	if v := el.Attr(AttrSlots); v != "" {
		var slots map[string]any
		if err := json.Unmarshal([]byte(v), &slots); err != nil {
			return nil, fmt.Errorf("%w: slots for %q: %v", ErrInvalidProps, id, err)
		}
		d.Slots = slots
	}
	if el.HasAttr(AttrHydrate) {
		d.Hydration = el.Attr(AttrHydrate)
	}
	if el.HasAttr(AttrLazy) {
		v := el.Attr(AttrLazy)
		d.Lazy = v == "" || v == "true"
	}
	if v := el.Attr(AttrSealed); v != "" {
		d.Sealed = v
	}

	if d.Component == "" {
		return nil, fmt.Errorf("%w: element %q", ErrNoConfiguration, id)
	}
	return &d, nil
}

// parseProps decodes the descriptor's serialized props payload. An empty
// payload is an empty map, a malformed one is a per-element recoverable
// error.
func (d *Descriptor) parseProps() (map[string]any, error) {
	if len(d.Props) == 0 {
		return map[string]any{}, nil
	}
	var props map[string]any
	if err := json.Unmarshal(d.Props, &props); err != nil {
		return nil, fmt.Errorf("%w: element %q: %v", ErrInvalidProps, d.ElementID, err)
	}
	if props == nil {
		props = map[string]any{}
	}
	return props, nil
}

// buildProps assembles the final prop bag: parsed props, opened sealed
// fields layered on top, normalized slots, and the mount context. A sealed
// canEdit overrides the descriptor's.
func (d *Descriptor) buildProps(parsed, sealed map[string]any) Props {
	props := make(Props, len(parsed)+len(sealed)+2)
	for k, v := range parsed {
		props[k] = v
	}

	canEdit := d.CanEdit
	for k, v := range sealed {
		if k == "canEdit" {
			if b, ok := v.(bool); ok {
				canEdit = b
			}
			continue
		}
		props[k] = v
	}

	props[PropsSlotsKey] = NormalizeSlots(d.Slots)
	props[PropsContextKey] = map[string]any{
		"elementId": d.ElementID,
		"entityId":  d.EntityID,
		"bundle":    d.Bundle,
		"viewMode":  d.ViewMode,
		"canEdit":   canEdit,
	}
	return props
}
