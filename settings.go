package islet

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pthm/islet/lib/dom"
)

// Settings is the page-embedded configuration: one descriptor per mount
// element id, delivered in a JSON script tag marked with AttrSettings:
//
//	<script type="application/json" data-islet-settings>
//	{"components": {"cart-42": {"component": "cart", "hydration": "partial"}}}
//	</script>
type Settings struct {
	Components map[string]*Descriptor `json:"components"`
}

// Descriptor returns the settings entry for an element id, or nil. Safe on
// a nil receiver.
func (s *Settings) Descriptor(id string) *Descriptor {
	if s == nil {
		return nil
	}
	return s.Components[id]
}

// ParseSettings extracts and decodes the page settings script. A document
// without one yields empty settings, not an error; element ids are stamped
// onto each entry from its map key.
func ParseSettings(doc *dom.Document) (*Settings, error) {
	empty := &Settings{Components: map[string]*Descriptor{}}

	root := doc.Root()
	if root == nil {
		return empty, nil
	}
	script := root.FindFirst(func(e *dom.Element) bool {
		return e.Tag() == "script" && e.HasAttr(AttrSettings)
	})
	if script == nil {
		return empty, nil
	}

	text := strings.TrimSpace(script.Text())
	if text == "" {
		return empty, nil
	}

	var s Settings
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		return empty, fmt.Errorf("islet: parse settings: %w", err)
	}
	if s.Components == nil {
		s.Components = map[string]*Descriptor{}
	}
	for id, d := range s.Components {
		if d == nil {
			delete(s.Components, id)
			continue
		}
		d.ElementID = id
	}
	return &s, nil
}
