package islet

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps component type names to renderables. It is one of the two
// state containers a Renderer owns (the other is the lifecycle tracker);
// construct one per renderer rather than sharing ambient global state.
//
// Reads take an RLock, so lookups from concurrent lazy-load completions are
// safe, as is registering from inside one.
type Registry struct {
	mu         sync.RWMutex
	components map[string]Component
}

// NewRegistry creates an empty component registry.
func NewRegistry() *Registry {
	return &Registry{
		components: make(map[string]Component),
	}
}

// Register stores a component under its type name. Registering a name twice
// fails with ErrAlreadyRegistered: overwriting a live mapping is almost
// always a wiring mistake. Use Replace when the override is intentional.
func (reg *Registry) Register(name string, c Component) error {
	if err := checkRegistration(name, c); err != nil {
		return err
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, exists := reg.components[name]; exists {
		return fmt.Errorf("%w: %q", ErrAlreadyRegistered, name)
	}
	reg.components[name] = c
	return nil
}

// MustRegister is Register panicking on error, for wiring done at startup:
//
//	reg := islet.NewRegistry()
//	reg.MustRegister("greeting", components.Greeting{})
//	reg.MustRegister("cart", components.Cart{store: store})
func (reg *Registry) MustRegister(name string, c Component) {
	if err := reg.Register(name, c); err != nil {
		panic(err)
	}
}

// Replace stores a component under its type name, overwriting any existing
// registration. This is the explicit override escape hatch for hot swapping
// an implementation; everyday wiring should use Register.
func (reg *Registry) Replace(name string, c Component) error {
	if err := checkRegistration(name, c); err != nil {
		return err
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.components[name] = c
	return nil
}

// Get returns the component registered under name. Unknown names report
// ok=false, never an error.
func (reg *Registry) Get(name string) (Component, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	c, ok := reg.components[name]
	return c, ok
}

// Names returns a sorted snapshot of all registered type names.
func (reg *Registry) Names() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	names := make([]string, 0, len(reg.components))
	for name := range reg.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns a snapshot copy of the current registrations.
func (reg *Registry) All() map[string]Component {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make(map[string]Component, len(reg.components))
	for name, c := range reg.components {
		out[name] = c
	}
	return out
}

func checkRegistration(name string, c Component) error {
	if name == "" {
		return fmt.Errorf("islet: component name must not be empty")
	}
	if c == nil {
		return fmt.Errorf("islet: nil component for %q", name)
	}
	return nil
}
