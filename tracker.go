package islet

import (
	"sort"
	"sync"

	"github.com/pthm/islet/lib/dom"
)

// MountedInstance records one successfully rendered mount point: the element,
// the component that went onto it, and the unmount handle the backend
// returned (which may be nil, see ElementUnmounter).
type MountedInstance struct {
	ElementID  string
	InstanceID string
	Component  string
	Element    *dom.Element
	Handle     Handle
}

// Tracker is the mounted-instance table, the renderer's second state
// container. It holds at most one instance per element id; Put returns the
// displaced instance so the caller can unmount it, keeping the invariant
// without the tracker ever invoking component code itself.
//
// The lock is never held while handles run, so a component may trigger a
// refresh of itself from inside its own render.
type Tracker struct {
	mu        sync.Mutex
	instances map[string]*MountedInstance
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		instances: make(map[string]*MountedInstance),
	}
}

// Put stores an instance under its element id and returns the instance it
// displaced, or nil.
func (t *Tracker) Put(m *MountedInstance) *MountedInstance {
	t.mu.Lock()
	defer t.mu.Unlock()
	prev := t.instances[m.ElementID]
	t.instances[m.ElementID] = m
	return prev
}

// Get returns the tracked instance for an element id.
func (t *Tracker) Get(elementID string) (*MountedInstance, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.instances[elementID]
	return m, ok
}

// Remove removes and returns the tracked instance for an element id, nil
// when none is tracked. Removing an untracked id is a no-op.
func (t *Tracker) Remove(elementID string) *MountedInstance {
	t.mu.Lock()
	defer t.mu.Unlock()
	m := t.instances[elementID]
	delete(t.instances, elementID)
	return m
}

// IDs returns the sorted element ids of all tracked instances.
func (t *Tracker) IDs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]string, 0, len(t.instances))
	for id := range t.instances {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of tracked instances.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.instances)
}

// Within returns the tracked instances claimed by a teardown of root: those
// whose element lives under root, plus any whose element is no longer
// attached to its document. Ordered by element id for deterministic
// teardown.
func (t *Tracker) Within(root *dom.Element) []*MountedInstance {
	t.mu.Lock()
	var out []*MountedInstance
	for _, m := range t.instances {
		if root.Contains(m.Element) || !m.Element.Attached() {
			out = append(out, m)
		}
	}
	t.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ElementID < out[j].ElementID })
	return out
}
