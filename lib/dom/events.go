package dom

import "golang.org/x/net/html"

// Event is delivered to listeners registered with On. Events bubble: after
// the target's listeners run, listeners on each ancestor run in order up to
// the document root.
type Event struct {
	Type   string
	Target *Element
	Detail map[string]any
}

// ListenerID identifies one registered listener for removal with Off.
type ListenerID int

type listenerEntry struct {
	id ListenerID
	fn func(Event)
}

// On registers a listener for events of the given type on this element.
func (e *Element) On(typ string, fn func(Event)) ListenerID {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.doc.nextID++
	id := e.doc.nextID
	byType := e.doc.listeners[e.node]
	if byType == nil {
		byType = make(map[string][]listenerEntry)
		e.doc.listeners[e.node] = byType
	}
	byType[typ] = append(byType[typ], listenerEntry{id: id, fn: fn})
	return id
}

// Off removes a listener previously registered with On. Removing an unknown
// id is a no-op.
func (e *Element) Off(typ string, id ListenerID) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	byType := e.doc.listeners[e.node]
	entries := byType[typ]
	for i, entry := range entries {
		if entry.id == id {
			byType[typ] = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	if len(byType[typ]) == 0 {
		delete(byType, typ)
	}
	if len(byType) == 0 {
		delete(e.doc.listeners, e.node)
	}
}

// Fire dispatches an event of the given type at this element and bubbles it
// through the element's current ancestor chain. The listener set is
// snapshotted before any listener runs, and listeners run without the
// document lock held, so they may mutate the tree, fire further events, or
// remove themselves.
func (e *Element) Fire(typ string, detail map[string]any) {
	e.doc.mu.Lock()
	var fns []func(Event)
	for n := e.node; n != nil; n = n.Parent {
		for _, entry := range e.doc.listeners[n][typ] {
			fns = append(fns, entry.fn)
		}
	}
	e.doc.mu.Unlock()

	ev := Event{Type: typ, Target: e, Detail: detail}
	for _, fn := range fns {
		fn(ev)
	}
}

// dropListenersLocked forgets all listeners registered on n's subtree.
// Caller holds d.mu.
func (d *Document) dropListenersLocked(n *html.Node) {
	delete(d.listeners, n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.dropListenersLocked(c)
	}
}
