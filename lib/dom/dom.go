// Package dom is a minimal owned-document layer over golang.org/x/net/html.
// It gives the renderer the handful of operations it needs on a parsed page:
// walking elements in document order, reading and writing attributes,
// replacing element content with parsed fragments, and a synchronous event
// bus with bubbling (see events.go).
//
// A Document and the Elements handed out from it share one mutex, so tree
// mutation is safe from goroutines completing asynchronous work. Listener
// callbacks run without the lock held and may re-enter the document.
package dom

import (
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document wraps a parsed HTML tree.
type Document struct {
	mu        sync.Mutex
	node      *html.Node
	listeners map[*html.Node]map[string][]listenerEntry
	nextID    ListenerID
}

// Parse reads and parses a full HTML document.
func Parse(r io.Reader) (*Document, error) {
	node, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return &Document{
		node:      node,
		listeners: make(map[*html.Node]map[string][]listenerEntry),
	}, nil
}

// ParseString parses a document held in a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Root returns the document's root element (the <html> element).
func (d *Document) Root() *Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	for n := d.node.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode {
			return &Element{doc: d, node: n}
		}
	}
	return nil
}

// Body returns the document's <body> element, or nil if the document has
// none.
func (d *Document) Body() *Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := findNode(d.node, func(n *html.Node) bool {
		return n.DataAtom == atom.Body
	})
	if n == nil {
		return nil
	}
	return &Element{doc: d, node: n}
}

// ElementByID returns the first element with the given id attribute, or nil.
func (d *Document) ElementByID(id string) *Element {
	if id == "" {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	n := findNode(d.node, func(n *html.Node) bool {
		return attrVal(n, "id") == id
	})
	if n == nil {
		return nil
	}
	return &Element{doc: d, node: n}
}

// HTML serializes the whole document back to markup.
func (d *Document) HTML() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var sb strings.Builder
	if err := html.Render(&sb, d.node); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Element is a live handle to one element node. Handles are cheap and may
// alias: two Elements wrap the same node when they were obtained separately.
// Use Same to compare identity.
type Element struct {
	doc  *Document
	node *html.Node
}

// Document returns the owning document.
func (e *Element) Document() *Document { return e.doc }

// Same reports whether both handles refer to the same element node.
func (e *Element) Same(other *Element) bool {
	return other != nil && e.node == other.node
}

// Tag returns the lowercase tag name.
func (e *Element) Tag() string {
	return e.node.Data
}

// ID returns the element's id attribute.
func (e *Element) ID() string {
	return e.Attr("id")
}

// Attr returns the value of the named attribute, or "" when absent.
func (e *Element) Attr(name string) string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return attrVal(e.node, name)
}

// HasAttr reports whether the named attribute is present, even when empty.
func (e *Element) HasAttr(name string) bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for _, a := range e.node.Attr {
		if a.Key == name {
			return true
		}
	}
	return false
}

// SetAttr sets or replaces the named attribute.
func (e *Element) SetAttr(name, value string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for i, a := range e.node.Attr {
		if a.Key == name {
			e.node.Attr[i].Val = value
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr deletes the named attribute if present.
func (e *Element) RemoveAttr(name string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for i, a := range e.node.Attr {
		if a.Key == name {
			e.node.Attr = append(e.node.Attr[:i], e.node.Attr[i+1:]...)
			return
		}
	}
}

// Text returns the concatenated text content of the element's subtree.
func (e *Element) Text() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(e.node)
	return sb.String()
}

// InnerHTML serializes the element's children.
func (e *Element) InnerHTML() (string, error) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	var sb strings.Builder
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// OuterHTML serializes the element itself.
func (e *Element) OuterHTML() (string, error) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	var sb strings.Builder
	if err := html.Render(&sb, e.node); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// SetHTML replaces the element's children with the parsed fragment.
func (e *Element) SetHTML(fragment string) error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	nodes, err := html.ParseFragment(strings.NewReader(fragment), e.node)
	if err != nil {
		return err
	}
	e.clearLocked()
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	return nil
}

// Clear removes all children.
func (e *Element) Clear() {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.clearLocked()
}

func (e *Element) clearLocked() {
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.doc.dropListenersLocked(c)
		e.node.RemoveChild(c)
		c = next
	}
}

// HasContent reports whether the element has any child element or
// non-whitespace text. Whitespace-only content does not count as
// pre-rendered markup.
func (e *Element) HasContent() bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			return true
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				return true
			}
		}
	}
	return false
}

// Remove detaches the element from its parent. Listeners on the detached
// subtree stay registered but no longer receive bubbled events from the
// document.
func (e *Element) Remove() {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if e.node.Parent != nil {
		e.node.Parent.RemoveChild(e.node)
	}
}

// Attached reports whether the element is still reachable from the document
// root.
func (e *Element) Attached() bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for n := e.node; n != nil; n = n.Parent {
		if n == e.doc.node {
			return true
		}
	}
	return false
}

// Contains reports whether other is the element itself or one of its
// descendants.
func (e *Element) Contains(other *Element) bool {
	if other == nil {
		return false
	}
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for n := other.node; n != nil; n = n.Parent {
		if n == e.node {
			return true
		}
	}
	return false
}

// Find returns all descendant elements matching the predicate, in document
// order. The element itself is not considered.
func (e *Element) Find(match func(*Element) bool) []*Element {
	e.doc.mu.Lock()
	var nodes []*html.Node
	collectNodes(e.node, &nodes)
	e.doc.mu.Unlock()

	var out []*Element
	for _, n := range nodes {
		el := &Element{doc: e.doc, node: n}
		if match(el) {
			out = append(out, el)
		}
	}
	return out
}

// FindFirst returns the first matching descendant in document order, or nil.
func (e *Element) FindFirst(match func(*Element) bool) *Element {
	for _, el := range e.Find(match) {
		return el
	}
	return nil
}

func collectNodes(n *html.Node, out *[]*html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			*out = append(*out, c)
		}
		collectNodes(c, out)
	}
}

func findNode(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attrVal(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
