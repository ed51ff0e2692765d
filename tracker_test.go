package islet

import (
	"reflect"
	"testing"

	"github.com/pthm/islet/lib/dom"
)

func trackerPage(t *testing.T) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(`<html><body>
		<section id="main">
			<div id="a"></div>
			<div id="b"></div>
		</section>
		<aside id="side">
			<div id="c"></div>
		</aside>
	</body></html>`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	return doc
}

func instanceFor(doc *dom.Document, id string) *MountedInstance {
	return &MountedInstance{
		ElementID:  id,
		InstanceID: "inst-" + id,
		Component:  "widget",
		Element:    doc.ElementByID(id),
	}
}

func TestTrackerPutGet(t *testing.T) {
	doc := trackerPage(t)
	tr := NewTracker()

	if prev := tr.Put(instanceFor(doc, "a")); prev != nil {
		t.Errorf("Put() on empty tracker displaced %v", prev)
	}

	got, ok := tr.Get("a")
	if !ok {
		t.Fatal("Get() after Put() returned ok=false")
	}
	if got.InstanceID != "inst-a" {
		t.Errorf("InstanceID = %q, want %q", got.InstanceID, "inst-a")
	}
}

func TestTrackerPutDisplaces(t *testing.T) {
	doc := trackerPage(t)
	tr := NewTracker()

	first := instanceFor(doc, "a")
	tr.Put(first)

	second := instanceFor(doc, "a")
	second.InstanceID = "inst-a-2"

	prev := tr.Put(second)
	if prev != first {
		t.Errorf("Put() displaced %v, want the first instance", prev)
	}
	if tr.Len() != 1 {
		t.Errorf("Len() = %d, want one instance per element id", tr.Len())
	}

	got, _ := tr.Get("a")
	if got.InstanceID != "inst-a-2" {
		t.Errorf("tracked instance = %q, want the newcomer", got.InstanceID)
	}
}

func TestTrackerRemove(t *testing.T) {
	doc := trackerPage(t)
	tr := NewTracker()
	tr.Put(instanceFor(doc, "a"))

	if m := tr.Remove("a"); m == nil || m.ElementID != "a" {
		t.Errorf("Remove() = %v, want the tracked instance", m)
	}
	if m := tr.Remove("a"); m != nil {
		t.Errorf("second Remove() = %v, want nil", m)
	}
	if m := tr.Remove("never"); m != nil {
		t.Errorf("Remove() of untracked id = %v, want nil", m)
	}
}

func TestTrackerIDs(t *testing.T) {
	doc := trackerPage(t)
	tr := NewTracker()
	tr.Put(instanceFor(doc, "c"))
	tr.Put(instanceFor(doc, "a"))
	tr.Put(instanceFor(doc, "b"))

	got := tr.IDs()
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}
}

func TestTrackerWithin(t *testing.T) {
	doc := trackerPage(t)
	tr := NewTracker()
	tr.Put(instanceFor(doc, "a"))
	tr.Put(instanceFor(doc, "b"))
	tr.Put(instanceFor(doc, "c"))

	var ids []string
	for _, m := range tr.Within(doc.ElementByID("main")) {
		ids = append(ids, m.ElementID)
	}
	want := []string{"a", "b"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("Within(main) = %v, want %v", ids, want)
	}
}

func TestTrackerWithinClaimsDetached(t *testing.T) {
	doc := trackerPage(t)
	tr := NewTracker()
	tr.Put(instanceFor(doc, "a"))
	tr.Put(instanceFor(doc, "c"))

	// c leaves the document entirely; a teardown of main still claims it.
	doc.ElementByID("c").Remove()

	var ids []string
	for _, m := range tr.Within(doc.ElementByID("main")) {
		ids = append(ids, m.ElementID)
	}
	want := []string{"a", "c"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("Within(main) = %v, want detached instances claimed too", ids)
	}
}
