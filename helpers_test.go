package islet

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pthm/islet/lib/dom"
)

func TestMountBuilderAttrs(t *testing.T) {
	attrs := Mount("cart").
		ID("cart-42").
		Props(map[string]any{"n": 3}).
		Slots(map[string]any{"header": "<b>Hi</b>"}).
		Hydration(ModePartial).
		Lazy().
		Sealed("tok").
		Attrs()

	if attrs[AttrComponent] != "cart" {
		t.Errorf("component attr = %v, want cart", attrs[AttrComponent])
	}
	if attrs["id"] != "cart-42" {
		t.Errorf("id attr = %v, want cart-42", attrs["id"])
	}
	if attrs[AttrProps] != `{"n":3}` {
		t.Errorf("props attr = %v, want JSON payload", attrs[AttrProps])
	}
	if attrs[AttrHydrate] != "partial" {
		t.Errorf("hydrate attr = %v, want partial", attrs[AttrHydrate])
	}
	if attrs[AttrLazy] != "true" {
		t.Errorf("lazy attr = %v, want true", attrs[AttrLazy])
	}
	if attrs[AttrSealed] != "tok" {
		t.Errorf("sealed attr = %v, want token", attrs[AttrSealed])
	}
}

func TestMountBuilderMinimalAttrs(t *testing.T) {
	attrs := Mount("cart").Attrs()

	if attrs[AttrComponent] != "cart" {
		t.Errorf("component attr = %v, want cart", attrs[AttrComponent])
	}
	for _, name := range []string{AttrProps, AttrSlots, AttrHydrate, AttrLazy, AttrSealed, "id"} {
		if _, ok := attrs[name]; ok {
			t.Errorf("attr %q emitted without content", name)
		}
	}
}

func TestMountBuilderElementRoundTrip(t *testing.T) {
	view := Mount("cart").
		ID("cart-42").
		Props(map[string]any{"n": 3}).
		Hydration(ModeFull).
		Element()

	var buf bytes.Buffer
	if err := view.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	// The emitted element resolves back to the same descriptor.
	doc, err := dom.ParseString(buf.String())
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	el := doc.ElementByID("cart-42")
	if el == nil {
		t.Fatalf("emitted markup %q lost the element id", buf.String())
	}

	d, err := resolveDescriptor(el, emptySettings())
	if err != nil {
		t.Fatalf("resolveDescriptor() error = %v", err)
	}
	if d.Component != "cart" || d.Hydration != "full" {
		t.Errorf("descriptor = %+v, want component and hydration round-tripped", d)
	}
	props, err := d.parseProps()
	if err != nil {
		t.Fatalf("parseProps() error = %v", err)
	}
	if props["n"] != float64(3) {
		t.Errorf("props = %v, want n round-tripped", props)
	}
}

func TestSettingsScriptRoundTrip(t *testing.T) {
	s := &Settings{Components: map[string]*Descriptor{
		"cart-42": {Component: "cart", Hydration: "partial", Props: json.RawMessage(`{"n":1}`)},
	}}

	var buf bytes.Buffer
	buf.WriteString("<html><head>")
	if err := SettingsScript(s).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	buf.WriteString("</head><body></body></html>")

	doc, err := dom.ParseString(buf.String())
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	parsed, err := ParseSettings(doc)
	if err != nil {
		t.Fatalf("ParseSettings() error = %v", err)
	}

	d := parsed.Descriptor("cart-42")
	if d == nil {
		t.Fatal("emitted settings lost the cart-42 entry")
	}
	if d.Component != "cart" || d.Hydration != "partial" {
		t.Errorf("descriptor = %+v, want fields round-tripped", d)
	}
}

func TestProcess(t *testing.T) {
	r := New()
	r.MustRegister("cart", textComponent("<p>ready</p>"))

	page := `<html><body><div id="a" data-islet="cart"></div></body></html>`
	var out bytes.Buffer

	report, err := Process(context.Background(), r, strings.NewReader(page), &out)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if report.Count(StateMounted) != 1 {
		t.Errorf("Count(StateMounted) = %d, want 1", report.Count(StateMounted))
	}
	if !strings.Contains(out.String(), "<p>ready</p>") {
		t.Errorf("output = %q, want rendered markup", out.String())
	}
	if !strings.Contains(out.String(), AttrState) {
		t.Errorf("output = %q, want state marker serialized", out.String())
	}
}

func TestWritePage(t *testing.T) {
	doc, err := dom.ParseString(`<html><body><p>hi</p></body></html>`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	rec := httptest.NewRecorder()
	if err := WritePage(rec, doc); err != nil {
		t.Fatalf("WritePage() error = %v", err)
	}

	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", got)
	}
	if !strings.Contains(rec.Body.String(), "<p>hi</p>") {
		t.Errorf("body = %q, want serialized document", rec.Body.String())
	}
}
