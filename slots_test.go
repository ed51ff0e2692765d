package islet

import (
	"reflect"
	"testing"
)

func TestNormalizeSlots(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want map[string]string
	}{
		{
			"nil input",
			nil,
			map[string]string{},
		},
		{
			"string slot",
			map[string]any{"header": "<h2>Title</h2>"},
			map[string]string{"header": "<h2>Title</h2>"},
		},
		{
			"html field",
			map[string]any{"body": map[string]any{"html": "<p>text</p>"}},
			map[string]string{"body": "<p>text</p>"},
		},
		{
			"markup field",
			map[string]any{"body": map[string]any{"markup": "<p>text</p>"}},
			map[string]string{"body": "<p>text</p>"},
		},
		{
			"html wins over markup",
			map[string]any{"body": map[string]any{"html": "a", "markup": "b"}},
			map[string]string{"body": "a"},
		},
		{
			"number normalizes to empty",
			map[string]any{"count": 42},
			map[string]string{"count": ""},
		},
		{
			"nil value normalizes to empty",
			map[string]any{"gone": nil},
			map[string]string{"gone": ""},
		},
		{
			"map without markup fields normalizes to empty",
			map[string]any{"odd": map[string]any{"text": "x"}},
			map[string]string{"odd": ""},
		},
		{
			"mixed slots",
			map[string]any{
				"header": "<h1>hi</h1>",
				"body":   map[string]any{"html": "<p>ok</p>"},
				"foot":   true,
			},
			map[string]string{
				"header": "<h1>hi</h1>",
				"body":   "<p>ok</p>",
				"foot":   "",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeSlots(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeSlots() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeSlotsDoesNotMutateInput(t *testing.T) {
	raw := map[string]any{"body": map[string]any{"html": "<p>x</p>"}}
	NormalizeSlots(raw)

	inner, ok := raw["body"].(map[string]any)
	if !ok || inner["html"] != "<p>x</p>" {
		t.Error("NormalizeSlots mutated its input")
	}
}
