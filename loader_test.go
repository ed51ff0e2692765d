package islet

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"testing/fstest"
)

func TestCheckName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain name", "cart", false},
		{"dashed name", "order-summary", false},
		{"empty", "", true},
		{"slash", "a/b", true},
		{"backslash", `a\b`, true},
		{"traversal", "..", true},
		{"embedded traversal", "a..b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckName(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrLoadFailed) {
					t.Errorf("CheckName(%q) = %v, want ErrLoadFailed", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Errorf("CheckName(%q) = %v, want nil", tt.input, err)
			}
		})
	}
}

func TestTemplateLoaderLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"greeting.html": &fstest.MapFile{Data: []byte(`<p>Hello, {{.name}}</p>`)},
	}
	l := NewTemplateLoader(fsys)

	comp, err := l.Load(context.Background(), "greeting")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got := renderToString(t, comp, Props{"name": "Ada"})
	if got != "<p>Hello, Ada</p>" {
		t.Errorf("rendered = %q, want template output", got)
	}
}

func TestTemplateLoaderEscapes(t *testing.T) {
	fsys := fstest.MapFS{
		"greeting.html": &fstest.MapFile{Data: []byte(`<p>{{.name}}</p>`)},
	}
	l := NewTemplateLoader(fsys)

	comp, err := l.Load(context.Background(), "greeting")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got := renderToString(t, comp, Props{"name": `<script>x</script>`})
	if strings.Contains(got, "<script>") {
		t.Errorf("rendered = %q, template output must be escaped", got)
	}
}

func TestTemplateLoaderMissing(t *testing.T) {
	l := NewTemplateLoader(fstest.MapFS{})

	_, err := l.Load(context.Background(), "ghost")
	if !errors.Is(err, ErrLoadFailed) {
		t.Errorf("Load() of missing template = %v, want ErrLoadFailed", err)
	}
}

func TestTemplateLoaderRejectsUnsafeName(t *testing.T) {
	l := NewTemplateLoader(fstest.MapFS{})

	_, err := l.Load(context.Background(), "../etc/passwd")
	if !errors.Is(err, ErrLoadFailed) {
		t.Errorf("Load() of unsafe name = %v, want ErrLoadFailed", err)
	}
}

func TestTemplateLoaderParseError(t *testing.T) {
	fsys := fstest.MapFS{
		"broken.html": &fstest.MapFile{Data: []byte(`{{.name`)},
	}
	l := NewTemplateLoader(fsys)

	_, err := l.Load(context.Background(), "broken")
	if !errors.Is(err, ErrLoadFailed) {
		t.Errorf("Load() of unparsable template = %v, want ErrLoadFailed", err)
	}
}

func TestTemplateLoaderNames(t *testing.T) {
	fsys := fstest.MapFS{
		"cart.html":   &fstest.MapFile{Data: []byte(`x`)},
		"avatar.html": &fstest.MapFile{Data: []byte(`x`)},
		"notes.txt":   &fstest.MapFile{Data: []byte(`x`)},
	}
	l := NewTemplateLoader(fsys)

	got, err := l.Names()
	if err != nil {
		t.Fatalf("Names() error = %v", err)
	}
	want := []string{"avatar", "cart"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}
