package islet

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"sort"
	"strings"

	"github.com/a-h/templ"
)

// Loader fetches a component implementation for a type name the registry
// does not know yet. It is the capability behind lazy mount points: the
// renderer asks the loader on a miss, registers what comes back, and
// renders once the load completes.
//
// Implementations derive a location from the type name (a template file, a
// WASM module) and must reject names that would escape it; see CheckName.
type Loader interface {
	Load(ctx context.Context, name string) (Component, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, name string) (Component, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, name string) (Component, error) {
	return f(ctx, name)
}

// CheckName rejects component type names that are unsafe to turn into fetch
// locations: empty names, path separators, traversal. Loader
// implementations call this before touching their filesystem.
func CheckName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty component name", ErrLoadFailed)
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("%w: unsafe component name %q", ErrLoadFailed, name)
	}
	return nil
}

// TemplateLoader fetches components stored as server templates: the type
// name resolves to <name>.html in the loader's filesystem, parsed once per
// load with html/template and executed against the prop bag. Templates see
// the full Props map:
//
//	<p>Hello, {{.name}}</p>
//	<div>{{index .slots "body"}}</div>
//
// html/template's contextual escaping applies; slot markup arrives escaped
// unless the template opts out.
type TemplateLoader struct {
	fsys fs.FS
}

// NewTemplateLoader creates a loader over the given filesystem, typically
// os.DirFS of a templates directory.
func NewTemplateLoader(fsys fs.FS) *TemplateLoader {
	return &TemplateLoader{fsys: fsys}
}

// Load reads and parses <name>.html into a Component.
func (l *TemplateLoader) Load(ctx context.Context, name string) (Component, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}

	data, err := fs.ReadFile(l.fsys, name+".html")
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrLoadFailed, name, err)
	}

	tpl, err := template.New(name).Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: parse %q: %v", ErrLoadFailed, name, err)
	}

	return ComponentFunc(func(ctx context.Context, props Props) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			return tpl.Execute(w, map[string]any(props))
		})
	}), nil
}

// Names lists the component names loadable from the filesystem, sorted.
func (l *TemplateLoader) Names() ([]string, error) {
	matches, err := fs.Glob(l.fsys, "*.html")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(m, ".html"))
	}
	sort.Strings(names)
	return names, nil
}
