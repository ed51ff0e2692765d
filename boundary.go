package islet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Boundary wraps a component view so a render-time failure stays inside the
// element: an error return or panic from the view is converted into a
// fallback block and reported through onError, never propagated to sibling
// mount points.
//
// The view's output is buffered, so a render that fails halfway leaves no
// partial markup in front of the fallback.
func Boundary(view templ.Component, onError func(error)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		if err := renderCaptured(ctx, view, &buf); err != nil {
			if onError != nil {
				onError(err)
			}
			_, werr := io.WriteString(w, FallbackHTML(err))
			return werr
		}
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// renderCaptured renders the view into buf, converting a panic into an
// error.
func renderCaptured(ctx context.Context, view templ.Component, buf *bytes.Buffer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("islet: component panicked: %v", r)
		}
	}()
	if view == nil {
		return errors.New("islet: component produced a nil view")
	}
	return view.Render(ctx, buf)
}

// FallbackHTML builds the markup shown in place of a component that failed
// to render: an alert-role block with the error detail tucked into an
// expandable section. The error text is escaped, so failure output is safe
// to serve as-is.
func FallbackHTML(err error) string {
	var sb strings.Builder
	sb.WriteString(`<div class="islet-error" role="alert">`)
	sb.WriteString(`<p>Component failed to render.</p>`)
	sb.WriteString(`<details><summary>Technical details</summary><pre>`)
	if err != nil {
		sb.WriteString(html.EscapeString(err.Error()))
	}
	sb.WriteString(`</pre></details>`)
	sb.WriteString(`</div>`)
	return sb.String()
}
