// Package isletecho provides Echo framework integration for islet.
//
// Attach the middleware to an Echo instance or group and every outbound
// HTML response gets its islands rendered before it reaches the client:
//
//	e := echo.New()
//	registry := islet.NewRegistry()
//	registry.MustRegister("counter", counter)
//	e.Use(isletecho.Islands(registry))
//
// Handlers then emit pages with mount points and never touch the renderer:
//
//	func page(c echo.Context) error {
//	    return c.HTML(http.StatusOK,
//	        `<html><body><div id="c1" data-islet="counter"></div></body></html>`)
//	}
//
// Responses are buffered while the islands render, so streaming handlers
// should be excluded with a route group.
package isletecho

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/pthm/islet"
	"github.com/pthm/islet/lib/dom"
)

// Islands returns middleware that renders the islands declared in HTML
// responses. The registry is shared; each request renders with its own
// renderer so instance tracking stays per-page. Additional options apply
// to every per-request renderer.
func Islands(registry *islet.Registry, opts ...islet.Option) echo.MiddlewareFunc {
	base := append([]islet.Option{islet.WithRegistry(registry)}, opts...)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			res := c.Response()
			original := res.Writer
			capture := &captureWriter{ResponseWriter: original}
			res.Writer = capture

			err := next(c)
			res.Writer = original
			if err != nil {
				// Nothing reached the wire; let the error handler respond.
				res.Committed = false
				return err
			}

			body := capture.buf.Bytes()
			contentType := res.Header().Get(echo.HeaderContentType)
			if len(body) == 0 || !strings.HasPrefix(contentType, echo.MIMETextHTML) {
				return capture.replay(original)
			}

			doc, err := dom.Parse(bytes.NewReader(body))
			if err != nil {
				return capture.replay(original)
			}

			r := islet.New(base...)
			ctx := c.Request().Context()
			r.RenderAll(ctx, doc.Root())
			r.Flush()

			out, err := doc.HTML()
			r.Detach(ctx, doc.Root())
			if err != nil {
				res.Committed = false
				return err
			}

			res.Header().Set(echo.HeaderContentLength, strconv.Itoa(len(out)))
			if capture.status != 0 {
				original.WriteHeader(capture.status)
			}
			_, werr := io.WriteString(original, out)
			return werr
		}
	}
}

// Render writes a templ component to the Echo response.
//
//	func handler(c echo.Context) error {
//	    return isletecho.Render(c, myView())
//	}
func Render(c echo.Context, view templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	return view.Render(c.Request().Context(), c.Response())
}

// captureWriter buffers the response body so the islands can render before
// anything reaches the client. Headers pass through to the real writer.
type captureWriter struct {
	http.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (w *captureWriter) WriteHeader(status int) {
	w.status = status
}

func (w *captureWriter) Write(b []byte) (int, error) {
	return w.buf.Write(b)
}

// Unwrap supports http.ResponseController.
func (w *captureWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// replay forwards the captured response untouched.
func (w *captureWriter) replay(dst http.ResponseWriter) error {
	if w.status != 0 {
		dst.WriteHeader(w.status)
	}
	if w.buf.Len() == 0 {
		return nil
	}
	_, err := dst.Write(w.buf.Bytes())
	return err
}
