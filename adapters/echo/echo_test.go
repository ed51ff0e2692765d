package isletecho

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/pthm/islet"
)

func newTestEcho(t *testing.T) (*echo.Echo, *islet.Registry) {
	t.Helper()
	registry := islet.NewRegistry()
	registry.MustRegister("greeting", islet.ComponentFunc(func(ctx context.Context, props islet.Props) templ.Component {
		return templ.Raw(`<p class="greeting">Hello, ` + props.String("name") + `</p>`)
	}))

	e := echo.New()
	e.Use(Islands(registry))
	return e, registry
}

func TestIslandsRendersHTMLResponses(t *testing.T) {
	e, _ := newTestEcho(t)
	e.GET("/", func(c echo.Context) error {
		return c.HTML(http.StatusOK, `<html><body>
			<div id="g1" data-islet="greeting" data-islet-props='{"name": "Ada"}'></div>
		</body></html>`)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `<p class="greeting">Hello, Ada</p>`) {
		t.Errorf("island not rendered:\n%s", body)
	}
	if !strings.Contains(body, `data-islet-state="mounted"`) {
		t.Errorf("mount point not marked processed:\n%s", body)
	}
}

func TestIslandsKeepsStatus(t *testing.T) {
	e, _ := newTestEcho(t)
	e.GET("/", func(c echo.Context) error {
		return c.HTML(http.StatusCreated, `<html><body><div id="g1" data-islet="greeting"></div></body></html>`)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
}

func TestIslandsIgnoresNonHTML(t *testing.T) {
	e, _ := newTestEcho(t)
	e.GET("/api", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"data-islet": "greeting"})
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); !strings.Contains(got, `"data-islet":"greeting"`) {
		t.Errorf("JSON body altered: %q", got)
	}
}

func TestIslandsPropagatesHandlerErrors(t *testing.T) {
	e, _ := newTestEcho(t)
	e.GET("/", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "nope")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", rec.Code)
	}
}

func TestIslandsLeavesPlainPagesAlone(t *testing.T) {
	e, _ := newTestEcho(t)
	e.GET("/", func(c echo.Context) error {
		return c.HTML(http.StatusOK, `<html><body><p>No islands here.</p></body></html>`)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(rec.Body.String(), "<p>No islands here.</p>") {
		t.Errorf("static content altered:\n%s", rec.Body.String())
	}
}

func TestRender(t *testing.T) {
	e := echo.New()
	e.GET("/", func(c echo.Context) error {
		return Render(c, templ.Raw("<p>direct</p>"))
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(got, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", got)
	}
	if got := rec.Body.String(); got != "<p>direct</p>" {
		t.Errorf("body = %q, want %q", got, "<p>direct</p>")
	}
}
