package main

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html"
	"io/fs"
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/pthm/islet"
	"github.com/pthm/islet/example/components"
)

//go:embed templates
var templateFiles embed.FS

func main() {
	store := NewStore()

	registry := islet.NewRegistry()
	components.Init(store, registry)

	// In production, load a real secret.
	sealer, err := islet.NewSealer([]byte("example-key-must-be-32-bytes-ok!"))
	if err != nil {
		log.Fatal(err)
	}

	templates, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}

	site := &site{
		store:  store,
		sealer: sealer,
		newRenderer: func() *islet.Renderer {
			// The registry is shared; each request renders with its own
			// renderer so instance tracking stays per-page.
			return islet.New(
				islet.WithRegistry(registry),
				islet.WithLogger(logger),
				islet.WithSealer(sealer),
				islet.WithLoader(islet.NewTemplateLoader(templates)),
			)
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", site.handleIndex)
	mux.HandleFunc("/article/{id}", site.handleArticle)

	addr := ":8080"
	fmt.Printf("Serving articles at http://localhost%s\n", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}

type site struct {
	store       *Store
	sealer      *islet.Sealer
	newRenderer func() *islet.Renderer
}

// handleIndex builds the front page: one teaser island per article, plus a
// newsletter island that lazy-loads from the template directory.
func (s *site) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	var page bytes.Buffer
	page.WriteString(`<!DOCTYPE html><html><head><title>The Daily Islet</title></head><body><h1>The Daily Islet</h1>`)

	for i, article := range s.store.List() {
		mount := islet.Mount("teaser").
			ID(fmt.Sprintf("teaser-%d", i)).
			Props(map[string]any{"articleId": article.ID}).
			Hydration(islet.ModeFull)
		if err := mount.Element().Render(r.Context(), &page); err != nil {
			http.Error(w, "page build failed", http.StatusInternalServerError)
			return
		}
	}

	if err := islet.Mount("newsletter").ID("newsletter").Lazy().Element().Render(r.Context(), &page); err != nil {
		http.Error(w, "page build failed", http.StatusInternalServerError)
		return
	}

	page.WriteString(`</body></html>`)
	s.respond(w, r, &page)
}

// handleArticle builds one story page: the body inline, the toolbar with a
// sealed edit grant, and the comments configured through page settings
// with a prerendered placeholder.
func (s *site) handleArticle(w http.ResponseWriter, r *http.Request) {
	article := s.store.Get(r.PathValue("id"))
	if article == nil {
		http.NotFound(w, r)
		return
	}

	var page bytes.Buffer
	fmt.Fprintf(&page,
		`<!DOCTYPE html><html><head><title>%s</title></head><body><article><h1>%s</h1>%s</article>`,
		html.EscapeString(article.Title), html.EscapeString(article.Title), article.Body)

	// The edit grant travels sealed so the page cannot mint its own.
	canEdit := r.URL.Query().Get("editor") == "1"
	token, err := s.sealer.Seal(map[string]any{"articleId": article.ID, "canEdit": canEdit}, false)
	if err != nil {
		http.Error(w, "page build failed", http.StatusInternalServerError)
		return
	}
	if err := islet.Mount("toolbar").ID("toolbar").Sealed(token).Element().Render(r.Context(), &page); err != nil {
		http.Error(w, "page build failed", http.StatusInternalServerError)
		return
	}

	// Comments mount through page settings instead of attributes. Partial
	// hydration keeps the placeholder until the reader interacts.
	page.WriteString(`<div id="comments"><section class="comments"><h3>Comments</h3><p>Loading comments…</p></section></div>`)

	settings := &islet.Settings{Components: map[string]*islet.Descriptor{
		"comments": {
			Component: "comments",
			Props:     json.RawMessage(fmt.Sprintf(`{"articleId": %q}`, article.ID)),
			Slots:     map[string]any{"heading": map[string]any{"html": "<h3>Reader comments</h3>"}},
			Hydration: string(islet.ModePartial),
			EntityID:  article.ID,
			Bundle:    "article",
			ViewMode:  "full",
		},
	}}
	if err := islet.SettingsScript(settings).Render(r.Context(), &page); err != nil {
		http.Error(w, "page build failed", http.StatusInternalServerError)
		return
	}

	page.WriteString(`</body></html>`)
	s.respond(w, r, &page)
}

// respond runs the renderer over the built page and writes the finished
// document.
func (s *site) respond(w http.ResponseWriter, r *http.Request, page *bytes.Buffer) {
	renderer := s.newRenderer()

	var out bytes.Buffer
	report, err := islet.Process(r.Context(), renderer, page, &out)
	if err != nil {
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	if err := report.Err(); err != nil {
		log.Printf("page rendered with errors: %v", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	out.WriteTo(w)
}
