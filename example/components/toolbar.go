package components

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"

	"github.com/pthm/islet"
)

// Toolbar renders the editorial controls for an article. The page passes
// the edit grant through sealed props so the client cannot mint one;
// without it the toolbar stays empty.
type Toolbar struct{}

// NewToolbar creates the toolbar component.
func NewToolbar() *Toolbar {
	return &Toolbar{}
}

// Render produces the HTML output.
func (c *Toolbar) Render(ctx context.Context, props islet.Props) templ.Component {
	articleID := props.String("articleId")
	canEdit := props.CanEdit()

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if !canEdit {
			_, err := io.WriteString(w, `<div class="toolbar" hidden></div>`)
			return err
		}
		_, err := fmt.Fprintf(w,
			`<div class="toolbar"><a href="/article/%[1]s/edit">Edit</a> <a href="/article/%[1]s/delete">Delete</a></div>`,
			html.EscapeString(articleID))
		return err
	})
}
