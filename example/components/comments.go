package components

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"

	"github.com/pthm/islet"
)

// Comments renders the reader comments for one article. Pages mount it
// with partial hydration, so the prerendered placeholder stays until the
// reader interacts with it. The heading slot overrides the default title.
type Comments struct {
	store ArticleStore
}

// NewComments creates the comments component.
func NewComments(store ArticleStore) *Comments {
	return &Comments{store: store}
}

// Render produces the HTML output.
func (c *Comments) Render(ctx context.Context, props islet.Props) templ.Component {
	comments := c.store.Comments(props.String("articleId"))
	heading := props.Slot("heading")
	if heading == "" {
		heading = "<h3>Comments</h3>"
	}

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<section class="comments">%s`, heading); err != nil {
			return err
		}
		if len(comments) == 0 {
			if _, err := io.WriteString(w, `<p class="comments-empty">No comments yet.</p>`); err != nil {
				return err
			}
		}
		for _, cm := range comments {
			if _, err := fmt.Fprintf(w,
				`<blockquote class="comment"><p>%s</p><cite>%s</cite></blockquote>`,
				html.EscapeString(cm.Body),
				html.EscapeString(cm.Author)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</section>`)
		return err
	})
}
