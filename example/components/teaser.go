package components

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"

	"github.com/pthm/islet"
)

// Teaser renders an article summary card. Pages mount it with full
// hydration; props carry the article id.
type Teaser struct {
	store ArticleStore
}

// NewTeaser creates the teaser component.
func NewTeaser(store ArticleStore) *Teaser {
	return &Teaser{store: store}
}

// Render produces the HTML output.
func (c *Teaser) Render(ctx context.Context, props islet.Props) templ.Component {
	article := c.store.Get(props.String("articleId"))

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if article == nil {
			_, err := io.WriteString(w, `<p class="teaser-missing">Story unavailable.</p>`)
			return err
		}
		_, err := fmt.Fprintf(w,
			`<article class="teaser"><h2><a href="/article/%s">%s</a></h2><p>%s</p><footer>by %s</footer></article>`,
			html.EscapeString(article.ID),
			html.EscapeString(article.Title),
			html.EscapeString(article.Summary),
			html.EscapeString(article.Author))
		return err
	})
}
