package components

import "github.com/pthm/islet"

// C holds the component instances built at startup.
var C struct {
	Teaser   *Teaser
	Comments *Comments
	Toolbar  *Toolbar
}

// Init builds every component against the store and registers them.
// Call this once at application startup before handling requests.
func Init(store ArticleStore, registry *islet.Registry) {
	C.Teaser = NewTeaser(store)
	C.Comments = NewComments(store)
	C.Toolbar = NewToolbar()

	registry.MustRegister("teaser", C.Teaser)
	registry.MustRegister("comments", C.Comments)
	registry.MustRegister("toolbar", C.Toolbar)
}
