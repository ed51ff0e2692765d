package components

// Article is one published story.
type Article struct {
	ID      string
	Title   string
	Summary string
	Body    string
	Author  string
	Tags    []string
}

// Comment is one reader comment on an article.
type Comment struct {
	ID     string
	Author string
	Body   string
}

// ArticleStore is the read side the components render from.
type ArticleStore interface {
	Get(id string) *Article
	List() []*Article
	Comments(articleID string) []Comment
}
