package main

import (
	"sync"

	"github.com/pthm/islet/example/components"
)

// Store is an in-memory article store implementing components.ArticleStore.
type Store struct {
	mu       sync.RWMutex
	articles map[string]*components.Article
	comments map[string][]components.Comment
	order    []string
}

// NewStore creates a store with sample content.
func NewStore() *Store {
	s := &Store{
		articles: make(map[string]*components.Article),
		comments: make(map[string][]components.Comment),
	}

	s.add(&components.Article{
		ID:      "islands-in-production",
		Title:   "Islands in Production",
		Summary: "What a year of server-rendered islands taught us.",
		Body:    "<p>When we moved the front page to islands, the first thing we noticed was how little JavaScript survived the rewrite.</p>",
		Author:  "M. Reyes",
		Tags:    []string{"engineering"},
	})
	s.add(&components.Article{
		ID:      "the-lazy-component",
		Title:   "The Lazy Component",
		Summary: "Deferring work until the reader actually looks at it.",
		Body:    "<p>Most of a page is never read. Rendering it anyway is the most expensive habit we had.</p>",
		Author:  "J. Okafor",
		Tags:    []string{"performance"},
	})
	s.add(&components.Article{
		ID:      "sealing-the-grants",
		Title:   "Sealing the Grants",
		Summary: "Keeping capability bits out of reach of the page.",
		Body:    "<p>An edit button is a promise. We stopped letting the page write its own promises.</p>",
		Author:  "M. Reyes",
		Tags:    []string{"security"},
	})

	s.comments["islands-in-production"] = []components.Comment{
		{ID: "c1", Author: "ana", Body: "We saw the same thing with our dashboard."},
		{ID: "c2", Author: "petr", Body: "How do you handle forms inside an island?"},
	}
	s.comments["the-lazy-component"] = []components.Comment{
		{ID: "c3", Author: "sam", Body: "Deferred hydration made our LCP usable again."},
	}

	return s
}

func (s *Store) add(a *components.Article) {
	s.articles[a.ID] = a
	s.order = append(s.order, a.ID)
}

// Get returns the article with the given id, or nil.
func (s *Store) Get(id string) *components.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.articles[id]
}

// List returns every article in publication order.
func (s *Store) List() []*components.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*components.Article, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.articles[id])
	}
	return out
}

// Comments returns the comments for one article.
func (s *Store) Comments(articleID string) []components.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.comments[articleID]
}
