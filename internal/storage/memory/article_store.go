// Package memory provides in-memory implementations for development/testing.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/luukumag/article-preview/internal/article"
)

// ArticleStore keeps articles in maps indexed by id and slug.
type ArticleStore struct {
	mu     sync.RWMutex
	byID   map[string]article.Article
	bySlug map[string]article.Article
}

// NewArticleStore constructs an ArticleStore seeded with articles.
func NewArticleStore(articles ...article.Article) *ArticleStore {
	s := &ArticleStore{
		byID:   make(map[string]article.Article),
		bySlug: make(map[string]article.Article),
	}
	for _, a := range articles {
		s.Put(a)
	}
	return s
}

// LoadFile reads a JSON array of articles from path.
func LoadFile(path string) (*ArticleStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var articles []article.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return NewArticleStore(articles...), nil
}

// Put inserts or replaces an article. Ids are matched case-insensitively,
// like the uuid column they stand in for.
func (s *ArticleStore) Put(a article.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[strings.ToLower(a.ID)] = a
	if a.Slug != nil && *a.Slug != "" {
		s.bySlug[*a.Slug] = a
	}
}

// Find returns the article matching key.
func (s *ArticleStore) Find(_ context.Context, key article.Key) (article.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var (
		a  article.Article
		ok bool
	)
	switch key.Field {
	case article.FieldID:
		a, ok = s.byID[strings.ToLower(key.Value)]
	case article.FieldSlug:
		a, ok = s.bySlug[key.Value]
	default:
		return article.Article{}, fmt.Errorf("unsupported lookup field %q", key.Field)
	}
	if !ok {
		return article.Article{}, article.ErrNotFound
	}
	return a, nil
}

// Ping always succeeds.
func (s *ArticleStore) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *ArticleStore) Close() {}

// Len returns the number of stored articles.
func (s *ArticleStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
