package article

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by a Finder when no article matches the key.
var ErrNotFound = errors.New("article not found")

// Article is the subset of an article row needed to build a link preview.
type Article struct {
	ID          string     `json:"id"`
	Slug        *string    `json:"slug"`
	Title       string     `json:"title"`
	Excerpt     *string    `json:"excerpt"`
	ImageURL    *string    `json:"image_url"`
	Author      *string    `json:"author"`
	Category    *string    `json:"category"`
	PublishedAt *time.Time `json:"published_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

// PathKey returns the slug when present, otherwise the id.
func (a Article) PathKey() string {
	if a.Slug != nil && strings.TrimSpace(*a.Slug) != "" {
		return *a.Slug
	}
	return a.ID
}

// Field names the column a lookup matches on.
type Field string

// Lookup fields.
const (
	FieldID   Field = "id"
	FieldSlug Field = "slug"
)

// Key is the single lookup performed for a request.
type Key struct {
	Field Field
	Value string
}

// String renders the key as field:value.
func (k Key) String() string {
	return string(k.Field) + ":" + k.Value
}

// KeyFor picks the id lookup for canonical UUIDs and the slug lookup for
// everything else.
func KeyFor(identifier string) Key {
	if IsUUID(identifier) {
		return Key{Field: FieldID, Value: identifier}
	}
	return Key{Field: FieldSlug, Value: identifier}
}

// IsUUID reports whether s is a hyphenated 8-4-4-4-12 UUID with a version
// nibble of 1 through 5 and the RFC 4122 variant. Case is ignored.
func IsUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	v := id.Version()
	return v >= 1 && v <= 5 && id.Variant() == uuid.RFC4122
}

// Finder looks up a single article by id or slug.
type Finder interface {
	Find(ctx context.Context, key Key) (Article, error)
}

// Pinger is implemented by finders that can report backend readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}
