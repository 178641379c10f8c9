package rest

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/luukumag/article-preview/internal/article"
)

// Layouts accepted for timestamp columns. Values without an offset come from
// `timestamp` columns and are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02T15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// timestamp decodes the backend's timestamp renderings. An unrecognised value
// decodes as absent instead of failing the whole row.
type timestamp struct {
	t *time.Time
}

func (ts *timestamp) UnmarshalJSON(data []byte) error {
	ts.t = nil
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil //nolint:nilerr // null and non-string values are absent
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			ts.t = &parsed
			return nil
		}
	}
	return nil
}

type articleRow struct {
	ID          string    `json:"id"`
	Slug        *string   `json:"slug"`
	Title       string    `json:"title"`
	Excerpt     *string   `json:"excerpt"`
	ImageURL    *string   `json:"image_url"`
	Author      *string   `json:"author"`
	Category    *string   `json:"category"`
	PublishedAt timestamp `json:"published_at"`
	UpdatedAt   timestamp `json:"updated_at"`
}

func (r articleRow) toArticle() article.Article {
	return article.Article{
		ID:          r.ID,
		Slug:        r.Slug,
		Title:       r.Title,
		Excerpt:     r.Excerpt,
		ImageURL:    r.ImageURL,
		Author:      r.Author,
		Category:    r.Category,
		PublishedAt: r.PublishedAt.t,
		UpdatedAt:   r.UpdatedAt.t,
	}
}
