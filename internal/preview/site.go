package preview

import (
	"strings"

	"github.com/luukumag/article-preview/internal/config"
)

// Site carries the publication-wide values embedded into preview documents.
type Site struct {
	// Domain is the bare canonical domain, e.g. luukumag.com.
	Domain            string
	Name              string
	TwitterHandle     string
	FallbackAuthor    string
	FallbackImagePath string
	FacebookAppID     string
	Locale            string
}

// SiteFromConfig copies the site section of the service configuration.
func SiteFromConfig(c config.SiteConfig) Site {
	return Site{
		Domain:            strings.ToLower(c.Domain),
		Name:              c.Name,
		TwitterHandle:     c.TwitterHandle,
		FallbackAuthor:    c.FallbackAuthor,
		FallbackImagePath: c.FallbackImagePath,
		FacebookAppID:     c.FacebookAppID,
		Locale:            c.Locale,
	}
}

// Origin returns https://www.<domain>.
func (s Site) Origin() string {
	return "https://www." + s.Domain
}

// FallbackImageURL returns the absolute URL of the site logo.
func (s Site) FallbackImageURL() string {
	p := s.FallbackImagePath
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return s.Origin() + p
}

// ArticleURL returns the canonical article URL for a slug or id.
func (s Site) ArticleURL(key string) string {
	return s.Origin() + articlePath(key)
}
