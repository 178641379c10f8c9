package preview

import (
	"net/url"
	"path"
	"strings"
)

// Image MIME types advertised in og:image:type.
const (
	mimePNG  = "image/png"
	mimeJPEG = "image/jpeg"
)

// NormalizeImageURL derives an absolute image URL on the canonical origin.
// Blank values fall back to the site logo, relative values are rooted at the
// canonical origin, absolute URLs on the bare domain gain the www host and
// any other absolute URL is returned as is. The result is a fixed point.
func NormalizeImageURL(raw *string, site Site) string {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return site.FallbackImageURL()
	}
	v := strings.TrimSpace(*raw)
	if !strings.HasPrefix(v, "http") {
		if strings.HasPrefix(v, "/") {
			return site.Origin() + v
		}
		return site.Origin() + "/" + v
	}
	return addWWW(v, site.Domain)
}

// addWWW rewrites scheme://domain[/:?#...] to scheme://www.domain[...].
func addWWW(v, domain string) string {
	if domain == "" {
		return v
	}
	idx := strings.Index(v, "://")
	if idx < 0 {
		return v
	}
	rest := v[idx+3:]
	if len(rest) < len(domain) || !strings.EqualFold(rest[:len(domain)], domain) {
		return v
	}
	if len(rest) > len(domain) {
		switch rest[len(domain)] {
		case '/', ':', '?', '#':
		default:
			return v
		}
	}
	return v[:idx+3] + "www." + rest
}

// ImageMIMEType maps .png to image/png and everything else to image/jpeg.
func ImageMIMEType(imageURL string) string {
	p := imageURL
	if u, err := url.Parse(imageURL); err == nil {
		p = u.Path
	}
	if strings.EqualFold(path.Ext(p), ".png") {
		return mimePNG
	}
	return mimeJPEG
}
