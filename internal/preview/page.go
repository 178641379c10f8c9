package preview

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/luukumag/article-preview/internal/article"
)

const (
	descriptionLimit = 160
	imageWidth       = 1200
	imageHeight      = 630
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

var redirectTemplate = template.Must(template.New("redirect").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="0;url={{.Path}}">
<title>Redirecting</title>
</head>
<body>
<script>window.location.replace({{.Path}});</script>
<p>Redirecting to <a href="{{.Path}}">the article</a>.</p>
</body>
</html>
`))

var articleTemplate = template.Must(template.New("article").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="canonical" href="{{.CanonicalURL}}">
<meta name="description" content="{{.Description}}">
<meta name="author" content="{{.Author}}">

<meta property="og:title" content="{{.Title}}">
<meta property="og:description" content="{{.Description}}">
<meta property="og:type" content="article">
<meta property="og:url" content="{{.CanonicalURL}}">
<meta property="og:image" content="{{.ImageURL}}">
<meta property="og:image:secure_url" content="{{.ImageURL}}">
<meta property="og:image:type" content="{{.ImageType}}">
<meta property="og:image:width" content="{{.ImageWidth}}">
<meta property="og:image:height" content="{{.ImageHeight}}">
<meta property="og:image:alt" content="{{.Title}}">
<meta property="og:site_name" content="{{.SiteName}}">
<meta property="og:locale" content="{{.Locale}}">
<meta property="fb:app_id" content="{{.FacebookAppID}}">
{{- if .PublishedTime}}
<meta property="article:published_time" content="{{.PublishedTime}}">
{{- end}}
{{- if .ModifiedTime}}
<meta property="article:modified_time" content="{{.ModifiedTime}}">
{{- end}}
<meta property="article:section" content="{{.Section}}">
<meta property="article:author" content="{{.Author}}">

<meta name="twitter:card" content="summary_large_image">
<meta name="twitter:site" content="{{.TwitterHandle}}">
<meta name="twitter:creator" content="{{.TwitterHandle}}">
<meta name="twitter:title" content="{{.Title}}">
<meta name="twitter:description" content="{{.Description}}">
<meta name="twitter:image" content="{{.ImageURL}}">
<meta name="twitter:image:alt" content="{{.Title}}">

<meta http-equiv="refresh" content="0;url={{.CanonicalURL}}">
</head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Description}}</p>
<p><a href="{{.CanonicalURL}}">Read the full article on {{.SiteName}}</a></p>
<script>window.location.href = {{.CanonicalURL}};</script>
</body>
</html>
`))

const notFoundPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Article Not Found</title>
</head>
<body>
<h1>Article Not Found</h1>
<p>The article you are looking for does not exist or has been removed.</p>
<p><a href="/">Return to the homepage</a></p>
</body>
</html>
`

const errorPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Something went wrong</title>
</head>
<body>
<h1>Something went wrong</h1>
<p>We could not load this article right now. Please try again later.</p>
<p><a href="/">Return to the homepage</a></p>
</body>
</html>
`

// Meta holds the escaped-at-render values of a crawler document.
type Meta struct {
	Title         string
	Description   string
	Author        string
	Section       string
	CanonicalURL  string
	ImageURL      string
	ImageType     string
	ImageWidth    int
	ImageHeight   int
	SiteName      string
	Locale        string
	TwitterHandle string
	FacebookAppID string
	PublishedTime string
	ModifiedTime  string
}

// BuildMeta derives the preview metadata for an article. Values are left
// unescaped; the article template escapes every position.
func BuildMeta(a article.Article, site Site) Meta {
	image := NormalizeImageURL(a.ImageURL, site)
	return Meta{
		Title:         a.Title,
		Description:   Describe(a),
		Author:        stringOr(a.Author, site.FallbackAuthor),
		Section:       stringOr(a.Category, ""),
		CanonicalURL:  site.ArticleURL(a.PathKey()),
		ImageURL:      image,
		ImageType:     ImageMIMEType(image),
		ImageWidth:    imageWidth,
		ImageHeight:   imageHeight,
		SiteName:      site.Name,
		Locale:        site.Locale,
		TwitterHandle: site.TwitterHandle,
		FacebookAppID: site.FacebookAppID,
		PublishedTime: formatTime(a.PublishedAt),
		ModifiedTime:  formatTime(a.UpdatedAt),
	}
}

// Describe strips markup from the excerpt and cuts it to 160 characters,
// falling back to the title when there is no excerpt.
func Describe(a article.Article) string {
	if a.Excerpt == nil || strings.TrimSpace(*a.Excerpt) == "" {
		return a.Title
	}
	plain := tagPattern.ReplaceAllString(*a.Excerpt, "")
	runes := []rune(plain)
	if len(runes) > descriptionLimit {
		runes = runes[:descriptionLimit]
	}
	return string(runes)
}

func renderArticle(m Meta) ([]byte, error) {
	var buf bytes.Buffer
	if err := articleTemplate.Execute(&buf, m); err != nil {
		return nil, fmt.Errorf("render article preview: %w", err)
	}
	return buf.Bytes(), nil
}

func renderRedirect(identifier string) ([]byte, error) {
	var buf bytes.Buffer
	data := struct{ Path string }{Path: articlePath(identifier)}
	if err := redirectTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render redirect: %w", err)
	}
	return buf.Bytes(), nil
}

func articlePath(key string) string {
	return "/articles/" + url.PathEscape(key)
}

func stringOr(v *string, fallback string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return fallback
	}
	return *v
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
