// Package preview resolves social-preview requests for articles. Link
// unfurling crawlers receive a document carrying Open Graph and Twitter Card
// metadata; browsers receive an immediate redirect to the article page.
package preview
