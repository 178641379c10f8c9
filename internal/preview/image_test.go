package preview

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testSite() Site {
	return Site{
		Domain:            "luukumag.com",
		Name:              "Luuku Magazine",
		TwitterHandle:     "@luukumag",
		FallbackAuthor:    "Luuku Magazine Editorial Team",
		FallbackImagePath: "/logo.png",
		FacebookAppID:     "000000000000000",
		Locale:            "en_US",
	}
}

func strPtr(s string) *string { return &s }

func TestNormalizeImageURL(t *testing.T) {
	t.Parallel()

	site := testSite()
	fallback := "https://www.luukumag.com/logo.png"

	tests := []struct {
		name string
		raw  *string
		want string
	}{
		{"nil", nil, fallback},
		{"empty", strPtr(""), fallback},
		{"blank", strPtr("   "), fallback},
		{"root relative", strPtr("/foo.jpg"), "https://www.luukumag.com/foo.jpg"},
		{"relative", strPtr("foo.jpg"), "https://www.luukumag.com/foo.jpg"},
		{"bare domain", strPtr("https://luukumag.com/x.png"), "https://www.luukumag.com/x.png"},
		{"bare domain with port", strPtr("http://luukumag.com:8443/x.png"), "http://www.luukumag.com:8443/x.png"},
		{"bare domain upper case", strPtr("https://LuukuMag.com/x.png"), "https://www.LuukuMag.com/x.png"},
		{"already www", strPtr("https://www.luukumag.com/x.png"), "https://www.luukumag.com/x.png"},
		{"other host", strPtr("https://cdn.example.com/x.jpg"), "https://cdn.example.com/x.jpg"},
		{"domain prefix of other host", strPtr("https://luukumag.com.evil.io/x.jpg"), "https://luukumag.com.evil.io/x.jpg"},
		{"object storage", strPtr("https://abc.supabase.co/storage/v1/object/public/images/a.webp"), "https://abc.supabase.co/storage/v1/object/public/images/a.webp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := NormalizeImageURL(tt.raw, site)
			require.Equal(t, tt.want, got)
			require.Equal(t, got, NormalizeImageURL(&got, site), "normalization must be idempotent")
		})
	}
}

func TestImageMIMEType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want string
	}{
		{"https://www.luukumag.com/x.png", "image/png"},
		{"https://www.luukumag.com/X.PNG", "image/png"},
		{"https://cdn.example.com/a.png?width=1200", "image/png"},
		{"https://cdn.example.com/a.jpg", "image/jpeg"},
		{"https://cdn.example.com/a.webp", "image/jpeg"},
		{"https://cdn.example.com/a.gif", "image/jpeg"},
		{"https://cdn.example.com/image", "image/jpeg"},
		{"https://cdn.example.com/a.png/raw", "image/jpeg"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, ImageMIMEType(tt.url), tt.url)
	}
}

func TestSiteURLs(t *testing.T) {
	t.Parallel()

	site := testSite()
	require.Equal(t, "https://www.luukumag.com", site.Origin())
	require.Equal(t, "https://www.luukumag.com/logo.png", site.FallbackImageURL())
	site.FallbackImagePath = "assets/logo.jpg"
	require.Equal(t, "https://www.luukumag.com/assets/logo.jpg", site.FallbackImageURL())
	require.Equal(t, "https://www.luukumag.com/articles/abc-slug", site.ArticleURL("abc-slug"))
}
