package article

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestKeyFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  Field
	}{
		{"v4 uuid", "3fa85f64-5717-4562-b3fc-2c963f66afa6", FieldID},
		{"upper case uuid", "3FA85F64-5717-4562-B3FC-2C963F66AFA6", FieldID},
		{"v1 uuid", "c232ab00-9414-11ec-b3c8-9f6bdeced846", FieldID},
		{"slug", "my-article-title", FieldSlug},
		{"version 7 nibble", "018f3a4e-7b1c-7d2e-8f00-0123456789ab", FieldSlug},
		{"version 0 nibble", "3fa85f64-5717-0562-b3fc-2c963f66afa6", FieldSlug},
		{"bad variant", "3fa85f64-5717-4562-c3fc-2c963f66afa6", FieldSlug},
		{"no hyphens", "3fa85f6457174562b3fc2c963f66afa6", FieldSlug},
		{"braced", "{3fa85f64-5717-4562-b3fc-2c963f66afa6}", FieldSlug},
		{"urn", "urn:uuid:3fa85f64-5717-4562-b3fc-2c963f66afa6", FieldSlug},
		{"trailing text", "3fa85f64-5717-4562-b3fc-2c963f66afa6x", FieldSlug},
		{"empty", "", FieldSlug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			key := KeyFor(tt.input)
			require.Equal(t, tt.want, key.Field)
			require.Equal(t, tt.input, key.Value)
		})
	}
}

func TestIsUUIDRandom(t *testing.T) {
	t.Parallel()

	for i := 0; i < 50; i++ {
		require.True(t, IsUUID(uuid.NewString()))
	}
}

func TestPathKey(t *testing.T) {
	t.Parallel()

	slug := "hello-world"
	blank := "  "
	require.Equal(t, "hello-world", Article{ID: "id-1", Slug: &slug}.PathKey())
	require.Equal(t, "id-1", Article{ID: "id-1", Slug: &blank}.PathKey())
	require.Equal(t, "id-1", Article{ID: "id-1"}.PathKey())
}

func TestKeyString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "slug:abc", Key{Field: FieldSlug, Value: "abc"}.String())
}
