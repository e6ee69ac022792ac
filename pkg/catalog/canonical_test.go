package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/playbill/playbill/pkg/catalog"
)

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "platform video",
			raw:  "https://example.com/video/BV1xx411c7mD",
			want: "video/BV1xx411c7mD",
		},
		{
			name: "platform video with noise query",
			raw:  "https://example.com/video/BV1xx411c7mD?spm_id_from=333.999&vd_source=abc",
			want: "video/BV1xx411c7mD",
		},
		{
			name: "platform video keeps page",
			raw:  "https://example.com/video/BV1xx411c7mD?p=3",
			want: "video/BV1xx411c7mD?p=3",
		},
		{
			name: "platform video drops time range",
			raw:  "https://example.com/video/BV1xx411c7mD?t=30-45",
			want: "video/BV1xx411c7mD",
		},
		{
			name: "legacy av id",
			raw:  "https://example.com/video/av170001?from=search",
			want: "video/av170001",
		},
		{
			name: "generic url strips time range",
			raw:  "https://media.example.org/stream.mp4?t=90",
			want: "https://media.example.org/stream.mp4",
		},
		{
			name: "generic url keeps other params",
			raw:  "https://media.example.org/stream.mp4?quality=high&t=90",
			want: "https://media.example.org/stream.mp4?quality=high",
		},
		{
			name: "fragment dropped",
			raw:  "https://media.example.org/stream.mp4#section",
			want: "https://media.example.org/stream.mp4",
		},
		{
			name: "whitespace trimmed",
			raw:  "  https://media.example.org/a.mp3  ",
			want: "https://media.example.org/a.mp3",
		},
		{
			name: "empty",
			raw:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, catalog.CanonicalURL(tt.raw))
		})
	}
}

func TestCanonicalURLEquivalence(t *testing.T) {
	// The same video reached through different share links must collapse to
	// one canonical form.
	variants := []string{
		"https://example.com/video/BV1xx411c7mD",
		"http://example.com/video/BV1xx411c7mD?share_source=copy_web",
		"https://m.example.com/video/BV1xx411c7mD?t=120",
	}
	want := catalog.CanonicalURL(variants[0])
	for _, v := range variants[1:] {
		assert.Equal(t, want, catalog.CanonicalURL(v), "variant %s", v)
	}
}

func TestMediaKey(t *testing.T) {
	assert.Equal(t,
		catalog.MediaKey("https://example.com/video/BV1xx411c7mD?p=2"),
		catalog.MediaKey("https://example.com/video/BV1xx411c7mD?p=5"),
		"pages of the same video share a media key")

	assert.NotEqual(t,
		catalog.CanonicalURL("https://example.com/video/BV1xx411c7mD?p=2"),
		catalog.CanonicalURL("https://example.com/video/BV1xx411c7mD?p=5"),
		"pages of the same video are distinct records")
}

func TestParseTimeRange(t *testing.T) {
	tr, ok := catalog.ParseTimeRange("https://example.com/video/BV1xx411c7mD?t=30-45")
	assert.True(t, ok)
	assert.Equal(t, catalog.TimeRange{Start: 30, End: 45}, tr)

	tr, ok = catalog.ParseTimeRange("https://example.com/v?t=90")
	assert.True(t, ok)
	assert.Equal(t, catalog.TimeRange{Start: 90}, tr)

	_, ok = catalog.ParseTimeRange("https://example.com/v")
	assert.False(t, ok)

	_, ok = catalog.ParseTimeRange("https://example.com/v?t=abc")
	assert.False(t, ok)
}
