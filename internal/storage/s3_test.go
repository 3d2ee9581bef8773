package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/links/3/logo-abc.png",
		ObjectURL("https://cdn.example.com/", "links/3/logo-abc.png"))
	assert.Equal(t, "https://cdn.example.com/a%20b/c.png",
		ObjectURL("https://cdn.example.com", "a b/c.png"))
}

func TestKeyFromURL(t *testing.T) {
	cases := []struct {
		publicURL, url, key string
		ok                  bool
	}{
		{"https://cdn.example.com/", "https://cdn.example.com/links/3/logo-abc.png", "links/3/logo-abc.png", true},
		{"https://cdn.example.com", "https://cdn.example.com/a%20b/c.png", "a b/c.png", true},
		{"https://cdn.example.com", "https://elsewhere.example.com/links/3/logo.png", "", false},
		{"https://cdn.example.com", "https://cdn.example.com/", "", false},
		{"", "https://assets.s3.eu-west-1.amazonaws.com/links/3/logo-abc.png", "links/3/logo-abc.png", true},
		{"", "http://minio:9000/assets/links/3/banner-abc.webp", "links/3/banner-abc.webp", true},
		{"", "https://example.com/links/3/logo.png", "", false},
		{"", "not a url", "", false},
	}

	for _, tc := range cases {
		key, ok := KeyFromURL(tc.publicURL, "assets", tc.url)
		assert.Equal(t, tc.ok, ok, tc.url)
		assert.Equal(t, tc.key, key, tc.url)
	}

	// Put and Remove agree on the key
	key := "links/9/screenshot-x y.png"
	got, ok := KeyFromURL("https://cdn.example.com", "assets", ObjectURL("https://cdn.example.com", key))
	assert.True(t, ok)
	assert.Equal(t, key, got)
}
