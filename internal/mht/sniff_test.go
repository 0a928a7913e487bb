package mht

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectType(t *testing.T) {
	pngPayload := []byte("\x89PNG\r\n\x1a\n" + "rest of image data")

	tests := []struct {
		name        string
		declared    string
		payload     []byte
		recommended string
		want        string
	}{
		{"trustworthy declared type wins", "text/css", pngPayload, "", "text/css"},
		{"octet-stream is sniffed", "application/octet-stream", pngPayload, "", "image/png"},
		{"empty declared type is sniffed", "", pngPayload, "", "image/png"},
		{"recommendation breaks ties", "text/plain", []byte("plain words"), "text/css", "text/css"},
		{"nothing to go on keeps declared", "text/plain", []byte("plain words"), "", "text/plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectType(tt.declared, tt.payload, tt.recommended))
		})
	}
}

func TestExtensionFor(t *testing.T) {
	assert.Equal(t, ".html", ExtensionFor("text/html"))
	assert.Equal(t, ".js", ExtensionFor("application/x-javascript"))
	assert.Equal(t, ".jpg", ExtensionFor("image/jpeg"))
	assert.Equal(t, ".data", ExtensionFor("application/octet-stream"))
	assert.Equal(t, ".css", ExtensionFor("TEXT/CSS; charset=utf-8"))
	assert.Equal(t, "", ExtensionFor("application/x-made-up-type"))
}

func TestDigest(t *testing.T) {
	a := Digest([]byte("payload"))
	b := Digest([]byte("payload"))
	c := Digest([]byte("other"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	// URL-safe so digests are usable as file names.
	assert.NotContains(t, a, "/")
	assert.NotContains(t, a, "+")
}
