package mht

import (
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Declared types that usually mean detection failed upstream.
func suspect(mediaType string) bool {
	switch mediaType {
	case "", "text/plain", "application/octet-stream":
		return true
	}
	return false
}

// DetectType settles the media type of a payload: the declared type when it
// is trustworthy, else content sniffing, else the type recommended by the
// referencing tag.
func DetectType(declared string, payload []byte, recommended string) string {
	if !suspect(declared) {
		return declared
	}
	detected := mimetype.Detect(payload).String()
	if mt, _, err := mime.ParseMediaType(detected); err == nil {
		detected = mt
	}
	if !suspect(detected) {
		return detected
	}
	if recommended != "" {
		return recommended
	}
	return declared
}

var commonExtensions = map[string]string{
	"text/html":                ".html",
	"text/plain":               ".txt",
	"text/javascript":          ".js",
	"application/javascript":   ".js",
	"application/x-javascript": ".js",
	"text/css":                 ".css",
	"application/css":          ".css",
	"application/octet-stream": ".data",
	"image/jpeg":               ".jpg",
	"image/png":                ".png",
	"image/gif":                ".gif",
}

// ExtensionFor picks a file extension for a media type. Falls back to the
// platform MIME tables, then to no extension at all.
func ExtensionFor(mediaType string) string {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if ext, ok := commonExtensions[mt]; ok {
		return ext
	}
	if exts, err := mime.ExtensionsByType(mt); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
