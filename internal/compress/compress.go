// Package compress shrinks archive assets before they are re-emitted:
// javascript and css are minified, images are clamped and re-encoded at an
// aggressive quality setting. Output is only used when it is actually
// smaller than the input.
package compress

import (
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/js"
)

const (
	DefaultMaxDim      = 1024
	DefaultJPEGQuality = 30
)

type Options struct {
	MaxDim      int
	JPEGQuality int
}

type Compressor struct {
	opts Options
	m    *minify.M
}

func New(opts Options) *Compressor {
	if opts.MaxDim <= 0 {
		opts.MaxDim = DefaultMaxDim
	}
	if opts.JPEGQuality <= 0 {
		opts.JPEGQuality = DefaultJPEGQuality
	}

	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/javascript", js.Minify)

	return &Compressor{opts: opts, m: m}
}

// canonicalText maps the javascript and css aliases seen in the wild onto
// the registered minifier types.
var canonicalText = map[string]string{
	"text/javascript":          "text/javascript",
	"application/javascript":   "text/javascript",
	"application/x-javascript": "text/javascript",
	"text/css":                 "text/css",
	"application/css":          "text/css",
}

// Compress returns a smaller representation of data, or data unchanged when
// nothing applies. The returned media type may differ for transcoded images.
func (c *Compressor) Compress(data []byte, mediaType string) ([]byte, string) {
	if mediaType == "" {
		return data, mediaType
	}
	base := strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.IndexByte(base, ';'); i >= 0 {
		base = strings.TrimSpace(base[:i])
	}

	var (
		out     []byte
		outType = mediaType
	)
	switch {
	case canonicalText[base] != "":
		minified, err := c.m.Bytes(canonicalText[base], data)
		if err != nil {
			return data, mediaType
		}
		out = minified
	case base == "image/jpeg" || base == "image/png" || base == "image/gif":
		reencoded, newType, ok := c.reencodeImage(data)
		if !ok {
			return data, mediaType
		}
		out, outType = reencoded, newType
	default:
		return data, mediaType
	}

	if len(out) < len(data) {
		return out, outType
	}
	return data, mediaType
}
