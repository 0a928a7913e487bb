// Package render turns a parsed web archive back into something a browser
// can open: either a standalone HTML document with every referenced asset
// inlined as a data: URI, or an HTML file plus a directory of blob files.
package render

import (
	"strings"

	"github.com/webarc/mhtx/internal/compress"
	"github.com/webarc/mhtx/internal/mht"
)

// asset is a part with its settled media type, identity, and extension.
type asset struct {
	part      *mht.Part
	mediaType string
	digest    string
	ext       string
}

// refSink decides how a referenced asset is represented in the rewritten
// document. An empty URI with nil error means "leave the original reference
// alone" (reference cycles, unwritable blobs).
type refSink interface {
	uri(e *Engine, a asset, seen map[string]bool) (string, error)
}

// Engine renders archive parts through a sink.
type Engine struct {
	arc  *mht.Archive
	comp *compress.Compressor
	sink refSink
}

// NewInline returns an engine that inlines every asset as a data: URI.
func NewInline(arc *mht.Archive, comp *compress.Compressor) *Engine {
	return &Engine{arc: arc, comp: comp, sink: &inlineSink{}}
}

// Render renders the archive's root document as HTML bytes.
func (e *Engine) Render() ([]byte, error) {
	root, err := e.arc.Root()
	if err != nil {
		return nil, err
	}
	data, _, err := e.renderPart(e.newAsset(root, "text/html"), map[string]bool{})
	return data, err
}

func (e *Engine) newAsset(p *mht.Part, recommended string) asset {
	mediaType := mht.DetectType(p.ContentType, p.Payload, recommended)
	return asset{
		part:      p,
		mediaType: mediaType,
		digest:    mht.Digest(p.Payload),
		ext:       mht.ExtensionFor(mediaType),
	}
}

// renderPart produces the final bytes and media type for an asset. HTML
// parts get their references rewritten; everything else passes through.
func (e *Engine) renderPart(a asset, seen map[string]bool) ([]byte, string, error) {
	if a.mediaType == "text/html" {
		return e.renderHTML(a, seen)
	}
	return a.part.Payload, a.mediaType, nil
}

// refURI resolves a reference from an HTML document to a rewritten URI.
// Returns "" when the reference does not point inside the archive or the
// sink declines it.
func (e *Engine) refURI(base, href, recommendedType string, seen map[string]bool) (string, error) {
	target := e.resolve(base, href)
	if target == nil {
		return "", nil
	}
	return e.sink.uri(e, e.newAsset(target, recommendedType), seen)
}

func (e *Engine) resolve(base, href string) *mht.Part {
	if rest, ok := cidRef(href); ok {
		return e.arc.ByID(rest)
	}
	return e.arc.ByLocation(base, href)
}

func cidRef(href string) (string, bool) {
	const scheme = "cid:"
	if len(href) > len(scheme) && strings.EqualFold(href[:len(scheme)], scheme) {
		return href[len(scheme):], true
	}
	return "", false
}
