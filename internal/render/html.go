package render

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/webarc/mhtx/internal/mht"
)

// renderHTML rewrites every archive-resolvable reference in an HTML part and
// re-serializes the document as UTF-8. Legacy-encoded markup is transcoded
// first, using the part's declared charset when present and content sniffing
// (BOM, meta tags) otherwise.
func (e *Engine) renderHTML(a asset, seen map[string]bool) ([]byte, string, error) {
	doc, err := html.Parse(decodedBody(a.part))
	if err != nil {
		// Unparseable markup passes through untouched.
		return a.part.Payload, a.mediaType, nil
	}

	base := documentBase(doc, a.part)
	if err := e.rewriteNode(doc, base, seen); err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "text/html;charset=utf-8", nil
}

// decodedBody returns the part body as a UTF-8 reader.
func decodedBody(p *mht.Part) io.Reader {
	raw := bytes.NewReader(p.Payload)
	// Without a declared charset the sniffer assumes windows-1252, which
	// would mangle undeclared UTF-8 documents.
	if p.Charset == "" && utf8.Valid(p.Payload) {
		return raw
	}
	contentType := "text/html"
	if p.Charset != "" {
		contentType += "; charset=" + p.Charset
	}
	body, err := charset.NewReader(raw, contentType)
	if err != nil {
		raw.Seek(0, io.SeekStart)
		return raw
	}
	return body
}

func (e *Engine) rewriteNode(n *html.Node, base string, seen map[string]bool) error {
	if n.Type == html.ElementNode {
		for _, attr := range refAttrs[n.Data] {
			href := strings.TrimSpace(getAttr(n, attr))
			if href == "" {
				continue
			}
			recommended := strings.ToLower(strings.TrimSpace(getAttr(n, "type")))
			uri, err := e.refURI(base, href, recommended, seen)
			if err != nil {
				return err
			}
			if uri != "" {
				setAttr(n, attr, uri)
			}
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if err := e.rewriteNode(child, base, seen); err != nil {
			return err
		}
	}
	return nil
}

// documentBase computes the URL that relative references resolve against:
// the document's <base href> if present, else its Content-Base, both joined
// against the part's Content-Location.
func documentBase(doc *html.Node, p *mht.Part) string {
	loc := strings.TrimSpace(p.Location)
	if href := findBaseHref(doc); href != "" {
		return mht.ResolveRef(loc, href)
	}
	if p.Base != "" {
		return mht.ResolveRef(loc, p.Base)
	}
	return loc
}

func findBaseHref(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "base" {
		return strings.TrimSpace(getAttr(n, "href"))
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if href := findBaseHref(child); href != "" {
			return href
		}
	}
	return ""
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
