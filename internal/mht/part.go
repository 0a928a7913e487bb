package mht

import (
	"crypto/sha256"
	"encoding/base64"
	"io"
	"mime/quotedprintable"
	"net/textproto"
	"strings"
)

// Part is a leaf MIME part of a web archive with its payload decoded.
type Part struct {
	// ContentType is the declared media type, without parameters.
	ContentType string
	// Charset is the charset parameter of the declared content type, if any.
	Charset string
	// Location is the raw Content-Location header value.
	Location string
	// ID is the Content-ID header value with angle brackets stripped.
	ID string
	// Base is the Content-Base header value, if any.
	Base string
	// Payload holds the transfer-decoded body bytes.
	Payload []byte
}

// Digest returns a URL-safe identity for a payload, used for blob naming
// and reference-cycle detection.
func Digest(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.URLEncoding.EncodeToString(sum[:])
}

// decodeBody undoes the Content-Transfer-Encoding of a part body. The
// multipart reader already strips quoted-printable for nested parts, so this
// mostly sees base64 and the identity encodings.
func decodeBody(body io.Reader, header textproto.MIMEHeader) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(header.Get("Content-Transfer-Encoding"))) {
	case "base64":
		body = base64.NewDecoder(base64.StdEncoding, newWhitespaceStripper(body))
	case "quoted-printable":
		body = quotedprintable.NewReader(body)
	}
	return io.ReadAll(body)
}

// whitespaceStripper drops ASCII whitespace so the base64 decoder never
// chokes on folded or space-padded bodies.
type whitespaceStripper struct {
	r io.Reader
}

func newWhitespaceStripper(r io.Reader) io.Reader {
	return &whitespaceStripper{r: r}
}

func (w *whitespaceStripper) Read(p []byte) (int, error) {
	n, err := w.r.Read(p)
	kept := 0
	for _, b := range p[:n] {
		switch b {
		case ' ', '\t', '\r', '\n':
		default:
			p[kept] = b
			kept++
		}
	}
	return kept, err
}
