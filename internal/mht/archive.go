package mht

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/webarc/mhtx/internal/errdefs"
)

// Archive is a parsed MHTML message with its leaf parts indexed by
// Content-Location and Content-ID.
type Archive struct {
	parts  []*Part
	byLoc  map[string]*Part
	byID   map[string]*Part
	starts []string
}

// Parse reads an MHTML message and indexes its parts. Location keys are
// resolved against Content-Base before indexing.
func Parse(r io.Reader) (*Archive, error) {
	msg, err := mail.ReadMessage(r)
	if err != nil {
		return nil, errdefs.NewCustomError(errdefs.ErrTypeNotMHTML,
			fmt.Sprintf("not an MHTML message: %v", err))
	}

	a := &Archive{
		byLoc: make(map[string]*Part),
		byID:  make(map[string]*Part),
	}
	if err := a.walk(textproto.MIMEHeader(msg.Header), msg.Body); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Archive) walk(header textproto.MIMEHeader, body io.Reader) error {
	mediaType, params, err := mime.ParseMediaType(header.Get("Content-Type"))
	if err != nil {
		mediaType, params = "", nil
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		if start := params["start"]; start != "" {
			a.starts = append(a.starts, start)
		}
		boundary := params["boundary"]
		if boundary == "" {
			return errdefs.NewCustomError(errdefs.ErrTypeNotMHTML,
				"multipart section without boundary")
		}
		mr := multipart.NewReader(body, boundary)
		for {
			p, err := mr.NextPart()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return errdefs.NewCustomError(errdefs.ErrTypeNotMHTML,
					fmt.Sprintf("malformed multipart section: %v", err))
			}
			if err := a.walk(p.Header, p); err != nil {
				return err
			}
		}
	}

	payload, err := decodeBody(body, header)
	if err != nil {
		return errdefs.NewCustomError(errdefs.ErrTypeNotMHTML,
			fmt.Sprintf("could not decode part body: %v", err))
	}

	part := &Part{
		ContentType: mediaType,
		Charset:     params["charset"],
		Location:    strings.TrimSpace(header.Get("Content-Location")),
		ID:          strings.Trim(strings.TrimSpace(header.Get("Content-ID")), "<>"),
		Base:        strings.TrimSpace(header.Get("Content-Base")),
		Payload:     payload,
	}
	a.parts = append(a.parts, part)

	if part.Location != "" {
		a.byLoc[ResolveRef(part.Base, part.Location)] = part
	}
	if part.ID != "" {
		a.byID[part.ID] = part
	}
	return nil
}

// Root returns the document to render: the first start parameter that
// resolves by Content-ID, else the first leaf part.
func (a *Archive) Root() (*Part, error) {
	for _, start := range a.starts {
		if p, ok := a.byID[strings.Trim(start, "<>")]; ok {
			return p, nil
		}
	}
	if len(a.parts) > 0 {
		return a.parts[0], nil
	}
	return nil, errdefs.ErrNoRootPart
}

// Parts returns the leaf parts in document order.
func (a *Archive) Parts() []*Part {
	return a.parts
}

// ByID looks up a part by Content-ID, tolerating angle brackets.
func (a *Archive) ByID(id string) *Part {
	return a.byID[strings.Trim(id, "<>")]
}

// ByLocation looks up a part by the given reference resolved against base.
func (a *Archive) ByLocation(base, ref string) *Part {
	return a.byLoc[ResolveRef(base, ref)]
}

// ResolveRef joins a reference against a base URL, returning the reference
// unchanged when either side does not parse.
func ResolveRef(base, ref string) string {
	if base == "" {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
