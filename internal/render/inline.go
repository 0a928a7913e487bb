package render

import "encoding/base64"

// inlineSink represents assets as data: URIs. Reference cycles are broken by
// the seen set: a part already on the current rendering path keeps its
// original reference.
type inlineSink struct{}

func (s *inlineSink) uri(e *Engine, a asset, seen map[string]bool) (string, error) {
	if seen[a.digest] {
		return "", nil
	}
	branch := make(map[string]bool, len(seen)+1)
	for digest := range seen {
		branch[digest] = true
	}
	branch[a.digest] = true

	data, mediaType, err := e.renderPart(a, branch)
	if err != nil {
		return "", err
	}
	data, mediaType = e.comp.Compress(data, mediaType)

	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
