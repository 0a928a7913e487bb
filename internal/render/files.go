package render

import (
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/webarc/mhtx/internal/compress"
	"github.com/webarc/mhtx/internal/mht"
)

// filesSink writes each referenced asset to a blob file in dir and rewrites
// references to the blob's relative name. Blobs are keyed by payload digest,
// so shared assets are written once and self-references terminate.
type filesSink struct {
	fs  afero.Fs
	dir string
}

// NewFiles returns an engine that unpacks assets into blob files under dir.
func NewFiles(arc *mht.Archive, comp *compress.Compressor, fs afero.Fs, dir string) *Engine {
	return &Engine{arc: arc, comp: comp, sink: &filesSink{fs: fs, dir: dir}}
}

func (s *filesSink) uri(e *Engine, a asset, seen map[string]bool) (string, error) {
	name := "blob=" + a.digest + a.ext
	path := filepath.Join(s.dir, name)

	exists, err := afero.Exists(s.fs, path)
	if err != nil {
		return "", err
	}
	if exists {
		return name, nil
	}

	// Claim the name before rendering so recursive references settle on it.
	if err := afero.WriteFile(s.fs, path, nil, 0o644); err != nil {
		return "", err
	}

	data, mediaType, err := e.renderPart(a, seen)
	if err != nil {
		return "", err
	}
	data, _ = e.comp.Compress(data, mediaType)

	if err := afero.WriteFile(s.fs, path, data, 0o644); err != nil {
		return "", err
	}
	return name, nil
}
