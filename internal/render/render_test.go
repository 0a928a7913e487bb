package render

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webarc/mhtx/internal/compress"
	"github.com/webarc/mhtx/internal/mht"
)

// A 1x1 transparent PNG.
const tinyPNGBase64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

func parseFixture(t *testing.T, lines []string) *mht.Archive {
	t.Helper()
	arc, err := mht.Parse(strings.NewReader(strings.Join(lines, "\r\n")))
	require.NoError(t, err)
	return arc
}

func pageArchive(t *testing.T) *mht.Archive {
	return parseFixture(t, []string{
		`Content-Type: multipart/related; boundary="b"; start="<root@test>"`,
		"",
		"--b",
		"Content-Type: text/html",
		"Content-ID: <root@test>",
		"Content-Location: http://example.com/index.html",
		"",
		`<html><body><img src="image.png"><a href="cid:missing@test">gone</a></body></html>`,
		"--b",
		"Content-Type: image/png",
		"Content-Location: http://example.com/image.png",
		"Content-Transfer-Encoding: base64",
		"",
		tinyPNGBase64,
		"--b--",
		"",
	})
}

func TestRenderInline(t *testing.T) {
	arc := pageArchive(t)
	engine := NewInline(arc, compress.New(compress.Options{}))

	out, err := engine.Render()
	require.NoError(t, err)
	doc := string(out)

	t.Run("resolvable reference becomes a data uri", func(t *testing.T) {
		assert.Contains(t, doc, `src="data:image/png;base64,`)
		assert.NotContains(t, doc, `src="image.png"`)
	})

	t.Run("unresolvable reference is left alone", func(t *testing.T) {
		assert.Contains(t, doc, `href="cid:missing@test"`)
	})
}

func TestRenderInlineCycle(t *testing.T) {
	arc := parseFixture(t, []string{
		`Content-Type: multipart/related; boundary="b"`,
		"",
		"--b",
		"Content-Type: text/html",
		"Content-Location: http://example.com/a.html",
		"",
		`<html><body><a href="a.html">self</a></body></html>`,
		"--b--",
		"",
	})

	engine := NewInline(arc, compress.New(compress.Options{}))
	out, err := engine.Render()
	require.NoError(t, err)

	// The self reference is unrolled once, then the cycle is broken and the
	// inner document keeps the original href.
	assert.Contains(t, string(out), "data:text/html;charset=utf-8;base64,")
}

func TestRenderFiles(t *testing.T) {
	arc := pageArchive(t)
	fs := afero.NewMemMapFs()
	engine := NewFiles(arc, compress.New(compress.Options{}), fs, "out")

	out, err := engine.Render()
	require.NoError(t, err)
	doc := string(out)

	img := arc.ByLocation("", "http://example.com/image.png")
	require.NotNil(t, img)
	blobName := "blob=" + mht.Digest(img.Payload) + ".png"

	t.Run("reference rewritten to blob name", func(t *testing.T) {
		assert.Contains(t, doc, `src="`+blobName+`"`)
	})

	t.Run("blob file written with payload", func(t *testing.T) {
		data, err := afero.ReadFile(fs, "out/"+blobName)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "\x89PNG"))
	})
}

func TestRenderLegacyCharset(t *testing.T) {
	render := func(t *testing.T, lines []string) string {
		t.Helper()
		engine := NewInline(parseFixture(t, lines), compress.New(compress.Options{}))
		out, err := engine.Render()
		require.NoError(t, err)
		assert.True(t, utf8.Valid(out))
		return string(out)
	}

	t.Run("declared windows-1252 is transcoded", func(t *testing.T) {
		doc := render(t, []string{
			"Content-Type: text/html; charset=windows-1252",
			"Content-Location: http://example.com/menu.html",
			"",
			"<html><body>caf\xe9</body></html>",
			"",
		})
		assert.Contains(t, doc, "café")
	})

	t.Run("meta-declared charset is sniffed", func(t *testing.T) {
		doc := render(t, []string{
			"Content-Type: text/html",
			"",
			"<html><head><meta charset=\"windows-1252\"></head><body>caf\xe9</body></html>",
			"",
		})
		assert.Contains(t, doc, "café")
	})

	t.Run("undeclared utf-8 stays intact", func(t *testing.T) {
		doc := render(t, []string{
			"Content-Type: text/html",
			"",
			"<html><body>caf\xc3\xa9</body></html>",
			"",
		})
		assert.Contains(t, doc, "café")
	})
}

func TestRenderBaseResolution(t *testing.T) {
	assetParts := []string{
		"--b",
		"Content-Type: image/png",
		"Content-Location: http://example.com/assets/pic.png",
		"Content-Transfer-Encoding: base64",
		"",
		tinyPNGBase64,
		"--b--",
		"",
	}

	renderWithRoot := func(t *testing.T, rootLines []string) string {
		t.Helper()
		lines := append([]string{
			`Content-Type: multipart/related; boundary="b"`,
			"",
		}, rootLines...)
		lines = append(lines, assetParts...)
		engine := NewInline(parseFixture(t, lines), compress.New(compress.Options{}))
		out, err := engine.Render()
		require.NoError(t, err)
		return string(out)
	}

	t.Run("base href steers relative references", func(t *testing.T) {
		doc := renderWithRoot(t, []string{
			"--b",
			"Content-Type: text/html",
			"Content-Location: http://example.com/index.html",
			"",
			`<html><head><base href="assets/"></head><body><img src="pic.png"></body></html>`,
		})
		assert.Contains(t, doc, `src="data:image/png;base64,`)
		assert.NotContains(t, doc, `src="pic.png"`)
	})

	t.Run("content-base steers relative references", func(t *testing.T) {
		doc := renderWithRoot(t, []string{
			"--b",
			"Content-Type: text/html",
			"Content-Location: http://example.com/index.html",
			"Content-Base: http://example.com/assets/",
			"",
			`<html><body><img src="pic.png"></body></html>`,
		})
		assert.Contains(t, doc, `src="data:image/png;base64,`)
		assert.NotContains(t, doc, `src="pic.png"`)
	})

	t.Run("content-location alone misses the asset", func(t *testing.T) {
		doc := renderWithRoot(t, []string{
			"--b",
			"Content-Type: text/html",
			"Content-Location: http://example.com/index.html",
			"",
			`<html><body><img src="pic.png"></body></html>`,
		})
		assert.Contains(t, doc, `src="pic.png"`)
	})
}

func TestRenderNonHTMLRoot(t *testing.T) {
	arc := parseFixture(t, []string{
		"Content-Type: image/png",
		"Content-Transfer-Encoding: base64",
		"",
		tinyPNGBase64,
		"",
	})

	engine := NewInline(arc, compress.New(compress.Options{}))
	out, err := engine.Render()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "\x89PNG"))
}
