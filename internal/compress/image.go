package compress

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"

	_ "image/gif"

	"golang.org/x/image/draw"
)

// reencodeImage decodes, clamps the longest dimension to MaxDim, and
// re-encodes: paletted images as optimized PNG, anything else as low-quality
// JPEG. Undecodable data is reported as not ok.
func (c *Compressor) reencodeImage(data []byte) ([]byte, string, bool) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", false
	}

	img = c.clamp(img)

	var buf bytes.Buffer
	if _, paletted := img.(*image.Paletted); paletted {
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, "", false
		}
		return buf.Bytes(), "image/png", true
	}

	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: c.opts.JPEGQuality}); err != nil {
		return nil, "", false
	}
	return buf.Bytes(), "image/jpeg", true
}

// clamp scales img down so neither dimension exceeds MaxDim, preserving the
// aspect ratio. Paletted sources stay paletted.
func (c *Compressor) clamp(img image.Image) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	newWidth, newHeight := width, height
	if width >= height && width > c.opts.MaxDim {
		newWidth = c.opts.MaxDim
		newHeight = height * c.opts.MaxDim / width
	} else if height > width && height > c.opts.MaxDim {
		newHeight = c.opts.MaxDim
		newWidth = width * c.opts.MaxDim / height
	}
	if newWidth == width && newHeight == height {
		return img
	}
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	rect := image.Rect(0, 0, newWidth, newHeight)
	if src, ok := img.(*image.Paletted); ok {
		dst := image.NewPaletted(rect, src.Palette)
		draw.NearestNeighbor.Scale(dst, rect, src, bounds, draw.Src, nil)
		return dst
	}
	dst := image.NewRGBA(rect)
	draw.ApproxBiLinear.Scale(dst, rect, img, bounds, draw.Src, nil)
	return dst
}
