package transcoder

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// ImageTranscoder turns still images into static WebP stickers in memory.
type ImageTranscoder struct{}

func NewImageTranscoder() *ImageTranscoder {
	return &ImageTranscoder{}
}

// Resize scales the image to fit inside width x height (up or down), centres it
// on a transparent canvas of exactly that size and encodes lossy WebP.
func (t *ImageTranscoder) Resize(ctx context.Context, input []byte, width, height, quality int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", width, height)
	}

	src, err := imaging.Decode(bytes.NewReader(input), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	canvas := imaging.New(width, height, color.NRGBA{0, 0, 0, 0})
	canvas = imaging.PasteCenter(canvas, contain(src, width, height))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, canvas, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, fmt.Errorf("failed to encode WebP: %w", err)
	}
	return buf.Bytes(), nil
}

// contain resizes src keeping its aspect ratio so that it fits the box.
func contain(src image.Image, width, height int) image.Image {
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return src
	}
	scale := math.Min(float64(width)/float64(b.Dx()), float64(height)/float64(b.Dy()))
	w := max(1, int(math.Round(float64(b.Dx())*scale)))
	h := max(1, int(math.Round(float64(b.Dy())*scale)))
	if w == b.Dx() && h == b.Dy() {
		return src
	}
	return imaging.Resize(src, w, h, imaging.Lanczos)
}
