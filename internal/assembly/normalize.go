package assembly

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"runtime"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/colorbook/internal/generation"
)

// pageImage is a page payload in a form the PDF writer can embed.
type pageImage struct {
	index     int
	data      []byte
	imageType string
	width     int
	height    int
}

// normalize decodes every artifact concurrently. JPEG payloads are embedded
// as-is; everything else is flattened onto white and re-encoded as 8-bit PNG,
// which the PDF writer requires.
func normalize(artifacts []generation.Artifact) ([]pageImage, error) {
	out := make([]pageImage, len(artifacts))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, a := range artifacts {
		g.Go(func() error {
			img, err := normalizeOne(a)
			if err != nil {
				return err
			}
			out[i] = img
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func normalizeOne(a generation.Artifact) (pageImage, error) {
	src, format, err := image.Decode(bytes.NewReader(a.Data))
	if err != nil {
		return pageImage{}, fmt.Errorf("%w: page %d (%s): %v", ErrInvalidImage, a.Index+1, a.MediaType, err)
	}

	bounds := src.Bounds()
	if bounds.Empty() {
		return pageImage{}, fmt.Errorf("%w: page %d is empty", ErrInvalidImage, a.Index+1)
	}

	page := pageImage{
		index:  a.Index,
		width:  bounds.Dx(),
		height: bounds.Dy(),
	}

	if format == "jpeg" {
		page.data = a.Data
		page.imageType = "JPG"
		return page, nil
	}

	flat := image.NewRGBA(image.Rect(0, 0, page.width, page.height))
	draw.Draw(flat, flat.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), src, bounds.Min, draw.Over)

	var buf bytes.Buffer
	if err := png.Encode(&buf, flat); err != nil {
		return pageImage{}, fmt.Errorf("%w: page %d: %v", ErrInvalidImage, a.Index+1, err)
	}

	page.data = buf.Bytes()
	page.imageType = "PNG"
	return page, nil
}
