// Package imageio is the thin adapter between base-spec §6's "image
// decoder"/"image encoder" external collaborators and the grid.Array2D
// pixel representation the reducers work with. It is pure image/png
// plumbing: no third-party image codec appears anywhere in the retrieved
// corpus, so the stdlib codec is the grounded choice (DESIGN.md).
package imageio

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/kestrelwave/wfc/internal/grid"
)

// Decode reads a PNG and returns it as an H×W grid of RGBA color tokens,
// the "opaque comparable color tokens" base-spec §6 requires.
func Decode(r io.Reader) (*grid.Array2D[color.RGBA], error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("imageio: decode: %w", err)
	}
	b := img.Bounds()
	out := grid.NewArray2D[color.RGBA](b.Dy(), b.Dx())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.Set(y, x, color.RGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.RGBA))
		}
	}
	return out, nil
}

// Encode writes a grid of RGBA pixels as a PNG.
func Encode(w io.Writer, g *grid.Array2D[color.RGBA]) error {
	img := image.NewRGBA(image.Rect(0, 0, g.Width(), g.Height()))
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			img.SetRGBA(x, y, g.Get(y, x))
		}
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("imageio: encode: %w", err)
	}
	return nil
}
