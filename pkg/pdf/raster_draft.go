package pdf

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

var (
	draftPaper = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	draftInk   = color.RGBA{R: 96, G: 96, B: 96, A: 255}
	draftEdge  = color.RGBA{R: 200, G: 200, B: 200, A: 255}
)

// DraftRasterizer renders a wireframe of a page: the paper, its edge and one
// filled box per glyph. It needs no native library and is used where MuPDF
// is unavailable.
type DraftRasterizer struct {
	geometry Geometry
	source   PageSource
}

// NewDraftRasterizer draws pages from glyph positions of source
func NewDraftRasterizer(geometry Geometry, source PageSource) *DraftRasterizer {
	return &DraftRasterizer{geometry: geometry, source: source}
}

// Rasterize renders a page to PNG at the requested final pixel size
func (r *DraftRasterizer) Rasterize(index, pixelWidth, pixelHeight int, rotation Rotation) ([]byte, error) {
	size, err := r.geometry.PageSize(index)
	if err != nil {
		return nil, err
	}

	var glyphs []Glyph
	if r.source != nil {
		if glyphs, err = r.source.Glyphs(index); err != nil {
			return nil, err
		}
	}

	// Draw unrotated, then turn by the page's own rotation plus the requested one
	total := size.Rotation.Add(rotation)
	w, h := unrotated(pixelWidth, pixelHeight, total)
	if w <= 0 || h <= 0 {
		return encodePNG(image.NewRGBA(image.Rect(0, 0, 1, 1)), pixelWidth, pixelHeight)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(draftPaper), image.Point{}, draw.Src)

	sx := float32(float64(w) / size.Width)
	sy := float32(float64(h) / size.Height)

	z := vector.NewRasterizer(w, h)
	strokeRect(z, 0, 0, float32(w), float32(h), 1)
	z.Draw(dst, dst.Bounds(), image.NewUniform(draftEdge), image.Point{})

	z.Reset(w, h)
	for _, g := range glyphs {
		if g.Box.Empty() {
			continue
		}
		x0 := float32(g.Box.Left) * sx
		x1 := float32(g.Box.Right) * sx
		y0 := float32(size.Height-g.Box.Top) * sy
		y1 := float32(size.Height-g.Box.Bottom) * sy
		fillRect(z, x0, y0, x1, y1)
	}
	z.Draw(dst, dst.Bounds(), image.NewUniform(draftInk), image.Point{})

	return encodePNG(rotateImage(dst, total), pixelWidth, pixelHeight)
}

func fillRect(z *vector.Rasterizer, x0, y0, x1, y1 float32) {
	z.MoveTo(x0, y0)
	z.LineTo(x1, y0)
	z.LineTo(x1, y1)
	z.LineTo(x0, y1)
	z.ClosePath()
}

// strokeRect outlines a rectangle as an even-width frame
func strokeRect(z *vector.Rasterizer, x0, y0, x1, y1, width float32) {
	fillRect(z, x0, y0, x1, y0+width)
	fillRect(z, x0, y1-width, x1, y1)
	fillRect(z, x0, y0, x0+width, y1)
	fillRect(z, x1-width, y0, x1, y1)
}
