package highlight

import (
	"math"

	"seehuhn.de/go/geom/matrix"

	"github.com/pyhub-apps/pdfviewport-golang/pkg/observability"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/pdf"
)

// ScreenRect is a highlight in raster pixels: origin top-left, y down
type ScreenRect struct {
	Left    float64
	Top     float64
	Width   float64
	Height  float64
	Current bool // the selected match, drawn differently
}

// Transform returns the matrix taking document space to screen space for a
// page rendered with opts: scale by zoom·dpi/72, flip y about the page
// height, then turn by the total page rotation
func Transform(page pdf.Size, opts pdf.RenderOptions) matrix.Matrix {
	s := opts.Scale()
	m := matrix.Scale(s, -s).Translate(0, page.Height*s)

	w, h := page.Width*s, page.Height*s
	switch page.Rotation.Add(opts.Rotation) {
	case pdf.Rotate90:
		return m.Mul(quarterTurn).Translate(h, 0)
	case pdf.Rotate180:
		return m.Mul(halfTurn).Translate(w, h)
	case pdf.Rotate270:
		return m.Mul(halfTurn).Mul(quarterTurn).Translate(0, w)
	}
	return m
}

// exact clockwise turns in a y-down frame
var (
	quarterTurn = matrix.Matrix{0, 1, -1, 0, 0, 0}
	halfTurn    = matrix.Matrix{-1, 0, 0, -1, 0, 0}
)

// Map converts document rectangles of one page into screen rectangles.
// current is the index among rects of the selected match, or -1. Empty
// rectangles stand for matches without geometry and are skipped.
func Map(rects []pdf.DocumentRect, page pdf.Size, opts pdf.RenderOptions, current int) []ScreenRect {
	if len(rects) == 0 {
		return nil
	}
	m := Transform(page, opts)

	out := make([]ScreenRect, 0, len(rects))
	for i, r := range rects {
		if r.Empty() {
			continue
		}
		x0, y0 := m.Apply(r.Left, r.Top)
		x1, y1 := m.Apply(r.Right, r.Bottom)
		out = append(out, ScreenRect{
			Left:    math.Min(x0, x1),
			Top:     math.Min(y0, y1),
			Width:   math.Abs(x1 - x0),
			Height:  math.Abs(y1 - y0),
			Current: i == current,
		})
	}
	return out
}

// Mapper produces highlights straight from a text layer
type Mapper struct {
	logger observability.Logger
}

// NewMapper creates a mapper logging text-layer failures to logger
func NewMapper(logger observability.Logger) *Mapper {
	return &Mapper{logger: observability.OrNop(logger)}
}

// Source is the part of a document the mapper reads
type Source interface {
	pdf.TextLayer
	PageSize(index int) (pdf.Size, error)
}

// PageHighlights returns the screen rectangles of query on page. A missing
// document, a blank query, a page without matches or a text layer error all
// give an empty result.
func (m *Mapper) PageHighlights(src Source, query string, match pdf.MatchOptions, page int, opts pdf.RenderOptions, current int) []ScreenRect {
	if src == nil || query == "" {
		return nil
	}

	rects, err := src.FindMatchRects(page, query, match)
	if err != nil {
		m.logger.Warn("highlight lookup failed", observability.Int("page", page), observability.Err(err))
		return nil
	}
	if len(rects) == 0 {
		return nil
	}

	size, err := src.PageSize(page)
	if err != nil {
		m.logger.Debug("page size unavailable, assuming letter", observability.Int("page", page), observability.Err(err))
		size = pdf.LetterSize
	}

	m.logger.Debug("highlights mapped",
		observability.Int("page", page),
		observability.Int("rects", len(rects)),
		observability.Float("scale", opts.Scale()))
	return Map(rects, size, opts, current)
}
