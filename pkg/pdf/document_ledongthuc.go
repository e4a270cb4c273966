package pdf

import (
	"fmt"
	"io"

	lpdf "github.com/ledongthuc/pdf"
)

// LedongthucSource implements PageSource using the ledongthuc/pdf library.
// It provides the most accurate glyph positions of the available backends.
type LedongthucSource struct {
	file   io.Closer
	reader *lpdf.Reader
}

// OpenLedongthuc opens a PDF file using the ledongthuc/pdf library
func OpenLedongthuc(filepath string) (src *LedongthucSource, err error) {
	defer recoverBackend("ledongthuc", &err)

	f, r, err := lpdf.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF with ledongthuc: %w", err)
	}
	return &LedongthucSource{file: f, reader: r}, nil
}

// NumPage returns the number of pages
func (s *LedongthucSource) NumPage() int {
	return s.reader.NumPage()
}

// MediaBox reads the page size from the MediaBox entry
func (s *LedongthucSource) MediaBox(index int) (size Size, ok bool) {
	defer func() {
		if recover() != nil {
			size, ok = Size{}, false
		}
	}()

	page := s.reader.Page(index + 1)
	if page.V.IsNull() {
		return Size{}, false
	}

	mediaBox := page.V.Key("MediaBox")
	if mediaBox.Kind() != lpdf.Array || mediaBox.Len() != 4 {
		return Size{}, false
	}

	// MediaBox is [x0, y0, x1, y1]
	x0 := mediaBox.Index(0).Float64()
	y0 := mediaBox.Index(1).Float64()
	x1 := mediaBox.Index(2).Float64()
	y1 := mediaBox.Index(3).Float64()
	size = Size{Width: x1 - x0, Height: y1 - y0}

	rotate := page.V.Key("Rotate")
	if rotate.Kind() == lpdf.Integer {
		size.Rotation = Rotation(rotate.Int64()).Normalize()
	}
	return size, size.Width > 0 && size.Height > 0
}

// Glyphs extracts positioned glyphs from the page content
func (s *LedongthucSource) Glyphs(index int) (glyphs []Glyph, err error) {
	defer recoverBackend("ledongthuc", &err)

	if err := CheckIndex(index, s.reader.NumPage()); err != nil {
		return nil, err
	}

	page := s.reader.Page(index + 1)
	if page.V.IsNull() {
		return nil, fmt.Errorf("page %d has no dictionary", index)
	}

	content := page.Content()
	for _, text := range content.Text {
		glyphs = appendGlyphs(glyphs, text.S, text.Font, text.FontSize, text.X, text.Y, text.W)
	}
	return glyphs, nil
}

// Close releases the underlying file
func (s *LedongthucSource) Close() error {
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

// appendGlyphs splits a text item into per-rune glyphs with approximate
// boxes. Document space is kept: y grows upward from the baseline.
func appendGlyphs(glyphs []Glyph, s, font string, fontSize, x, baseline, width float64) []Glyph {
	chars := []rune(s)
	if len(chars) == 0 {
		return glyphs
	}

	// Baseline is typically at 20% of the font height
	top := baseline + fontSize*0.8
	bottom := top - fontSize

	charWidth := width / float64(len(chars))
	for _, ch := range chars {
		glyphs = append(glyphs, Glyph{
			Text:     string(ch),
			Font:     font,
			FontSize: fontSize,
			Box: DocumentRect{
				Left:   x,
				Top:    top,
				Right:  x + charWidth,
				Bottom: bottom,
			},
		})
		x += charWidth
	}
	return glyphs
}

// recoverBackend turns a panic inside a PDF backend into an error.
// Both text backends panic on malformed content streams.
func recoverBackend(name string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s: malformed content: %v", name, r)
	}
}
