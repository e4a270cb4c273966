package pdf

import (
	"fmt"

	gopdf "github.com/dslipak/pdf"
)

// DsliPakSource implements PageSource using the dslipak/pdf library.
// It is the fallback text backend when ledongthuc cannot open a file.
type DsliPakSource struct {
	reader *gopdf.Reader
}

// OpenDslipak opens a PDF file using the dslipak/pdf library
func OpenDslipak(filepath string) (src *DsliPakSource, err error) {
	defer recoverBackend("dslipak", &err)

	r, err := gopdf.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF with dslipak: %w", err)
	}
	return &DsliPakSource{reader: r}, nil
}

// NumPage returns the number of pages
func (s *DsliPakSource) NumPage() int {
	return s.reader.NumPage()
}

// MediaBox reads the page size from the MediaBox entry
func (s *DsliPakSource) MediaBox(index int) (size Size, ok bool) {
	defer func() {
		if recover() != nil {
			size, ok = Size{}, false
		}
	}()

	page := s.reader.Page(index + 1)
	if page.V.IsNull() {
		return Size{}, false
	}

	box := page.V.Key("MediaBox")
	if box.Kind() != gopdf.Array || box.Len() != 4 {
		return Size{}, false
	}
	size = Size{
		Width:  box.Index(2).Float64() - box.Index(0).Float64(),
		Height: box.Index(3).Float64() - box.Index(1).Float64(),
	}
	if rotate := page.V.Key("Rotate"); rotate.Kind() == gopdf.Integer {
		size.Rotation = Rotation(rotate.Int64()).Normalize()
	}
	return size, size.Width > 0 && size.Height > 0
}

// Glyphs extracts positioned glyphs from the page content
func (s *DsliPakSource) Glyphs(index int) (glyphs []Glyph, err error) {
	defer recoverBackend("dslipak", &err)

	if err := CheckIndex(index, s.reader.NumPage()); err != nil {
		return nil, err
	}

	page := s.reader.Page(index + 1)
	if page.V.IsNull() {
		return nil, fmt.Errorf("page %d has no dictionary", index)
	}

	for _, text := range page.Content().Text {
		glyphs = appendGlyphs(glyphs, text.S, text.Font, text.FontSize, text.X, text.Y, text.W)
	}
	return glyphs, nil
}

// Close drops the reader; dslipak keeps no open file handle of its own
func (s *DsliPakSource) Close() error {
	s.reader = nil
	return nil
}
