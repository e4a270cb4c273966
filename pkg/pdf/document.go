package pdf

import (
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// PDFCPUGeometry implements Geometry using pdfcpu.
// Page sizes are resolved lazily and memoised.
type PDFCPUGeometry struct {
	mu    sync.Mutex
	ctx   *model.Context
	sizes map[int]Size
}

// ReadGeometry parses and validates a PDF file with pdfcpu
func ReadGeometry(filepath string) (*PDFCPUGeometry, error) {
	ctx, err := api.ReadContextFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}

	// Validate the PDF
	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("invalid PDF: %w", err)
	}

	return &PDFCPUGeometry{ctx: ctx, sizes: make(map[int]Size)}, nil
}

// PageCount returns the total number of pages
func (g *PDFCPUGeometry) PageCount() int {
	return g.ctx.PageCount
}

// PageSize returns the MediaBox size and rotation of a page (0-based index)
func (g *PDFCPUGeometry) PageSize(index int) (Size, error) {
	if err := CheckIndex(index, g.ctx.PageCount); err != nil {
		return Size{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if size, ok := g.sizes[index]; ok {
		return size, nil
	}

	// Get page dictionary and inherited attributes
	pageDict, _, attrs, err := g.ctx.PageDict(index+1, false)
	if err != nil {
		return Size{}, fmt.Errorf("failed to get page dict: %w", err)
	}

	size := LetterSize
	if attrs != nil && attrs.MediaBox != nil {
		size.Width = attrs.MediaBox.Width()
		size.Height = attrs.MediaBox.Height()
	}

	// Rotation from inherited attributes first, then from the page dict
	if attrs != nil {
		size.Rotation = Rotation(attrs.Rotate).Normalize()
	} else if rot, ok := pageDict["Rotate"].(types.Integer); ok {
		size.Rotation = Rotation(int(rot)).Normalize()
	}

	g.sizes[index] = size
	return size, nil
}

// sourceGeometry implements Geometry on top of a text backend's MediaBox,
// for files pdfcpu refuses to read
type sourceGeometry struct {
	src PageSource
}

func (g sourceGeometry) PageCount() int {
	return g.src.NumPage()
}

func (g sourceGeometry) PageSize(index int) (Size, error) {
	if err := CheckIndex(index, g.src.NumPage()); err != nil {
		return Size{}, err
	}
	if size, ok := g.src.MediaBox(index); ok {
		return size, nil
	}
	return LetterSize, nil
}
