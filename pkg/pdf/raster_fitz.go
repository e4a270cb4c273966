package pdf

import (
	"fmt"

	"github.com/gen2brain/go-fitz"
)

// FitzRasterizer renders pages with MuPDF through go-fitz.
// A fitz document is not safe for concurrent use; callers serialise access.
type FitzRasterizer struct {
	doc *fitz.Document
}

// NewFitzRasterizer opens filepath with MuPDF
func NewFitzRasterizer(filepath string) (*FitzRasterizer, error) {
	doc, err := fitz.New(filepath)
	if err != nil {
		return nil, fmt.Errorf("unable to open PDF document: %w", err)
	}
	return &FitzRasterizer{doc: doc}, nil
}

// Rasterize renders a page to PNG at the requested final pixel size
func (r *FitzRasterizer) Rasterize(index, pixelWidth, pixelHeight int, rotation Rotation) ([]byte, error) {
	if err := CheckIndex(index, r.doc.NumPage()); err != nil {
		return nil, err
	}

	// Bounds are in points with the page's own /Rotate already applied
	bound, err := r.doc.Bound(index)
	if err != nil {
		return nil, fmt.Errorf("unable to read page bounds: %w", err)
	}
	if bound.Dx() <= 0 {
		return nil, fmt.Errorf("page %d has empty bounds", index)
	}

	w, _ := unrotated(pixelWidth, pixelHeight, rotation)
	dpi := float64(w) * PointsPerInch / float64(bound.Dx())

	img, err := r.doc.ImageDPI(index, dpi)
	if err != nil {
		return nil, fmt.Errorf("unable to render page %d: %w", index, err)
	}

	return encodePNG(rotateImage(img, rotation), pixelWidth, pixelHeight)
}

// Close releases the MuPDF document
func (r *FitzRasterizer) Close() error {
	return r.doc.Close()
}
