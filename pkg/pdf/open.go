package pdf

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// Renderer names accepted by WithRenderer
const (
	RendererFitz  = "fitz"
	RendererDraft = "draft"
)

// OpenOption is a function that modifies how a document is opened
type OpenOption func(*openConfig)

type openConfig struct {
	renderer string
}

// WithRenderer selects the rasterizer backend ("fitz" or "draft")
func WithRenderer(name string) OpenOption {
	return func(c *openConfig) {
		c.renderer = name
	}
}

// document implements Document by combining a geometry backend, a text
// backend and a rasterizer. All calls into native handles are serialised by
// one mutex per document.
type document struct {
	path     string
	geometry Geometry
	text     PageSource
	raster   Rasterizer

	mu     sync.Mutex
	closed bool
	runs   map[int]*TextRun
}

// Open opens a PDF file and returns a Document
func Open(filepath string, opts ...OpenOption) (Document, error) {
	config := &openConfig{renderer: RendererFitz}
	for _, opt := range opts {
		opt(config)
	}

	if _, err := os.Stat(filepath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &DocumentError{Path: filepath, Kind: ErrNotFound, Err: err}
		}
		return nil, &DocumentError{Path: filepath, Kind: ErrInvalidFormat, Err: err}
	}

	// Try ledongthuc first as it has the most accurate glyph positions,
	// then fall back to dslipak
	var text PageSource
	var textErr error
	if src, err := OpenLedongthuc(filepath); err == nil {
		text = src
	} else if src, err2 := OpenDslipak(filepath); err2 == nil {
		text = src
	} else {
		textErr = errors.Join(err, err2)
	}

	var geometry Geometry
	if g, err := ReadGeometry(filepath); err == nil {
		geometry = g
	} else if text != nil {
		geometry = sourceGeometry{src: text}
	} else {
		return nil, &DocumentError{Path: filepath, Kind: ErrInvalidFormat, Err: errors.Join(err, textErr)}
	}

	doc := &document{
		path:     filepath,
		geometry: geometry,
		text:     text,
		runs:     make(map[int]*TextRun),
	}

	switch config.renderer {
	case RendererDraft:
		doc.raster = NewDraftRasterizer(geometry, text)
	case RendererFitz, "":
		r, err := NewFitzRasterizer(filepath)
		if err != nil {
			doc.Close()
			return nil, &DocumentError{Path: filepath, Kind: ErrInvalidFormat, Err: err}
		}
		doc.raster = r
	default:
		doc.Close()
		return nil, fmt.Errorf("unknown renderer %q", config.renderer)
	}

	return doc, nil
}

// ID returns the document path
func (d *document) ID() string {
	return d.path
}

// PageCount returns the total number of pages
func (d *document) PageCount() int {
	return d.geometry.PageCount()
}

// PageSize returns the unrotated page size in points
func (d *document) PageSize(index int) (Size, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return Size{}, ErrDocumentClosed
	}
	return d.geometry.PageSize(index)
}

// Rasterize renders a page to PNG bytes
func (d *document) Rasterize(index, pixelWidth, pixelHeight int, rotation Rotation) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrDocumentClosed
	}
	if err := CheckIndex(index, d.geometry.PageCount()); err != nil {
		return nil, err
	}
	return d.raster.Rasterize(index, pixelWidth, pixelHeight, rotation)
}

// ExtractText returns the page text run
func (d *document) ExtractText(index int) (string, error) {
	run, err := d.textRun(index)
	if err != nil {
		return "", err
	}
	return run.Text, nil
}

// FindMatchRects returns one merged rectangle per match of query; matches
// without geometry get a zero rectangle
func (d *document) FindMatchRects(index int, query string, opts MatchOptions) ([]DocumentRect, error) {
	q, err := CompileQuery(query, opts)
	if err != nil || q == nil {
		return nil, err
	}
	run, err := d.textRun(index)
	if err != nil {
		return nil, err
	}
	return run.Rects(q), nil
}

func (d *document) textRun(index int) (*TextRun, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrDocumentClosed
	}
	if err := CheckIndex(index, d.geometry.PageCount()); err != nil {
		return nil, err
	}
	if run, ok := d.runs[index]; ok {
		return run, nil
	}
	if d.text == nil {
		return NewTextRun(nil), nil
	}

	glyphs, err := d.text.Glyphs(index)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text from page %d: %w", index, err)
	}
	run := NewTextRun(glyphs)
	d.runs[index] = run
	return run, nil
}

// Close releases all backends
func (d *document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	d.runs = nil

	var errs []error
	if c, ok := d.raster.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	if d.text != nil {
		errs = append(errs, d.text.Close())
	}
	return errors.Join(errs...)
}
