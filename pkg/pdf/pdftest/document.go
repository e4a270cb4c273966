// Package pdftest provides an in-memory pdf.Document for tests.
package pdftest

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/pyhub-apps/pdfviewport-golang/pkg/pdf"
)

// Call records one Rasterize invocation
type Call struct {
	Page     int
	Width    int
	Height   int
	Rotation pdf.Rotation
}

// Document is a stub document. Every page has the same size unless Sizes
// overrides it; rasters are small fake payloads encoding the request.
type Document struct {
	Name  string
	Pages int
	Size  pdf.Size
	Sizes map[int]pdf.Size

	// Text maps a page to its text run; Rects maps page and query to the
	// rectangles FindMatchRects returns
	Text  map[int]string
	Rects map[int]map[string][]pdf.DocumentRect

	// Fail makes Rasterize fail for the listed pages
	Fail map[int]error

	// Gate, when set, blocks every Rasterize call until it is closed
	Gate chan struct{}

	// Bookmarks and Info back Outline and Properties
	Bookmarks []pdf.OutlineItem
	Info      pdf.Properties

	mu     sync.Mutex
	calls  []Call
	count  atomic.Int64
	closed atomic.Bool
}

// New returns a letter-sized stub document with the given number of pages
func New(pages int) *Document {
	return &Document{
		Name:  "stub.pdf",
		Pages: pages,
		Size:  pdf.LetterSize,
	}
}

func (d *Document) ID() string     { return d.Name }
func (d *Document) PageCount() int { return d.Pages }

func (d *Document) PageSize(index int) (pdf.Size, error) {
	if err := pdf.CheckIndex(index, d.Pages); err != nil {
		return pdf.Size{}, err
	}
	if s, ok := d.Sizes[index]; ok {
		return s, nil
	}
	return d.Size, nil
}

func (d *Document) Rasterize(index, width, height int, rotation pdf.Rotation) ([]byte, error) {
	if d.closed.Load() {
		return nil, pdf.ErrDocumentClosed
	}
	if err := pdf.CheckIndex(index, d.Pages); err != nil {
		return nil, err
	}

	d.count.Add(1)
	d.mu.Lock()
	d.calls = append(d.calls, Call{Page: index, Width: width, Height: height, Rotation: rotation})
	d.mu.Unlock()

	if d.Gate != nil {
		<-d.Gate
	}
	if err, ok := d.Fail[index]; ok {
		return nil, err
	}
	return []byte(fmt.Sprintf("page=%d size=%dx%d rot=%d", index, width, height, rotation)), nil
}

func (d *Document) ExtractText(index int) (string, error) {
	if err := pdf.CheckIndex(index, d.Pages); err != nil {
		return "", err
	}
	return d.Text[index], nil
}

func (d *Document) FindMatchRects(index int, query string, _ pdf.MatchOptions) ([]pdf.DocumentRect, error) {
	if err := pdf.CheckIndex(index, d.Pages); err != nil {
		return nil, err
	}
	return d.Rects[index][query], nil
}

func (d *Document) Outline() ([]pdf.OutlineItem, error) {
	return d.Bookmarks, nil
}

func (d *Document) Properties() (pdf.Properties, error) {
	props := d.Info
	props.PageCount = d.Pages
	return props, nil
}

func (d *Document) Close() error {
	d.closed.Store(true)
	return nil
}

// RasterCount returns the number of Rasterize calls so far
func (d *Document) RasterCount() int {
	return int(d.count.Load())
}

// Calls returns a copy of the recorded Rasterize calls
func (d *Document) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Call(nil), d.calls...)
}

// PagesRendered returns the distinct pages rasterized so far
func (d *Document) PagesRendered() map[int]int {
	out := make(map[int]int)
	for _, c := range d.Calls() {
		out[c.Page]++
	}
	return out
}

// Reset forgets the recorded calls
func (d *Document) Reset() {
	d.mu.Lock()
	d.calls = nil
	d.mu.Unlock()
	d.count.Store(0)
}
