package pdf

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
)

// OutlineItem is one bookmark of the document outline
type OutlineItem struct {
	Title    string
	Page     int // 0-based target page, -1 when the bookmark has no destination
	Children []OutlineItem
}

// Properties holds the document information dictionary and file facts
type Properties struct {
	Title        string
	Author       string
	Subject      string
	Keywords     string
	Creator      string
	Producer     string
	CreationDate string
	ModDate      string
	Version      string
	PageCount    int
	FileSize     int64
}

// Outline reads the bookmark tree with pdfcpu
func (g *PDFCPUGeometry) Outline() ([]OutlineItem, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	bms, err := pdfcpu.Bookmarks(g.ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read outline: %w", err)
	}
	return outlineItems(bms, g.ctx.PageCount), nil
}

func outlineItems(bms []pdfcpu.Bookmark, pages int) []OutlineItem {
	if len(bms) == 0 {
		return nil
	}
	items := make([]OutlineItem, 0, len(bms))
	for _, bm := range bms {
		page := bm.PageFrom - 1
		if page < 0 || page >= pages {
			page = -1
		}
		items = append(items, OutlineItem{
			Title:    bm.Title,
			Page:     page,
			Children: outlineItems(bm.Kids, pages),
		})
	}
	return items
}

// Properties returns the information dictionary pdfcpu parsed on read
func (g *PDFCPUGeometry) Properties() (Properties, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	xt := g.ctx.XRefTable
	props := Properties{
		Title:        xt.Title,
		Author:       xt.Author,
		Subject:      xt.Subject,
		Keywords:     xt.Keywords,
		Creator:      xt.Creator,
		Producer:     xt.Producer,
		CreationDate: xt.CreationDate,
		ModDate:      xt.ModDate,
		PageCount:    xt.PageCount,
	}
	if xt.HeaderVersion != nil || xt.RootVersion != nil {
		props.Version = xt.VersionString()
	}
	return props, nil
}

// Outline returns the bookmark tree, or nil when the geometry backend
// cannot read one
func (d *document) Outline() ([]OutlineItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrDocumentClosed
	}
	if md, ok := d.geometry.(Metadata); ok {
		return md.Outline()
	}
	return nil, nil
}

// Properties returns the document information plus the file size
func (d *document) Properties() (Properties, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return Properties{}, ErrDocumentClosed
	}

	props := Properties{PageCount: d.geometry.PageCount()}
	if md, ok := d.geometry.(Metadata); ok {
		p, err := md.Properties()
		if err != nil {
			return Properties{}, err
		}
		props = p
	}
	if fi, err := os.Stat(d.path); err == nil {
		props.FileSize = fi.Size()
	}
	return props, nil
}
