package cache

import (
	"fmt"
	"math"
	"strconv"

	"github.com/pyhub-apps/pdfviewport-golang/pkg/pdf"
)

// Key identifies one raster. Page keys and thumbnail keys live in separate
// namespaces so they never collide.
type Key struct {
	Doc      string
	Page     int
	DPI      float64
	Zoom     int // zoom factor in hundredths
	Rotation pdf.Rotation
	Thumb    bool
	Width    int // thumbnail width in pixels
}

// PageKey derives the key of a full page raster. The zoom factor is rounded
// to two decimals, so 1.004 and 1.0 share an entry while 1.0 and 1.25 do not.
func PageKey(doc string, page int, opts pdf.RenderOptions) Key {
	return Key{
		Doc:      doc,
		Page:     page,
		DPI:      opts.DPI,
		Zoom:     int(math.Round(opts.ZoomFactor * 100)),
		Rotation: opts.Rotation.Normalize(),
	}
}

// ThumbnailKey derives the key of a thumbnail of the given width
func ThumbnailKey(doc string, page, width int) Key {
	return Key{
		Doc:   doc,
		Page:  page,
		Thumb: true,
		Width: width,
	}
}

// String renders the key as path:page:dpi:zoom:rot or path:thumb:page:width
func (k Key) String() string {
	if k.Thumb {
		return fmt.Sprintf("%s:thumb:%d:%d", k.Doc, k.Page, k.Width)
	}
	return fmt.Sprintf("%s:%d:%s:%.2f:%d",
		k.Doc, k.Page, strconv.FormatFloat(k.DPI, 'f', -1, 64), float64(k.Zoom)/100, int(k.Rotation))
}
