package viewport

import "github.com/pyhub-apps/pdfviewport-golang/pkg/render"

// Thumbnail is one entry of the thumbnail strip
type Thumbnail struct {
	Page    int // 0-based
	Data    []byte
	Loading bool
	Failed  bool
}

// ThumbnailStrip holds a thumbnail placeholder for every page plus the
// selection, which follows the current page. Like Scheduler it belongs to
// a single goroutine.
type ThumbnailStrip struct {
	items    []Thumbnail
	selected int
}

// Init creates count placeholders and selects the first page
func (t *ThumbnailStrip) Init(count int) {
	t.items = make([]Thumbnail, count)
	for i := range t.items {
		t.items[i].Page = i
	}
	t.selected = 0
}

// Len returns the number of thumbnails
func (t *ThumbnailStrip) Len() int {
	return len(t.items)
}

// Items returns a copy of the strip
func (t *ThumbnailStrip) Items() []Thumbnail {
	return append([]Thumbnail(nil), t.items...)
}

// Pending returns every page without a thumbnail or request in flight
func (t *ThumbnailStrip) Pending() []int {
	var out []int
	for _, it := range t.items {
		if it.Data == nil && !it.Loading && !it.Failed {
			out = append(out, it.Page)
		}
	}
	return out
}

// MarkLoading flags thumbnails as requested
func (t *ThumbnailStrip) MarkLoading(pages []int) {
	for _, p := range pages {
		if p >= 0 && p < len(t.items) {
			t.items[p].Loading = true
		}
	}
}

// Apply stores a thumbnail completion
func (t *ThumbnailStrip) Apply(c render.Completion) bool {
	if !c.Thumb || c.Page < 0 || c.Page >= len(t.items) {
		return false
	}
	it := &t.items[c.Page]
	it.Loading = false
	it.Failed = c.Err != nil
	it.Data = c.Data
	return true
}

// Select moves the selection, ignoring pages outside the strip
func (t *ThumbnailStrip) Select(page int) {
	if page >= 0 && page < len(t.items) {
		t.selected = page
	}
}

// Selected returns the selected page
func (t *ThumbnailStrip) Selected() int {
	return t.selected
}
