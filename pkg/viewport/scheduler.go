package viewport

import (
	"github.com/pyhub-apps/pdfviewport-golang/pkg/observability"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/pdf"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/render"
)

// DefaultBuffer is the number of pages loaded ahead of and behind the
// visible range
const DefaultBuffer = 2

// PageViewState is the view model of one displayed page
type PageViewState struct {
	Index   int // 0-based
	Raster  []byte
	Loading bool
	Visible bool
	Failed  bool
	Width   float64 // container size in pixels, known before the raster
	Height  float64
}

// Loaded reports whether the page holds a raster
func (p PageViewState) Loaded() bool {
	return p.Raster != nil
}

// Window returns the inclusive range of 0-based pages to materialize for
// the visible range [first, last]. An empty document yields lo > hi.
func Window(first, last, total, buffer int) (lo, hi int) {
	if total <= 0 {
		return 0, -1
	}
	if last < first {
		first, last = last, first
	}
	lo = max(0, first-buffer)
	hi = min(total-1, last+buffer)
	return lo, hi
}

// Scheduler owns the PageViewState of every page of a document. It is not
// safe for concurrent use: all calls must come from the goroutine that owns
// the view, with render results marshalled to it as Completions.
type Scheduler struct {
	pages   []PageViewState
	gen     uint64
	current int
	logger  observability.Logger
}

// NewScheduler creates an empty scheduler
func NewScheduler(logger observability.Logger) *Scheduler {
	return &Scheduler{logger: observability.OrNop(logger)}
}

// ContainerSize returns the placeholder size of a page in pixels. Zero sizes
// fall back to US Letter.
func ContainerSize(size pdf.Size, opts pdf.RenderOptions) (float64, float64) {
	if size.Width <= 0 || size.Height <= 0 {
		size = pdf.Size{Width: pdf.LetterWidth, Height: pdf.LetterHeight, Rotation: size.Rotation}
	}
	w, h := size.Oriented(opts.Rotation)
	scale := opts.Scale()
	return w * scale, h * scale
}

// Init creates placeholders for all pages at once so the scrollable extent
// is known before anything is rendered
func (s *Scheduler) Init(sizes []pdf.Size, opts pdf.RenderOptions) {
	s.pages = make([]PageViewState, len(sizes))
	for i, size := range sizes {
		w, h := ContainerSize(size, opts)
		s.pages[i] = PageViewState{Index: i, Width: w, Height: h}
	}
	s.gen++
	s.current = 0
	s.logger.Debug("placeholders created", observability.Int("pages", len(sizes)))
}

// Len returns the number of pages
func (s *Scheduler) Len() int {
	return len(s.pages)
}

// Page returns the state of one page
func (s *Scheduler) Page(index int) (PageViewState, bool) {
	if index < 0 || index >= len(s.pages) {
		return PageViewState{}, false
	}
	return s.pages[index], true
}

// Pages returns a copy of every page state
func (s *Scheduler) Pages() []PageViewState {
	return append([]PageViewState(nil), s.pages...)
}

// Generation returns the token render requests must carry to be applied
func (s *Scheduler) Generation() uint64 {
	return s.gen
}

// Current returns the current page, the first visible one
func (s *Scheduler) Current() int {
	return s.current
}

// Pending returns the pages in [lo, hi] that hold no raster, are not loading
// and have not failed
func (s *Scheduler) Pending(lo, hi int) []int {
	lo = max(lo, 0)
	hi = min(hi, len(s.pages)-1)

	var out []int
	for i := lo; i <= hi; i++ {
		p := s.pages[i]
		if p.Raster == nil && !p.Loading && !p.Failed {
			out = append(out, i)
		}
	}
	return out
}

// MarkLoading flags pages as having a request in flight
func (s *Scheduler) MarkLoading(pages []int) {
	for _, i := range pages {
		if i >= 0 && i < len(s.pages) {
			s.pages[i].Loading = true
		}
	}
}

// Apply stores a render result. Results issued under an older generation
// are stale and are dropped; Apply reports whether c changed any state.
func (s *Scheduler) Apply(c render.Completion) bool {
	if c.Gen != s.gen {
		s.logger.Debug("stale render discarded",
			observability.Int("page", c.Page),
			observability.Int64("gen", int64(c.Gen)),
			observability.Int64("current", int64(s.gen)))
		return false
	}
	if c.Page < 0 || c.Page >= len(s.pages) {
		return false
	}

	p := &s.pages[c.Page]
	p.Loading = false
	if c.Err != nil {
		p.Failed = true
		p.Raster = nil
		return true
	}
	p.Failed = false
	p.Raster = c.Data
	return true
}

// ScaleBy stretches every container by ratio, keeping existing rasters
func (s *Scheduler) ScaleBy(ratio float64) {
	for i := range s.pages {
		s.pages[i].Width *= ratio
		s.pages[i].Height *= ratio
	}
}

// Resize recomputes every container from true page geometry
func (s *Scheduler) Resize(sizes []pdf.Size, opts pdf.RenderOptions) {
	for i := range s.pages {
		var size pdf.Size
		if i < len(sizes) {
			size = sizes[i]
		}
		s.pages[i].Width, s.pages[i].Height = ContainerSize(size, opts)
	}
}

// Supersede starts a new generation, keeping every raster. Results still
// in flight become stale and their pages are released for reloading.
func (s *Scheduler) Supersede() {
	s.gen++
	for i := range s.pages {
		s.pages[i].Loading = false
	}
}

// Invalidate drops rasters in [lo, hi] and starts a new generation
func (s *Scheduler) Invalidate(lo, hi int) {
	s.Supersede()
	for i := max(lo, 0); i <= hi && i < len(s.pages); i++ {
		s.pages[i].Raster = nil
		s.pages[i].Failed = false
	}
}

// InvalidateAll drops every raster
func (s *Scheduler) InvalidateAll() {
	s.Invalidate(0, len(s.pages)-1)
}

// SetVisible marks the 0-based range [first, last] as visible and returns
// the new current page
func (s *Scheduler) SetVisible(first, last int) int {
	for i := range s.pages {
		s.pages[i].Visible = i >= first && i <= last
	}
	if len(s.pages) > 0 {
		s.current = min(max(first, 0), len(s.pages)-1)
	}
	return s.current
}
