package viewport

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyhub-apps/pdfviewport-golang/pkg/cache"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/pdf"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/pdf/pdftest"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/render"
)

func letterPages(n int) []pdf.Size {
	sizes := make([]pdf.Size, n)
	for i := range sizes {
		sizes[i] = pdf.LetterSize
	}
	return sizes
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name               string
		first, last, total int
		lo, hi             int
	}{
		// pages 10..12 (1-based) are indices 9..11; the window is 7..14 (1-based)
		{"Middle of document", 9, 11, 100, 6, 13},
		{"Clamped at start", 0, 1, 100, 0, 3},
		{"Clamped at end", 98, 99, 100, 96, 99},
		{"Short document", 0, 0, 2, 0, 1},
		{"Reversed range", 11, 9, 100, 6, 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := Window(tt.first, tt.last, tt.total, DefaultBuffer)
			assert.Equal(t, tt.lo, lo)
			assert.Equal(t, tt.hi, hi)
		})
	}

	lo, hi := Window(0, 0, 0, DefaultBuffer)
	assert.Greater(t, lo, hi, "empty document must yield an empty window")
}

func TestInitPlaceholders(t *testing.T) {
	s := NewScheduler(nil)
	sizes := letterPages(3)
	sizes[1] = pdf.Size{} // unknown geometry
	sizes[2] = pdf.Size{Width: 792, Height: 612}

	s.Init(sizes, pdf.RenderOptions{DPI: 144, ZoomFactor: 1.5})

	require.Equal(t, 3, s.Len())
	for i, p := range s.Pages() {
		assert.Equal(t, i, p.Index)
		assert.False(t, p.Loaded())
	}
	p0, _ := s.Page(0)
	assert.InDelta(t, 612*3.0, p0.Width, 1e-9)
	assert.InDelta(t, 792*3.0, p0.Height, 1e-9)
	p1, _ := s.Page(1)
	assert.Equal(t, p0.Width, p1.Width, "missing geometry falls back to letter")
	p2, _ := s.Page(2)
	assert.InDelta(t, 792*3.0, p2.Width, 1e-9)
}

func TestPendingSkipsLoadedPages(t *testing.T) {
	s := NewScheduler(nil)
	s.Init(letterPages(100), pdf.DefaultRenderOptions())

	// pages 8 and 12 (1-based) were rendered earlier; 13 is in flight
	gen := s.Generation()
	s.Apply(render.Completion{Page: 7, Data: []byte("x"), Gen: gen})
	s.Apply(render.Completion{Page: 11, Data: []byte("x"), Gen: gen})
	s.MarkLoading([]int{12})

	lo, hi := Window(9, 11, s.Len(), DefaultBuffer)
	assert.Equal(t, []int{6, 8, 9, 10, 13}, s.Pending(lo, hi))
}

func TestApplyDropsStaleGeneration(t *testing.T) {
	s := NewScheduler(nil)
	s.Init(letterPages(5), pdf.DefaultRenderOptions())

	old := s.Generation()
	s.MarkLoading([]int{1, 2})
	s.Invalidate(0, 4)

	assert.False(t, s.Apply(render.Completion{Page: 1, Data: []byte("old"), Gen: old}))
	p, _ := s.Page(1)
	assert.Nil(t, p.Raster)
	assert.False(t, p.Loading, "invalidation must release in-flight pages")

	assert.True(t, s.Apply(render.Completion{Page: 1, Data: []byte("new"), Gen: s.Generation()}))
	p, _ = s.Page(1)
	assert.Equal(t, []byte("new"), p.Raster)
}

func TestApplyFailure(t *testing.T) {
	s := NewScheduler(nil)
	s.Init(letterPages(3), pdf.DefaultRenderOptions())
	s.MarkLoading([]int{2})

	s.Apply(render.Completion{Page: 2, Err: errors.New("boom"), Gen: s.Generation()})

	p, _ := s.Page(2)
	assert.True(t, p.Failed)
	assert.False(t, p.Loading)
	assert.Nil(t, p.Raster)
	assert.Empty(t, s.Pending(2, 2), "failed pages wait for an explicit re-render")

	s.InvalidateAll()
	assert.Equal(t, []int{2}, s.Pending(2, 2))
}

func TestScaleAndResize(t *testing.T) {
	s := NewScheduler(nil)
	opts := pdf.RenderOptions{DPI: 72, ZoomFactor: 1}
	s.Init(letterPages(2), opts)

	s.ScaleBy(1.1)
	s.ScaleBy(1.1)
	p, _ := s.Page(0)
	assert.InDelta(t, 612*1.21, p.Width, 1e-9)

	opts.ZoomFactor = 1.21
	s.Resize(letterPages(2), opts)
	p, _ = s.Page(0)
	assert.InDelta(t, 612*1.21, p.Width, 1e-9)
}

func TestSetVisible(t *testing.T) {
	s := NewScheduler(nil)
	s.Init(letterPages(10), pdf.DefaultRenderOptions())

	assert.Equal(t, 4, s.SetVisible(4, 5))
	for _, p := range s.Pages() {
		assert.Equal(t, p.Index == 4 || p.Index == 5, p.Visible, "page %d", p.Index)
	}
	assert.Equal(t, 4, s.Current())
}

type collector struct {
	mu  sync.Mutex
	got []render.Completion
}

func (c *collector) sink(r render.Completion) {
	c.mu.Lock()
	c.got = append(c.got, r)
	c.mu.Unlock()
}

func (c *collector) pages() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []int
	for _, r := range c.got {
		out = append(out, r.Page)
	}
	sort.Ints(out)
	return out
}

func TestLoaderFailureDoesNotAbortBatch(t *testing.T) {
	doc := pdftest.New(20)
	doc.Fail = map[int]error{3: errors.New("corrupt")}
	loader := NewLoader(render.NewWorker(doc, cache.New(50)), 2, nil)

	var c collector
	err := loader.Load(context.Background(), []int{1, 2, 3, 4, 5}, pdf.DefaultRenderOptions(), 9, c.sink)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3, 4, 5}, c.pages())
	for _, r := range c.got {
		assert.Equal(t, uint64(9), r.Gen)
		assert.Equal(t, r.Page != 3, r.Success(), "page %d", r.Page)
	}
}

func TestLoaderCancelled(t *testing.T) {
	doc := pdftest.New(20)
	loader := NewLoader(render.NewWorker(doc, cache.New(50)), 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var c collector
	err := loader.Load(ctx, []int{1, 2, 3}, pdf.DefaultRenderOptions(), 1, c.sink)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, c.pages())
	assert.Equal(t, 0, doc.RasterCount())
}

func TestLoadThumbnails(t *testing.T) {
	doc := pdftest.New(25)
	loader := NewLoader(render.NewWorker(doc, cache.New(100)), 0, nil)

	var strip ThumbnailStrip
	strip.Init(doc.Pages)
	pending := strip.Pending()
	strip.MarkLoading(pending)
	assert.Empty(t, strip.Pending())

	var c collector
	require.NoError(t, loader.LoadThumbnails(context.Background(), pending, 150, 10, c.sink))
	for _, r := range c.got {
		assert.True(t, strip.Apply(r))
	}

	assert.Len(t, c.got, 25)
	for _, it := range strip.Items() {
		assert.NotNil(t, it.Data)
		assert.False(t, it.Loading)
	}
	assert.Empty(t, strip.Pending())
}

func TestThumbnailSelection(t *testing.T) {
	var strip ThumbnailStrip
	strip.Init(5)

	strip.Select(3)
	assert.Equal(t, 3, strip.Selected())
	strip.Select(9)
	assert.Equal(t, 3, strip.Selected())
	assert.False(t, strip.Apply(render.Completion{Page: 1}), "page completions are not thumbnails")
}
