package render

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pyhub-apps/pdfviewport-golang/pkg/cache"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/observability"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/pdf"
)

// Completion is the outcome of one render request, delivered as a message
// to whoever owns the page state
type Completion struct {
	Page  int // 0-based
	Data  []byte
	Err   error
	Thumb bool
	Gen   uint64 // generation the request was issued under
}

// Success reports whether the completion carries a raster
func (c Completion) Success() bool {
	return c.Err == nil && c.Data != nil
}

// Stats counts worker activity
type Stats struct {
	RasterCalls uint64
	Failures    uint64
}

// Option configures a Worker
type Option func(*Worker)

// WithLogger sets the worker logger
func WithLogger(logger observability.Logger) Option {
	return func(w *Worker) {
		w.logger = observability.OrNop(logger)
	}
}

// Worker turns render requests into rasters, checking the cache first.
// Concurrent requests for the same key share one rasterizer call.
type Worker struct {
	doc    pdf.Document
	cache  *cache.RasterCache
	group  singleflight.Group
	logger observability.Logger

	rasterCalls atomic.Uint64
	failures    atomic.Uint64
}

// NewWorker creates a worker rendering doc into c
func NewWorker(doc pdf.Document, c *cache.RasterCache, opts ...Option) *Worker {
	w := &Worker{
		doc:    doc,
		cache:  c,
		logger: observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Cache returns the cache the worker populates
func (w *Worker) Cache() *cache.RasterCache {
	return w.cache
}

// PixelSize returns the raster dimensions of a page rendered with opts.
// Width and height are swapped when the total rotation is 90 or 270.
func PixelSize(size pdf.Size, opts pdf.RenderOptions) (int, int) {
	width, height := size.Oriented(opts.Rotation)
	scale := opts.EffectiveDPI() / pdf.PointsPerInch
	return atLeastOne(math.Round(width * scale)), atLeastOne(math.Round(height * scale))
}

// ThumbnailSize returns width and the height preserving the page aspect ratio
func ThumbnailSize(size pdf.Size, width int) (int, int) {
	return atLeastOne(float64(width)), atLeastOne(math.Round(float64(width) / size.AspectRatio()))
}

func atLeastOne(v float64) int {
	if v < 1 {
		return 1
	}
	return int(v)
}

// RenderPage returns the raster of a page, rendering it on a cache miss.
// Cancelling ctx stops waiting but not a rasterization already under way;
// its result still lands in the cache.
func (w *Worker) RenderPage(ctx context.Context, page int, opts pdf.RenderOptions) ([]byte, error) {
	if err := pdf.CheckIndex(page, w.doc.PageCount()); err != nil {
		return nil, err
	}
	if !opts.Rotation.Valid() {
		return nil, fmt.Errorf("invalid rotation %d: must be 0, 90, 180 or 270", opts.Rotation)
	}

	key := cache.PageKey(w.doc.ID(), page, opts)
	return w.render(ctx, key, func() ([]byte, error) {
		size, err := w.doc.PageSize(page)
		if err != nil {
			return nil, err
		}
		width, height := PixelSize(size, opts)
		return w.doc.Rasterize(page, width, height, opts.Rotation)
	})
}

// RenderThumbnail returns a thumbnail of the given pixel width
func (w *Worker) RenderThumbnail(ctx context.Context, page, width int) ([]byte, error) {
	if err := pdf.CheckIndex(page, w.doc.PageCount()); err != nil {
		return nil, err
	}

	key := cache.ThumbnailKey(w.doc.ID(), page, width)
	return w.render(ctx, key, func() ([]byte, error) {
		size, err := w.doc.PageSize(page)
		if err != nil {
			return nil, err
		}
		tw, th := ThumbnailSize(size, width)
		return w.doc.Rasterize(page, tw, th, pdf.Rotate0)
	})
}

func (w *Worker) render(ctx context.Context, key cache.Key, rasterize func() ([]byte, error)) ([]byte, error) {
	if data, ok := w.cache.Get(key); ok {
		return data, nil
	}

	ch := w.group.DoChan(key.String(), func() (interface{}, error) {
		// a flight that finished after our cache lookup already filled it
		if data, ok := w.cache.Get(key); ok {
			return data, nil
		}

		start := time.Now()
		w.rasterCalls.Add(1)
		data, err := rasterize()
		if err != nil {
			w.failures.Add(1)
			w.logger.Warn("render failed",
				observability.Int("page", key.Page),
				observability.Err(err))
			return nil, &pdf.RenderFailure{Page: key.Page, Err: err}
		}

		w.cache.Put(key, data)
		w.logger.Debug("page rendered",
			observability.String("key", key.String()),
			observability.Int("bytes", len(data)),
			observability.Duration("elapsed", time.Since(start)))
		return data, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Complete renders a page and packs the outcome into a Completion
func (w *Worker) Complete(ctx context.Context, page int, opts pdf.RenderOptions, gen uint64) Completion {
	data, err := w.RenderPage(ctx, page, opts)
	return Completion{Page: page, Data: data, Err: err, Gen: gen}
}

// CompleteThumbnail renders a thumbnail and packs the outcome into a Completion
func (w *Worker) CompleteThumbnail(ctx context.Context, page, width int, gen uint64) Completion {
	data, err := w.RenderThumbnail(ctx, page, width)
	return Completion{Page: page, Data: data, Err: err, Thumb: true, Gen: gen}
}

// Stats returns the worker counters
func (w *Worker) Stats() Stats {
	return Stats{
		RasterCalls: w.rasterCalls.Load(),
		Failures:    w.failures.Load(),
	}
}

// IsRenderFailure reports whether err is a recoverable single-page failure
func IsRenderFailure(err error) bool {
	var rf *pdf.RenderFailure
	return errors.As(err, &rf)
}
