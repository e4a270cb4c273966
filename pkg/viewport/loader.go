package viewport

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/pyhub-apps/pdfviewport-golang/pkg/observability"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/pdf"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/render"
)

// DefaultConcurrency bounds the number of simultaneous render requests
const DefaultConcurrency = 10

// Sink receives completions. It is called from loader goroutines and must
// hand the message over to the owning goroutine rather than mutate state.
type Sink func(render.Completion)

// Loader fans render requests out to a Worker with bounded concurrency
type Loader struct {
	worker *render.Worker
	limit  int
	logger observability.Logger
}

// NewLoader creates a loader running at most limit requests at a time
func NewLoader(worker *render.Worker, limit int, logger observability.Logger) *Loader {
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	return &Loader{
		worker: worker,
		limit:  limit,
		logger: observability.OrNop(logger),
	}
}

// Load renders pages and delivers one Completion per page to sink. A failed
// page never stops the others. Load returns once every started request has
// completed, or ctx.Err() if it stopped issuing requests early.
func (l *Loader) Load(ctx context.Context, pages []int, opts pdf.RenderOptions, gen uint64, sink Sink) error {
	var g errgroup.Group
	g.SetLimit(l.limit)

	var err error
	for _, page := range pages {
		if err = ctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			c := l.worker.Complete(ctx, page, opts, gen)
			if c.Err != nil {
				l.logger.Debug("page load failed", observability.Int("page", page), observability.Err(c.Err))
			}
			sink(c)
			return nil
		})
	}
	g.Wait()
	return err
}

// LoadThumbnails renders thumbnails in consecutive batches of at most
// batch pages, each batch waiting for the previous one
func (l *Loader) LoadThumbnails(ctx context.Context, pages []int, width, batch int, sink Sink) error {
	if batch <= 0 {
		batch = DefaultConcurrency
	}

	for start := 0; start < len(pages); start += batch {
		if err := ctx.Err(); err != nil {
			return err
		}

		var g errgroup.Group
		for _, page := range pages[start:min(start+batch, len(pages))] {
			g.Go(func() error {
				sink(l.worker.CompleteThumbnail(ctx, page, width, 0))
				return nil
			})
		}
		g.Wait()
	}
	return nil
}
