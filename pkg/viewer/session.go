package viewer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pyhub-apps/pdfviewport-golang/pkg/cache"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/config"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/highlight"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/observability"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/pdf"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/render"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/search"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/viewport"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/zoom"
)

// ErrClosed is returned by calls on a closed session
var ErrClosed = errors.New("viewer session closed")

// Session is the viewport core of one open document. A single goroutine
// owns all view state; every public method hands it a message and render,
// debounce and search results come back to it the same way.
type Session struct {
	doc     pdf.Document
	ownsDoc bool
	cfg     config.Config
	logger  observability.Logger

	cache    *cache.RasterCache
	worker   *render.Worker
	loader   *viewport.Loader
	searcher *search.Searcher
	mapper   *highlight.Mapper
	debounce zoom.Debouncer

	// owned by the loop goroutine
	sched        *viewport.Scheduler
	thumbs       viewport.ThumbnailStrip
	history      viewport.History
	zoom         *zoom.Pipeline
	opts         pdf.RenderOptions
	sizes        []pdf.Size
	first, last  int
	view         zoom.Viewport
	scrollX      float64
	scrollY      float64
	results      *search.Results
	searchOpts   search.Options
	searchGen    uint64
	searchCancel context.CancelFunc
	settleCancel context.CancelFunc

	ctx      context.Context
	cancel   context.CancelFunc
	inbox    chan func()
	events   chan Event
	done     chan struct{}
	loopDone chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// Open opens a PDF file and starts a session on it. The session closes the
// document when it is closed.
func Open(path string, opts ...Option) (*Session, error) {
	set := defaultSettings()
	for _, opt := range opts {
		opt(set)
	}
	if err := set.cfg.Validate(); err != nil {
		return nil, err
	}

	doc, err := pdf.Open(path, pdf.WithRenderer(set.cfg.Renderer))
	if err != nil {
		return nil, err
	}

	s, err := New(doc, opts...)
	if err != nil {
		doc.Close()
		return nil, err
	}
	s.ownsDoc = true
	return s, nil
}

// New starts a session on an already open document
func New(doc pdf.Document, opts ...Option) (*Session, error) {
	if doc == nil {
		return nil, errors.New("document is nil")
	}

	set := defaultSettings()
	for _, opt := range opts {
		opt(set)
	}
	cfg := set.cfg
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := set.logger.With(observability.String("doc", doc.ID()))

	rc := cache.New(cfg.CacheSize, cache.WithLogger(logger))
	worker := render.NewWorker(doc, rc, render.WithLogger(logger))

	limits := zoom.Limits{Min: cfg.MinZoom, Max: cfg.MaxZoom, FitMin: cfg.FitMinZoom, FitMax: cfg.FitMaxZoom}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		doc:      doc,
		cfg:      cfg,
		logger:   logger,
		cache:    rc,
		worker:   worker,
		loader:   viewport.NewLoader(worker, cfg.BatchSize, logger),
		searcher: search.NewSearcher(logger),
		mapper:   highlight.NewMapper(logger),
		sched:    viewport.NewScheduler(logger),
		zoom:     zoom.NewPipeline(1.0, limits),
		opts:     pdf.RenderOptions{DPI: cfg.DPI, ZoomFactor: 1.0, RenderAnnotations: true, RenderFormFields: true},
		results:  search.NewResults("", nil),
		ctx:      ctx,
		cancel:   cancel,
		inbox:    make(chan func(), 64),
		events:   make(chan Event, cfg.EventBuffer),
		done:     make(chan struct{}),
		loopDone: make(chan struct{}),
	}

	n := doc.PageCount()
	s.sizes = make([]pdf.Size, n)
	for i := range s.sizes {
		size, err := doc.PageSize(i)
		if err != nil {
			logger.Debug("page size unavailable, using letter", observability.Int("page", i), observability.Err(err))
			continue
		}
		s.sizes[i] = size
	}
	s.sched.Init(s.sizes, s.opts)
	s.thumbs.Init(n)
	s.first, s.last = 0, min(cfg.InitialWindow, n)-1

	go s.run()

	// initial population: the first window of pages, then every thumbnail
	err := s.call(func() {
		s.loadRange(0, s.last)
		s.loadThumbnails()
	})
	if err != nil {
		s.Close()
		return nil, err
	}

	logger.Info("session opened", observability.Int("pages", n))
	return s, nil
}

func (s *Session) run() {
	defer close(s.loopDone)
	for {
		select {
		case fn := <-s.inbox:
			fn()
		case <-s.done:
			return
		}
	}
}

// call runs fn on the loop goroutine and waits for it
func (s *Session) call(fn func()) error {
	reply := make(chan struct{})
	select {
	case s.inbox <- func() { fn(); close(reply) }:
	case <-s.done:
		return ErrClosed
	}
	select {
	case <-reply:
		return nil
	case <-s.done:
		return ErrClosed
	}
}

// post queues fn for the loop without waiting. It is used by background
// goroutines and gives up once the session is closed.
func (s *Session) post(fn func()) {
	select {
	case s.inbox <- fn:
	case <-s.done:
	}
}

// spawn runs fn in the background; Close waits for it
func (s *Session) spawn(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}

// emit delivers an event without ever blocking the loop
func (s *Session) emit(e Event) {
	select {
	case s.events <- e:
	default:
		s.logger.Warn("event dropped, consumer too slow", observability.String("event", fmt.Sprintf("%T", e)))
	}
}

// Events returns the notification stream. It is closed by Close.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Document returns the document the session views
func (s *Session) Document() pdf.Document {
	return s.doc
}

// PageCount returns the number of pages
func (s *Session) PageCount() int {
	return len(s.sizes)
}

// RenderPage renders one page, going through the cache. It may be called
// from any goroutine.
func (s *Session) RenderPage(ctx context.Context, page int, opts pdf.RenderOptions) ([]byte, error) {
	if s.closed() {
		return nil, ErrClosed
	}
	return s.worker.RenderPage(ctx, page, opts)
}

// RenderThumbnail renders a thumbnail of the given width
func (s *Session) RenderThumbnail(ctx context.Context, page, width int) ([]byte, error) {
	if s.closed() {
		return nil, ErrClosed
	}
	return s.worker.RenderThumbnail(ctx, page, width)
}

func (s *Session) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// ClearCache drops every cached raster and reloads the visible window
func (s *Session) ClearCache() error {
	return s.call(func() {
		s.cache.Clear()
		s.sched.InvalidateAll()
		s.loadWindow()
	})
}

// OnViewportChanged is called by the view with the 1-based range of visible
// pages. The first visible page becomes the current page.
func (s *Session) OnViewportChanged(firstVisible, lastVisible int) error {
	return s.call(func() {
		if s.sched.Len() == 0 {
			return
		}
		first := min(max(firstVisible-1, 0), s.sched.Len()-1)
		last := min(max(lastVisible-1, first), s.sched.Len()-1)
		s.first, s.last = first, last

		current := s.sched.SetVisible(first, last)
		s.thumbs.Select(current)
		if s.results.Len() > 0 {
			s.emitSearch()
		}
		s.loadWindow()
	})
}

// OnScrolled records the scroll offset of the view
func (s *Session) OnScrolled(x, y float64) error {
	return s.call(func() {
		s.scrollX, s.scrollY = x, y
	})
}

// loadWindow loads the visible range plus the look-ahead buffer
func (s *Session) loadWindow() {
	lo, hi := viewport.Window(s.first, s.last, s.sched.Len(), s.cfg.ViewportBuffer)
	s.loadRange(lo, hi)
}

func (s *Session) loadRange(lo, hi int) {
	pages := s.sched.Pending(lo, hi)
	if len(pages) == 0 {
		return
	}
	s.sched.MarkLoading(pages)

	opts, gen := s.opts, s.sched.Generation()
	s.logger.Debug("loading pages",
		observability.Int("from", pages[0]),
		observability.Int("to", pages[len(pages)-1]),
		observability.Int("count", len(pages)))

	ctx := s.ctx
	s.spawn(func() {
		s.loader.Load(ctx, pages, opts, gen, s.deliverPage)
	})
}

func (s *Session) loadThumbnails() {
	pages := s.thumbs.Pending()
	if len(pages) == 0 {
		return
	}
	s.thumbs.MarkLoading(pages)

	ctx, width, batch := s.ctx, s.cfg.ThumbnailWidth, s.cfg.BatchSize
	s.spawn(func() {
		s.loader.LoadThumbnails(ctx, pages, width, batch, s.deliverThumbnail)
	})
}

func (s *Session) deliverPage(c render.Completion) {
	s.post(func() {
		if !s.sched.Apply(c) {
			return
		}
		s.emit(PageEvent{Page: c.Page, Data: c.Data, Success: c.Success(), Err: c.Err})
	})
}

func (s *Session) deliverThumbnail(c render.Completion) {
	s.post(func() {
		if !s.thumbs.Apply(c) {
			return
		}
		s.emit(ThumbnailEvent{Page: c.Page, Data: c.Data, Success: c.Success(), Err: c.Err})
	})
}

// Rotate turns every page by 90 degrees
func (s *Session) Rotate(clockwise bool) error {
	return s.call(func() {
		delta := pdf.Rotate90
		if !clockwise {
			delta = -pdf.Rotate90
		}
		s.opts.Rotation = s.opts.Rotation.Add(delta)
		s.sched.Resize(s.sizes, s.opts)
		s.sched.InvalidateAll()

		if mode := s.zoom.Mode(); mode != zoom.Manual {
			s.applyFit(mode)
			return
		}
		s.loadWindow()
	})
}

// Snapshot is a copy of the session state
type Snapshot struct {
	Pages         []viewport.PageViewState
	Thumbnails    []viewport.Thumbnail
	Selected      int
	Current       int
	First, Last   int
	Zoom          ZoomEvent
	Options       pdf.RenderOptions
	Search        SearchEvent
	CachedRasters int
	CanGoBack     bool
	CanGoForward  bool
}

// Snapshot returns the current state
func (s *Session) Snapshot() (Snapshot, error) {
	var snap Snapshot
	err := s.call(func() {
		snap = Snapshot{
			Pages:         s.sched.Pages(),
			Thumbnails:    s.thumbs.Items(),
			Selected:      s.thumbs.Selected(),
			Current:       s.sched.Current(),
			First:         s.first,
			Last:          s.last,
			Zoom:          s.zoomEvent(),
			Options:       s.opts,
			Search:        s.searchEvent(),
			CachedRasters: s.cache.Count(),
			CanGoBack:     s.history.CanGoBack(),
			CanGoForward:  s.history.CanGoForward(),
		}
	})
	return snap, err
}

// Close stops the session, waits for background work and empties the
// cache. Documents opened by Open are closed as well.
func (s *Session) Close() error {
	var err error
	s.once.Do(func() {
		s.debounce.Cancel()
		s.cancel()
		close(s.done)
		<-s.loopDone
		s.wg.Wait()

		s.cache.Clear()
		close(s.events)
		if s.ownsDoc {
			err = s.doc.Close()
		}
		s.logger.Info("session closed")
	})
	return err
}
