package viewer

import (
	"context"
	"time"

	"github.com/pyhub-apps/pdfviewport-golang/pkg/observability"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/pdf"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/viewport"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/zoom"
)

// OnZoomDelta changes the zoom by delta (0.25 is one button step)
func (s *Session) OnZoomDelta(delta float64) error {
	return s.call(func() {
		s.coarse(s.zoom.Delta(delta), s.cfg.ZoomDebounce)
	})
}

// OnWheelZoom applies one wheel tick
func (s *Session) OnWheelZoom(in bool) error {
	delta := s.cfg.WheelStep
	if !in {
		delta = -delta
	}
	return s.call(func() {
		s.coarse(s.zoom.Delta(delta), s.cfg.WheelDebounce)
	})
}

// ZoomIn zooms in by one step
func (s *Session) ZoomIn() error {
	return s.OnZoomDelta(s.cfg.ZoomStep)
}

// ZoomOut zooms out by one step
func (s *Session) ZoomOut() error {
	return s.OnZoomDelta(-s.cfg.ZoomStep)
}

// ResetZoom returns to 100%
func (s *Session) ResetZoom() error {
	return s.OnZoomAbsolute(100)
}

// OnZoomAbsolute sets the zoom to a percentage
func (s *Session) OnZoomAbsolute(percent float64) error {
	return s.call(func() {
		s.coarse(s.zoom.Absolute(percent), s.cfg.ZoomDebounce)
	})
}

// OnFitMode switches zoom mode. Fit modes render at once, without debounce.
func (s *Session) OnFitMode(mode zoom.Mode) error {
	return s.call(func() {
		if mode == zoom.Manual {
			s.zoom.SetMode(zoom.Manual)
			s.emit(s.zoomEvent())
			return
		}
		s.applyFit(mode)
	})
}

// OnViewportResized records the viewport size and re-applies a fit mode
func (s *Session) OnViewportResized(width, height float64) error {
	return s.call(func() {
		s.view = zoom.Viewport{Width: width, Height: height}
		if mode := s.zoom.Mode(); mode != zoom.Manual {
			s.applyFit(mode)
		}
	})
}

func (s *Session) applyFit(mode zoom.Mode) {
	z, ok := zoom.FitZoom(mode, s.currentSize(), s.opts, s.view, s.cfg.ViewportMargin)
	if !ok {
		s.logger.Debug("viewport unusable for fit, zoom unchanged",
			observability.String("mode", mode.String()),
			observability.Float("width", s.view.Width),
			observability.Float("height", s.view.Height))
		s.loadWindow()
		return
	}

	s.debounce.Cancel()
	step := s.zoom.Fit(mode, z)
	s.stretch(step)
	s.settle(step.Gen)
}

// currentSize returns the geometry of the current page; FitZoom treats a
// zero size as letter
func (s *Session) currentSize() pdf.Size {
	if i := s.sched.Current(); i >= 0 && i < len(s.sizes) {
		return s.sizes[i]
	}
	return pdf.Size{}
}

// coarse gives immediate feedback by stretching containers, then schedules
// the high-fidelity render after delay
func (s *Session) coarse(step zoom.Step, delay time.Duration) {
	s.stretch(step)

	gen := step.Gen
	s.debounce.Schedule(delay, func() {
		s.post(func() { s.settle(gen) })
	})
}

func (s *Session) stretch(step zoom.Step) {
	if s.settleCancel != nil {
		s.settleCancel()
		s.settleCancel = nil
	}
	s.sched.Supersede()
	s.sched.ScaleBy(step.Ratio)

	s.logger.Debug("zoom adjusting",
		observability.Float("visual", step.Visual),
		observability.Float("display_scale", s.zoom.DisplayScale()))
	s.emit(s.zoomEvent())
}

// settle runs the high-fidelity pass for zoom generation gen: the cache is
// cleared, containers are recomputed from page geometry and the pages around
// the current one are rendered at the new zoom
func (s *Session) settle(gen uint64) {
	if !s.zoom.BeginSettle(gen) {
		return
	}
	oldScale := s.zoom.DisplayScale()

	if s.zoom.Visual() == s.zoom.Rendered() && s.opts.ZoomFactor == s.zoom.Visual() {
		s.sched.Resize(s.sizes, s.opts)
		s.zoom.Settled(gen)
		s.loadWindow()
		s.emit(s.zoomEvent())
		return
	}

	s.cache.Clear()
	s.opts.ZoomFactor = s.zoom.Visual()
	s.sched.Resize(s.sizes, s.opts)
	s.sched.InvalidateAll()
	s.emit(s.zoomEvent())

	lo, hi := viewport.Window(s.first, s.last, s.sched.Len(), max(s.cfg.SettleWindow, s.cfg.ViewportBuffer))
	pages := s.sched.Pending(lo, hi)
	s.sched.MarkLoading(pages)

	ctx, cancel := context.WithCancel(s.ctx)
	s.settleCancel = cancel
	opts, schedGen := s.opts, s.sched.Generation()

	s.logger.Debug("zoom settling",
		observability.Float("zoom", opts.ZoomFactor),
		observability.Int("pages", len(pages)))

	s.spawn(func() {
		s.loader.Load(ctx, pages, opts, schedGen, s.deliverPage)
		s.post(func() { s.settled(gen, oldScale) })
	})
}

func (s *Session) settled(gen uint64, oldScale float64) {
	if !s.zoom.Settled(gen) {
		return
	}
	if s.settleCancel != nil {
		s.settleCancel()
		s.settleCancel = nil
	}
	s.emit(s.zoomEvent())

	s.scrollX, s.scrollY = zoom.ScrollAfterSettle(s.scrollX, s.scrollY, oldScale)
	s.emit(ScrollEvent{X: s.scrollX, Y: s.scrollY})

	s.logger.Debug("zoom settled", observability.Float("zoom", s.zoom.Rendered()))
}

func (s *Session) zoomEvent() ZoomEvent {
	return ZoomEvent{
		Visual:       s.zoom.Visual(),
		Rendered:     s.zoom.Rendered(),
		DisplayScale: s.zoom.DisplayScale(),
		Phase:        s.zoom.Phase(),
		Mode:         s.zoom.Mode(),
	}
}
