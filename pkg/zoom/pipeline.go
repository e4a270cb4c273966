package zoom

import (
	"math"

	"github.com/pyhub-apps/pdfviewport-golang/pkg/pdf"
)

// Mode selects how the zoom factor is chosen
type Mode int

const (
	Manual Mode = iota
	FitWidth
	FitPage
	ActualSize
)

func (m Mode) String() string {
	switch m {
	case FitWidth:
		return "fit-width"
	case FitPage:
		return "fit-page"
	case ActualSize:
		return "actual-size"
	default:
		return "manual"
	}
}

// Phase is the state of the two-tier zoom
type Phase int

const (
	// Idle: the rasters on screen were rendered at the visual zoom
	Idle Phase = iota
	// Adjusting: rasters are stretched while the debounce runs
	Adjusting
	// Settling: the high-fidelity render is under way
	Settling
)

func (p Phase) String() string {
	switch p {
	case Adjusting:
		return "adjusting"
	case Settling:
		return "settling"
	default:
		return "idle"
	}
}

// Limits bounds interactive and fit-computed zoom factors
type Limits struct {
	Min    float64
	Max    float64
	FitMin float64
	FitMax float64
}

// DefaultLimits allows 25%..500% interactively and 10%..1000% for fit modes
var DefaultLimits = Limits{Min: 0.25, Max: 5.0, FitMin: 0.1, FitMax: 10.0}

// Step describes a coarse zoom change
type Step struct {
	Visual  float64 // new visual zoom
	Ratio   float64 // new visual / old visual, to stretch containers by
	Gen     uint64  // generation the settle must carry
	Changed bool    // false when clamping left the zoom where it was
}

// Pipeline tracks the visual zoom the user sees against the zoom the cached
// rasters were rendered at. It is owned by one goroutine.
type Pipeline struct {
	visual   float64
	rendered float64
	mode     Mode
	phase    Phase
	gen      uint64
	limits   Limits
}

// NewPipeline starts idle at zoom initial
func NewPipeline(initial float64, limits Limits) *Pipeline {
	if initial <= 0 {
		initial = 1.0
	}
	return &Pipeline{
		visual:   initial,
		rendered: initial,
		limits:   limits,
	}
}

func (p *Pipeline) Visual() float64    { return p.visual }
func (p *Pipeline) Rendered() float64  { return p.rendered }
func (p *Pipeline) Mode() Mode         { return p.mode }
func (p *Pipeline) Phase() Phase       { return p.phase }
func (p *Pipeline) Generation() uint64 { return p.gen }

// DisplayScale is the factor existing rasters are stretched by. It is
// exactly 1 whenever the pipeline is idle.
func (p *Pipeline) DisplayScale() float64 {
	if p.phase == Idle {
		return 1.0
	}
	return p.visual / p.rendered
}

// Delta changes the visual zoom by delta and switches to manual mode
func (p *Pipeline) Delta(delta float64) Step {
	p.mode = Manual
	return p.set(clamp(p.visual+delta, p.limits.Min, p.limits.Max))
}

// Absolute sets the visual zoom to percent/100
func (p *Pipeline) Absolute(percent float64) Step {
	p.mode = Manual
	return p.set(clamp(percent/100, p.limits.Min, p.limits.Max))
}

// Fit sets a zoom computed by FitZoom and records the mode
func (p *Pipeline) Fit(mode Mode, zoom float64) Step {
	p.mode = mode
	return p.set(clamp(zoom, p.limits.FitMin, p.limits.FitMax))
}

// SetMode records a mode without changing the zoom
func (p *Pipeline) SetMode(mode Mode) {
	p.mode = mode
}

func (p *Pipeline) set(zoom float64) Step {
	if p.phase == Settling {
		// the interrupted settle already rebuilt the layout at its zoom
		p.Rebase(p.visual)
	}
	old := p.visual
	p.visual = zoom
	p.gen++
	p.phase = Adjusting
	return Step{
		Visual:  zoom,
		Ratio:   zoom / old,
		Gen:     p.gen,
		Changed: zoom != old,
	}
}

// Rebase records that the page layout now matches zoom z, so existing rasters
// are stretched relative to z from here on
func (p *Pipeline) Rebase(z float64) {
	if z > 0 {
		p.rendered = z
	}
}

// BeginSettle moves to Settling if gen is still the latest zoom action
func (p *Pipeline) BeginSettle(gen uint64) bool {
	if gen != p.gen || p.phase != Adjusting {
		return false
	}
	p.phase = Settling
	return true
}

// Settled records that the high-fidelity render for gen has landed. It
// returns false, changing nothing, when a newer zoom action superseded gen.
func (p *Pipeline) Settled(gen uint64) bool {
	if gen != p.gen || p.phase != Settling {
		return false
	}
	p.rendered = p.visual
	p.phase = Idle
	return true
}

// ScrollAfterSettle maps a scroll offset taken while rasters were stretched
// by oldScale onto the 1:1 layout
func ScrollAfterSettle(x, y, oldScale float64) (float64, float64) {
	if oldScale <= 0 {
		return x, y
	}
	return x / oldScale, y / oldScale
}

// Viewport is the visible area in pixels
type Viewport struct {
	Width  float64
	Height float64
}

// FitZoom computes the zoom factor that fits a page into the viewport minus
// margin. ok is false for manual mode and for viewports too small to use.
func FitZoom(mode Mode, size pdf.Size, opts pdf.RenderOptions, viewport Viewport, margin float64) (zoom float64, ok bool) {
	if mode == ActualSize {
		return 1.0, true
	}
	if mode != FitWidth && mode != FitPage {
		return 0, false
	}

	availableWidth := viewport.Width - margin
	availableHeight := viewport.Height - margin
	if availableWidth <= 0 || availableHeight <= 0 {
		return 0, false
	}

	if size.Width <= 0 || size.Height <= 0 {
		size = pdf.Size{Width: pdf.LetterWidth, Height: pdf.LetterHeight, Rotation: size.Rotation}
	}
	w, h := size.Oriented(opts.Rotation)
	scale := opts.DPI / pdf.PointsPerInch
	if scale <= 0 {
		scale = 1
	}
	pageWidth, pageHeight := w*scale, h*scale

	if mode == FitWidth {
		return availableWidth / pageWidth, true
	}
	return math.Min(availableWidth/pageWidth, availableHeight/pageHeight), true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
