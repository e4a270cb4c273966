package zoom

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyhub-apps/pdfviewport-golang/pkg/pdf"
)

func TestPipelineTwoTiers(t *testing.T) {
	p := NewPipeline(1.0, DefaultLimits)
	assert.Equal(t, Idle, p.Phase())
	assert.Equal(t, 1.0, p.DisplayScale())

	var step Step
	for i := 0; i < 3; i++ {
		step = p.Delta(0.1)
	}
	assert.InDelta(t, 1.3, p.Visual(), 1e-9)
	assert.Equal(t, 1.0, p.Rendered())
	assert.Equal(t, Adjusting, p.Phase())
	assert.InDelta(t, 1.3, p.DisplayScale(), 1e-9)
	assert.InDelta(t, 1.3/1.2, step.Ratio, 1e-9)

	require.True(t, p.BeginSettle(step.Gen))
	assert.Equal(t, Settling, p.Phase())
	assert.NotEqual(t, 1.0, p.DisplayScale())

	require.True(t, p.Settled(step.Gen))
	assert.Equal(t, Idle, p.Phase())
	assert.Equal(t, p.Visual(), p.Rendered())
	assert.Equal(t, 1.0, p.DisplayScale())
}

func TestPipelineSupersededSettle(t *testing.T) {
	p := NewPipeline(1.0, DefaultLimits)

	first := p.Delta(0.25)
	second := p.Delta(0.25)

	assert.False(t, p.BeginSettle(first.Gen), "superseded debounce must not settle")
	require.True(t, p.BeginSettle(second.Gen))

	third := p.Delta(0.25)
	assert.False(t, p.Settled(second.Gen), "render superseded while settling")
	assert.Equal(t, 1.5, p.Rendered(), "layout was rebuilt at the interrupted zoom")
	assert.InDelta(t, 1.75/1.5, p.DisplayScale(), 1e-9)
	assert.InDelta(t, 1.75/1.5, third.Ratio, 1e-9)
	assert.Equal(t, Adjusting, p.Phase())

	require.True(t, p.BeginSettle(third.Gen))
	require.True(t, p.Settled(third.Gen))
	assert.Equal(t, 1.75, p.Rendered())
}

func TestPipelineClamp(t *testing.T) {
	tests := []struct {
		name     string
		apply    func(p *Pipeline) Step
		expected float64
	}{
		{"Delta below minimum", func(p *Pipeline) Step { return p.Delta(-5) }, 0.25},
		{"Delta above maximum", func(p *Pipeline) Step { return p.Delta(10) }, 5.0},
		{"Absolute percent", func(p *Pipeline) Step { return p.Absolute(150) }, 1.5},
		{"Absolute above maximum", func(p *Pipeline) Step { return p.Absolute(900) }, 5.0},
		{"Fit uses wider range", func(p *Pipeline) Step { return p.Fit(FitWidth, 8) }, 8.0},
		{"Fit below fit minimum", func(p *Pipeline) Step { return p.Fit(FitPage, 0.01) }, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPipeline(1.0, DefaultLimits)
			step := tt.apply(p)
			assert.InDelta(t, tt.expected, step.Visual, 1e-9)
			assert.InDelta(t, tt.expected, p.Visual(), 1e-9)
		})
	}
}

func TestPipelineModes(t *testing.T) {
	p := NewPipeline(1.0, DefaultLimits)

	p.Fit(FitWidth, 1.2)
	assert.Equal(t, FitWidth, p.Mode())

	p.Delta(0.1)
	assert.Equal(t, Manual, p.Mode(), "an explicit zoom leaves fit mode")

	step := p.Delta(0)
	assert.False(t, step.Changed)
}

func TestFitZoom(t *testing.T) {
	opts := pdf.RenderOptions{DPI: 72, ZoomFactor: 1}
	view := Viewport{Width: 692, Height: 872}

	zoom, ok := FitZoom(FitWidth, pdf.LetterSize, opts, view, 80)
	require.True(t, ok)
	assert.InDelta(t, 1.0, zoom, 1e-9)

	zoom, ok = FitZoom(FitPage, pdf.LetterSize, opts, Viewport{Width: 1304, Height: 872}, 80)
	require.True(t, ok)
	assert.InDelta(t, 1.0, zoom, 1e-9, "height is the limiting side")

	rotated := opts
	rotated.Rotation = pdf.Rotate90
	zoom, ok = FitZoom(FitWidth, pdf.LetterSize, rotated, view, 80)
	require.True(t, ok)
	assert.InDelta(t, 612.0/792.0, zoom, 1e-9)

	hiDPI := pdf.RenderOptions{DPI: 144, ZoomFactor: 1}
	zoom, _ = FitZoom(FitWidth, pdf.LetterSize, hiDPI, view, 80)
	assert.InDelta(t, 0.5, zoom, 1e-9)

	zoom, ok = FitZoom(ActualSize, pdf.LetterSize, opts, Viewport{}, 80)
	assert.True(t, ok)
	assert.Equal(t, 1.0, zoom)

	_, ok = FitZoom(FitWidth, pdf.LetterSize, opts, Viewport{Width: 60, Height: 500}, 80)
	assert.False(t, ok, "viewport narrower than the margin")

	_, ok = FitZoom(Manual, pdf.LetterSize, opts, view, 80)
	assert.False(t, ok)
}

func TestScrollAfterSettle(t *testing.T) {
	x, y := ScrollAfterSettle(300, 1500, 1.5)
	assert.Equal(t, 200.0, x)
	assert.Equal(t, 1000.0, y)

	x, y = ScrollAfterSettle(10, 20, 0)
	assert.Equal(t, 10.0, x)
	assert.Equal(t, 20.0, y)
}

func TestDebouncerCoalesces(t *testing.T) {
	var d Debouncer
	var runs atomic.Int32
	var last atomic.Int32

	for i := 1; i <= 5; i++ {
		v := int32(i)
		d.Schedule(100*time.Millisecond, func() {
			runs.Add(1)
			last.Store(v)
		})
		time.Sleep(20 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
	assert.Equal(t, int32(5), last.Load())
	assert.False(t, d.Pending())
}

func TestDebouncerWaitsFromLastCall(t *testing.T) {
	var d Debouncer
	var mu sync.Mutex
	var fired time.Time

	d.Schedule(100*time.Millisecond, func() {})
	time.Sleep(60 * time.Millisecond)
	last := time.Now()
	d.Schedule(100*time.Millisecond, func() {
		mu.Lock()
		fired = time.Now()
		mu.Unlock()
	})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return !fired.IsZero()
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, fired.Sub(last), 100*time.Millisecond)
}

func TestDebouncerCancel(t *testing.T) {
	var d Debouncer
	var runs atomic.Int32

	d.Schedule(30*time.Millisecond, func() { runs.Add(1) })
	assert.True(t, d.Pending())
	d.Cancel()
	assert.False(t, d.Pending())

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load())
}
