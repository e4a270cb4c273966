package pdf

import (
	"fmt"
	"math"
)

// PointsPerInch is the resolution of document space (1 point = 1/72 inch)
const PointsPerInch = 72.0

// Default page size used when geometry is unavailable (US Letter)
const (
	LetterWidth  = 612.0
	LetterHeight = 792.0
)

// Rotation is a clockwise page rotation in degrees
type Rotation int

const (
	Rotate0   Rotation = 0
	Rotate90  Rotation = 90
	Rotate180 Rotation = 180
	Rotate270 Rotation = 270
)

// Normalize maps any multiple of 90 onto [0, 360)
func (r Rotation) Normalize() Rotation {
	n := int(r) % 360
	if n < 0 {
		n += 360
	}
	return Rotation(n - n%90)
}

// Add returns the rotation after turning by delta degrees
func (r Rotation) Add(delta Rotation) Rotation {
	return (r + delta).Normalize()
}

// Swaps reports whether the rotation exchanges width and height
func (r Rotation) Swaps() bool {
	n := r.Normalize()
	return n == Rotate90 || n == Rotate270
}

// Valid reports whether r is one of 0, 90, 180 or 270
func (r Rotation) Valid() bool {
	switch r {
	case Rotate0, Rotate90, Rotate180, Rotate270:
		return true
	}
	return false
}

// RenderOptions describes the resolution and orientation of a raster request
type RenderOptions struct {
	DPI               float64 // base screen resolution
	ZoomFactor        float64 // multiplier applied to DPI
	Rotation          Rotation
	RenderAnnotations bool
	RenderFormFields  bool
}

// DefaultRenderOptions returns the options a freshly opened document renders with
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		DPI:               150,
		ZoomFactor:        1.0,
		Rotation:          Rotate0,
		RenderAnnotations: true,
		RenderFormFields:  true,
	}
}

// EffectiveDPI returns dpi × zoomFactor
func (o RenderOptions) EffectiveDPI() float64 {
	return o.DPI * o.ZoomFactor
}

// Scale returns the factor converting document points into raster pixels
func (o RenderOptions) Scale() float64 {
	return o.ZoomFactor * o.DPI / PointsPerInch
}

// Equivalent reports whether two options produce the same raster.
// Annotation and form-field flags are not compared.
func (o RenderOptions) Equivalent(other RenderOptions) bool {
	return o.DPI == other.DPI &&
		RoundZoom(o.ZoomFactor) == RoundZoom(other.ZoomFactor) &&
		o.Rotation.Normalize() == other.Rotation.Normalize()
}

// RoundZoom rounds a zoom factor to two decimals
func RoundZoom(z float64) float64 {
	return math.Round(z*100) / 100
}

// Size is the unrotated size of a page in points plus its intrinsic rotation
type Size struct {
	Width    float64
	Height   float64
	Rotation Rotation // /Rotate entry of the page
}

// LetterSize is the fallback geometry
var LetterSize = Size{Width: LetterWidth, Height: LetterHeight}

// Oriented returns width and height after applying the page rotation and extra
func (s Size) Oriented(extra Rotation) (float64, float64) {
	if s.Rotation.Add(extra).Swaps() {
		return s.Height, s.Width
	}
	return s.Width, s.Height
}

// AspectRatio returns width / height as displayed with the page's own
// rotation. Degenerate sizes fall back to US Letter.
func (s Size) AspectRatio() float64 {
	if s.Height <= 0 || s.Width <= 0 {
		return LetterWidth / LetterHeight
	}
	w, h := s.Oriented(Rotate0)
	return w / h
}

func (s Size) String() string {
	return fmt.Sprintf("%.2fx%.2f", s.Width, s.Height)
}

// DocumentRect is a rectangle in document space: origin bottom-left, y up
type DocumentRect struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// Width returns the width of the rectangle
func (r DocumentRect) Width() float64 {
	return r.Right - r.Left
}

// Height returns the height of the rectangle (top is above bottom)
func (r DocumentRect) Height() float64 {
	return r.Top - r.Bottom
}

// Empty reports whether the rectangle has no area
func (r DocumentRect) Empty() bool {
	return r.Right <= r.Left || r.Top <= r.Bottom
}

// Union returns the smallest rectangle containing r and other
func (r DocumentRect) Union(other DocumentRect) DocumentRect {
	return DocumentRect{
		Left:   math.Min(r.Left, other.Left),
		Top:    math.Max(r.Top, other.Top),
		Right:  math.Max(r.Right, other.Right),
		Bottom: math.Min(r.Bottom, other.Bottom),
	}
}

// MatchOptions controls text matching in the text layer
type MatchOptions struct {
	MatchCase bool
	WholeWord bool
}
