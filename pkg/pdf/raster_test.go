package pdf

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

type fixedGeometry struct {
	size  Size
	count int
}

func (g fixedGeometry) PageCount() int { return g.count }

func (g fixedGeometry) PageSize(index int) (Size, error) {
	if err := CheckIndex(index, g.count); err != nil {
		return Size{}, err
	}
	return g.size, nil
}

type glyphSource struct {
	glyphs []Glyph
}

func (s glyphSource) NumPage() int { return 1 }
func (s glyphSource) Glyphs(int) ([]Glyph, error) { return s.glyphs, nil }
func (s glyphSource) MediaBox(int) (Size, bool) { return LetterSize, true }
func (s glyphSource) Close() error { return nil }

func decodeSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Failed to decode PNG: %v", err)
	}
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestDraftRasterizerSize(t *testing.T) {
	r := NewDraftRasterizer(
		fixedGeometry{size: LetterSize, count: 1},
		glyphSource{glyphs: glyphsFor("Dummy PDF file", 72, 720, 12)},
	)

	tests := []struct {
		name     string
		width    int
		height   int
		rotation Rotation
	}{
		{"Portrait", 153, 198, Rotate0},
		{"Rotated", 198, 153, Rotate90},
		{"Upside down", 153, 198, Rotate180},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := r.Rasterize(0, tt.width, tt.height, tt.rotation)
			if err != nil {
				t.Fatalf("Rasterize failed: %v", err)
			}
			w, h := decodeSize(t, data)
			if w != tt.width || h != tt.height {
				t.Errorf("Expected %dx%d, got %dx%d", tt.width, tt.height, w, h)
			}
		})
	}
}

func TestDraftRasterizerOutOfRange(t *testing.T) {
	r := NewDraftRasterizer(fixedGeometry{size: LetterSize, count: 1}, nil)
	if _, err := r.Rasterize(3, 10, 10, Rotate0); err == nil {
		t.Error("Expected error for page outside the document")
	}
}

func TestRotateImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 2))
	red := color.RGBA{R: 255, A: 255}
	src.Set(0, 0, red)

	tests := []struct {
		name     string
		rotation Rotation
		width    int
		height   int
		x, y     int
	}{
		// the top-left pixel moves to the corner the turn carries it to
		{"Quarter turn", Rotate90, 2, 4, 1, 0},
		{"Half turn", Rotate180, 4, 2, 3, 1},
		{"Three quarters", Rotate270, 2, 4, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rotated := rotateImage(src, tt.rotation)
			if b := rotated.Bounds(); b.Dx() != tt.width || b.Dy() != tt.height {
				t.Fatalf("Expected %dx%d, got %dx%d", tt.width, tt.height, b.Dx(), b.Dy())
			}
			if got := color.RGBAModel.Convert(rotated.At(tt.x, tt.y)); got != red {
				t.Errorf("Expected red at (%d,%d), got %v", tt.x, tt.y, got)
			}
		})
	}

	if rotateImage(src, Rotate0) != image.Image(src) {
		t.Error("Rotate0 must return the image unchanged")
	}
}

func TestRotateImageOffsetBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 20, 14, 22))
	red := color.RGBA{R: 255, A: 255}
	src.Set(10, 20, red)

	rotated := rotateImage(src, Rotate90)
	if got := color.RGBAModel.Convert(rotated.At(1, 0)); got != red {
		t.Errorf("Expected red at (1,0), got %v", got)
	}
}
