package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// encodePNG encodes img, resampling it to exactly width×height first
func encodePNG(img image.Image, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid raster size %dx%d", width, height)
	}

	b := img.Bounds()
	if b.Dx() != width || b.Dy() != height {
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
		img = dst
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// rotateImage turns img clockwise by a multiple of 90 degrees
func rotateImage(img image.Image, rotation Rotation) image.Image {
	rotation = rotation.Normalize()
	if rotation == Rotate0 {
		return img
	}

	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	minX, minY := float64(b.Min.X), float64(b.Min.Y)

	// s2d maps source coordinates onto the destination grid
	var s2d f64.Aff3
	var dst *image.RGBA
	switch rotation {
	case Rotate90:
		s2d = f64.Aff3{0, -1, h + minY, 1, 0, -minX}
		dst = image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
	case Rotate180:
		s2d = f64.Aff3{-1, 0, w + minX, 0, -1, h + minY}
		dst = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	case Rotate270:
		s2d = f64.Aff3{0, 1, -minY, -1, 0, w + minX}
		dst = image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
	}

	draw.NearestNeighbor.Transform(dst, s2d, img, b, draw.Src, nil)
	return dst
}

// unrotated returns the pixel size to render before applying rotation
func unrotated(pixelWidth, pixelHeight int, rotation Rotation) (int, int) {
	if rotation.Swaps() {
		return pixelHeight, pixelWidth
	}
	return pixelWidth, pixelHeight
}
