// Package source adapts images and generated patterns into the narrow
// pixel-source capability the canvas blits from.
package source

import (
	"image"

	"github.com/disintegration/imaging"

	"einkscreen/pkg/canvas"
)

type imageSource struct {
	img image.Image
	w   int
	h   int
}

// FromImage adapts any image through a 50% luminance threshold.
func FromImage(img image.Image) canvas.Source {
	b := img.Bounds()
	return &imageSource{img: img, w: b.Dx(), h: b.Dy()}
}

func (s *imageSource) Width() int  { return s.w }
func (s *imageSource) Height() int { return s.h }

func (s *imageSource) BitAt(x, y int) canvas.Bit {
	b := s.img.Bounds()
	return canvas.ToBit(s.img.At(b.Min.X+x, b.Min.Y+y))
}

// Fitted scales the image down to fit within w by h, preserving aspect
// ratio.
func Fitted(img image.Image, w, h int) canvas.Source {
	return FromImage(imaging.Fit(img, w, h, imaging.Lanczos))
}

// Filled scales and center-crops the image to exactly w by h.
func Filled(img image.Image, w, h int) canvas.Source {
	return FromImage(imaging.Fill(img, w, h, imaging.Center, imaging.Lanczos))
}

type solid struct {
	w, h int
	b    canvas.Bit
}

// Solid is a single-color source.
func Solid(w, h int, b canvas.Bit) canvas.Source {
	return &solid{w: w, h: h, b: b}
}

func (s *solid) Width() int              { return s.w }
func (s *solid) Height() int             { return s.h }
func (s *solid) BitAt(x, y int) canvas.Bit { return s.b }

// PatternKind selects one of the built-in test patterns.
type PatternKind string

const (
	Checkerboard PatternKind = "checkerboard"
	Stripes      PatternKind = "stripes"
	Grid         PatternKind = "grid"
)

type pattern struct {
	kind PatternKind
	w    int
	h    int
	size int
}

// Pattern generates a test pattern lazily; size is the element size in
// pixels.
func Pattern(kind PatternKind, w, h, size int) canvas.Source {
	if size < 1 {
		size = 1
	}
	return &pattern{kind: kind, w: w, h: h, size: size}
}

func (p *pattern) Width() int  { return p.w }
func (p *pattern) Height() int { return p.h }

func (p *pattern) BitAt(x, y int) canvas.Bit {
	switch p.kind {
	case Checkerboard:
		if (x/p.size+y/p.size)%2 == 0 {
			return canvas.Black
		}
	case Stripes:
		if x%(2*p.size) < p.size {
			return canvas.Black
		}
	case Grid:
		if x%p.size == 0 || y%p.size == 0 {
			return canvas.Black
		}
	}
	return canvas.White
}
