// Package canvas holds the in-memory 1-bit-per-pixel framebuffer image.
//
// The byte layout is exactly what the display driver expects in its
// memory-mapped region: row-major, ceil(width/8) bytes per row, MSB-first
// inside each byte (bit 7 is the leftmost pixel of the byte's 8-pixel
// span), 0=black and 1=white.
package canvas

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
)

// Source is the capability any pixel producer (image, text renderer,
// pattern generator) must offer to be blitted onto a canvas.
type Source interface {
	Width() int
	Height() int
	BitAt(x, y int) Bit
}

// MergeOp selects how Merge combines packed source bytes with the
// destination.
type MergeOp int

const (
	// MergeCopy replaces destination bytes with source bytes.
	MergeCopy MergeOp = iota
	// MergeAnd darkens: a black bit in either side stays black.
	MergeAnd
	// MergeOr lightens: a white bit in either side stays white.
	MergeOr
)

// Canvas is a packed monochrome pixel buffer.
type Canvas struct {
	width  int
	height int
	stride int
	buf    []byte
}

// New allocates a canvas of the given dimensions, filled white like a
// blank panel.
func New(width, height int) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid canvas size %dx%d", width, height)
	}
	stride := (width + 7) / 8
	c := &Canvas{
		width:  width,
		height: height,
		stride: stride,
		buf:    make([]byte, stride*height),
	}
	c.Fill(White)
	return c, nil
}

func (c *Canvas) Width() int  { return c.width }
func (c *Canvas) Height() int { return c.height }

// Stride is the number of bytes per row.
func (c *Canvas) Stride() int { return c.stride }

// Bytes exposes the backing buffer in device wire format. The slice
// aliases the canvas; callers must not hold it across further draws.
func (c *Canvas) Bytes() []byte { return c.buf }

// Clone returns an independent copy.
func (c *Canvas) Clone() *Canvas {
	dup := &Canvas{width: c.width, height: c.height, stride: c.stride}
	dup.buf = make([]byte, len(c.buf))
	copy(dup.buf, c.buf)
	return dup
}

// SetPixel sets one pixel, silently ignoring out-of-bounds coordinates.
func (c *Canvas) SetPixel(x, y int, b Bit) {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return
	}
	idx := y*c.stride + x/8
	mask := byte(1) << (7 - x%8)
	if b {
		c.buf[idx] |= mask
	} else {
		c.buf[idx] &^= mask
	}
}

// Pixel returns the pixel value and whether the coordinates were in
// bounds.
func (c *Canvas) Pixel(x, y int) (Bit, bool) {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return Black, false
	}
	idx := y*c.stride + x/8
	mask := byte(1) << (7 - x%8)
	return c.buf[idx]&mask != 0, true
}

// Fill paints the whole buffer with one color as a bulk byte fill.
func (c *Canvas) Fill(b Bit) {
	fill := byte(0x00)
	if b {
		fill = 0xFF
	}
	for i := range c.buf {
		c.buf[i] = fill
	}
}

// FillArea paints a rectangle. Byte-aligned areas are filled a row of
// bytes at a time; ragged edges fall back to per-pixel writes.
func (c *Canvas) FillArea(a Area, b Bit) {
	x, y := int(a.X), int(a.Y)
	w, h := int(a.Width), int(a.Height)
	if x%8 == 0 && w%8 == 0 {
		fill := byte(0x00)
		if b {
			fill = 0xFF
		}
		for row := y; row < y+h && row < c.height; row++ {
			start := row*c.stride + x/8
			end := start + w/8
			if max := (row + 1) * c.stride; end > max {
				end = max
			}
			for i := start; i < end; i++ {
				c.buf[i] = fill
			}
		}
		return
	}
	for py := y; py < y+h; py++ {
		for px := x; px < x+w; px++ {
			c.SetPixel(px, py, b)
		}
	}
}

// Blit copies a pixel source onto the canvas at the given offset,
// clipping silently at every edge. Oversized or malformed sources never
// write outside the canvas.
func (c *Canvas) Blit(src Source, destX, destY int) {
	w := src.Width()
	h := src.Height()
	if w > c.width-destX {
		w = c.width - destX
	}
	if h > c.height-destY {
		h = c.height - destY
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c.SetPixel(destX+x, destY+y, src.BitAt(x, y))
		}
	}
}

// Merge combines another canvas onto this one at a byte-aligned offset,
// operating on whole packed bytes per row instead of individual pixels.
// destX must be a multiple of 8; like Blit, the merge clips silently at
// every edge and never touches bytes of a neighboring row.
func (c *Canvas) Merge(src *Canvas, destX, destY int, op MergeOp) error {
	if destX%8 != 0 {
		return errors.Errorf("merge offset x=%d is not byte-aligned", destX)
	}
	bx := destX / 8
	for y := 0; y < src.height; y++ {
		dy := destY + y
		if dy < 0 || dy >= c.height {
			continue
		}
		srcRow := src.buf[y*src.stride : (y+1)*src.stride]
		for i, sb := range srcRow {
			col := bx + i
			if col < 0 {
				continue
			}
			if col >= c.stride {
				break
			}
			di := dy*c.stride + col
			switch op {
			case MergeAnd:
				c.buf[di] &= sb
			case MergeOr:
				c.buf[di] |= sb
			default:
				c.buf[di] = sb
			}
		}
	}
	return nil
}

// MergeArea combines the given area of a same-geometry canvas onto this
// one in place. Used to restore a committed base layer under an overlay
// region without touching the rest of the buffer.
func (c *Canvas) MergeArea(src *Canvas, a Area, op MergeOp) error {
	if src.width != c.width || src.height != c.height {
		return errors.Errorf("geometry mismatch: %dx%d vs %dx%d", src.width, src.height, c.width, c.height)
	}
	x, w := int(a.X), int(a.Width)
	first := x / 8
	last := (x + w + 7) / 8
	if last > c.stride {
		last = c.stride
	}
	for y := int(a.Y); y < int(a.Y)+int(a.Height) && y < c.height; y++ {
		for i := y*c.stride + first; i < y*c.stride+last; i++ {
			switch op {
			case MergeAnd:
				c.buf[i] &= src.buf[i]
			case MergeOr:
				c.buf[i] |= src.buf[i]
			default:
				c.buf[i] = src.buf[i]
			}
		}
	}
	return nil
}

// image.Image / draw.Image implementation, so stdlib draw and the imaging
// toolchain can target the canvas directly.

func (c *Canvas) ColorModel() color.Model { return BitModel }

func (c *Canvas) Bounds() image.Rectangle { return image.Rect(0, 0, c.width, c.height) }

func (c *Canvas) At(x, y int) color.Color {
	b, _ := c.Pixel(x, y)
	return b
}

func (c *Canvas) Set(x, y int, col color.Color) {
	c.SetPixel(x, y, ToBit(col))
}
