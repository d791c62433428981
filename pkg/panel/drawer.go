package panel

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"periph.io/x/conn/v3/display"

	"einkscreen/pkg/canvas"
)

// The session doubles as a periph display.Drawer so periph-based code
// can target the panel directly.
var _ display.Drawer = (*Session)(nil)

func (s *Session) String() string {
	return fmt.Sprintf("einkfb(%dx%d, %s)", s.canvas.Width(), s.canvas.Height(), s.mode)
}

// Halt puts the panel into deep sleep.
func (s *Session) Halt() error {
	if s.mode == Sleeping {
		return nil
	}
	return s.Sleep()
}

func (s *Session) ColorModel() color.Model { return canvas.BitModel }

func (s *Session) Bounds() image.Rectangle { return s.canvas.Bounds() }

// Draw composites src onto the canvas and refreshes in the current mode.
func (s *Session) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	if err := s.guard(); err != nil {
		return err
	}
	draw.Draw(s.canvas, r.Intersect(s.canvas.Bounds()), src, sp, draw.Src)
	if err := s.Flush(); err != nil {
		return err
	}
	return s.Update()
}
