package canvas

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrInvalidGeometry is returned when no byte-aligned rectangle of at
// least 8x1 pixels fits the canvas.
var ErrInvalidGeometry = errors.New("no byte-aligned update area fits the canvas")

// Area is a partial-update rectangle in panel coordinates, matching the
// u16 quadruple the driver consumes. A validated area always has X and
// Width as multiples of 8 and lies fully inside the canvas.
type Area struct {
	X      uint16
	Y      uint16
	Width  uint16
	Height uint16
}

func (a Area) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", a.Width, a.Height, a.X, a.Y)
}

// ValidArea aligns and clamps a requested partial-update rectangle to the
// controller's byte-oriented memory constraints: X is aligned down and
// Width up to multiples of 8, then both axes are clamped into the canvas.
// The returned bool reports whether alignment changed the request, so the
// caller can warn; clamping is corrected silently. The function is pure
// and never touches the device.
func ValidArea(x, y, width, height, canvasW, canvasH int) (Area, bool, error) {
	if canvasW < 8 || canvasH < 1 {
		return Area{}, false, errors.Wrapf(ErrInvalidGeometry, "canvas %dx%d", canvasW, canvasH)
	}

	realigned := false
	if x < 0 {
		x = 0
	}
	if x%8 != 0 {
		x = x / 8 * 8
		realigned = true
	}
	if width%8 != 0 {
		width = (width + 7) / 8 * 8
		realigned = true
	}

	if x > canvasW-8 {
		x = (canvasW - 8) / 8 * 8
	}
	if width < 8 {
		width = 8
	}
	if width > canvasW-x {
		width = (canvasW - x) / 8 * 8
	}

	if y < 0 {
		y = 0
	}
	if y > canvasH-1 {
		y = canvasH - 1
	}
	if height < 1 {
		height = 1
	}
	if height > canvasH-y {
		height = canvasH - y
	}

	return Area{
		X:      uint16(x),
		Y:      uint16(y),
		Width:  uint16(width),
		Height: uint16(height),
	}, realigned, nil
}
