package canvas

import "image/color"

// Bit is a single monochrome pixel. The zero value is Black, matching the
// panel convention of 0=black, 1=white.
type Bit bool

const (
	Black Bit = false
	White Bit = true
)

// RGBA implements the color.Color interface.
func (b Bit) RGBA() (r, g, bl, a uint32) {
	if b {
		return 0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF
	}
	return 0, 0, 0, 0xFFFF
}

func (b Bit) String() string {
	if b {
		return "white"
	}
	return "black"
}

// BitModel converts any color to a Bit using a 50% luminance threshold.
var BitModel = color.ModelFunc(toBit)

func toBit(c color.Color) color.Color {
	if b, ok := c.(Bit); ok {
		return b
	}
	return Bit(color.GrayModel.Convert(c).(color.Gray).Y >= 0x80)
}

// ToBit is a convenience wrapper around BitModel for callers that want the
// concrete type back.
func ToBit(c color.Color) Bit {
	return toBit(c).(Bit)
}
