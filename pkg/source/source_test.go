package source

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"

	"einkscreen/pkg/canvas"
)

func TestFromImageThreshold(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 1))
	img.SetGray(0, 0, color.Gray{Y: 0x00})
	img.SetGray(1, 0, color.Gray{Y: 0x7F})
	img.SetGray(2, 0, color.Gray{Y: 0x80})
	img.SetGray(3, 0, color.Gray{Y: 0xFF})

	src := FromImage(img)
	assert.Equal(t, 4, src.Width())
	assert.Equal(t, 1, src.Height())
	assert.Equal(t, canvas.Black, src.BitAt(0, 0))
	assert.Equal(t, canvas.Black, src.BitAt(1, 0))
	assert.Equal(t, canvas.White, src.BitAt(2, 0))
	assert.Equal(t, canvas.White, src.BitAt(3, 0))
}

func TestFromImageOffsetBounds(t *testing.T) {
	img := image.NewGray(image.Rect(10, 10, 12, 12))
	img.SetGray(10, 10, color.Gray{Y: 0xFF})

	src := FromImage(img)
	assert.Equal(t, 2, src.Width())
	assert.Equal(t, canvas.White, src.BitAt(0, 0))
	assert.Equal(t, canvas.Black, src.BitAt(1, 1))
}

func TestFitted(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 200, 100))
	src := Fitted(img, 100, 100)
	assert.Equal(t, 100, src.Width())
	assert.Equal(t, 50, src.Height())
}

func TestFilled(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 200, 100))
	src := Filled(img, 64, 64)
	assert.Equal(t, 64, src.Width())
	assert.Equal(t, 64, src.Height())
}

func TestSolid(t *testing.T) {
	src := Solid(3, 2, canvas.White)
	assert.Equal(t, 3, src.Width())
	assert.Equal(t, 2, src.Height())
	assert.Equal(t, canvas.White, src.BitAt(2, 1))
}

func TestPatterns(t *testing.T) {
	cb := Pattern(Checkerboard, 16, 16, 4)
	assert.Equal(t, canvas.Black, cb.BitAt(0, 0))
	assert.Equal(t, canvas.White, cb.BitAt(4, 0))
	assert.Equal(t, canvas.White, cb.BitAt(0, 4))
	assert.Equal(t, canvas.Black, cb.BitAt(4, 4))

	st := Pattern(Stripes, 16, 16, 2)
	assert.Equal(t, canvas.Black, st.BitAt(0, 0))
	assert.Equal(t, canvas.Black, st.BitAt(1, 5))
	assert.Equal(t, canvas.White, st.BitAt(2, 0))
	assert.Equal(t, canvas.White, st.BitAt(3, 9))

	gr := Pattern(Grid, 16, 16, 4)
	assert.Equal(t, canvas.Black, gr.BitAt(0, 3))
	assert.Equal(t, canvas.Black, gr.BitAt(3, 8))
	assert.Equal(t, canvas.White, gr.BitAt(3, 3))

	// degenerate size is clamped
	tiny := Pattern(Grid, 4, 4, 0)
	assert.Equal(t, canvas.Black, tiny.BitAt(3, 3))
}
