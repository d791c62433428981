package dashboard

import (
	"einkscreen/pkg/canvas"
)

// BlockRenderer renders a report as labeled-free bar gauges, one row per
// value. It exists so the dashboard works without any font stack; real
// deployments plug a text renderer in through the Renderer interface.
type BlockRenderer struct{}

// gauge value ranges
const (
	tempMin, tempMax = -10.0, 40.0
	windMax          = 60.0
)

func (BlockRenderer) Render(r *Report, width, height int) (*canvas.Canvas, error) {
	cv, err := canvas.New(width, height)
	if err != nil {
		return nil, err
	}
	cv.Fill(canvas.White)

	rows := 3
	rowH := height / rows
	barH := rowH / 2
	if barH < 2 {
		barH = 2
	}

	drawBar(cv, 0*rowH+(rowH-barH)/2, barH, norm(r.TempC, tempMin, tempMax))
	drawBar(cv, 1*rowH+(rowH-barH)/2, barH, norm(float64(r.Humidity), 0, 100))
	drawBar(cv, 2*rowH+(rowH-barH)/2, barH, norm(r.WindKmh, 0, windMax))

	return cv, nil
}

func norm(v, min, max float64) float64 {
	if v < min {
		v = min
	}
	if v > max {
		v = max
	}
	return (v - min) / (max - min)
}

// drawBar paints an outlined gauge across the full width with a filled
// portion proportional to v in [0,1].
func drawBar(cv *canvas.Canvas, y, h int, v float64) {
	w := cv.Width() - 8
	x := 4

	// outline
	for px := x; px < x+w; px++ {
		cv.SetPixel(px, y, canvas.Black)
		cv.SetPixel(px, y+h-1, canvas.Black)
	}
	for py := y; py < y+h; py++ {
		cv.SetPixel(x, py, canvas.Black)
		cv.SetPixel(x+w-1, py, canvas.Black)
	}

	fill := int(float64(w-2) * v)
	for py := y + 1; py < y+h-1; py++ {
		for px := x + 1; px < x+1+fill; px++ {
			cv.SetPixel(px, py, canvas.Black)
		}
	}
}
