// Package dashboard keeps a static layout committed as the panel's base
// map and refreshes a data overlay region with fast partial updates.
package dashboard

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"einkscreen/pkg/canvas"
	"einkscreen/pkg/panel"
)

// Report is one display-ready set of dashboard values.
type Report struct {
	TempC     float64
	Humidity  int
	WindKmh   float64
	Condition string
	FetchedAt time.Time
}

// Provider yields reports for the overlay.
type Provider interface {
	Fetch(ctx context.Context) (*Report, error)
}

// Renderer turns a report into overlay pixels. Text shaping lives
// behind this boundary; the built-in BlockRenderer only draws gauges.
type Renderer interface {
	Render(r *Report, width, height int) (*canvas.Canvas, error)
}

type Option func(*Dashboard)

// WithOverlay overrides the overlay region (validated and aligned on
// Start).
func WithOverlay(x, y, width, height int) Option {
	return func(d *Dashboard) {
		d.wantOverlay = &[4]int{x, y, width, height}
	}
}

// Dashboard owns the base layer and the overlay refresh cycle. The base
// canvas is kept so the overlay region can be restored under each new
// report without redrawing the whole layout.
type Dashboard struct {
	session  *panel.Session
	provider Provider
	renderer Renderer
	logger   *zap.Logger

	base        *canvas.Canvas
	overlay     canvas.Area
	wantOverlay *[4]int
	started     bool
}

func New(s *panel.Session, provider Provider, renderer Renderer, logger *zap.Logger, opts ...Option) *Dashboard {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dashboard{
		session:  s,
		provider: provider,
		renderer: renderer,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start paints the static layout, shows it with a full refresh, commits
// it as the base map, and arms the partial-update region for Refresh.
func (d *Dashboard) Start(ctx context.Context) error {
	s := d.session
	cv := s.Canvas()

	d.base = s.Canvas().Clone()
	drawLayout(d.base)
	if err := cv.MergeArea(d.base, fullArea(cv), canvas.MergeCopy); err != nil {
		return err
	}

	if err := s.Transition(panel.Full); err != nil {
		return err
	}
	if err := s.Flush(); err != nil {
		return err
	}
	if err := s.Update(); err != nil {
		return err
	}

	// Latch the layout into the secondary RAM plane.
	if err := s.Transition(panel.BaseMap); err != nil {
		return err
	}

	if err := s.Transition(panel.Partial); err != nil {
		return err
	}

	x, y, w, h := d.overlayRequest(cv)
	area, err := s.SetPartialArea(x, y, w, h)
	if err != nil {
		return err
	}
	d.overlay = area
	d.started = true

	d.logger.With(zap.String("overlay", area.String())).Info("dashboard started")
	return d.Refresh(ctx)
}

// Refresh fetches a report, composites it over the base layer inside the
// overlay region, and triggers one partial update. Compositing works on
// the packed rows, not per pixel.
func (d *Dashboard) Refresh(ctx context.Context) error {
	if !d.started {
		return errors.New("dashboard not started")
	}
	s := d.session
	cv := s.Canvas()

	rep, err := d.provider.Fetch(ctx)
	if err != nil {
		return errors.Wrap(err, "fetch report")
	}

	ov, err := d.renderer.Render(rep, int(d.overlay.Width), int(d.overlay.Height))
	if err != nil {
		return errors.Wrap(err, "render overlay")
	}

	// Restore the base under the overlay, then darken the rendered
	// report onto it.
	if err := cv.MergeArea(d.base, d.overlay, canvas.MergeCopy); err != nil {
		return err
	}
	if err := cv.Merge(ov, int(d.overlay.X), int(d.overlay.Y), canvas.MergeAnd); err != nil {
		return err
	}

	if err := s.Flush(); err != nil {
		return err
	}
	if err := s.Update(); err != nil {
		return err
	}

	d.logger.With(
		zap.Float64("temp_c", rep.TempC),
		zap.Int("humidity", rep.Humidity),
		zap.String("condition", rep.Condition),
	).Info("dashboard refreshed")
	return nil
}

func (d *Dashboard) overlayRequest(cv *canvas.Canvas) (int, int, int, int) {
	if d.wantOverlay != nil {
		o := *d.wantOverlay
		return o[0], o[1], o[2], o[3]
	}
	// Everything under the title band and its divider.
	top := bandHeight + 8
	return 0, top, cv.Width(), cv.Height() - top
}

func fullArea(cv *canvas.Canvas) canvas.Area {
	a, _, _ := canvas.ValidArea(0, 0, cv.Width(), cv.Height(), cv.Width(), cv.Height())
	return a
}

const bandHeight = 26

// drawLayout paints the static dashboard chrome: an inverted title band
// and section dividers.
func drawLayout(cv *canvas.Canvas) {
	cv.Fill(canvas.White)

	cv.FillArea(canvas.Area{X: 0, Y: 0, Width: uint16(cv.Width()), Height: bandHeight}, canvas.Black)

	for _, frac := range []int{3, 2} {
		y := bandHeight + (cv.Height()-bandHeight)/frac
		cv.FillArea(canvas.Area{X: 0, Y: uint16(y), Width: uint16(cv.Width()), Height: 1}, canvas.Black)
	}
}
