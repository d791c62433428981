// Package anim plays frame sequences through fast partial refreshes,
// with the ghost-clearing and mandatory terminal full refresh the panel
// needs to stay artifact-free.
package anim

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"einkscreen/pkg/canvas"
	"einkscreen/pkg/panel"
)

// Frame pairs a pixel source with how long it stays on screen.
type Frame struct {
	Src      canvas.Source
	Duration time.Duration
}

type Option func(*Player)

// WithLoops bounds the number of passes through the sequence.
// 0 means loop until the context is cancelled.
func WithLoops(n int) Option {
	return func(p *Player) { p.loops = n }
}

// WithFullUpdates refreshes every frame with a full update instead of
// partial ones. Slower, but immune to ghosting.
func WithFullUpdates(on bool) Option {
	return func(p *Player) { p.full = on }
}

func WithLogger(logger *zap.Logger) Option {
	return func(p *Player) { p.logger = logger }
}

// Player drives one animation against a fixed partial-update region.
type Player struct {
	session *panel.Session
	frames  []Frame
	logger  *zap.Logger
	loops   int
	full    bool
}

func NewPlayer(s *panel.Session, frames []Frame, opts ...Option) (*Player, error) {
	if len(frames) == 0 {
		return nil, errors.New("no frames to play")
	}
	p := &Player{
		session: s,
		frames:  frames,
		logger:  zap.NewNop(),
		loops:   1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Play runs the animation. Whatever the outcome, including cancellation,
// it leaves the panel in Full mode showing an all-white frame. The
// terminal cleanup is not skippable; its errors are joined onto the
// play error rather than replacing it.
func (p *Player) Play(ctx context.Context) (err error) {
	defer func() {
		err = multierr.Append(err, p.cleanup())
	}()

	s := p.session
	cv := s.Canvas()

	// One clean slate before the partial region starts flickering.
	if terr := s.Transition(panel.Full); terr != nil {
		return terr
	}
	if cerr := s.Clear(canvas.White); cerr != nil {
		return cerr
	}

	area, err := p.stage()
	if err != nil {
		return err
	}

	loop := 0
	for {
		for i, f := range p.frames {
			if len(p.frames) > 1 {
				// Ghost-clear before the frame lands.
				cv.FillArea(area, canvas.White)
			}
			view, fx, fy := frameView(area, f.Src)
			cv.Blit(view, fx, fy)

			if ferr := s.Flush(); ferr != nil {
				return ferr
			}
			if uerr := s.Update(); uerr != nil {
				return uerr
			}

			p.logger.With(
				zap.Int("frame", i+1),
				zap.Int("loop", loop+1),
			).Debug("frame shown")

			if werr := wait(ctx, f.Duration); werr != nil {
				return werr
			}
		}

		loop++
		if p.loops > 0 && loop >= p.loops {
			return nil
		}
	}
}

// stage picks the update region and, for partial playback, programs it
// once for the whole run: the byte-aligned union of all frames, centered
// on the canvas.
func (p *Player) stage() (canvas.Area, error) {
	s := p.session
	cv := s.Canvas()

	maxW, maxH := 0, 0
	for _, f := range p.frames {
		if w := f.Src.Width(); w > maxW {
			maxW = w
		}
		if h := f.Src.Height(); h > maxH {
			maxH = h
		}
	}
	if maxW > cv.Width() {
		maxW = cv.Width()
	}
	if maxH > cv.Height() {
		maxH = cv.Height()
	}

	x := (cv.Width() - maxW) / 2
	y := (cv.Height() - maxH) / 2

	if p.full {
		area, _, err := canvas.ValidArea(x, y, maxW, maxH, cv.Width(), cv.Height())
		return area, err
	}

	if err := s.Transition(panel.Partial); err != nil {
		return canvas.Area{}, err
	}
	return s.SetPartialArea(x, y, maxW, maxH)
}

// frameView centers a frame inside the union area and bounds it to the
// area, so the blit never writes pixels the partial refresh would leave
// behind in the framebuffer.
func frameView(a canvas.Area, src canvas.Source) (canvas.Source, int, int) {
	x := int(a.X) + (int(a.Width)-src.Width())/2
	y := int(a.Y) + (int(a.Height)-src.Height())/2
	if x < int(a.X) {
		x = int(a.X)
	}
	if y < int(a.Y) {
		y = int(a.Y)
	}

	w := src.Width()
	if limit := int(a.X) + int(a.Width) - x; w > limit {
		w = limit
	}
	h := src.Height()
	if limit := int(a.Y) + int(a.Height) - y; h > limit {
		h = limit
	}
	return boundedSource{src: src, w: w, h: h}, x, y
}

// boundedSource narrows a source's reported size without re-mapping its
// pixel coordinates.
type boundedSource struct {
	src  canvas.Source
	w, h int
}

func (b boundedSource) Width() int                { return b.w }
func (b boundedSource) Height() int               { return b.h }
func (b boundedSource) BitAt(x, y int) canvas.Bit { return b.src.BitAt(x, y) }

func (p *Player) cleanup() error {
	s := p.session

	var errs error
	if err := s.Transition(panel.Full); err != nil {
		errs = multierr.Append(errs, err)
	}
	if err := s.Clear(canvas.White); err != nil {
		errs = multierr.Append(errs, err)
	}
	if errs != nil {
		p.logger.With(zap.Error(errs)).Warn("terminal full refresh failed")
	}
	return errs
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
