// Package panel owns one display session: the device channel, the packed
// canvas, and the update-mode state machine that sequences hardware
// commands between them.
package panel

import (
	stderrors "errors"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"einkscreen/pkg/canvas"
	"einkscreen/pkg/proto"
)

// Session is the exclusive owner of an open channel. It is
// single-threaded by design: every command blocks for the physical
// refresh it triggers.
//
// The mode model is optimistic. The hardware cannot be interrogated
// mid-session on the common path, so the session assumes the controller
// holds the last mode it acknowledged; a failed command therefore never
// advances the model.
type Session struct {
	ch     proto.Channel
	canvas *canvas.Canvas
	logger *zap.Logger
	mode   UpdateMode
	closed bool
}

// Open builds a session around a channel. The panel starts in Full mode,
// the state the controller is in after probe or reset.
func Open(ch proto.Channel, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	w, h := ch.Geometry()
	c, err := canvas.New(w, h)
	if err != nil {
		return nil, errors.Wrap(err, "session canvas")
	}
	return &Session{ch: ch, canvas: c, logger: logger, mode: Full}, nil
}

// Canvas returns the session's draw target.
func (s *Session) Canvas() *canvas.Canvas { return s.canvas }

// Mode returns the modeled controller mode.
func (s *Session) Mode() UpdateMode { return s.mode }

func (s *Session) guard() error {
	if s.closed {
		return proto.ErrChannelClosed
	}
	if s.mode == Sleeping {
		return errors.Errorf("panel is sleeping; transition to %s before issuing commands", Full)
	}
	return nil
}

// Transition requests a mode change. On any command failure the modeled
// mode is left untouched. Entering BaseMap additionally commits the
// current framebuffer as the base layer; if the driver rejects that
// command the session degrades gracefully and continues without it.
func (s *Session) Transition(next UpdateMode) error {
	if s.closed {
		return proto.ErrChannelClosed
	}
	if !s.mode.canEnter(next) {
		return errors.Errorf("cannot enter %s while %s; wake to %s first", next, s.mode, Full)
	}

	if next == Sleeping {
		if err := s.ch.DeepSleep(); err != nil {
			return err
		}
		s.mode = Sleeping
		s.logger.Debug("deep sleep entered")
		return nil
	}

	hw, _ := next.hw()
	if err := s.ch.SetMode(hw); err != nil {
		return err
	}

	if next == BaseMap {
		if err := s.ch.CommitBaseMap(); err != nil {
			if stderrors.Is(err, proto.ErrCommandRejected) {
				s.logger.With(zap.Error(err)).Warn("base map commit rejected, continuing without it")
			} else {
				return err
			}
		}
	}

	prev := s.mode
	s.mode = next
	s.logger.With(
		zap.String("from", prev.String()),
		zap.String("to", next.String()),
	).Debug("mode transition")
	return nil
}

// Sleep puts the panel into its low-power state. Only Wake is legal
// afterward.
func (s *Session) Sleep() error { return s.Transition(Sleeping) }

// Wake reopens Full mode after deep sleep.
func (s *Session) Wake() error { return s.Transition(Full) }

// Reset forces a hardware reset. The controller comes back in Full
// mode. Unlike other commands it is deliberately not gated on Sleeping:
// a panel stuck in deep sleep has no other way back.
func (s *Session) Reset() error {
	if s.closed {
		return proto.ErrChannelClosed
	}
	if err := s.ch.Reset(); err != nil {
		return err
	}
	s.mode = Full
	return nil
}

// Flush writes the canvas into the device framebuffer.
func (s *Session) Flush() error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.ch.WriteFrame(s.canvas.Bytes())
}

// Update triggers a refresh of whatever the framebuffer holds, in the
// current mode.
func (s *Session) Update() error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.ch.TriggerUpdate()
}

// SetPartialArea validates, aligns and programs the partial-update
// rectangle. Alignment corrections are applied and reported as a
// warning; clamping is silent.
func (s *Session) SetPartialArea(x, y, width, height int) (canvas.Area, error) {
	if err := s.guard(); err != nil {
		return canvas.Area{}, err
	}
	area, realigned, err := canvas.ValidArea(x, y, width, height, s.canvas.Width(), s.canvas.Height())
	if err != nil {
		return canvas.Area{}, err
	}
	if realigned {
		s.logger.With(
			zap.Int("x", x),
			zap.Int("width", width),
			zap.String("aligned", area.String()),
		).Warn("partial area realigned to byte boundaries")
	}
	if err := s.ch.SetPartialArea(area); err != nil {
		return canvas.Area{}, err
	}
	return area, nil
}

// UpdatePartial is the convenience path for one partial refresh: enter
// Partial mode if needed, program the area, flush and trigger.
func (s *Session) UpdatePartial(x, y, width, height int) (canvas.Area, error) {
	if s.mode != Partial {
		if err := s.Transition(Partial); err != nil {
			return canvas.Area{}, err
		}
	}
	area, err := s.SetPartialArea(x, y, width, height)
	if err != nil {
		return canvas.Area{}, err
	}
	if err := s.Flush(); err != nil {
		return area, err
	}
	return area, s.Update()
}

// Clear fills the canvas with one color and refreshes.
func (s *Session) Clear(b canvas.Bit) error {
	if err := s.guard(); err != nil {
		return err
	}
	s.canvas.Fill(b)
	if err := s.Flush(); err != nil {
		return err
	}
	return s.Update()
}

// ClearRAM whitens both controller RAM planes through the dedicated
// hardware command.
func (s *Session) ClearRAM() error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.ch.Clear()
}

// Close tears the session down. Cleanup is mandatory and runs every
// step even when earlier ones fail, collecting their errors.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}

	var errs error
	if s.mode != Sleeping {
		if err := s.ch.Clear(); err != nil {
			s.logger.With(zap.Error(err)).Warn("clear on close failed")
			errs = multierr.Append(errs, err)
		}
	}
	if err := s.ch.Close(); err != nil {
		errs = multierr.Append(errs, err)
	}
	s.closed = true
	return errs
}
