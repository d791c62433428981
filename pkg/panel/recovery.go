package panel

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"einkscreen/pkg/canvas"
)

// Recovery flushes both controller RAM planes through alternating
// full-refresh and base-map passes. Black first to exercise every
// pixel, then white, then one defensive white pass so both planes
// converge ghost-free.
//
// The sequence is not resumable: any failure means starting over from
// the hardware reset.

// RecoverySteps is the number of steps Recover reports through its step
// callback.
const RecoverySteps = 7

// defaultSettle is the nominal panel settle time after a refresh.
const defaultSettle = 2 * time.Second

type recoveryOptions struct {
	settle time.Duration
	onStep func(step int, name string)
}

type RecoveryOption func(*recoveryOptions)

// WithSettle overrides the per-step panel settle delay.
func WithSettle(d time.Duration) RecoveryOption {
	return func(o *recoveryOptions) { o.settle = d }
}

// WithStepFunc registers a callback invoked before each step runs,
// with steps numbered from 1.
func WithStepFunc(fn func(step int, name string)) RecoveryOption {
	return func(o *recoveryOptions) { o.onStep = fn }
}

// StepError identifies the recovery step that failed.
type StepError struct {
	Step int
	Name string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("recovery step %d (%s) failed: %v", e.Step, e.Name, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Recover runs the scripted recovery procedure for a stuck or ghosted
// panel. It either completes fully or reports exactly which step failed;
// a failed run leaves the modeled mode wherever the last successful
// command put it, which for a failure after the reset is Full.
func (s *Session) Recover(ctx context.Context, opts ...RecoveryOption) error {
	o := &recoveryOptions{settle: defaultSettle}
	for _, opt := range opts {
		opt(o)
	}

	steps := []struct {
		name string
		run  func() error
	}{
		{"hardware reset", func() error {
			if err := s.Reset(); err != nil {
				return err
			}
			return wait(ctx, o.settle)
		}},
		{"full black", func() error { return s.recoveryPass(ctx, o, Full, canvas.Black) }},
		{"base map black", func() error { return s.recoveryPass(ctx, o, BaseMap, canvas.Black) }},
		{"full white", func() error { return s.recoveryPass(ctx, o, Full, canvas.White) }},
		{"base map white", func() error { return s.recoveryPass(ctx, o, BaseMap, canvas.White) }},
		{"defensive white pass", func() error {
			if err := s.recoveryPass(ctx, o, Full, canvas.White); err != nil {
				return err
			}
			return s.recoveryPass(ctx, o, BaseMap, canvas.White)
		}},
		{"return to full", func() error { return s.Transition(Full) }},
	}

	for i, st := range steps {
		if o.onStep != nil {
			o.onStep(i+1, st.name)
		}
		s.logger.With(zap.Int("step", i+1), zap.String("name", st.name)).Info("recovery step")
		if err := st.run(); err != nil {
			return &StepError{Step: i + 1, Name: st.name, Err: err}
		}
	}

	s.logger.Info("recovery complete")
	return nil
}

// recoveryPass enters a mode, paints the whole panel one color and
// refreshes, then lets the panel settle.
func (s *Session) recoveryPass(ctx context.Context, o *recoveryOptions, mode UpdateMode, b canvas.Bit) error {
	if err := s.Transition(mode); err != nil {
		return err
	}
	s.canvas.Fill(b)
	if err := s.Flush(); err != nil {
		return err
	}
	if err := s.Update(); err != nil {
		return err
	}
	return wait(ctx, o.settle)
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
