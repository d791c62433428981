// Package virtual provides an in-memory proto.Channel for tests and
// dry runs against machines without the panel attached.
package virtual

import (
	"go.uber.org/zap"

	"einkscreen/pkg/canvas"
	"einkscreen/pkg/proto"
)

func Mock(width, height int, logger *zap.Logger) *Mocker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mocker{
		l:      logger,
		width:  width,
		height: height,
		fail:   map[string]error{},
	}
}

// Mocker records every command it receives and can be scripted to fail
// specific commands, optionally only after a number of successes.
type Mocker struct {
	l      *zap.Logger
	width  int
	height int

	calls  []string
	frame  []byte
	fail   map[string]error
	after  map[string]int
	closed bool
}

// FailWith makes every future invocation of command return err.
func (m *Mocker) FailWith(command string, err error) {
	m.fail[command] = err
}

// FailAfter makes command fail once it has succeeded n times.
func (m *Mocker) FailAfter(command string, n int, err error) {
	m.fail[command] = err
	if m.after == nil {
		m.after = map[string]int{}
	}
	m.after[command] = n
}

// Calls returns the command trace so far.
func (m *Mocker) Calls() []string { return m.calls }

// Frame returns a copy of the last written frame.
func (m *Mocker) Frame() []byte { return m.frame }

// CountCalls reports how many times one command was issued.
func (m *Mocker) CountCalls(command string) int {
	n := 0
	for _, c := range m.calls {
		if c == command {
			n++
		}
	}
	return n
}

func (m *Mocker) step(command string) error {
	if m.closed {
		return proto.ErrChannelClosed
	}
	m.calls = append(m.calls, command)
	if err, ok := m.fail[command]; ok {
		if pass, deferred := m.after[command]; deferred && m.CountCalls(command) <= pass {
			return nil
		}
		m.l.With(zap.String("command", command), zap.Error(err)).Info("scripted failure")
		return err
	}
	m.l.With(zap.String("command", command)).Debug("command")
	return nil
}

func (m *Mocker) Geometry() (int, int) { return m.width, m.height }

func (m *Mocker) WriteFrame(buf []byte) error {
	if err := m.step("WRITE_FRAME"); err != nil {
		return err
	}
	m.frame = append([]byte(nil), buf...)
	return nil
}

func (m *Mocker) SetMode(mode proto.Mode) error {
	return m.step("SET_UPDATE_MODE " + mode.String())
}

func (m *Mocker) SetPartialArea(area canvas.Area) error {
	if err := m.step("SET_PARTIAL_AREA"); err != nil {
		return err
	}
	m.l.With(zap.String("area", area.String())).Debug("partial area")
	return nil
}

func (m *Mocker) TriggerUpdate() error { return m.step("UPDATE_DISPLAY") }

func (m *Mocker) CommitBaseMap() error { return m.step("SET_BASE_MAP") }

func (m *Mocker) Reset() error { return m.step("RESET") }

func (m *Mocker) DeepSleep() error { return m.step("DEEP_SLEEP") }

func (m *Mocker) Clear() error { return m.step("CLEAR_DISPLAY") }

func (m *Mocker) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	m.l.Info("closed")
	return nil
}

var _ proto.Channel = (*Mocker)(nil)
