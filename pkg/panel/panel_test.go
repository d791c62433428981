package panel

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"einkscreen/pkg/canvas"
	"einkscreen/pkg/device/virtual"
	"einkscreen/pkg/proto"
)

func newSession(t *testing.T) (*Session, *virtual.Mocker) {
	t.Helper()
	mock := virtual.Mock(128, 250, zap.NewNop())
	s, err := Open(mock, zap.NewNop())
	require.NoError(t, err)
	return s, mock
}

func TestOpen(t *testing.T) {
	s, _ := newSession(t)
	assert.Equal(t, Full, s.Mode())
	assert.Equal(t, 128, s.Canvas().Width())
	assert.Equal(t, 250, s.Canvas().Height())
}

func TestTransition(t *testing.T) {
	s, mock := newSession(t)

	require.NoError(t, s.Transition(Partial))
	assert.Equal(t, Partial, s.Mode())
	assert.Equal(t, []string{"SET_UPDATE_MODE partial"}, mock.Calls())

	require.NoError(t, s.Transition(Full))
	assert.Equal(t, Full, s.Mode())
}

func TestTransitionFailureKeepsMode(t *testing.T) {
	s, mock := newSession(t)
	mock.FailWith("SET_UPDATE_MODE partial", errors.New("bus stuck"))

	err := s.Transition(Partial)
	require.Error(t, err)
	assert.Equal(t, Full, s.Mode())

	// the session keeps operating in the old mode
	require.NoError(t, s.Update())
}

func TestTransitionBaseMapCommits(t *testing.T) {
	s, mock := newSession(t)

	require.NoError(t, s.Transition(BaseMap))
	assert.Equal(t, BaseMap, s.Mode())
	assert.Equal(t, []string{"SET_UPDATE_MODE base_map", "SET_BASE_MAP"}, mock.Calls())
}

func TestTransitionBaseMapRejectedDegrades(t *testing.T) {
	s, mock := newSession(t)
	mock.FailWith("SET_BASE_MAP", &proto.CommandError{
		Command: "SET_BASE_MAP",
		Err:     proto.ErrCommandRejected,
	})

	// an old driver without the command is tolerated
	require.NoError(t, s.Transition(BaseMap))
	assert.Equal(t, BaseMap, s.Mode())
}

func TestTransitionBaseMapHardFailure(t *testing.T) {
	s, mock := newSession(t)
	mock.FailWith("SET_BASE_MAP", errors.New("io error"))

	require.Error(t, s.Transition(BaseMap))
	assert.Equal(t, Full, s.Mode())
}

func TestSleepGatesEverything(t *testing.T) {
	s, mock := newSession(t)

	require.NoError(t, s.Sleep())
	assert.Equal(t, Sleeping, s.Mode())
	assert.Equal(t, []string{"DEEP_SLEEP"}, mock.Calls())

	assert.Error(t, s.Flush())
	assert.Error(t, s.Update())
	assert.Error(t, s.ClearRAM())
	assert.Error(t, s.Transition(Partial))
	_, err := s.SetPartialArea(0, 0, 8, 1)
	assert.Error(t, err)

	// only the commands above were blocked locally
	assert.Equal(t, []string{"DEEP_SLEEP"}, mock.Calls())

	require.NoError(t, s.Wake())
	assert.Equal(t, Full, s.Mode())
	require.NoError(t, s.Update())
}

func TestResetReturnsToFull(t *testing.T) {
	s, mock := newSession(t)
	require.NoError(t, s.Transition(Partial))

	require.NoError(t, s.Reset())
	assert.Equal(t, Full, s.Mode())
	assert.Equal(t, 1, mock.CountCalls("RESET"))
}

func TestResetEscapesSleep(t *testing.T) {
	s, mock := newSession(t)
	require.NoError(t, s.Sleep())

	// reset is the one command allowed through deep sleep
	require.NoError(t, s.Reset())
	assert.Equal(t, Full, s.Mode())
	assert.Equal(t, 1, mock.CountCalls("RESET"))
	require.NoError(t, s.Update())
}

func TestSetPartialAreaRealigns(t *testing.T) {
	s, mock := newSession(t)
	require.NoError(t, s.Transition(Partial))

	area, err := s.SetPartialArea(5, 10, 20, 5)
	require.NoError(t, err)
	assert.Equal(t, canvas.Area{X: 0, Y: 10, Width: 24, Height: 5}, area)
	assert.Equal(t, 1, mock.CountCalls("SET_PARTIAL_AREA"))
}

func TestUpdatePartialSequence(t *testing.T) {
	s, mock := newSession(t)

	area, err := s.UpdatePartial(8, 40, 16, 10)
	require.NoError(t, err)
	assert.Equal(t, canvas.Area{X: 8, Y: 40, Width: 16, Height: 10}, area)
	assert.Equal(t, Partial, s.Mode())
	assert.Equal(t, []string{
		"SET_UPDATE_MODE partial",
		"SET_PARTIAL_AREA",
		"WRITE_FRAME",
		"UPDATE_DISPLAY",
	}, mock.Calls())

	// already in Partial, no second mode command
	_, err = s.UpdatePartial(8, 40, 16, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, mock.CountCalls("SET_UPDATE_MODE partial"))
}

func TestClearWritesFrame(t *testing.T) {
	s, mock := newSession(t)

	require.NoError(t, s.Clear(canvas.White))
	frame := mock.Frame()
	require.Len(t, frame, s.Canvas().Stride()*s.Canvas().Height())
	for _, b := range frame {
		require.Equal(t, byte(0xFF), b)
	}
	assert.Equal(t, 1, mock.CountCalls("UPDATE_DISPLAY"))
}

func TestClose(t *testing.T) {
	s, mock := newSession(t)

	require.NoError(t, s.Close())
	assert.Equal(t, []string{"CLEAR_DISPLAY"}, mock.Calls())

	assert.ErrorIs(t, s.Flush(), proto.ErrChannelClosed)
	assert.ErrorIs(t, s.Transition(Partial), proto.ErrChannelClosed)
	assert.ErrorIs(t, s.Reset(), proto.ErrChannelClosed)

	// idempotent
	require.NoError(t, s.Close())
}

func TestCloseCollectsErrors(t *testing.T) {
	s, mock := newSession(t)
	mock.FailWith("CLEAR_DISPLAY", errors.New("clear failed"))

	err := s.Close()
	require.Error(t, err)

	// teardown still completed
	assert.ErrorIs(t, s.Flush(), proto.ErrChannelClosed)
}

func TestCloseSleepingSkipsClear(t *testing.T) {
	s, mock := newSession(t)
	require.NoError(t, s.Sleep())

	require.NoError(t, s.Close())
	assert.Zero(t, mock.CountCalls("CLEAR_DISPLAY"))
}
