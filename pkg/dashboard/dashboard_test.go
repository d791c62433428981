package dashboard

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"einkscreen/pkg/canvas"
	"einkscreen/pkg/device/virtual"
	"einkscreen/pkg/panel"
)

type staticProvider struct {
	rep *Report
	err error
	n   int
}

func (p *staticProvider) Fetch(ctx context.Context) (*Report, error) {
	p.n++
	return p.rep, p.err
}

func newBoard(t *testing.T, provider Provider, opts ...Option) (*Dashboard, *panel.Session, *virtual.Mocker) {
	t.Helper()
	mock := virtual.Mock(128, 250, zap.NewNop())
	s, err := panel.Open(mock, zap.NewNop())
	require.NoError(t, err)
	return New(s, provider, BlockRenderer{}, zap.NewNop(), opts...), s, mock
}

func TestStart(t *testing.T) {
	provider := &staticProvider{rep: &Report{TempC: 20, Humidity: 50, WindKmh: 10}}
	d, s, mock := newBoard(t, provider)

	require.NoError(t, d.Start(context.Background()))

	assert.Equal(t, panel.Partial, s.Mode())
	assert.Equal(t, 1, provider.n)

	// full paint, then base map latch, then the armed partial region
	assert.Equal(t, 1, mock.CountCalls("SET_UPDATE_MODE full"))
	assert.Equal(t, 1, mock.CountCalls("SET_UPDATE_MODE base_map"))
	assert.Equal(t, 1, mock.CountCalls("SET_BASE_MAP"))
	assert.Equal(t, 1, mock.CountCalls("SET_UPDATE_MODE partial"))
	assert.Equal(t, 1, mock.CountCalls("SET_PARTIAL_AREA"))
	// layout refresh plus the first overlay refresh
	assert.Equal(t, 2, mock.CountCalls("UPDATE_DISPLAY"))

	// the title band survives in the session canvas
	b, _ := s.Canvas().Pixel(0, 0)
	assert.Equal(t, canvas.Black, b)
}

func TestRefreshBeforeStart(t *testing.T) {
	d, _, _ := newBoard(t, &staticProvider{rep: &Report{}})
	assert.Error(t, d.Refresh(context.Background()))
}

func TestRefresh(t *testing.T) {
	provider := &staticProvider{rep: &Report{TempC: 35, Humidity: 90, WindKmh: 40}}
	d, s, mock := newBoard(t, provider)
	require.NoError(t, d.Start(context.Background()))

	updates := mock.CountCalls("UPDATE_DISPLAY")
	require.NoError(t, d.Refresh(context.Background()))

	assert.Equal(t, 2, provider.n)
	assert.Equal(t, updates+1, mock.CountCalls("UPDATE_DISPLAY"))
	// still in partial mode, no new region programmed
	assert.Equal(t, panel.Partial, s.Mode())
	assert.Equal(t, 1, mock.CountCalls("SET_PARTIAL_AREA"))
}

func TestRefreshFetchFailure(t *testing.T) {
	provider := &staticProvider{rep: &Report{}}
	d, _, mock := newBoard(t, provider)
	require.NoError(t, d.Start(context.Background()))

	provider.err = errors.New("api down")
	updates := mock.CountCalls("UPDATE_DISPLAY")

	require.Error(t, d.Refresh(context.Background()))
	// nothing was pushed to the panel
	assert.Equal(t, updates, mock.CountCalls("UPDATE_DISPLAY"))
}

func TestWithOverlay(t *testing.T) {
	d, _, _ := newBoard(t, &staticProvider{rep: &Report{}}, WithOverlay(5, 40, 20, 60))
	require.NoError(t, d.Start(context.Background()))

	// request is aligned on start
	assert.Equal(t, canvas.Area{X: 0, Y: 40, Width: 24, Height: 60}, d.overlay)
}

func TestOverlayRestoresBase(t *testing.T) {
	provider := &staticProvider{rep: &Report{TempC: 40, Humidity: 100, WindKmh: 60}}
	d, s, _ := newBoard(t, provider)
	require.NoError(t, d.Start(context.Background()))

	// second refresh with an empty report must not stack bars from the
	// first one: the base is restored under the overlay each time
	provider.rep = &Report{TempC: tempMin}
	require.NoError(t, d.Refresh(context.Background()))

	maxed := d.base.Clone()
	ov, err := BlockRenderer{}.Render(&Report{TempC: tempMin}, int(d.overlay.Width), int(d.overlay.Height))
	require.NoError(t, err)
	require.NoError(t, maxed.Merge(ov, int(d.overlay.X), int(d.overlay.Y), canvas.MergeAnd))

	assert.Equal(t, maxed.Bytes(), s.Canvas().Bytes())
}

func TestWeatherDemoReport(t *testing.T) {
	w := NewWeather("", "", zap.NewNop())
	rep, err := w.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 22.0, rep.TempC)
	assert.Equal(t, 65, rep.Humidity)
	assert.NotEmpty(t, rep.Condition)
	assert.False(t, rep.FetchedAt.IsZero())
}

func TestBlockRenderer(t *testing.T) {
	ov, err := BlockRenderer{}.Render(&Report{TempC: tempMax, Humidity: 0, WindKmh: windMax}, 64, 60)
	require.NoError(t, err)
	assert.Equal(t, 64, ov.Width())
	assert.Equal(t, 60, ov.Height())

	// the full-scale temperature bar is filled near its right edge
	b, _ := ov.Pixel(56, 10)
	assert.Equal(t, canvas.Black, b)

	_, err = BlockRenderer{}.Render(&Report{}, 0, 0)
	assert.Error(t, err)
}
