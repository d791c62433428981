package dump

import (
	"image/png"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"einkscreen/pkg/canvas"
)

func TestSnapshot(t *testing.T) {
	fs := afero.NewMemMapFs()
	sink := New(fs, "snaps", zap.NewNop())

	cv, err := canvas.New(16, 8)
	require.NoError(t, err)
	cv.SetPixel(3, 2, canvas.Black)

	path, err := sink.Snapshot(cv)
	require.NoError(t, err)
	assert.Contains(t, path, "snaps")

	f, err := fs.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())
	assert.Equal(t, 8, img.Bounds().Dy())
	assert.Equal(t, canvas.Black, canvas.ToBit(img.At(3, 2)))
	assert.Equal(t, canvas.White, canvas.ToBit(img.At(0, 0)))
}

func TestSnapshotUniqueNames(t *testing.T) {
	fs := afero.NewMemMapFs()
	sink := New(fs, "snaps", zap.NewNop())

	cv, err := canvas.New(8, 8)
	require.NoError(t, err)

	a, err := sink.Snapshot(cv)
	require.NoError(t, err)
	b, err := sink.Snapshot(cv)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSnapshotNilCanvas(t *testing.T) {
	sink := New(afero.NewMemMapFs(), "snaps", zap.NewNop())
	_, err := sink.Snapshot(nil)
	assert.Error(t, err)
}
