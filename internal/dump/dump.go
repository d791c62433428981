// Package dump writes PNG snapshots of a rendered canvas, mainly for
// debugging flicker free layouts without staring at the panel.
package dump

import (
	"image/png"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"einkscreen/pkg/canvas"
)

type Sink struct {
	fs     afero.Fs
	dir    string
	logger *zap.Logger
}

func New(fs afero.Fs, dir string, logger *zap.Logger) *Sink {
	return &Sink{
		fs:     fs,
		dir:    dir,
		logger: logger,
	}
}

// Snapshot stores cv as a uniquely named PNG and returns the path.
func (s *Sink) Snapshot(cv *canvas.Canvas) (string, error) {
	if cv == nil {
		return "", errors.New("canvas is nil")
	}

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create snapshot dir")
	}

	path := filepath.Join(s.dir, xid.New().String()+".png")
	f, err := s.fs.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "create snapshot")
	}
	defer f.Close()

	if err := png.Encode(f, cv); err != nil {
		return "", errors.Wrap(err, "encode snapshot")
	}

	s.logger.Debug("snapshot written", zap.String("path", path))
	return path, nil
}
