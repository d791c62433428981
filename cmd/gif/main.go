package main

import (
	"context"
	"image/gif"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"einkscreen/internal/dump"
	"einkscreen/pkg/anim"
	"einkscreen/pkg/canvas"
	"einkscreen/pkg/device/fbdev"
	"einkscreen/pkg/panel"
	"einkscreen/pkg/source"
)

var (
	device     = pflag.StringP("device", "d", fbdev.DefaultDevice, "framebuffer device")
	loops      = pflag.IntP("loops", "l", 0, "number of loops, 0 means until interrupted")
	fullUpdate = pflag.Bool("full-update", false, "refresh every frame with a full update")
	reset      = pflag.Bool("reset", false, "reset the panel before playing")
	dumpDir    = pflag.String("dump", "", "also write the first staged frame as a PNG into this directory")
	debug      = pflag.Bool("debug", false, "debug log")
)

func main() {
	pflag.Parse()
	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(2)
	}

	var logger *zap.Logger
	if *debug {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	f, err := os.Open(pflag.Arg(0))
	if err != nil {
		logger.Fatal("open gif failed", zap.Error(err))
	}
	g, err := gif.DecodeAll(f)
	f.Close()
	if err != nil {
		logger.Fatal("decode gif failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dev, err := fbdev.New(&fbdev.Options{Device: *device, Logger: logger})
	if err != nil {
		logger.Fatal("open device failed", zap.Error(err))
	}

	session, err := panel.Open(dev, logger)
	if err != nil {
		logger.Fatal("open session failed", zap.Error(err))
	}

	if *reset {
		if err := session.Reset(); err != nil {
			logger.Fatal("reset failed", zap.Error(err))
		}
	}

	w, h := session.Canvas().Width(), session.Canvas().Height()
	frames := make([]anim.Frame, 0, len(g.Image))
	for i, img := range g.Image {
		frames = append(frames, anim.Frame{
			Src:      source.Fitted(img, w, h),
			Duration: time.Duration(g.Delay[i]) * 10 * time.Millisecond,
		})
	}
	logger.Info("gif decoded",
		zap.Int("frames", len(frames)),
		zap.Int("loops", *loops))

	player, err := anim.NewPlayer(session, frames,
		anim.WithLoops(*loops),
		anim.WithFullUpdates(*fullUpdate),
		anim.WithLogger(logger),
	)
	if err != nil {
		logger.Fatal("bad animation", zap.Error(err))
	}

	if *dumpDir != "" {
		cv := session.Canvas().Clone()
		cv.Fill(canvas.White)
		cv.Blit(frames[0].Src, 0, 0)
		sink := dump.New(afero.NewOsFs(), *dumpDir, logger)
		if _, err := sink.Snapshot(cv); err != nil {
			logger.Warn("snapshot failed", zap.Error(err))
		}
	}

	err = player.Play(ctx)
	cerr := session.Close()
	if err != nil && err != context.Canceled {
		logger.Fatal("playback failed", zap.Error(err))
	}
	if cerr != nil {
		logger.Fatal("close failed", zap.Error(cerr))
	}
}
