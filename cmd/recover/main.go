package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"einkscreen/pkg/device/fbdev"
	"einkscreen/pkg/panel"
	"einkscreen/pkg/proto"
)

var (
	device     = pflag.StringP("device", "d", fbdev.DefaultDevice, "framebuffer device")
	sysfsReset = pflag.String("sysfs-reset", "", "sysfs reset attribute to poke if the reset ioctl fails")
	settle     = pflag.Duration("settle", 2*time.Second, "wait between cycles")
	sleep      = pflag.Bool("sleep", false, "put the panel into deep sleep when done")
	probe      = pflag.Bool("probe", false, "print panel geometry and exit")
	debug      = pflag.Bool("debug", false, "debug log")
)

func main() {
	pflag.Parse()

	var logger *zap.Logger
	if *debug {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	if *probe {
		info, err := fbdev.Probe(*device)
		if err != nil {
			hint(err)
			logger.Fatal("probe failed", zap.Error(err))
		}
		fmt.Printf("%s: %dx%d, %d bytes/row, %d bytes total\n",
			*device, info.Width, info.Height, info.Stride, info.Total)
		if dev, derr := fbdev.New(&fbdev.Options{Device: *device, Logger: logger}); derr == nil {
			if m, merr := dev.Mode(); merr == nil {
				fmt.Printf("current mode: %s\n", m)
			}
			dev.Close()
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dev, err := fbdev.New(&fbdev.Options{
		Device:     *device,
		SysfsReset: *sysfsReset,
		Logger:     logger,
	})
	if err != nil {
		hint(err)
		logger.Fatal("open device failed", zap.Error(err))
	}

	session, err := panel.Open(dev, logger)
	if err != nil {
		logger.Fatal("open session failed", zap.Error(err))
	}
	defer session.Close()

	bar := progressbar.NewOptions(panel.RecoverySteps,
		progressbar.OptionSetDescription("recovering"),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() { fmt.Println() }),
	)

	err = session.Recover(ctx,
		panel.WithSettle(*settle),
		panel.WithStepFunc(func(step int, name string) {
			bar.Describe(name)
			bar.Set(step)
		}),
	)
	if err != nil {
		var stepErr *panel.StepError
		if errors.As(err, &stepErr) {
			logger.Fatal("recovery failed",
				zap.Int("step", stepErr.Step),
				zap.String("name", stepErr.Name),
				zap.Error(stepErr.Err))
		}
		logger.Fatal("recovery failed", zap.Error(err))
	}
	bar.Finish()

	if *sleep {
		if err := session.Sleep(); err != nil {
			logger.Fatal("deep sleep failed", zap.Error(err))
		}
	}

	logger.Info("panel recovered")
}

func hint(err error) {
	switch {
	case errors.Is(err, proto.ErrPermissionDenied):
		fmt.Fprintln(os.Stderr, "permission denied: run as root or add yourself to the video group")
	case os.IsNotExist(errors.Cause(err)):
		fmt.Fprintln(os.Stderr, "device node missing: is the display driver loaded?")
	}
}
