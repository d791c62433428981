package main

import (
	"context"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"einkscreen/internal/config"
	"einkscreen/internal/dump"
	"einkscreen/pkg/dashboard"
	"einkscreen/pkg/device/fbdev"
	"einkscreen/pkg/device/remote"
	"einkscreen/pkg/panel"
	"einkscreen/pkg/proto"
)

var configPath = flag.StringP("config", "c", "weather.yaml", "config file, created on first run")

func main() {
	flag.Parse()

	fx.New(
		fx.Provide(
			func() (*config.Config, error) {
				return config.Load(*configPath)
			},
			func(cfg *config.Config) (*zap.Logger, error) {
				return lo.Ternary(cfg.Debug, zap.NewDevelopment, zap.NewProduction)()
			},
			newChannel,
			panel.Open,
			func(cfg *config.Config, logger *zap.Logger) dashboard.Provider {
				return dashboard.NewWeather(cfg.APIKey, cfg.City, logger)
			},
			func() dashboard.Renderer { return dashboard.BlockRenderer{} },
			func(s *panel.Session, p dashboard.Provider, r dashboard.Renderer, logger *zap.Logger) *dashboard.Dashboard {
				return dashboard.New(s, p, r, logger)
			},
		),
		fx.Invoke(run),
	).Run()
}

func newChannel(cfg *config.Config, logger *zap.Logger) (proto.Channel, error) {
	if strings.Contains(cfg.Device, ":") {
		return remote.New(cfg.Device)
	}
	dev, err := fbdev.New(&fbdev.Options{Device: cfg.Device, Logger: logger})
	if err != nil {
		return nil, err
	}
	return dev, nil
}

func run(
	cfg *config.Config,
	session *panel.Session,
	board *dashboard.Dashboard,
	logger *zap.Logger,
	lifecycle fx.Lifecycle,
) error {
	var sink *dump.Sink
	if cfg.SnapshotDir != "" {
		sink = dump.New(afero.NewOsFs(), cfg.SnapshotDir, logger)
	}

	refresh := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := board.Refresh(ctx); err != nil {
			logger.With(zap.Error(err)).Warn("refresh failed")
			return
		}
		if sink != nil {
			if _, err := sink.Snapshot(session.Canvas()); err != nil {
				logger.With(zap.Error(err)).Warn("snapshot failed")
			}
		}
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Refresh, refresh); err != nil {
		return err
	}

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := board.Start(ctx); err != nil {
				return err
			}
			scheduler.Start()
			logger.Info("dashboard running",
				zap.String("city", cfg.City),
				zap.String("refresh", cfg.Refresh))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			<-scheduler.Stop().Done()
			return session.Close()
		},
	})

	return nil
}
