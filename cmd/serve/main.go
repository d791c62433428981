package main

import (
	"net/http"

	flag "github.com/spf13/pflag"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"einkscreen/pkg/device/fbdev"
	"einkscreen/pkg/device/remote"
	"einkscreen/pkg/proto"
)

var device = flag.String("device", fbdev.DefaultDevice, "framebuffer device")
var listen = flag.String("listen", ":9123", "listen addr")

func main() {
	flag.Parse()

	fx.New(
		fx.Provide(
			zap.NewProduction,
			func(logger *zap.Logger) (proto.Channel, error) {
				dev, err := fbdev.New(&fbdev.Options{Device: *device, Logger: logger})
				if err != nil {
					return nil, err
				}
				return dev, nil
			},
			func() *http.Server {
				return &http.Server{Addr: *listen}
			},
		),
		fx.Invoke(
			remote.Proxy,
		),
	).Run()
}
