// Package remote exposes a device channel over net/rpc so a headless
// board can hold the panel while rendering happens elsewhere. The
// single-session ownership rule still applies: the serving process owns
// the channel.
package remote

import (
	"context"
	"log"
	"net/http"
	"net/rpc"

	"github.com/pkg/errors"
	"go.uber.org/fx"

	"einkscreen/pkg/canvas"
	"einkscreen/pkg/proto"
)

func Proxy(ch proto.Channel, srv *http.Server, lifecycle fx.Lifecycle) error {
	svc := &Service{ch: ch}
	if err := rpc.Register(svc); err != nil {
		return err
	}

	rpc.HandleHTTP()

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != http.ErrServerClosed {
					log.Fatal(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})

	return nil
}

type Service struct {
	ch proto.Channel
}

func (s *Service) Geometry(_ EmptyRequest, reply *GeometryResponse) error {
	reply.Width, reply.Height = s.ch.Geometry()
	return nil
}

func (s *Service) Command(name string, _ *EmptyResponse) error {
	switch name {
	case "update":
		return s.ch.TriggerUpdate()
	case "commit_base_map":
		return s.ch.CommitBaseMap()
	case "reset":
		return s.ch.Reset()
	case "deep_sleep":
		return s.ch.DeepSleep()
	case "clear":
		return s.ch.Clear()
	}

	return errors.New("unknown command")
}

func (s *Service) SetMode(mode int32, _ *EmptyResponse) error {
	return s.ch.SetMode(proto.Mode(mode))
}

func (s *Service) SetPartialArea(area canvas.Area, _ *EmptyResponse) error {
	return s.ch.SetPartialArea(area)
}

func (s *Service) WriteFrame(req *WriteFrameRequest, _ *EmptyResponse) error {
	return s.ch.WriteFrame(req.Frame)
}
