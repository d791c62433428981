package remote

import (
	"net/rpc"

	"github.com/pkg/errors"

	"einkscreen/pkg/canvas"
	"einkscreen/pkg/proto"
)

// New dials a serving process and returns a channel proxying every
// command over RPC.
func New(addr string) (proto.Channel, error) {
	cli, err := rpc.DialHTTP("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", addr)
	}

	var geo GeometryResponse
	if err := cli.Call("Service.Geometry", EmptyRequest{}, &geo); err != nil {
		_ = cli.Close()
		return nil, errors.Wrap(err, "remote geometry")
	}

	return &Client{cli: cli, width: geo.Width, height: geo.Height}, nil
}

type Client struct {
	cli    *rpc.Client
	width  int
	height int
	closed bool
}

var _ proto.Channel = (*Client)(nil)

func (c *Client) Geometry() (int, int) { return c.width, c.height }

func (c *Client) call(method string, args any, reply any) error {
	if c.closed {
		return proto.ErrChannelClosed
	}
	return c.cli.Call(method, args, reply)
}

func (c *Client) command(name string) error {
	return c.call("Service.Command", name, &EmptyResponse{})
}

func (c *Client) WriteFrame(buf []byte) error {
	return c.call("Service.WriteFrame", &WriteFrameRequest{Frame: buf}, &EmptyResponse{})
}

func (c *Client) SetMode(mode proto.Mode) error {
	return c.call("Service.SetMode", int32(mode), &EmptyResponse{})
}

func (c *Client) SetPartialArea(area canvas.Area) error {
	return c.call("Service.SetPartialArea", area, &EmptyResponse{})
}

func (c *Client) TriggerUpdate() error { return c.command("update") }

func (c *Client) CommitBaseMap() error { return c.command("commit_base_map") }

func (c *Client) Reset() error { return c.command("reset") }

func (c *Client) DeepSleep() error { return c.command("deep_sleep") }

func (c *Client) Clear() error { return c.command("clear") }

func (c *Client) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.cli.Close()
}
