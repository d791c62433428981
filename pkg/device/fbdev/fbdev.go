// Package fbdev drives the e-ink panel through its Linux framebuffer
// device: geometry discovery via FBIOGET_VSCREENINFO, a shared mmap of
// the packed 1bpp buffer, and the driver's EPD ioctl set.
package fbdev

import (
	"os"
	"unsafe"

	"github.com/inhies/go-bytesize"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"einkscreen/pkg/canvas"
	"einkscreen/pkg/proto"
)

const (
	DefaultDevice = "/dev/fb0"

	defaultWidth  = 128
	defaultHeight = 250
)

type Options struct {
	// Device is the framebuffer node, DefaultDevice when empty.
	Device string

	// SysfsReset, when set, names a sysfs attribute used as a best-effort
	// side channel when the reset ioctl fails.
	SysfsReset string

	Logger *zap.Logger
}

type epdUpdateArea struct {
	X      uint16
	Y      uint16
	Width  uint16
	Height uint16
}

// Device implements proto.Channel over an open, memory-mapped
// framebuffer. One Device owns the node exclusively until Close.
type Device struct {
	f          *os.File
	mem        []byte
	logger     *zap.Logger
	sysfsReset string
	width      int
	height     int
	stride     int
	closed     bool
}

var _ proto.Channel = (*Device)(nil)

func New(opts *Options) (*Device, error) {
	if opts == nil {
		opts = &Options{}
	}
	path := opts.Device
	if path == "" {
		path = DefaultDevice
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		if os.IsPermission(err) {
			return nil, errors.Wrap(proto.ErrPermissionDenied, path)
		}
		return nil, errors.Wrapf(err, "open %s (is the driver loaded?)", path)
	}

	d := &Device{
		f:          f,
		logger:     logger,
		sysfsReset: opts.SysfsReset,
	}

	d.width, d.height = discoverGeometry(f, logger)
	d.stride = (d.width + 7) / 8
	size := d.stride * d.height

	mem, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(err, "mmap %s", path)
	}
	d.mem = mem

	logger.With(
		zap.String("device", path),
		zap.Int("width", d.width),
		zap.Int("height", d.height),
		zap.Int("stride", d.stride),
		zap.String("mapped", bytesize.New(float64(size)).String()),
	).Info("framebuffer opened")

	return d, nil
}

// discoverGeometry reads xres/yres from the variable screen info,
// falling back to the documented default panel size when the query fails
// or reports zeros.
func discoverGeometry(f *os.File, logger *zap.Logger) (int, int) {
	var vinfo fbVarScreenInfo
	err := ioctl(f.Fd(), fbioGetVScreenInfo, uintptr(unsafe.Pointer(&vinfo)))
	if err != nil || vinfo.XRes == 0 || vinfo.YRes == 0 {
		logger.With(zap.Error(err)).Warn("could not read display dimensions, using defaults")
		return defaultWidth, defaultHeight
	}
	return int(vinfo.XRes), int(vinfo.YRes)
}

func (d *Device) Geometry() (int, int) { return d.width, d.height }

func (d *Device) WriteFrame(buf []byte) error {
	if d.closed {
		return proto.ErrChannelClosed
	}
	if len(buf) != len(d.mem) {
		return errors.Errorf("frame is %d bytes, framebuffer is %d", len(buf), len(d.mem))
	}
	copy(d.mem, buf)
	return nil
}

// cmd issues one ioctl and wraps any failure with the command name.
// ENOTTY means the loaded driver predates the command.
func (d *Device) cmd(name string, req uintptr, arg uintptr) error {
	if d.closed {
		return proto.ErrChannelClosed
	}
	err := ioctl(d.f.Fd(), req, arg)
	if err == nil {
		d.logger.With(zap.String("command", name)).Debug("ioctl done")
		return nil
	}
	if err == unix.ENOTTY {
		return &proto.CommandError{Command: name, Err: proto.ErrCommandRejected}
	}
	return &proto.CommandError{Command: name, Err: err}
}

func (d *Device) SetMode(mode proto.Mode) error {
	m := int32(mode)
	return d.cmd("SET_UPDATE_MODE", epdSetUpdateMode, uintptr(unsafe.Pointer(&m)))
}

// Mode reads back the driver's current mode. Not used on the common
// path; the session keeps an optimistic model instead.
func (d *Device) Mode() (proto.Mode, error) {
	var m int32
	if err := d.cmd("GET_UPDATE_MODE", epdGetUpdateMode, uintptr(unsafe.Pointer(&m))); err != nil {
		return 0, err
	}
	return proto.Mode(m), nil
}

func (d *Device) SetPartialArea(area canvas.Area) error {
	a := epdUpdateArea{X: area.X, Y: area.Y, Width: area.Width, Height: area.Height}
	return d.cmd("SET_PARTIAL_AREA", epdSetPartialArea, uintptr(unsafe.Pointer(&a)))
}

func (d *Device) TriggerUpdate() error {
	return d.cmd("UPDATE_DISPLAY", epdUpdateDisplay, 0)
}

func (d *Device) CommitBaseMap() error {
	// NULL argument: latch the current framebuffer contents.
	return d.cmd("SET_BASE_MAP", epdSetBaseMap, 0)
}

func (d *Device) Reset() error {
	err := d.cmd("RESET", epdReset, 0)
	if err == nil || d.sysfsReset == "" {
		return err
	}

	// One best-effort attempt through the sysfs side channel; the
	// original error wins if that fails too.
	if werr := os.WriteFile(d.sysfsReset, []byte("1"), 0); werr != nil {
		d.logger.With(zap.Error(werr)).Warn("sysfs reset fallback failed")
		return err
	}
	d.logger.With(zap.String("via", d.sysfsReset)).Info("reset via sysfs fallback")
	return nil
}

func (d *Device) DeepSleep() error {
	return d.cmd("DEEP_SLEEP", epdDeepSleep, 0)
}

func (d *Device) Clear() error {
	return d.cmd("CLEAR_DISPLAY", epdClearDisplay, 0)
}

func (d *Device) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true

	err := unix.Munmap(d.mem)
	d.mem = nil
	if cerr := d.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// Info describes a framebuffer without opening a full channel.
type Info struct {
	Width  int
	Height int
	Stride int
	Total  int
}

// Probe reads the panel geometry from a device node.
func Probe(device string) (Info, error) {
	if device == "" {
		device = DefaultDevice
	}
	f, err := os.Open(device)
	if err != nil {
		return Info{}, errors.Wrapf(err, "open %s", device)
	}
	defer f.Close()

	w, h := discoverGeometry(f, zap.NewNop())
	stride := (w + 7) / 8
	return Info{Width: w, Height: h, Stride: stride, Total: stride * h}, nil
}
