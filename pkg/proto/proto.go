// Package proto defines the command surface of an e-ink display channel
// and the error taxonomy shared by its implementations.
package proto

import (
	"fmt"

	"github.com/pkg/errors"

	"einkscreen/pkg/canvas"
)

// Mode is the hardware update mode as encoded by the driver.
type Mode int32

const (
	ModeFull Mode = iota
	ModePartial
	ModeBaseMap
)

func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModePartial:
		return "partial"
	case ModeBaseMap:
		return "base_map"
	default:
		return fmt.Sprintf("mode(%d)", int32(m))
	}
}

// Channel is one open display device. Every command may block for the
// duration of a physical panel refresh and every command may fail; a
// channel is owned by exactly one session and is not safe for concurrent
// use.
type Channel interface {
	// Geometry reports the panel dimensions in pixels.
	Geometry() (width, height int)

	// WriteFrame copies a packed 1bpp buffer into the framebuffer.
	WriteFrame(buf []byte) error

	SetMode(mode Mode) error
	SetPartialArea(area canvas.Area) error

	// TriggerUpdate starts a refresh and blocks until the driver accepts it.
	TriggerUpdate() error

	// CommitBaseMap latches the current framebuffer content as the base
	// layer for subsequent partial updates.
	CommitBaseMap() error

	// Reset performs a hardware reset, falling back to a side channel if
	// the primary command fails.
	Reset() error

	DeepSleep() error

	// Clear whitens both controller RAM planes.
	Clear() error

	Close() error
}

var (
	// ErrChannelClosed marks use of a channel after teardown.
	ErrChannelClosed = errors.New("device channel is closed")

	// ErrCommandRejected marks a command the loaded driver does not know,
	// typically an outdated driver build.
	ErrCommandRejected = errors.New("command rejected by driver")

	// ErrPermissionDenied marks an open refused by the platform.
	ErrPermissionDenied = errors.New("permission denied (run as root or join the video group)")
)

// CommandError reports a hardware command that failed mid-sequence,
// identifying the command so callers can point users at recovery.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }
