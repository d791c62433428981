package fbdev

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioctl request numbers are derived from the <asm-generic/ioctl.h>
// macros, never hard-coded, so they stay in sync with the driver header.

const (
	iocNone  = 0
	iocWrite = 1
	iocRead  = 2

	iocNRBits   = 8
	iocTypeBits = 8
	iocSizeBits = 14

	iocNRShift   = 0
	iocTypeShift = iocNRShift + iocNRBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits
)

func ioc(dir, typ, nr, size uintptr) uintptr {
	return dir<<iocDirShift | typ<<iocTypeShift | nr<<iocNRShift | size<<iocSizeShift
}

func io(typ, nr uintptr) uintptr        { return ioc(iocNone, typ, nr, 0) }
func iow(typ, nr, size uintptr) uintptr { return ioc(iocWrite, typ, nr, size) }
func ior(typ, nr, size uintptr) uintptr { return ioc(iocRead, typ, nr, size) }

const epdMagic = 'E'

var (
	epdSetUpdateMode  = iow(epdMagic, 1, 4)
	epdGetUpdateMode  = ior(epdMagic, 2, 4)
	epdSetPartialArea = iow(epdMagic, 3, 8)
	epdUpdateDisplay  = io(epdMagic, 4)
	epdDeepSleep      = io(epdMagic, 5)
	epdSetBaseMap     = iow(epdMagic, 6, unsafe.Sizeof(uintptr(0)))
	epdReset          = io(epdMagic, 7)
	epdClearDisplay   = io(epdMagic, 8)
)

// <linux/fb.h>
const fbioGetVScreenInfo = 0x4600

type fbBitfield struct {
	Offset   uint32
	Length   uint32
	MSBRight uint32
}

// fbVarScreenInfo mirrors struct fb_var_screeninfo; only XRes/YRes are
// consumed here but the full 160-byte layout must be declared for the
// ioctl to fill it.
type fbVarScreenInfo struct {
	XRes         uint32
	YRes         uint32
	XResVirtual  uint32
	YResVirtual  uint32
	XOffset      uint32
	YOffset      uint32
	BitsPerPixel uint32
	Grayscale    uint32
	Red          fbBitfield
	Green        fbBitfield
	Blue         fbBitfield
	Transp       fbBitfield
	NonStd       uint32
	Activate     uint32
	Height       uint32
	Width        uint32
	AccelFlags   uint32
	Pixclock     uint32
	LeftMargin   uint32
	RightMargin  uint32
	UpperMargin  uint32
	LowerMargin  uint32
	HsyncLen     uint32
	VsyncLen     uint32
	Sync         uint32
	Vmode        uint32
	Rotate       uint32
	Colorspace   uint32
	Reserved     [4]uint32
}

func ioctl(fd uintptr, req uintptr, arg uintptr) error {
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, req, arg); errno != 0 {
		return errno
	}
	return nil
}
