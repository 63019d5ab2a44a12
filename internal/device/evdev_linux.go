//go:build linux

package device

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	evKey  = 0x01
	keyMax = 0x2ff

	iocNRBits   = 8
	iocTypeBits = 8
	iocSizeBits = 14

	iocNRShift   = 0
	iocTypeShift = iocNRShift + iocNRBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits

	iocRead = 2
)

func ioc(dir, typ, nr, size uint32) uintptr {
	return uintptr(dir<<iocDirShift | typ<<iocTypeShift | nr<<iocNRShift | size<<iocSizeShift)
}

// eviocgbit is EVIOCGBIT(ev, len) = _IOC(_IOC_READ, 'E', 0x20 + ev, len).
func eviocgbit(ev, size uint32) uintptr {
	return ioc(iocRead, 'E', 0x20+ev, size)
}

func readKeyBits(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Room for KEY_MAX bits rounded up to whole unsigned longs.
	words := make([]uint, (keyMax+1+int(unsafe.Sizeof(uint(0)))*8-1)/(int(unsafe.Sizeof(uint(0)))*8))
	size := uint32(len(words)) * uint32(unsafe.Sizeof(uint(0)))
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), eviocgbit(evKey, size), uintptr(unsafe.Pointer(&words[0])))
	if errno != 0 {
		return nil, errno
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), size), nil
}
