package security

import (
	"errors"
	"strconv"
	"strings"
)

// ErrUnsupported is returned by hardening steps the platform lacks.
var ErrUnsupported = errors.New("security: not supported on this platform")

// Harden disables core dumps and marks the process non-dumpable. Every
// step is attempted; the joined error lists the ones that failed.
func Harden() error {
	return errors.Join(disableCoreDumps(), setNotDumpable())
}

// TracerAttached reports whether a debugger is tracing the process.
func TracerAttached() bool {
	pid, err := tracerPID()
	return err == nil && pid != 0
}

// parseTracerPID extracts TracerPid from the contents of /proc/<pid>/status.
func parseTracerPID(status string) (int, error) {
	for _, line := range strings.Split(status, "\n") {
		v, ok := strings.CutPrefix(line, "TracerPid:")
		if !ok {
			continue
		}
		return strconv.Atoi(strings.TrimSpace(v))
	}
	return 0, errors.New("security: no TracerPid in status")
}
