//go:build unix

package security

import "golang.org/x/sys/unix"

func disableCoreDumps() error {
	return unix.Setrlimit(unix.RLIMIT_CORE, &unix.Rlimit{})
}

// coreDumpsEnabled reports whether the core size limit allows dumps.
func coreDumpsEnabled() bool {
	var rlimit unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_CORE, &rlimit); err != nil {
		return true
	}
	return rlimit.Cur > 0 || rlimit.Max > 0
}
