//go:build !unix

package security

func disableCoreDumps() error { return ErrUnsupported }

func coreDumpsEnabled() bool { return true }
