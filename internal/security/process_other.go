//go:build !linux

package security

func setNotDumpable() error { return ErrUnsupported }

func tracerPID() (int, error) { return 0, ErrUnsupported }
