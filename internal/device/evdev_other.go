//go:build !linux

package device

func readKeyBits(string) ([]byte, error) { return nil, ErrUnsupported }
