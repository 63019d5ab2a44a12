//go:build !unix

package security

import "errors"

func mlock([]byte) error { return errors.New("security: mlock not supported") }

func munlock([]byte) {}
