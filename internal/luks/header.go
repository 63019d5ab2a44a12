package luks

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNotLUKS is returned when a device does not start with a LUKS header.
var ErrNotLUKS = errors.New("luks: not a LUKS device")

var magic = [6]byte{'L', 'U', 'K', 'S', 0xba, 0xbe}

// Header holds the identifying fields of a LUKS1 or LUKS2 binary header.
type Header struct {
	Version    int
	UUID       string
	Label      string // LUKS2 only
	Cipher     string // LUKS1 only
	CipherMode string // LUKS1 only
	Hash       string // LUKS1 only
}

type luks1Header struct {
	Magic         [6]byte
	Version       uint16
	CipherName    [32]byte
	CipherMode    [32]byte
	HashSpec      [32]byte
	PayloadOffset uint32
	KeyBytes      uint32
	MKDigest      [20]byte
	MKDigestSalt  [32]byte
	MKDigestIter  uint32
	UUID          [40]byte
}

type luks2Header struct {
	Magic       [6]byte
	Version     uint16
	HeaderSize  uint64
	SeqID       uint64
	Label       [48]byte
	ChecksumAlg [32]byte
	Salt        [64]byte
	UUID        [40]byte
}

// ReadHeader parses the header at the start of r.
func ReadHeader(r io.Reader) (*Header, error) {
	// The LUKS2 binary header prefix is the larger of the two.
	buf := make([]byte, binary.Size(luks2Header{}))
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: short header", ErrNotLUKS)
		}
		return nil, fmt.Errorf("luks: read header: %w", err)
	}
	if !bytes.Equal(buf[:len(magic)], magic[:]) {
		return nil, ErrNotLUKS
	}

	version := binary.BigEndian.Uint16(buf[len(magic):])
	switch version {
	case 1:
		var h luks1Header
		if err := binary.Read(bytes.NewReader(buf), binary.BigEndian, &h); err != nil {
			return nil, fmt.Errorf("luks: decode LUKS1 header: %w", err)
		}
		return &Header{
			Version:    1,
			UUID:       cstring(h.UUID[:]),
			Cipher:     cstring(h.CipherName[:]),
			CipherMode: cstring(h.CipherMode[:]),
			Hash:       cstring(h.HashSpec[:]),
		}, nil
	case 2:
		var h luks2Header
		if err := binary.Read(bytes.NewReader(buf), binary.BigEndian, &h); err != nil {
			return nil, fmt.Errorf("luks: decode LUKS2 header: %w", err)
		}
		return &Header{
			Version: 2,
			UUID:    cstring(h.UUID[:]),
			Label:   cstring(h.Label[:]),
		}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported version %d", ErrNotLUKS, version)
	}
}

func cstring(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return strings.TrimSpace(string(b))
}
