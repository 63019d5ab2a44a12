package security

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWipe(t *testing.T) {
	b := []byte("hunter2")
	Wipe(b)
	assert.Equal(t, make([]byte, 7), b)
	Wipe(nil)
}

func TestSecureBytesDestroy(t *testing.T) {
	sb := NewSecureBytes(16)
	require.Equal(t, 16, sb.Len())
	data := sb.Bytes()
	copy(data, "secret")

	sb.Destroy()
	assert.Equal(t, make([]byte, 16), data, "buffer wiped")
	assert.Equal(t, 0, sb.Len())
	assert.False(t, sb.Locked())
	sb.Destroy()
}

func TestConstantTimeCompare(t *testing.T) {
	assert.True(t, ConstantTimeCompare([]byte("abc"), []byte("abc")))
	assert.False(t, ConstantTimeCompare([]byte("abc"), []byte("abd")))
	assert.False(t, ConstantTimeCompare([]byte("abc"), []byte("ab")))
}

func TestPassphraseAppendPop(t *testing.T) {
	p := NewPassphrase()
	defer p.Destroy()

	assert.True(t, p.Empty())
	assert.True(t, p.Append("a"))
	assert.True(t, p.Append("b"))
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, []byte("ab"), p.Bytes())

	assert.True(t, p.Pop())
	assert.Equal(t, []byte("a"), p.Bytes())

	assert.True(t, p.Pop())
	assert.False(t, p.Pop(), "pop on empty is a no-op")
	assert.True(t, p.Empty())
	assert.Equal(t, []byte{}, p.Bytes())
}

func TestPassphraseMultibyteGlyph(t *testing.T) {
	p := NewPassphrase()
	defer p.Destroy()

	p.Append("π")
	p.Append("€")
	assert.Equal(t, 2, p.Len())
	p.Pop()
	assert.Equal(t, []byte("π"), p.Bytes())
}

func TestPassphraseRejectsEmptyAndOverflow(t *testing.T) {
	p := NewPassphrase()
	defer p.Destroy()

	assert.False(t, p.Append(""))
	assert.True(t, p.Append(strings.Repeat("x", MaxPassphraseBytes)))
	assert.False(t, p.Append("y"))
	assert.Equal(t, 1, p.Len())
}

func TestPassphraseClearWipes(t *testing.T) {
	p := NewPassphrase()
	defer p.Destroy()

	p.Append("s")
	p.Append("3")
	raw := p.buf.Bytes()
	p.Clear()
	assert.True(t, p.Empty())
	assert.Equal(t, byte(0), raw[0])
	assert.Equal(t, byte(0), raw[1])
}

func TestParseTracerPID(t *testing.T) {
	tests := []struct {
		status  string
		want    int
		wantErr bool
	}{
		{"Name:\tosk\nTracerPid:\t0\nUid:\t0\n", 0, false},
		{"TracerPid:\t4242\n", 4242, false},
		{"Name:\tosk\n", 0, true},
		{"TracerPid:\tnope\n", 0, true},
	}
	for _, tt := range tests {
		got, err := parseTracerPID(tt.status)
		if tt.wantErr {
			assert.Error(t, err, "%q", tt.status)
			continue
		}
		require.NoError(t, err, "%q", tt.status)
		assert.Equal(t, tt.want, got)
	}
}

func TestHarden(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("hardening is only complete on linux")
	}
	require.NoError(t, Harden())
	assert.False(t, coreDumpsEnabled())
	assert.False(t, TracerAttached())
}
