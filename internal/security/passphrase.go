package security

// MaxPassphraseBytes is the capacity of a Passphrase buffer.
const MaxPassphraseBytes = 1024

// Passphrase is an ordered sequence of typed glyphs kept in a locked buffer.
// Each element is one key press, so backspace removes a whole glyph even
// when it is several bytes of UTF-8.
//
// Passphrase is owned by a single goroutine and is not safe for concurrent
// use.
type Passphrase struct {
	buf  *SecureBytes
	ends []int
}

// NewPassphrase returns an empty passphrase.
func NewPassphrase() *Passphrase {
	return &Passphrase{
		buf:  NewSecureBytes(MaxPassphraseBytes),
		ends: make([]int, 0, 64),
	}
}

func (p *Passphrase) size() int {
	if len(p.ends) == 0 {
		return 0
	}
	return p.ends[len(p.ends)-1]
}

// Append adds one glyph. It returns false when the glyph is empty or the
// buffer is full.
func (p *Passphrase) Append(glyph string) bool {
	n := p.size()
	if glyph == "" || n+len(glyph) > p.buf.Len() {
		return false
	}
	copy(p.buf.Bytes()[n:], glyph)
	p.ends = append(p.ends, n+len(glyph))
	return true
}

// Pop removes the last glyph. It is a no-op on an empty passphrase.
func (p *Passphrase) Pop() bool {
	if len(p.ends) == 0 {
		return false
	}
	end := p.size()
	p.ends = p.ends[:len(p.ends)-1]
	Wipe(p.buf.Bytes()[p.size():end])
	return true
}

// Clear wipes every glyph.
func (p *Passphrase) Clear() {
	Wipe(p.buf.Bytes()[:p.size()])
	p.ends = p.ends[:0]
}

// Len returns the number of glyphs.
func (p *Passphrase) Len() int { return len(p.ends) }

// Empty reports whether no glyph has been entered.
func (p *Passphrase) Empty() bool { return len(p.ends) == 0 }

// Bytes returns a copy of the passphrase. The caller must Wipe it.
func (p *Passphrase) Bytes() []byte {
	out := make([]byte, p.size())
	copy(out, p.buf.Bytes())
	return out
}

// Destroy wipes and releases the buffer.
func (p *Passphrase) Destroy() {
	p.ends = nil
	p.buf.Destroy()
}
