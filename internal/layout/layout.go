// Package layout defines the fixed key layers of the on-screen keyboard.
//
// The table is deliberately hand-written. Changing a symbol changes which
// characters a user can type, and anyone whose passphrase contains a removed
// symbol would be locked out of their disk. Review every edit to this file
// together with the allowed-character check of whatever tool sets up the
// passphrase in the first place.
package layout

// Keycaps for the special keys. The value is what a touch area reports when
// the key is tapped; it is not necessarily the text drawn on the key.
const (
	KeycapBackspace = "←"
	KeycapShift     = "↑"
	KeycapNumbers   = "123"
	KeycapSymbols   = "SYM"
	KeycapABC       = "abc"
	KeycapSpace     = " "
	KeycapReturn    = "\n"
	KeycapPeriod    = "."
)

// Layer indices.
const (
	LayerLetters = iota
	LayerShifted
	LayerNumbers
	LayerSymbols

	LayerCount
)

// RowCount is the number of character rows per layer. The special bottom
// row is not part of it.
const RowCount = 3

// MaxRowKeys is the widest row any layer may have.
const MaxRowKeys = 10

// Layer is one selectable symbol set.
type Layer struct {
	Index int
	Rows  [RowCount][]string
}

// Special describes one of the variable-width keys every layer carries in
// addition to its character rows.
type Special struct {
	// Cap is the text drawn on the key.
	Cap string
	// Key is the label reported when the key is tapped.
	Key string
}

var layers = [LayerCount]Layer{
	{
		Index: LayerLetters,
		Rows: [RowCount][]string{
			{"q", "w", "e", "r", "t", "y", "u", "i", "o", "p"},
			{"a", "s", "d", "f", "g", "h", "j", "k", "l"},
			{"z", "x", "c", "v", "b", "n", "m"},
		},
	},
	{
		Index: LayerShifted,
		Rows: [RowCount][]string{
			{"Q", "W", "E", "R", "T", "Y", "U", "I", "O", "P"},
			{"A", "S", "D", "F", "G", "H", "J", "K", "L"},
			{"Z", "X", "C", "V", "B", "N", "M"},
		},
	},
	{
		Index: LayerNumbers,
		Rows: [RowCount][]string{
			{"1", "2", "3", "4", "5", "6", "7", "8", "9", "0"},
			{"@", "#", "$", "%", "&", "-", "_", "+", "(", ")"},
			{",", "\"", "'", ":", ";", "!", "?"},
		},
	},
	{
		Index: LayerSymbols,
		Rows: [RowCount][]string{
			{"~", "`", "|", "·", "√", "π", "τ", "÷", "×", "¶"},
			{"©", "®", "£", "€", "¥", "^", "°", "*", "{", "}"},
			{"\\", "/", "<", ">", "=", "[", "]"},
		},
	},
}

var allowed = buildAllowed()

func buildAllowed() map[string]struct{} {
	m := make(map[string]struct{})
	for _, l := range layers {
		for _, row := range l.Rows {
			for _, k := range row {
				m[k] = struct{}{}
			}
		}
	}
	m[KeycapSpace] = struct{}{}
	m[KeycapPeriod] = struct{}{}
	return m
}

// Layers returns the layer table. Row slices are shared with the table and
// must not be modified.
func Layers() [LayerCount]Layer {
	return layers
}

// LayerKey is the bottom-left key that switches between letters and numbers.
func LayerKey(n int) Special {
	if n < LayerNumbers {
		return Special{Cap: "123", Key: KeycapNumbers}
	}
	return Special{Cap: "abc", Key: KeycapABC}
}

// SideKey is the key left of the third row: shift on the letter layers,
// otherwise the switch between the two symbol layers.
func SideKey(n int) Special {
	switch n {
	case LayerNumbers:
		return Special{Cap: "=\\<", Key: KeycapSymbols}
	case LayerSymbols:
		return Special{Cap: "123", Key: KeycapNumbers}
	default:
		return Special{Cap: KeycapShift, Key: KeycapShift}
	}
}

// Fixed bottom-row keys shared by every layer.
var (
	Backspace = Special{Cap: KeycapBackspace, Key: KeycapBackspace}
	Space     = Special{Cap: " ", Key: KeycapSpace}
	Period    = Special{Cap: ".", Key: KeycapPeriod}
	Return    = Special{Cap: "OK", Key: KeycapReturn}
)

// IsSpecial reports whether key is a control key rather than a character
// that ends up in the passphrase.
func IsSpecial(key string) bool {
	switch key {
	case KeycapBackspace, KeycapShift, KeycapNumbers, KeycapSymbols, KeycapABC, KeycapReturn:
		return true
	}
	return false
}

// Allowed reports whether s is a character the keyboard can produce.
func Allowed(s string) bool {
	_, ok := allowed[s]
	return ok
}

// NextShiftLayer returns the layer selected by tapping shift while on
// layer n.
func NextShiftLayer(n int) int {
	if n > LayerShifted {
		return LayerLetters
	}
	if n == LayerLetters {
		return LayerShifted
	}
	return LayerLetters
}
