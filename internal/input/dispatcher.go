// Package input turns pointer, key and text events into keyboard and
// passphrase actions.
package input

import (
	"log/slog"
	"time"

	"osk/internal/keyboard"
	"osk/internal/layout"
	"osk/internal/logging"
	"osk/internal/security"
)

// Keyboard is the part of the on-screen keyboard the dispatcher drives.
type Keyboard interface {
	GetKeyForCoordinates(x, y int) (keyboard.TouchArea, bool)
	SetActiveLayer(n int)
	ActiveLayer() int
	SetHighlight(a keyboard.TouchArea)
	ClearHighlight()
	Highlight() (keyboard.TouchArea, bool)
	Top(screenHeight int) int
}

// Unlocker starts unlock attempts.
type Unlocker interface {
	SetPassphrase(p []byte)
	Unlock() bool
	UnlockRunning() bool
	IsLocked() bool
}

// Toggle is the button shown in place of a hidden on-screen keyboard.
type Toggle interface {
	Visible() bool
	SetVisible(v bool)
	Contains(x, y int) bool
}

// Key identifies a physical key the dispatcher reacts to.
type Key int

const (
	KeyOther Key = iota
	KeyReturn
	KeyBackspace
	KeyEscape
	KeyU
)

// Outcome tells the main loop whether to keep running.
type Outcome int

const (
	// Continue keeps the main loop running.
	Continue Outcome = iota
	// Finish ends the loop with the passphrase ready (keyscript mode).
	Finish
	// Quit ends the loop without a passphrase.
	Quit
)

func (o Outcome) String() string {
	switch o {
	case Finish:
		return "finish"
	case Quit:
		return "quit"
	default:
		return "continue"
	}
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithKeyscript makes Return finish the loop instead of unlocking.
func WithKeyscript(on bool) Option {
	return func(d *Dispatcher) { d.keyscript = on }
}

// WithRepeatDelay sets the debounce delay for key and text events.
func WithRepeatDelay(delay time.Duration) Option {
	return func(d *Dispatcher) { d.repeatDelay = delay }
}

// WithNotify sets the function called after every change that needs a
// redraw.
func WithNotify(fn func()) Option {
	return func(d *Dispatcher) { d.notify = fn }
}

// WithToggle sets the keyboard toggle button.
func WithToggle(t Toggle) Option {
	return func(d *Dispatcher) { d.toggle = t }
}

// WithClock sets the time source used for debouncing.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.log = l }
}

// Dispatcher owns the passphrase being typed. All methods must be called
// from the UI goroutine.
type Dispatcher struct {
	kbd    Keyboard
	unl    Unlocker
	toggle Toggle
	pass   *security.Passphrase
	log    *slog.Logger
	notify func()
	now    func() time.Time

	keyscript   bool
	repeatDelay time.Duration
	keys        *Debouncer
	text        *Debouncer

	passwordError bool
	lastRunning   bool
	outcome       Outcome
}

// New creates a dispatcher for kbd and unl.
func New(kbd Keyboard, unl Unlocker, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		kbd:         kbd,
		unl:         unl,
		pass:        security.NewPassphrase(),
		log:         logging.Discard(),
		notify:      func() {},
		now:         time.Now,
		repeatDelay: DefaultRepeatDelay,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.keys = NewDebouncer(d.repeatDelay)
	d.text = NewDebouncer(d.repeatDelay)
	return d
}

func (d *Dispatcher) oskHidden() bool {
	return d.toggle != nil && d.toggle.Visible()
}

// TapBegin highlights the key under a press at screen coordinates.
func (d *Dispatcher) TapBegin(x, y, screenHeight int) {
	if d.oskHidden() {
		return
	}
	if a, ok := d.kbd.GetKeyForCoordinates(x, y-d.kbd.Top(screenHeight)); ok {
		d.kbd.SetHighlight(a)
	} else {
		d.kbd.ClearHighlight()
	}
	d.notify()
}

// TapEnd commits the key under a release, provided it is the key the press
// started on.
func (d *Dispatcher) TapEnd(x, y, screenHeight int) Outcome {
	d.passwordError = false
	defer d.notify()

	if d.oskHidden() {
		if d.toggle.Contains(x, y) {
			d.toggle.SetVisible(false)
		}
		return d.outcome
	}

	key, ok := d.kbd.GetKeyForCoordinates(x, y-d.kbd.Top(screenHeight))
	hl, hok := d.kbd.Highlight()
	d.kbd.ClearHighlight()
	if !ok || !hok || key.Rect() != hl.Rect() {
		return d.outcome
	}
	if d.unl.UnlockRunning() {
		return d.outcome
	}
	d.press(key.Label)
	return d.outcome
}

// press applies a tapped key.
func (d *Dispatcher) press(label string) {
	if label == "" {
		return
	}
	if !layout.IsSpecial(label) {
		d.pass.Append(label)
		return
	}
	switch label {
	case layout.KeycapReturn:
		d.submit()
	case layout.KeycapBackspace:
		d.pass.Pop()
	case layout.KeycapShift:
		d.kbd.SetActiveLayer(layout.NextShiftLayer(d.kbd.ActiveLayer()))
	case layout.KeycapNumbers:
		d.kbd.SetActiveLayer(layout.LayerNumbers)
	case layout.KeycapSymbols:
		d.kbd.SetActiveLayer(layout.LayerSymbols)
	case layout.KeycapABC:
		d.kbd.SetActiveLayer(layout.LayerLetters)
	}
}

// submit hands the passphrase to the unlocker, or finishes the loop in
// keyscript mode.
func (d *Dispatcher) submit() {
	if d.pass.Empty() || d.unl.UnlockRunning() {
		return
	}
	if d.keyscript {
		d.outcome = Finish
		return
	}
	b := d.pass.Bytes()
	d.unl.SetPassphrase(b)
	security.Wipe(b)
	if d.unl.Unlock() {
		d.lastRunning = true
		d.log.Info("unlock started", "glyphs", d.pass.Len())
	}
}

// KeyDown handles a physical key press.
func (d *Dispatcher) KeyDown(k Key, ctrl bool) Outcome {
	if !d.keys.Allow(d.now()) {
		return d.outcome
	}
	d.passwordError = false
	defer d.notify()

	if ctrl && k == KeyU {
		if !d.unl.UnlockRunning() {
			d.pass.Clear()
		}
		return d.outcome
	}
	switch k {
	case KeyReturn:
		d.submit()
	case KeyBackspace:
		if !d.unl.UnlockRunning() {
			d.pass.Pop()
		}
	case KeyEscape:
		d.outcome = Quit
	}
	return d.outcome
}

// TextInput appends typed text. Characters the on-screen keyboard cannot
// produce are dropped, as is text typed with Ctrl held.
func (d *Dispatcher) TextInput(text string, ctrl bool) {
	if ctrl || text == "" {
		return
	}
	d.passwordError = false
	if !d.text.Allow(d.now()) {
		return
	}
	if d.unl.UnlockRunning() {
		return
	}
	added := 0
	for _, r := range text {
		s := string(r)
		if !layout.Allowed(s) {
			d.log.Debug("dropping character outside the keyboard layout")
			continue
		}
		if d.pass.Append(s) {
			added++
		}
	}
	if added > 0 {
		d.notify()
	}
}

// Sync must be called once per frame. When an attempt has just finished
// with the volume still locked, it raises the password error, clears the
// passphrase and returns to the letter layer.
func (d *Dispatcher) Sync() {
	running := d.unl.UnlockRunning()
	if running == d.lastRunning {
		return
	}
	d.lastRunning = running
	if !running && d.unl.IsLocked() {
		d.passwordError = true
		d.pass.Clear()
		d.kbd.SetActiveLayer(layout.LayerLetters)
		d.notify()
	}
}

// PasswordError reports whether the last attempt failed and nothing has
// been typed since.
func (d *Dispatcher) PasswordError() bool { return d.passwordError }

// PassphraseLen returns the number of typed glyphs.
func (d *Dispatcher) PassphraseLen() int { return d.pass.Len() }

// Passphrase returns a copy of the typed passphrase. The caller must wipe
// it.
func (d *Dispatcher) Passphrase() []byte { return d.pass.Bytes() }

// Outcome returns the current loop outcome.
func (d *Dispatcher) Outcome() Outcome { return d.outcome }

// Close wipes the passphrase.
func (d *Dispatcher) Close() { d.pass.Destroy() }
