// Package ui runs the unlock screen: a Gio window showing the passphrase
// box, the on-screen keyboard and the status tooltips.
package ui

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"gioui.org/app"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"osk/internal/config"
	"osk/internal/device"
	"osk/internal/glyph"
	"osk/internal/input"
	"osk/internal/keyboard"
	"osk/internal/logging"
	"osk/internal/unlock"
)

// Options configures an App.
type Options struct {
	Config   *config.Config
	Unlocker *unlock.Coordinator
	// Keyscript finishes on Return instead of unlocking; the caller prints
	// the passphrase.
	Keyscript bool
	// TestMode keeps the pointer cursor visible.
	TestMode bool
	// ShowOSK is whether the on-screen keyboard starts visible.
	ShowOSK bool
	// Detector, when set, is watched for keyboards being plugged in or
	// removed.
	Detector *device.Detector
	Logger   *slog.Logger
}

// App is the unlock screen. Run drives it from the window's event loop; all
// other methods are for use after Run returns.
type App struct {
	opts  Options
	cfg   *config.Config
	unl   *unlock.Coordinator
	log   *slog.Logger
	start time.Time

	window   *app.Window
	renderer *Renderer
	theme    *Theme
	face     *glyph.Face
	dotFace  *glyph.Face
	kbd      *keyboard.Keyboard
	disp     *input.Dispatcher
	toggle   *Toggle
	box      *InputBox
	watcher  *device.Watcher

	enterTip, errorTip, unlockingTip *Tooltip

	outcome input.Outcome
}

// New creates the app. Nothing is built until the first frame, when the
// screen size is known.
func New(opts Options) *App {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	return &App{
		opts:     opts,
		cfg:      opts.Config,
		unl:      opts.Unlocker,
		log:      log,
		renderer: NewRenderer(),
	}
}

// WindowOptions returns the window options for the screen: fullscreen, or a
// phone-sized window in test mode.
func WindowOptions(testMode bool) []app.Option {
	if testMode {
		return []app.Option{app.Title("osk"), app.Size(480, 800)}
	}
	return []app.Option{app.Title("osk"), app.Fullscreen.Option(), app.Decorated(false)}
}

// Run processes window events until the volume is unlocked, the user quits,
// or Return is pressed in keyscript mode. Cancelling ctx closes the window.
func (a *App) Run(ctx context.Context, w *app.Window) error {
	a.window = w
	a.start = time.Now()

	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
			w.Perform(system.ActionClose)
		case <-stopped:
		}
	}()

	var ops op.Ops
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			a.outcome = input.Quit
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			if err := a.frame(ctx, gtx); err != nil {
				return err
			}
			e.Frame(gtx.Ops)
			if a.done() {
				return nil
			}
		}
	}
}

func (a *App) done() bool {
	if !a.unl.IsLocked() {
		return true
	}
	a.outcome = a.disp.Outcome()
	return a.outcome != input.Continue
}

// Outcome reports how Run ended.
func (a *App) Outcome() input.Outcome { return a.outcome }

// Passphrase returns a copy of the typed passphrase. The caller must wipe
// it.
func (a *App) Passphrase() []byte {
	if a.disp == nil {
		return nil
	}
	return a.disp.Passphrase()
}

// Close stops the keyboard watcher and wipes the passphrase.
func (a *App) Close() error {
	var err error
	if a.watcher != nil {
		err = a.watcher.Close()
	}
	if a.disp != nil {
		a.disp.Close()
	}
	for _, f := range []*glyph.Face{a.face, a.dotFace} {
		if f != nil {
			f.Close()
		}
	}
	return err
}

func (a *App) setup(ctx context.Context, screen image.Point) error {
	th, err := NewTheme(a.cfg, screen, a.opts.ShowOSK)
	if err != nil {
		return err
	}
	if th.ClampedRadius {
		a.log.Warn("inputbox-radius must be below bezier resolution and 2/3 of the box height",
			"radius", a.cfg.InputBoxRadius, "height", th.Metrics.InputSize.Y)
	}
	a.theme = th
	m, p := th.Metrics, th.Palette

	if a.face, err = glyph.Load(a.cfg.KeyboardFont, a.cfg.KeyboardFontSize); err != nil {
		return err
	}
	a.kbd = keyboard.New(keyboard.Config{
		Width:      screen.X,
		Height:     m.KeyboardHeight,
		KeyRadius:  a.cfg.KeyRadius,
		Colors:     p.Keyboard,
		Animations: a.cfg.Animations,
	}, a.face, keyboard.WithLogger(a.log), keyboard.WithPosition(0, 1))
	if err := a.kbd.Init(a.renderer); err != nil {
		return fmt.Errorf("init keyboard: %w", err)
	}

	var dots TextRenderer
	if size := DotSize(m.InputSize.Y); size > 0 && a.cfg.InputBoxDotGlyph != "" {
		if a.dotFace, err = glyph.Load(a.cfg.KeyboardFont, size); err != nil {
			return err
		}
		dots = a.dotFace
	}
	if a.box, err = NewInputBox(a.renderer, m.InputSize, m.InputRadius, p.InputBox, p.InputText, dots, a.cfg.InputBoxDotGlyph); err != nil {
		return fmt.Errorf("init input box: %w", err)
	}

	if a.errorTip, err = NewTooltip(a.renderer, a.face, m.InputSize, m.InputRadius, p.Error, p.ErrorText, ErrorText); err != nil {
		return fmt.Errorf("init tooltip: %w", err)
	}
	if a.enterTip, err = NewTooltip(a.renderer, a.face, m.InputSize, m.InputRadius, p.InputBox, p.InputText, EnterPassText); err != nil {
		return fmt.Errorf("init tooltip: %w", err)
	}
	if a.unlockingTip, err = NewTooltip(a.renderer, a.face, m.InputSize, m.InputRadius, p.InputBox, p.InputText, UnlockingDiskText); err != nil {
		return fmt.Errorf("init tooltip: %w", err)
	}
	if a.toggle, err = NewToggle(a.renderer, a.face, m.Toggle, p.InputBox, p.InputText, a.log); err != nil {
		return fmt.Errorf("init keyboard toggle: %w", err)
	}
	a.toggle.SetVisible(!a.opts.ShowOSK)

	a.disp = input.New(a.kbd, a.unl,
		input.WithKeyscript(a.opts.Keyscript),
		input.WithRepeatDelay(time.Duration(a.cfg.RepeatDelayMs)*time.Millisecond),
		input.WithNotify(a.window.Invalidate),
		input.WithToggle(a.toggle),
		input.WithLogger(a.log),
	)

	if a.opts.Detector != nil {
		a.watcher, err = a.opts.Detector.Watch(ctx, func(present bool) {
			a.toggle.SetVisible(present)
			a.window.Invalidate()
		})
		if err != nil {
			a.log.Warn("keyboard hotplug detection disabled", "error", err)
		}
	}
	a.log.Debug("screen ready", "width", screen.X, "height", screen.Y, "keyboard_height", m.KeyboardHeight)
	return nil
}

func (a *App) frame(ctx context.Context, gtx layout.Context) error {
	if a.kbd == nil {
		if err := a.setup(ctx, gtx.Constraints.Max); err != nil {
			return err
		}
		gtx.Execute(key.FocusCmd{Tag: a})
	}
	a.renderer.Begin(gtx.Ops)

	area := clip.Rect{Max: gtx.Constraints.Max}.Push(gtx.Ops)
	event.Op(gtx.Ops, a)
	if !a.opts.TestMode {
		pointer.CursorNone.Add(gtx.Ops)
	}
	a.handlePointer(gtx)
	a.handleKeys(gtx)
	area.Pop()

	a.drainResults()
	a.disp.Sync()
	a.draw(gtx)
	return nil
}

func (a *App) drainResults() {
	select {
	case res := <-a.unl.Results():
		if res.Err != nil {
			a.log.Info("unlock failed", "elapsed", res.Elapsed, "error", res.Err)
		} else {
			a.log.Info("volume unlocked", "elapsed", res.Elapsed)
		}
	default:
	}
}

func (a *App) handlePointer(gtx layout.Context) {
	h := a.theme.Metrics.Screen.Y
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: a,
			Kinds:  pointer.Press | pointer.Release | pointer.Cancel,
		})
		if !ok {
			break
		}
		e, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		x, y := int(e.Position.X), int(e.Position.Y)
		switch e.Kind {
		case pointer.Press:
			a.disp.TapBegin(x, y, h)
		case pointer.Release:
			a.disp.TapEnd(x, y, h)
		case pointer.Cancel:
			a.kbd.ClearHighlight()
		}
	}
}

func (a *App) handleKeys(gtx layout.Context) {
	for {
		ev, ok := gtx.Event(
			key.FocusFilter{Target: a},
			key.Filter{Name: key.NameReturn},
			key.Filter{Name: key.NameEnter},
			key.Filter{Name: key.NameDeleteBackward},
			key.Filter{Name: key.NameEscape},
			key.Filter{Name: "U", Required: key.ModCtrl},
		)
		if !ok {
			break
		}
		switch e := ev.(type) {
		case key.Event:
			if e.State != key.Press {
				continue
			}
			a.disp.KeyDown(keyFor(e.Name), e.Modifiers.Contain(key.ModCtrl))
		case key.EditEvent:
			a.disp.TextInput(e.Text, false)
		}
	}
}

func keyFor(name key.Name) input.Key {
	switch name {
	case key.NameReturn, key.NameEnter:
		return input.KeyReturn
	case key.NameDeleteBackward:
		return input.KeyBackspace
	case key.NameEscape:
		return input.KeyEscape
	case "U":
		return input.KeyU
	}
	return input.KeyOther
}

// draw paints one frame. Without animations the keyboard goes first so the
// input box is placed against its final position; with animations it goes
// last so the key highlight is never covered.
func (a *App) draw(gtx layout.Context) {
	paint.Fill(gtx.Ops, a.theme.Palette.Wallpaper)

	r := a.renderer
	h := a.theme.Metrics.Screen.Y
	running := a.unl.UnlockRunning()
	animations := a.cfg.Animations
	osk := !a.toggle.Visible()

	target := 1.0
	if running {
		target = 0
	}
	if a.kbd.TargetPosition() != target {
		a.log.Debug("keyboard sliding", "from", a.kbd.Position(), "to", target)
		a.kbd.SetTargetPosition(target)
	}

	if !animations && osk {
		a.kbd.Draw(r, h)
	}
	top := h
	if osk {
		top = a.kbd.Top(h)
	}
	rect := a.theme.Metrics.InputRect(top, osk)
	switch {
	case a.disp.PasswordError():
		a.errorTip.Draw(r, rect.Min)
	case a.disp.PassphraseLen() == 0:
		a.enterTip.Draw(r, rect.Min)
	case running && !animations:
		a.unlockingTip.Draw(r, rect.Min)
	default:
		a.box.Draw(r, rect, a.disp.PassphraseLen(), running && animations, time.Since(a.start))
	}
	if !osk {
		a.toggle.Draw(r)
	}
	if animations && osk {
		a.kbd.Draw(r, h)
	}

	if animations && (running || (osk && a.kbd.InSlideAnimation())) {
		gtx.Execute(op.InvalidateCmd{})
	}
}
