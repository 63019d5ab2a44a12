// osk - on-screen keyboard that unlocks an encrypted disk before boot
//
//	osk -d /dev/sda2 -n root    Unlock /dev/sda2 and map it as "root"
//	osk -t                      Test mode: windowed, simulated disk
//	osk -k -d ... -n ...        Keyscript: print the passphrase instead
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gioui.org/app"

	"osk/internal/config"
	"osk/internal/device"
	"osk/internal/input"
	"osk/internal/logging"
	"osk/internal/luks"
	"osk/internal/security"
	"osk/internal/ui"
	"osk/internal/unlock"
)

// Version is set at build time.
var Version = "dev"

// Device used by -t unless -d or -n say otherwise.
const (
	testDevicePath = "/tmp/osk-test.img"
	testDeviceName = "osk-test"
)

type options struct {
	devicePath     string
	deviceName     string
	configPath     string
	overridePath   string
	testMode       bool
	testPassphrase string
	keyscript      bool
	verbose        bool
	logLevel       string
	noGLES         bool
	noKeyboard     bool
	version        bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	o := &options{}
	flags := flag.NewFlagSet("osk", flag.ContinueOnError)
	flags.SetOutput(stderr)
	boolVar := func(p *bool, short, long, usage string) {
		flags.BoolVar(p, short, false, usage)
		flags.BoolVar(p, long, false, usage)
	}

	flags.StringVar(&o.devicePath, "d", "", "Encrypted device `path`")
	flags.StringVar(&o.deviceName, "n", "", "Device mapper `name` for the unlocked device")
	flags.StringVar(&o.configPath, "c", "", "Config `file` (default "+config.DefaultPath+")")
	flags.StringVar(&o.overridePath, "o", "", "Config `file` overriding options of -c")
	boolVar(&o.testMode, "t", "testmode", "Windowed test mode against a simulated disk")
	flags.StringVar(&o.testPassphrase, "test-passphrase", "test", "Passphrase of the simulated disk in test mode")
	boolVar(&o.keyscript, "k", "keyscript", "Print the passphrase to stdout instead of unlocking")
	boolVar(&o.verbose, "v", "verbose", "Debug logging")
	flags.StringVar(&o.logLevel, "log-level", "info", "Log `level`: debug, info, warn or error")
	boolVar(&o.noGLES, "G", "no-gles", "Accepted for compatibility; the GPU backend is picked automatically")
	boolVar(&o.noKeyboard, "x", "no-keyboard", "Start with the on-screen keyboard hidden")
	boolVar(&o.version, "V", "version", "Print the version and exit")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if o.version {
		return o, nil
	}
	if o.testMode {
		if o.devicePath == "" {
			o.devicePath = testDevicePath
		}
		if o.deviceName == "" {
			o.deviceName = testDeviceName
		}
	}
	if o.devicePath == "" {
		return nil, errors.New("no device path specified, use -d [path] or -t")
	}
	if o.deviceName == "" {
		return nil, errors.New("no device name specified, use -n [name] or -t")
	}
	return o, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "osk: %v\n", err)
		os.Exit(1)
	}
	if opts.version {
		fmt.Printf("osk v%s\n", Version)
		return
	}

	go func() {
		os.Exit(run(opts))
	}()
	app.Main()
}

func newLogger(opts *options) (*logging.Logger, error) {
	cfg := logging.DefaultConfig()
	level, err := logging.ParseLevel(opts.logLevel)
	if err != nil {
		return nil, err
	}
	cfg.Level = level
	if opts.verbose {
		cfg.Level = logging.LevelDebug
	}
	return logging.New(cfg), nil
}

// loadConfig reads the main config file and applies the override on top.
// A missing default file means defaults; a broken override is ignored.
func loadConfig(opts *options, log *slog.Logger) (*config.Config, error) {
	path := opts.configPath
	if path == "" {
		path = config.DefaultPath
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			if _, err := os.Stat(config.LegacyPath); err == nil {
				path = config.LegacyPath
			}
		}
	}

	cfg, err := config.Load(path)
	switch {
	case err == nil:
		log.Info("loaded config", "path", path)
	case opts.configPath == "" && errors.Is(err, fs.ErrNotExist):
		log.Info("no config file, using defaults", "path", path)
		cfg = config.DefaultConfig()
	default:
		return nil, err
	}

	if opts.overridePath != "" {
		if err := cfg.Apply(opts.overridePath); err != nil {
			log.Warn("ignoring config override", "path", opts.overridePath, "error", err)
		} else {
			log.Info("applied config override", "path", opts.overridePath)
		}
	}
	for _, key := range cfg.MalformedRadii {
		log.Warn("malformed radius, using 0", "option", key)
	}
	return cfg, nil
}

func newVolume(opts *options, log *logging.Logger) (unlock.Volume, error) {
	if !opts.testMode {
		return luks.NewCryptsetup(luks.WithLogger(log.WithComponent("luks"))), nil
	}
	pass := []byte(opts.testPassphrase)
	defer security.Wipe(pass)
	return luks.NewSimulated(pass)
}

func run(opts *options) int {
	logger, err := newLogger(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "osk: %v\n", err)
		return 1
	}
	logging.SetDefault(logger)
	log := logger.WithComponent("main")
	log.Info("starting osk", "version", Version, "log_level", logging.LevelString(logger.Level()))

	if err := security.Harden(); err != nil {
		log.Warn("process hardening incomplete", "error", err)
	}
	if security.TracerAttached() {
		log.Warn("process is being traced; typed passphrases may be exposed")
	}

	cfg, err := loadConfig(opts, log)
	if err != nil {
		log.Error("failed to read config", "error", err)
		return 1
	}
	if opts.noGLES {
		log.Info("--no-gles has no effect; the GPU backend is picked automatically")
	}

	showOSK := !opts.noKeyboard
	var detector *device.Detector
	if showOSK {
		detector = device.NewDetector(device.WithLogger(logger.WithComponent("device")))
		if detector.HasPhysicalKeyboard() {
			log.Info("physical keyboard found, hiding on-screen keyboard")
			showOSK = false
		}
	}

	volume, err := newVolume(opts, logger)
	if err != nil {
		log.Error("failed to set up volume", "error", err)
		return 1
	}

	w := new(app.Window)
	w.Option(ui.WindowOptions(opts.testMode)...)

	coord := unlock.New(volume, opts.deviceName, opts.devicePath,
		unlock.WithMinDuration(time.Duration(cfg.MinUnlockTimeMs)*time.Millisecond),
		unlock.WithNotify(w.Invalidate),
		unlock.WithLogger(logger.WithComponent("unlock")),
	)
	defer coord.Close()

	screen := ui.New(ui.Options{
		Config:    cfg,
		Unlocker:  coord,
		Keyscript: opts.keyscript,
		TestMode:  opts.testMode,
		ShowOSK:   showOSK,
		Detector:  detector,
		Logger:    logger.WithComponent("ui"),
	})
	defer screen.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := screen.Run(ctx, w); err != nil {
		log.Error("main loop failed", "error", err)
		return 1
	}

	switch {
	case !coord.IsLocked():
		log.Info("disk unlocked", "device", coord.DevicePath(), "name", coord.DeviceName())
		return 0
	case screen.Outcome() == input.Finish:
		pass := screen.Passphrase()
		defer security.Wipe(pass)
		if _, err := os.Stdout.Write(pass); err != nil {
			log.Error("failed to write passphrase", "error", err)
			return 1
		}
		return 0
	default:
		log.Info("quit requested")
		return 1
	}
}
