package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osk/internal/logging"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
		check   func(t *testing.T, o *options)
	}{
		{
			name: "device and name",
			args: []string{"-d", "/dev/sda2", "-n", "root"},
			check: func(t *testing.T, o *options) {
				assert.Equal(t, "/dev/sda2", o.devicePath)
				assert.Equal(t, "root", o.deviceName)
				assert.False(t, o.testMode)
			},
		},
		{
			name: "test mode fills in a device",
			args: []string{"--testmode"},
			check: func(t *testing.T, o *options) {
				assert.True(t, o.testMode)
				assert.Equal(t, testDevicePath, o.devicePath)
				assert.Equal(t, testDeviceName, o.deviceName)
				assert.Equal(t, "test", o.testPassphrase)
			},
		},
		{
			name: "test mode keeps an explicit device",
			args: []string{"-t", "-d", "/dev/vdb", "--test-passphrase", "hunter2"},
			check: func(t *testing.T, o *options) {
				assert.Equal(t, "/dev/vdb", o.devicePath)
				assert.Equal(t, testDeviceName, o.deviceName)
				assert.Equal(t, "hunter2", o.testPassphrase)
			},
		},
		{
			name: "long and short switches",
			args: []string{"-t", "-k", "--verbose", "-G", "--no-keyboard", "-c", "/boot/osk.toml", "-o", "/boot/override.conf"},
			check: func(t *testing.T, o *options) {
				assert.True(t, o.keyscript)
				assert.True(t, o.verbose)
				assert.True(t, o.noGLES)
				assert.True(t, o.noKeyboard)
				assert.Equal(t, "/boot/osk.toml", o.configPath)
				assert.Equal(t, "/boot/override.conf", o.overridePath)
			},
		},
		{
			name: "version needs no device",
			args: []string{"-V"},
			check: func(t *testing.T, o *options) {
				assert.True(t, o.version)
			},
		},
		{name: "missing device", args: []string{"-n", "root"}, wantErr: true},
		{name: "missing name", args: []string{"-d", "/dev/sda2"}, wantErr: true},
		{name: "unknown flag", args: []string{"-t", "--bogus"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := parseFlags(tt.args, io.Discard)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, o)
		})
	}
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger(&options{logLevel: "loud"})
	assert.Error(t, err)

	l, err := newLogger(&options{logLevel: "warn", verbose: true})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	mainPath := filepath.Join(dir, "osk.toml")
	require.NoError(t, os.WriteFile(mainPath, []byte("key-radius = 8\nanimations = false\n"), 0o600))
	override := filepath.Join(dir, "override.conf")
	require.NoError(t, os.WriteFile(override, []byte("animations = true\n"), 0o600))
	broken := filepath.Join(dir, "broken.conf")
	require.NoError(t, os.WriteFile(broken, []byte("animations = maybe\n"), 0o600))
	log := logging.Discard()

	cfg, err := loadConfig(&options{configPath: mainPath}, log)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.KeyRadius)
	assert.False(t, cfg.Animations)

	cfg, err = loadConfig(&options{configPath: mainPath, overridePath: override}, log)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.KeyRadius)
	assert.True(t, cfg.Animations)

	cfg, err = loadConfig(&options{configPath: mainPath, overridePath: broken}, log)
	require.NoError(t, err, "a broken override is ignored")
	assert.Equal(t, 8, cfg.KeyRadius)

	_, err = loadConfig(&options{configPath: filepath.Join(dir, "missing.toml")}, log)
	assert.Error(t, err, "an explicit config must exist")

	_, err = loadConfig(&options{configPath: broken}, log)
	assert.Error(t, err)
}

func TestLoadConfigMalformedRadius(t *testing.T) {
	path := filepath.Join(t.TempDir(), "osk.toml")
	require.NoError(t, os.WriteFile(path, []byte("key-radius = \"8px\"\n"), 0o600))

	cfg, err := loadConfig(&options{configPath: path}, logging.Discard())
	require.NoError(t, err, "a bad radius must not stop the unlock screen")
	assert.Equal(t, 0, cfg.KeyRadius)
	assert.Equal(t, []string{"key-radius"}, cfg.MalformedRadii)
}

func TestNewVolumeTestMode(t *testing.T) {
	logger := logging.New(logging.DefaultConfig())
	vol, err := newVolume(&options{testMode: true, testPassphrase: "pw"}, logger)
	require.NoError(t, err)
	assert.NotNil(t, vol)
}
