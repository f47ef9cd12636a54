// FILE: lixenwraith/motherboard/cmd/mbsim/settings.go
package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/lixenwraith/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lixenwraith/motherboard"
)

// Settings holds the simulator configuration. Sources in increasing priority:
// defaults, mbsim.toml, MBSIM_ environment variables, "--" arguments after the
// command, explicitly set command flags.
type Settings struct {
	Definition string `toml:"definition"`
	Values     string `toml:"values"`
	Scenario   string `toml:"scenario"`
	Overrides  string `toml:"overrides"` // "param:socket,param:socket"

	Render struct {
		SampleRate  int  `toml:"sample_rate"`
		Channel     int  `toml:"channel"`
		InitialDiff bool `toml:"initial_batch"`
	} `toml:"render"`

	Log struct {
		Verbosity   int  `toml:"verbosity"`
		Development bool `toml:"development"`
	} `toml:"log"`
}

func defaultSettings() *Settings {
	s := &Settings{}
	s.Render.SampleRate = 48000
	s.Render.InitialDiff = true
	s.Log.Development = true
	return s
}

// loadSettings builds the settings from the config file, environment and
// extra arguments. A missing config file is not an error.
func loadSettings(file string, args []string) (*Settings, error) {
	settings := defaultSettings()
	err := config.NewBuilder().
		WithDefaults(settings).
		WithEnvPrefix("MBSIM_").
		WithFile(file).
		WithArgs(args).
		BuildAndScan(settings)
	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

// parseOverrides parses "param:socket" pairs into param -> socket.
func parseOverrides(spec string) (map[string]string, error) {
	overrides := make(map[string]string)
	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		param, socket, ok := strings.Cut(pair, ":")
		if !ok || param == "" || socket == "" {
			return nil, fmt.Errorf("invalid override %q, expected param:socket", pair)
		}
		if _, dup := overrides[param]; dup {
			return nil, fmt.Errorf("parameter %q overridden twice", param)
		}
		overrides[param] = socket
	}
	return overrides, nil
}

// newLogger builds a zap logger behind logr. Verbosity 4 enables the
// motherboard debug output, 5 the per-diff trace.
func newLogger(s *Settings) (logr.Logger, func(), error) {
	var cfg zap.Config
	if s.Log.Development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	verbosity := motherboard.Clamp(s.Log.Verbosity, 0, motherboard.LevelTrace)
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-verbosity))

	zl, err := cfg.Build()
	if err != nil {
		return logr.Discard(), func() {}, fmt.Errorf("failed to build logger: %w", err)
	}
	return zapr.NewLogger(zl), func() { _ = zl.Sync() }, nil
}
