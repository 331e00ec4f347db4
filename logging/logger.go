package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel   = "SAVINGS_LOG_LEVEL"
	EnvLogNoColor = "SAVINGS_LOG_NOCOLOR"
)

type Options struct {
	Level     zerolog.Level
	NoColor   bool
	Timestamp bool
	Out       io.Writer
}

func DefaultOptions() Options {
	return Options{
		Level:     zerolog.InfoLevel,
		Timestamp: true,
	}
}

// TestOptions keeps test output quiet unless SAVINGS_LOG_LEVEL says otherwise.
func TestOptions() Options {
	return Options{
		Level:   zerolog.Disabled,
		NoColor: true,
	}
}

// Configure builds the console logger for app, installs it as the global
// zerolog logger and returns it. Environment overrides win over opts.
func Configure(app string, opts Options) zerolog.Logger {
	applyEnvOverrides(&opts, os.Getenv)

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	writer := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    opts.NoColor,
		TimeFormat: time.RFC3339,
	}
	ctx := zerolog.New(writer).Level(opts.Level).With().Str("app", app)
	if opts.Timestamp {
		ctx = ctx.Timestamp()
	}
	logger := ctx.Logger()

	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	log.Logger = logger
	return logger
}

func applyEnvOverrides(opts *Options, getenv func(string) string) {
	if raw := getenv(EnvLogLevel); strings.TrimSpace(raw) != "" {
		if lvl, ok := ParseLevel(raw); ok {
			opts.Level = lvl
		}
	}
	if v, err := strconv.ParseBool(strings.TrimSpace(getenv(EnvLogNoColor))); err == nil {
		opts.NoColor = v
	}
}

// ParseLevel wraps zerolog.ParseLevel. Empty means info; "off" and "none"
// disable logging.
func ParseLevel(raw string) (zerolog.Level, bool) {
	name := strings.ToLower(strings.TrimSpace(raw))
	switch name {
	case "":
		return zerolog.InfoLevel, true
	case "off", "none":
		return zerolog.Disabled, true
	}
	lvl, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.InfoLevel, false
	}
	return lvl, true
}
