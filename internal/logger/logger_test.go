package logger

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap/zapcore"
)

func TestNewHonoursLevel(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		logger, err := New(env, "warn")
		if err != nil {
			t.Fatalf("Failed to create %s logger: %v", env, err)
		}

		if logger.Core().Enabled(zapcore.InfoLevel) {
			t.Errorf("%s logger at warn should not emit info", env)
		}
		if !logger.Core().Enabled(zapcore.ErrorLevel) {
			t.Errorf("%s logger at warn should emit error", env)
		}
	}
}

func TestProperty_KnownLevelsRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("known level names parse to themselves", prop.ForAll(
		func(level string) bool {
			return ParseLevel(level).String() == level
		},
		gen.OneConstOf("debug", "info", "warn", "error", "dpanic", "panic", "fatal"),
	))

	properties.Property("unknown level names fall back to info", prop.ForAll(
		func(level string) bool {
			return ParseLevel("x-"+level) == zapcore.InfoLevel
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
