package sysutil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func keepLogging(t *testing.T) {
	t.Helper()
	level, logger := zerolog.GlobalLevel(), log.Logger
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(level)
		log.Logger = logger
	})
}

func TestSetLogLevel(t *testing.T) {
	keepLogging(t)
	cases := map[string]zerolog.Level{
		"debug":     zerolog.DebugLevel,
		"  DeBuG  ": zerolog.DebugLevel,
		"trace":     zerolog.TraceLevel,
		"info":      zerolog.InfoLevel,
		"":          zerolog.InfoLevel,
		"WARN":      zerolog.WarnLevel,
		"warning":   zerolog.WarnLevel,
		"error":     zerolog.ErrorLevel,
		"fatal":     zerolog.FatalLevel,
		"panic":     zerolog.PanicLevel,
		"verbose":   zerolog.InfoLevel,
	}
	for in, want := range cases {
		zerolog.SetGlobalLevel(zerolog.Disabled)
		SetLogLevel(in)
		if got := zerolog.GlobalLevel(); got != want {
			t.Fatalf("SetLogLevel(%q) = %v; want %v", in, got, want)
		}
	}
}

func TestConfigureLogger(t *testing.T) {
	keepLogging(t)

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		ConfigureLogger("warn", false, "contactd", &buf)
		log.Info().Msg("dropped")
		log.Warn().Msg("kept")

		out := buf.String()
		if strings.Contains(out, "dropped") {
			t.Fatalf("info line passed the warn level: %s", out)
		}
		for _, want := range []string{`"service":"contactd"`, `"message":"kept"`, `"time":`} {
			if !strings.Contains(out, want) {
				t.Fatalf("output lacks %s: %s", want, out)
			}
		}
	})

	t.Run("console", func(t *testing.T) {
		var buf bytes.Buffer
		l := ConfigureLogger("debug", true, "contactd", &buf)
		l.Debug().Msg("pretty line")
		if strings.Contains(buf.String(), `"message"`) || !strings.Contains(buf.String(), "pretty line") {
			t.Fatalf("expected console output, got %s", buf.String())
		}
	})
}

func TestFirstNonEmpty(t *testing.T) {
	cases := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{" ", "\t", "\n"}, ""},
		{[]string{"   ", "  v1.2.0  ", "dev"}, "  v1.2.0  "},
		{[]string{"v1.0.0", "dev"}, "v1.0.0"},
	}
	for _, tc := range cases {
		if got := FirstNonEmpty(tc.in...); got != tc.want {
			t.Fatalf("FirstNonEmpty(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}
