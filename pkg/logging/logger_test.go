package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf)

	logger.Info().Str("clinic_id", "SJ26-0001").Msg("page rendered")

	out := buf.String()
	if !strings.Contains(out, `"clinic_id":"SJ26-0001"`) {
		t.Errorf("expected structured field in output, got %q", out)
	}
	if !strings.Contains(out, `"message":"page rendered"`) {
		t.Errorf("expected message in output, got %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"off", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	if FromContext(context.Background()) != Default() {
		t.Error("empty context should return the default logger")
	}
	var nilCtx context.Context
	if FromContext(nilCtx) != Default() {
		t.Error("nil context should return the default logger")
	}
}

func TestWithClinicPropagatesField(t *testing.T) {
	tl := NewTestLogger(t)
	ctx := WithLogger(context.Background(), tl.Logger)
	ctx = WithClinic(ctx, "SJ26-0042")

	Ctx(ctx).Info().Msg("delivering")

	if !tl.Contains("SJ26-0042") {
		t.Errorf("expected clinic_id field in output, got %q", tl.Output())
	}
}

func TestWithStageAndFieldAccumulate(t *testing.T) {
	tl := NewTestLogger(t)
	ctx := WithLogger(context.Background(), tl.Logger)
	ctx = WithField(ctx, "year", 2026)
	ctx = WithStage(ctx, "render")

	Ctx(ctx).Info().Msg("rendering pages")

	out := tl.Output()
	if !strings.Contains(out, `"stage":"render"`) {
		t.Errorf("expected stage field in output, got %q", out)
	}
	if !strings.Contains(out, `"year":2026`) {
		t.Errorf("expected year field in output, got %q", out)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNopLogger()
	logger.Error().Msg("never seen")

	if logger.GetLevel() != zerolog.Disabled {
		t.Errorf("nop logger level = %v, want disabled", logger.GetLevel())
	}
}
