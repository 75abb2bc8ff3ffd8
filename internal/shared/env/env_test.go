package env

import (
	"log/slog"
	"testing"
	"time"
)

func TestFallbacks(t *testing.T) {
	t.Setenv("ITDESK_INT", "nope")
	t.Setenv("ITDESK_DUR", "5 minutes")
	t.Setenv("ITDESK_LEVEL", "loud")
	t.Setenv("ITDESK_CSV", " , ,")
	t.Setenv("ITDESK_STR", "   ")

	if got := Int("ITDESK_INT", 7); got != 7 {
		t.Fatalf("Int: expected default 7, got %d", got)
	}
	if got := Duration("ITDESK_DUR", time.Second); got != time.Second {
		t.Fatalf("Duration: expected default, got %v", got)
	}
	if got := Level("ITDESK_LEVEL", slog.LevelWarn); got != slog.LevelWarn {
		t.Fatalf("Level: expected default, got %v", got)
	}
	if got := StringsCSV("ITDESK_CSV", []string{"x"}); len(got) != 1 || got[0] != "x" {
		t.Fatalf("StringsCSV: expected default, got %v", got)
	}
	if got := String("ITDESK_STR", "def"); got != "def" {
		t.Fatalf("String: expected default, got %q", got)
	}
}

func TestParsed(t *testing.T) {
	t.Setenv("ITDESK_INT", " 42 ")
	t.Setenv("ITDESK_DUR", "250ms")
	t.Setenv("ITDESK_LEVEL", "ERROR")
	t.Setenv("ITDESK_CSV", "a, b ,,c")

	if got := Int("ITDESK_INT", 0); got != 42 {
		t.Fatalf("Int: expected 42, got %d", got)
	}
	if got := Duration("ITDESK_DUR", 0); got != 250*time.Millisecond {
		t.Fatalf("Duration: expected 250ms, got %v", got)
	}
	if got := Level("ITDESK_LEVEL", slog.LevelInfo); got != slog.LevelError {
		t.Fatalf("Level: expected error, got %v", got)
	}
	if got := StringsCSV("ITDESK_CSV", nil); len(got) != 3 || got[2] != "c" {
		t.Fatalf("StringsCSV: unexpected %v", got)
	}
}
