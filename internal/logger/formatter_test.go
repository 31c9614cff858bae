package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func writeEvent(t *testing.T, fields map[string]any) string {
	t.Helper()
	var buf bytes.Buffer
	w := NewFixedFormatWriter(&buf)

	data, err := json.Marshal(fields)
	if err != nil {
		t.Fatal(err)
	}
	n, err := w.Write(data)
	if err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if n != len(data) {
		t.Errorf("Write returned %d, want %d", n, len(data))
	}
	return buf.String()
}

func TestFixedFormatWriter_BasicMessage(t *testing.T) {
	line := writeEvent(t, map[string]any{
		"level":     "info",
		"time":      "2026-10-17T12:00:00+02:00",
		"component": "main",
		"message":   "Report written",
		"path":      "rapport_etat_systeme.html",
	})

	want := "2026-10-17 12:00:00.000 [INF] [main           ] Report written path=rapport_etat_systeme.html\n"
	if line != want {
		t.Errorf("got  %q\nwant %q", line, want)
	}
}

func TestFixedFormatWriter_FractionalSeconds(t *testing.T) {
	line := writeEvent(t, map[string]any{
		"level":   "debug",
		"time":    "2026-10-17T12:00:01.123456789Z",
		"message": "Cycle completed",
	})
	if !strings.HasPrefix(line, "2026-10-17 12:00:01.123 [DBG]") {
		t.Errorf("unexpected prefix: %q", line)
	}
}

func TestFixedFormatWriter_QuotesValuesWithSpaces(t *testing.T) {
	line := writeEvent(t, map[string]any{
		"level":   "error",
		"time":    "2026-10-17T12:00:00Z",
		"message": "Cycle failed",
		"error":   "render failed: broken pipe",
		"caller":  "scheduler.go:42",
	})
	if !strings.Contains(line, `error="render failed: broken pipe"`) {
		t.Errorf("error field not quoted: %q", line)
	}
	if strings.Contains(line, "caller") {
		t.Errorf("caller should be dropped: %q", line)
	}
}

func TestFixedFormatWriter_TruncatesLongComponent(t *testing.T) {
	line := writeEvent(t, map[string]any{
		"level":     "warn",
		"time":      "2026-10-17T12:00:00Z",
		"component": "an-extremely-long-component-name",
		"message":   "m",
	})
	if !strings.Contains(line, "[an-extremely-lo]") {
		t.Errorf("component not truncated: %q", line)
	}
}

func TestFixedFormatWriter_UnknownLevelAndMissingTime(t *testing.T) {
	line := writeEvent(t, map[string]any{"level": "loud", "message": "m"})
	if !strings.HasPrefix(line, strings.Repeat(" ", 23)+" [???]") {
		t.Errorf("unexpected line: %q", line)
	}
}

func TestFixedFormatWriter_PassesThroughNonJSON(t *testing.T) {
	var buf bytes.Buffer
	w := NewFixedFormatWriter(&buf)
	if _, err := w.Write([]byte("plain text\n")); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "plain text\n" {
		t.Errorf("got %q", buf.String())
	}
}
