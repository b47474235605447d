package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Output: &buf, Component: ComponentRepository})
	l.Info("Batch added", FieldBatchID, "b1")
	out := buf.String()
	if !strings.Contains(out, "component=repository") || !strings.Contains(out, "batch_id=b1") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestLogErrorAndHTTPEnd(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Output: &buf, Component: ComponentHTTP})
	ctx := context.Background()

	l.LogError(ctx, "Store write failed", errors.New("boom"), OpCreate, nil)
	r := httptest.NewRequest("GET", "/?q=neet", nil)
	l.LogHTTPEnd(ctx, r, 502, 12, "127.0.0.1")

	out := buf.String()
	for _, want := range []string{"error=boom", "operation=create", "status_code=502", "level=ERROR"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestFromContextFallsBack(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected fallback logger")
	}
	l := Wrap(slog.Default(), ComponentAuth)
	if got := FromContext(IntoContext(context.Background(), l)); got.Component() != ComponentAuth {
		t.Fatalf("got component %q", got.Component())
	}
}
