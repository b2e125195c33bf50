package ctxlog

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestFromContext_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "info")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := WithLogger(context.Background(), logger)
	FromContext(ctx).Info("registered project", "name", "my-api")

	out := buf.String()
	if !strings.Contains(out, "registered project") || !strings.Contains(out, "my-api") {
		t.Errorf("log output = %q, want message and field", out)
	}
}

func TestFromContext_MissingLoggerDiscards(t *testing.T) {
	logger := FromContext(context.Background())
	if logger == nil {
		t.Fatal("FromContext returned nil")
	}
	// Must not panic.
	logger.Warn("nobody is listening")
}

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantErr   bool
	}{
		{"", false, false},
		{"info", false, false},
		{"DEBUG", true, false},
		{"warn", false, false},
		{"verbose", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := New(&buf, tt.level)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("New(%q) expected error", tt.level)
				}
				return
			}
			if err != nil {
				t.Fatalf("New(%q): %v", tt.level, err)
			}

			logger.Debug("probe")
			if got := strings.Contains(buf.String(), "probe"); got != tt.wantDebug {
				t.Errorf("debug emitted = %v, want %v", got, tt.wantDebug)
			}
		})
	}
}
