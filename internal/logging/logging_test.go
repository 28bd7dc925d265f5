package logging

import (
	"log/slog"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level   string
		wantLvl slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"info", slog.LevelInfo, false},
		{"INFO", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"Error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tc := range tests {
		t.Run("level "+tc.level, func(t *testing.T) {
			lvl, err := ParseLogLevel(tc.level)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseLogLevel(%q) expected error", tc.level)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseLogLevel(%q) error: %v", tc.level, err)
			}

			if lvl != tc.wantLvl {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tc.level, lvl, tc.wantLvl)
			}
		})
	}
}
