package extlog

import (
	"log/slog"
	"slices"
	"testing"
)

func TestLevelName(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  string
	}{
		{level: slog.LevelDebug, want: "DEBUG"},
		{level: slog.LevelDebug - 1, want: "DEBUG-1"},
		{level: slog.LevelInfo, want: "INFO"},
		{level: slog.LevelInfo + 2, want: "INFO+2"},
		{level: slog.LevelWarn, want: "WARNING"},
		{level: slog.LevelError, want: "ERROR"},
		{level: slog.LevelError + 2, want: "ERROR+2"},
		{level: LevelCritical, want: "CRITICAL"},
		{level: LevelCritical + 3, want: "CRITICAL+3"},
	}
	for _, test := range tests {
		if got := LevelName(test.level); got != test.want {
			t.Errorf("got %v, want %v", got, test.want)
		}
	}
}

func TestColorLevelName(t *testing.T) {
	tests := []struct {
		name  string
		level slog.Level
		want  string
	}{
		{
			name:  "debug",
			level: slog.LevelDebug,
			want:  "\033[35mDEBUG\033[0m",
		}, {
			name:  "debug-1",
			level: slog.LevelDebug - 1,
			want:  "\033[35mDEBUG-1\033[0m",
		}, {
			name:  "info",
			level: slog.LevelInfo,
			want:  "\033[34mINFO\033[0m",
		}, {
			name:  "info+5",
			level: slog.LevelInfo + 5,
			want:  "\033[33mWARN+1\033[0m",
		}, {
			name:  "warn",
			level: slog.LevelWarn,
			want:  "\033[33mWARNING\033[0m",
		}, {
			name:  "error",
			level: slog.LevelError,
			want:  "\033[31mERROR\033[0m",
		}, {
			name:  "critical",
			level: LevelCritical,
			want:  "\033[1;31mCRITICAL\033[0m",
		}, {
			name:  "error+100",
			level: slog.LevelError + 100,
			want:  "\033[1;31mCRITICAL+96\033[0m",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := colorLevelName(test.level); got != test.want {
				t.Errorf("got %q, want %q", got, test.want)
			}
		})
	}
}

func TestSetLevelColor(t *testing.T) {
	tests := []struct {
		name string
		val  slog.Level
		// The order we expect in output
		want []slog.Level
	}{
		{
			name: "above critical",
			val:  LevelCritical + 100,
			want: []slog.Level{
				LevelCritical + 100,
				LevelCritical,
				slog.LevelError,
				slog.LevelWarn,
				slog.LevelInfo,
				slog.LevelDebug,
			},
		},
		{
			name: "replace error",
			val:  slog.LevelError,
			want: []slog.Level{
				LevelCritical,
				slog.LevelError,
				slog.LevelWarn,
				slog.LevelInfo,
				slog.LevelDebug,
			},
		},
		{
			name: "in middle",
			val:  slog.LevelError - 2,
			want: []slog.Level{
				LevelCritical,
				slog.LevelError,
				slog.LevelError - 2,
				slog.LevelWarn,
				slog.LevelInfo,
				slog.LevelDebug,
			},
		},
		{
			name: "below debug",
			val:  slog.LevelDebug - 4,
			want: []slog.Level{
				LevelCritical,
				slog.LevelError,
				slog.LevelWarn,
				slog.LevelInfo,
				slog.LevelDebug,
				slog.LevelDebug - 4,
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			SetLevelColor(test.val, "<newcolor>")
			defer UseDefaultLevelColors()

			var got []slog.Level
			for _, mode := range levelColorList {
				got = append(got, mode.Level)
			}
			if !slices.Equal(got, test.want) {
				t.Errorf("got %v, want %v", got, test.want)
			}
			idx := slices.IndexFunc(levelColorList, func(mode lvlEscape) bool { return mode.Level == test.val })
			if levelColorList[idx].string != "<newcolor>" {
				t.Errorf("Expected to find new value at position %d, got %#v", idx, levelColorList[idx])
			}
		})
	}
}
