package extlog

import (
	"log/slog"
	"slices"
	"strconv"
)

// LevelCritical is the level of Critical logs, above slog.LevelError.
const LevelCritical = slog.Level(12)

// LevelName returns the name of the level as shown in templates: DEBUG,
// INFO, WARNING, ERROR and CRITICAL, levels in between use slog's
// "INFO+2" form.
func LevelName(l slog.Level) string {
	switch l {
	case slog.LevelDebug:
		return "DEBUG"
	case slog.LevelInfo:
		return "INFO"
	case slog.LevelWarn:
		return "WARNING"
	case slog.LevelError:
		return "ERROR"
	case LevelCritical:
		return "CRITICAL"
	}
	if l > LevelCritical {
		return "CRITICAL+" + strconv.Itoa(int(l-LevelCritical))
	}
	return l.String()
}

const (
	// Color codes for terminal output.
	black   = "\033[30m"
	red     = "\033[31m"
	green   = "\033[32m"
	yellow  = "\033[33m"
	blue    = "\033[34m"
	magenta = "\033[35m"
	cyan    = "\033[36m"
	white   = "\033[37m"
	reset   = "\033[0m"

	boldRed = "\033[1;31m"
)

type lvlEscape struct {
	slog.Level
	string
}

var levelColorList []lvlEscape

func init() {
	UseDefaultLevelColors()
}

// colorLevelName returns the level name wrapped in its color escape.
func colorLevelName(l slog.Level) string {
	var mode lvlEscape
	for _, mode = range levelColorList {
		if l >= mode.Level {
			break
		}
	}
	return mode.string + LevelName(l) + reset
}

// UseDefaultLevelColors resets the level colors to the default configuration.
func UseDefaultLevelColors() {
	levelColorList = []lvlEscape{
		{LevelCritical, boldRed},
		{slog.LevelError, red},
		{slog.LevelWarn, yellow},
		{slog.LevelInfo, blue},
		{slog.LevelDebug, magenta},
	}
}

// SetLevelColor adds (or overwrites) the color used for levelcolor in
// templates for a given level, or anything above it and up to the next level.
func SetLevelColor(l slog.Level, escape string) {
	// levelColorList is kept in descending order and replaced as a whole,
	// readers see either the old or the new slice.
	newMode := lvlEscape{l, escape}
	newList := slices.Clone(levelColorList)

	targetPos := slices.IndexFunc(newList, func(mode lvlEscape) bool {
		return l >= mode.Level
	})

	if targetPos == -1 {
		newList = append(newList, newMode)
	} else if newList[targetPos].Level == l {
		newList[targetPos] = newMode
	} else {
		newList = slices.Insert(newList, targetPos, newMode)
	}

	levelColorList = newList
}
