// Package sentences interprets parsed table records as practice sentences and
// selects the ones shown for a difficulty level.
package sentences

import (
	"errors"
	"fmt"
	"strings"
)

// Level is a difficulty selection.
type Level string

const (
	LevelBoth         Level = "both"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Levels lists every selectable level in display order.
var Levels = []Level{LevelBoth, LevelIntermediate, LevelAdvanced}

// ErrUnknownLevel is returned by ParseLevel for values outside Levels.
var ErrUnknownLevel = errors.New("unknown level")

// ParseLevel normalizes s (trim, lowercase) and checks it against Levels.
func ParseLevel(s string) (Level, error) {
	l := Level(Normalize(s))
	if !l.Valid() {
		return "", fmt.Errorf("%w: %q (valid: both, intermediate, advanced)", ErrUnknownLevel, s)
	}
	return l, nil
}

// Valid reports whether l is one of Levels.
func (l Level) Valid() bool {
	switch l {
	case LevelBoth, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// HasAudio reports whether the level has its own audio track.
func (l Level) HasAudio() bool {
	return l == LevelIntermediate || l == LevelAdvanced
}

// Next cycles through Levels.
func (l Level) Next() Level {
	for i, v := range Levels {
		if v == l {
			return Levels[(i+1)%len(Levels)]
		}
	}
	return LevelBoth
}

// Title is the label used on buttons and headings.
func (l Level) Title() string {
	switch l {
	case LevelBoth:
		return "Both"
	case LevelIntermediate:
		return "Intermediate"
	case LevelAdvanced:
		return "Advanced"
	}
	return string(l)
}

func (l Level) String() string {
	return string(l)
}

// Normalize trims and lowercases a level tag before comparison.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
