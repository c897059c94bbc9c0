package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-match/internal/apperror"
)

type MatchMode string

const (
	ModeSingle  MatchMode = "simple"
	ModeBestOf3 MatchMode = "best-of-3"
	ModeBestOf5 MatchMode = "best-of-5"
)

var Modes = []MatchMode{ModeSingle, ModeBestOf3, ModeBestOf5}

func ParseMode(value string) (MatchMode, error) {
	for _, mode := range Modes {
		if string(mode) == value {
			return mode, nil
		}
	}

	return "", fmt.Errorf("%w: %q", apperror.ErrUnknownMode, value)
}

// TargetWins returns the number of round wins that decides a series.
// Single mode never decides a series.
func (that MatchMode) TargetWins() (int, bool) {
	switch that {
	case ModeBestOf3:
		return 2, true
	case ModeBestOf5:
		return 3, true
	default:
		return 0, false
	}
}
