package entity

type RoundStatus string

const (
	RoundInProgress RoundStatus = "in_progress"
	RoundWon        RoundStatus = "won"
	RoundDraw       RoundStatus = "draw"
)

// RoundOutcome is InProgress, Won(Winner) with the winning Triple, or Draw.
type RoundOutcome struct {
	Status RoundStatus `json:"status"`
	Winner Mark        `json:"winner,omitempty"`
	Triple Triple      `json:"triple"`
}

func (that RoundOutcome) IsFinished() bool {
	return that.Status == RoundWon || that.Status == RoundDraw
}

type SeriesOutcome struct {
	Decided bool `json:"decided"`
	Winner  Mark `json:"winner,omitempty"`
}

type Score struct {
	X int `json:"X"`
	O int `json:"O"`
}

func (that Score) Of(mark Mark) int {
	switch mark {
	case X:
		return that.X
	case O:
		return that.O
	default:
		return 0
	}
}

func (that *Score) Increment(mark Mark) {
	switch mark {
	case X:
		that.X++
	case O:
		that.O++
	}
}

// Total is the number of rounds won by either player.
func (that Score) Total() int {
	return that.X + that.O
}

// Evaluate decides the series for the given mode.
func (that Score) Evaluate(mode MatchMode) SeriesOutcome {
	target, ok := mode.TargetWins()
	if !ok {
		return SeriesOutcome{}
	}

	for _, mark := range []Mark{X, O} {
		if that.Of(mark) >= target {
			return SeriesOutcome{Decided: true, Winner: mark}
		}
	}

	return SeriesOutcome{}
}
