package i18n

import (
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-match/internal/entity"
)

// Presenter renders the status line for events and states. It never looks at
// the engine, only at the data it is handed.
type Presenter struct {
	catalog *Catalog
}

func NewPresenter(catalog *Catalog) *Presenter {
	return &Presenter{catalog: catalog}
}

func (that *Presenter) Catalog() *Catalog {
	return that.catalog
}

// EventStatus returns the status line an event produces, and false when the
// event leaves the status line untouched.
func (that *Presenter) EventStatus(lang string, event entity.Event) (string, bool) {
	switch event.Kind {
	case entity.EventTurnChanged:
		return that.Turn(lang, event.Mark), true
	case entity.EventRoundEnded:
		if event.Outcome == nil {
			return "", false
		}
		return that.Outcome(lang, *event.Outcome), true
	case entity.EventCountdownTick:
		if event.Remaining == nil {
			return "", false
		}
		return that.Countdown(lang, *event.Remaining), true
	case entity.EventSeriesDecided:
		return that.Series(lang, event.Mark), true
	case entity.EventStatusCleared:
		return "", true
	default:
		return "", false
	}
}

// StateStatus is the status line for a freshly rendered board.
func (that *Presenter) StateStatus(lang string, state *entity.MatchState) string {
	if state.RoundActive {
		return that.Turn(lang, state.Current)
	}

	if series := state.Series(); series.Decided {
		return that.Series(lang, series.Winner)
	}

	return that.Outcome(lang, state.Board.DetermineOutcome())
}

func (that *Presenter) Turn(lang string, mark entity.Mark) string {
	return join(that.text(lang, KeyCurrentPlayerTurn), that.Player(lang, mark))
}

func (that *Presenter) Outcome(lang string, outcome entity.RoundOutcome) string {
	switch outcome.Status {
	case entity.RoundWon:
		return join(that.text(lang, KeyWinner), that.Player(lang, outcome.Winner), that.text(lang, KeyGameWon))
	case entity.RoundDraw:
		return that.text(lang, KeyDraw)
	default:
		return ""
	}
}

func (that *Presenter) Countdown(lang string, remaining int) string {
	return join(that.text(lang, KeyStartingNewGame), strconv.Itoa(remaining), that.text(lang, KeySeconds))
}

func (that *Presenter) Series(lang string, winner entity.Mark) string {
	return join(that.Player(lang, winner), that.text(lang, KeySeriesWon))
}

func (that *Presenter) Player(lang string, mark entity.Mark) string {
	switch mark {
	case entity.X:
		return that.text(lang, KeyPlayerX)
	case entity.O:
		return that.text(lang, KeyPlayerO)
	default:
		return ""
	}
}

func (that *Presenter) text(lang, key string) string {
	return that.catalog.Text(lang, key)
}

func join(parts ...string) string {
	return strings.Join(parts, " ")
}
