package entity

type EventKind string

const (
	EventCellUpdated   EventKind = "cell:updated"
	EventRoundEnded    EventKind = "round:ended"
	EventScoreChanged  EventKind = "score:changed"
	EventCountdownTick EventKind = "countdown:tick"
	EventSeriesDecided EventKind = "series:decided"
	EventStatusCleared EventKind = "status:cleared"
	EventTurnChanged   EventKind = "turn:changed"
	EventBoardCleared  EventKind = "board:cleared"
	EventModeChanged   EventKind = "mode:changed"
)

type CellChange struct {
	Index int  `json:"index"`
	Mark  Mark `json:"mark"`
}

// Event is a notification for the renderer. Only the fields that belong to
// Kind are set.
type Event struct {
	Kind      EventKind     `json:"kind"`
	Cell      *CellChange   `json:"cell,omitempty"`
	Outcome   *RoundOutcome `json:"outcome,omitempty"`
	Score     *Score        `json:"score,omitempty"`
	Remaining *int          `json:"remaining,omitempty"`
	Mark      Mark          `json:"mark,omitempty"`
	Mode      MatchMode     `json:"mode,omitempty"`
}

func NewCellUpdated(index int, mark Mark) Event {
	return Event{Kind: EventCellUpdated, Cell: &CellChange{Index: index, Mark: mark}}
}

func NewRoundEnded(outcome RoundOutcome) Event {
	return Event{Kind: EventRoundEnded, Outcome: &outcome}
}

func NewScoreChanged(score Score) Event {
	return Event{Kind: EventScoreChanged, Score: &score}
}

func NewCountdownTick(remaining int) Event {
	return Event{Kind: EventCountdownTick, Remaining: &remaining}
}

func NewSeriesDecided(winner Mark) Event {
	return Event{Kind: EventSeriesDecided, Mark: winner}
}

func NewStatusCleared() Event {
	return Event{Kind: EventStatusCleared}
}

func NewTurnChanged(current Mark) Event {
	return Event{Kind: EventTurnChanged, Mark: current}
}

func NewBoardCleared() Event {
	return Event{Kind: EventBoardCleared}
}

func NewModeChanged(mode MatchMode) Event {
	return Event{Kind: EventModeChanged, Mode: mode}
}
