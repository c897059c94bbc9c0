package entity

// MatchState is a point-in-time copy of an engine, used for rendering a
// full board on connect and for session snapshots.
type MatchState struct {
	Board       Board     `json:"board"`
	Current     Mark      `json:"current"`
	Mode        MatchMode `json:"mode"`
	Score       Score     `json:"score"`
	RoundActive bool      `json:"round_active"`
}

func NewMatchState(mode MatchMode) *MatchState {
	return &MatchState{
		Current:     X,
		Mode:        mode,
		RoundActive: true,
	}
}

func (that *MatchState) Series() SeriesOutcome {
	return that.Score.Evaluate(that.Mode)
}
