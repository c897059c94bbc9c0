package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe-match/internal/entity"
)

const (
	actionConnect     = "connect"
	actionState       = "state"
	actionError       = "error"
	actionCellPlay    = "cell:play"
	actionRoundReset  = "round:reset"
	actionSeriesReset = "series:reset"
	actionModeSet     = "mode:set"
	actionLanguageSet = "language:set"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RequestPayload struct {
	Cell     *int   `json:"cell,omitempty"`
	Mode     string `json:"mode,omitempty"`
	Language string `json:"language,omitempty"`
}

type StatePayload struct {
	Session  string             `json:"session"`
	State    *entity.MatchState `json:"state"`
	Language string             `json:"language"`
	LangTag  string             `json:"lang_tag"`
	Status   string             `json:"status"`
}

// EventPayload carries one engine event. Status is set only when the event
// changes the status line.
type EventPayload struct {
	Event  entity.Event `json:"event"`
	Status *string      `json:"status,omitempty"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

func encode(action string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Message{Action: action, Payload: raw})
}
