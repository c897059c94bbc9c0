package websocket

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-match/internal/entity"
	"github.com/rocketscienceinc/tictactoe-match/internal/i18n"
	"github.com/rocketscienceinc/tictactoe-match/internal/match"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 30 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 64
)

// client is one browser connection bound to one engine.
type client struct {
	logger    *slog.Logger
	sessionID string
	conn      *websocket.Conn
	presenter *i18n.Presenter
	engine    *match.Engine

	send  chan []byte
	saves chan struct{}
	done  chan struct{}
	once  sync.Once

	mu       sync.RWMutex
	language string

	// messages queued before the connect message go out after it
	queueMu sync.Mutex
	ready   bool
	held    []outgoing
}

type outgoing struct {
	action string
	data   []byte
}

func newClient(logger *slog.Logger, sessionID string, conn *websocket.Conn, presenter *i18n.Presenter, language string) *client {
	return &client{
		logger:    logger.With("session", sessionID),
		sessionID: sessionID,
		conn:      conn,
		presenter: presenter,
		send:      make(chan []byte, sendBuffer),
		saves:     make(chan struct{}, 1),
		done:      make(chan struct{}),
		language:  language,
	}
}

func (that *client) Language() string {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.language
}

func (that *client) SetLanguage(language string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.language = language
}

// OnEvent forwards engine events to the browser. It runs under the engine
// lock, so it only queues.
func (that *client) OnEvent(event entity.Event) {
	payload := EventPayload{Event: event}
	if status, ok := that.presenter.EventStatus(that.Language(), event); ok {
		payload.Status = &status
	}

	that.enqueue(string(event.Kind), payload)
}

func (that *client) enqueue(action string, payload any) {
	data, err := encode(action, payload)
	if err != nil {
		that.logger.Error("failed to encode message", "action", action, "error", err)
		return
	}

	that.queueMu.Lock()
	defer that.queueMu.Unlock()

	if !that.ready {
		if len(that.held) >= sendBuffer {
			that.logger.Warn("send buffer full, dropping message", "action", action)
			return
		}

		that.held = append(that.held, outgoing{action: action, data: data})
		return
	}

	that.deliver(outgoing{action: action, data: data})
}

// start queues the first message and releases everything held back before it.
func (that *client) start(action string, payload any) {
	data, err := encode(action, payload)
	if err != nil {
		that.logger.Error("failed to encode message", "action", action, "error", err)
		return
	}

	that.queueMu.Lock()
	defer that.queueMu.Unlock()

	that.ready = true
	that.deliver(outgoing{action: action, data: data})

	for _, message := range that.held {
		that.deliver(message)
	}
	that.held = nil
}

func (that *client) deliver(message outgoing) {
	select {
	case <-that.done:
	case that.send <- message.data:
	default:
		that.logger.Warn("send buffer full, dropping message", "action", message.action)
	}
}

// requestSave asks the save loop for a snapshot. Requests coalesce.
func (that *client) requestSave() {
	select {
	case that.saves <- struct{}{}:
	default:
	}
}

func (that *client) sendState() {
	state := that.engine.State()
	language := that.Language()

	that.enqueue(actionState, StatePayload{
		Session:  that.sessionID,
		State:    state,
		Language: language,
		LangTag:  i18n.HTMLTag(language),
		Status:   that.presenter.StateStatus(language, state),
	})
}

func (that *client) sendError(err error) {
	that.enqueue(actionError, ErrorPayload{Error: err.Error()})
}

// readPump delivers incoming messages to handle until the connection fails.
func (that *client) readPump(handle func(data []byte)) {
	that.conn.SetReadLimit(maxMessageSize)
	_ = that.conn.SetReadDeadline(time.Now().Add(pongWait))
	that.conn.SetPongHandler(func(string) error {
		return that.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := that.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				that.logger.Warn("connection closed unexpectedly", "error", err)
			}
			return
		}

		handle(data)
	}
}

func (that *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = that.conn.Close()
	}()

	for {
		select {
		case <-that.done:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = that.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case data := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				that.logger.Error("failed to write message", "error", err)
				return
			}
		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (that *client) close() {
	that.once.Do(func() {
		close(that.done)
	})
}
