package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-match/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-match/internal/entity"
	"github.com/rocketscienceinc/tictactoe-match/internal/i18n"
	"github.com/rocketscienceinc/tictactoe-match/internal/match"
)

const (
	sessionCookie = "user_session"
	sessionMaxAge = 24 * time.Hour
	closeTimeout  = 5 * time.Second
)

type sessions interface {
	Open(ctx context.Context, sessionID string, listeners ...match.Listener) (*match.Engine, error)
	Save(ctx context.Context, sessionID string, engine *match.Engine) error
	Close(ctx context.Context, sessionID string, engine *match.Engine) error
}

type sessionMetrics interface {
	SessionOpened()
	SessionClosed()
}

type Server struct {
	logger    *slog.Logger
	sessions  sessions
	presenter *i18n.Presenter
	metrics   sessionMetrics
	upgrader  websocket.Upgrader

	handlers map[string]func(ctx context.Context, c *client, msg *Message) error

	clientsMutex sync.Mutex
	clients      map[*client]struct{}
}

func New(logger *slog.Logger, sessions sessions, presenter *i18n.Presenter, metrics sessionMetrics) *Server {
	server := &Server{
		logger:    logger.With("component", "websocket"),
		sessions:  sessions,
		presenter: presenter,
		metrics:   metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},

		handlers: make(map[string]func(context.Context, *client, *Message) error),
		clients:  make(map[*client]struct{}),
	}

	server.handlers[actionState] = server.handleState
	server.handlers[actionCellPlay] = server.handleCellPlay
	server.handlers[actionRoundReset] = server.handleRoundReset
	server.handlers[actionSeriesReset] = server.handleSeriesReset
	server.handlers[actionModeSet] = server.handleModeSet
	server.handlers[actionLanguageSet] = server.handleLanguageSet

	return server
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", that.Handler(ctx))

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down server", "error", err)
		}

		that.closeClients()
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Handler upgrades requests to WebSocket sessions bound to ctx.
func (that *Server) Handler(ctx context.Context) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, req *http.Request) {
		that.serve(ctx, writer, req)
	})
}

func (that *Server) serve(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serve")

	sessionID, header := that.sessionCookie(req)
	catalog := that.presenter.Catalog()
	language := catalog.Negotiate(req.URL.Query().Get("lang"), req.Header.Get("Accept-Language"))

	conn, err := that.upgrader.Upgrade(writer, req, header)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := newClient(that.logger, sessionID, conn, that.presenter, language)

	engine, err := that.sessions.Open(ctx, sessionID, c)
	if err != nil {
		log.Error("failed to open session", "session", sessionID, "error", err)
		_ = conn.Close()
		return
	}

	c.engine = engine

	// resets fired by the countdown have no command behind them to save
	engine.Subscribe(match.ListenerFunc(func(event entity.Event) {
		if event.Kind == entity.EventBoardCleared {
			c.requestSave()
		}
	}))

	that.register(c)
	defer that.unregister(ctx, c)

	log.Info("WebSocket connection established", "session", sessionID, "language", language)

	go c.writePump()
	go that.savePump(ctx, c)

	state := engine.State()
	c.start(actionConnect, StatePayload{
		Session:  sessionID,
		State:    state,
		Language: language,
		LangTag:  i18n.HTMLTag(language),
		Status:   that.presenter.StateStatus(language, state),
	})

	c.readPump(func(data []byte) {
		that.handleMessage(ctx, c, data)
	})
}

// savePump stores the session every time the client asks for it until the
// connection is closed.
func (that *Server) savePump(ctx context.Context, c *client) {
	for {
		select {
		case <-c.done:
			return
		case <-c.saves:
			saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
			that.save(saveCtx, c)
			cancel()
		}
	}
}

// handleMessage - processes one message from the client.
func (that *Server) handleMessage(ctx context.Context, c *client, data []byte) {
	log := c.logger.With("method", "handleMessage")

	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		log.Error("failed to unmarshal message", "error", err)
		c.sendError(fmt.Errorf("invalid message: %w", err))
		return
	}

	handler, ok := that.handlers[message.Action]
	if !ok {
		log.Warn("unknown action", "action", message.Action)
		c.sendError(fmt.Errorf("%w: %q", apperror.ErrUnknownAction, message.Action))
		return
	}

	if err := handler(ctx, c, &message); err != nil {
		log.Error("error processing message", "action", message.Action, "error", err)
		c.sendError(err)
	}
}

// sessionCookie - returns the user session and the header that sets it when
// the request carries none.
func (that *Server) sessionCookie(req *http.Request) (string, http.Header) {
	log := that.logger.With("method", "sessionCookie")

	if cookie, err := req.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		log.Debug("session cookie found", "cookie", cookie.Value)
		return cookie.Value, nil
	}

	cookie := &http.Cookie{
		Name:     sessionCookie,
		Value:    uuid.NewString(),
		Expires:  time.Now().Add(sessionMaxAge),
		Path:     "/ws",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	log.Info("session cookie not found, new one created", "cookie", cookie.Value)

	return cookie.Value, http.Header{"Set-Cookie": {cookie.String()}}
}

func (that *Server) register(c *client) {
	that.clientsMutex.Lock()
	that.clients[c] = struct{}{}
	that.clientsMutex.Unlock()

	if that.metrics != nil {
		that.metrics.SessionOpened()
	}
}

func (that *Server) unregister(ctx context.Context, c *client) {
	that.clientsMutex.Lock()
	delete(that.clients, c)
	that.clientsMutex.Unlock()

	c.close()

	if that.metrics != nil {
		that.metrics.SessionClosed()
	}

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()

	if err := that.sessions.Close(closeCtx, c.sessionID, c.engine); err != nil {
		c.logger.Error("failed to close session", "error", err)
	}

	c.logger.Info("WebSocket connection closed")
}

func (that *Server) closeClients() {
	that.clientsMutex.Lock()
	defer that.clientsMutex.Unlock()

	for c := range that.clients {
		c.close()
	}
}
