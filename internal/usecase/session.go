package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-match/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-match/internal/entity"
	"github.com/rocketscienceinc/tictactoe-match/internal/match"
	"github.com/rocketscienceinc/tictactoe-match/internal/repository"
)

type matchRepo interface {
	CreateOrUpdate(ctx context.Context, sessionID string, state *entity.MatchState) error
	GetByID(ctx context.Context, sessionID string) (*entity.MatchState, error)
	DeleteByID(ctx context.Context, sessionID string) error
}

// SessionManager builds one engine per browser session and keeps its
// snapshot in the repository.
type SessionManager struct {
	logger    *slog.Logger
	matchRepo matchRepo

	options   match.Options
	listeners []match.Listener
}

// NewSessionManager takes engine options shared by every session and
// listeners attached to every engine.
func NewSessionManager(logger *slog.Logger, matchRepo matchRepo, options match.Options, listeners ...match.Listener) *SessionManager {
	return &SessionManager{
		logger:    logger.With("component", "sessions"),
		matchRepo: matchRepo,
		options:   options,
		listeners: listeners,
	}
}

// Open resumes the session's match or starts a new one. A snapshot that
// cannot be read is logged and replaced by a fresh match; a corrupted one is
// also deleted.
func (that *SessionManager) Open(ctx context.Context, sessionID string, listeners ...match.Listener) (*match.Engine, error) {
	log := that.logger.With("method", "Open", "session", sessionID)

	if sessionID == "" {
		return nil, apperror.ErrEmptySessionID
	}

	options := that.options

	state, err := that.matchRepo.GetByID(ctx, sessionID)
	switch {
	case err == nil:
		options.State = state
		log.Info("match resumed", "mode", state.Mode, "score", state.Score, "rounds_won", state.Score.Total())
	case errors.Is(err, repository.ErrMatchNotFound):
		log.Info("new match")
	case errors.Is(err, repository.ErrMatchCorrupted):
		log.Warn("dropping corrupted match", "error", err)

		if err = that.Forget(ctx, sessionID); err != nil {
			log.Error("failed to drop corrupted match", "error", err)
		}
	default:
		log.Warn("failed to load match, starting a new one", "error", err)
	}

	all := make([]match.Listener, 0, len(that.listeners)+len(listeners))
	all = append(all, that.listeners...)
	all = append(all, listeners...)

	return match.NewEngine(that.logger, options, all...), nil
}

// Save stores the engine's current state under the session.
func (that *SessionManager) Save(ctx context.Context, sessionID string, engine *match.Engine) error {
	if sessionID == "" {
		return apperror.ErrEmptySessionID
	}

	if err := that.matchRepo.CreateOrUpdate(ctx, sessionID, engine.State()); err != nil {
		return fmt.Errorf("failed to save match: %w", err)
	}

	return nil
}

// Close stops the engine's countdown and stores its final state.
func (that *SessionManager) Close(ctx context.Context, sessionID string, engine *match.Engine) error {
	engine.Close()

	if err := that.Save(ctx, sessionID, engine); err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}

	return nil
}

// Forget drops the session's snapshot.
func (that *SessionManager) Forget(ctx context.Context, sessionID string) error {
	if err := that.matchRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to forget session: %w", err)
	}

	return nil
}
