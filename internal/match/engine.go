package match

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/rocketscienceinc/tictactoe-match/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-match/internal/entity"
)

const (
	DefaultAutoResetSeconds = 5
	DefaultTickInterval     = time.Second
)

// Listener receives engine events in emission order. It is called with the
// engine lock held and must not call back into the engine.
type Listener interface {
	OnEvent(event entity.Event)
}

type ListenerFunc func(event entity.Event)

func (that ListenerFunc) OnEvent(event entity.Event) {
	that(event)
}

type Options struct {
	Clock            clock.Clock
	Mode             entity.MatchMode
	AutoResetSeconds int
	TickInterval     time.Duration

	// State resumes a previous match instead of starting a fresh one.
	State *entity.MatchState
}

// Engine is the match state machine: board, turn, series score and the
// auto-reset countdown.
type Engine struct {
	logger *slog.Logger
	clock  clock.Clock

	autoResetSeconds int
	tickInterval     time.Duration

	mu          sync.Mutex
	board       entity.Board
	current     entity.Mark
	mode        entity.MatchMode
	score       entity.Score
	roundActive bool
	pending     *countdown
	listeners   []Listener
}

// WithDefaults returns the options with unset or non-positive values
// replaced by the package defaults.
func (that Options) WithDefaults() Options {
	if that.Clock == nil {
		that.Clock = clock.New()
	}

	if that.Mode == "" {
		that.Mode = entity.ModeSingle
	}

	if that.AutoResetSeconds <= 0 {
		that.AutoResetSeconds = DefaultAutoResetSeconds
	}

	if that.TickInterval <= 0 {
		that.TickInterval = DefaultTickInterval
	}

	return that
}

func NewEngine(logger *slog.Logger, opts Options, listeners ...Listener) *Engine {
	opts = opts.WithDefaults()

	state := opts.State
	if state == nil {
		state = entity.NewMatchState(opts.Mode)
	}

	engine := &Engine{
		logger:           logger.With("component", "match"),
		clock:            opts.Clock,
		autoResetSeconds: opts.AutoResetSeconds,
		tickInterval:     opts.TickInterval,
		board:            state.Board,
		current:          state.Current,
		mode:             state.Mode,
		score:            state.Score,
		roundActive:      state.RoundActive,
		listeners:        listeners,
	}

	if !engine.current.IsPlayer() {
		engine.current = entity.X
	}

	if _, err := entity.ParseMode(string(engine.mode)); err != nil {
		engine.mode = entity.ModeSingle
	}

	// a finished round that is not the end of a series was waiting for its
	// countdown when the state was captured
	if !engine.roundActive && !engine.evaluateSeries().Decided {
		engine.mu.Lock()
		engine.startAutoReset()
		engine.mu.Unlock()
	}

	return engine
}

// PlayCell places the current mark. Occupied cells and finished rounds are
// ignored and report InProgress without changing anything.
func (that *Engine) PlayCell(index int) (entity.RoundOutcome, error) {
	if index < 0 || index >= entity.BoardSize {
		return entity.RoundOutcome{}, fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, index)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if !that.roundActive || !that.board.IsEmpty(index) {
		that.logger.Debug("ignored move", "cell", index, "round_active", that.roundActive)
		return entity.RoundOutcome{Status: entity.RoundInProgress}, nil
	}

	mark := that.current
	that.board[index] = mark
	that.emit(entity.NewCellUpdated(index, mark))

	outcome := that.board.DetermineOutcome()

	switch outcome.Status {
	case entity.RoundWon:
		that.roundActive = false
		that.score.Increment(mark)
		that.emit(entity.NewRoundEnded(outcome))
		that.emit(entity.NewScoreChanged(that.score))
		that.afterRoundEnd()
	case entity.RoundDraw:
		that.roundActive = false
		that.emit(entity.NewRoundEnded(outcome))
		that.afterRoundEnd()
	default:
		that.current = mark.Other()
		that.emit(entity.NewTurnChanged(that.current))
	}

	return outcome, nil
}

// afterRoundEnd either announces the series winner or schedules the next
// round.
func (that *Engine) afterRoundEnd() {
	if series := that.evaluateSeries(); series.Decided {
		that.logger.Info("series decided", "winner", series.Winner, "mode", that.mode, "rounds_won", that.score.Of(series.Winner), "rounds", that.score.Total())
		that.emit(entity.NewSeriesDecided(series.Winner))
		return
	}

	that.startAutoReset()
}

func (that *Engine) EvaluateSeries() entity.SeriesOutcome {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.evaluateSeries()
}

func (that *Engine) evaluateSeries() entity.SeriesOutcome {
	return that.score.Evaluate(that.mode)
}

// StartAutoReset replaces any pending countdown with a fresh one.
func (that *Engine) StartAutoReset() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.startAutoReset()
}

func (that *Engine) startAutoReset() {
	that.cancelAutoReset()

	that.pending = startCountdown(that.clock, that.tickInterval, that.autoResetSeconds, that.handleTick)
	that.emit(entity.NewCountdownTick(that.autoResetSeconds))
}

func (that *Engine) handleTick(c *countdown, remaining int) {
	that.mu.Lock()
	defer that.mu.Unlock()

	// superseded or cancelled while the tick was in flight
	if that.pending != c {
		return
	}

	that.emit(entity.NewCountdownTick(remaining))

	if remaining == 0 {
		that.logger.Debug("auto reset fired")
		that.resetRound()
	}
}

func (that *Engine) cancelAutoReset() {
	if that.pending == nil {
		return
	}

	that.pending.stop()
	that.pending = nil
}

// ResetRound clears the board. A series that was already decided rolls over
// into a fresh one.
func (that *Engine) ResetRound() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.resetRound()
}

func (that *Engine) resetRound() {
	that.cancelAutoReset()

	if that.evaluateSeries().Decided {
		that.score = entity.Score{}
		that.emit(entity.NewScoreChanged(that.score))
	}

	that.board = entity.Board{}
	that.current = entity.X
	that.roundActive = true

	that.emit(entity.NewBoardCleared())
	that.emit(entity.NewStatusCleared())
	that.emit(entity.NewTurnChanged(that.current))
}

func (that *Engine) ResetSeries() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.resetSeries()
}

func (that *Engine) resetSeries() {
	that.cancelAutoReset()

	that.score = entity.Score{}
	that.emit(entity.NewScoreChanged(that.score))

	that.resetRound()
}

// SetMode switches the format and always starts a clean series.
func (that *Engine) SetMode(mode entity.MatchMode) error {
	if _, err := entity.ParseMode(string(mode)); err != nil {
		return err
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	that.mode = mode
	that.emit(entity.NewModeChanged(mode))
	that.resetSeries()

	return nil
}

// Subscribe adds a listener for events emitted from now on.
func (that *Engine) Subscribe(listener Listener) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.listeners = append(that.listeners, listener)
}

// Close cancels the pending countdown. The engine remains usable.
func (that *Engine) Close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.cancelAutoReset()
}

func (that *Engine) State() *entity.MatchState {
	that.mu.Lock()
	defer that.mu.Unlock()

	return &entity.MatchState{
		Board:       that.board,
		Current:     that.current,
		Mode:        that.mode,
		Score:       that.score,
		RoundActive: that.roundActive,
	}
}

func (that *Engine) Board() entity.Board {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.board
}

func (that *Engine) Current() entity.Mark {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.current
}

func (that *Engine) Mode() entity.MatchMode {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.mode
}

func (that *Engine) Score() entity.Score {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.score
}

func (that *Engine) RoundActive() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.roundActive
}

func (that *Engine) CountdownPending() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.pending != nil
}

func (that *Engine) emit(event entity.Event) {
	for _, listener := range that.listeners {
		listener.OnEvent(event)
	}
}
