package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rocketscienceinc/tictactoe-match/internal/entity"
)

const namespace = "tictactoe"

// Metrics counts engine events. One instance is shared by all sessions and
// subscribed to every engine.
type Metrics struct {
	moves          prometheus.Counter
	rounds         *prometheus.CounterVec
	seriesDecided  *prometheus.CounterVec
	autoResets     prometheus.Counter
	sessionsActive prometheus.Gauge

	countdownFrom int
}

// New registers the collectors on reg. countdownFrom is the first tick of an
// auto-reset countdown.
func New(reg prometheus.Registerer, countdownFrom int) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		countdownFrom: countdownFrom,
		moves: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_total",
			Help:      "Legal moves played.",
		}),
		rounds: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_total",
			Help:      "Finished rounds by outcome.",
		}, []string{"outcome"}),
		seriesDecided: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "series_decided_total",
			Help:      "Decided series by winner.",
		}, []string{"winner"}),
		autoResets: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auto_resets_started_total",
			Help:      "Auto-reset countdowns started.",
		}),
		sessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Open WebSocket sessions.",
		}),
	}
}

func (that *Metrics) OnEvent(event entity.Event) {
	switch event.Kind {
	case entity.EventCellUpdated:
		that.moves.Inc()
	case entity.EventRoundEnded:
		if event.Outcome == nil {
			return
		}
		that.rounds.WithLabelValues(outcomeLabel(*event.Outcome)).Inc()
	case entity.EventSeriesDecided:
		that.seriesDecided.WithLabelValues(strings.ToLower(string(event.Mark))).Inc()
	case entity.EventCountdownTick:
		if event.Remaining != nil && *event.Remaining == that.countdownFrom {
			that.autoResets.Inc()
		}
	}
}

func (that *Metrics) SessionOpened() {
	that.sessionsActive.Inc()
}

func (that *Metrics) SessionClosed() {
	that.sessionsActive.Dec()
}

func outcomeLabel(outcome entity.RoundOutcome) string {
	if outcome.Status == entity.RoundDraw {
		return "draw"
	}

	return strings.ToLower(string(outcome.Winner))
}
