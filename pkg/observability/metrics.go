// Package observability provides ready-made telemetry for the Parley
// engine, built on the stage hook mechanism: hooks observe the pipeline,
// they never alter it.
package observability

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/pkg/domain"
)

// StageMetrics exports Prometheus metrics about turn execution: a
// counter per pipeline stage, a total turn counter and a turn duration
// histogram.
type StageMetrics struct {
	turnsTotal   prometheus.Counter
	stagesTotal  *prometheus.CounterVec
	turnDuration prometheus.Histogram

	mu      sync.Mutex
	started map[string]time.Time
}

// NewStageMetrics creates the collectors and registers them with reg.
func NewStageMetrics(reg prometheus.Registerer) *StageMetrics {
	m := &StageMetrics{
		turnsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parley_turns_total",
			Help: "Total number of completed dialogue turns",
		}),
		stagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parley_pipeline_stages_total",
			Help: "Total number of executed pipeline stages",
		}, []string{"stage"}),
		turnDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "parley_turn_duration_seconds",
			Help: "Duration of dialogue turns",
		}),
		started: make(map[string]time.Time),
	}
	reg.MustRegister(m.turnsTotal, m.stagesTotal, m.turnDuration)
	return m
}

// Attach registers a hook on every pipeline stage of the engine.
func (m *StageMetrics) Attach(engine *parley.Engine) {
	for _, stage := range parley.Stages {
		engine.OnStage(stage, m.hook(stage))
	}
}

func (m *StageMetrics) hook(stage parley.Stage) parley.StageHandler {
	return func(ctx context.Context, dc *domain.Context, rt domain.Runtime) {
		m.stagesTotal.WithLabelValues(string(stage)).Inc()

		switch stage {
		case parley.StageContextInit:
			m.mu.Lock()
			m.started[dc.ID] = time.Now()
			m.mu.Unlock()
		case parley.StageFinishTurn:
			m.mu.Lock()
			start, ok := m.started[dc.ID]
			delete(m.started, dc.ID)
			m.mu.Unlock()

			m.turnsTotal.Inc()
			if ok {
				m.turnDuration.Observe(time.Since(start).Seconds())
			}
		}
	}
}
