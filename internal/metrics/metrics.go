// Package metrics exposes the bridge's lifecycle as Prometheus collectors.
// The collectors attach through domain.LifecycleHooks, so the poller and
// dispatcher stay unaware of Prometheus.
package metrics

import (
	"context"

	"github.com/aretw0/lathe/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the bridge collectors.
type Metrics struct {
	polls     *prometheus.CounterVec
	handoffs  *prometheus.CounterVec
	commands  *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		polls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lathe_polls_total",
				Help: "Total poller ticks, by whether new work was found",
			},
			[]string{"new"},
		),
		handoffs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lathe_handoffs_total",
				Help: "Total cross-thread handoffs, by outcome",
			},
			[]string{"outcome"},
		),
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lathe_commands_total",
				Help: "Total processed commands, by action and outcome",
			},
			[]string{"action", "outcome"},
		),
		durations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "lathe_command_duration_seconds",
				Help: "Handler execution time, by action",
			},
			[]string{"action"},
		),
	}
	reg.MustRegister(m.polls, m.handoffs, m.commands, m.durations)
	return m
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPoll: func(_ context.Context, ev *domain.PollEvent) {
			m.polls.WithLabelValues(boolLabel(ev.New)).Inc()
		},
		OnHandoff: func(_ context.Context, ev *domain.HandoffEvent) {
			outcome := "raised"
			if ev.Dropped {
				outcome = "dropped"
			}
			m.handoffs.WithLabelValues(outcome).Inc()
		},
		OnResult: func(_ context.Context, ev *domain.ResultEvent) {
			outcome := "success"
			if !ev.Success {
				outcome = "failure"
			}
			m.commands.WithLabelValues(ev.Action, outcome).Inc()
			m.durations.WithLabelValues(ev.Action).Observe(ev.Duration.Seconds())
		},
	}
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
