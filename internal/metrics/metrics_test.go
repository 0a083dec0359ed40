package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/lathe/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestHooksFeedCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnPoll(ctx, &domain.PollEvent{New: true})
	hooks.OnPoll(ctx, &domain.PollEvent{})
	hooks.OnPoll(ctx, &domain.PollEvent{})
	hooks.OnHandoff(ctx, &domain.HandoffEvent{CommandID: 1})
	hooks.OnHandoff(ctx, &domain.HandoffEvent{CommandID: 2, Dropped: true})
	hooks.OnResult(ctx, &domain.ResultEvent{Action: "ping", Success: true, Duration: 5 * time.Millisecond})
	hooks.OnResult(ctx, &domain.ResultEvent{Action: "extrude", Error: "boom", Duration: time.Millisecond})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.polls.WithLabelValues("true")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.polls.WithLabelValues("false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.handoffs.WithLabelValues("raised")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.handoffs.WithLabelValues("dropped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commands.WithLabelValues("ping", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commands.WithLabelValues("extrude", "failure")))
}

func TestMergedHooksRunBoth(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	var logged int
	merged := domain.LifecycleHooks{
		OnResult: func(context.Context, *domain.ResultEvent) { logged++ },
	}.Merge(m.Hooks())

	merged.OnResult(context.Background(), &domain.ResultEvent{Action: "ping", Success: true})
	assert.Equal(t, 1, logged)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commands.WithLabelValues("ping", "success")))

	// Merging with an empty set keeps the original hooks.
	alone := domain.LifecycleHooks{}.Merge(m.Hooks())
	assert.NotNil(t, alone.OnPoll)
	assert.NotNil(t, alone.OnResult)
	assert.Nil(t, alone.OnDispatch)
}
