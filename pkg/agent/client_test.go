package agent

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/lathe/internal/adapters/memory"
	"github.com/aretw0/lathe/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextIDSeedsFromWatermark(t *testing.T) {
	ctx := context.Background()
	ch := memory.New()

	st := domain.NewStatus("run-1")
	st.LastProcessedID = 41
	require.NoError(t, ch.WriteStatus(ctx, st))

	c := New(ch)
	id, err := c.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	id, err = c.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(43), id)
}

func TestNextIDConsidersPendingCommand(t *testing.T) {
	ctx := context.Background()
	ch := memory.New()

	// A previous client wrote id 10 that the bridge has not consumed yet.
	st := domain.NewStatus("run-1")
	st.LastProcessedID = 5
	require.NoError(t, ch.WriteStatus(ctx, st))
	require.NoError(t, ch.WriteCommand(ctx, &domain.Command{ID: 10, Action: "ping"}))

	id, err := New(ch).NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
}

func TestNextIDFreshSession(t *testing.T) {
	id, err := New(memory.New()).NextID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestSendWritesCommand(t *testing.T) {
	ctx := context.Background()
	ch := memory.New()
	c := New(ch)

	id, err := c.Send(ctx, "draw_circle", map[string]any{"radius": 2})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	cmd, err := ch.ReadCommand(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cmd.ID)
	assert.Equal(t, "draw_circle", cmd.Action)

	_, err = c.Send(ctx, "", nil)
	require.Error(t, err)
}

func TestAwaitIgnoresStaleResults(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch := memory.New()
	c := New(ch, WithPollInterval(5*time.Millisecond))

	// A stale result from an earlier command sits on the channel.
	require.NoError(t, ch.WriteResult(ctx, domain.OK(1, nil)))

	go func() {
		time.Sleep(25 * time.Millisecond)
		_ = ch.WriteResult(ctx, domain.Fail(2, "boom"))
	}()

	res, err := c.Await(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.ID)
	assert.Equal(t, "boom", res.ErrorMessage())
}

func TestAwaitTimesOut(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := New(memory.New(), WithPollInterval(5*time.Millisecond))
	_, err := c.Await(ctx, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
