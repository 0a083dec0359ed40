package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/lathe/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunChannelContract runs a suite of tests to verify that a Channel
// implementation adheres to the defined interface contract.
func RunChannelContract(t *testing.T, ch Channel) {
	ctx := context.Background()

	t.Run("Empty channel", func(t *testing.T) {
		_, err := ch.ReadCommand(ctx)
		assert.ErrorIs(t, err, domain.ErrNoCommand)

		_, err = ch.ReadResult(ctx)
		assert.ErrorIs(t, err, domain.ErrNoResult)

		_, err = ch.ReadStatus(ctx)
		assert.ErrorIs(t, err, domain.ErrNoStatus)
	})

	t.Run("Command roundtrip", func(t *testing.T) {
		cmd := &domain.Command{
			ID:     1,
			Action: "ping",
			Params: map[string]any{"message": "hello", "count": 42},
		}
		require.NoError(t, ch.WriteCommand(ctx, cmd))

		loaded, err := ch.ReadCommand(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), loaded.ID)
		assert.Equal(t, "ping", loaded.Action)
		assert.Equal(t, "hello", loaded.Params["message"])
		// JSON persistence converts numbers to float64; only existence matters here.
		assert.NotNil(t, loaded.Params["count"])
	})

	t.Run("Command overwrite wins", func(t *testing.T) {
		require.NoError(t, ch.WriteCommand(ctx, &domain.Command{ID: 2, Action: "first"}))
		require.NoError(t, ch.WriteCommand(ctx, &domain.Command{ID: 3, Action: "second"}))

		loaded, err := ch.ReadCommand(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), loaded.ID)
		assert.Equal(t, "second", loaded.Action)
	})

	t.Run("Result roundtrip", func(t *testing.T) {
		require.NoError(t, ch.WriteResult(ctx, domain.OK(3, map[string]any{"ok": true})))

		loaded, err := ch.ReadResult(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), loaded.ID)
		assert.True(t, loaded.Success)
		assert.Nil(t, loaded.Error)

		require.NoError(t, ch.WriteResult(ctx, domain.Fail(4, "boom")))

		loaded, err = ch.ReadResult(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(4), loaded.ID)
		assert.False(t, loaded.Success)
		assert.Nil(t, loaded.Result)
		assert.Equal(t, "boom", loaded.ErrorMessage())
	})

	t.Run("Status roundtrip", func(t *testing.T) {
		st := &domain.Status{
			State:           domain.StateIdle,
			LastProcessedID: 41,
			InstanceID:      "contract-test",
			Timestamp:       time.Now().UTC(),
		}
		require.NoError(t, ch.WriteStatus(ctx, st))

		loaded, err := ch.ReadStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.StateIdle, loaded.State)
		assert.Equal(t, int64(41), loaded.LastProcessedID)
		assert.Equal(t, "contract-test", loaded.InstanceID)
	})
}
