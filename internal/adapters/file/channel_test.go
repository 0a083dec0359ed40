package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/lathe/pkg/domain"
	"github.com/aretw0/lathe/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelContract(t *testing.T) {
	ports.RunChannelContract(t, New(t.TempDir()))
}

func TestDefaultDir(t *testing.T) {
	ch := New("")
	assert.Equal(t, filepath.Join(".lathe", "bridge"), ch.Dir)
	assert.Equal(t, filepath.Join(".lathe", "bridge", "exports"), ch.SessionsDir())
}

func TestUnreadableCommandIsNoCommand(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	ch := New(dir)
	path := filepath.Join(dir, "commands.json")

	cases := map[string]string{
		"empty file":     "",
		"torn write":     `{"id": 4, "ac`,
		"not json":       "hello",
		"missing action": `{"id": 4}`,
		"zero id":        `{"id": 0, "action": "ping"}`,
		"negative id":    `{"id": -2, "action": "ping"}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
			_, err := ch.ReadCommand(ctx)
			assert.ErrorIs(t, err, domain.ErrNoCommand)
		})
	}
}

func TestCorruptStatusIsHardError(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	ch := New(dir)

	_, err := ch.ReadStatus(ctx)
	assert.ErrorIs(t, err, domain.ErrNoStatus)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "status.json"), []byte("{broken"), 0o644))
	_, err = ch.ReadStatus(ctx)
	assert.ErrorIs(t, err, domain.ErrCorruptStatus)
}

func TestWritesAreAtomicallyVisible(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	ch := New(dir)

	require.NoError(t, ch.WriteCommand(ctx, &domain.Command{ID: 1, Action: "ping"}))

	// A concurrent reader hammering the file while writes happen must only
	// ever observe complete documents.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := int64(2); i <= 50; i++ {
			_ = ch.WriteCommand(ctx, &domain.Command{
				ID:     i,
				Action: "ping",
				Params: map[string]any{"payload": string(make([]byte, 4096))},
			})
		}
	}()

	for {
		select {
		case <-done:
			cmd, err := ch.ReadCommand(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(50), cmd.ID)
			return
		default:
			cmd, err := ch.ReadCommand(ctx)
			if err == nil {
				assert.True(t, cmd.Valid(), "reader observed a torn command")
			} else {
				assert.ErrorIs(t, err, domain.ErrNoCommand)
			}
		}
	}
}

func TestNoTempFilesLeftBehind(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	ch := New(dir)

	for i := int64(1); i <= 10; i++ {
		require.NoError(t, ch.WriteCommand(ctx, &domain.Command{ID: i, Action: "ping"}))
		require.NoError(t, ch.WriteStatus(ctx, domain.NewStatus("test")))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), "tmp-", "leftover temp file %s", e.Name())
	}
}

func TestWatchSignalsOnCommandWrite(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	ch := New(dir)

	w, err := ch.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, ch.WriteCommand(ctx, &domain.Command{ID: 1, Action: "ping"}))
	select {
	case <-w:
	case <-time.After(2 * time.Second):
		t.Fatal("no watch signal after command write")
	}

	// Result and status writes are the bridge's own; they must not wake it.
	require.NoError(t, ch.WriteResult(ctx, domain.OK(1, nil)))
	require.NoError(t, ch.WriteStatus(ctx, domain.NewStatus("test")))
	select {
	case <-w:
		t.Fatal("watch signaled for a non-command write")
	case <-time.After(100 * time.Millisecond):
	}

	cancel()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, open := <-w:
			if !open {
				return
			}
		case <-deadline:
			t.Fatal("watch channel not closed on cancel")
		}
	}
}
