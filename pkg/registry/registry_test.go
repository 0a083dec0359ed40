package registry_test

import (
	"context"
	"testing"

	"github.com/aretw0/lathe/pkg/domain"
	"github.com/aretw0/lathe/pkg/host"
	"github.com/aretw0/lathe/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(ctx context.Context, ec *host.Context, params map[string]any) (any, error) {
	return nil, nil
}

func TestRegistry_RegisterAndResolve(t *testing.T) {
	r := registry.New()

	require.NoError(t, r.Register("ping", noop))
	require.NoError(t, r.Register("extrude", noop))

	h, ok := r.Resolve("ping")
	assert.True(t, ok)
	assert.NotNil(t, h)

	_, ok = r.Resolve("frobnicate")
	assert.False(t, ok)

	assert.Equal(t, 2, r.Len())
}

func TestRegistry_DuplicateIsRejected(t *testing.T) {
	r := registry.New()

	require.NoError(t, r.Register("ping", noop))

	err := r.Register("ping", noop)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateAction)
	assert.Contains(t, err.Error(), "ping")

	// The first registration stays in place.
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_RejectsEmptyNameAndNilHandler(t *testing.T) {
	r := registry.New()

	assert.Error(t, r.Register("", noop))
	assert.Error(t, r.Register("ping", nil))
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_NamesAreSorted(t *testing.T) {
	r := registry.New()

	for _, name := range []string{"extrude", "ping", "create_sketch"} {
		require.NoError(t, r.Register(name, noop))
	}

	assert.Equal(t, []string{"create_sketch", "extrude", "ping"}, r.Names())
}
