package handlers

import (
	"context"
	"testing"

	"github.com/aretw0/lathe/pkg/domain"
	"github.com/aretw0/lathe/pkg/export"
	"github.com/aretw0/lathe/pkg/host"
	"github.com/aretw0/lathe/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext() *host.Context {
	return host.NewContext(host.NewDesign("Test"))
}

// call resolves an action from a fresh catalog and invokes it.
func call(t *testing.T, ec *host.Context, action string, params map[string]any) (map[string]any, error) {
	t.Helper()
	reg, err := Catalog(export.New(t.TempDir()))
	require.NoError(t, err)
	h, ok := reg.Resolve(action)
	require.True(t, ok, "action %q not registered", action)
	out, err := h(context.Background(), ec, params)
	if err != nil {
		return nil, err
	}
	m, ok := out.(map[string]any)
	require.True(t, ok, "handler %q returned %T, want map", action, out)
	return m, nil
}

func TestCatalogRegistersAllDomains(t *testing.T) {
	reg, err := Catalog(export.New(t.TempDir()))
	require.NoError(t, err)

	for _, action := range []string{
		"ping", "message",
		"new_design", "design_info",
		"set_parameter", "rename_parameter", "delete_parameter",
		"create_sketch", "create_sketch_on_face", "draw_line",
		"draw_rectangle", "draw_circle", "add_constraint_midpoint",
		"get_sketch_constraints",
		"extrude", "fillet", "hole", "loft", "list_profiles",
		"create_offset_plane", "create_plane_at_angle",
		"list_components", "create_component", "activate_component",
		"ground_component", "list_joints", "create_joint",
		"create_as_built_joint",
		"export_session",
	} {
		_, ok := reg.Resolve(action)
		assert.True(t, ok, "missing action %q", action)
	}
}

func TestRegisterTableRejectsDuplicates(t *testing.T) {
	reg := registry.New()
	require.NoError(t, registerTable(reg, Basic()))

	err := registerTable(reg, Basic())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateAction)
}

func TestDecodeWeakTyping(t *testing.T) {
	// JSON numbers arrive as float64; ints and strings should still land.
	var p struct {
		Count  int     `json:"count"`
		Factor float64 `json:"factor"`
		Name   string  `json:"name"`
	}
	err := decode(map[string]any{
		"count":  float64(3),
		"factor": "2.5",
		"name":   "box",
		"extra":  true,
	}, &p)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Count)
	assert.Equal(t, 2.5, p.Factor)
	assert.Equal(t, "box", p.Name)
}

func TestPingEchoesMessage(t *testing.T) {
	ec := newTestContext()

	out, err := call(t, ec, "ping", nil)
	require.NoError(t, err)
	assert.Equal(t, "pong", out["message"])
	assert.NotEmpty(t, out["timestamp"])

	out, err = call(t, ec, "ping", map[string]any{"message": "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", out["message"])
}

func TestMessageRequiresText(t *testing.T) {
	ec := newTestContext()

	_, err := call(t, ec, "message", nil)
	require.Error(t, err)

	out, err := call(t, ec, "message", map[string]any{"text": "building a bracket"})
	require.NoError(t, err)
	assert.Equal(t, "building a bracket", out["message"])
}

func TestNewDesignReplacesDocument(t *testing.T) {
	ec := newTestContext()
	_, err := call(t, ec, "create_sketch", nil)
	require.NoError(t, err)

	out, err := call(t, ec, "new_design", map[string]any{"name": "Bracket"})
	require.NoError(t, err)
	assert.Equal(t, "Bracket", out["design_name"])

	info, err := call(t, ec, "design_info", nil)
	require.NoError(t, err)
	assert.Equal(t, "Bracket", info["name"])
	assert.Equal(t, 0, info["sketch_count"])
}
