package handlers

import (
	"math"
	"testing"

	"github.com/aretw0/lathe/pkg/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sketchWithCircle sets up the usual extrude precondition: one sketch, one
// circular profile.
func sketchWithCircle(t *testing.T, ec *host.Context, radius float64) {
	t.Helper()
	_, err := call(t, ec, "create_sketch", nil)
	require.NoError(t, err)
	_, err = call(t, ec, "draw_circle", map[string]any{"radius": radius})
	require.NoError(t, err)
}

func TestExtrudeCylinderMetrics(t *testing.T) {
	ec := newTestContext()
	sketchWithCircle(t, ec, 1.0)

	out, err := call(t, ec, "extrude", map[string]any{"distance": 10.0})
	require.NoError(t, err)
	assert.Equal(t, 0, out["body_index"])
	assert.Equal(t, "Body1", out["body_name"])
	assert.InDelta(t, math.Pi*10, out["volume_cm3"].(float64), 1e-9)

	body, _, err := ec.BodyAt(0)
	require.NoError(t, err)
	assert.Len(t, body.Faces, 3)
	assert.Len(t, body.CircularEdges, 2)
	assert.Equal(t, 10.0, body.Box.Max.Z)
}

func TestExtrudeOperations(t *testing.T) {
	ec := newTestContext()
	sketchWithCircle(t, ec, 1.0)
	_, err := call(t, ec, "extrude", map[string]any{"distance": 10.0})
	require.NoError(t, err)

	out, err := call(t, ec, "extrude", map[string]any{"distance": 5.0, "operation": "join"})
	require.NoError(t, err)
	assert.Equal(t, 0, out["body_index"])
	assert.InDelta(t, math.Pi*15, out["volume_cm3"].(float64), 1e-9)

	out, err = call(t, ec, "extrude", map[string]any{"distance": 100.0, "operation": "cut"})
	require.NoError(t, err)
	// Cuts never drive volume negative.
	assert.Equal(t, 0.0, out["volume_cm3"])

	_, err = call(t, ec, "extrude", map[string]any{"distance": 1.0, "operation": "weld"})
	require.EqualError(t, err, "Unknown operation: weld. Use 'new', 'join', or 'cut'.")
}

func TestExtrudeValidation(t *testing.T) {
	ec := newTestContext()

	_, err := call(t, ec, "extrude", map[string]any{"distance": 0.0})
	require.Error(t, err)

	sketchWithCircle(t, ec, 1.0)
	_, err = call(t, ec, "extrude", map[string]any{"distance": 1.0, "profile_index": 3})
	require.EqualError(t, err, "Invalid profile_index 3. Sketch has 1 profiles")
}

func TestFilletValidatesEdges(t *testing.T) {
	ec := newTestContext()
	sketchWithCircle(t, ec, 1.0)
	_, err := call(t, ec, "extrude", map[string]any{"distance": 4.0})
	require.NoError(t, err)

	_, err = call(t, ec, "fillet", map[string]any{"radius_cm": 0.2, "edge_indices": []any{5}})
	require.EqualError(t, err, "Invalid edge index 5. Body has 2 edges")

	out, err := call(t, ec, "fillet", map[string]any{"radius_cm": 0.2})
	require.NoError(t, err)
	assert.Equal(t, "Fillet1", out["feature_name"])
	assert.Equal(t, "all", out["edges"])
}

func TestHoleRemovesVolume(t *testing.T) {
	ec := newTestContext()
	sketchWithCircle(t, ec, 2.0)
	_, err := call(t, ec, "extrude", map[string]any{"distance": 10.0})
	require.NoError(t, err)

	out, err := call(t, ec, "hole", map[string]any{
		"diameter_cm": 1.0,
		"depth_cm":    4.0,
	})
	require.NoError(t, err)
	want := math.Pi*4*10 - math.Pi*0.25*4
	assert.InDelta(t, want, out["volume_cm3"].(float64), 1e-9)

	body, _, err := ec.BodyAt(0)
	require.NoError(t, err)
	feats := ec.Design().AllFeatures()
	require.Len(t, feats, 2)
	assert.Equal(t, "Hole", feats[1].Feature.Type)
	assert.Equal(t, "simple", feats[1].Feature.Hole.Kind)
	assert.Equal(t, 3, body.EdgeCount)
}

func TestHoleValidation(t *testing.T) {
	ec := newTestContext()
	sketchWithCircle(t, ec, 2.0)
	_, err := call(t, ec, "extrude", map[string]any{"distance": 10.0})
	require.NoError(t, err)

	_, err = call(t, ec, "hole", map[string]any{"kind": "tapered", "diameter_cm": 1.0, "depth_cm": 1.0})
	require.EqualError(t, err, "Unknown hole kind: tapered. Use simple, counterbore, countersink")

	_, err = call(t, ec, "hole", map[string]any{"kind": "counterbore", "diameter_cm": 1.0, "depth_cm": 1.0})
	require.Error(t, err)
}

func TestLoftAcrossOffsetPlanes(t *testing.T) {
	ec := newTestContext()

	sketchWithCircle(t, ec, 2.0)
	_, err := call(t, ec, "create_offset_plane", map[string]any{"offset_cm": 6.0})
	require.NoError(t, err)
	_, err = call(t, ec, "create_sketch", map[string]any{"plane_index": 3})
	require.NoError(t, err)
	_, err = call(t, ec, "draw_circle", map[string]any{"radius": 1.0})
	require.NoError(t, err)

	out, err := call(t, ec, "loft", map[string]any{
		"sections": []any{
			map[string]any{"sketch_index": 0},
			map[string]any{"sketch_index": 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Created loft with 2 sections", out["message"])
	// Average section area times the 6 cm plane spacing.
	avg := (math.Pi*4 + math.Pi) / 2
	assert.InDelta(t, avg*6, out["volume_cm3"].(float64), 1e-9)
}

func TestLoftValidation(t *testing.T) {
	ec := newTestContext()
	sketchWithCircle(t, ec, 1.0)

	_, err := call(t, ec, "loft", map[string]any{
		"sections": []any{map[string]any{"sketch_index": 0}},
	})
	require.EqualError(t, err, "Loft requires at least 2 sections")

	_, err = call(t, ec, "loft", map[string]any{
		"sections": []any{
			map[string]any{"sketch_index": 0},
			map[string]any{"profile_index": 0},
		},
	})
	require.EqualError(t, err, "Section 1 missing sketch_index")
}

func TestListProfiles(t *testing.T) {
	ec := newTestContext()
	sketchWithCircle(t, ec, 1.0)
	_, err := call(t, ec, "draw_rectangle", map[string]any{"x1": 0.0, "y1": 0.0, "x2": 2.0, "y2": 2.0})
	require.NoError(t, err)

	out, err := call(t, ec, "list_profiles", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, out["profile_count"])
	profiles := out["profiles"].([]map[string]any)
	assert.Equal(t, "circle", profiles[0]["type"])
	assert.Equal(t, "loop", profiles[1]["type"])
}
