package export_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/lathe/pkg/export"
	"github.com/aretw0/lathe/pkg/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err, "reading %s", path)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc), "parsing %s", path)
	return doc
}

func TestExport_EmptyDesign(t *testing.T) {
	root := t.TempDir()
	exp := export.New(root)

	summary, err := exp.Export(host.NewDesign("empty"), "")
	require.NoError(t, err)

	assert.DirExists(t, summary.SessionPath)
	assert.Equal(t, 0, summary.Summary["bodies"])
	assert.Equal(t, 0, summary.Summary["sketches"])
	assert.Equal(t, 1, summary.Summary["components"])
	assert.Equal(t, 3, summary.Summary["construction_planes"], "base planes are always present")

	bodies := readJSON(t, filepath.Join(summary.SessionPath, "bodies.json"))
	assert.Equal(t, float64(0), bodies["count"])
	assert.NotNil(t, bodies["bodies"], "empty collection, not null")

	overview := readJSON(t, filepath.Join(summary.SessionPath, "sketches", "overview.json"))
	assert.Equal(t, float64(0), overview["count"])

	manifest := readJSON(t, filepath.Join(summary.SessionPath, "manifest.json"))
	assert.Equal(t, "empty", manifest["design_name"])
	assert.Equal(t, summary.SessionName, manifest["session_name"])
}

func TestExport_PopulatedDesign(t *testing.T) {
	d := host.NewDesign("bracket")
	ec := host.NewContext(d)

	ec.AddSketch(&host.Sketch{
		Name:    "Sketch1",
		Plane:   "XY",
		Visible: true,
		Lines: []host.Line{
			{Start: host.Point{}, End: host.Point{X: 4}},
		},
		Circles:  []host.Circle{{Center: host.Point{X: 2, Y: 2}, Radius: 1.5}},
		Profiles: 1,
	})
	ec.AddBody(&host.Body{
		Name:      "Body1",
		Solid:     true,
		VolumeCM3: 64,
		AreaCM2:   96,
		Faces: []host.Face{
			{Type: host.FacePlane, CenterZ: 4},
			{Type: host.FacePlane, CenterZ: 0},
			{Type: host.FaceCylinder, CenterZ: 2},
		},
		EdgeCount:   12,
		VertexCount: 8,
		Box:         host.BoundingBox{Max: host.Point{X: 4, Y: 4, Z: 4}},
		CircularEdges: []host.CircularEdge{
			{Type: "circle", Center: host.Point{X: 2, Y: 2, Z: 4}, RadiusCM: 1.5},
		},
	})
	ec.AddFeature(&host.Feature{Name: "Extrude1", Type: "Extrude", Valid: true, BodyIndex: 0})
	d.UserParams = append(d.UserParams, &host.Parameter{
		Name: "width", Expression: "40 mm", Value: 4, Unit: "mm",
	})

	exp := export.New(t.TempDir())
	summary, err := exp.Export(d, "bracket rev-2")
	require.NoError(t, err)

	assert.Contains(t, summary.SessionName, "bracket_rev-2", "name suffix is sanitized")
	assert.Equal(t, 1, summary.Summary["bodies"])
	assert.Equal(t, 1, summary.Summary["sketches"])
	assert.Equal(t, 1, summary.Summary["features"])
	assert.Equal(t, 1, summary.Summary["parameters"])
	assert.Contains(t, summary.Files, "sketches/sketch_0.json")

	bodies := readJSON(t, filepath.Join(summary.SessionPath, "bodies.json"))
	list := bodies["bodies"].([]any)
	require.Len(t, list, 1)
	body := list[0].(map[string]any)
	assert.Equal(t, float64(64), body["volume_cm3"])
	faceTypes := body["face_types"].(map[string]any)
	assert.Equal(t, float64(2), faceTypes["Plane"])
	edges := body["circular_edges"].([]any)
	require.Len(t, edges, 1)
	edge := edges[0].(map[string]any)
	assert.Equal(t, float64(30), edge["diameter_mm"], "radius 1.5 cm is a 30 mm diameter")

	sketch := readJSON(t, filepath.Join(summary.SessionPath, "sketches", "sketch_0.json"))
	counts := sketch["counts"].(map[string]any)
	assert.Equal(t, float64(1), counts["lines"])
	assert.Equal(t, float64(1), counts["circles"])
}

func TestExport_NeverOverwritesSessions(t *testing.T) {
	fixed := time.Date(2026, 8, 21, 14, 3, 11, 0, time.UTC)
	exp := export.New(t.TempDir(), export.WithClock(func() time.Time { return fixed }))

	d := host.NewDesign("d")
	first, err := exp.Export(d, "")
	require.NoError(t, err)
	second, err := exp.Export(d, "")
	require.NoError(t, err)
	third, err := exp.Export(d, "")
	require.NoError(t, err)

	assert.Equal(t, "2026-08-21_14-03-11", first.SessionName)
	assert.Equal(t, "2026-08-21_14-03-11_2", second.SessionName)
	assert.Equal(t, "2026-08-21_14-03-11_3", third.SessionName)
	assert.NotEqual(t, first.SessionPath, second.SessionPath)
}
