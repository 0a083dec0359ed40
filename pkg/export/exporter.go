// Package export produces point-in-time session snapshots: a directory of
// JSON files describing the entire design, so an agent can read state
// out-of-band instead of issuing many small query commands.
package export

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/lathe/pkg/host"
)

const sessionDirAttempts = 100

// Exporter writes session snapshots under root. Collector passes are
// read-only over the design; the exporter never mutates host state.
type Exporter struct {
	root string
	now  func() time.Time
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithClock overrides the timestamp source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		e.now = now
	}
}

// New creates an exporter rooted at the given directory. Each Export call
// creates a fresh uniquely named subdirectory; prior sessions are never
// overwritten.
func New(root string, opts ...Option) *Exporter {
	e := &Exporter{root: root, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Summary is the payload returned to the agent after an export.
type Summary struct {
	SessionPath string         `json:"session_path"`
	SessionName string         `json:"session_name"`
	Files       []string       `json:"files"`
	Summary     map[string]int `json:"summary"`
}

// Export snapshots the design into a new session directory. An empty design
// produces valid documents with empty collections, not a failure.
func (e *Exporter) Export(d *host.Design, name string) (*Summary, error) {
	dir, folder, err := e.createSessionDir(name)
	if err != nil {
		return nil, err
	}

	sketchCount, err := exportSketches(d, dir)
	if err != nil {
		return nil, err
	}
	if err := exportDesignInfo(d, dir); err != nil {
		return nil, err
	}
	bodyCount, err := exportBodies(d, dir)
	if err != nil {
		return nil, err
	}
	featureCount, err := exportFeatures(d, dir)
	if err != nil {
		return nil, err
	}
	paramCount, err := exportParameters(d, dir)
	if err != nil {
		return nil, err
	}
	planeCount, err := exportConstructionPlanes(d, dir)
	if err != nil {
		return nil, err
	}
	jointCount, err := exportJoints(d, dir)
	if err != nil {
		return nil, err
	}

	files := []string{
		"design_info.json",
		"bodies.json",
		"sketches/overview.json",
	}
	for i := 0; i < sketchCount; i++ {
		files = append(files, fmt.Sprintf("sketches/sketch_%d.json", i))
	}
	files = append(files,
		"features.json",
		"parameters.json",
		"construction_planes.json",
		"joints.json",
	)

	summary := map[string]int{
		"components":          len(d.Components()),
		"bodies":              bodyCount,
		"sketches":            sketchCount,
		"features":            featureCount,
		"parameters":          paramCount,
		"construction_planes": planeCount,
		"joints":              jointCount,
	}

	manifest := map[string]any{
		"session_name": folder,
		"design_name":  d.Name,
		"exported_at":  e.now().Format(time.RFC3339),
		"files":        files,
		"summary":      summary,
	}
	if err := writeJSON(filepath.Join(dir, "manifest.json"), manifest); err != nil {
		return nil, err
	}

	return &Summary{
		SessionPath: dir,
		SessionName: folder,
		Files:       files,
		Summary:     summary,
	}, nil
}

// createSessionDir picks a timestamped folder name, suffixing _2, _3, … on
// collision rather than ever reusing a directory.
func (e *Exporter) createSessionDir(name string) (dir, folder string, err error) {
	if err := os.MkdirAll(e.root, 0755); err != nil {
		return "", "", fmt.Errorf("failed to ensure sessions directory: %w", err)
	}

	base := e.now().Format("2006-01-02_15-04-05")
	if name != "" {
		base = base + "_" + sanitizeName(name)
	}

	folder = base
	for attempt := 2; attempt <= sessionDirAttempts; attempt++ {
		dir = filepath.Join(e.root, folder)
		mkErr := os.Mkdir(dir, 0755)
		if mkErr == nil {
			return dir, folder, nil
		}
		if !os.IsExist(mkErr) {
			return "", "", fmt.Errorf("failed to create session directory: %w", mkErr)
		}
		folder = fmt.Sprintf("%s_%d", base, attempt)
	}
	return "", "", fmt.Errorf("could not find a free session directory name for %s", base)
}

// sanitizeName keeps the custom suffix filesystem-safe.
func sanitizeName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func round(v float64, places int) float64 {
	scale := math.Pow10(places)
	return math.Round(v*scale) / scale
}

func pt(p host.Point) []float64 {
	return []float64{round(p.X, 4), round(p.Y, 4), round(p.Z, 4)}
}

func exportDesignInfo(d *host.Design, dir string) error {
	comps := d.Components()

	components := make([]map[string]any, 0, len(comps))
	for _, comp := range comps {
		components = append(components, map[string]any{
			"name":     comp.Name,
			"bodies":   len(comp.Bodies),
			"sketches": len(comp.Sketches),
			"features": len(comp.Features),
		})
	}

	bodies := make([]map[string]any, 0)
	for _, ref := range d.AllBodies() {
		size := ref.Body.Box.Size()
		bodies = append(bodies, map[string]any{
			"name":       ref.Body.Name,
			"index":      ref.Index,
			"component":  ref.Component.Name,
			"volume_cm3": round(ref.Body.VolumeCM3, 4),
			"face_count": len(ref.Body.Faces),
			"size":       []float64{round(size[0], 4), round(size[1], 4), round(size[2], 4)},
		})
	}

	sketches := make([]map[string]any, 0)
	for _, ref := range d.AllSketches() {
		sketches = append(sketches, map[string]any{
			"name":      ref.Sketch.Name,
			"index":     ref.Index,
			"component": ref.Component.Name,
			"profiles":  ref.Sketch.Profiles,
			"curves":    ref.Sketch.CurveCount(),
		})
	}

	features := make([]map[string]any, 0)
	for _, ref := range d.AllFeatures() {
		features = append(features, map[string]any{
			"name":      ref.Feature.Name,
			"index":     ref.Index,
			"component": ref.Component.Name,
			"type":      ref.Feature.Type,
		})
	}

	params := make([]map[string]any, 0, len(d.UserParams))
	for _, p := range d.UserParams {
		params = append(params, map[string]any{
			"name":  p.Name,
			"value": fmt.Sprintf("%s (%g %s)", p.Expression, p.Value, p.Unit),
		})
	}

	return writeJSON(filepath.Join(dir, "design_info.json"), map[string]any{
		"name":       d.Name,
		"components": components,
		"bodies":     bodies,
		"sketches":   sketches,
		"features":   features,
		"parameters": params,
		"summary": map[string]int{
			"component_count": len(comps),
			"body_count":      len(bodies),
			"sketch_count":    len(sketches),
			"feature_count":   len(features),
			"parameter_count": len(params),
		},
	})
}

func exportBodies(d *host.Design, dir string) (int, error) {
	bodies := make([]map[string]any, 0)
	for _, ref := range d.AllBodies() {
		b := ref.Body

		faceTypes := map[string]int{}
		for _, f := range b.Faces {
			faceTypes[string(f.Type)]++
		}

		edges := make([]map[string]any, 0, len(b.CircularEdges))
		for i, e := range b.CircularEdges {
			entry := map[string]any{
				"edge_index": i,
				"type":       e.Type,
				"center":     pt(e.Center),
			}
			if e.Type == "circle" {
				entry["radius_cm"] = round(e.RadiusCM, 4)
				entry["diameter_mm"] = round(e.RadiusCM*2*10, 2)
				entry["circumference_mm"] = round(2*math.Pi*e.RadiusCM*10, 2)
			} else {
				entry["major_radius_cm"] = round(e.MajorRadiusCM, 4)
				entry["minor_radius_cm"] = round(e.MinorRadiusCM, 4)
				entry["major_diameter_mm"] = round(e.MajorRadiusCM*2*10, 2)
				entry["minor_diameter_mm"] = round(e.MinorRadiusCM*2*10, 2)
			}
			edges = append(edges, entry)
		}

		size := b.Box.Size()
		bodies = append(bodies, map[string]any{
			"name":         b.Name,
			"index":        ref.Index,
			"component":    ref.Component.Name,
			"is_solid":     b.Solid,
			"volume_cm3":   round(b.VolumeCM3, 4),
			"area_cm2":     round(b.AreaCM2, 4),
			"face_count":   len(b.Faces),
			"edge_count":   b.EdgeCount,
			"vertex_count": b.VertexCount,
			"face_types":   faceTypes,
			"bounding_box": map[string]any{
				"min":  pt(b.Box.Min),
				"max":  pt(b.Box.Max),
				"size": []float64{round(size[0], 4), round(size[1], 4), round(size[2], 4)},
			},
			"circular_edges": edges,
		})
	}

	err := writeJSON(filepath.Join(dir, "bodies.json"), map[string]any{
		"bodies": bodies,
		"count":  len(bodies),
	})
	return len(bodies), err
}

func exportSketches(d *host.Design, dir string) (int, error) {
	sketchesDir := filepath.Join(dir, "sketches")
	if err := os.MkdirAll(sketchesDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create sketches directory: %w", err)
	}

	refs := d.AllSketches()

	overview := make([]map[string]any, 0, len(refs))
	for _, ref := range refs {
		s := ref.Sketch
		overview = append(overview, map[string]any{
			"name":          s.Name,
			"index":         ref.Index,
			"component":     ref.Component.Name,
			"profile_count": s.Profiles,
			"is_visible":    s.Visible,
			"curves": map[string]int{
				"lines":   len(s.Lines),
				"circles": len(s.Circles),
				"arcs":    len(s.Arcs),
				"total":   s.CurveCount(),
			},
		})
	}
	err := writeJSON(filepath.Join(sketchesDir, "overview.json"), map[string]any{
		"sketches": overview,
		"count":    len(overview),
	})
	if err != nil {
		return 0, err
	}

	for _, ref := range refs {
		s := ref.Sketch

		circles := make([]map[string]any, 0, len(s.Circles))
		for i, c := range s.Circles {
			circles = append(circles, map[string]any{
				"index":           i,
				"center":          pt(c.Center),
				"radius":          round(c.Radius, 4),
				"diameter":        round(c.Radius*2, 4),
				"is_construction": c.Construction,
			})
		}

		lines := make([]map[string]any, 0, len(s.Lines))
		for i, l := range s.Lines {
			lines = append(lines, map[string]any{
				"index":           i,
				"start":           pt(l.Start),
				"end":             pt(l.End),
				"length":          round(l.Length(), 4),
				"is_construction": l.Construction,
			})
		}

		arcs := make([]map[string]any, 0, len(s.Arcs))
		for i, a := range s.Arcs {
			arcs = append(arcs, map[string]any{
				"index":           i,
				"center":          pt(a.Center),
				"radius":          round(a.Radius, 4),
				"start_point":     pt(a.Start),
				"end_point":       pt(a.End),
				"start_angle_deg": round(a.StartAngleDeg, 2),
				"end_angle_deg":   round(a.EndAngleDeg, 2),
				"is_construction": a.Construction,
			})
		}

		data := map[string]any{
			"sketch_name":  s.Name,
			"sketch_index": ref.Index,
			"component":    ref.Component.Name,
			"plane":        map[string]string{"name": s.Plane},
			"circles":      circles,
			"lines":        lines,
			"arcs":         arcs,
			"counts": map[string]int{
				"circles": len(circles),
				"lines":   len(lines),
				"arcs":    len(arcs),
				"total":   s.CurveCount(),
			},
		}
		path := filepath.Join(sketchesDir, fmt.Sprintf("sketch_%d.json", ref.Index))
		if err := writeJSON(path, data); err != nil {
			return 0, err
		}
	}

	return len(refs), nil
}

func exportFeatures(d *host.Design, dir string) (int, error) {
	features := make([]map[string]any, 0)
	for _, ref := range d.AllFeatures() {
		f := ref.Feature
		entry := map[string]any{
			"name":          f.Name,
			"index":         ref.Index,
			"component":     ref.Component.Name,
			"type":          f.Type,
			"is_suppressed": f.Suppressed,
			"is_valid":      f.Valid,
		}
		if f.Hole != nil {
			entry["hole"] = f.Hole
		}
		features = append(features, entry)
	}

	err := writeJSON(filepath.Join(dir, "features.json"), map[string]any{
		"features": features,
		"count":    len(features),
	})
	return len(features), err
}

func exportParameters(d *host.Design, dir string) (int, error) {
	user := make([]map[string]any, 0, len(d.UserParams))
	for _, p := range d.UserParams {
		user = append(user, map[string]any{
			"name":       p.Name,
			"expression": p.Expression,
			"value":      round(p.Value, 6),
			"unit":       p.Unit,
			"comment":    p.Comment,
		})
	}

	model := make([]map[string]any, 0, len(d.ModelParams))
	for _, p := range d.ModelParams {
		model = append(model, map[string]any{
			"name":       p.Name,
			"expression": p.Expression,
			"value":      round(p.Value, 6),
			"unit":       p.Unit,
			"role":       p.Role,
			"created_by": p.CreatedBy,
		})
	}

	err := writeJSON(filepath.Join(dir, "parameters.json"), map[string]any{
		"user_parameters":  user,
		"model_parameters": model,
		"counts": map[string]int{
			"user":  len(user),
			"model": len(model),
			"total": len(user) + len(model),
		},
	})
	return len(user) + len(model), err
}

func exportConstructionPlanes(d *host.Design, dir string) (int, error) {
	planes := make([]map[string]any, 0, len(d.Planes))
	for i, p := range d.Planes {
		planes = append(planes, map[string]any{
			"index":      i,
			"name":       p.Name,
			"is_visible": p.Visible,
		})
	}

	err := writeJSON(filepath.Join(dir, "construction_planes.json"), map[string]any{
		"planes": planes,
		"count":  len(planes),
	})
	return len(planes), err
}

func exportJoints(d *host.Design, dir string) (int, error) {
	joints := make([]map[string]any, 0, len(d.Joints))
	for i, j := range d.Joints {
		kind := "joint"
		if j.AsBuilt {
			kind = "as_built"
		}
		joints = append(joints, map[string]any{
			"index":          i,
			"name":           j.Name,
			"type":           j.Type,
			"occurrence_one": j.OccurrenceOne,
			"occurrence_two": j.OccurrenceTwo,
			"is_suppressed":  j.Suppressed,
			"joint_kind":     kind,
		})
	}

	err := writeJSON(filepath.Join(dir, "joints.json"), map[string]any{
		"joints": joints,
		"count":  len(joints),
	})
	return len(joints), err
}
