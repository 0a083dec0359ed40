package handlers

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/aretw0/lathe/pkg/host"
)

// Features returns the 3D feature creation actions.
func Features() Table {
	return Table{
		"extrude":       extrude,
		"fillet":        fillet,
		"hole":          hole,
		"loft":          loft,
		"list_profiles": listProfiles,
	}
}

var validOperations = []string{"new", "join", "cut"}

func checkOperation(op string) (string, error) {
	if op == "" {
		return "new", nil
	}
	for _, valid := range validOperations {
		if op == valid {
			return op, nil
		}
	}
	return "", fmt.Errorf("Unknown operation: %s. Use 'new', 'join', or 'cut'.", op)
}

// profileShape measures one closed profile of a sketch: its cross-section
// area and footprint. These drive the arithmetic body metrics; nothing here
// is kernel geometry.
type profileShape struct {
	area     float64
	circle   *host.Circle
	minX     float64
	minY     float64
	maxX     float64
	maxY     float64
	isCircle bool
}

func measureProfile(sketch *host.Sketch, profileIndex int) (*profileShape, error) {
	if profileIndex < 0 || profileIndex >= sketch.Profiles {
		return nil, fmt.Errorf("Invalid profile_index %d. Sketch has %d profiles", profileIndex, sketch.Profiles)
	}

	// Circles come first in profile order, then line loops. A sketch built
	// through draw_circle / draw_rectangle yields one profile per call.
	if profileIndex < len(sketch.Circles) {
		c := sketch.Circles[profileIndex]
		return &profileShape{
			area:     math.Pi * c.Radius * c.Radius,
			circle:   &c,
			minX:     c.Center.X - c.Radius,
			minY:     c.Center.Y - c.Radius,
			maxX:     c.Center.X + c.Radius,
			maxY:     c.Center.Y + c.Radius,
			isCircle: true,
		}, nil
	}

	if len(sketch.Lines) < 3 {
		return nil, fmt.Errorf("Profile %d is not a closed region", profileIndex)
	}
	shape := &profileShape{
		minX: sketch.Lines[0].Start.X, maxX: sketch.Lines[0].Start.X,
		minY: sketch.Lines[0].Start.Y, maxY: sketch.Lines[0].Start.Y,
	}
	for _, l := range sketch.Lines {
		for _, pnt := range []host.Point{l.Start, l.End} {
			shape.minX = math.Min(shape.minX, pnt.X)
			shape.maxX = math.Max(shape.maxX, pnt.X)
			shape.minY = math.Min(shape.minY, pnt.Y)
			shape.maxY = math.Max(shape.maxY, pnt.Y)
		}
	}
	shape.area = (shape.maxX - shape.minX) * (shape.maxY - shape.minY)
	return shape, nil
}

func extrude(ctx context.Context, ec *host.Context, params map[string]any) (any, error) {
	var p struct {
		SketchIndex  *int    `json:"sketch_index"`
		ProfileIndex int     `json:"profile_index"`
		Distance     float64 `json:"distance"`
		Operation    string  `json:"operation"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.Distance <= 0 {
		return nil, fmt.Errorf("Distance must be positive, got %g", p.Distance)
	}
	op, err := checkOperation(p.Operation)
	if err != nil {
		return nil, err
	}

	sketch, _, err := resolveSketch(ec, p.SketchIndex)
	if err != nil {
		return nil, err
	}
	shape, err := measureProfile(sketch, p.ProfileIndex)
	if err != nil {
		return nil, err
	}

	d := ec.Design()
	volume := shape.area * p.Distance

	switch op {
	case "new":
		body := buildExtrudedBody(d, shape, p.Distance)
		bodyIndex := ec.AddBody(body)
		feature := &host.Feature{
			Name:      d.NextFeatureName("Extrude"),
			Type:      "Extrude",
			Valid:     true,
			BodyIndex: bodyIndex,
		}
		ec.AddFeature(feature)
		return map[string]any{
			"body_index":   bodyIndex,
			"body_name":    body.Name,
			"volume_cm3":   body.VolumeCM3,
			"feature_name": feature.Name,
			"operation":    op,
		}, nil

	case "join", "cut":
		targetIndex := ec.LastBodyIndex()
		if targetIndex == -1 {
			targetIndex = 0
		}
		body, _, err := ec.BodyAt(targetIndex)
		if err != nil {
			return nil, err
		}
		if op == "join" {
			body.VolumeCM3 += volume
			body.Box.Max.Z += p.Distance
		} else {
			body.VolumeCM3 = math.Max(0, body.VolumeCM3-volume)
		}
		feature := &host.Feature{
			Name:      d.NextFeatureName("Extrude"),
			Type:      "Extrude",
			Valid:     true,
			BodyIndex: targetIndex,
		}
		ec.AddFeature(feature)
		return map[string]any{
			"body_index":   targetIndex,
			"body_name":    body.Name,
			"volume_cm3":   body.VolumeCM3,
			"feature_name": feature.Name,
			"operation":    op,
		}, nil
	}
	return nil, fmt.Errorf("Unknown operation: %s. Use 'new', 'join', or 'cut'.", op)
}

// buildExtrudedBody records the metrics of the prism or cylinder the host
// kernel would have produced for this profile.
func buildExtrudedBody(d *host.Design, shape *profileShape, distance float64) *host.Body {
	body := &host.Body{
		Name:      d.NextBodyName(),
		Solid:     true,
		VolumeCM3: shape.area * distance,
		Box: host.BoundingBox{
			Min: host.Point{X: shape.minX, Y: shape.minY, Z: 0},
			Max: host.Point{X: shape.maxX, Y: shape.maxY, Z: distance},
		},
	}

	if shape.isCircle {
		r := shape.circle.Radius
		body.AreaCM2 = 2*math.Pi*r*r + 2*math.Pi*r*distance
		body.Faces = []host.Face{
			{Type: host.FacePlane, CenterZ: distance},
			{Type: host.FacePlane, CenterZ: 0},
			{Type: host.FaceCylinder, CenterZ: distance / 2},
		}
		body.EdgeCount = 2
		body.CircularEdges = []host.CircularEdge{
			{Type: "circle", Center: host.Point{X: shape.circle.Center.X, Y: shape.circle.Center.Y, Z: 0}, RadiusCM: r},
			{Type: "circle", Center: host.Point{X: shape.circle.Center.X, Y: shape.circle.Center.Y, Z: distance}, RadiusCM: r},
		}
		return body
	}

	w := shape.maxX - shape.minX
	h := shape.maxY - shape.minY
	body.AreaCM2 = 2*(w*h) + 2*(w*distance) + 2*(h*distance)
	body.Faces = []host.Face{
		{Type: host.FacePlane, CenterZ: distance},
		{Type: host.FacePlane, CenterZ: 0},
		{Type: host.FacePlane, CenterZ: distance / 2},
		{Type: host.FacePlane, CenterZ: distance / 2},
		{Type: host.FacePlane, CenterZ: distance / 2},
		{Type: host.FacePlane, CenterZ: distance / 2},
	}
	body.EdgeCount = 12
	body.VertexCount = 8
	return body
}

func fillet(ctx context.Context, ec *host.Context, params map[string]any) (any, error) {
	var p struct {
		BodyIndex   int     `json:"body_index"`
		RadiusCM    float64 `json:"radius_cm"`
		EdgeIndices []int   `json:"edge_indices"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.RadiusCM <= 0 {
		return nil, fmt.Errorf("radius_cm must be positive, got %g", p.RadiusCM)
	}

	body, _, err := ec.BodyAt(p.BodyIndex)
	if err != nil {
		return nil, err
	}
	for _, idx := range p.EdgeIndices {
		if idx < 0 || idx >= body.EdgeCount {
			return nil, fmt.Errorf("Invalid edge index %d. Body has %d edges", idx, body.EdgeCount)
		}
	}

	d := ec.Design()
	feature := &host.Feature{
		Name:      d.NextFeatureName("Fillet"),
		Type:      "Fillet",
		Valid:     true,
		BodyIndex: p.BodyIndex,
	}
	ec.AddFeature(feature)

	edges := any("all")
	if len(p.EdgeIndices) > 0 {
		edges = p.EdgeIndices
	}
	return map[string]any{
		"feature_name": feature.Name,
		"body_index":   p.BodyIndex,
		"radius_cm":    p.RadiusCM,
		"edges":        edges,
	}, nil
}

var validHoleKinds = []string{"simple", "counterbore", "countersink"}

func hole(ctx context.Context, ec *host.Context, params map[string]any) (any, error) {
	var p struct {
		BodyIndex             int     `json:"body_index"`
		Kind                  string  `json:"kind"`
		X                     float64 `json:"x"`
		Y                     float64 `json:"y"`
		DiameterCM            float64 `json:"diameter_cm"`
		DepthCM               float64 `json:"depth_cm"`
		CounterboreDiameterCM float64 `json:"counterbore_diameter_cm"`
		CounterboreDepthCM    float64 `json:"counterbore_depth_cm"`
		CountersinkAngleDeg   float64 `json:"countersink_angle_deg"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.Kind == "" {
		p.Kind = "simple"
	}
	valid := false
	for _, kind := range validHoleKinds {
		if p.Kind == kind {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("Unknown hole kind: %s. Use %s", p.Kind, strings.Join(validHoleKinds, ", "))
	}
	if p.DiameterCM <= 0 || p.DepthCM <= 0 {
		return nil, fmt.Errorf("diameter_cm and depth_cm must be positive")
	}
	if p.Kind == "counterbore" && (p.CounterboreDiameterCM <= 0 || p.CounterboreDepthCM <= 0) {
		return nil, fmt.Errorf("counterbore_diameter_cm and counterbore_depth_cm required for counterbore holes")
	}
	if p.Kind == "countersink" && p.CountersinkAngleDeg <= 0 {
		return nil, fmt.Errorf("countersink_angle_deg required for countersink holes")
	}

	body, _, err := ec.BodyAt(p.BodyIndex)
	if err != nil {
		return nil, err
	}

	r := p.DiameterCM / 2
	removed := math.Pi * r * r * p.DepthCM
	if p.Kind == "counterbore" {
		cr := p.CounterboreDiameterCM / 2
		removed += math.Pi * cr * cr * p.CounterboreDepthCM
	}
	body.VolumeCM3 = math.Max(0, body.VolumeCM3-removed)
	body.Faces = append(body.Faces, host.Face{Type: host.FaceCylinder, CenterZ: body.Box.Max.Z - p.DepthCM/2})
	body.EdgeCount++
	body.CircularEdges = append(body.CircularEdges, host.CircularEdge{
		Type:     "circle",
		Center:   host.Point{X: p.X, Y: p.Y, Z: body.Box.Max.Z},
		RadiusCM: r,
	})

	detail := &host.HoleDetail{
		Kind:                  p.Kind,
		DiameterCM:            p.DiameterCM,
		DepthCM:               p.DepthCM,
		CounterboreDiameterCM: p.CounterboreDiameterCM,
		CounterboreDepthCM:    p.CounterboreDepthCM,
		CountersinkAngleDeg:   p.CountersinkAngleDeg,
	}
	d := ec.Design()
	feature := &host.Feature{
		Name:      d.NextFeatureName("Hole"),
		Type:      "Hole",
		Valid:     true,
		BodyIndex: p.BodyIndex,
		Hole:      detail,
	}
	ec.AddFeature(feature)

	return map[string]any{
		"feature_name": feature.Name,
		"body_index":   p.BodyIndex,
		"kind":         p.Kind,
		"volume_cm3":   body.VolumeCM3,
	}, nil
}

type loftSection struct {
	SketchIndex  *int `json:"sketch_index"`
	ProfileIndex int  `json:"profile_index"`
}

func loft(ctx context.Context, ec *host.Context, params map[string]any) (any, error) {
	var p struct {
		Sections  []loftSection `json:"sections"`
		Operation string        `json:"operation"`
		IsSolid   *bool         `json:"is_solid"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if len(p.Sections) < 2 {
		return nil, fmt.Errorf("Loft requires at least 2 sections")
	}
	// join/cut lofts still land as a new body in this model; the operation
	// is validated so agents get the same errors the host would give.
	if _, err := checkOperation(p.Operation); err != nil {
		return nil, err
	}
	solid := p.IsSolid == nil || *p.IsSolid

	d := ec.Design()

	var totalArea, height float64
	var firstShape *profileShape
	var prevOffset float64
	for i, section := range p.Sections {
		if section.SketchIndex == nil {
			return nil, fmt.Errorf("Section %d missing sketch_index", i)
		}
		sketch, _, err := ec.SketchAt(*section.SketchIndex)
		if err != nil {
			return nil, fmt.Errorf("Section %d: %s", i, err.Error())
		}
		shape, err := measureProfile(sketch, section.ProfileIndex)
		if err != nil {
			return nil, fmt.Errorf("Section %d: %s", i, err.Error())
		}
		if firstShape == nil {
			firstShape = shape
		}
		totalArea += shape.area

		// Section spacing comes from the sketch planes' offsets when the
		// sections sit on offset planes; otherwise 1 cm per step.
		offset := planeOffset(d, sketch.Plane)
		if i > 0 {
			step := math.Abs(offset - prevOffset)
			if step == 0 {
				step = 1
			}
			height += step
		}
		prevOffset = offset
	}

	avgArea := totalArea / float64(len(p.Sections))
	body := &host.Body{
		Name:      d.NextBodyName(),
		Solid:     solid,
		VolumeCM3: avgArea * height,
		Box: host.BoundingBox{
			Min: host.Point{X: firstShape.minX, Y: firstShape.minY, Z: 0},
			Max: host.Point{X: firstShape.maxX, Y: firstShape.maxY, Z: height},
		},
		Faces: []host.Face{
			{Type: host.FacePlane, CenterZ: height},
			{Type: host.FacePlane, CenterZ: 0},
			{Type: host.FaceNURBS, CenterZ: height / 2},
		},
	}
	bodyIndex := ec.AddBody(body)

	feature := &host.Feature{
		Name:      d.NextFeatureName("Loft"),
		Type:      "Loft",
		Valid:     true,
		BodyIndex: bodyIndex,
	}
	ec.AddFeature(feature)

	return map[string]any{
		"message":      fmt.Sprintf("Created loft with %d sections", len(p.Sections)),
		"feature_name": feature.Name,
		"body_index":   bodyIndex,
		"volume_cm3":   body.VolumeCM3,
	}, nil
}

func planeOffset(d *host.Design, planeName string) float64 {
	for _, plane := range d.Planes {
		if plane.Name == planeName {
			return plane.OffsetCM
		}
	}
	return 0
}

func listProfiles(ctx context.Context, ec *host.Context, params map[string]any) (any, error) {
	var p struct {
		SketchIndex *int `json:"sketch_index"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}

	sketch, comp, err := resolveSketch(ec, p.SketchIndex)
	if err != nil {
		return nil, err
	}

	profiles := make([]map[string]any, 0, sketch.Profiles)
	for i := 0; i < sketch.Profiles; i++ {
		kind := "loop"
		if i < len(sketch.Circles) {
			kind = "circle"
		}
		profiles = append(profiles, map[string]any{"index": i, "type": kind})
	}

	return map[string]any{
		"sketch_name":   sketch.Name,
		"component":     comp.Name,
		"profile_count": sketch.Profiles,
		"profiles":      profiles,
	}, nil
}
