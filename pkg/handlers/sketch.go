package handlers

import (
	"context"
	"fmt"
	"math"

	"github.com/aretw0/lathe/pkg/host"
)

// SketchTable returns the sketch creation, primitive and constraint actions.
func SketchTable() Table {
	return Table{
		"create_sketch":           createSketch,
		"create_sketch_on_face":   createSketchOnFace,
		"draw_line":               drawLine,
		"draw_rectangle":          drawRectangle,
		"draw_circle":             drawCircle,
		"add_constraint_midpoint": addConstraintMidpoint,
		"get_sketch_constraints":  getSketchConstraints,
	}
}

func createSketch(ctx context.Context, ec *host.Context, params map[string]any) (any, error) {
	var p struct {
		Plane      string `json:"plane"`
		PlaneIndex *int   `json:"plane_index"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.Plane == "" {
		p.Plane = "xy"
	}

	var plane *host.ConstructionPlane
	var err error
	if p.PlaneIndex != nil {
		plane, err = ec.PlaneAt(*p.PlaneIndex)
	} else {
		plane, err = ec.PlaneNamed(p.Plane)
	}
	if err != nil {
		return nil, err
	}

	d := ec.Design()
	sketch := &host.Sketch{
		Name:    d.NextSketchName(),
		Plane:   plane.Name,
		Visible: true,
	}
	index := ec.AddSketch(sketch)

	return map[string]any{
		"sketch_name":  sketch.Name,
		"sketch_index": index,
	}, nil
}

func createSketchOnFace(ctx context.Context, ec *host.Context, params map[string]any) (any, error) {
	var p struct {
		BodyIndex  int  `json:"body_index"`
		FaceIndex  int  `json:"face_index"`
		UseTopFace bool `json:"use_top_face"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}

	body, _, err := ec.BodyAt(p.BodyIndex)
	if err != nil {
		return nil, err
	}

	faceIndex := p.FaceIndex
	if p.UseTopFace {
		faceIndex = body.TopFace()
		if faceIndex == -1 {
			return nil, fmt.Errorf("No planar faces found on body %d", p.BodyIndex)
		}
	} else if faceIndex < 0 || faceIndex >= len(body.Faces) {
		return nil, fmt.Errorf("Invalid face_index %d. Body has %d faces.", faceIndex, len(body.Faces))
	}
	face := body.Faces[faceIndex]

	d := ec.Design()
	sketch := &host.Sketch{
		Name:    d.NextSketchName(),
		Plane:   fmt.Sprintf("%s/face_%d", body.Name, faceIndex),
		Visible: true,
	}
	index := ec.AddSketch(sketch)

	faceRef := any(faceIndex)
	if p.UseTopFace {
		faceRef = "top"
	}
	return map[string]any{
		"sketch_name":  sketch.Name,
		"sketch_index": index,
		"body_index":   p.BodyIndex,
		"face_info": map[string]any{
			"face_index": faceRef,
			"center_z":   face.CenterZ,
		},
	}, nil
}

// resolveSketch applies the shared sketch selector rule: an absent index
// (or -1) means "the last sketch in the design".
func resolveSketch(ec *host.Context, index *int) (*host.Sketch, *host.Component, error) {
	i := -1
	if index != nil {
		i = *index
	}
	return ec.SketchAt(i)
}

func drawLine(ctx context.Context, ec *host.Context, params map[string]any) (any, error) {
	var p struct {
		SketchIndex *int    `json:"sketch_index"`
		X1          float64 `json:"x1"`
		Y1          float64 `json:"y1"`
		X2          float64 `json:"x2"`
		Y2          float64 `json:"y2"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}

	sketch, _, err := resolveSketch(ec, p.SketchIndex)
	if err != nil {
		return nil, err
	}

	line := host.Line{
		Start: host.Point{X: p.X1, Y: p.Y1},
		End:   host.Point{X: p.X2, Y: p.Y2},
	}
	sketch.Lines = append(sketch.Lines, line)

	return map[string]any{
		"sketch_name": sketch.Name,
		"line_index":  len(sketch.Lines) - 1,
		"length":      line.Length(),
	}, nil
}

func drawRectangle(ctx context.Context, ec *host.Context, params map[string]any) (any, error) {
	var p struct {
		SketchIndex *int    `json:"sketch_index"`
		X1          float64 `json:"x1"`
		Y1          float64 `json:"y1"`
		X2          float64 `json:"x2"`
		Y2          float64 `json:"y2"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.X1 == p.X2 || p.Y1 == p.Y2 {
		return nil, fmt.Errorf("Rectangle corners must span a non-zero width and height")
	}

	sketch, _, err := resolveSketch(ec, p.SketchIndex)
	if err != nil {
		return nil, err
	}

	a := host.Point{X: p.X1, Y: p.Y1}
	b := host.Point{X: p.X2, Y: p.Y1}
	c := host.Point{X: p.X2, Y: p.Y2}
	d := host.Point{X: p.X1, Y: p.Y2}
	sketch.Lines = append(sketch.Lines,
		host.Line{Start: a, End: b},
		host.Line{Start: b, End: c},
		host.Line{Start: c, End: d},
		host.Line{Start: d, End: a},
	)
	sketch.Profiles++

	return map[string]any{
		"sketch_name":   sketch.Name,
		"lines_added":   4,
		"width":         math.Abs(p.X2 - p.X1),
		"height":        math.Abs(p.Y2 - p.Y1),
		"profile_index": sketch.Profiles - 1,
	}, nil
}

func drawCircle(ctx context.Context, ec *host.Context, params map[string]any) (any, error) {
	var p struct {
		SketchIndex *int     `json:"sketch_index"`
		X           float64  `json:"x"`
		Y           float64  `json:"y"`
		Radius      *float64 `json:"radius"`
		Diameter    *float64 `json:"diameter"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}

	var radius float64
	switch {
	case p.Radius != nil:
		radius = *p.Radius
	case p.Diameter != nil:
		radius = *p.Diameter / 2
	default:
		return nil, fmt.Errorf("Either radius or diameter required")
	}
	if radius <= 0 {
		return nil, fmt.Errorf("Radius must be positive, got %g", radius)
	}

	sketch, _, err := resolveSketch(ec, p.SketchIndex)
	if err != nil {
		return nil, err
	}

	sketch.Circles = append(sketch.Circles, host.Circle{
		Center: host.Point{X: p.X, Y: p.Y},
		Radius: radius,
	})
	sketch.Profiles++

	return map[string]any{
		"sketch_name":   sketch.Name,
		"circle_index":  len(sketch.Circles) - 1,
		"radius":        radius,
		"profile_index": sketch.Profiles - 1,
	}, nil
}

func addConstraintMidpoint(ctx context.Context, ec *host.Context, params map[string]any) (any, error) {
	var p struct {
		SketchIndex *int   `json:"sketch_index"`
		LineIndex   int    `json:"line_index"`
		Point       string `json:"point"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.Point == "" {
		p.Point = "origin"
	}
	if p.Point != "origin" {
		return nil, fmt.Errorf("Currently only 'origin' is supported for the point parameter")
	}

	sketch, comp, err := resolveSketch(ec, p.SketchIndex)
	if err != nil {
		return nil, err
	}
	if p.LineIndex < 0 || p.LineIndex >= len(sketch.Lines) {
		return nil, fmt.Errorf("Invalid line index %d. Sketch has %d lines.", p.LineIndex, len(sketch.Lines))
	}

	// The constraint recenters the line's midpoint on the sketch origin.
	line := &sketch.Lines[p.LineIndex]
	midX := (line.Start.X + line.End.X) / 2
	midY := (line.Start.Y + line.End.Y) / 2
	line.Start.X -= midX
	line.Start.Y -= midY
	line.End.X -= midX
	line.End.Y -= midY

	sketch.Constraints = append(sketch.Constraints, host.Constraint{
		Type:      "MidPoint",
		LineIndex: p.LineIndex,
		Point:     "origin",
	})

	return map[string]any{
		"message":     fmt.Sprintf("Midpoint constraint added: origin to line %d", p.LineIndex),
		"sketch_name": sketch.Name,
		"component":   comp.Name,
	}, nil
}

func getSketchConstraints(ctx context.Context, ec *host.Context, params map[string]any) (any, error) {
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

	constraints := make([]map[string]any, 0, len(sketch.Constraints))
	for i, c := range sketch.Constraints {
		constraints = append(constraints, map[string]any{
			"index":      i,
			"type":       c.Type,
			"line_index": c.LineIndex,
			"point":      c.Point,
		})
	}

	return map[string]any{
		"sketch_name":      sketch.Name,
		"component":        comp.Name,
		"constraint_count": len(constraints),
		"constraints":      constraints,
	}, nil
}
