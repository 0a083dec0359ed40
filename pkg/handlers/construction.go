package handlers

import (
	"context"
	"fmt"

	"github.com/aretw0/lathe/pkg/host"
)

// Construction returns the construction-geometry actions.
func Construction() Table {
	return Table{
		"create_offset_plane":   createOffsetPlane,
		"create_plane_at_angle": createPlaneAtAngle,
	}
}

func resolveBasePlane(ec *host.Context, name string, index *int) (*host.ConstructionPlane, error) {
	if index != nil {
		return ec.PlaneAt(*index)
	}
	if name == "" {
		name = "xy"
	}
	return ec.PlaneNamed(name)
}

func createOffsetPlane(ctx context.Context, ec *host.Context, params map[string]any) (any, error) {
	var p struct {
		Plane      string   `json:"plane"`
		PlaneIndex *int     `json:"plane_index"`
		OffsetCM   *float64 `json:"offset_cm"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.OffsetCM == nil {
		return nil, fmt.Errorf("offset_cm required")
	}

	base, err := resolveBasePlane(ec, p.Plane, p.PlaneIndex)
	if err != nil {
		return nil, err
	}

	d := ec.Design()
	plane := &host.ConstructionPlane{
		Name:     d.NextPlaneName(),
		Base:     base.Name,
		OffsetCM: base.OffsetCM + *p.OffsetCM,
		Visible:  true,
	}
	d.Planes = append(d.Planes, plane)

	return map[string]any{
		"plane_name":  plane.Name,
		"plane_index": len(d.Planes) - 1,
		"base_plane":  base.Name,
		"offset_cm":   *p.OffsetCM,
	}, nil
}

func createPlaneAtAngle(ctx context.Context, ec *host.Context, params map[string]any) (any, error) {
	var p struct {
		Plane      string   `json:"plane"`
		PlaneIndex *int     `json:"plane_index"`
		AngleDeg   *float64 `json:"angle_deg"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.AngleDeg == nil {
		return nil, fmt.Errorf("angle_deg required")
	}

	base, err := resolveBasePlane(ec, p.Plane, p.PlaneIndex)
	if err != nil {
		return nil, err
	}

	d := ec.Design()
	plane := &host.ConstructionPlane{
		Name:     d.NextPlaneName(),
		Base:     base.Name,
		AngleDeg: *p.AngleDeg,
		Visible:  true,
	}
	d.Planes = append(d.Planes, plane)

	return map[string]any{
		"plane_name":  plane.Name,
		"plane_index": len(d.Planes) - 1,
		"base_plane":  base.Name,
		"angle_deg":   *p.AngleDeg,
	}, nil
}
