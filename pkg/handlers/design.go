package handlers

import (
	"context"

	"github.com/aretw0/lathe/pkg/host"
)

// DesignTable returns the document-swap surface: replacing the active
// design recreates the execution context's view of the document.
func DesignTable() Table {
	return Table{
		"new_design":  newDesign,
		"design_info": designInfo,
	}
}

func newDesign(ctx context.Context, ec *host.Context, params map[string]any) (any, error) {
	var p struct {
		Name string `json:"name"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.Name == "" {
		p.Name = "Untitled"
	}
	ec.ReplaceDesign(host.NewDesign(p.Name))
	return map[string]any{
		"message":     "Created design '" + p.Name + "'",
		"design_name": p.Name,
	}, nil
}

func designInfo(ctx context.Context, ec *host.Context, params map[string]any) (any, error) {
	d := ec.Design()
	return map[string]any{
		"name":            d.Name,
		"component_count": len(d.Components()),
		"body_count":      len(d.AllBodies()),
		"sketch_count":    len(d.AllSketches()),
		"feature_count":   len(d.AllFeatures()),
		"parameter_count": len(d.UserParams),
	}, nil
}
