package handlers

import (
	"context"
	"fmt"

	"github.com/aretw0/lathe/pkg/export"
	"github.com/aretw0/lathe/pkg/host"
)

// Export returns the session export actions bound to the given exporter.
func Export(exp *export.Exporter) Table {
	return Table{
		"export_session": func(ctx context.Context, ec *host.Context, params map[string]any) (any, error) {
			return exportSession(ec, exp, params)
		},
	}
}

func exportSession(ec *host.Context, exp *export.Exporter, params map[string]any) (any, error) {
	var p struct {
		Name string `json:"name"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}

	sum, err := exp.Export(ec.Design(), p.Name)
	if err != nil {
		return nil, fmt.Errorf("Failed to export session: %v", err)
	}

	return map[string]any{
		"message":      fmt.Sprintf("Exported session to '%s'", sum.SessionName),
		"session_path": sum.SessionPath,
		"session_name": sum.SessionName,
		"files":        sum.Files,
		"summary":      sum.Summary,
	}, nil
}
