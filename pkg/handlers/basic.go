package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/lathe/pkg/host"
)

// Basic returns the liveness and messaging actions.
func Basic() Table {
	return Table{
		"ping":    ping,
		"message": message,
	}
}

func ping(ctx context.Context, ec *host.Context, params map[string]any) (any, error) {
	var p struct {
		Message string `json:"message"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	reply := "pong"
	if p.Message != "" {
		reply = p.Message
	}
	return map[string]any{
		"message":   reply,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func message(ctx context.Context, ec *host.Context, params map[string]any) (any, error) {
	var p struct {
		Text string `json:"text"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.Text == "" {
		return nil, fmt.Errorf("text required")
	}
	return map[string]any{"message": p.Text}, nil
}
