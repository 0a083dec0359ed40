// Package mcp exposes the bridge to MCP-speaking agents. The server runs on
// the agent side of the channel: tools translate into command documents, and
// the bridge's results poll back as tool results.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/lathe"
	"github.com/aretw0/lathe/pkg/agent"
	"github.com/aretw0/lathe/pkg/domain"
	"github.com/aretw0/lathe/pkg/ports"
	"github.com/aretw0/lifecycle"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const defaultWaitTimeout = 30 * time.Second

// CommandResponse is the structured output of the send_command tool.
type CommandResponse struct {
	ID      int64  `json:"id" jsonschema_description:"The id assigned to the command"`
	Success *bool  `json:"success,omitempty" jsonschema_description:"Outcome, present only when the tool waited for the result"`
	Result  any    `json:"result,omitempty" jsonschema_description:"Handler payload on success"`
	Error   string `json:"error,omitempty" jsonschema_description:"Error message on failure"`
}

// Server exposes the bridge channel as an MCP server.
type Server struct {
	client    *agent.Client
	ch        ports.Channel
	actions   []string
	mcpServer *server.MCPServer
}

// NewServer creates an MCP server sending on ch. actions is the bridge's
// registry listing, surfaced through the list_actions tool.
func NewServer(ch ports.Channel, actions []string) *Server {
	s := &Server{
		client:    agent.New(ch),
		ch:        ch,
		actions:   actions,
		mcpServer: server.NewMCPServer("lathe-mcp", strings.TrimSpace(lathe.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
		return nil
	})

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, Baggage, Sentry-Trace")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: send_command
	sendTool := mcp.NewTool("send_command",
		mcp.WithDescription("Send a command to the CAD host. Optionally wait for its result."),
		mcp.WithString("action", mcp.Required(), mcp.Description("Action name, e.g. 'draw_circle'")),
		mcp.WithString("params", mcp.Description("JSON object of handler parameters (optional)")),
		mcp.WithBoolean("wait", mcp.Description("Block until the result arrives (default true)")),
		mcp.WithNumber("timeout_seconds", mcp.Description("Wait timeout in seconds (default 30)")),
		mcp.WithOutputSchema[CommandResponse](),
	)
	s.mcpServer.AddTool(sendTool, mcp.NewStructuredToolHandler(s.handleSendCommand))

	// TOOL: bridge_status
	s.mcpServer.AddTool(mcp.NewTool("bridge_status",
		mcp.WithDescription("Get the bridge's current status: state, watermark, instance id."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		st, err := s.client.Status(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("status unavailable: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(st)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: list_actions
	s.mcpServer.AddTool(mcp.NewTool("list_actions",
		mcp.WithDescription("List the action names the bridge can execute."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, _ := json.Marshal(map[string]any{
			"actions": s.actions,
			"count":   len(s.actions),
		})
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handleSendCommand(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (CommandResponse, error) {
	action, _ := args["action"].(string)
	if action == "" {
		return CommandResponse{}, fmt.Errorf("action required")
	}

	var params map[string]any
	if paramsStr, ok := args["params"].(string); ok && paramsStr != "" {
		if err := json.Unmarshal([]byte(paramsStr), &params); err != nil {
			return CommandResponse{}, fmt.Errorf("params must be a JSON object: %w", err)
		}
	}

	wait := true
	if w, ok := args["wait"].(bool); ok {
		wait = w
	}

	id, err := s.client.Send(ctx, action, params)
	if err != nil {
		return CommandResponse{}, fmt.Errorf("send failed: %w", err)
	}
	if !wait {
		return CommandResponse{ID: id}, nil
	}

	timeout := defaultWaitTimeout
	if secs, ok := args["timeout_seconds"].(float64); ok && secs > 0 {
		timeout = time.Duration(secs * float64(time.Second))
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := s.client.Await(waitCtx, id)
	if err != nil {
		return CommandResponse{}, fmt.Errorf("command %d sent but result not seen: %w", id, err)
	}
	return CommandResponse{
		ID:      res.ID,
		Success: &res.Success,
		Result:  res.Result,
		Error:   res.ErrorMessage(),
	}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: lathe://status
	s.mcpServer.AddResource(mcp.NewResource("lathe://status", "Current Bridge Status",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		st, err := s.ch.ReadStatus(ctx)
		if errors.Is(err, domain.ErrNoStatus) {
			// A fresh session has no status yet; expose an empty document.
			st = domain.NewStatus("")
		} else if err != nil {
			return nil, fmt.Errorf("failed to read status: %w", err)
		}
		jsonBytes, _ := json.Marshal(st)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "lathe://status",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
