// Package mcp exposes the controller over the Model Context Protocol, so
// agent tooling can inspect and drive the command forest: list commands,
// request runs and cancels, fire trigger events, and read run history.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/orchestra-dev/podium"
	"github.com/orchestra-dev/podium/pkg/domain"
)

// CommandStatus is the structured payload for command_status.
type CommandStatus struct {
	Command   string             `json:"command" jsonschema_description:"Command name"`
	Active    int                `json:"active" jsonschema_description:"Number of in-flight runs"`
	Duplicate bool               `json:"duplicate" jsonschema_description:"Whether the command appears at multiple places in the hierarchy"`
	History   []domain.RunResult `json:"history" jsonschema_description:"Completed runs, most recent first"`
}

// Server wraps a Controller and exposes it as an MCP server.
type Server struct {
	ctrl      *podium.Controller
	mcpServer *server.MCPServer
}

// NewServer creates the MCP server and registers tools and resources.
func NewServer(ctrl *podium.Controller) *Server {
	s := &Server{
		ctrl:      ctrl,
		mcpServer: server.NewMCPServer("podium-mcp", strings.TrimSpace(podium.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	// TOOL: list_commands
	s.mcpServer.AddTool(mcp.NewTool("list_commands",
		mcp.WithDescription("List the command hierarchy with duplicate markers and current status."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, err := json.Marshal(s.forestSnapshot())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: run_command
	runTool := mcp.NewTool("run_command",
		mcp.WithDescription("Request a manual run of the named command. The run starts asynchronously."),
		mcp.WithString("command", mcp.Required(), mcp.Description("Command name as listed by list_commands")),
	)
	s.mcpServer.AddTool(runTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := request.GetString("command", "")
		if !s.ctrl.Orchestrator().Has(name) {
			return mcp.NewToolResultError(fmt.Sprintf("unknown command: %s", name)), nil
		}
		if err := s.ctrl.RequestRun(name); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("run request failed: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("run requested: %s", name)), nil
	})

	// TOOL: cancel_command
	cancelTool := mcp.NewTool("cancel_command",
		mcp.WithDescription("Request cancellation of every active run of the named command."),
		mcp.WithString("command", mcp.Required(), mcp.Description("Command name as listed by list_commands")),
	)
	s.mcpServer.AddTool(cancelTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := request.GetString("command", "")
		if !s.ctrl.Orchestrator().Has(name) {
			return mcp.NewToolResultError(fmt.Sprintf("unknown command: %s", name)), nil
		}
		if err := s.ctrl.RequestCancel(name); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("cancel request failed: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("cancel requested: %s", name)), nil
	})

	// TOOL: command_status
	statusTool := mcp.NewTool("command_status",
		mcp.WithDescription("Get active runs and recent history for one command."),
		mcp.WithString("command", mcp.Required(), mcp.Description("Command name")),
		mcp.WithNumber("limit", mcp.Description("Maximum history entries to return (default 10)")),
		mcp.WithOutputSchema[CommandStatus](),
	)
	s.mcpServer.AddTool(statusTool, mcp.NewStructuredToolHandler(func(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (CommandStatus, error) {
		name, _ := args["command"].(string)
		limit := 10
		if n, ok := args["limit"].(float64); ok && n > 0 {
			limit = int(n)
		}
		orch := s.ctrl.Orchestrator()
		if !orch.Has(name) {
			return CommandStatus{}, fmt.Errorf("unknown command: %s", name)
		}
		return CommandStatus{
			Command:   name,
			Active:    len(orch.Active(name)),
			Duplicate: s.ctrl.IsDuplicate(name),
			History:   orch.History(name, limit),
		}, nil
	}))

	// TOOL: fire_trigger
	triggerTool := mcp.NewTool("fire_trigger",
		mcp.WithDescription("Fire an external trigger event. Commands listing the event among their triggers start with it as chain root."),
		mcp.WithString("event", mcp.Required(), mcp.Description("Trigger event identifier, e.g. file_changed:src")),
	)
	s.mcpServer.AddTool(triggerTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		event := request.GetString("event", "")
		if event == "" {
			return mcp.NewToolResultError("event is required"), nil
		}
		if err := s.ctrl.Orchestrator().Trigger(ctx, event); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("trigger failed: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("trigger fired: %s", event)), nil
	})
}

func (s *Server) registerResources() {
	// EXPOSE: podium://diagnostics
	s.mcpServer.AddResource(mcp.NewResource("podium://diagnostics", "Configuration Diagnostics",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.ctrl.Validation())
		if err != nil {
			return nil, fmt.Errorf("failed to encode diagnostics: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "podium://diagnostics",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

type commandEntry struct {
	Name      string         `json:"name"`
	Status    string         `json:"status"`
	Duplicate bool           `json:"duplicate"`
	Children  []commandEntry `json:"children,omitempty"`
}

func (s *Server) forestSnapshot() []commandEntry {
	orch := s.ctrl.Orchestrator()
	var walk func(node *domain.CommandNode) commandEntry
	walk = func(node *domain.CommandNode) commandEntry {
		e := commandEntry{
			Name:      node.Name(),
			Status:    string(domain.StatusPending),
			Duplicate: s.ctrl.IsDuplicate(node.Name()),
		}
		if len(orch.Active(node.Name())) > 0 {
			e.Status = string(domain.StatusRunning)
		} else if history := orch.History(node.Name(), 1); len(history) > 0 {
			e.Status = string(history[0].Status)
		}
		for _, child := range node.Children {
			e.Children = append(e.Children, walk(child))
		}
		return e
	}

	entries := make([]commandEntry, 0, len(s.ctrl.Forest()))
	for _, root := range s.ctrl.Forest() {
		entries = append(entries, walk(root))
	}
	return entries
}
