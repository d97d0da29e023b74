package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/lineage/internal/activity"
	"github.com/giantswarm/lineage/internal/api"
	"github.com/giantswarm/lineage/internal/status"
	"github.com/giantswarm/lineage/internal/workflow"
	"github.com/giantswarm/lineage/pkg/logging"
)

// Dependencies are the services the tools read from.
type Dependencies struct {
	Loader     *workflow.Loader
	Activities activity.Store
	Checker    api.PathChecker
	// Hasher may be nil; modified files are then only detected through the
	// snapshot
	Hasher status.Hasher
	// Snapshot returns the repository state; nil means an empty snapshot
	Snapshot     func() (api.RepositorySnapshot, error)
	VirtualLinks bool
}

// Server wraps an MCP server with the lineage tools registered.
type Server struct {
	deps      Dependencies
	mcpServer *server.MCPServer
}

// New creates the server and registers its tools.
func New(version string, deps Dependencies) *Server {
	mcpServer := server.NewMCPServer(
		"lineage",
		version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		deps:      deps,
		mcpServer: mcpServer,
	}
	s.registerTools()
	return s
}

// Start serves the MCP protocol on stdin and stdout until the client
// disconnects.
func (s *Server) Start(ctx context.Context) error {
	logging.Debug("MCPServer", "Serving lineage tools on stdio")
	return server.ServeStdio(s.mcpServer)
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	validateTool := mcp.NewTool("validate_workflow",
		mcp.WithDescription("Parse a workflow file, bind every step command to its declared arguments and report the resulting steps and warnings"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path of the workflow file (.yaml, .yml or .hcl)"),
		),
	)
	s.mcpServer.AddTool(validateTool, s.handleValidateWorkflow)

	graphTool := mcp.NewTool("plan_graph",
		mcp.WithDescription("Build the execution graph of one or more workflow files and return the topological order and the edges"),
		mcp.WithArray("paths",
			mcp.Required(),
			mcp.Description("Paths of the workflow files"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithBoolean("virtual_links",
			mcp.Description("Link outputs to inputs sharing a path (default: configured value)"),
		),
	)
	s.mcpServer.AddTool(graphTool, s.handlePlanGraph)

	statusTool := mcp.NewTool("workflow_status",
		mcp.WithDescription("Report the outputs and activities made stale by modified or deleted inputs"),
		mcp.WithArray("paths",
			mcp.Description("Restrict the report to these paths or glob patterns"),
			mcp.Items(map[string]any{"type": "string"}),
		),
	)
	s.mcpServer.AddTool(statusTool, s.handleWorkflowStatus)

	classifyTool := mcp.NewTool("classify_command",
		mcp.WithDescription("Split a command line into base command, path arguments and parameters"),
		mcp.WithString("command",
			mcp.Required(),
			mcp.Description("The command line to classify"),
		),
		mcp.WithArray("explicit_parameters",
			mcp.Description("Values that stay parameters even when they name an existing path"),
			mcp.Items(map[string]any{"type": "string"}),
		),
	)
	s.mcpServer.AddTool(classifyTool, s.handleClassifyCommand)
}
