package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/lineage/internal/api"
	"github.com/giantswarm/lineage/internal/classifier"
	"github.com/giantswarm/lineage/internal/dependency"
	"github.com/giantswarm/lineage/internal/formatting"
	"github.com/giantswarm/lineage/internal/status"
	"github.com/giantswarm/lineage/internal/workflow"
)

type stepSummary struct {
	Name        string `json:"name"`
	ID          string `json:"id"`
	CommandLine string `json:"commandLine"`
	Inputs      int    `json:"inputs"`
	Outputs     int    `json:"outputs"`
	Parameters  int    `json:"parameters"`
}

type validateResult struct {
	Name     string        `json:"name"`
	Path     string        `json:"path"`
	Steps    []stepSummary `json:"steps"`
	Warnings []string      `json:"warnings"`
}

// handleValidateWorkflow loads one workflow file and summarises its bound
// steps.
func (s *Server) handleValidateWorkflow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path argument is required"), nil
	}

	f, err := s.deps.Loader.Load(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid workflow: %v", err)), nil
	}

	res := validateResult{Name: f.Name, Path: f.Path, Steps: []stepSummary{}, Warnings: f.Warnings}
	if res.Warnings == nil {
		res.Warnings = []string{}
	}
	for _, leaf := range f.ToPlans().Leaves() {
		line, err := leaf.CommandLine()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to render %s: %v", leaf.Name, err)), nil
		}
		res.Steps = append(res.Steps, stepSummary{
			Name:        leaf.Name,
			ID:          leaf.ID,
			CommandLine: line,
			Inputs:      len(leaf.Inputs),
			Outputs:     len(leaf.Outputs),
			Parameters:  len(leaf.Parameters),
		})
	}
	return mcp.NewToolResultText(formatting.PrettyJSON(res)), nil
}

// handlePlanGraph builds the graph of the leaf plans of several workflow
// files.
func (s *Server) handlePlanGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	paths := request.GetStringSlice("paths", nil)
	if len(paths) == 0 {
		return mcp.NewToolResultError("paths argument is required"), nil
	}
	virtualLinks := request.GetBool("virtual_links", s.deps.VirtualLinks)

	files, err := s.deps.Loader.LoadAll(ctx, paths)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load workflows: %v", err)), nil
	}

	g, err := dependency.Build(dependency.FromPlans(workflow.Plans(files)), dependency.Options{VirtualLinks: virtualLinks})
	if err != nil {
		if api.IsGraphCycleError(err) {
			return mcp.NewToolResultError(fmt.Sprintf("Workflow graph has a cycle: %v", err)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to build graph: %v", err)), nil
	}

	return mcp.NewToolResultText(formatting.PrettyJSON(formatting.NewGraphView(g, g.TopologicalOrder()))), nil
}

// handleWorkflowStatus compares the recorded activities with the working
// tree.
func (s *Server) handleWorkflowStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter, err := status.NewPathFilter(request.GetStringSlice("paths", nil)...)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid path filter: %v", err)), nil
	}

	history, err := s.deps.Activities.List()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to read activities: %v", err)), nil
	}

	var snapshot api.RepositorySnapshot
	if s.deps.Snapshot != nil {
		snapshot, err = s.deps.Snapshot()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to read repository state: %v", err)), nil
		}
	}

	st, err := status.Check(history, snapshot, s.deps.Checker, s.deps.Hasher, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to compute status: %v", err)), nil
	}
	return mcp.NewToolResultText(formatting.PrettyJSON(st)), nil
}

// handleClassifyCommand classifies the tokens of a command line against the
// filesystem.
func (s *Server) handleClassifyCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	command, err := request.RequireString("command")
	if err != nil {
		return mcp.NewToolResultError("command argument is required"), nil
	}

	tokens, err := classifier.Split(command)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to split command: %v", err)), nil
	}
	res := classifier.Classify(tokens, s.deps.Checker, classifier.Options{
		ExplicitParameters: request.GetStringSlice("explicit_parameters", nil),
	})
	return mcp.NewToolResultText(formatting.PrettyJSON(res)), nil
}
