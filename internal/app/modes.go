package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/giantswarm/lineage/internal/mcpserver"
	"github.com/giantswarm/lineage/pkg/logging"
)

// RunMCPServer serves the lineage MCP tools on stdio.
//
// Signal Handling:
//   - SIGINT (Ctrl+C): stops serving
//   - SIGTERM: stops serving
func RunMCPServer(ctx context.Context, services *Services, version string) error {
	srv := mcpserver.New(version, services.MCPDependencies())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logging.Error("MCP", err, "MCP server stopped")
		}
		return err
	case <-ctx.Done():
		logging.Debug("MCP", "Shutting down MCP server")
		return nil
	}
}
