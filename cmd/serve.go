package cmd

import (
	"github.com/spf13/cobra"
)

// serveCmd exposes lineage to MCP clients.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve lineage tools over MCP on stdio",
	Long: `Serve starts an MCP server on stdin and stdout offering tools to
validate workflow files, print their execution graph, report stale outputs
and classify command lines. It runs until stdin closes or it is interrupted.

Log records go to stderr so they do not interfere with the protocol.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	application, err := newApplication(cmd)
	if err != nil {
		return err
	}
	return application.ServeMCP(cmd.Context(), GetVersion())
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
