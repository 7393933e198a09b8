package main

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/pathway-extract/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server on stdio",
	Long: `Start the Model Context Protocol server. Requests are read from stdin
and responses written to stdout, one JSON-RPC message per line. Logs go to
stderr.

MCP client configuration:
  {
    "mcpServers": {
      "pathway-extract": {
        "command": "/path/to/pathway-extract",
        "args": ["serve", "--vocab", "/path/to/genes.json"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		current.log.WithField("version", server.Version).Debug("starting MCP server")
		srv := server.New(current.extractor, current.masker, current.log)
		return srv.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
