package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	_ "go.uber.org/automaxprocs"

	"github.com/tessiemcp/tessie-mcp/internal/log"
	"github.com/tessiemcp/tessie-mcp/pkg/cli"
	"github.com/tessiemcp/tessie-mcp/pkg/mcp"
	"github.com/tessiemcp/tessie-mcp/pkg/tessie"
)

const description = `tessie-mcp exposes vehicle telemetry and a small set of vehicle controls from the Tessie API
as Model Context Protocol tools.

Telemetry reads share one cached vehicle snapshot that is refreshed according to
$TELEMETRY_INTERVAL (minutes, or "realtime"). Only honk and flash are live unless
--enable-controls is set.`

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "tessie-mcp",
		Short:         "Tessie vehicle tools for MCP clients",
		Long:          description,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	serve := newServeCommand()
	root.AddCommand(serve, newToolsCommand(), newSnapshotCommand(), newVersionCommand())

	// Running without a subcommand serves on stdio, which is what MCP clients launch.
	root.Flags().AddFlagSet(serve.Flags())
	root.RunE = serve.RunE
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", mcp.ServerName, tessie.Version())
		},
	}
}

// loadConfig completes config from the .env file and environment after flags have been parsed.
func loadConfig(config *cli.Config, envFile string) error {
	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}
	if err := config.ReadFromEnvironment(); err != nil {
		return err
	}
	if config.Verbose {
		log.SetLevel(log.LevelDebug)
	}
	return config.Validate()
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
