package main

import (
	"context"
	"fmt"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/tessiemcp/tessie-mcp/pkg/cli"
	"github.com/tessiemcp/tessie-mcp/pkg/tools"
)

func newToolsCommand() *cobra.Command {
	var wide bool
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools offered to clients",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			table := uitable.New()
			if !wide {
				table.MaxColWidth = 80
				table.Wrap = true
			}
			table.AddRow("TOOL", "KIND", "DESCRIPTION")
			for _, d := range tools.TelemetryDescriptors() {
				table.AddRow(d.Name, "telemetry", d.Description)
			}
			for _, d := range tools.ControlDescriptors() {
				table.AddRow(d.Name, "control", d.Description)
			}
			fmt.Fprintln(cmd.OutOrStdout(), table)
		},
	}
	cmd.Flags().BoolVar(&wide, "wide", false, "Do not wrap descriptions")
	return cmd
}

func newSnapshotCommand() *cobra.Command {
	config, err := cli.NewConfig(cli.FlagVIN | cli.FlagToken | cli.FlagTelemetry)
	if err != nil {
		panic(err)
	}
	var envFile string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Fetch the vehicle snapshot and print it with its cache metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadConfig(config, envFile); err != nil {
				return err
			}
			b, err := newBackend(config)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if _, _, err := b.telemetry.Cache().Get(ctx); err != nil {
				return err
			}
			return b.telemetry.Cache().Export(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", cli.DefaultEnvFile, "Read environment variables from `file`")
	config.RegisterCommandLineFlags(cmd.Flags())
	return cmd
}
