package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tessiemcp/tessie-mcp/internal/log"
	"github.com/tessiemcp/tessie-mcp/pkg/cli"
	"github.com/tessiemcp/tessie-mcp/pkg/control"
	"github.com/tessiemcp/tessie-mcp/pkg/mcp"
	"github.com/tessiemcp/tessie-mcp/pkg/telemetry"
	"github.com/tessiemcp/tessie-mcp/pkg/tessie"
	"github.com/tessiemcp/tessie-mcp/pkg/tools"
)

const (
	transportStdio = "stdio"
	transportHTTP  = "http"
)

const openListenerWarning = `Listening on a network interface without $TESSIE_MCP_JWT_SECRET. Any client that can reach
this port can read vehicle telemetry and send the enabled vehicle commands.`

// backend holds the components shared by every transport.
type backend struct {
	account   *tessie.Account
	telemetry *telemetry.Telemetry
	executor  *control.Executor
	table     *tools.Table
}

func newBackend(config *cli.Config) (*backend, error) {
	if err := config.LoadCredentials(); err != nil {
		return nil, err
	}
	acct, err := config.Account()
	if err != nil {
		return nil, err
	}
	policy, err := config.Policy()
	if err != nil {
		return nil, err
	}
	t := telemetry.New(config.VIN, acct, policy)
	executor := control.New(config.VIN, acct)
	if config.EnableControls {
		executor.EnableAll()
	}
	table, err := tools.New(t, executor)
	if err != nil {
		return nil, err
	}
	log.Info("Serving %d tools for %s (telemetry policy %s)", len(table.Tools()), tessie.SanitizeVIN(config.VIN), policy)
	return &backend{account: acct, telemetry: t, executor: executor, table: table}, nil
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func newServeCommand() *cobra.Command {
	config, err := cli.NewConfig(cli.FlagAll)
	if err != nil {
		panic(err)
	}
	var (
		transport string
		envFile   string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve tools over stdio or streamable HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if transport != transportStdio && transport != transportHTTP {
				return fmt.Errorf("unknown transport %q (expected %s or %s)", transport, transportStdio, transportHTTP)
			}
			if err := loadConfig(config, envFile); err != nil {
				return err
			}
			return serve(cmd.Context(), config, transport)
		},
	}
	cmd.Flags().StringVar(&transport, "transport", transportStdio, "Transport to serve on ("+transportStdio+"|"+transportHTTP+")")
	cmd.Flags().StringVar(&envFile, "env-file", cli.DefaultEnvFile, "Read environment variables from `file`")
	config.RegisterCommandLineFlags(cmd.Flags())
	return cmd
}

func serve(parent context.Context, config *cli.Config, transport string) error {
	if parent == nil {
		parent = context.Background()
	}
	b, err := newBackend(config)
	if err != nil {
		return err
	}
	server := mcp.NewServer(b.table)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	switch transport {
	case transportStdio:
		g.Go(func() error {
			// End of input ends the process.
			defer stop()
			return server.ServeStdio(ctx)
		})
	case transportHTTP:
		if config.JWTSecret == "" && !isLoopback(config.Host) {
			log.Warning(openListenerWarning)
		}
		httpServer := mcp.NewHTTPServer(server, config.Addr(), []byte(config.JWTSecret))
		g.Go(func() error {
			return httpServer.Start(ctx)
		})
	}
	return g.Wait()
}
