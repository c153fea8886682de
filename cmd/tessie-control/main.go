package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/shlex"
	"github.com/spf13/pflag"

	"github.com/tessiemcp/tessie-mcp/internal/log"
	"github.com/tessiemcp/tessie-mcp/pkg/cli"
	"github.com/tessiemcp/tessie-mcp/pkg/control"
	"github.com/tessiemcp/tessie-mcp/pkg/telemetry"
	"github.com/tessiemcp/tessie-mcp/pkg/tessie"
	"github.com/tessiemcp/tessie-mcp/pkg/tools"
)

func writeErr(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, format, a...)
	fmt.Fprintf(os.Stderr, "\n")
}

const usage = `
 * Every TOOL requires a VIN and a Tessie token.
 * Arguments are given as NAME=VALUE, for example: set_temperature temperature=21.5
 * Without a TOOL, commands are read interactively from stdin.`

func Usage() {
	fmt.Printf("Usage: %s [OPTION...] TOOL [NAME=VALUE...]\n", os.Args[0])
	fmt.Printf("\nRun %s help TOOL for more information. Valid TOOLs are listed below.", os.Args[0])
	fmt.Println("")
	fmt.Println(usage)
	fmt.Println("")

	fmt.Printf("Available OPTIONs:\n")
	pflag.PrintDefaults()
	fmt.Println("")
	fmt.Printf("Available TOOLs:\n")
	printTools(os.Stdout, append(tools.TelemetryDescriptors(), tools.ControlDescriptors()...))
}

func help(table *tools.Table, args []string) int {
	if len(args) == 0 {
		printTools(os.Stdout, table.Tools())
		return 0
	}
	d, ok := table.Describe(args[0])
	if !ok {
		writeErr("Unrecognized tool: %s", args[0])
		return 1
	}
	printToolUsage(os.Stdout, d)
	return 0
}

func runCommand(table *tools.Table, args []string, timeout time.Duration) int {
	if args[0] == "help" {
		return help(table, args[1:])
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	toolArgs, err := ParseArguments(args[1:])
	if err != nil {
		writeErr("%s", err)
		return 1
	}
	text, err := table.Dispatch(ctx, args[0], toolArgs)
	if err != nil {
		var argErr *tools.ArgumentError
		switch {
		case errors.Is(err, tools.ErrUnknownTool):
			writeErr("Unrecognized tool: %s", args[0])
		case errors.As(err, &argErr):
			writeErr("%s", err)
		case tessie.MayHaveSucceeded(err):
			writeErr("Couldn't verify success: %s", err)
		default:
			writeErr("%s", err)
		}
		return 1
	}
	fmt.Println(text)
	return 0
}

func runInteractiveShell(table *tools.Table, timeout time.Duration) int {
	scanner := bufio.NewScanner(os.Stdin)
	for fmt.Printf("> "); scanner.Scan(); fmt.Printf("> ") {
		args, err := shlex.Split(scanner.Text())
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" {
			return 0
		}
		if err != nil {
			writeErr("Invalid command: %s", err)
			continue
		}
		runCommand(table, args, timeout)
	}
	if err := scanner.Err(); err != nil {
		writeErr("Error reading command: %s", err)
		return 1
	}
	return 0
}

func main() {
	status := 1
	defer func() {
		os.Exit(status)
	}()

	var (
		commandTimeout time.Duration
		envFile        string
	)
	config, err := cli.NewConfig(cli.FlagVIN | cli.FlagToken | cli.FlagTelemetry)
	if err != nil {
		writeErr("Failed to load configuration: %s", err)
		return
	}
	pflag.Usage = Usage
	pflag.DurationVar(&commandTimeout, "command-timeout", 2*time.Minute, "Set timeout for each tool, retries included.")
	pflag.StringVar(&envFile, "env-file", cli.DefaultEnvFile, "Read environment variables from `file`")
	config.RegisterCommandLineFlags(pflag.CommandLine)
	pflag.Parse()

	if err := config.LoadEnvFile(envFile); err != nil {
		writeErr("%s", err)
		return
	}
	if err := config.ReadFromEnvironment(); err != nil {
		writeErr("%s", err)
		return
	}
	if config.Verbose {
		log.SetLevel(log.LevelDebug)
	}

	args := pflag.Args()
	if len(args) == 1 && args[0] == "help" {
		Usage()
		status = 0
		return
	}
	if err := config.Validate(); err != nil {
		writeErr("%s", err)
		return
	}
	if err := config.LoadCredentials(); err != nil {
		writeErr("Error loading credentials: %s", err)
		return
	}
	acct, err := config.Account()
	if err != nil {
		writeErr("Error: %s", err)
		return
	}
	policy, err := config.Policy()
	if err != nil {
		writeErr("Error: %s", err)
		return
	}

	executor := control.New(config.VIN, acct)
	if config.EnableControls {
		executor.EnableAll()
	}
	table, err := tools.New(telemetry.New(config.VIN, acct, policy), executor)
	if err != nil {
		writeErr("Error: %s", err)
		return
	}

	if len(args) > 0 {
		status = runCommand(table, args, commandTimeout)
	} else {
		status = runInteractiveShell(table, commandTimeout)
	}
}
