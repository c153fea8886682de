// Utility for storing Tessie API tokens in the system keyring

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/tessiemcp/tessie-mcp/pkg/cli"
)

func usage() {
	w := pflag.CommandLine.Output()
	fmt.Fprintf(w, "usage: %s [--token-name token_name] [--delete] [file]\n", filepath.Base(os.Args[0]))
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Reads a Tessie API token from stdin or file and saves it under token_name in the system")
	fmt.Fprintf(w, "keyring. The token_name defaults to $%s, or \"default\".\n", cli.EnvTessieTokenName)
	fmt.Fprintln(w, "")
	pflag.PrintDefaults()
}

func main() {
	returnCode := 1
	defer func() {
		os.Exit(returnCode)
	}()

	config, err := cli.NewConfig(cli.FlagToken)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load credential configuration: %s\n", err)
		return
	}

	var remove bool
	pflag.BoolVar(&remove, "delete", false, "Remove the keyring entry instead of writing it")
	config.RegisterCommandLineFlags(pflag.CommandLine)
	pflag.Usage = usage
	pflag.Parse()
	if err := config.ReadFromEnvironment(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return
	}

	if remove {
		if err := config.DeleteTokenFromKeyring(); err != nil {
			fmt.Fprintf(os.Stderr, "Error removing token from keyring: %s\n", err)
			return
		}
		returnCode = 0
		return
	}

	var token []byte
	switch pflag.NArg() {
	case 0:
		token, err = io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading token from stdin: %s\n", err)
			return
		}
	case 1:
		token, err = os.ReadFile(pflag.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading token from file: %s\n", err)
			return
		}
	default:
		fmt.Fprintln(os.Stderr, "Too many command-line arguments")
		return
	}

	trimmed := strings.TrimSpace(string(token))
	if trimmed == "" {
		fmt.Fprintln(os.Stderr, "Token is empty")
		return
	}
	if err := config.SaveTokenToKeyring(trimmed); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving token to keyring: %s\n", err)
		return
	}

	returnCode = 0
}
