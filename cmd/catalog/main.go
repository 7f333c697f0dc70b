// Command catalog serves the persons and genres catalog web application.
//
// STARTUP SEQUENCE (catalog serve):
//  1. Load configuration from a YAML file and/or the environment
//  2. Initialise the logger
//  3. Connect to the database and create the tables
//  4. Parse the templates
//  5. Register all HTTP routes and start the server in a goroutine
//  6. Block until an OS signal (Ctrl+C / kill) arrives
//  7. Gracefully shut down: finish in-flight requests, then exit
//
// RUNNING THE SERVER:
//
//	go run ./cmd/catalog serve --config=config/local.yaml
//
// or (with environment variables only):
//
//	DATABASE_URL=catalog.db go run ./cmd/catalog serve
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "1.0.0"
	buildTime string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "catalog",
		Short:         "Persons and genres catalog web application",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newServeCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "catalog %s", version)
			if buildTime != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " (built %s)", buildTime)
			}
			fmt.Fprintln(cmd.OutOrStdout())
		},
	}
}
