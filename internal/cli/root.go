// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package cli implements the reqflow command.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set by build flags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Execute runs the reqflow command with the process arguments.
func Execute() error {
	return NewRootCommand(os.Stdout, os.Stderr).Execute()
}

// NewRootCommand returns the reqflow root command, writing normal
// output to out and logs to errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "reqflow",
		Short: "Send HTTP requests through a configurable request pipeline",
		Long: `reqflow - send HTTP requests through a configurable request pipeline

Requests are merged over defaults loaded from a YAML file, passed
through rate limiting and request ID interceptors, and optionally
recorded in a SQLite history database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().String("config", "", "Path to YAML defaults file")
	root.PersistentFlags().String("history", "", "Path to SQLite request history database")
	root.PersistentFlags().BoolP("verbose", "v", false, "Log request dispatch to stderr")

	root.AddCommand(newRequestCommand())
	root.AddCommand(newHistoryCommand())
	root.AddCommand(newVersionCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "reqflow %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
