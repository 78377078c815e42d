// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/gogama/reqflow/internal/history"
	"github.com/spf13/cobra"
)

func newHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently recorded requests",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}
	cmd.Flags().IntP("limit", "n", 20, "Maximum number of entries to list")
	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	file, err := loadFile(cmd)
	if err != nil {
		return err
	}
	if file.History == "" {
		return errors.New("no history database configured (use --history or the defaults file)")
	}
	store, err := history.Open(file.History)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	limit, _ := cmd.Flags().GetInt("limit")
	entries, err := store.List(cmd.Context(), limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tMETHOD\tURL\tSTATUS\tERROR")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			e.CreatedAt.Local().Format(time.DateTime), e.Method, e.URL, e.Status, e.Error)
	}
	return w.Flush()
}
