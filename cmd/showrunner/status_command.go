package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"showrunner/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show shot counts and database location",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				counts, err := st.StatusCounts(cmd.Context())
				if err != nil {
					return err
				}

				order := []store.ShotStatus{
					store.ShotPending,
					store.ShotGenerating,
					store.ShotCompleted,
					store.ShotFailed,
				}
				rows := make([][]string, 0, len(order))
				total := 0
				for _, status := range order {
					count := counts[status]
					total += count
					rows = append(rows, []string{
						colorizeStatus(string(status)),
						strconv.Itoa(count),
					})
				}
				rows = append(rows, []string{"total", strconv.Itoa(total)})

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(
					[]string{"Status", "Shots"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))
				fmt.Fprintf(out, "Database: %s\n", st.Path())
				return nil
			})
		},
	}
}
