package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"showrunner/internal/engines"
	"showrunner/internal/store"
)

func newEnginesCommand(ctx *commandContext) *cobra.Command {
	enginesCmd := &cobra.Command{
		Use:   "engines",
		Short: "Inspect engines, review stats, and the blacklist",
	}

	enginesCmd.AddCommand(newEnginesListCommand())
	enginesCmd.AddCommand(newEnginesStatsCommand(ctx))
	enginesCmd.AddCommand(newEnginesBlacklistCommand(ctx))
	enginesCmd.AddCommand(newEnginesUnblacklistCommand(ctx))

	return enginesCmd
}

func newEnginesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "list",
		Short:       "List known engines and their scheduling attributes",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, len(engines.All()))
			for _, spec := range engines.All() {
				rows = append(rows, []string{
					string(spec.Engine),
					string(spec.DefaultMode),
					strconv.FormatBool(spec.Exclusive),
					strconv.FormatBool(spec.LoRACapable),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Engine", "Default Mode", "Exclusive", "LoRA"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newEnginesStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show review outcomes per character and engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				stats, err := st.EngineStats(cmd.Context())
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(stats))
				for _, stat := range stats {
					rows = append(rows, []string{
						stat.CharacterID,
						string(stat.Engine),
						strconv.Itoa(stat.Successes),
						strconv.Itoa(stat.Failures),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Character", "Engine", "Approved", "Rejected"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
				))
				return nil
			})
		},
	}
}

func newEnginesBlacklistCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "blacklist",
		Short: "List character/engine exclusions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				entries, err := st.ListBlacklist(cmd.Context())
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					rows = append(rows, []string{
						entry.CharacterID,
						string(entry.Engine),
						entry.Reason,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Character", "Engine", "Reason"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}

func newEnginesUnblacklistCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "unblacklist <character-id> <engine>",
		Short: "Remove one character/engine exclusion",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, ok := engines.Parse(args[1])
			if !ok {
				return fmt.Errorf("unknown engine %q", args[1])
			}
			return ctx.withStore(func(st *store.Store) error {
				removed, err := st.RemoveBlacklist(cmd.Context(), args[0], engine)
				if err != nil {
					return err
				}
				if !removed {
					fmt.Fprintf(cmd.OutOrStdout(), "No blacklist entry for %s on %s\n", args[0], engine)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed blacklist entry for %s on %s\n", args[0], engine)
				return nil
			})
		},
	}
}
