package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"showrunner/internal/store"
	"showrunner/internal/workflow"
)

func newRecoverCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "recover",
		Short: "Re-associate orphaned render artifacts with their shots",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(func(manager *workflow.Manager, _ *store.Store) error {
				recovered, err := manager.RecoverOrphans(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recovered %d shots\n", recovered)
				return nil
			})
		},
	}
}

func newClearStuckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-stuck",
		Short: "Force-fail stalled generations and free the accelerator gate",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(func(manager *workflow.Manager, _ *store.Store) error {
				cleared, err := manager.ClearStuckGenerations(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d stuck shots\n", cleared)
				return nil
			})
		},
	}
}
