package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"showrunner/internal/store"
	"showrunner/internal/workflow"
)

func newReviewCommand(ctx *commandContext) *cobra.Command {
	reviewCmd := &cobra.Command{
		Use:   "review",
		Short: "Record human review decisions",
	}

	reviewCmd.AddCommand(newReviewApproveCommand(ctx))
	reviewCmd.AddCommand(newReviewRejectCommand(ctx))

	return reviewCmd
}

func newReviewApproveCommand(ctx *commandContext) *cobra.Command {
	var feedback string

	cmd := &cobra.Command{
		Use:   "approve <shot-id>...",
		Short: "Approve one or more completed shots",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return ctx.withManager(func(manager *workflow.Manager, _ *store.Store) error {
				if len(ids) == 1 {
					if err := manager.ReviewShot(cmd.Context(), ids[0], true, feedback, false); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Approved shot %d\n", ids[0])
					return nil
				}
				result := manager.BatchReview(cmd.Context(), ids, true, feedback)
				fmt.Fprintf(cmd.OutOrStdout(), "Approved %d of %d shots\n", result.Updated, result.Total)
				for id, reviewErr := range result.Errors {
					fmt.Fprintf(cmd.OutOrStdout(), "  shot %d: %v\n", id, reviewErr)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&feedback, "feedback", "", "Review feedback note")
	return cmd
}

func newReviewRejectCommand(ctx *commandContext) *cobra.Command {
	var feedback string
	var blacklist bool

	cmd := &cobra.Command{
		Use:   "reject <shot-id>",
		Short: "Reject a shot, optionally blacklisting its engine for its characters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withManager(func(manager *workflow.Manager, _ *store.Store) error {
				if err := manager.ReviewShot(cmd.Context(), id, false, feedback, blacklist); err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Rejected shot %d\n", id)
				if blacklist {
					fmt.Fprintln(out, "Engine blacklisted for the shot's characters; reset and regenerate to re-route")
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&feedback, "feedback", "", "Review feedback note")
	cmd.Flags().BoolVar(&blacklist, "blacklist", false, "Permanently exclude the shot's engine for its characters")
	return cmd
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := parseID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
