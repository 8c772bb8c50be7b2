package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"showrunner/internal/pipeline"
	"showrunner/internal/store"
	"showrunner/internal/workflow"
)

var phaseTitler = cases.Title(language.English)

func phaseLabel(phase string) string {
	return phaseTitler.String(strings.ReplaceAll(phase, "_", " "))
}

func newPipelineCommand(ctx *commandContext) *cobra.Command {
	pipelineCmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Inspect and drive entity pipelines",
	}

	pipelineCmd.AddCommand(newPipelineShowCommand(ctx))
	pipelineCmd.AddCommand(newPipelineAdvanceCommand(ctx))
	pipelineCmd.AddCommand(newPipelineOverrideCommand(ctx))

	return pipelineCmd
}

func parseEntityArgs(args []string) (store.EntityType, string, error) {
	entityType, ok := store.ParseEntityType(args[0])
	if !ok {
		return "", "", fmt.Errorf("entity type must be project or character, got %q", args[0])
	}
	return entityType, args[1], nil
}

func newPipelineShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <project|character> <entity-id>",
		Short: "Show an entity's phases in production order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entityType, entityID, err := parseEntityArgs(args)
			if err != nil {
				return err
			}
			return ctx.withManager(func(manager *workflow.Manager, _ *store.Store) error {
				entries, err := manager.GetPipelineState(cmd.Context(), entityType, entityID)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					rows = append(rows, []string{
						phaseLabel(entry.Phase),
						colorizeStatus(string(entry.Status)),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Phase", "Status"},
					rows,
					[]columnAlignment{alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}

func newPipelineAdvanceCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "advance <project|character> <entity-id>",
		Short: "Advance an entity's pipeline one step",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entityType, entityID, err := parseEntityArgs(args)
			if err != nil {
				return err
			}
			return ctx.withManager(func(manager *workflow.Manager, _ *store.Store) error {
				entry, err := manager.AdvancePhase(cmd.Context(), entityType, entityID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s is now %s (%s)\n",
					entityType, entityID, phaseLabel(entry.Phase), entry.Status)
				return nil
			})
		},
	}
}

func newPipelineOverrideCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "override <project|character> <entity-id> <phase> <complete|skip|reset>",
		Short: "Manually transition one pipeline phase",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			entityType, entityID, err := parseEntityArgs(args)
			if err != nil {
				return err
			}
			action, ok := pipeline.ParseOverrideAction(args[3])
			if !ok {
				return fmt.Errorf("action must be complete, skip, or reset, got %q", args[3])
			}
			return ctx.withManager(func(manager *workflow.Manager, _ *store.Store) error {
				if err := manager.OverridePipelinePhase(cmd.Context(), entityType, entityID, args[2], action); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %s to %s phase of %s %s\n",
					args[3], phaseLabel(args[2]), entityType, entityID)
				return nil
			})
		},
	}
}
