package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"showrunner/internal/store"
)

func newProjectCommand(ctx *commandContext) *cobra.Command {
	projectCmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	projectCmd.AddCommand(newProjectAddCommand(ctx))

	return projectCmd
}

func newProjectAddCommand(ctx *commandContext) *cobra.Command {
	var id string
	var title string
	var loraName string
	var loraWeight float64

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create or update a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				project := store.Project{
					ID:         id,
					Title:      title,
					LoRAName:   loraName,
					LoRAWeight: loraWeight,
				}
				if err := st.UpsertProject(cmd.Context(), project); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved project %s\n", id)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Project identifier")
	cmd.Flags().StringVar(&title, "title", "", "Project title")
	cmd.Flags().StringVar(&loraName, "lora", "", "Project-wide style LoRA name")
	cmd.Flags().Float64Var(&loraWeight, "lora-weight", 0, "Project LoRA weight")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
