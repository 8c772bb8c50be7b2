package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"showrunner/internal/store"
	"showrunner/internal/workflow"
)

func newSceneCommand(ctx *commandContext) *cobra.Command {
	sceneCmd := &cobra.Command{
		Use:   "scene",
		Short: "Manage scenes and batch generation",
	}

	sceneCmd.AddCommand(newSceneAddCommand(ctx))
	sceneCmd.AddCommand(newSceneShotsCommand(ctx))
	sceneCmd.AddCommand(newSceneGenerateCommand(ctx))

	return sceneCmd
}

func newSceneAddCommand(ctx *commandContext) *cobra.Command {
	var projectID string
	var title string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a scene to a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				project, err := st.GetProject(cmd.Context(), projectID)
				if err != nil {
					return err
				}
				if project == nil {
					return fmt.Errorf("project %q not found", projectID)
				}
				scene := &store.Scene{ProjectID: projectID, Title: title}
				if err := st.CreateScene(cmd.Context(), scene); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created scene %d in project %s\n", scene.ID, projectID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Project the scene belongs to")
	cmd.Flags().StringVar(&title, "title", "", "Scene title")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newSceneShotsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "shots <scene-id>",
		Short: "List the shots of a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(st *store.Store) error {
				shots, err := st.ShotsByScene(cmd.Context(), id)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(shots))
				for _, shot := range shots {
					rows = append(rows, []string{
						strconv.FormatInt(shot.ID, 10),
						colorizeStatus(string(shot.Status)),
						string(shot.Engine),
						truncate(shot.Prompt, 48),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Status", "Engine", "Prompt"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}

func newSceneGenerateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "generate <scene-id>",
		Short: "Generate every pending shot in a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withManager(func(manager *workflow.Manager, _ *store.Store) error {
				started, err := manager.GenerateScene(cmd.Context(), id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Scene %d: %d shots generated\n", id, started)
				return nil
			})
		},
	}
}
