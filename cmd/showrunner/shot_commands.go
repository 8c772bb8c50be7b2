package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"showrunner/internal/api"
	"showrunner/internal/store"
	"showrunner/internal/workflow"
)

func newShotCommand(ctx *commandContext) *cobra.Command {
	shotCmd := &cobra.Command{
		Use:   "shot",
		Short: "Inspect and drive individual shots",
	}

	shotCmd.AddCommand(newShotListCommand(ctx))
	shotCmd.AddCommand(newShotShowCommand(ctx))
	shotCmd.AddCommand(newShotAddCommand(ctx))
	shotCmd.AddCommand(newShotRouteCommand(ctx))
	shotCmd.AddCommand(newShotGenerateCommand(ctx))
	shotCmd.AddCommand(newShotResetCommand(ctx))

	return shotCmd
}

func newShotListCommand(ctx *commandContext) *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List shots, optionally filtered by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				items, err := api.NewShotService(st).List(cmd.Context(), statusFilter)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{
						strconv.FormatInt(item.ID, 10),
						strconv.FormatInt(item.SceneID, 10),
						colorizeStatus(item.Status),
						item.Engine,
						truncate(item.Prompt, 48),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Scene", "Status", "Engine", "Prompt"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&statusFilter, "status", "", "Filter by status (pending, generating, completed, failed)")
	return cmd
}

func newShotShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <shot-id>",
		Short: "Show one shot in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(st *store.Store) error {
				shot, err := st.GetShot(cmd.Context(), id)
				if err != nil {
					return err
				}
				if shot == nil {
					return fmt.Errorf("shot %d not found", id)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Shot %d (scene %d)\n", shot.ID, shot.SceneID)
				fmt.Fprintf(out, "  Status:      %s\n", colorizeStatus(string(shot.Status)))
				fmt.Fprintf(out, "  Characters:  %v\n", shot.CharacterIDs)
				fmt.Fprintf(out, "  Prompt:      %s\n", shot.Prompt)
				if shot.Engine != "" {
					fmt.Fprintf(out, "  Engine:      %s (%s, rule %d)\n", shot.Engine, shot.Mode, shot.RuleIndex)
				}
				if shot.LoRAName != "" {
					fmt.Fprintf(out, "  LoRA:        %s @ %.2f\n", shot.LoRAName, shot.LoRAWeight)
				}
				if shot.OutputPath != "" {
					fmt.Fprintf(out, "  Output:      %s (%.1fs)\n", shot.OutputPath, shot.DurationSeconds)
				}
				if shot.ErrorMessage != "" {
					fmt.Fprintf(out, "  Error:       %s\n", shot.ErrorMessage)
				}
				return nil
			})
		},
	}
}

func newShotAddCommand(ctx *commandContext) *cobra.Command {
	var sceneID int64
	var prompt string
	var characters []string
	var sourceImage string
	var sourceVideo string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a pending shot to a scene",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				scene, err := st.GetScene(cmd.Context(), sceneID)
				if err != nil {
					return err
				}
				if scene == nil {
					return fmt.Errorf("scene %d not found", sceneID)
				}
				shot := &store.Shot{
					SceneID:      sceneID,
					CharacterIDs: characters,
					Prompt:       prompt,
					SourceImage:  sourceImage,
					SourceVideo:  sourceVideo,
				}
				if err := st.CreateShot(cmd.Context(), shot); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created shot %d in scene %d\n", shot.ID, sceneID)
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&sceneID, "scene", 0, "Scene the shot belongs to")
	cmd.Flags().StringVar(&prompt, "prompt", "", "Generation prompt")
	cmd.Flags().StringSliceVar(&characters, "character", nil, "Character ID (repeatable)")
	cmd.Flags().StringVar(&sourceImage, "image", "", "Source keyframe image path")
	cmd.Flags().StringVar(&sourceVideo, "clip", "", "Source reference clip path")
	_ = cmd.MarkFlagRequired("scene")
	_ = cmd.MarkFlagRequired("prompt")
	return cmd
}

func newShotRouteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "route <shot-id>",
		Short: "Show which engine a shot would route to, without generating",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withManager(func(manager *workflow.Manager, _ *store.Store) error {
				decision, err := manager.SelectEngine(cmd.Context(), id)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Engine: %s (%s)\n", decision.Engine, decision.Mode)
				fmt.Fprintf(out, "Rule:   %d (%s)\n", decision.RuleIndex, decision.RuleName)
				if decision.LoRA != nil {
					fmt.Fprintf(out, "LoRA:   %s @ %.2f\n", decision.LoRA.Name, decision.LoRA.Weight)
				}
				if decision.Forced {
					fmt.Fprintln(out, "Warning: fallback forced despite blacklist")
				}
				return nil
			})
		},
	}
}

func newShotGenerateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "generate <shot-id>",
		Short: "Route and render a shot, waiting for completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withManager(func(manager *workflow.Manager, st *store.Store) error {
				if err := manager.GenerateShot(cmd.Context(), id); err != nil {
					return err
				}
				shot, err := st.GetShot(cmd.Context(), id)
				if err != nil {
					return err
				}
				if shot != nil && shot.OutputPath != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "Shot %d completed: %s\n", id, shot.OutputPath)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Shot %d generation finished\n", id)
				}
				return nil
			})
		},
	}
}

func newShotResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <shot-id>",
		Short: "Return a completed or failed shot to pending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(st *store.Store) error {
				if err := st.ResetShot(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Shot %d reset to pending\n", id)
				return nil
			})
		},
	}
}

func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", value)
	}
	return id, nil
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	if limit <= 3 {
		return value[:limit]
	}
	return value[:limit-3] + "..."
}
