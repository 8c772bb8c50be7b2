package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"showrunner/internal/engines"
	"showrunner/internal/store"
)

func newCharacterCommand(ctx *commandContext) *cobra.Command {
	characterCmd := &cobra.Command{
		Use:   "character",
		Short: "Manage character assets",
	}

	characterCmd.AddCommand(newCharacterLoRACommand(ctx))

	return characterCmd
}

func newCharacterLoRACommand(ctx *commandContext) *cobra.Command {
	var characterID string
	var engineName string
	var name string
	var weight float64

	cmd := &cobra.Command{
		Use:   "lora",
		Short: "Register a trained character LoRA for an engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, ok := engines.Parse(engineName)
			if !ok {
				return fmt.Errorf("unknown engine %q", engineName)
			}
			return ctx.withStore(func(st *store.Store) error {
				asset := store.LoRAAsset{
					CharacterID: characterID,
					Engine:      engine,
					Name:        name,
					Weight:      weight,
				}
				if err := st.UpsertLoRAAsset(cmd.Context(), asset); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Registered LoRA %s for %s on %s\n", name, characterID, engine)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&characterID, "character", "", "Character identifier")
	cmd.Flags().StringVar(&engineName, "engine", "", "Engine the LoRA targets")
	cmd.Flags().StringVar(&name, "name", "", "LoRA file name")
	cmd.Flags().Float64Var(&weight, "weight", 1.0, "LoRA application weight")
	_ = cmd.MarkFlagRequired("character")
	_ = cmd.MarkFlagRequired("engine")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
