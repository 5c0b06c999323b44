package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/stitch"
	"github.com/aretw0/stitch/internal/presentation/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph <wizard>",
	Short: "Print a Mermaid diagram of a wizard",
	Long: `Prints the steps and fields of a wizard as a Mermaid flowchart, with a
dotted edge from every field referenced by a visibility condition to the field it controls.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		source, err := stitch.OpenSource(cfg.Definitions)
		if err != nil {
			return err
		}
		def, err := source.Load(args[0])
		if err != nil {
			return err
		}

		var overlay *graph.Overlay
		if current, _ := cmd.Flags().GetString("current"); current != "" {
			overlay = &graph.Overlay{CurrentStep: current}
			for _, key := range def.StepKeys() {
				if key == current {
					break
				}
				overlay.CompletedSteps = append(overlay.CompletedSteps, key)
			}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(def, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("current", "", "Highlight this step as current and the ones before it as completed")
}
