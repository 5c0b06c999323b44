package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aretw0/stitch/internal/presentation/tui"
)

var runCmd = &cobra.Command{
	Use:   "run <wizard>",
	Short: "Fill a wizard interactively in the terminal",
	Long: `Walks through the steps of a wizard with terminal forms. Fields appear
and disappear as their visibility conditions change, and you can go back to
any previous step without losing what you typed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		engine, store, err := newEngine(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		sessionID, _ := cmd.Flags().GetString("session")
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		quiet, _ := cmd.Flags().GetBool("quiet")
		if !quiet && tui.IsInteractive() {
			tui.PrintBanner(os.Stdout)
		}

		session := tui.NewSession(engine, os.Stdin, os.Stdout)
		session.KeepState, _ = cmd.Flags().GetBool("keep")

		values, err := session.Run(cmd.Context(), sessionID, args[0])
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Fprintf(os.Stderr, "Aborted. Resume with --session %s\n", sessionID)
			return nil
		}
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd.OutOrStdout(), values)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("session", "", "Session id to resume (default: a new random id)")
	runCmd.Flags().Bool("keep", false, "Keep the stored state after the last step")
	runCmd.Flags().Bool("json", false, "Print the collected values as JSON when done")
	runCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
}
