package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aretw0/stitch/pkg/domain"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect stored wizard state",
}

var sessionsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List session ids with stored state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := commandStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		ids, err := store.Sessions(cmd.Context())
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session> <wizard>",
	Short: "Print the stored values of a wizard instance",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := commandStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		values, err := store.Get(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), values)
	},
}

var sessionsClearCmd = &cobra.Command{
	Use:   "clear <session> <wizard>",
	Short: "Delete the stored values of a wizard instance",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := commandStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		key := domain.StateKey{SessionID: args[0], WizardID: args[1]}
		if err := store.Store.Clear(cmd.Context(), key); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", key)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsLsCmd, sessionsShowCmd, sessionsClearCmd)
}

func commandStore(cmd *cobra.Command) (*stateStore, error) {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return openStore(cmd.Context(), cfg.Store)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
