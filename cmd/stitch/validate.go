package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aretw0/stitch"
	"github.com/aretw0/stitch/pkg/ports"
	"github.com/aretw0/stitch/pkg/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate [definitions]",
	Short: "Check wizard definitions for consistency",
	Long: `Loads every wizard and reports structural problems (duplicate keys,
missing options, malformed visibility conditions) and unknown validation rules.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		path := cfg.Definitions
		if len(args) > 0 {
			path = args[0]
		}

		source, err := stitch.OpenSource(path)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		if err := runValidate(cmd.OutOrStdout(), source, validator.New()); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Definitions are valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(w io.Writer, source ports.DefinitionSource, rules *validator.Validator) error {
	ids, err := source.List()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return errors.New("no wizards found")
	}

	var errs []error
	for _, id := range ids {
		def, err := source.Load(id)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		fields, conditional := 0, 0
		for i := range def.Steps {
			all := def.Steps[i].AllFields()
			if err := rules.Check(all); err != nil {
				errs = append(errs, fmt.Errorf("wizard %s step %s: %w", id, def.Steps[i].Key, err))
			}
			for _, f := range all {
				fields++
				if f.Visibility != nil {
					conditional++
				}
			}
		}
		fmt.Fprintf(w, "- %s: %d steps, %d fields (%d conditional)\n", id, len(def.Steps), fields, conditional)
	}
	return errors.Join(errs...)
}
