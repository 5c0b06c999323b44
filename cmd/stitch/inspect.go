package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/stitch"
	"github.com/aretw0/stitch/internal/runtime"
	"github.com/aretw0/stitch/pkg/domain"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <wizard> <step>",
	Short: "Show which fields of a step are visible for given values",
	Long: `Resolves the structure of a step against a context built from --set
key=value pairs (values are parsed as YAML scalars, so "3" is a number and
"[a, b]" a list) and prints the visible and hidden fields.`,
	Args: cobra.ExactArgs(2),
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

		pairs, _ := cmd.Flags().GetStringArray("set")
		values, err := parseAssignments(pairs)
		if err != nil {
			return err
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		return runInspect(cmd.OutOrStdout(), def, args[1], values, asJSON)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringArray("set", nil, "Context value as key=value (repeatable)")
	inspectCmd.Flags().Bool("json", false, "Print the resolved structure as JSON")
}

func runInspect(w io.Writer, def *domain.WizardDefinition, stepKey string, values domain.Values, asJSON bool) error {
	step := def.FindStep(stepKey)
	if step == nil {
		return &domain.ConfigurationError{WizardID: def.ID, StepKey: stepKey, Err: domain.ErrStepNotFound}
	}

	resolved, err := runtime.ResolveStep(step, values)
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(w, resolved)
	}

	index := slices.Index(def.StepKeys(), step.Key)
	fmt.Fprintf(w, "%s / %s (step %d of %d)\n", def.ID, step.Key, index+1, len(def.Steps))
	for _, f := range step.AllFields() {
		mark := "visible"
		if !resolved.Has(f.Key) {
			mark = "hidden "
		}
		fmt.Fprintf(w, "  [%s] %s", mark, f.Key)
		if f.Visibility != nil {
			fmt.Fprintf(w, "  (%s)", describeGroup(f.Visibility))
		}
		fmt.Fprintln(w)
	}
	return nil
}

func describeGroup(g *domain.RuleGroup) string {
	parts := make([]string, 0, len(g.Rules))
	for _, c := range g.Rules {
		if c.Value == nil {
			parts = append(parts, fmt.Sprintf("%s %s", c.Path, c.Op))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s %v", c.Path, c.Op, c.Value))
	}
	sep := " and "
	if g.Logic == domain.LogicAny {
		sep = " or "
	}
	return strings.Join(parts, sep)
}

// parseAssignments turns key=value pairs into values, decoding each value as YAML.
func parseAssignments(pairs []string) (domain.Values, error) {
	values := domain.Values{}
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q, expected key=value", pair)
		}
		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", key, err)
		}
		values[key] = v
	}
	return values, nil
}
