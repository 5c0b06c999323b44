package tui

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cast"
	"golang.org/x/term"

	"github.com/aretw0/stitch/pkg/domain"
)

// NewRenderer returns a function that renders markdown using glamour.
// Without a usable renderer the markdown is returned as is.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// IsInteractive reports whether stdin and stdout are both terminals.
func IsInteractive() bool {
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// StepMarkdown describes a rendered step: header, progress, visible fields
// grouped by section, current values and errors.
func StepMarkdown(view *domain.StepView) string {
	var sb strings.Builder

	title := view.WizardTitle
	if title == "" {
		title = view.WizardID
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)

	step := view.StepTitle
	if step == "" {
		step = view.StepKey
	}
	fmt.Fprintf(&sb, "## Step %d of %d: %s\n\n", view.StepIndex, view.TotalSteps, step)
	fmt.Fprintf(&sb, "Progress: **%d%%** %s\n\n", view.ProgressPercent, progressBar(view.ProgressPercent, 20))

	if len(view.Structure.Sections) > 0 {
		for _, sec := range view.Structure.Sections {
			if sec.Title != "" {
				fmt.Fprintf(&sb, "### %s\n\n", sec.Title)
			}
			writeFields(&sb, sec.Fields, view)
		}
	} else {
		writeFields(&sb, view.Structure.Fields, view)
	}

	if len(view.Errors) > 0 {
		sb.WriteString("### Please fix\n\n")
		for _, key := range view.Errors.Keys() {
			for _, msg := range view.Errors[key] {
				fmt.Fprintf(&sb, "- %s\n", msg)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func writeFields(sb *strings.Builder, fields []domain.Field, view *domain.StepView) {
	for _, f := range fields {
		if f.Type == domain.FieldHidden {
			continue
		}
		fmt.Fprintf(sb, "- **%s**", fieldLabel(f))
		if v, ok := view.Values[f.Key]; ok && f.Type != domain.FieldPassword {
			if s := displayValue(v); s != "" {
				fmt.Fprintf(sb, ": `%s`", s)
			}
		}
		if msg := view.Errors.First(f.Key); msg != "" {
			fmt.Fprintf(sb, " (%s)", msg)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

func displayValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, cast.ToString(item))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return "{" + strings.Join(keys, ", ") + "}"
	}
	return cast.ToString(v)
}

func progressBar(pct, width int) string {
	filled := pct * width / 100
	return "`" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "`"
}

func fieldLabel(f domain.Field) string {
	if f.Label != "" {
		return f.Label
	}
	return f.Key
}
