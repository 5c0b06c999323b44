package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"github.com/aretw0/stitch/pkg/domain"
)

// Overlay contains per-session progress to highlight on the diagram.
type Overlay struct {
	CompletedSteps []string
	CurrentStep    string
}

// GenerateMermaid produces a Mermaid flowchart of a wizard: one subgraph per
// step (nested subgraphs for sections), edges in step order and dotted edges
// from the fields a visibility condition reads to the field it controls.
//
// Shapes:
//   - Always visible field: [Rectangle]
//   - Conditional field: (["Stadium"])
//   - Unconditional choice field: {{"Hexagon"}}
//   - Context value not declared as a field: [/Parallelogram/]
func GenerateMermaid(def *domain.WizardDefinition, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	owners := make(map[string]string)
	stepOf := make(map[string]int)
	for i, step := range def.Steps {
		for _, f := range step.AllFields() {
			if _, seen := owners[f.Key]; !seen {
				owners[f.Key] = fieldID(step.Key, f.Key)
				stepOf[f.Key] = i
			}
		}
	}

	for i, step := range def.Steps {
		title := step.Title
		if title == "" {
			title = step.Key
		}
		fmt.Fprintf(&sb, "    subgraph %s[\"%d. %s\"]\n", stepID(step.Key), i+1, escape(title))
		if step.HasSections() {
			for j, sec := range step.Sections {
				secTitle := sec.Title
				if secTitle == "" {
					secTitle = fmt.Sprintf("Section %d", j+1)
				}
				fmt.Fprintf(&sb, "        subgraph %s_s%d[\"%s\"]\n", stepID(step.Key), j+1, escape(secTitle))
				writeFields(&sb, "            ", step.Key, sec.Fields)
				sb.WriteString("        end\n")
			}
		} else {
			writeFields(&sb, "        ", step.Key, step.Fields)
		}
		sb.WriteString("    end\n")
	}

	for i := 1; i < len(def.Steps); i++ {
		fmt.Fprintf(&sb, "    %s --> %s\n", stepID(def.Steps[i-1].Key), stepID(def.Steps[i].Key))
	}

	external := make(map[string]bool)
	for i, step := range def.Steps {
		for _, f := range step.AllFields() {
			if f.Visibility == nil {
				continue
			}
			target := fieldID(step.Key, f.Key)
			for _, c := range f.Visibility.Rules {
				root := c.Path
				if _, declared := owners[root]; !declared {
					root = rootKey(c.Path)
				}
				source, ok := owners[root]
				if !ok {
					source = "ctx_" + sanitize(c.Path)
					if !external[source] {
						external[source] = true
						fmt.Fprintf(&sb, "    %s[/\"%s\"/]\n", source, escape(c.Path))
					}
				}

				label := conditionLabel(c)
				if f.Visibility.Logic == domain.LogicAny && len(f.Visibility.Rules) > 1 {
					label = "any: " + label
				}
				if ok && stepOf[root] > i {
					label = "later step: " + label
				}
				fmt.Fprintf(&sb, "    %s -. \"%s\" .-> %s\n", source, escape(label), target)
			}
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef completed fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		done := make(map[string]bool)
		for _, key := range overlay.CompletedSteps {
			if key != "" && !done[key] {
				done[key] = true
				fmt.Fprintf(&sb, "    class %s completed;\n", stepID(key))
			}
		}
		if overlay.CurrentStep != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", stepID(overlay.CurrentStep))
		}
	}

	return sb.String()
}

func writeFields(sb *strings.Builder, indent, stepKey string, fields []domain.Field) {
	for _, f := range fields {
		opener, closer := "[", "]"
		switch {
		case f.Visibility != nil:
			opener, closer = "([", "])"
		case f.Type.RequiresOptions():
			opener, closer = "{{", "}}"
		}
		label := f.Key
		if f.Label != "" && f.Label != f.Key {
			label = fmt.Sprintf("%s <br/> %s", f.Label, f.Key)
		}
		fmt.Fprintf(sb, "%s%s%s\"%s\"%s\n", indent, fieldID(stepKey, f.Key), opener, escape(label), closer)
	}
}

func conditionLabel(c domain.Condition) string {
	switch c.Op {
	case domain.OpExists, domain.OpTruthy, domain.OpFalsy:
		return c.Path + " " + c.Op.String()
	}
	return fmt.Sprintf("%s %s %s", c.Path, c.Op.String(), formatValue(c.Value))
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, formatValue(item))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case []string:
		return "[" + strings.Join(val, ", ") + "]"
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

func rootKey(path string) string {
	if i := strings.Index(path, "."); i > 0 {
		return path[:i]
	}
	return path
}

func stepID(key string) string {
	return "step_" + sanitize(key)
}

func fieldID(stepKey, fieldKey string) string {
	return sanitize(stepKey) + "__" + sanitize(fieldKey)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitize(id string) string {
	var sb strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}
