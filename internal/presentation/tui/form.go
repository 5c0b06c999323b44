package tui

import (
	"encoding/json"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cast"

	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/visibility"
)

// Action is what the user chose to do after filling a step.
type Action string

const (
	ActionNext Action = "next"
	ActionBack Action = "back"
)

// answer binds one field to the variable its form input writes to.
type answer struct {
	field   domain.Field
	text    string
	choices []string
	flag    bool
}

// Answers collects the values typed into a step form.
type Answers struct {
	answers []*answer
	action  string
}

// Action returns the navigation choice made at the end of the form.
func (a *Answers) Action() Action {
	if a.action == "" {
		return ActionNext
	}
	return Action(a.action)
}

// Values converts the answers to submission values. Number fields holding a
// numeric string become json.Number so comparisons treat them as numbers.
func (a *Answers) Values() domain.Values {
	values := make(domain.Values, len(a.answers))
	for _, ans := range a.answers {
		switch kindOf(ans.field) {
		case kindFlag:
			values[ans.field.Key] = ans.flag
		case kindMulti:
			list := make([]any, 0, len(ans.choices))
			for _, c := range ans.choices {
				list = append(list, c)
			}
			values[ans.field.Key] = list
		case kindNumber:
			s := strings.TrimSpace(ans.text)
			if _, ok := visibility.Number(s); ok {
				values[ans.field.Key] = json.Number(s)
			} else {
				values[ans.field.Key] = s
			}
		default:
			values[ans.field.Key] = ans.text
		}
	}
	return values
}

type fieldKind int

const (
	kindText fieldKind = iota
	kindLongText
	kindNumber
	kindChoice
	kindMulti
	kindFlag
	kindSkip
)

func kindOf(f domain.Field) fieldKind {
	switch f.Type {
	case domain.FieldHidden, domain.FieldFile:
		return kindSkip
	case domain.FieldTextarea:
		return kindLongText
	case domain.FieldNumber:
		return kindNumber
	case domain.FieldSelect, domain.FieldRadio:
		return kindChoice
	case domain.FieldMultiSelect:
		return kindMulti
	case domain.FieldCheckbox:
		if len(f.Options) > 0 {
			return kindMulti
		}
		return kindFlag
	case domain.FieldToggle:
		return kindFlag
	}
	return kindText
}

// BuildForm creates a huh form for the visible fields of view, prefilled with
// the stored values. Every section becomes a group; a final group asks whether
// to continue or go back when there is a previous step.
func BuildForm(view *domain.StepView) (*huh.Form, *Answers) {
	answers := &Answers{}

	var groups []*huh.Group
	addGroup := func(title string, fields []domain.Field) {
		var inputs []huh.Field
		for _, f := range fields {
			if kindOf(f) == kindSkip {
				continue
			}
			ans := &answer{field: f}
			prefill(ans, view.Values[f.Key])
			answers.answers = append(answers.answers, ans)
			inputs = append(inputs, buildInput(ans))
		}
		if len(inputs) == 0 {
			return
		}
		g := huh.NewGroup(inputs...)
		if title != "" {
			g = g.Title(title)
		}
		groups = append(groups, g)
	}

	if len(view.Structure.Sections) > 0 {
		for _, sec := range view.Structure.Sections {
			addGroup(sec.Title, sec.Fields)
		}
	} else {
		addGroup(view.StepTitle, view.Structure.Fields)
	}

	if view.PreviousKey != "" {
		answers.action = string(ActionNext)
		next := "Continue"
		if view.IsLast {
			next = "Finish"
		}
		groups = append(groups, huh.NewGroup(
			huh.NewSelect[string]().
				Title("What next?").
				Options(
					huh.NewOption(next, string(ActionNext)),
					huh.NewOption("Back to the previous step", string(ActionBack)),
				).
				Value(&answers.action),
		))
	}
	if len(groups) == 0 {
		groups = append(groups, huh.NewGroup(huh.NewNote().Title("Nothing to fill in on this step.")))
	}

	return huh.NewForm(groups...).WithTheme(huh.ThemeCharm()), answers
}

func buildInput(ans *answer) huh.Field {
	f := ans.field
	title := fieldLabel(f)
	if isRequired(f) {
		title += " *"
	}

	switch kindOf(f) {
	case kindLongText:
		return huh.NewText().Title(title).Description(f.Help).Placeholder(f.Placeholder).Value(&ans.text)
	case kindChoice:
		return huh.NewSelect[string]().Title(title).Description(f.Help).Options(options(f, ans.text)...).Value(&ans.text)
	case kindMulti:
		return huh.NewMultiSelect[string]().Title(title).Options(options(f, ans.choices...)...).Value(&ans.choices)
	case kindFlag:
		return huh.NewConfirm().Title(title).Affirmative("Yes").Negative("No").Value(&ans.flag)
	}

	input := huh.NewInput().Key(f.Key).Title(title).Description(f.Help).Placeholder(f.Placeholder).Value(&ans.text)
	if f.Type == domain.FieldPassword {
		input = input.EchoMode(huh.EchoModePassword)
	}
	return input
}

func options(f domain.Field, selected ...string) []huh.Option[string] {
	chosen := make(map[string]bool, len(selected))
	for _, s := range selected {
		chosen[s] = true
	}
	opts := make([]huh.Option[string], 0, len(f.Options))
	for _, o := range f.Options {
		label := o.Label
		if label == "" {
			label = o.Value
		}
		opts = append(opts, huh.NewOption(label, o.Value).Selected(chosen[o.Value]))
	}
	return opts
}

func prefill(ans *answer, v any) {
	if v == nil {
		return
	}
	switch kindOf(ans.field) {
	case kindFlag:
		ans.flag = cast.ToBool(v)
	case kindMulti:
		ans.choices = cast.ToStringSlice(v)
	default:
		ans.text = cast.ToString(v)
	}
}

func isRequired(f domain.Field) bool {
	for _, r := range f.Rules {
		if r == "required" {
			return true
		}
	}
	return false
}
