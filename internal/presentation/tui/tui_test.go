package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stitch/internal/runtime"
	"github.com/aretw0/stitch/pkg/adapters/memory"
	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/registry"
	"github.com/aretw0/stitch/pkg/validator"
)

func tripWizard() domain.WizardDefinition {
	return domain.WizardDefinition{
		ID:    "trip",
		Title: "Plan a trip",
		Steps: []domain.Step{
			{Key: "where", Title: "Destination", Fields: []domain.Field{
				{Key: "city", Label: "City", Rules: []string{"required"}},
				{Key: "nights", Type: domain.FieldNumber, Rules: []string{"required", "integer"}},
			}},
			{Key: "extras", Sections: []domain.Section{
				{Title: "Transport", Fields: []domain.Field{
					{Key: "car", Type: domain.FieldToggle},
					{Key: "licence", Rules: []string{"required"}, Visibility: &domain.RuleGroup{
						Rules: []domain.Condition{{Path: "car", Op: domain.OpEquals, Value: true}},
					}},
				}},
				{Title: "Meals", Fields: []domain.Field{
					{Key: "diet", Type: domain.FieldMultiSelect, Options: []domain.Option{{Value: "veg"}, {Value: "halal"}}},
				}},
			}},
		},
	}
}

func newEngine() *runtime.Engine {
	return runtime.NewEngine(registry.MustNew(tripWizard()), memory.NewStore(), validator.New())
}

func TestAnswers_Values(t *testing.T) {
	a := &Answers{answers: []*answer{
		{field: domain.Field{Key: "name"}, text: "Ada"},
		{field: domain.Field{Key: "age", Type: domain.FieldNumber}, text: " 36 "},
		{field: domain.Field{Key: "bad", Type: domain.FieldNumber}, text: "many"},
		{field: domain.Field{Key: "ok", Type: domain.FieldCheckbox}, flag: true},
		{field: domain.Field{Key: "tags", Type: domain.FieldCheckbox, Options: []domain.Option{{Value: "a"}}}, choices: []string{"a"}},
	}}

	assert.Equal(t, domain.Values{
		"name": "Ada",
		"age":  json.Number("36"),
		"bad":  "many",
		"ok":   true,
		"tags": []any{"a"},
	}, a.Values())
	assert.Equal(t, ActionNext, a.Action())
}

func TestBuildForm_Prefill(t *testing.T) {
	view, err := newEngine().Render(context.Background(), "s", "trip", "extras")
	require.NoError(t, err)
	view.Values = domain.Values{"car": true, "licence": "B", "diet": []any{"veg"}}

	form, answers := BuildForm(view)
	require.NotNil(t, form)

	byKey := map[string]*answer{}
	for _, a := range answers.answers {
		byKey[a.field.Key] = a
	}
	assert.True(t, byKey["car"].flag)
	assert.Equal(t, []string{"veg"}, byKey["diet"].choices)
	assert.NotContains(t, byKey, "licence", "hidden fields get no input")
	assert.Equal(t, ActionNext, answers.Action())
}

func TestStepMarkdown(t *testing.T) {
	view := &domain.StepView{
		WizardID:        "trip",
		WizardTitle:     "Plan a trip",
		StepKey:         "where",
		StepTitle:       "Destination",
		StepIndex:       1,
		TotalSteps:      2,
		ProgressPercent: 0,
		Structure: domain.ResolvedStep{Fields: []domain.Field{
			{Key: "city", Label: "City"},
			{Key: "secret", Type: domain.FieldPassword},
			{Key: "token", Type: domain.FieldHidden},
		}},
		Values: domain.Values{"city": "Lisbon", "secret": "hunter2"},
		Errors: domain.FieldErrors{"city": {"The city field is too short."}},
	}

	md := StepMarkdown(view)
	assert.Contains(t, md, "# Plan a trip")
	assert.Contains(t, md, "## Step 1 of 2: Destination")
	assert.Contains(t, md, "- **City**: `Lisbon` (The city field is too short.)")
	assert.NotContains(t, md, "hunter2")
	assert.NotContains(t, md, "token")
}

func TestSession_Run(t *testing.T) {
	engine := newEngine()
	var out bytes.Buffer

	script := []struct {
		step   string
		values domain.Values
		action Action
	}{
		{"where", domain.Values{"city": ""}, ActionNext},
		{"where", domain.Values{"city": "Porto", "nights": json.Number("3")}, ActionNext},
		{"extras", domain.Values{}, ActionBack},
		{"where", domain.Values{"city": "Porto", "nights": json.Number("4")}, ActionNext},
		{"extras", domain.Values{"car": true}, ActionNext},
		{"extras", domain.Values{"car": true, "licence": "B"}, ActionNext},
	}
	turn := 0

	s := &Session{
		Engine: engine,
		Out:    &out,
		Render: func(md string) (string, error) { return md, nil },
		Fill: func(_ context.Context, view *domain.StepView) (domain.Values, Action, error) {
			require.Less(t, turn, len(script))
			step := script[turn]
			turn++
			assert.Equal(t, step.step, view.StepKey, "turn %d", turn)
			return step.values, step.action, nil
		},
	}

	values, err := s.Run(context.Background(), "tty", "trip")
	require.NoError(t, err)
	assert.Equal(t, len(script), turn)
	assert.Equal(t, "Porto", values["city"])
	assert.Equal(t, "B", values["licence"])
	assert.Contains(t, out.String(), "Please fix")
	assert.Contains(t, out.String(), "Plan a trip completed.")

	view, err := engine.Render(context.Background(), "tty", "trip", "")
	require.NoError(t, err)
	assert.Empty(t, view.Values, "state is finalized")
}

func TestSession_SanitizesAnswers(t *testing.T) {
	engine := newEngine()
	var out bytes.Buffer

	script := []domain.Values{
		{"city": strings.Repeat("x", 5000), "nights": json.Number("2")},
		{"city": "Li\x07sbon\x00", "nights": json.Number("2")},
		{},
	}
	var seen []string
	turn := 0

	s := &Session{
		Engine:    engine,
		Out:       &out,
		KeepState: true,
		Render:    func(md string) (string, error) { return md, nil },
		Fill: func(_ context.Context, view *domain.StepView) (domain.Values, Action, error) {
			require.Less(t, turn, len(script))
			seen = append(seen, view.StepKey)
			values := script[turn]
			turn++
			return values, ActionNext, nil
		},
	}

	values, err := s.Run(context.Background(), "tty", "trip")
	require.NoError(t, err)
	assert.Equal(t, []string{"where", "where", "extras"}, seen, "oversized answers repeat the step")
	assert.Contains(t, out.String(), `field "city": input exceeds maximum allowed size`)
	assert.Equal(t, "Lisbon", values["city"])

	stored, err := engine.Render(context.Background(), "tty", "trip", "where")
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", stored.Values["city"])
}

func TestSession_FillError(t *testing.T) {
	boom := errors.New("aborted")
	s := &Session{
		Engine: newEngine(),
		Out:    &bytes.Buffer{},
		Render: func(md string) (string, error) { return md, nil },
		Fill: func(context.Context, *domain.StepView) (domain.Values, Action, error) {
			return nil, "", boom
		},
	}
	_, err := s.Run(context.Background(), "tty", "trip")
	assert.ErrorIs(t, err, boom)
}
