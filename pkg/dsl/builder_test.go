package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/visibility"
)

func TestBuilder_SimpleWizard(t *testing.T) {
	b := New()

	signup := b.Add("signup").Title("Sign up")
	signup.Step("account").Title("Account").
		Field("email").Type(domain.FieldEmail).Rules("required", "email")
	signup.Step("account").
		Field("plan").Select("free", "pro").Rules("required")
	signup.Step("billing").
		Field("card").Label("Card number").Rules("required").ShowWhen("plan", domain.OpEquals, "pro")

	reg, err := b.Build()
	require.NoError(t, err)

	def, err := reg.Load("signup")
	require.NoError(t, err)
	assert.Equal(t, "Sign up", def.Title)
	assert.Equal(t, []string{"account", "billing"}, def.StepKeys())

	account := def.FindStep("account")
	require.NotNil(t, account)
	assert.Equal(t, "Account", account.Title)
	require.Len(t, account.Fields, 2)
	assert.Equal(t, domain.FieldEmail, account.Fields[0].Type)
	assert.Equal(t, []string{"required", "email"}, account.Fields[0].Rules)
	assert.Equal(t, domain.FieldSelect, account.Fields[1].Type)
	assert.Equal(t, []domain.Option{{Value: "free", Label: "free"}, {Value: "pro", Label: "pro"}}, account.Fields[1].Options)

	card := def.FindStep("billing").Fields[0]
	require.NotNil(t, card.Visibility)
	assert.True(t, visibility.EvaluateGroup(domain.Values{"plan": "pro"}, *card.Visibility))
	assert.False(t, visibility.EvaluateGroup(domain.Values{"plan": "free"}, *card.Visibility))
}

func TestBuilder_SectionsAndAnyLogic(t *testing.T) {
	b := New()
	step := b.Add("trip").Step("extras")
	step.Section("Transport").
		Field("licence").
		ShowIf(When("car", domain.OpTruthy, nil), When("van", domain.OpTruthy, nil)).
		Any()
	step.Section("Meals").Field("diet").Type(domain.FieldMultiSelect).Option("veg", "Vegetarian")

	defs := b.Definitions()
	require.Len(t, defs, 1)
	extras := defs[0].Steps[0]
	assert.True(t, extras.HasSections())
	require.Len(t, extras.Sections, 2)

	licence := extras.Sections[0].Fields[0]
	assert.Equal(t, domain.LogicAny, licence.Visibility.Logic)
	assert.True(t, visibility.EvaluateGroup(domain.Values{"van": true}, *licence.Visibility))
	assert.False(t, visibility.EvaluateGroup(domain.Values{}, *licence.Visibility))
}

func TestBuilder_AddReturnsExisting(t *testing.T) {
	b := New()
	assert.Same(t, b.Add("a"), b.Add("a"))
	assert.Same(t, b.Add("a").Step("s"), b.Add("a").Step("s"))
}

func TestBuilder_BuildIsolatesDefinitions(t *testing.T) {
	b := New()
	field := b.Add("w").Step("s").Field("f").Rules("required")

	first := b.Definitions()[0]
	field.Rules("min:2")
	assert.Equal(t, []string{"required"}, first.Steps[0].Fields[0].Rules)
}

func TestBuilder_InvalidDefinitions(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *Builder)
	}{
		{"No Steps", func(b *Builder) { b.Add("empty") }},
		{"Mixed Containers", func(b *Builder) {
			s := b.Add("mixed").Step("s")
			s.Field("a")
			s.Section("More").Field("b")
		}},
		{"Select Without Options", func(b *Builder) {
			b.Add("w").Step("s").Field("pick").Type(domain.FieldSelect)
		}},
		{"Duplicate Field", func(b *Builder) {
			s := b.Add("w").Step("s")
			s.Field("a")
			s.Field("a")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New()
			tt.build(b)
			_, err := b.Build()
			assert.ErrorIs(t, err, domain.ErrInvalidDefinition)
		})
	}
}
