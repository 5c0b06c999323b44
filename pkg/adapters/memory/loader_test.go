package memory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stitch/pkg/adapters/memory"
	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/ports/tests"
)

const demoJSON = `{
  "title": "Demo Wizard",
  "steps": [
    {"key": "basic", "fields": [{"key": "full_name", "type": "text", "rules": ["required"]}]},
    {"key": "employment", "fields": [
      {"key": "status", "type": "select", "options": [{"value": "employed", "label": "Employed"}]},
      {"key": "income", "type": "number",
       "visibility": {"logic": "any", "rules": [{"path": "status", "op": "in", "value": ["employed", "self"]}]}}
    ]}
  ]
}`

func TestLoader_Contract(t *testing.T) {
	source, err := memory.NewLoader(map[string]string{
		"demo":   demoJSON,
		"survey": `{"id": "survey", "steps": [{"key": "q", "fields": [{"key": "answer"}]}]}`,
	})
	require.NoError(t, err)

	tests.RunDefinitionSourceContract(t, source, []string{"demo", "survey"})
}

func TestLoader_DecodesVisibility(t *testing.T) {
	source, err := memory.NewLoader(map[string]string{"demo": demoJSON})
	require.NoError(t, err)

	def, err := source.Load("demo")
	require.NoError(t, err)
	vis := def.Steps[1].Fields[1].Visibility
	require.NotNil(t, vis)
	assert.Equal(t, domain.LogicAny, vis.Logic)
	assert.Equal(t, domain.OpIn, vis.Rules[0].Op)
}

func TestLoader_Errors(t *testing.T) {
	_, err := memory.NewLoader(map[string]string{"demo": `{"steps": [`})
	assert.Error(t, err)

	_, err = memory.NewLoader(map[string]string{"demo": `{"id": "other", "steps": []}`})
	assert.ErrorContains(t, err, "mismatching id")

	_, err = memory.NewLoader(map[string]string{"demo": `{"steps": [{"key": "a", "fields": [{"key": "x", "visibility": {"rules": [{"path": "y", "op": "like"}]}}]}]}`})
	assert.Error(t, err)
}
