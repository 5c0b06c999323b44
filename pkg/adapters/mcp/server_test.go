package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stitch/internal/runtime"
	"github.com/aretw0/stitch/pkg/adapters/memory"
	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/registry"
	"github.com/aretw0/stitch/pkg/validator"
)

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	def := domain.WizardDefinition{
		ID:    "signup",
		Title: "Sign up",
		Steps: []domain.Step{
			{Key: "account", Fields: []domain.Field{
				{Key: "email", Type: domain.FieldEmail, Rules: []string{"required", "email"}},
				{Key: "plan", Type: domain.FieldSelect, Rules: []string{"required"}, Options: []domain.Option{{Value: "free"}, {Value: "pro"}}},
			}},
			{Key: "billing", Fields: []domain.Field{
				{Key: "card", Rules: []string{"required"}, Visibility: &domain.RuleGroup{
					Rules: []domain.Condition{{Path: "plan", Op: domain.OpEquals, Value: "pro"}},
				}},
				{Key: "coupon"},
			}},
		},
	}
	store := memory.NewStore()
	engine := runtime.NewEngine(registry.MustNew(def), store, validator.New())
	return NewServer(engine), store
}

func callTool(t *testing.T, s *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := s.MCPServer().GetTool(name)
	require.NotNil(t, tool, "tool %s is registered", name)

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err)
	return res
}

func structured[T any](t *testing.T, res *mcp.CallToolResult) T {
	t.Helper()
	require.False(t, res.IsError, "unexpected tool error: %+v", res.Content)
	data, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestServer_Tools(t *testing.T) {
	s, _ := newTestServer(t)
	tools := s.MCPServer().ListTools()
	for _, name := range []string{"list_wizards", "render_step", "submit_step", "go_back", "finalize"} {
		assert.Contains(t, tools, name)
	}
}

func TestServer_ListWizards(t *testing.T) {
	s, _ := newTestServer(t)
	list := structured[WizardList](t, callTool(t, s, "list_wizards", nil))
	assert.Equal(t, []string{"signup"}, list.Wizards)
}

func TestServer_Flow(t *testing.T) {
	s, store := newTestServer(t)
	key := domain.StateKey{SessionID: "agent", WizardID: "signup"}

	view := structured[domain.StepView](t, callTool(t, s, "render_step", map[string]any{
		"session_id": "agent", "wizard_id": "signup",
	}))
	assert.Equal(t, "account", view.StepKey)
	assert.Equal(t, 2, view.TotalSteps)

	result := structured[domain.SubmitResult](t, callTool(t, s, "submit_step", map[string]any{
		"session_id": "agent", "wizard_id": "signup", "step_key": "account",
		"values": map[string]any{"email": "not-an-email"},
	}))
	assert.Equal(t, domain.SubmitInvalid, result.Status)
	assert.Contains(t, result.Errors, "email")
	assert.Contains(t, result.Errors, "plan")

	result = structured[domain.SubmitResult](t, callTool(t, s, "submit_step", map[string]any{
		"session_id": "agent", "wizard_id": "signup", "step_key": "account",
		"values": map[string]any{"email": "a@b.co", "plan": "pro"},
	}))
	require.Equal(t, domain.SubmitAdvanced, result.Status)
	require.NotNil(t, result.View)
	assert.Equal(t, "billing", result.View.StepKey)
	assert.Equal(t, []string{"card", "coupon"}, result.View.Structure.FieldKeys())

	back := structured[domain.StepView](t, callTool(t, s, "go_back", map[string]any{
		"session_id": "agent", "wizard_id": "signup", "step_key": "billing",
	}))
	assert.Equal(t, "account", back.StepKey)
	assert.Equal(t, "pro", back.Values["plan"])

	result = structured[domain.SubmitResult](t, callTool(t, s, "submit_step", map[string]any{
		"session_id": "agent", "wizard_id": "signup", "step_key": "billing",
		"values": map[string]any{"card": "4242"},
	}))
	assert.Equal(t, domain.SubmitCompleted, result.Status)
	assert.Equal(t, 100, result.Progress)

	final := structured[FinalizeResult](t, callTool(t, s, "finalize", map[string]any{
		"session_id": "agent", "wizard_id": "signup",
	}))
	assert.True(t, final.Finalized)

	stored, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestServer_ToolErrors(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name string
		tool string
		args map[string]any
	}{
		{"Missing Session", "render_step", map[string]any{"wizard_id": "signup"}},
		{"Unknown Wizard", "render_step", map[string]any{"session_id": "s", "wizard_id": "ghost"}},
		{"Unknown Step", "go_back", map[string]any{"session_id": "s", "wizard_id": "signup", "step_key": "ghost"}},
		{"Submit Without Step", "submit_step", map[string]any{"session_id": "s", "wizard_id": "signup"}},
		{"Oversized Value", "submit_step", map[string]any{"session_id": "s", "wizard_id": "signup", "step_key": "account", "values": map[string]any{"email": strings.Repeat("x", 5000)}}},
		{"Bad Values", "submit_step", map[string]any{"session_id": "s", "wizard_id": "signup", "step_key": "account", "values": "nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, s, tt.tool, tt.args)
			assert.True(t, res.IsError)
		})
	}
}

func TestServer_DefinitionResource(t *testing.T) {
	s, _ := newTestServer(t)

	msg := s.MCPServer().HandleMessage(context.Background(), json.RawMessage(
		`{"jsonrpc":"2.0","id":1,"method":"resources/read","params":{"uri":"stitch://wizards/signup"}}`,
	))
	resp, ok := msg.(mcp.JSONRPCResponse)
	require.True(t, ok, "unexpected response %#v", msg)

	result, ok := resp.Result.(mcp.ReadResourceResult)
	require.True(t, ok)
	require.Len(t, result.Contents, 1)
	text, ok := result.Contents[0].(mcp.TextResourceContents)
	require.True(t, ok)

	var def domain.WizardDefinition
	require.NoError(t, json.Unmarshal([]byte(text.Text), &def))
	assert.Equal(t, "signup", def.ID)
	assert.Len(t, def.Steps, 2)
}
