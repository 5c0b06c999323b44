package stitch_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stitch"
	"github.com/aretw0/stitch/pkg/adapters/memory"
	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/ports"
	"github.com/aretw0/stitch/pkg/registry"
	"github.com/aretw0/stitch/pkg/validator"
)

const wizardsYAML = `
wizards:
  - id: demo
    title: Demo Wizard
    steps:
      - key: basic
        fields:
          - { key: full_name, rules: required|min:2 }
          - { key: email, type: email, rules: required|email }
      - key: employment
        fields:
          - key: status
            type: select
            rules: required
            options: [employed, self, unemployed]
          - key: income
            type: number
            rules: required|numeric
            visibility:
              rules:
                - { path: status, op: in, value: [employed, self] }
`

const wizardMarkdown = `---
id: feedback
title: Feedback
steps:
  - key: rating
    fields:
      - { key: score, type: number, rules: "required|integer|between:1,5" }
      - key: complaint
        rules: required
        visibility:
          rules:
            - { path: score, op: "<=", value: 2 }
---
Tell us how we did.`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFacade_FileDefinitions(t *testing.T) {
	path := writeFile(t, t.TempDir(), "wizards.yaml", wizardsYAML)

	engine, err := stitch.New(path)
	require.NoError(t, err)
	assert.Equal(t, "wizards.yaml", engine.Name)

	ids, err := engine.Wizards()
	require.NoError(t, err)
	assert.Equal(t, []string{"demo"}, ids)

	ctx := context.Background()
	view, err := engine.Render(ctx, "s1", "demo", "")
	require.NoError(t, err)
	assert.Equal(t, "basic", view.StepKey)

	res, err := engine.Submit(ctx, "s1", "demo", "basic", domain.Values{"full_name": "Ada", "email": "ada@example.com"})
	require.NoError(t, err)
	assert.Equal(t, domain.SubmitAdvanced, res.Status)
	assert.Equal(t, []string{"status"}, res.View.Structure.FieldKeys(), "income stays hidden until a status is chosen")

	res, err = engine.Submit(ctx, "s1", "demo", "employment", domain.Values{"status": "employed"})
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, domain.SubmitInvalid, res.Status)
	assert.Equal(t, []string{"income"}, verr.Fields.Keys())

	res, err = engine.Submit(ctx, "s1", "demo", "employment", domain.Values{"status": "employed", "income": 4200})
	require.NoError(t, err)
	assert.Equal(t, domain.SubmitCompleted, res.Status)

	stored, err := engine.Store().Get(ctx, domain.StateKey{SessionID: "s1", WizardID: "demo"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", stored["full_name"])

	require.NoError(t, engine.Finalize(ctx, "s1", "demo"))
	stored, err = engine.Store().Get(ctx, domain.StateKey{SessionID: "s1", WizardID: "demo"})
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestFacade_LoamDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "feedback.md", wizardMarkdown)

	engine, err := stitch.New(dir)
	require.NoError(t, err)

	def, err := engine.Definition("feedback")
	require.NoError(t, err)
	assert.Equal(t, "Tell us how we did.", def.Description)

	ctx := context.Background()
	res, err := engine.Submit(ctx, "s", "feedback", "rating", domain.Values{"score": 1})
	require.Error(t, err)
	assert.Contains(t, res.Errors, "complaint")

	res, err = engine.Submit(ctx, "s", "feedback", "rating", domain.Values{"score": 5})
	require.NoError(t, err)
	assert.Equal(t, domain.SubmitCompleted, res.Status)
}

func TestFacade_CustomSourceAndStore(t *testing.T) {
	store := memory.NewStore()
	source := registry.MustNew(domain.WizardDefinition{
		ID:    "tiny",
		Steps: []domain.Step{{Key: "only", Fields: []domain.Field{{Key: "name"}}}},
	})

	var rendered []string
	engine, err := stitch.New("", stitch.WithSource(source), stitch.WithStore(store),
		stitch.WithLifecycleHooks(domain.LifecycleHooks{
			OnStepRender: func(_ context.Context, e *domain.StepEvent) {
				rendered = append(rendered, e.StepKey)
			},
		}),
	)
	require.NoError(t, err)
	assert.Same(t, store, engine.Store())

	_, err = engine.Render(context.Background(), "s", "tiny", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"only"}, rendered)
}

func TestFacade_Errors(t *testing.T) {
	_, err := stitch.New("")
	assert.Error(t, err)

	_, err = stitch.New(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := writeFile(t, t.TempDir(), "bad.yaml", "id: broken\nsteps: []\n")
	_, err = stitch.New(bad)
	assert.ErrorIs(t, err, domain.ErrInvalidDefinition)
}

func TestFacade_ShippedExamples(t *testing.T) {
	ctx := context.Background()
	engine, err := stitch.New(filepath.Join("examples", "wizards.yaml"))
	require.NoError(t, err)

	ids, err := engine.Wizards()
	require.NoError(t, err)
	assert.Equal(t, []string{"demo", "real-estate"}, ids)

	rules := validator.New()
	for _, id := range ids {
		def, err := engine.Definition(id)
		require.NoError(t, err)
		for i := range def.Steps {
			assert.NoError(t, rules.Check(def.Steps[i].AllFields()), "%s/%s", id, def.Steps[i].Key)
		}
	}

	view, err := engine.Render(ctx, "s", "real-estate", "")
	require.NoError(t, err)
	assert.Equal(t, 6, view.TotalSteps)
	assert.NotContains(t, view.Structure.FieldKeys(), "price")

	result, err := engine.Submit(ctx, "s", "real-estate", "basics", domain.Values{
		"listing_type":  "sell",
		"property_type": "condo",
		"title":         "Riverside condo",
		"description":   "Two bedrooms with a view of the river.",
		"currency":      "THB",
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"price"}, verr.Fields.Keys())
	assert.Contains(t, result.View.Structure.FieldKeys(), "price")
}

// slowStore widens the read-merge-write window of a submission.
type slowStore struct {
	*memory.Store
}

func (s slowStore) Get(ctx context.Context, key domain.StateKey) (domain.Values, error) {
	time.Sleep(5 * time.Millisecond)
	return s.Store.Get(ctx, key)
}

// countingLocker records how often the distributed lock is taken.
type countingLocker struct {
	mu    sync.Mutex
	locks int
}

func (l *countingLocker) Lock(context.Context, string, time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	l.locks++
	l.mu.Unlock()
	return func(context.Context) error { return nil }, nil
}

func TestFacade_ConcurrentSubmitsKeepEveryMerge(t *testing.T) {
	const n = 10

	fields := make([]domain.Field, n)
	for i := range fields {
		fields[i] = domain.Field{Key: fmt.Sprintf("f%d", i)}
	}
	reg := registry.MustNew(domain.WizardDefinition{
		ID:    "notes",
		Steps: []domain.Step{{Key: "all", Fields: fields}},
	})

	store := slowStore{memory.NewStore()}
	locker := &countingLocker{}
	engine, err := stitch.New("", stitch.WithSource(reg), stitch.WithStore(store), stitch.WithLocker(locker))
	require.NoError(t, err)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := engine.Submit(ctx, "shared", "notes", "all", domain.Values{fmt.Sprintf("f%d", i): i})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	values, err := store.Get(ctx, domain.StateKey{SessionID: "shared", WizardID: "notes"})
	require.NoError(t, err)
	assert.Len(t, values, n)

	require.NoError(t, engine.Finalize(ctx, "shared", "notes"))
	assert.Equal(t, n+1, locker.locks)
}

func TestVersion(t *testing.T) {
	assert.Regexp(t, `^\d+\.\d+\.\d+\s*$`, stitch.Version)
}
