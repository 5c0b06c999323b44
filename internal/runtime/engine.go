package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/ports"
)

// Engine runs wizards: it renders steps, validates and merges submissions,
// navigates backwards and finalizes. It holds no per-session state of its own
// and does not serialize writes: two submissions racing on the same wizard
// instance meet at the store's get-then-put boundary.
type Engine struct {
	source     ports.DefinitionSource
	store      ports.StateStore
	dispatcher *Dispatcher
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	now        func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithClock overrides the time source used for event timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine. A nil validator accepts every submission.
func NewEngine(source ports.DefinitionSource, store ports.StateStore, validator ports.Validator, opts ...EngineOption) *Engine {
	e := &Engine{
		source:     source,
		store:      store,
		dispatcher: NewDispatcher(validator),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// stepContext bundles what every operation needs about the addressed step.
type stepContext struct {
	def   *domain.WizardDefinition
	nav   *Navigator
	step  *domain.Step
	index int
	key   domain.StateKey
}

func (e *Engine) locate(sessionID, wizardID, stepKey string) (*stepContext, error) {
	def, err := e.source.Load(wizardID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load wizard %q: %w", wizardID, err)
	}

	nav := NewNavigator(def)
	if stepKey == "" {
		stepKey = nav.First()
	}
	index, err := nav.IndexOf(stepKey)
	if err != nil {
		return nil, err
	}

	return &stepContext{
		def:   def,
		nav:   nav,
		step:  def.FindStep(stepKey),
		index: index,
		key:   domain.StateKey{SessionID: sessionID, WizardID: def.ID},
	}, nil
}

func (e *Engine) loadState(ctx context.Context, key domain.StateKey) (domain.Values, error) {
	state, err := e.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load wizard state: %w", err)
	}
	if state == nil {
		state = domain.Values{}
	}
	return state, nil
}

// view builds the renderer payload for the step at sc against values.
func (e *Engine) view(sc *stepContext, values domain.Values, errs domain.FieldErrors) (*domain.StepView, error) {
	structure, err := ResolveStep(sc.step, values)
	if err != nil {
		return nil, withWizard(err, sc.def.ID)
	}
	prev, _ := sc.nav.PreviousKey(sc.step.Key)
	next, hasNext := sc.nav.NextKey(sc.step.Key)

	return &domain.StepView{
		WizardID:        sc.def.ID,
		WizardTitle:     sc.def.Title,
		StepKey:         sc.step.Key,
		StepTitle:       sc.step.Title,
		Structure:       *structure,
		Values:          values,
		Errors:          errs,
		StepIndex:       sc.index,
		TotalSteps:      sc.nav.Total(),
		ProgressPercent: ProgressPercent(sc.index, sc.nav.Total()),
		PreviousKey:     prev,
		NextKey:         next,
		IsLast:          !hasNext,
	}, nil
}

// Render returns the view of stepKey for the session. An empty stepKey renders the first step.
func (e *Engine) Render(ctx context.Context, sessionID, wizardID, stepKey string) (*domain.StepView, error) {
	sc, err := e.locate(sessionID, wizardID, stepKey)
	if err != nil {
		return nil, err
	}
	state, err := e.loadState(ctx, sc.key)
	if err != nil {
		return nil, err
	}

	v, err := e.view(sc, state, nil)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("step rendered", "wizard", sc.def.ID, "step", sc.step.Key, "session", sessionID, "visible", len(v.Structure.Fields))
	e.emit(ctx, e.hooks.OnStepRender, domain.EventStepRender, sc, sessionID, v.ProgressPercent, nil)
	return v, nil
}

// Submit validates input against the visible fields of stepKey and persists it.
//
// On validation failure nothing is written; the result carries the same step
// rendered with the submitted values and the errors, and the returned error is
// a *domain.ValidationError. On success the result points at the next step, or
// reports SubmitCompleted when stepKey was the last one.
func (e *Engine) Submit(ctx context.Context, sessionID, wizardID, stepKey string, input domain.Values) (*domain.SubmitResult, error) {
	if stepKey == "" {
		return nil, &domain.ConfigurationError{WizardID: wizardID, Reason: "submission requires a step key", Err: domain.ErrStepNotFound}
	}
	sc, err := e.locate(sessionID, wizardID, stepKey)
	if err != nil {
		return nil, err
	}

	stored, err := e.loadState(ctx, sc.key)
	if err != nil {
		return nil, err
	}

	current := Merge(stored, input)
	visible, err := ResolveStep(sc.step, current)
	if err != nil {
		return nil, withWizard(err, sc.def.ID)
	}
	accepted := NarrowInput(input, visible)

	fieldErrs, err := e.dispatcher.Validate(ctx, accepted, visible)
	if err != nil {
		return nil, err
	}
	if len(fieldErrs) > 0 {
		v, err := e.view(sc, current, fieldErrs)
		if err != nil {
			return nil, err
		}
		e.logger.Warn("step validation failed", "wizard", sc.def.ID, "step", sc.step.Key, "session", sessionID, "fields", fieldErrs.Keys())
		e.emit(ctx, e.hooks.OnValidationFailed, domain.EventValidationFailed, sc, sessionID, v.ProgressPercent, fieldErrs)

		result := &domain.SubmitResult{
			Status:   domain.SubmitInvalid,
			View:     v,
			Errors:   fieldErrs,
			Progress: v.ProgressPercent,
		}
		return result, &domain.ValidationError{WizardID: sc.def.ID, StepKey: sc.step.Key, Fields: fieldErrs}
	}

	merged := Merge(stored, accepted)
	if err := e.store.Put(ctx, sc.key, merged); err != nil {
		return nil, fmt.Errorf("failed to save wizard state: %w", err)
	}
	e.logger.Debug("step merged", "wizard", sc.def.ID, "step", sc.step.Key, "session", sessionID, "keys", len(accepted))

	result := &domain.SubmitResult{Status: domain.SubmitCompleted, Progress: 100}
	if nextKey, ok := sc.nav.NextKey(sc.step.Key); ok {
		next, err := e.locate(sessionID, sc.def.ID, nextKey)
		if err != nil {
			return nil, err
		}
		v, err := e.view(next, merged, nil)
		if err != nil {
			return nil, err
		}
		result = &domain.SubmitResult{Status: domain.SubmitAdvanced, View: v, Progress: v.ProgressPercent}
	}

	e.emit(ctx, e.hooks.OnStepSubmit, domain.EventStepSubmit, sc, sessionID, result.Progress, nil)
	return result, nil
}

// Back returns the view of the step before stepKey, or of the entry step when
// stepKey is already the first one. Stored state is neither validated nor changed.
func (e *Engine) Back(ctx context.Context, sessionID, wizardID, stepKey string) (*domain.StepView, error) {
	sc, err := e.locate(sessionID, wizardID, stepKey)
	if err != nil {
		return nil, err
	}
	prev, ok := sc.nav.PreviousKey(sc.step.Key)
	if !ok {
		prev = sc.nav.First()
	}
	return e.Render(ctx, sessionID, sc.def.ID, prev)
}

// Finalize clears the stored state of the wizard instance. It performs no validation.
func (e *Engine) Finalize(ctx context.Context, sessionID, wizardID string) error {
	def, err := e.source.Load(wizardID)
	if err != nil {
		if domain.IsNotFound(err) {
			return err
		}
		return fmt.Errorf("failed to load wizard %q: %w", wizardID, err)
	}

	key := domain.StateKey{SessionID: sessionID, WizardID: def.ID}
	if err := e.store.Clear(ctx, key); err != nil {
		return fmt.Errorf("failed to clear wizard state: %w", err)
	}

	e.logger.Info("wizard finalized", "wizard", def.ID, "session", sessionID)
	if e.hooks.OnFinalize != nil {
		e.hooks.OnFinalize(ctx, &domain.StepEvent{
			Timestamp: e.now(),
			Type:      domain.EventFinalize,
			SessionID: sessionID,
			WizardID:  def.ID,
			Progress:  100,
		})
	}
	return nil
}

// Definition returns the definition of wizardID.
func (e *Engine) Definition(wizardID string) (*domain.WizardDefinition, error) {
	return e.source.Load(wizardID)
}

// Wizards lists the ids known to the definition source.
func (e *Engine) Wizards() ([]string, error) {
	return e.source.List()
}

func (e *Engine) emit(ctx context.Context, hook func(context.Context, *domain.StepEvent), typ domain.EventType, sc *stepContext, sessionID string, progress int, errs domain.FieldErrors) {
	if hook == nil {
		return
	}
	hook(ctx, &domain.StepEvent{
		Timestamp: e.now(),
		Type:      typ,
		SessionID: sessionID,
		WizardID:  sc.def.ID,
		StepKey:   sc.step.Key,
		StepIndex: sc.index,
		Progress:  progress,
		Errors:    errs,
	})
}

// withWizard fills in the wizard id of configuration errors raised below the engine.
func withWizard(err error, wizardID string) error {
	var cfg *domain.ConfigurationError
	if errors.As(err, &cfg) && cfg.WizardID == "" {
		cfg.WizardID = wizardID
	}
	return err
}

var _ ports.WizardEngine = (*Engine)(nil)
