package stitch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/stitch/internal/runtime"
	"github.com/aretw0/stitch/pkg/adapters/file"
	loamAdapter "github.com/aretw0/stitch/pkg/adapters/loam"
	"github.com/aretw0/stitch/pkg/adapters/memory"
	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/ports"
	"github.com/aretw0/stitch/pkg/session"
	"github.com/aretw0/stitch/pkg/validator"
)

// Engine is the high-level entry point for the stitch library.
// It wraps the internal runtime and implements ports.WizardEngine.
type Engine struct {
	runtime   *runtime.Engine
	sessions  *session.Manager
	source    ports.DefinitionSource
	store     ports.StateStore
	validator ports.Validator
	locker    ports.DistributedLocker
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	Name      string
}

var _ ports.WizardEngine = (*Engine)(nil)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithSource injects a custom DefinitionSource, bypassing the path-based loaders.
func WithSource(source ports.DefinitionSource) Option {
	return func(e *Engine) {
		e.source = source
	}
}

// WithStore sets where wizard state is persisted (default: in memory).
func WithStore(store ports.StateStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithValidator replaces the default rule validator.
func WithValidator(v ports.Validator) Option {
	return func(e *Engine) {
		e.validator = v
	}
}

// WithLocker coordinates writes to the same wizard instance across
// processes sharing the store. Writes within one Engine are always serialized.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes an Engine over the wizard definitions found at path.
//
// A file is read as YAML/JSON definitions; a directory is opened as a Loam
// repository where each document declares one wizard. If WithSource is
// given, path may be empty and is only used as a label.
func New(path string, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.source == nil {
		source, err := OpenSource(path)
		if err != nil {
			return nil, err
		}
		eng.source = source
	}
	if path != "" {
		eng.Name = filepath.Base(path)
	}

	if eng.store == nil {
		eng.store = memory.NewStore()
	}
	if eng.validator == nil {
		eng.validator = validator.New()
	}
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("definitions", eng.Name)
	}
	if loader, ok := eng.source.(*loamAdapter.Loader); ok {
		loader.Logger = eng.logger
	}

	sessionOpts := []session.Option{session.WithLogger(eng.logger)}
	if eng.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(eng.locker))
	}

	eng.sessions = session.NewManager(sessionOpts...)
	eng.runtime = runtime.NewEngine(eng.source, eng.store, eng.validator,
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
	)
	return eng, nil
}

// OpenSource picks the definition loader for path: a Loam repository for
// directories, the YAML/JSON file loader otherwise.
func OpenSource(path string) (ports.DefinitionSource, error) {
	if path == "" {
		return nil, fmt.Errorf("definitions path is required when no custom source is provided")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open definitions: %w", err)
	}

	if info.IsDir() {
		loader, err := loamAdapter.Open(absPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize loam: %w", err)
		}
		return loader, nil
	}
	return file.LoadDefinitions(absPath)
}

// Render returns the view of stepKey for the session. An empty stepKey renders the first step.
func (e *Engine) Render(ctx context.Context, sessionID, wizardID, stepKey string) (*domain.StepView, error) {
	return e.runtime.Render(ctx, sessionID, wizardID, stepKey)
}

// Submit validates input against the visible fields of stepKey and merges it into stored state.
// On validation failure the result carries the errors and the error is a *domain.ValidationError.
//
// Submissions to the same wizard instance run one at a time, so concurrent
// requests (two browser tabs) never lose each other's answers.
func (e *Engine) Submit(ctx context.Context, sessionID, wizardID, stepKey string, input domain.Values) (*domain.SubmitResult, error) {
	var result *domain.SubmitResult
	err := e.sessions.WithLock(ctx, stateKey(sessionID, wizardID), func(ctx context.Context) error {
		var err error
		result, err = e.runtime.Submit(ctx, sessionID, wizardID, stepKey, input)
		return err
	})
	return result, err
}

// Back returns the view of the step before stepKey.
func (e *Engine) Back(ctx context.Context, sessionID, wizardID, stepKey string) (*domain.StepView, error) {
	return e.runtime.Back(ctx, sessionID, wizardID, stepKey)
}

// Finalize clears the stored state of the wizard instance.
func (e *Engine) Finalize(ctx context.Context, sessionID, wizardID string) error {
	return e.sessions.WithLock(ctx, stateKey(sessionID, wizardID), func(ctx context.Context) error {
		return e.runtime.Finalize(ctx, sessionID, wizardID)
	})
}

// Definition returns the wizard definition for introspection tools.
func (e *Engine) Definition(wizardID string) (*domain.WizardDefinition, error) {
	return e.runtime.Definition(wizardID)
}

// Wizards lists the available wizard ids.
func (e *Engine) Wizards() ([]string, error) {
	return e.runtime.Wizards()
}

// Source returns the DefinitionSource used by the engine.
func (e *Engine) Source() ports.DefinitionSource {
	return e.source
}

// Store returns the StateStore used by the engine.
func (e *Engine) Store() ports.StateStore {
	return e.store
}

func stateKey(sessionID, wizardID string) domain.StateKey {
	return domain.StateKey{SessionID: sessionID, WizardID: wizardID}
}
