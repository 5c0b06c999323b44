package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepRender       EventType = "step_render"
	EventStepSubmit       EventType = "step_submit"
	EventValidationFailed EventType = "validation_failed"
	EventFinalize         EventType = "finalize"
)

// StepEvent describes one engine interaction with a wizard step.
type StepEvent struct {
	Timestamp time.Time   `json:"timestamp"`
	Type      EventType   `json:"type"`
	SessionID string      `json:"session_id"`
	WizardID  string      `json:"wizard_id"`
	StepKey   string      `json:"step_key,omitempty"`
	StepIndex int         `json:"step_index,omitempty"`
	Progress  int         `json:"progress"`
	Errors    FieldErrors `json:"errors,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
// Every hook is optional.
type LifecycleHooks struct {
	OnStepRender       func(context.Context, *StepEvent)
	OnStepSubmit       func(context.Context, *StepEvent)
	OnValidationFailed func(context.Context, *StepEvent)
	OnFinalize         func(context.Context, *StepEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStepRender:       chain(h.OnStepRender, other.OnStepRender),
		OnStepSubmit:       chain(h.OnStepSubmit, other.OnStepSubmit),
		OnValidationFailed: chain(h.OnValidationFailed, other.OnValidationFailed),
		OnFinalize:         chain(h.OnFinalize, other.OnFinalize),
	}
}

func chain(a, b func(context.Context, *StepEvent)) func(context.Context, *StepEvent) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *StepEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
