package domain

// ResolvedSection is a section that kept at least one visible field.
type ResolvedSection struct {
	Title  string  `json:"title,omitempty"`
	Fields []Field `json:"fields"`
}

// ResolvedStep is the derived, non-persisted structure of a step for a given context.
// Sections is nil for flat steps. Fields is always the flattened, ordered visible list.
type ResolvedStep struct {
	Sections []ResolvedSection `json:"sections,omitempty"`
	Fields   []Field           `json:"fields"`
}

// FieldKeys returns the keys of the visible fields in order.
func (r *ResolvedStep) FieldKeys() []string {
	keys := make([]string, 0, len(r.Fields))
	for _, f := range r.Fields {
		keys = append(keys, f.Key)
	}
	return keys
}

// Has reports whether the field key is part of the resolved structure.
func (r *ResolvedStep) Has(key string) bool {
	for _, f := range r.Fields {
		if f.Key == key {
			return true
		}
	}
	return false
}

// StepView is the payload handed to a renderer for one step.
type StepView struct {
	WizardID    string       `json:"wizard_id"`
	WizardTitle string       `json:"wizard_title"`
	StepKey     string       `json:"step_key"`
	StepTitle   string       `json:"step_title"`
	Structure   ResolvedStep `json:"structure"`
	Values      Values       `json:"values"`
	Errors      FieldErrors  `json:"errors,omitempty"`

	StepIndex       int `json:"step_index"`
	TotalSteps      int `json:"total_steps"`
	ProgressPercent int `json:"progress_percent"`

	// PreviousKey is empty on the first step; the renderer links back to the entry point.
	PreviousKey string `json:"previous_key,omitempty"`
	// NextKey is empty on the last step; submitting it leads to finalize.
	NextKey string `json:"next_key,omitempty"`
	IsLast  bool   `json:"is_last"`
}

// SubmitStatus describes the outcome of a step submission.
type SubmitStatus string

const (
	// SubmitInvalid means validation failed; nothing was persisted.
	SubmitInvalid SubmitStatus = "invalid"
	// SubmitAdvanced means state was persisted and the next step is ready.
	SubmitAdvanced SubmitStatus = "advanced"
	// SubmitCompleted means the last step was accepted; the caller should finalize.
	SubmitCompleted SubmitStatus = "completed"
)

// SubmitResult is the outcome of one step submission.
type SubmitResult struct {
	Status SubmitStatus `json:"status"`

	// View is the step to show next: the same step with errors when invalid,
	// the following step when advanced, nil when completed.
	View *StepView `json:"view,omitempty"`

	// Errors is non-empty only when Status is SubmitInvalid.
	Errors FieldErrors `json:"errors,omitempty"`

	// Progress is the completion percentage after this submission.
	Progress int `json:"progress"`
}
