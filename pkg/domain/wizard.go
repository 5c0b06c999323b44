package domain

// FieldType enumerates the input kinds a Field can declare.
type FieldType string

const (
	FieldText        FieldType = "text"
	FieldEmail       FieldType = "email"
	FieldPassword    FieldType = "password"
	FieldTel         FieldType = "tel"
	FieldURL         FieldType = "url"
	FieldNumber      FieldType = "number"
	FieldTextarea    FieldType = "textarea"
	FieldSelect      FieldType = "select"
	FieldMultiSelect FieldType = "multiselect"
	FieldRadio       FieldType = "radio"
	FieldToggle      FieldType = "toggle"
	FieldCheckbox    FieldType = "checkbox"
	FieldDate        FieldType = "date"
	FieldTime        FieldType = "time"
	FieldDateTime    FieldType = "datetime"
	FieldFile        FieldType = "file"
	FieldHidden      FieldType = "hidden"
)

var knownFieldTypes = map[FieldType]bool{
	FieldText: true, FieldEmail: true, FieldPassword: true, FieldTel: true, FieldURL: true,
	FieldNumber: true, FieldTextarea: true, FieldSelect: true, FieldMultiSelect: true,
	FieldRadio: true, FieldToggle: true, FieldCheckbox: true, FieldDate: true,
	FieldTime: true, FieldDateTime: true, FieldFile: true, FieldHidden: true,
}

// IsKnown reports whether t is one of the supported field types.
func (t FieldType) IsKnown() bool {
	return knownFieldTypes[t]
}

// RequiresOptions reports whether fields of this type must declare an option list.
func (t FieldType) RequiresOptions() bool {
	return t == FieldSelect || t == FieldMultiSelect || t == FieldRadio
}

// WizardDefinition is a named, ordered sequence of steps forming one form flow.
// Step order is significant and fixed once the definition is loaded.
type WizardDefinition struct {
	ID          string `json:"id" yaml:"id" mapstructure:"id"`
	Title       string `json:"title" yaml:"title" mapstructure:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Steps       []Step `json:"steps" yaml:"steps" mapstructure:"steps"`
}

// StepKeys returns the step keys in definition order.
func (w *WizardDefinition) StepKeys() []string {
	keys := make([]string, 0, len(w.Steps))
	for _, s := range w.Steps {
		keys = append(keys, s.Key)
	}
	return keys
}

// FindStep returns the step with the given key, or nil.
func (w *WizardDefinition) FindStep(key string) *Step {
	for i := range w.Steps {
		if w.Steps[i].Key == key {
			return &w.Steps[i]
		}
	}
	return nil
}

// Step is one page of the wizard.
// A step uses exactly one of the two field containers: Fields or Sections.
type Step struct {
	Key      string    `json:"key" yaml:"key" mapstructure:"key"`
	Title    string    `json:"title" yaml:"title" mapstructure:"title"`
	Fields   []Field   `json:"fields,omitempty" yaml:"fields,omitempty" mapstructure:"fields"`
	Sections []Section `json:"sections,omitempty" yaml:"sections,omitempty" mapstructure:"sections"`
}

// HasSections reports whether the step groups its fields into sections.
func (s *Step) HasSections() bool {
	return len(s.Sections) > 0
}

// AllFields returns every declared field of the step, ignoring visibility.
func (s *Step) AllFields() []Field {
	if !s.HasSections() {
		return s.Fields
	}
	var all []Field
	for _, sec := range s.Sections {
		all = append(all, sec.Fields...)
	}
	return all
}

// Section is a named sub-grouping of fields within a step.
type Section struct {
	Title  string  `json:"title,omitempty" yaml:"title,omitempty" mapstructure:"title"`
	Fields []Field `json:"fields" yaml:"fields" mapstructure:"fields"`
}

// Option is one value/label pair of a choice field.
type Option struct {
	Value string `json:"value" yaml:"value" mapstructure:"value"`
	Label string `json:"label" yaml:"label" mapstructure:"label"`
}

// Field is one input definition.
type Field struct {
	Key         string    `json:"key" yaml:"key" mapstructure:"key"`
	Label       string    `json:"label" yaml:"label" mapstructure:"label"`
	Type        FieldType `json:"type" yaml:"type" mapstructure:"type"`
	Options     []Option  `json:"options,omitempty" yaml:"options,omitempty" mapstructure:"options"`
	Placeholder string    `json:"placeholder,omitempty" yaml:"placeholder,omitempty" mapstructure:"placeholder"`
	Help        string    `json:"help,omitempty" yaml:"help,omitempty" mapstructure:"help"`

	// Rules are opaque descriptors consumed by the external validator (e.g. "required", "min:2").
	Rules []string `json:"rules,omitempty" yaml:"rules,omitempty" mapstructure:"rules"`

	// Visibility is optional. A nil group means the field is always visible.
	Visibility *RuleGroup `json:"visibility,omitempty" yaml:"visibility,omitempty" mapstructure:"visibility"`
}

// Values maps field keys to values. It is used both as persisted wizard state
// and as the read-only context for visibility evaluation.
type Values map[string]any

// Clone returns a shallow copy of v. A nil receiver yields an empty map.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// StateKey identifies one persisted wizard state.
// It is supplied by the caller so the core never reaches into session mechanisms.
type StateKey struct {
	SessionID string `json:"session_id"`
	WizardID  string `json:"wizard_id"`
}

// String renders the key as "session:wizard".
func (k StateKey) String() string {
	return k.SessionID + ":" + k.WizardID
}
