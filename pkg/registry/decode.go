package registry

import (
	"fmt"
	"reflect"

	"github.com/aretw0/stitch/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
)

// Decode converts a generic document (as produced by YAML, JSON or frontmatter
// parsers) into a WizardDefinition. The result is not checked; pass it to New.
//
// Besides the canonical layout it accepts a few shorthands:
//   - rules as a single pipe-separated string ("required|email")
//   - options as plain scalars, used as both value and label
//   - operator aliases ("==", "gte", "nin", ...) and logic aliases ("and", "or")
func Decode(raw map[string]any) (domain.WizardDefinition, error) {
	var def domain.WizardDefinition
	if err := decodeInto(raw, &def); err != nil {
		return domain.WizardDefinition{}, fmt.Errorf("failed to decode wizard definition: %w", err)
	}
	return def, nil
}

// DecodeSteps decodes a raw step list, as found under a "steps" key.
func DecodeSteps(raw []any) ([]domain.Step, error) {
	var steps []domain.Step
	if err := decodeInto(raw, &steps); err != nil {
		return nil, fmt.Errorf("failed to decode steps: %w", err)
	}
	return steps, nil
}

func decodeInto(input, output any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           output,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			optionHook,
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToSliceHookFunc("|"),
		),
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

var optionType = reflect.TypeOf(domain.Option{})

// optionHook expands a scalar option into a value/label pair.
func optionHook(from, to reflect.Type, data any) (any, error) {
	if to != optionType {
		return data, nil
	}
	switch from.Kind() {
	case reflect.Map, reflect.Struct:
		return data, nil
	}
	s, err := cast.ToStringE(data)
	if err != nil {
		return nil, fmt.Errorf("option must be a scalar or a value/label map: %w", err)
	}
	return map[string]any{"value": s, "label": s}, nil
}
