// Package validator is the default rule-string validator for wizard fields.
//
// Fields carry rule descriptors such as "required", "min:2" or
// "required_if:listing_type,sell". The validator parses them into Rules and
// reports human-readable messages per field key:
//
//	v := validator.New()
//	errs, err := v.Validate(ctx, domain.Values{"email": "nope"}, fields)
//	// errs["email"] == []string{"The email field must be a valid email address."}
//
// Empty values (nil, blank strings, empty lists) skip every rule except the
// implicit ones (required, required_if). "sometimes" skips a field that is
// absent from the submitted data; "nullable" is accepted and has no effect.
//
// Custom rules and message templates can be registered:
//
//	v := validator.New(
//	    validator.WithRule("cpf", func(params []string) (validator.Rule, error) {
//	        return validator.Custom("cpf", false, checkCPF), nil
//	    }),
//	    validator.WithMessage("required", "Please fill in :attribute."),
//	)
package validator
