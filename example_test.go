package stitch_test

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aretw0/stitch"
	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/registry"
)

// ExampleNew_memory drives a two-step wizard held in an in-memory registry.
func ExampleNew_memory() {
	source, err := registry.New(domain.WizardDefinition{
		ID: "contact",
		Steps: []domain.Step{
			{Key: "who", Fields: []domain.Field{
				{Key: "email", Type: domain.FieldEmail, Rules: []string{"required", "email"}},
				{Key: "wants_call", Type: domain.FieldCheckbox},
			}},
			{Key: "how", Fields: []domain.Field{
				{Key: "phone", Rules: []string{"required"}, Visibility: &domain.RuleGroup{
					Rules: []domain.Condition{{Path: "wants_call", Op: domain.OpEquals, Value: true}},
				}},
				{Key: "notes"},
			}},
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	engine, err := stitch.New("", stitch.WithSource(source))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	view, err := engine.Render(ctx, "session-1", "contact", "")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(view.StepKey, view.Structure.FieldKeys(), view.ProgressPercent)

	res, err := engine.Submit(ctx, "session-1", "contact", "who", domain.Values{"email": "nope"})
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		fmt.Println(res.Status, verr.Fields.First("email"))
	}

	res, err = engine.Submit(ctx, "session-1", "contact", "who", domain.Values{"email": "ada@example.com", "wants_call": true})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.Status, res.View.StepKey, res.View.Structure.FieldKeys(), res.Progress)

	// Output:
	// who [email wants_call] 0
	// invalid The email field must be a valid email address.
	// advanced how [phone notes] 50
}
