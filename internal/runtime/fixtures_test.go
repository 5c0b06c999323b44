package runtime_test

import (
	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/registry"
)

func incomeVisibility() *domain.RuleGroup {
	return &domain.RuleGroup{
		Logic: domain.LogicAll,
		Rules: []domain.Condition{{Path: "status", Op: domain.OpIn, Value: []any{"employed", "self"}}},
	}
}

func demoWizard() domain.WizardDefinition {
	return domain.WizardDefinition{
		ID:    "demo",
		Title: "Demo Wizard",
		Steps: []domain.Step{
			{Key: "basic", Title: "Basic info", Fields: []domain.Field{
				{Key: "full_name", Label: "Full name", Type: domain.FieldText, Rules: []string{"required", "string", "min:2"}},
				{Key: "email", Label: "Email", Type: domain.FieldEmail, Rules: []string{"required", "email"}},
			}},
			{Key: "employment", Title: "Employment", Fields: []domain.Field{
				{Key: "status", Label: "Status", Type: domain.FieldSelect, Rules: []string{"required", "in:employed,self,unemployed"}, Options: []domain.Option{
					{Value: "employed", Label: "Employed"},
					{Value: "self", Label: "Self-employed"},
					{Value: "unemployed", Label: "Unemployed"},
				}},
				{Key: "income", Label: "Monthly income", Type: domain.FieldNumber, Rules: []string{"required", "numeric", "min:0"}, Visibility: incomeVisibility()},
			}},
		},
	}
}

// listingWizard has a sectioned step whose "Parking" section disappears unless the listing has a garage.
func listingWizard() domain.WizardDefinition {
	return domain.WizardDefinition{
		ID:    "listing",
		Title: "Listing",
		Steps: []domain.Step{
			{Key: "basics", Fields: []domain.Field{
				{Key: "listing_type", Type: domain.FieldRadio, Options: []domain.Option{{Value: "sell"}, {Value: "rent"}}, Rules: []string{"required"}},
				{Key: "has_garage", Type: domain.FieldToggle},
			}},
			{Key: "details", Sections: []domain.Section{
				{Title: "Rooms", Fields: []domain.Field{
					{Key: "bedrooms", Type: domain.FieldNumber, Rules: []string{"required", "integer"}},
				}},
				{Title: "Parking", Fields: []domain.Field{
					{Key: "spaces", Type: domain.FieldNumber, Rules: []string{"required", "integer"}, Visibility: &domain.RuleGroup{
						Rules: []domain.Condition{{Path: "has_garage", Op: domain.OpTruthy}},
					}},
				}},
				{Title: "Price", Fields: []domain.Field{
					{Key: "sale_price", Type: domain.FieldNumber, Visibility: &domain.RuleGroup{
						Rules: []domain.Condition{{Path: "listing_type", Op: domain.OpEquals, Value: "sell"}},
					}},
					{Key: "monthly_rent", Type: domain.FieldNumber, Visibility: &domain.RuleGroup{
						Rules: []domain.Condition{{Path: "listing_type", Op: domain.OpEquals, Value: "rent"}},
					}},
				}},
			}},
			{Key: "contact", Fields: []domain.Field{{Key: "phone", Type: domain.FieldTel}}},
		},
	}
}

func testRegistry() *registry.Registry {
	return registry.MustNew(demoWizard(), listingWizard())
}
