package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/stitch/internal/presentation/graph"
	"github.com/aretw0/stitch/pkg/domain"
)

func listing() *domain.WizardDefinition {
	return &domain.WizardDefinition{
		ID: "listing",
		Steps: []domain.Step{
			{Key: "basics", Title: "The \"basics\"", Fields: []domain.Field{
				{Key: "listing_type", Type: domain.FieldRadio, Options: []domain.Option{{Value: "sell"}, {Value: "rent"}}},
				{Key: "address.city", Label: "City"},
			}},
			{Key: "price-info", Sections: []domain.Section{
				{Title: "Price", Fields: []domain.Field{
					{Key: "sale_price", Type: domain.FieldNumber, Visibility: &domain.RuleGroup{
						Rules: []domain.Condition{{Path: "listing_type", Op: domain.OpEquals, Value: "sell"}},
					}},
					{Key: "deposit", Visibility: &domain.RuleGroup{
						Logic: domain.LogicAny,
						Rules: []domain.Condition{
							{Path: "listing_type", Op: domain.OpIn, Value: []any{"rent", "lease"}},
							{Path: "user.is_agent", Op: domain.OpTruthy},
						},
					}},
					{Key: "early", Visibility: &domain.RuleGroup{
						Rules: []domain.Condition{{Path: "photos", Op: domain.OpExists}},
					}},
				}},
			}},
			{Key: "media", Fields: []domain.Field{{Key: "photos"}}},
		},
	}
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		overlay  *graph.Overlay
		contains []string
		excludes []string
	}{
		{
			name: "Steps And Order",
			contains: []string{
				`subgraph step_basics["1. The 'basics'"]`,
				`subgraph step_price_info["2. price-info"]`,
				`subgraph step_price_info_s1["Price"]`,
				"step_basics --> step_price_info",
				"step_price_info --> step_media",
			},
		},
		{
			name: "Field Shapes",
			contains: []string{
				`basics__listing_type{{"listing_type"}}`,
				`basics__address_city["City <br/> address.city"]`,
				`price_info__sale_price(["sale_price"])`,
				`media__photos["photos"]`,
			},
		},
		{
			name: "Visibility Edges",
			contains: []string{
				`basics__listing_type -. "listing_type = sell" .-> price_info__sale_price`,
				`basics__listing_type -. "any: listing_type in [rent, lease]" .-> price_info__deposit`,
				`ctx_user_is_agent[/"user.is_agent"/]`,
				`ctx_user_is_agent -. "any: user.is_agent truthy" .-> price_info__deposit`,
				`media__photos -. "later step: photos exists" .-> price_info__early`,
			},
		},
		{
			name:     "No Overlay",
			excludes: []string{"classDef"},
		},
		{
			name:    "Overlay",
			overlay: &graph.Overlay{CompletedSteps: []string{"basics", "basics"}, CurrentStep: "price-info"},
			contains: []string{
				"class step_basics completed;",
				"class step_price_info current;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(listing(), tt.overlay)
			if !strings.HasPrefix(got, "graph TD\n") {
				t.Fatalf("missing header:\n%s", got)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("GenerateMermaid() = \n%v\nUnexpected substring: %v", got, unwanted)
				}
			}
			if tt.overlay != nil && strings.Count(got, "class step_basics completed;") != 1 {
				t.Errorf("completed steps must be deduplicated:\n%s", got)
			}
		})
	}
}
