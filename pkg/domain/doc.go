/*
Package domain contains the core domain models of the Stitch wizard engine.

It defines the configuration entities of a wizard (WizardDefinition, Step, Section, Field),
the visibility rule tree attached to fields (RuleGroup, Condition, Operator) and the derived,
non-persisted views produced by the engine (ResolvedStep, StepView). This package is kept
pure and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - WizardDefinition: an ordered, immutable sequence of Steps.
  - Step: one page of the wizard, holding Fields directly or grouped into Sections.
  - Field: one input definition, with opaque validation rules and an optional RuleGroup.
  - Values: the mapping from field key to value used both as persisted state and as
    evaluation context.
  - StepView: the payload handed to a renderer for one step.
*/
package domain
