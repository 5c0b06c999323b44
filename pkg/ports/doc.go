/*
Package ports defines the driven ports (interfaces) for the Stitch engine.

These interfaces decouple the wizard core from external implementations, allowing
the engine to work with various definition sources, state backends and validators.

# Key Interfaces

  - DefinitionSource: Looks up wizard definitions by id (e.g., from a registry, YAML files or Loam).
  - StateStore: Persists the accumulated answers of one wizard instance.
  - Validator: Applies the opaque rule descriptors of visible fields to submitted data.
  - WizardEngine: The driving port used by transports (HTTP, MCP, terminal).
*/
package ports
