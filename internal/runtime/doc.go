// Package runtime implements the wizard core: step structure resolution,
// validation dispatch, navigation, state merging and the Engine that
// orchestrates them over a DefinitionSource, a StateStore and a Validator.
package runtime
