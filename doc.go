/*
Package stitch is a configuration-driven engine for multi-step form wizards.

A wizard is declared as data: an ordered list of steps, each holding fields
(flat or grouped in sections) with validation rules and optional visibility
conditions over the values collected so far. The engine renders a step for a
caller-identified session, validates submissions against the fields that are
actually visible, merges accepted values into persisted state and reports
progress. It keeps no per-session state of its own.

# Architecture

The core lives in internal/runtime and is driven through ports:

  - ports.DefinitionSource resolves wizard definitions (YAML/JSON files,
    Loam directories, in-memory registries).
  - ports.StateStore persists the values of one wizard instance, keyed by
    session and wizard (memory, file, Redis, SQLite).
  - ports.Validator applies rule strings such as "required|email".

Adapters under pkg/adapters expose the engine over HTTP and MCP.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/stitch"
		"github.com/aretw0/stitch/pkg/domain"
	)

	func main() {
		eng, err := stitch.New("./wizards.yaml")
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		view, err := eng.Render(ctx, "session-123", "demo", "")
		if err != nil {
			log.Fatal(err)
		}
		log.Println("Step:", view.StepTitle, view.Structure.FieldKeys())

		res, err := eng.Submit(ctx, "session-123", "demo", view.StepKey, domain.Values{
			"full_name": "Ada Lovelace",
			"email":     "ada@example.com",
		})
		if err != nil {
			log.Fatal(err)
		}
		log.Println("Status:", res.Status, "progress:", res.Progress)
	}
*/
package stitch
