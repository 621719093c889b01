// Package orchestrator wires the schema → lookup → template → validation →
// summary pipeline behind a single entry point. Callers that want a report
// for a schema and a model start with New and Generate; every stage can be
// replaced through options.
package orchestrator
