// Package formengine checks form models against declarative form schemas.
//
// The root package offers shortcuts over the orchestrator for callers that
// want a report from a schema file and a model in one call:
//
//	rep, err := formengine.Check(ctx, "signup.yaml", model)
//	if err != nil {
//		return err
//	}
//	return formengine.WriteReport(os.Stdout, report.FormatText, rep)
package formengine

import (
	"context"
	"io"
	"io/fs"

	"github.com/goliatone/go-formengine/pkg/orchestrator"
	"github.com/goliatone/go-formengine/pkg/report"
	"github.com/goliatone/go-formengine/pkg/schema"
)

// Request aliases orchestrator.Request.
type Request = orchestrator.Request

// Report aliases report.Report.
type Report = report.Report

// Option aliases orchestrator.Option.
type Option = orchestrator.Option

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// Check loads the schema at schemaPath, resolves lookups and templates, and
// validates model against it.
func Check(ctx context.Context, schemaPath string, model map[string]any, options ...Option) (Report, error) {
	return orchestrator.New(options...).Generate(ctx, Request{SchemaPath: schemaPath, Model: model})
}

// CheckSchema validates model against an already decoded schema.
func CheckSchema(ctx context.Context, s *schema.Schema, model map[string]any, options ...Option) (Report, error) {
	return orchestrator.New(options...).Generate(ctx, Request{Schema: s, Model: model})
}

// Lint reports problems in the schema document at schemaPath without
// validating a model.
func Lint(ctx context.Context, schemaPath string, options ...Option) (Report, error) {
	return orchestrator.New(options...).Generate(ctx, Request{SchemaPath: schemaPath, LintOnly: true})
}

// WriteReport renders rep with the built-in templates.
func WriteReport(w io.Writer, format report.Format, rep Report) error {
	engine, err := report.NewEngine()
	if err != nil {
		return err
	}
	return engine.Write(w, format, rep)
}

// EmbeddedTemplates exposes the built-in report templates so callers can
// reuse or extend them through report.WithFS.
func EmbeddedTemplates() fs.FS {
	return report.TemplatesFS()
}
