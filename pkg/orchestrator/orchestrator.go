package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formengine/pkg/interpolate"
	"github.com/goliatone/go-formengine/pkg/lookup"
	"github.com/goliatone/go-formengine/pkg/report"
	"github.com/goliatone/go-formengine/pkg/schema"
	"github.com/goliatone/go-formengine/pkg/summary"
	"github.com/goliatone/go-formengine/pkg/validation"
)

// FillFunc edits the model before it is checked, typically by prompting for
// values through the validator.
type FillFunc func(ctx context.Context, v *validation.Validator, fields []*schema.Field, model map[string]any) (int, error)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLogger sets the logger handed to every stage.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRegistry injects the validator registry used for checks and lint.
func WithRegistry(registry *validation.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithFormOptions sets the form level validation settings.
func WithFormOptions(opts validation.Options) Option {
	return func(o *Orchestrator) {
		o.formOptions = opts
	}
}

// WithLookupService supplies the data used to resolve lookupFieldsList.
func WithLookupService(service lookup.Service) Option {
	return func(o *Orchestrator) {
		o.lookups = service
	}
}

// WithSchemaTransformer registers a Transformer that runs after lookups and
// templates are resolved and before the model is filled or checked.
func WithSchemaTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformers = append(o.transformers, t)
	}
}

// WithFiller registers a FillFunc run before the model is checked.
func WithFiller(fill FillFunc) Option {
	return func(o *Orchestrator) {
		o.fill = fill
	}
}

// WithFieldIDPrefix prefixes the field anchors of generated reports.
func WithFieldIDPrefix(prefix string) Option {
	return func(o *Orchestrator) {
		o.idPrefix = prefix
	}
}

// WithTemplateValues sets the auxiliary values templated labels fall back to.
func WithTemplateValues(values map[string]any) Option {
	return func(o *Orchestrator) {
		o.templateValues = values
	}
}

// Orchestrator coordinates one check from schema document to report.
type Orchestrator struct {
	logger         *zap.Logger
	registry       *validation.Registry
	formOptions    validation.Options
	lookups        lookup.Service
	transformers   []Transformer
	fill           FillFunc
	idPrefix       string
	templateValues map[string]any
}

// New constructs an Orchestrator. Missing dependencies fall back to the
// built-in registry, an empty lookup service and a no-op logger.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{logger: zap.NewNop()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	if o.registry == nil {
		o.registry = validation.NewRegistry(nil)
	}
	if o.lookups == nil {
		o.lookups = lookup.NewStaticService(nil, nil)
	}
	return o
}

// Request describes one check.
type Request struct {
	// SchemaPath names the schema document. Optional when Schema is supplied.
	SchemaPath string

	// Schema bypasses loading when the caller already decoded the document.
	Schema *schema.Schema

	// Model is checked and filled in place. A nil model starts empty.
	Model map[string]any

	// Title names the report. Defaults to the schema file name.
	Title string

	// LintOnly stops after the schema checks.
	LintOnly bool
}

// Generate runs the pipeline and returns the report. Schema problems are
// reported as issues; an undecodable document yields a report holding the
// decode issue instead of an error.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (report.Report, error) {
	if ctx == nil {
		return report.Report{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return report.Report{}, err
	}

	rep := report.Report{Title: req.Title, IDPrefix: o.idPrefix}
	if rep.Title == "" && req.SchemaPath != "" {
		rep.Title = strings.TrimSuffix(filepath.Base(req.SchemaPath), filepath.Ext(req.SchemaPath))
	}

	s, lint, err := o.resolveSchema(req)
	if err != nil {
		return report.Report{}, err
	}
	rep.Issues = lint.Issues
	if s == nil || req.LintOnly {
		return rep, nil
	}

	model := req.Model
	if model == nil {
		model = make(map[string]any)
	}

	if len(s.LookupFieldsList) > 0 {
		resolver := lookup.NewResolver(o.lookups, lookup.WithLogger(o.logger))
		if _, err := resolver.Resolve(ctx, s, model); err != nil {
			return report.Report{}, err
		}
	}

	if n := interpolate.ResolveFields(s.Fields, model, o.templateValues); n > 0 {
		o.logger.Debug("templated fields resolved", zap.Int("fields", n))
	}

	for _, transformer := range o.transformers {
		if transformer == nil {
			continue
		}
		if err := transformer.Transform(ctx, s); err != nil {
			return report.Report{}, fmt.Errorf("orchestrator: transform schema: %w", err)
		}
	}

	validator, err := validation.New(o.formOptions, validation.WithLogger(o.logger), validation.WithRegistry(o.registry))
	if err != nil {
		return report.Report{}, err
	}
	defer validator.Close()

	if o.fill != nil {
		changed, err := o.fill(ctx, validator, s.Fields, model)
		if err != nil {
			return report.Report{}, fmt.Errorf("orchestrator: fill model: %w", err)
		}
		o.logger.Info("model filled", zap.Int("changed", changed))
	}

	if rep.Results, err = validator.CheckFieldsValidation(ctx, s.Fields, model); err != nil {
		return report.Report{}, err
	}
	rep.Rows = summary.Rows(s.Fields, model)

	o.logger.Debug("form checked",
		zap.String("title", rep.Title),
		zap.Int("results", len(rep.Results)),
		zap.Int("invalid", rep.Invalid()),
		zap.Int("issues", len(rep.Issues)),
	)
	return rep, nil
}

// resolveSchema returns the schema to check with its lint result. The schema
// is nil when the document could not be decoded.
func (o *Orchestrator) resolveSchema(req Request) (*schema.Schema, validation.SchemaLintResult, error) {
	if req.Schema != nil {
		return req.Schema, validation.LintSchema(req.Schema, o.registry), nil
	}
	if req.SchemaPath == "" {
		return nil, validation.SchemaLintResult{}, errors.New("orchestrator: schema path or schema is required")
	}

	raw, err := os.ReadFile(req.SchemaPath)
	if err != nil {
		return nil, validation.SchemaLintResult{}, fmt.Errorf("orchestrator: read schema: %w", err)
	}
	format := schema.FormatFromPath(req.SchemaPath)
	lint := validation.LintDocument(schema.SourceFromFile(req.SchemaPath), format, raw, validation.LintOptions{Registry: o.registry})

	s, err := schema.LoadFile(req.SchemaPath)
	if err != nil {
		if !lint.Valid {
			o.logger.Warn("schema not decodable", zap.String("schema", req.SchemaPath), zap.Error(err))
			return nil, lint, nil
		}
		return nil, lint, err
	}
	o.logger.Debug("schema loaded", zap.String("schema", req.SchemaPath), zap.Int("lookups", len(s.LookupFieldsList)))
	return s, lint, nil
}
