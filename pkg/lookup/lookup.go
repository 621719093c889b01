// Package lookup replaces static parts of a schema with data fetched from an
// external lookup service, typically choice lists provided by a server.
//
// Resolve mutates the schema and the model it is given and hands the same
// values back. Clone the schema first when other holders must not observe the
// rewrite.
package lookup

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-formengine/pkg/fieldtree"
	"github.com/goliatone/go-formengine/pkg/modelpath"
	"github.com/goliatone/go-formengine/pkg/schema"
)

// MembersPath is where lookup data carries its collection.
const MembersPath = "members.members"

// Service is the external lookup source. GetByName returns the lookup data
// registered under name, shaped as {"members": {"members": [...]}}.
type Service interface {
	GetByName(name string) (map[string]any, bool)
	HasAnyLoaded() bool
	RefreshAll(ctx context.Context) error
}

// Resolved is the rewritten schema and model.
type Resolved struct {
	Schema *schema.Schema
	Model  map[string]any
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger. Nil keeps the no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Resolver applies the lookup specs of a schema.
type Resolver struct {
	service Service
	logger  *zap.Logger
}

// NewResolver returns a Resolver reading from service.
func NewResolver(service Service, opts ...Option) *Resolver {
	r := &Resolver{service: service, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Resolve applies every lookup spec of s in order. It returns nil when s has
// no lookups. The service is refreshed once when nothing is loaded yet.
//
// A spec with SetModel and FieldPath writes the lookup collection, or the
// value at LookupPath inside the lookup data, into the model. Any other spec
// assigns it to the LookupProperty of the field, "values" when unset. Specs
// whose field or data cannot be found leave everything untouched. A spec the
// data cannot be applied to is logged and skipped.
func (r *Resolver) Resolve(ctx context.Context, s *schema.Schema, model map[string]any) (*Resolved, error) {
	if s == nil || len(s.LookupFieldsList) == 0 {
		return nil, nil
	}
	if r.service == nil {
		return nil, fmt.Errorf("lookup: no service configured")
	}

	if !r.service.HasAnyLoaded() {
		if err := r.service.RefreshAll(ctx); err != nil {
			return nil, fmt.Errorf("lookup: refresh: %w", err)
		}
	}

	if model == nil {
		model = make(map[string]any)
	}

	for idx, spec := range s.LookupFieldsList {
		if err := r.apply(s, model, spec); err != nil {
			r.logger.Warn("lookup entry skipped",
				zap.Int("index", idx),
				zap.String("field", spec.FieldID),
				zap.Error(err),
			)
		}
	}
	return &Resolved{Schema: s, Model: model}, nil
}

func (r *Resolver) apply(s *schema.Schema, model map[string]any, spec schema.LookupSpec) error {
	field := fieldtree.FindByID(s.Fields, spec.FieldID)
	if field == nil {
		r.logger.Debug("lookup field not found", zap.String("field", spec.FieldID))
		return nil
	}

	name := spec.LookupAlterName
	if name == "" {
		name = field.FieldID
	}
	data, ok := r.service.GetByName(name)
	if !ok {
		r.logger.Debug("lookup data not found", zap.String("field", spec.FieldID), zap.String("lookup", name))
		return nil
	}
	members, ok := modelpath.Get(data, MembersPath)
	if !ok || members == nil {
		r.logger.Debug("lookup data has no members", zap.String("field", spec.FieldID), zap.String("lookup", name))
		return nil
	}

	value := members
	if spec.LookupPath != "" {
		value, _ = modelpath.Get(data, spec.LookupPath)
	}

	if spec.SetModel && spec.FieldPath != "" {
		_, err := modelpath.Set(model, spec.FieldPath, value)
		return err
	}

	property := spec.LookupProperty
	if property == "" {
		property = schema.PropValues
	}
	return field.SetProp(property, value)
}
