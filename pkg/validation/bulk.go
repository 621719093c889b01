package validation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-formengine/pkg/fieldtree"
	"github.com/goliatone/go-formengine/pkg/modelpath"
	"github.com/goliatone/go-formengine/pkg/schema"
)

// Status is the outcome of a bulk check. A nil Status means the field had an
// empty validator list and nothing ran; it marshals as true.
type Status []string

// Valid reports whether no message was produced.
func (s Status) Valid() bool { return len(s) == 0 }

// MarshalJSON encodes nil as true and anything else as a list.
func (s Status) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("true"), nil
	}
	return json.Marshal([]string(s))
}

// Result is one row of a bulk check.
type Result struct {
	ID     string `json:"id"`
	Model  string `json:"model"`
	Label  string `json:"label"`
	Status Status `json:"validationStatus"`
}

// CheckFieldsValidation validates every field of the tree that declares
// validators, reading values at their absolute model path. It does not touch
// the per-field state, run hooks or publish events. Deferred results are
// awaited.
func (v *Validator) CheckFieldsValidation(ctx context.Context, fields []*schema.Field, model map[string]any) ([]Result, error) {
	if len(fields) == 0 || model == nil {
		return nil, nil
	}

	candidates := lo.Filter(fieldtree.Flatten(fields), func(field *schema.Field, _ int) bool {
		return field.Validator != nil
	})

	out := make([]Result, len(candidates))
	for idx, field := range candidates {
		out[idx] = Result{ID: field.FieldID, Model: field.Model, Label: field.Label}
		if field.DisableValidator {
			out[idx].Status = Status{}
			continue
		}
		status, err := v.check(ctx, field, fields, model)
		if err != nil {
			return nil, fmt.Errorf("validation: check field %q: %w", field.FieldID, err)
		}
		out[idx].Status = status
	}
	return out, nil
}

func (v *Validator) check(ctx context.Context, field *schema.Field, fields []*schema.Field, model map[string]any) (Status, error) {
	if len(field.Validator) == 0 {
		return nil, nil
	}
	value, _ := modelpath.Get(model, fieldtree.ModelPath(fields, field.FieldID))

	funcs := v.resolve(field)
	results := make([]any, len(funcs))
	g, gctx := errgroup.WithContext(ctx)
	for idx, fn := range funcs {
		result := v.invoke(gctx, fn, value, field, model)
		d, ok := result.(*Deferred)
		if !ok {
			results[idx] = result
			continue
		}
		g.Go(func() error {
			resolved, err := d.Wait(gctx)
			results[idx] = resolved
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	status := Status{}
	for _, result := range results {
		status = append(status, messages(result)...)
	}
	return status, nil
}
