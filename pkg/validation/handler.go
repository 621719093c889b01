package validation

import (
	"context"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/goliatone/go-formengine/pkg/fieldtree"
	"github.com/goliatone/go-formengine/pkg/schema"
)

// HandlerResult is the raw outcome for one field. A nil Status means the
// field could not be validated.
type HandlerResult struct {
	ID     string
	Field  *schema.Field
	Status []string
	Value  any
}

// FieldErrors lists the messages of one failing field.
type FieldErrors struct {
	ID     string   `json:"id"`
	Label  string   `json:"label"`
	Errors []string `json:"errors"`
}

// Handler collects validation results over a whole tree through a Validator,
// the way a form does before submitting.
type Handler struct {
	validator *Validator
	model     map[string]any
	results   []HandlerResult
}

// NewHandler returns a Handler validating against model.
func NewHandler(validator *Validator, model map[string]any) *Handler {
	return &Handler{validator: validator, model: model}
}

// CheckStatus validates every field of the tree, parents before children,
// and records a result for each field with an id. Values are recorded when
// includeValue is set.
func (h *Handler) CheckStatus(ctx context.Context, fields []*schema.Field, includeValue bool) *Handler {
	for _, field := range fields {
		if field == nil {
			continue
		}
		result := HandlerResult{ID: field.FieldID, Field: field, Status: h.checkField(ctx, field)}
		if includeValue {
			result.Value = FieldValue(field, h.model)
		}
		if result.ID != "" {
			h.results = append(h.results, result)
		}
		if len(field.Fields) > 0 {
			h.CheckStatus(ctx, field.Fields, includeValue)
		}
	}
	return h
}

func (h *Handler) checkField(ctx context.Context, field *schema.Field) (status []string) {
	defer func() {
		if r := recover(); r != nil {
			h.validator.logger.Error("field check panicked", zap.String("field", field.FieldID), zap.Any("panic", r))
			status = nil
		}
	}()
	errs, err := h.validator.ValidateField(ctx, field, h.model, true)
	if err != nil {
		return nil
	}
	return errs
}

// RawResults returns every recorded result.
func (h *Handler) RawResults() []HandlerResult {
	return h.results
}

// CollectionRawErrors narrows the recorded results to fields found in fields.
func (h *Handler) CollectionRawErrors(fields []*schema.Field) []HandlerResult {
	return lo.Filter(h.results, func(result HandlerResult, _ int) bool {
		return fieldtree.FindByID(fields, result.ID) != nil
	})
}

// CollectionErrors summarises failing fields of raw, or of every recorded
// result when raw is nil.
func (h *Handler) CollectionErrors(raw []HandlerResult) []FieldErrors {
	if raw == nil {
		raw = h.results
	}
	return lo.FilterMap(raw, func(result HandlerResult, _ int) (FieldErrors, bool) {
		if len(result.Status) == 0 || result.ID == "" {
			return FieldErrors{}, false
		}
		return FieldErrors{
			ID:     result.ID,
			Label:  result.Field.DisplayLabel(),
			Errors: result.Status,
		}, true
	})
}
