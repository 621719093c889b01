package prompt

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/goliatone/go-formengine/pkg/fieldtree"
	"github.com/goliatone/go-formengine/pkg/kind"
	"github.com/goliatone/go-formengine/pkg/modelpath"
	"github.com/goliatone/go-formengine/pkg/schema"
	"github.com/goliatone/go-formengine/pkg/validation"
)

var numericValidators = []string{validation.ValidatorNumber, validation.ValidatorInteger, validation.ValidatorDouble}

// Filler asks for a value for every editable leaf field and writes the
// answers into the model through the validator.
type Filler struct {
	driver    Driver
	validator *validation.Validator
}

// NewFiller returns a Filler prompting through driver.
func NewFiller(driver Driver, validator *validation.Validator) *Filler {
	return &Filler{driver: driver, validator: validator}
}

// Fill prompts for each leaf field in tree order and reports how many values
// changed. Readonly and disabled fields are skipped. Text answers are checked
// against the field validators before they are accepted.
func (f *Filler) Fill(ctx context.Context, fields []*schema.Field, model map[string]any) (int, error) {
	changed := 0
	extras := f.validator.Options().Extras
	for _, field := range fieldtree.Flatten(fields) {
		if field.IsContainer() {
			continue
		}
		flags := field.Flags(model, extras)
		if flags.Readonly || flags.Disabled {
			continue
		}

		leaf := field.Clone()
		if path := fieldtree.ModelPath(fields, field.FieldID); path != "" {
			leaf.Model = path
		}
		if leaf.Model == "" && leaf.Set == nil {
			continue
		}

		current := validation.FieldValue(leaf, model)
		value, ok, err := f.ask(ctx, leaf, model, current, flags.Required)
		if err != nil {
			return changed, fmt.Errorf("prompt: field %q: %w", field.FieldID, err)
		}
		if !ok || reflect.DeepEqual(value, current) || (value == "" && text(current) == "") {
			continue
		}
		if _, err := f.validator.UpdateModelValue(ctx, leaf, model, value, current); err != nil {
			return changed, fmt.Errorf("prompt: field %q: %w", field.FieldID, err)
		}
		changed++
	}
	return changed, nil
}

func (f *Filler) ask(ctx context.Context, field *schema.Field, model map[string]any, current any, required bool) (any, bool, error) {
	message := field.DisplayLabel()
	if message == "" {
		message = field.FieldID
	}
	if required {
		message += " *"
	}
	help, _ := field.Attrs["help"].(string)

	switch {
	case field.Type == schema.TypeCheckbox:
		answer, err := f.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: kind.Truthy(current), Help: help})
		return answer, err == nil, err

	case field.Type.IsChoice():
		if len(field.Values) == 0 {
			return nil, false, nil
		}
		options := lo.Map(field.Values, func(choice any, _ int) string {
			return fmt.Sprint(modelpath.Lookup(choice, field.TextKey()))
		})
		defaultIndex := -1
		if _, idx, found := lo.FindIndexOf(field.Values, func(choice any) bool {
			return reflect.DeepEqual(modelpath.Lookup(choice, field.ValueKey()), current)
		}); found {
			defaultIndex = idx
		}
		idx, err := f.driver.Select(ctx, SelectConfig{Message: message, Options: options, DefaultIndex: defaultIndex, Help: help})
		if err != nil || idx < 0 || idx >= len(field.Values) {
			return nil, false, err
		}
		return modelpath.Lookup(field.Values[idx], field.ValueKey()), true, nil

	case field.Type == schema.TypeTextarea:
		answer, err := f.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: text(current), Help: help})
		return answer, err == nil, err

	default:
		answer, err := f.driver.Input(ctx, InputConfig{
			Message: message,
			Default: text(current),
			Help:    help,
			Validator: func(answer string) error {
				errs, err := f.validator.Validate(ctx, field, coerce(field, answer), model, true)
				if err != nil {
					return err
				}
				if len(errs) > 0 {
					return errors.New(strings.Join(errs, "; "))
				}
				return nil
			},
		})
		if err != nil {
			return nil, false, err
		}
		return coerce(field, answer), true, nil
	}
}

// coerce parses answers for fields validated as numbers. Unparseable input
// stays a string so the validators can report it.
func coerce(field *schema.Field, answer string) any {
	numeric := lo.ContainsBy(field.Validator, func(ref schema.ValidatorRef) bool {
		return lo.Contains(numericValidators, ref.Name)
	})
	if !numeric || strings.TrimSpace(answer) == "" {
		return answer
	}
	if n, err := strconv.ParseFloat(strings.TrimSpace(answer), 64); err == nil {
		return n
	}
	return answer
}

func text(value any) string {
	if value == nil || value == kind.Missing {
		return ""
	}
	return fmt.Sprint(value)
}
