package schema

import (
	"context"
	"time"
)

// FieldType discriminates rendering and validation behaviour.
type FieldType string

const (
	TypeTextbox      FieldType = "vTextbox"
	TypeTextarea     FieldType = "vTextarea"
	TypeSelect       FieldType = "vSelect"
	TypeAutoComplete FieldType = "vAutoComplete"
	TypeCheckbox     FieldType = "vCheckbox"
	TypeGroup        FieldType = "vGroup"
)

// IsChoice reports whether values of this type are picked from a choice list.
func (t FieldType) IsChoice() bool {
	return t == TypeSelect || t == TypeAutoComplete
}

const (
	// DefaultItemValue is the choice key compared against model values.
	DefaultItemValue = "id"
	// DefaultItemText is the choice key shown to users.
	DefaultItemText = "name"
)

// ValidatorFunc checks a value. It returns nil or true when the value is
// valid, a string or []string with error messages, an error, or a deferred
// result produced by the validation package.
type ValidatorFunc func(ctx context.Context, value any, field *Field, model map[string]any) any

// ValidatorRef points at a validator either by registry name or directly.
type ValidatorRef struct {
	Name string
	Func ValidatorFunc
}

// Named references a validator registered under name.
func Named(name string) ValidatorRef {
	return ValidatorRef{Name: name}
}

// Inline wraps a validator function.
func Inline(fn ValidatorFunc) ValidatorRef {
	return ValidatorRef{Func: fn}
}

// Validators builds a validator list from names and functions. Other values
// are ignored.
func Validators(refs ...any) []ValidatorRef {
	out := make([]ValidatorRef, 0, len(refs))
	for _, ref := range refs {
		switch typed := ref.(type) {
		case string:
			out = append(out, Named(typed))
		case ValidatorFunc:
			out = append(out, Inline(typed))
		case func(context.Context, any, *Field, map[string]any) any:
			out = append(out, Inline(typed))
		case ValidatorRef:
			out = append(out, typed)
		}
	}
	return out
}

// Field is a node in the field tree. Container fields carry children in
// Fields; leaf fields address the model through Model.
type Field struct {
	FieldID string
	Model   string
	Label   string
	Title   string
	Type    FieldType

	Validator            []ValidatorRef
	DisableValidator     bool
	ValidateDebounceTime *time.Duration

	Disabled Attr
	Readonly Attr
	Featured Attr
	Required Attr

	Fields []*Field

	// Choice payload used by vSelect and vAutoComplete.
	Values    []any
	ItemValue string
	ItemText  string

	Min     *float64
	Max     *float64
	Pattern string

	// Get and Set replace path based access to the model when present.
	Get         func(model map[string]any) any
	Set         func(model map[string]any, value any)
	OnChanged   func(model map[string]any, newValue, oldValue any, field *Field)
	OnValidated func(model map[string]any, errors []string, field *Field)

	// Attrs holds properties not covered by the record.
	Attrs map[string]any
}

// HasValidator reports whether any validator is attached.
func (f *Field) HasValidator() bool {
	return f != nil && len(f.Validator) > 0
}

// IsContainer reports whether the field has children.
func (f *Field) IsContainer() bool {
	return f != nil && len(f.Fields) > 0
}

// ValueKey returns the choice key compared against model values.
func (f *Field) ValueKey() string {
	if f == nil || f.ItemValue == "" {
		return DefaultItemValue
	}
	return f.ItemValue
}

// TextKey returns the choice key displayed for a matched value.
func (f *Field) TextKey() string {
	if f == nil || f.ItemText == "" {
		return DefaultItemText
	}
	return f.ItemText
}

// DisplayLabel returns Label, falling back to Title.
func (f *Field) DisplayLabel() string {
	if f == nil {
		return ""
	}
	if f.Label != "" {
		return f.Label
	}
	return f.Title
}

// Flags is the evaluated set of boolean attributes for a field.
type Flags struct {
	Disabled bool
	Readonly bool
	Featured bool
	Required bool
}

// Flags evaluates the boolean attributes against model. ctx is forwarded to
// computed attributes untouched.
func (f *Field) Flags(model map[string]any, ctx any) Flags {
	if f == nil {
		return Flags{}
	}
	return Flags{
		Disabled: f.Disabled.Eval(model, f, ctx),
		Readonly: f.Readonly.Eval(model, f, ctx),
		Featured: f.Featured.Eval(model, f, ctx),
		Required: f.Required.Eval(model, f, ctx),
	}
}

// LookupSpec describes how a field property, or a model path, is rewritten
// from a named lookup.
type LookupSpec struct {
	FieldID         string `json:"fieldId" yaml:"fieldId" toml:"fieldId"`
	LookupAlterName string `json:"lookupAlterName,omitempty" yaml:"lookupAlterName,omitempty" toml:"lookupAlterName,omitempty"`
	SetModel        bool   `json:"setModel,omitempty" yaml:"setModel,omitempty" toml:"setModel,omitempty"`
	FieldPath       string `json:"fieldPath,omitempty" yaml:"fieldPath,omitempty" toml:"fieldPath,omitempty"`
	LookupPath      string `json:"lookupPath,omitempty" yaml:"lookupPath,omitempty" toml:"lookupPath,omitempty"`
	LookupProperty  string `json:"lookupProperty,omitempty" yaml:"lookupProperty,omitempty" toml:"lookupProperty,omitempty"`
}

// Schema is a field tree plus the lookups that populate it.
type Schema struct {
	Fields           []*Field
	LookupFieldsList []LookupSpec
}
