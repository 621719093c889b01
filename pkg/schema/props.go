package schema

import (
	"fmt"
	"time"
)

// Property names understood by Prop and SetProp. Any other name is stored in
// Attrs.
const (
	PropFieldID              = "fieldId"
	PropModel                = "model"
	PropLabel                = "label"
	PropTitle                = "title"
	PropType                 = "type"
	PropValidator            = "validator"
	PropDisableValidator     = "disableValidator"
	PropValidateDebounceTime = "validateDebounceTime"
	PropDisabled             = "disabled"
	PropReadonly             = "readonly"
	PropFeatured             = "featured"
	PropRequired             = "required"
	PropFields               = "fields"
	PropValues               = "values"
	PropItemValue            = "itemValue"
	PropItemText             = "itemText"
	PropMin                  = "min"
	PropMax                  = "max"
	PropPattern              = "pattern"
)

// Prop returns a property by name and whether it is present. Boolean
// attributes report their literal value or their function.
func (f *Field) Prop(name string) (any, bool) {
	if f == nil {
		return nil, false
	}
	switch name {
	case PropFieldID:
		return f.FieldID, f.FieldID != ""
	case PropModel:
		return f.Model, f.Model != ""
	case PropLabel:
		return f.Label, f.Label != ""
	case PropTitle:
		return f.Title, f.Title != ""
	case PropType:
		return string(f.Type), f.Type != ""
	case PropValidator:
		return f.Validator, len(f.Validator) > 0
	case PropDisableValidator:
		return f.DisableValidator, true
	case PropValidateDebounceTime:
		if f.ValidateDebounceTime == nil {
			return nil, false
		}
		return *f.ValidateDebounceTime, true
	case PropDisabled:
		return f.Disabled.attrValue(), f.Disabled.IsSet()
	case PropReadonly:
		return f.Readonly.attrValue(), f.Readonly.IsSet()
	case PropFeatured:
		return f.Featured.attrValue(), f.Featured.IsSet()
	case PropRequired:
		return f.Required.attrValue(), f.Required.IsSet()
	case PropFields:
		return f.Fields, f.Fields != nil
	case PropValues:
		return f.Values, f.Values != nil
	case PropItemValue:
		return f.ItemValue, f.ItemValue != ""
	case PropItemText:
		return f.ItemText, f.ItemText != ""
	case PropMin:
		if f.Min == nil {
			return nil, false
		}
		return *f.Min, true
	case PropMax:
		if f.Max == nil {
			return nil, false
		}
		return *f.Max, true
	case PropPattern:
		return f.Pattern, f.Pattern != ""
	}
	value, ok := f.Attrs[name]
	return value, ok
}

// PropString returns a property rendered as a string, empty when absent or
// not textual.
func (f *Field) PropString(name string) string {
	value, ok := f.Prop(name)
	if !ok {
		return ""
	}
	switch typed := value.(type) {
	case string:
		return typed
	case FieldType:
		return string(typed)
	default:
		return ""
	}
}

// SetProp assigns a property by name. Values of the wrong type for a typed
// property are rejected; unknown names land in Attrs.
func (f *Field) SetProp(name string, value any) error {
	if f == nil {
		return fmt.Errorf("schema: set %q on nil field", name)
	}

	mismatch := func() error {
		return fmt.Errorf("schema: property %q of field %q cannot hold %T", name, f.FieldID, value)
	}

	switch name {
	case PropFieldID, PropModel, PropLabel, PropTitle, PropType, PropItemValue, PropItemText, PropPattern:
		var text string
		switch typed := value.(type) {
		case nil:
		case string:
			text = typed
		case FieldType:
			text = string(typed)
		default:
			return mismatch()
		}
		switch name {
		case PropFieldID:
			f.FieldID = text
		case PropModel:
			f.Model = text
		case PropLabel:
			f.Label = text
		case PropTitle:
			f.Title = text
		case PropType:
			f.Type = FieldType(text)
		case PropItemValue:
			f.ItemValue = text
		case PropItemText:
			f.ItemText = text
		case PropPattern:
			f.Pattern = text
		}
	case PropValidator:
		refs, ok := toValidatorRefs(value)
		if !ok {
			return mismatch()
		}
		f.Validator = refs
	case PropDisableValidator:
		flag, ok := value.(bool)
		if !ok {
			return mismatch()
		}
		f.DisableValidator = flag
	case PropValidateDebounceTime:
		duration, ok := toDuration(value)
		if !ok {
			return mismatch()
		}
		f.ValidateDebounceTime = duration
	case PropDisabled, PropReadonly, PropFeatured, PropRequired:
		attr, ok := toAttr(value)
		if !ok {
			return mismatch()
		}
		switch name {
		case PropDisabled:
			f.Disabled = attr
		case PropReadonly:
			f.Readonly = attr
		case PropFeatured:
			f.Featured = attr
		case PropRequired:
			f.Required = attr
		}
	case PropFields:
		children, ok := value.([]*Field)
		if !ok && value != nil {
			return mismatch()
		}
		f.Fields = children
	case PropValues:
		values, ok := toValues(value)
		if !ok {
			return mismatch()
		}
		f.Values = values
	case PropMin, PropMax:
		number, ok := toFloatPtr(value)
		if !ok {
			return mismatch()
		}
		if name == PropMin {
			f.Min = number
		} else {
			f.Max = number
		}
	default:
		if f.Attrs == nil {
			f.Attrs = make(map[string]any)
		}
		f.Attrs[name] = value
	}
	return nil
}

func toValidatorRefs(value any) ([]ValidatorRef, bool) {
	switch typed := value.(type) {
	case nil:
		return nil, true
	case []ValidatorRef:
		return typed, true
	case ValidatorRef:
		return []ValidatorRef{typed}, true
	case string:
		return []ValidatorRef{Named(typed)}, true
	case []string:
		refs := make([]ValidatorRef, 0, len(typed))
		for _, name := range typed {
			refs = append(refs, Named(name))
		}
		return refs, true
	case ValidatorFunc:
		return []ValidatorRef{Inline(typed)}, true
	case []any:
		refs := Validators(typed...)
		return refs, len(refs) == len(typed)
	default:
		return nil, false
	}
}

func toValues(value any) ([]any, bool) {
	switch typed := value.(type) {
	case nil:
		return nil, true
	case []any:
		return typed, true
	case []map[string]any:
		out := make([]any, len(typed))
		for idx, item := range typed {
			out[idx] = item
		}
		return out, true
	case []string:
		out := make([]any, len(typed))
		for idx, item := range typed {
			out[idx] = item
		}
		return out, true
	default:
		return nil, false
	}
}

func toDuration(value any) (*time.Duration, bool) {
	switch typed := value.(type) {
	case nil:
		return nil, true
	case time.Duration:
		return &typed, true
	case *time.Duration:
		return typed, true
	case int:
		d := time.Duration(typed) * time.Millisecond
		return &d, true
	case int64:
		d := time.Duration(typed) * time.Millisecond
		return &d, true
	case float64:
		d := time.Duration(typed * float64(time.Millisecond))
		return &d, true
	default:
		return nil, false
	}
}

func toFloatPtr(value any) (*float64, bool) {
	switch typed := value.(type) {
	case nil:
		return nil, true
	case float64:
		return &typed, true
	case *float64:
		return typed, true
	case int:
		f := float64(typed)
		return &f, true
	case int64:
		f := float64(typed)
		return &f, true
	default:
		return nil, false
	}
}
