// Package summary turns stored model values into the values shown on
// read-only summary pages.
package summary

import (
	"fmt"
	"html"
	"reflect"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/samber/lo"

	"github.com/goliatone/go-formengine/pkg/fieldtree"
	"github.com/goliatone/go-formengine/pkg/kind"
	"github.com/goliatone/go-formengine/pkg/modelpath"
	"github.com/goliatone/go-formengine/pkg/schema"
)

var policy = bluemonday.StrictPolicy()

// Format maps value to its display form for field.
//
// Choice fields resolve stored keys to the text of the matching choice: a
// list maps each primitive to its choice text (nil when nothing matches) and
// each object to its own text; a primitive resolves to its choice text or
// stays as is; an object yields its text; anything else yields "". Text boxes
// pass the value through. Other field types yield nil.
func Format(field *schema.Field, value any) any {
	if field == nil {
		return nil
	}

	switch {
	case field.Type.IsChoice():
		return formatChoice(field, value)
	case field.Type == schema.TypeTextbox:
		return value
	default:
		return nil
	}
}

func formatChoice(field *schema.Field, value any) any {
	textKey := field.TextKey()

	switch k := kind.Of(value); {
	case k == kind.Array:
		rv := reflect.ValueOf(value)
		out := make([]any, rv.Len())
		for idx := range out {
			item := rv.Index(idx).Interface()
			switch itemKind := kind.Of(item); {
			case kind.IsPrimitive(itemKind):
				if choice, ok := findChoice(field, item); ok {
					out[idx] = modelpath.Lookup(choice, textKey)
				}
			case itemKind == kind.Object:
				out[idx] = modelpath.Lookup(item, textKey)
			}
		}
		return out
	case kind.IsPrimitive(k):
		if choice, ok := findChoice(field, value); ok {
			return modelpath.Lookup(choice, textKey)
		}
		return value
	case k == kind.Object:
		return modelpath.Lookup(value, textKey)
	default:
		return ""
	}
}

func findChoice(field *schema.Field, value any) (any, bool) {
	valueKey := field.ValueKey()
	return lo.Find(field.Values, func(choice any) bool {
		key, ok := modelpath.Get(choice, valueKey)
		return ok && same(key, value)
	})
}

// same compares primitives strictly, except that numbers of different Go
// types are compared by value so decoded JSON matches literal ids.
func same(a, b any) bool {
	if kind.Of(a) == kind.Number && kind.Of(b) == kind.Number {
		x, _ := toFloat(a)
		y, _ := toFloat(b)
		return x == y
	}
	return a == b
}

func toFloat(value any) (float64, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

// Display renders the formatted value as plain text with markup stripped.
// Lists are joined with ", " and nil renders empty. The result is not
// escaped; HTML output escapes it when rendered.
func Display(field *schema.Field, value any) string {
	return html.UnescapeString(policy.Sanitize(stringify(Format(field, value))))
}

func stringify(value any) string {
	if value == nil {
		return ""
	}
	if kind.Of(value) == kind.Array {
		rv := reflect.ValueOf(value)
		parts := make([]string, 0, rv.Len())
		for idx := 0; idx < rv.Len(); idx++ {
			if part := stringify(rv.Index(idx).Interface()); part != "" {
				parts = append(parts, part)
			}
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprint(value)
}

// Row is one line of a summary page.
type Row struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Path  string `json:"path"`
	Value string `json:"value"`
}

// Rows lists the display value of every leaf field that Format supports,
// reading values at their absolute model path.
func Rows(fields []*schema.Field, model map[string]any) []Row {
	return lo.FilterMap(fieldtree.Flatten(fields), func(field *schema.Field, _ int) (Row, bool) {
		if field.IsContainer() || (!field.Type.IsChoice() && field.Type != schema.TypeTextbox) {
			return Row{}, false
		}
		path := fieldtree.ModelPath(fields, field.FieldID)
		if path == "" {
			path = field.Model
		}
		value, _ := modelpath.Get(model, path)
		return Row{
			ID:    field.FieldID,
			Label: field.DisplayLabel(),
			Path:  path,
			Value: Display(field, value),
		}, true
	})
}
