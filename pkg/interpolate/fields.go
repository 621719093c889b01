package interpolate

import (
	"github.com/goliatone/go-formengine/pkg/fieldtree"
	"github.com/goliatone/go-formengine/pkg/schema"
)

// ResolveFields renders the templated label, title and attrs of every field
// in the tree against model. Fields are updated in place and the number of
// fields that changed is returned.
func ResolveFields(fields []*schema.Field, model map[string]any, aux map[string]any) int {
	changed := 0
	for _, field := range fieldtree.Flatten(fields) {
		touched := false
		if HasToken(field.Label) {
			field.Label = Render(model, field.Label, aux)
			touched = true
		}
		if HasToken(field.Title) {
			field.Title = Render(model, field.Title, aux)
			touched = true
		}
		if len(field.Attrs) > 0 && hasTokens(field.Attrs) {
			field.Attrs = ResolveDeep(model, field.Attrs, aux).(map[string]any)
			touched = true
		}
		if touched {
			changed++
		}
	}
	return changed
}

func hasTokens(value any) bool {
	switch typed := value.(type) {
	case string:
		return HasToken(typed)
	case map[string]any:
		for _, member := range typed {
			if hasTokens(member) {
				return true
			}
		}
	case []any:
		for _, member := range typed {
			if hasTokens(member) {
				return true
			}
		}
	case []string:
		for _, member := range typed {
			if HasToken(member) {
				return true
			}
		}
	}
	return false
}
