// Package interpolate resolves `{{path || default}}` tokens against a form
// model. A token names a model path and an optional literal fallback.
package interpolate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/goliatone/go-formengine/pkg/kind"
	"github.com/goliatone/go-formengine/pkg/modelpath"
)

var tokenPattern = regexp.MustCompile(`{{.*?}}`)

// HasToken reports whether s contains at least one template token.
func HasToken(s string) bool {
	return tokenPattern.MatchString(s)
}

// Render replaces every token in template. For each token the model value is
// used when present (objects and arrays as JSON), then the literal fallback, then a truthy value read from
// aux. When none resolves, the token is replaced by the whole original
// template string; callers that compare the output with the input can detect
// an unresolved template that way.
func Render(model any, template string, aux map[string]any) string {
	return tokenPattern.ReplaceAllStringFunc(template, func(match string) string {
		primary, fallback := splitToken(match)

		if value, ok := modelpath.Get(model, primary); ok {
			return stringify(value)
		}
		if fallback != "" {
			return fallback
		}
		if len(aux) > 0 {
			if value, ok := modelpath.Get(aux, primary); ok && kind.Truthy(value) {
				return stringify(value)
			}
		}
		return template
	})
}

// ResolveDeep walks value and renders every templated string it finds. Maps
// and slices are rebuilt with the same keys and order; other values are
// returned untouched.
func ResolveDeep(model any, value any, aux map[string]any) any {
	switch typed := value.(type) {
	case string:
		if HasToken(typed) {
			return Render(model, typed, aux)
		}
		return typed
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, member := range typed {
			out[key] = ResolveDeep(model, member, aux)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for idx, member := range typed {
			out[idx] = ResolveDeep(model, member, aux)
		}
		return out
	case []string:
		out := make([]string, len(typed))
		for idx, member := range typed {
			out[idx] = ResolveDeep(model, member, aux).(string)
		}
		return out
	default:
		return value
	}
}

func splitToken(match string) (string, string) {
	inner := strings.NewReplacer("{", "", "}", "").Replace(match)
	primary, fallback, _ := strings.Cut(inner, "||")
	return strings.TrimSpace(primary), strings.TrimSpace(fallback)
}

// stringify renders objects and arrays as compact JSON.
func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}
	if k := kind.Of(value); k == kind.Object || k == kind.Array {
		if data, err := json.Marshal(value); err == nil {
			return string(data)
		}
	}
	return fmt.Sprint(value)
}
