// Package fieldtree walks and mutates schema field trees. Every operation
// works on the tree in place; clone the tree first when isolation matters.
package fieldtree

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/goliatone/go-formengine/pkg/schema"
)

// Flatten returns every field in depth-first pre-order. Containers appear
// before their subtree.
func Flatten(fields []*schema.Field) []*schema.Field {
	return lo.FlatMap(fields, func(field *schema.Field, _ int) []*schema.Field {
		if field == nil {
			return nil
		}
		return append([]*schema.Field{field}, Flatten(field.Fields)...)
	})
}

// FindByID returns the first field whose FieldID equals id.
func FindByID(fields []*schema.Field, id string) *schema.Field {
	return FindBy(fields, schema.PropFieldID, id)
}

// FindBy returns the first field whose property key equals id. Each level is
// scanned before descending into the children of its elements, in order.
func FindBy(fields []*schema.Field, key, id string) *schema.Field {
	if key == "" {
		key = schema.PropFieldID
	}
	if found, ok := lo.Find(fields, func(field *schema.Field) bool {
		return matches(field, key, id)
	}); ok {
		return found
	}
	for _, field := range fields {
		if field == nil {
			continue
		}
		if found := FindBy(field.Fields, key, id); found != nil {
			return found
		}
	}
	return nil
}

// FindInNode matches node itself before searching its children.
func FindInNode(node *schema.Field, key, id string) *schema.Field {
	if node == nil {
		return nil
	}
	if key == "" {
		key = schema.PropFieldID
	}
	if matches(node, key, id) {
		return node
	}
	return FindBy(node.Fields, key, id)
}

func matches(field *schema.Field, key, id string) bool {
	if field == nil {
		return false
	}
	value, ok := field.Prop(key)
	if !ok {
		return false
	}
	text, isString := value.(string)
	return isString && text == id
}

// PathTo returns the ancestor chain of the first field whose property equals
// id, starting at a synthetic root holding fields. Each segment is the value
// of property on that node; the root segment is always empty. It returns nil
// when nothing matches.
func PathTo(fields []*schema.Field, id, property string) []string {
	if property == "" {
		property = schema.PropModel
	}
	chain := ancestry(fields, func(field *schema.Field) bool {
		return field.PropString(property) == id
	})
	if chain == nil {
		return nil
	}
	return append([]string{""}, lo.Map(chain, func(field *schema.Field, _ int) string {
		return field.PropString(property)
	})...)
}

// ModelPath joins the non-empty model segments from the root down to the
// field identified by fieldID. Nested fields that only carry a relative model
// key resolve to their absolute path.
func ModelPath(fields []*schema.Field, fieldID string) string {
	chain := ancestry(fields, func(field *schema.Field) bool {
		return field.FieldID == fieldID
	})
	segments := lo.FilterMap(chain, func(field *schema.Field, _ int) (string, bool) {
		return field.Model, field.Model != ""
	})
	return strings.Join(segments, ".")
}

func ancestry(fields []*schema.Field, match func(*schema.Field) bool) []*schema.Field {
	for _, field := range fields {
		if field == nil {
			continue
		}
		if match(field) {
			return []*schema.Field{field}
		}
		if rest := ancestry(field.Fields, match); rest != nil {
			return append([]*schema.Field{field}, rest...)
		}
	}
	return nil
}

// SetProperty assigns property on every field of the tree and returns the
// same slice.
func SetProperty(fields []*schema.Field, property string, value any) ([]*schema.Field, error) {
	for _, field := range fields {
		if _, err := SetPropertyOn(field, property, value); err != nil {
			return fields, err
		}
	}
	return fields, nil
}

// SetPropertyOn assigns property on node and its whole subtree.
func SetPropertyOn(node *schema.Field, property string, value any) (*schema.Field, error) {
	if node == nil {
		return nil, nil
	}
	if err := node.SetProp(property, value); err != nil {
		return node, err
	}
	if len(node.Fields) > 0 {
		if _, err := SetProperty(node.Fields, property, value); err != nil {
			return node, err
		}
	}
	return node, nil
}

// SetProps merges attrs onto the field identified by fieldID. It reports
// whether the field was found.
func SetProps(fields []*schema.Field, fieldID string, attrs map[string]any) (bool, error) {
	field := FindByID(fields, fieldID)
	if field == nil {
		return false, nil
	}
	keys := lo.Keys(attrs)
	sort.Strings(keys)
	for _, key := range keys {
		if err := field.SetProp(key, attrs[key]); err != nil {
			return true, err
		}
	}
	return true, nil
}

// Intersect returns the elements of a that also appear in b, in a's order.
func Intersect[T comparable](a, b []T) []T {
	present := lo.SliceToMap(b, func(item T) (T, struct{}) {
		return item, struct{}{}
	})
	return lo.Filter(a, func(item T, _ int) bool {
		_, ok := present[item]
		return ok
	})
}
