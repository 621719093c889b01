package schema

// AttrFunc computes a boolean attribute from the model, the field and a
// caller supplied context.
type AttrFunc func(model map[string]any, field *Field, ctx any) bool

// Attr is either a literal boolean or a computed one. The zero value is an
// unset attribute and evaluates to false.
type Attr struct {
	set   bool
	value bool
	fn    AttrFunc
}

// Literal returns a fixed attribute.
func Literal(value bool) Attr {
	return Attr{set: true, value: value}
}

// Computed returns an attribute evaluated on demand. A nil fn yields an unset
// attribute.
func Computed(fn AttrFunc) Attr {
	if fn == nil {
		return Attr{}
	}
	return Attr{set: true, fn: fn}
}

// IsSet reports whether the attribute was configured.
func (a Attr) IsSet() bool { return a.set }

// IsComputed reports whether the attribute is computed.
func (a Attr) IsComputed() bool { return a.fn != nil }

// Func returns the computing function, nil for literals.
func (a Attr) Func() AttrFunc { return a.fn }

// Eval resolves the attribute. A computed attribute that panics evaluates to
// false.
func (a Attr) Eval(model map[string]any, field *Field, ctx any) (result bool) {
	if a.fn == nil {
		return a.value
	}
	defer func() {
		if recover() != nil {
			result = false
		}
	}()
	return a.fn(model, field, ctx)
}

// attrValue reports the attribute the way Prop exposes it: the literal bool,
// the function, or nil when unset.
func (a Attr) attrValue() any {
	switch {
	case !a.set:
		return nil
	case a.fn != nil:
		return a.fn
	default:
		return a.value
	}
}

func toAttr(value any) (Attr, bool) {
	switch typed := value.(type) {
	case nil:
		return Attr{}, true
	case Attr:
		return typed, true
	case bool:
		return Literal(typed), true
	case AttrFunc:
		return Computed(typed), true
	case func(map[string]any, *Field, any) bool:
		return Computed(typed), true
	default:
		return Attr{}, false
	}
}
