package schema

// Clone returns a deep copy of the field and its children. Choice values and
// Attrs are copied recursively; hooks, validator functions and computed
// attributes are shared because functions cannot be copied.
func (f *Field) Clone() *Field {
	if f == nil {
		return nil
	}
	out := *f
	if f.ValidateDebounceTime != nil {
		d := *f.ValidateDebounceTime
		out.ValidateDebounceTime = &d
	}
	if f.Min != nil {
		v := *f.Min
		out.Min = &v
	}
	if f.Max != nil {
		v := *f.Max
		out.Max = &v
	}
	if f.Validator != nil {
		out.Validator = append([]ValidatorRef(nil), f.Validator...)
	}
	if f.Values != nil {
		out.Values = cloneSlice(f.Values)
	}
	if f.Attrs != nil {
		out.Attrs = cloneMap(f.Attrs)
	}
	out.Fields = CloneFields(f.Fields)
	return &out
}

// CloneFields deep copies a field list.
func CloneFields(fields []*Field) []*Field {
	if fields == nil {
		return nil
	}
	out := make([]*Field, len(fields))
	for idx, field := range fields {
		out[idx] = field.Clone()
	}
	return out
}

// Clone deep copies the schema, including its lookup list.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	return &Schema{
		Fields:           CloneFields(s.Fields),
		LookupFieldsList: append([]LookupSpec(nil), s.LookupFieldsList...),
	}
}

// CloneValue deep copies map[string]any and []any trees. Other values are
// returned as is.
func CloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return cloneMap(typed)
	case []any:
		return cloneSlice(typed)
	default:
		return value
	}
}

func cloneMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = CloneValue(value)
	}
	return out
}

func cloneSlice(in []any) []any {
	out := make([]any, len(in))
	for idx, value := range in {
		out[idx] = CloneValue(value)
	}
	return out
}
