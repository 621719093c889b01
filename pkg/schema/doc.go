// Package schema defines the field tree the resolver works on. A Field is a
// tagged record: the shared base (FieldID, Model, Validator, visibility
// attributes) is always present and Type selects which payload matters (for
// example the choice list of vSelect fields).
//
// Trees are shared by reference. Lookup resolution and bulk property updates
// mutate fields in place and every holder of the tree observes the change;
// call Clone or CloneFields when a caller needs an isolated copy.
//
// Documents can be loaded from YAML, JSON (comments allowed) or TOML files.
// Boolean attributes in documents accept either a literal or a rule string
// such as `status == "closed"` that is evaluated against the model.
package schema
